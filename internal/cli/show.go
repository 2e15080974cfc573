package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/casefile/internal/model"
	"github.com/ppiankov/casefile/internal/pipeline"
	"github.com/ppiankov/casefile/internal/store"
)

var showFormat string

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <case-id>",
	Short: "Print a stored case",
	Long: `Show loads a case and everything it references from the configured store.

Formats:
  summary   one paragraph (default)
  markdown  the full Markdown report
  json      the case ingestion result as JSON

Example:
  casefile show huber-gegen-schmid
  casefile show case-42 --format markdown --dsn ./cases.db`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().StringVar(&showFormat, "format", "summary", "output format (summary, markdown, json)")
}

func runShow(cmd *cobra.Command, args []string) error {
	caseID := args[0]
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if cfg.Store.Driver == "memory" {
		return fmt.Errorf("the memory store does not outlive a command; use sqlite or postgres")
	}

	backend, err := openStore(cmd.Context(), cfg, false)
	if err != nil {
		return err
	}
	defer func() { _ = backend.Close() }()

	res, err := backend.LoadCase(cmd.Context(), caseID)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("case %q not found in %s store", caseID, cfg.Store.Driver)
	}
	if err != nil {
		return fmt.Errorf("load case: %w", err)
	}

	return writeCase(cmd.OutOrStdout(), pipeline.NewRenderer(cfg.Output.IncludeFooter), res, showFormat)
}

func writeCase(w io.Writer, r *pipeline.Renderer, res *model.CaseIngestionResult, format string) error {
	switch format {
	case "summary", "":
		r.RenderSummary(w, res)
	case "markdown", "md":
		_, err := io.WriteString(w, r.Markdown(res))
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	default:
		return fmt.Errorf("unknown format %q (supported: summary, markdown, json)", format)
	}
	return nil
}
