package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/casefile/internal/model"
	"github.com/ppiankov/casefile/internal/pipeline"
)

var classifyJSON bool

// classifyCmd represents the classify command
var classifyCmd = &cobra.Command{
	Use:   "classify <file>",
	Short: "Scan a single document without storing anything",
	Long: `Classify runs the scan phase on one document and prints what it found:
the reliability weight and the signals behind it, the detected procedure type,
the actors with their roles, and any deadlines and issues.

Example:
  casefile classify ./cases/huber/beschluss.txt
  casefile classify minutes.md --json`,
	Args: cobra.ExactArgs(1),
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "print the scan as JSON")
	classifyCmd.Flags().StringVar(&procedureType, "procedure", "", "force the procedure type")
	classifyCmd.Flags().BoolVar(&skipDeadlines, "skip-deadlines", false, "do not extract deadlines")
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}

	doc, err := pipeline.LoadDocument(args[0])
	if err != nil {
		return err
	}

	p := pipeline.NewPipeline(cfg)
	scan := p.ScanDocument(doc, model.ProcedureType(cfg.Extraction.ProcedureType), cfg.Extraction.SkipDeadlines)

	if classifyJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(scan); err != nil {
			return fmt.Errorf("encode scan: %w", err)
		}
		return nil
	}
	p.Renderer().RenderScan(cmd.OutOrStdout(), doc, scan)
	return nil
}
