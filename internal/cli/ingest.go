package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/casefile/internal/model"
	"github.com/ppiankov/casefile/internal/pipeline"
)

var (
	outJSON       string
	outMD         string
	timeout       time.Duration
	procedureType string
	skipDeadlines bool
	noCache       bool
	noFooter      bool
	dryRun        bool
	workers       int
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest <case-dir>",
	Short: "Ingest the documents of one case directory",
	Long: `Ingest reads every document of a case directory and builds the case record:
- Score each document's reliability from its title, header and tags
- Extract actors, contacts, representation, demands and claim amounts
- Resolve the same actor across documents into one entry
- Collect deadlines, issues and a memory log
- Persist everything to the configured store

A case directory holds .txt, .md and .html files, and optionally a case.yaml
manifest naming the case id, workspace, title, tags and documents.

Example:
  casefile ingest ./cases/huber-gegen-schmid
  casefile ingest ./cases/huber --json case.json --md case.md
  casefile ingest ./cases/huber --procedure criminal --skip-deadlines --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	// Output flags
	ingestCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	ingestCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	ingestCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// Extraction flags
	ingestCmd.Flags().StringVar(&procedureType, "procedure", "", "force the procedure type (criminal, civil, administrative, labor)")
	ingestCmd.Flags().BoolVar(&skipDeadlines, "skip-deadlines", false, "do not extract deadlines")
	ingestCmd.Flags().IntVar(&workers, "workers", 0, "document scan workers (default from config)")

	// Runtime flags
	ingestCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall ingestion timeout")
	ingestCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the scan cache")
	ingestCmd.Flags().BoolVar(&dryRun, "dry-run", false, "do not write to the store")
}

// applyFlags folds the command flags that were set into cfg
func applyFlags(cmd *cobra.Command, cfg *model.Config) error {
	flags := cmd.Flags()
	if flags.Changed("procedure") {
		cfg.Extraction.ProcedureType = procedureType
	}
	if flags.Changed("skip-deadlines") {
		cfg.Extraction.SkipDeadlines = skipDeadlines
	}
	if flags.Changed("workers") {
		cfg.Concurrency.Workers = workers
	}
	if flags.Changed("no-cache") {
		cfg.Cache.Enabled = !noCache
	}
	if flags.Changed("no-footer") {
		cfg.Output.IncludeFooter = !noFooter
	}
	return cfg.Validate()
}

func runIngest(cmd *cobra.Command, args []string) error {
	dir := args[0]
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Ingesting: %s\n", dir)
		fmt.Fprintf(os.Stderr, "Store: %s\n", storeLabel(cfg, dryRun))
		fmt.Fprintf(os.Stderr, "Cache: %v\n", cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	backend, err := openStore(ctx, cfg, dryRun)
	if err != nil {
		return err
	}
	if backend != nil {
		defer func() { _ = backend.Close() }()
	}

	p := pipeline.NewPipeline(cfg, pipelineOptions(cfg, logger, backend)...)

	result, err := p.IngestDir(ctx, dir)
	var persistErr *pipeline.PersistError
	switch {
	case errors.As(err, &persistErr):
		for _, ee := range persistErr.Errors {
			fmt.Fprintf(os.Stderr, "✗ %v\n", ee)
		}
	case err != nil:
		return fmt.Errorf("ingest failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Scanned %d documents\n", len(result.CaseFile.DocumentIDs))
		fmt.Fprintf(os.Stderr, "✓ Resolved %d actors\n", len(result.Actors))
		fmt.Fprintf(os.Stderr, "✓ Extracted %d deadlines, flagged %d issues\n", len(result.Deadlines), len(result.Issues))
		if backend != nil && persistErr == nil {
			fmt.Fprintf(os.Stderr, "✓ Persisted case %s\n", result.CaseFile.ID)
		}
		fmt.Fprintln(os.Stderr)
	}

	if err := renderOutputs(p.Renderer(), result, outJSON, outMD); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	p.Renderer().RenderSummary(cmd.OutOrStdout(), result)

	if persistErr != nil {
		return fmt.Errorf("case %s ingested, but %d entities were not stored", result.CaseFile.ID, len(persistErr.Errors))
	}
	return nil
}

func renderOutputs(r *pipeline.Renderer, result *model.CaseIngestionResult, jsonPath, mdPath string) error {
	if jsonPath != "" {
		if err := r.RenderJSON(result, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", jsonPath)
		}
	}
	if mdPath != "" {
		if err := r.RenderMarkdown(result, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", mdPath)
		}
	}
	return nil
}

func storeLabel(cfg *model.Config, dryRun bool) string {
	if dryRun {
		return "none (dry run)"
	}
	if cfg.Store.Driver == "postgres" {
		return "postgres"
	}
	return fmt.Sprintf("%s %s", cfg.Store.Driver, cfg.Store.DSN)
}
