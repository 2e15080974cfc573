package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/casefile/internal/pipeline"
	"github.com/ppiankov/casefile/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Ingest multiple case directories listed in a file",
	Long: `Batch ingests multiple cases concurrently:
- Read case directories from the input file (one per line, # for comments)
- Ingest cases in parallel with a configurable worker count
- Each case scans its documents concurrently
- Write a JSON and a Markdown report per case

Relative directories are resolved against the input file's directory.

Example:
  casefile batch cases.txt
  casefile batch cases.txt --concurrency 4 --output-dir ./reports
  casefile batch cases.txt --store memory --timeout 30m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	// Concurrency flags
	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of cases ingested concurrently (default from config)")
	batchCmd.Flags().IntVar(&workers, "workers", 0, "document scan workers per case (default from config)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./casefile-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")

	// Shared with ingest
	batchCmd.Flags().StringVar(&procedureType, "procedure", "", "force the procedure type for every case")
	batchCmd.Flags().BoolVar(&skipDeadlines, "skip-deadlines", false, "do not extract deadlines")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the scan cache")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	batchCmd.Flags().BoolVar(&dryRun, "dry-run", false, "do not write to the store")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency.BatchWorkers = concurrency
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Casefile Batch Ingestion\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.BatchWorkers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Store:        %s\n", storeLabel(cfg, dryRun))
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
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
	processor := worker.NewBatchProcessor(p, cfg.Concurrency.BatchWorkers)

	fmt.Fprintf(os.Stderr, "⚙️  Ingesting cases with %d workers...\n", cfg.Concurrency.BatchWorkers)
	fmt.Fprintf(os.Stderr, "\n")
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	renderer := p.Renderer()
	successCount := 0
	failureCount := 0

	for _, result := range results {
		var persistErr *pipeline.PersistError
		if result.Error != nil && !errors.As(result.Error, &persistErr) {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Dir, result.Error)
			continue
		}

		res := result.Result
		slug := sanitizeFilename(res.CaseFile.ID)
		jsonPath := filepath.Join(outputDir, slug+".json")
		mdPath := filepath.Join(outputDir, slug+".md")

		if err := renderer.RenderJSON(res, jsonPath); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", result.Dir, err)
			continue
		}
		if err := renderer.RenderMarkdown(res, mdPath); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write Markdown: %v\n", result.Dir, err)
			continue
		}

		if persistErr != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %d entities not stored\n", res.CaseFile.ID, len(persistErr.Errors))
			continue
		}

		successCount++
		fmt.Fprintf(os.Stderr, "✓ %s (%d documents, %d actors, %d deadlines, %d issues)\n",
			res.CaseFile.ID, len(res.CaseFile.DocumentIDs), len(res.Actors), len(res.Deadlines), len(res.Issues))
	}

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d cases\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	if failureCount > 0 {
		return fmt.Errorf("%d of %d cases failed", failureCount, len(results))
	}
	return nil
}
