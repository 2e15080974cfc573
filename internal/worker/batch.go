package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/casefile/internal/model"
)

// CaseIngester ingests one case directory
type CaseIngester interface {
	IngestDir(ctx context.Context, dir string) (*model.CaseIngestionResult, error)
}

// CaseJob represents one case directory to ingest
type CaseJob struct {
	Dir      string
	Ingester CaseIngester
}

// Execute executes the case job
func (j *CaseJob) Execute(ctx context.Context) Result {
	result, err := j.Ingester.IngestDir(ctx, j.Dir)
	return &CaseResult{
		Dir:    j.Dir,
		Result: result,
		Error:  err,
	}
}

// CaseResult represents the outcome of one case job. Result may be set
// together with Error when persistence failed only in part.
type CaseResult struct {
	Dir    string
	Result *model.CaseIngestionResult
	Error  error
}

// GetError returns the error from the case result
func (r *CaseResult) GetError() error {
	return r.Error
}

// BatchProcessor ingests several case directories concurrently
type BatchProcessor struct {
	ingester    CaseIngester
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(ingester CaseIngester, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		ingester:    ingester,
		concurrency: concurrency,
	}
}

// ProcessDirs ingests the directories and returns one result per directory, in input order
func (b *BatchProcessor) ProcessDirs(ctx context.Context, dirs []string) []*CaseResult {
	if len(dirs) == 0 {
		return []*CaseResult{}
	}

	jobs := make([]Job, len(dirs))
	for i, dir := range dirs {
		jobs[i] = &CaseJob{Dir: dir, Ingester: b.ingester}
	}

	results := RunOrdered(ctx, b.concurrency, jobs)

	caseResults := make([]*CaseResult, len(results))
	for i, result := range results {
		if result == nil {
			caseResults[i] = &CaseResult{Dir: dirs[i], Error: fmt.Errorf("not processed: %w", ctx.Err())}
			continue
		}
		caseResults[i] = result.(*CaseResult)
	}

	return caseResults
}

// ProcessFile reads case directories from a list file and ingests them.
// Relative entries are resolved against the list file's directory.
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*CaseResult, error) {
	dirs, err := ReadCaseDirsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read case list: %w", err)
	}

	base := filepath.Dir(filePath)
	for i, dir := range dirs {
		if !filepath.IsAbs(dir) {
			dirs[i] = filepath.Join(base, dir)
		}
	}

	return b.ProcessDirs(ctx, dirs), nil
}

// ReadCaseDirsFromFile reads case directories from a file (one per line)
func ReadCaseDirsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var dirs []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			dirs = append(dirs, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return dirs, nil
}
