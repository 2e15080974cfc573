package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ppiankov/casefile/internal/model"
)

// mockIngester implements CaseIngester
type mockIngester struct {
	mu          sync.Mutex
	seen        []string
	failDir     string
	partialDirs map[string]bool
}

func (m *mockIngester) IngestDir(ctx context.Context, dir string) (*model.CaseIngestionResult, error) {
	time.Sleep(5 * time.Millisecond)
	m.mu.Lock()
	m.seen = append(m.seen, dir)
	m.mu.Unlock()

	if dir == m.failDir {
		return nil, errors.New("ingest error")
	}
	result := &model.CaseIngestionResult{CaseFile: model.CaseFile{ID: filepath.Base(dir)}}
	if m.partialDirs[dir] {
		return result, errors.New("persist failed")
	}
	return result, nil
}

func TestBatchProcessor_ProcessDirs(t *testing.T) {
	ingester := &mockIngester{}
	processor := NewBatchProcessor(ingester, 2)

	dirs := []string{"/cases/a", "/cases/b", "/cases/c"}
	results := processor.ProcessDirs(context.Background(), dirs)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, res := range results {
		if res.Dir != dirs[i] {
			t.Errorf("result %d: expected dir %s, got %s", i, dirs[i], res.Dir)
		}
		if res.Error != nil {
			t.Errorf("unexpected error for %s: %v", res.Dir, res.Error)
		}
		if res.Result == nil || res.Result.CaseFile.ID != filepath.Base(dirs[i]) {
			t.Errorf("expected case result for %s", res.Dir)
		}
	}
}

func TestBatchProcessor_ProcessDirs_Error(t *testing.T) {
	ingester := &mockIngester{failDir: "/cases/bad"}
	processor := NewBatchProcessor(ingester, 2)

	results := processor.ProcessDirs(context.Background(), []string{"/cases/good", "/cases/bad"})

	if results[0].Error != nil {
		t.Errorf("expected success for good case, got %v", results[0].Error)
	}
	if results[1].Error == nil {
		t.Error("expected error for bad case")
	}
	if results[1].Result != nil {
		t.Error("expected nil result on error")
	}
}

func TestBatchProcessor_ProcessDirs_PartialSuccess(t *testing.T) {
	ingester := &mockIngester{partialDirs: map[string]bool{"/cases/p": true}}
	processor := NewBatchProcessor(ingester, 1)

	results := processor.ProcessDirs(context.Background(), []string{"/cases/p"})
	if results[0].Error == nil || results[0].Result == nil {
		t.Errorf("expected both result and error, got %+v", results[0])
	}
}

func TestBatchProcessor_ProcessDirs_Empty(t *testing.T) {
	processor := NewBatchProcessor(&mockIngester{}, 2)

	results := processor.ProcessDirs(context.Background(), []string{})
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestReadCaseDirsFromFile(t *testing.T) {
	content := `cases/alpha
# comment
/srv/cases/beta
   
cases/alpha
cases/gamma   `

	path := filepath.Join(t.TempDir(), "cases.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	dirs, err := ReadCaseDirsFromFile(path)
	if err != nil {
		t.Fatalf("ReadCaseDirsFromFile failed: %v", err)
	}

	expected := []string{"cases/alpha", "/srv/cases/beta", "cases/gamma"}
	if len(dirs) != len(expected) {
		t.Fatalf("expected %d dirs, got %d: %v", len(expected), len(dirs), dirs)
	}
	for i, dir := range dirs {
		if dir != expected[i] {
			t.Errorf("expected %s at index %d, got %s", expected[i], i, dir)
		}
	}
}

func TestReadCaseDirsFromFile_NonExistent(t *testing.T) {
	if _, err := ReadCaseDirsFromFile("non_existent_file.txt"); err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestCaseResult_GetError(t *testing.T) {
	r1 := &CaseResult{Dir: "a"}
	if r1.GetError() != nil {
		t.Errorf("expected nil error, got %v", r1.GetError())
	}

	expected := errors.New("ingest failed")
	r2 := &CaseResult{Dir: "a", Error: expected}
	if r2.GetError() != expected {
		t.Errorf("expected %v, got %v", expected, r2.GetError())
	}
}

func TestBatchProcessor_ProcessFile_ResolvesRelativeDirs(t *testing.T) {
	base := t.TempDir()
	path := filepath.Join(base, "cases.txt")
	if err := os.WriteFile(path, []byte("alpha\n/abs/beta\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ingester := &mockIngester{}
	processor := NewBatchProcessor(ingester, 2)

	results, err := processor.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Dir != filepath.Join(base, "alpha") {
		t.Errorf("expected relative dir resolved against list file, got %s", results[0].Dir)
	}
	if results[1].Dir != "/abs/beta" {
		t.Errorf("expected absolute dir kept, got %s", results[1].Dir)
	}
}

func TestBatchProcessor_ProcessFile_NonExistent(t *testing.T) {
	processor := NewBatchProcessor(&mockIngester{}, 2)

	if _, err := processor.ProcessFile(context.Background(), "no_such_file.txt"); err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}
