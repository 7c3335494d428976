package output

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/theoremus-urban-solutions/isochrone-analysis/analysis"
)

// Checkpointer persists in-progress batch results to a directory, one matrix
// file and one failures file per run. Files are replaced atomically on every
// flush, so the newest complete snapshot always survives a crash.
type Checkpointer struct {
	dir   string
	runID string
}

// NewCheckpointer creates the checkpoint directory if needed and assigns a
// fresh run id.
func NewCheckpointer(dir string) (*Checkpointer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating checkpoint dir: %w", err)
	}
	return &Checkpointer{dir: dir, runID: uuid.NewString()}, nil
}

// RunID returns this run's identifier, part of every checkpoint filename.
func (c *Checkpointer) RunID() string {
	return c.runID
}

// MatrixPath returns the matrix checkpoint path for this run.
func (c *Checkpointer) MatrixPath() string {
	return filepath.Join(c.dir, "matrix-"+c.runID+".csv")
}

// FailuresPath returns the failure-list checkpoint path for this run.
func (c *Checkpointer) FailuresPath() string {
	return filepath.Join(c.dir, "failures-"+c.runID+".csv")
}

// WriteCheckpoint implements analysis.CheckpointWriter.
func (c *Checkpointer) WriteCheckpoint(m *analysis.ReachabilityMatrix, failures *analysis.FailureSet) error {
	if err := atomicWrite(c.MatrixPath(), func(f *os.File) error {
		return WriteMatrixCSV(f, m)
	}); err != nil {
		return err
	}
	return atomicWrite(c.FailuresPath(), func(f *os.File) error {
		return WriteFailuresCSV(f, failures)
	})
}

func atomicWrite(path string, fill func(*os.File) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".checkpoint-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := fill(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
