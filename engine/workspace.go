package engine

import (
	"fmt"
	"os"
	"path/filepath"
)

// Workspace lays out the on-disk directories for one job:
//
//	<root>/
//	  workdir/   tool sandbox, where the model builds the project
//	  output/    packaged artifacts and the final report
//	  logs/      one log file per step
type Workspace struct {
	root string
}

// NewWorkspace creates the job directory tree under root.
func NewWorkspace(root string) (*Workspace, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("workspace: resolve root: %w", err)
	}
	for _, dir := range []string{abs, filepath.Join(abs, "workdir"), filepath.Join(abs, "output"), filepath.Join(abs, "logs")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("workspace: create %s: %w", dir, err)
		}
	}
	return &Workspace{root: abs}, nil
}

// Root returns the job root directory.
func (w *Workspace) Root() string { return w.root }

// Workdir returns the tool sandbox directory.
func (w *Workspace) Workdir() string { return filepath.Join(w.root, "workdir") }

// Output returns the artifact directory.
func (w *Workspace) Output() string { return filepath.Join(w.root, "output") }

// Logs returns the step log directory.
func (w *Workspace) Logs() string { return filepath.Join(w.root, "logs") }

// WriteStepLog records one step's decision and result. Log failures are
// swallowed; losing a log never fails the job.
func (w *Workspace) WriteStepLog(step int, content string) {
	path := filepath.Join(w.Logs(), fmt.Sprintf("step-%03d.log", step))
	_ = os.WriteFile(path, []byte(content), 0o644)
}
