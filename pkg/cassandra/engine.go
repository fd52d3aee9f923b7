package cassandra

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ExecEngine invokes the Cassandra executable as a child process.
//
// Engine stdout/stderr are captured to <input>.log in the run directory so
// a failed run can be diagnosed after the fact.
type ExecEngine struct {
	// Path is the engine executable (e.g. "cassandra.exe" on PATH or an
	// absolute path).
	Path string

	// Threads is the OpenMP thread count handed to the engine. Zero keeps
	// the engine default.
	Threads int
}

// Run executes the engine against inputFile inside dir, blocking until it
// exits. A non-zero exit wraps the tail of the captured log.
func (e *ExecEngine) Run(ctx context.Context, dir string, inputFile string) error {
	if strings.TrimSpace(e.Path) == "" {
		return fmt.Errorf("engine executable is not configured")
	}

	logPath := filepath.Join(dir, inputFile+".log")
	logFile, err := os.Create(logPath)
	if err != nil {
		return fmt.Errorf("create engine log: %w", err)
	}
	defer func() { _ = logFile.Close() }()

	cmd := exec.CommandContext(ctx, e.Path, inputFile)
	cmd.Dir = dir
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.Env = os.Environ()
	if e.Threads > 0 {
		cmd.Env = append(cmd.Env, fmt.Sprintf("OMP_NUM_THREADS=%d", e.Threads))
	}

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s: %w (log: %s)", e.Path, inputFile, err, logPath)
	}
	return nil
}
