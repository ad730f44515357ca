package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
)

// Runner runs an external command to completion.
type Runner interface {
	// Run returns the command's exit code. err is non-nil only when the
	// command could not be run at all, e.g. the binary is missing.
	Run(ctx context.Context, name string, args ...string) (int, error)
}

// execCommandContext is a variable to allow mocking in tests
var execCommandContext = exec.CommandContext

// ExecRunner runs commands with os/exec. Output is discarded unless a
// writer is set.
type ExecRunner struct {
	Dir    string
	Stdout io.Writer
	Stderr io.Writer
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (int, error) {
	cmd := execCommandContext(ctx, name, args...)
	cmd.Dir = r.Dir
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
		return exitErr.ExitCode(), nil
	}
	return -1, fmt.Errorf("failed to run %s: %w", name, err)
}
