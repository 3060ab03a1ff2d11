package verify

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// Runner executes an external tool and reports its combined output and exit code.
// err is only set when the process could not be run to completion (missing
// executable, killed by context); a non-zero exit is not an error.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (output []byte, exitCode int, err error)
}

// ExecRunner runs tools with os/exec.
type ExecRunner struct {
	Dir string // Working directory, empty for the current one
}

var _ Runner = ExecRunner{}

// Run starts the tool and waits for it to exit.
func (r ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	if err == nil {
		return out.Bytes(), 0, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return out.Bytes(), -1, ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return out.Bytes(), exitErr.ExitCode(), nil
	}
	return out.Bytes(), -1, err
}
