package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

type CommandRunner interface {
	// Run executes name with args and returns its standard output. A
	// command that started but exited non-zero yields an *ExitError; any
	// other error means the command could not be run at all.
	Run(ctx context.Context, timeout time.Duration,
		name string, args ...string) ([]byte, error)
}

// ExitError reports a command that ran and exited with a non-zero status.
type ExitError struct {
	Code   int
	Stderr []byte
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("exit status %d", e.Code)
	if s := bytes.TrimSpace(e.Stderr); len(s) > 0 {
		msg += ": " + string(s)
	}
	return msg
}

type ExecRunner struct{}

// Run captures stdout and stderr separately. A zero timeout means no limit
// beyond the parent context.
func (ExecRunner) Run(
	parent context.Context,
	timeout time.Duration,
	name string,
	args ...string,
) ([]byte, error) {
	ctx := parent
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout, cmd.Stderr = &stdout, &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		return nil, &ExitError{Code: exitErr.ExitCode(), Stderr: stderr.Bytes()}
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("%s: %w", name, ctx.Err())
	}
	return nil, err
}
