// internal/localapp/runner.go
package localapp

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"

	"msalign/internal/application"
)

// Command describes one invocation of an external binary.
type Command struct {
	Binary string
	Args   []string
	Dir    string
	Env    []string // appended to the current environment
	Stdout io.Writer
	Stderr io.Writer
}

// Runner launches a command and blocks until it exits.
type Runner interface {
	Run(ctx context.Context, c Command) error
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run starts c and waits for it. A non-zero exit is reported as an
// *application.ProcessError; a cancelled ctx is reported as ctx.Err().
func (ExecRunner) Run(ctx context.Context, c Command) error {
	cmd := exec.CommandContext(ctx, c.Binary, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	err := cmd.Run()
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	pe := &application.ProcessError{Binary: c.Binary, Args: c.Args, ExitCode: -1, Err: err}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		pe.ExitCode = ee.ExitCode()
	}
	return pe
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, c Command) error

func (f RunnerFunc) Run(ctx context.Context, c Command) error { return f(ctx, c) }
