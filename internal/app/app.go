// internal/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"msalign/internal/application"
	"msalign/internal/cli"
	"msalign/internal/config"
	"msalign/internal/localapp"
	"msalign/internal/logging"
)

// Exit codes.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitUsage       = 2
	ExitInterrupted = 130
)

// Deps are the outside-world dependencies of a run. Zero values select the
// real filesystem and the real clustalo binary.
type Deps struct {
	Fs     afero.Fs
	Runner localapp.Runner
}

// env is the state shared by the commands of one invocation.
type env struct {
	stdout io.Writer
	stderr io.Writer
	deps   Deps

	v      *viper.Viper
	global cli.GlobalOptions
	cfg    *config.Config
	log    *logging.Logger

	// ran is set once a command body starts; errors before that are usage
	// errors.
	ran bool
}

// usageError marks bad arguments or unreadable input.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usage(err error) error {
	if err == nil {
		return nil
	}
	return usageError{err}
}

// RunContext executes msalign with argv and returns the process exit code.
func RunContext(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	return RunWith(ctx, argv, stdout, stderr, Deps{})
}

// Run is RunContext without cancellation.
func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}

// RunWith is RunContext with explicit dependencies.
func RunWith(ctx context.Context, argv []string, stdout, stderr io.Writer, deps Deps) int {
	if deps.Fs == nil {
		deps.Fs = afero.NewOsFs()
	}
	e := &env{
		stdout: stdout,
		stderr: stderr,
		deps:   deps,
		v:      viper.New(),
		log:    logging.NopLogger(),
	}
	defer func() { _ = e.log.Close() }()

	root := newRootCmd(e)
	if argv == nil {
		argv = []string{} // nil makes cobra fall back to os.Args
	}
	root.SetArgs(argv)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}

	code := exitCode(ctx, err, e.ran)
	if code == ExitInterrupted {
		_, _ = fmt.Fprintln(stderr, "msalign: interrupted")
		return code
	}
	_, _ = fmt.Fprintf(stderr, "msalign: %v\n", err)
	var pe *application.ProcessError
	if errors.As(err, &pe) && len(pe.Args) > 0 {
		e.log.Debug("failed command", "binary", pe.Binary, "args", pe.Args)
	}
	if code == ExitUsage && !e.ran {
		_, _ = fmt.Fprintln(stderr, "Run 'msalign --help' for usage.")
	}
	return code
}

func exitCode(ctx context.Context, err error, ran bool) int {
	var ue usageError
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, context.Canceled) || ctx.Err() != nil:
		return ExitInterrupted
	case !ran, errors.As(err, &ue):
		return ExitUsage
	case errors.Is(err, application.ErrType), errors.Is(err, application.ErrValue):
		return ExitUsage
	}
	return ExitFailure
}
