package clustalotest

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/spf13/afero"

	"msalign/internal/application"
	"msalign/internal/localapp"
)

// Main runs the fake as a standalone process over the real filesystem and
// returns its exit code. Test binaries re-exec themselves through Main to
// stand in for clustalo behind localapp.ExecRunner.
func Main(ctx context.Context, args []string, stdout, stderr io.Writer, delay time.Duration) int {
	f := New(afero.NewOsFs())
	f.Delay = delay
	err := f.Run(ctx, localapp.Command{Binary: os.Args[0], Args: args, Stdout: stdout, Stderr: stderr})
	if err == nil {
		return 0
	}
	var pe *application.ProcessError
	if errors.As(err, &pe) {
		return pe.ExitCode
	}
	return 1
}
