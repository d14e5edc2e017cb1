package localapp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msalign/internal/application"
)

type fakeDelegate struct {
	args      []string
	argsErr   error
	evalErr   error
	evaluated int
	cleanedUp int
}

func (d *fakeDelegate) Arguments(context.Context) ([]string, error) { return d.args, d.argsErr }
func (d *fakeDelegate) Evaluate(context.Context) error {
	d.evaluated++
	return d.evalErr
}
func (d *fakeDelegate) CleanUp() error {
	d.cleanedUp++
	return nil
}

func okRunner(stdout string) Runner {
	return RunnerFunc(func(_ context.Context, c Command) error {
		_, _ = io.WriteString(c.Stdout, stdout)
		return nil
	})
}

func TestRunSuccess(t *testing.T) {
	d := &fakeDelegate{args: []string{"--in", "x"}}
	var got Command
	app := New("tool", d, WithRunner(RunnerFunc(func(_ context.Context, c Command) error {
		got = c
		_, _ = io.WriteString(c.Stdout, "done")
		return nil
	})))

	require.NoError(t, app.Run(context.Background()))
	assert.Equal(t, application.Joined, app.State())
	assert.Equal(t, "tool", got.Binary)
	assert.Equal(t, []string{"--in", "x"}, got.Args)
	assert.Equal(t, []string{"--in", "x"}, app.Arguments())
	assert.Equal(t, "done", app.Stdout())
	assert.True(t, app.IsFinished())
	assert.Equal(t, 1, d.evaluated)
	assert.Equal(t, 1, d.cleanedUp)
}

func TestStartTwice(t *testing.T) {
	app := New("tool", &fakeDelegate{}, WithRunner(okRunner("")))
	require.NoError(t, app.Start(context.Background()))
	err := app.Start(context.Background())
	assert.ErrorIs(t, err, application.ErrState)
	require.NoError(t, app.Join(context.Background()))
}

func TestJoinBeforeStart(t *testing.T) {
	app := New("tool", &fakeDelegate{}, WithRunner(okRunner("")))
	err := app.Join(context.Background())
	assert.ErrorIs(t, err, application.ErrState)
	assert.False(t, app.IsFinished())
}

func TestArgumentsErrorCleansUp(t *testing.T) {
	d := &fakeDelegate{argsErr: application.ValueErrorf("bad")}
	app := New("tool", d, WithRunner(okRunner("")))
	err := app.Start(context.Background())
	assert.ErrorIs(t, err, application.ErrValue)
	assert.Equal(t, application.Cancelled, app.State())
	assert.Equal(t, 1, d.cleanedUp)
}

func TestProcessErrorPropagates(t *testing.T) {
	d := &fakeDelegate{}
	app := New("tool", d, WithRunner(RunnerFunc(func(_ context.Context, c Command) error {
		_, _ = io.WriteString(c.Stderr, "FATAL: no sequences")
		return &application.ProcessError{Binary: c.Binary, ExitCode: 2}
	})))

	err := app.Run(context.Background())
	var pe *application.ProcessError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 2, pe.ExitCode)
	assert.Equal(t, "FATAL: no sequences", pe.Stderr)
	assert.Equal(t, application.Finished, app.State())
	assert.Equal(t, 0, d.evaluated)
	assert.Equal(t, 1, d.cleanedUp)
}

func TestEvaluateErrorLeavesFinished(t *testing.T) {
	d := &fakeDelegate{evalErr: fmt.Errorf("parse output")}
	app := New("tool", d, WithRunner(okRunner("")))
	err := app.Run(context.Background())
	assert.EqualError(t, err, "parse output")
	assert.Equal(t, application.Finished, app.State())
	assert.Equal(t, 1, d.cleanedUp)
}

func blockingRunner() Runner {
	return RunnerFunc(func(ctx context.Context, _ Command) error {
		<-ctx.Done()
		return ctx.Err()
	})
}

func TestCancel(t *testing.T) {
	d := &fakeDelegate{}
	app := New("tool", d, WithRunner(blockingRunner()))
	require.NoError(t, app.Start(context.Background()))
	assert.False(t, app.IsFinished())

	require.NoError(t, app.Cancel())
	assert.Equal(t, application.Cancelled, app.State())
	assert.True(t, app.IsFinished())
	assert.Equal(t, 1, d.cleanedUp)

	assert.ErrorIs(t, app.Join(context.Background()), application.ErrState)
	assert.ErrorIs(t, app.Cancel(), application.ErrState)
}

func TestJoinContextDeadline(t *testing.T) {
	app := New("tool", &fakeDelegate{}, WithRunner(blockingRunner()))
	require.NoError(t, app.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, app.Join(ctx), context.DeadlineExceeded)
	assert.Equal(t, application.Running, app.State())
	require.NoError(t, app.Cancel())
}

func TestRunContextDeadlineCancels(t *testing.T) {
	d := &fakeDelegate{}
	app := New("tool", d, WithRunner(blockingRunner()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, app.Run(ctx), context.DeadlineExceeded)
	assert.Equal(t, application.Cancelled, app.State())
	assert.True(t, app.IsFinished())
	assert.Equal(t, 1, d.cleanedUp)
	assert.Zero(t, d.evaluated)
}

// TestHelperProcess is not a real test; ExecRunner tests re-execute the test
// binary with MSALIGN_HELPER_PROCESS=1 to get a controllable child process.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("MSALIGN_HELPER_PROCESS") != "1" {
		return
	}
	args := os.Args
	for len(args) > 0 && args[0] != "--" {
		args = args[1:]
	}
	if len(args) < 2 {
		os.Exit(10)
	}
	switch args[1] {
	case "echo":
		fmt.Fprint(os.Stdout, args[2:])
		os.Exit(0)
	case "fail":
		fmt.Fprint(os.Stderr, "FATAL: helper failed")
		os.Exit(3)
	case "sleep":
		time.Sleep(time.Minute)
		os.Exit(0)
	}
	os.Exit(11)
}

func helperApp(mode string, extra ...string) *App {
	args := append([]string{"-test.run=TestHelperProcess", "--", mode}, extra...)
	return New(os.Args[0], &fakeDelegate{args: args}, WithEnv("MSALIGN_HELPER_PROCESS=1"))
}

func TestExecRunnerSuccess(t *testing.T) {
	app := helperApp("echo", "a", "b")
	require.NoError(t, app.Run(context.Background()))
	assert.Contains(t, app.Stdout(), "[a b]")
}

func TestExecRunnerExitCode(t *testing.T) {
	app := helperApp("fail")
	err := app.Run(context.Background())
	var pe *application.ProcessError
	require.True(t, errors.As(err, &pe), "got %v", err)
	assert.Equal(t, 3, pe.ExitCode)
	assert.Contains(t, pe.Stderr, "FATAL: helper failed")
}

func TestExecRunnerMissingBinary(t *testing.T) {
	app := New("msalign-no-such-binary", &fakeDelegate{})
	err := app.Run(context.Background())
	var pe *application.ProcessError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, -1, pe.ExitCode)
}

func TestExecRunnerTimeout(t *testing.T) {
	app := helperApp("sleep")
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err := app.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
