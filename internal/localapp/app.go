// Package localapp runs an external command-line tool under the
// application lifecycle.
//
// An App owns exactly one process. A Delegate supplies the arguments when
// the app starts, evaluates the tool's output once it has exited, and
// releases temporary resources. CleanUp is called exactly once on every
// path out of the lifecycle: successful join, failed start, failed
// process, failed evaluation, or cancellation.
package localapp

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"time"

	"msalign/internal/application"
	"msalign/internal/logging"
)

// Delegate customises an App for a particular tool.
type Delegate interface {
	// Arguments builds the command line. Called once, by Start.
	Arguments(ctx context.Context) ([]string, error)
	// Evaluate reads the tool's results after a successful exit.
	Evaluate(ctx context.Context) error
	// CleanUp releases temporary resources.
	CleanUp() error
}

// App is a single run of an external binary.
type App struct {
	application.Lifecycle

	binary   string
	runner   Runner
	delegate Delegate
	log      *logging.Logger
	dir      string
	env      []string

	mu        sync.Mutex
	args      []string
	runErr    error
	started   bool
	done      chan struct{} // closed when the process has exited (or never launched)
	stop      chan struct{} // closed to kill the process
	stopOnce  sync.Once
	cleanOnce sync.Once
	stdout    bytes.Buffer
	stderr    bytes.Buffer
}

// Option configures an App.
type Option func(*App)

// WithRunner replaces the process runner (tests use a fake).
func WithRunner(r Runner) Option { return func(a *App) { a.runner = r } }

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option { return func(a *App) { a.log = l } }

// WithWorkDir sets the working directory of the process.
func WithWorkDir(dir string) Option { return func(a *App) { a.dir = dir } }

// WithEnv adds KEY=VALUE entries to the process environment.
func WithEnv(env ...string) Option { return func(a *App) { a.env = append(a.env, env...) } }

// New returns an App in state Created.
func New(binary string, d Delegate, opts ...Option) *App {
	a := &App{
		binary:   binary,
		runner:   ExecRunner{},
		delegate: d,
		log:      logging.NopLogger(),
		done:     make(chan struct{}),
		stop:     make(chan struct{}),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Binary returns the path or name of the wrapped binary.
func (a *App) Binary() string { return a.binary }

// Arguments returns the argument list assembled by Start (nil before).
func (a *App) Arguments() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.args...)
}

// Start builds the arguments and launches the process without waiting.
// ctx bounds the lifetime of the process.
func (a *App) Start(ctx context.Context) error {
	if err := a.Transition("start", application.Running, application.Created); err != nil {
		return err
	}
	args, err := a.delegate.Arguments(ctx)
	if err != nil {
		a.Set(application.Cancelled)
		close(a.done)
		a.cleanUp()
		return err
	}
	a.mu.Lock()
	a.args = args
	a.started = true
	a.mu.Unlock()

	a.log.Info("process started", "binary", a.binary, "args", args)
	started := time.Now()
	runCtx, cancel := context.WithCancel(ctx)
	go func() {
		defer close(a.done)
		defer cancel()
		go func() {
			select {
			case <-a.stop:
				cancel()
			case <-runCtx.Done():
			}
		}()
		err := a.runner.Run(runCtx, Command{
			Binary: a.binary,
			Args:   args,
			Dir:    a.dir,
			Env:    a.env,
			Stdout: &a.stdout,
			Stderr: &a.stderr,
		})
		var pe *application.ProcessError
		if errors.As(err, &pe) && pe.Stderr == "" {
			pe.Stderr = a.stderr.String()
		}
		a.mu.Lock()
		a.runErr = err
		a.mu.Unlock()
		// A concurrent Cancel has already moved the state on.
		_ = a.Transition("finish", application.Finished, application.Running)
		a.log.Debug("process exited", "binary", a.binary, "elapsed", time.Since(started), "error", err)
	}()
	return nil
}

// Join waits for the process, then evaluates its output. On success the
// state is Joined. Process and evaluation errors are returned unchanged and
// leave the state at Finished. If ctx ends first, Join returns ctx.Err()
// and the process keeps running.
func (a *App) Join(ctx context.Context) error {
	if err := a.Require("join", application.Running, application.Finished); err != nil {
		return err
	}
	select {
	case <-a.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := a.Require("join", application.Finished); err != nil {
		return err
	}

	a.mu.Lock()
	runErr := a.runErr
	a.mu.Unlock()
	if runErr != nil {
		a.log.Error("process failed", "binary", a.binary, "error", runErr)
		a.cleanUp()
		return runErr
	}
	if err := a.delegate.Evaluate(ctx); err != nil {
		a.cleanUp()
		return err
	}
	if err := a.Transition("join", application.Joined, application.Finished); err != nil {
		a.cleanUp()
		return err
	}
	a.cleanUp()
	return nil
}

// Run is Start followed by Join. If ctx ends before the run completes, the
// process is stopped and the app is cancelled, so its resources are always
// released.
func (a *App) Run(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		return err
	}
	err := a.Join(ctx)
	if err != nil && ctx.Err() != nil {
		switch a.State() {
		case application.Running, application.Finished:
			_ = a.Cancel()
		}
	}
	return err
}

// Cancel stops a running process and releases resources. The state becomes
// Cancelled.
func (a *App) Cancel() error {
	if err := a.Transition("cancel", application.Cancelled, application.Running, application.Finished); err != nil {
		return err
	}
	a.requestStop()
	<-a.done
	a.log.Info("process cancelled", "binary", a.binary)
	a.cleanUp()
	return nil
}

// IsFinished reports whether the process has exited.
func (a *App) IsFinished() bool {
	a.mu.Lock()
	started := a.started
	a.mu.Unlock()
	if !started {
		return false
	}
	select {
	case <-a.done:
		return true
	default:
		return false
	}
}

// Stdout returns the captured standard output once the process has exited.
func (a *App) Stdout() string {
	if !a.IsFinished() {
		return ""
	}
	return a.stdout.String()
}

// Stderr returns the captured standard error once the process has exited.
func (a *App) Stderr() string {
	if !a.IsFinished() {
		return ""
	}
	return a.stderr.String()
}

func (a *App) requestStop() {
	a.stopOnce.Do(func() { close(a.stop) })
}

func (a *App) cleanUp() {
	a.cleanOnce.Do(func() {
		a.requestStop()
		if err := a.delegate.CleanUp(); err != nil {
			a.log.Warn("cleanup failed", "binary", a.binary, "error", err)
		}
	})
}
