// internal/msaapp/options.go
package msaapp

import (
	"github.com/spf13/afero"

	"msalign/internal/localapp"
	"msalign/internal/logging"
)

type options struct {
	binary  string
	fs      afero.Fs
	tempDir string
	workDir string
	runner  localapp.Runner
	logger  *logging.Logger
	env     []string
}

// Option configures an alignment app.
type Option func(*options)

// WithBinary sets the path or name of the aligner binary.
func WithBinary(path string) Option {
	return func(o *options) {
		if path != "" {
			o.binary = path
		}
	}
}

// WithFs sets the filesystem used for temporary files. The binary must be
// able to see the same files, so only tests with a fake runner should pass
// anything other than the OS filesystem.
func WithFs(fs afero.Fs) Option { return func(o *options) { o.fs = fs } }

// WithTempDir sets the parent directory for the run's temporary files.
func WithTempDir(dir string) Option { return func(o *options) { o.tempDir = dir } }

// WithWorkDir sets the working directory of the aligner process.
func WithWorkDir(dir string) Option { return func(o *options) { o.workDir = dir } }

// WithRunner replaces the process runner.
func WithRunner(r localapp.Runner) Option { return func(o *options) { o.runner = r } }

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option { return func(o *options) { o.logger = l } }

// WithEnv adds KEY=VALUE entries to the aligner's environment.
func WithEnv(env ...string) Option { return func(o *options) { o.env = append(o.env, env...) } }
