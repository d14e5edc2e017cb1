// Package tempfile manages the scratch files an external tool run needs.
//
// A Workspace hands out named slots. Nothing is created on disk until a
// slot's path is first requested; Close removes the whole workspace and is
// safe to call more than once.
package tempfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
)

// ErrClosed is returned when a slot is used after its workspace was closed.
var ErrClosed = errors.New("tempfile: workspace closed")

// Workspace is a private temporary directory on an afero.Fs.
type Workspace struct {
	fs     afero.Fs
	parent string
	prefix string

	mu     sync.Mutex
	dir    string
	slots  int
	closed bool
}

// New returns a workspace rooted under parent (os.TempDir() when empty).
func New(fs afero.Fs, parent, prefix string) *Workspace {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if parent == "" {
		parent = os.TempDir()
	}
	return &Workspace{fs: fs, parent: parent, prefix: prefix}
}

// Fs returns the filesystem backing the workspace.
func (w *Workspace) Fs() afero.Fs { return w.fs }

// Dir returns the workspace directory, or "" if it was never created.
func (w *Workspace) Dir() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dir
}

// Slot reserves a file name with the given suffix. It does not touch disk.
func (w *Workspace) Slot(suffix string) *Slot {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.slots++
	return &Slot{ws: w, name: fmt.Sprintf("%02d.%s", w.slots, suffix)}
}

func (w *Workspace) ensureDir() (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return "", ErrClosed
	}
	if w.dir != "" {
		return w.dir, nil
	}
	if err := w.fs.MkdirAll(w.parent, 0o755); err != nil {
		return "", fmt.Errorf("tempfile: create parent: %w", err)
	}
	dir, err := afero.TempDir(w.fs, w.parent, w.prefix)
	if err != nil {
		return "", fmt.Errorf("tempfile: create workspace: %w", err)
	}
	w.dir = dir
	return dir, nil
}

// Close removes the workspace directory and everything in it.
func (w *Workspace) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	if w.dir == "" {
		return nil
	}
	if err := w.fs.RemoveAll(w.dir); err != nil {
		return fmt.Errorf("tempfile: remove %s: %w", w.dir, err)
	}
	return nil
}

// Slot is a reserved file inside a workspace.
type Slot struct {
	ws   *Workspace
	name string
}

// Path materializes the workspace directory (if needed) and returns the
// slot's absolute path. The file itself is not created.
func (s *Slot) Path() (string, error) {
	dir, err := s.ws.ensureDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, s.name), nil
}

// Create creates or truncates the slot's file.
func (s *Slot) Create() (afero.File, error) {
	p, err := s.Path()
	if err != nil {
		return nil, err
	}
	return s.ws.fs.Create(p)
}

// Open opens the slot's file for reading.
func (s *Slot) Open() (afero.File, error) {
	p, err := s.Path()
	if err != nil {
		return nil, err
	}
	return s.ws.fs.Open(p)
}

// Exists reports whether the slot's file exists.
func (s *Slot) Exists() bool {
	dir := s.ws.Dir()
	if dir == "" {
		return false
	}
	ok, err := afero.Exists(s.ws.fs, filepath.Join(dir, s.name))
	return err == nil && ok
}
