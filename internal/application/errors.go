// internal/application/errors.go
package application

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error returned for a contract violation wraps exactly
// one of these, so callers can test with errors.Is.
var (
	// ErrType is returned for inputs of an unsupported type, e.g. a
	// sequence kind the tool cannot align.
	ErrType = errors.New("unsupported type")

	// ErrValue is returned for inputs with an invalid value, e.g. a guide
	// tree whose leaf count differs from the sequence count.
	ErrValue = errors.New("invalid value")

	// ErrState is returned when an operation is invoked outside the
	// lifecycle state it requires.
	ErrState = errors.New("invalid state")
)

// StateError describes a lifecycle violation.
type StateError struct {
	Op   string
	Want []State
	Got  State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s requires state %s, application is %s", e.Op, joinStates(e.Want), e.Got)
}

func (e *StateError) Unwrap() error { return ErrState }

// kindError attaches a kind sentinel to a formatted message.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

// TypeErrorf formats an error of kind ErrType.
func TypeErrorf(format string, a ...any) error {
	return &kindError{kind: ErrType, msg: fmt.Sprintf(format, a...)}
}

// ValueErrorf formats an error of kind ErrValue.
func ValueErrorf(format string, a ...any) error {
	return &kindError{kind: ErrValue, msg: fmt.Sprintf(format, a...)}
}

// StateErrorf formats an error of kind ErrState that is not a plain
// lifecycle mismatch (e.g. a result that was never computed).
func StateErrorf(format string, a ...any) error {
	return &kindError{kind: ErrState, msg: fmt.Sprintf(format, a...)}
}

// ProcessError reports an external process that exited unsuccessfully.
type ProcessError struct {
	Binary   string
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ProcessError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Binary, e.ExitCode)
	if e.ExitCode < 0 && e.Err != nil {
		msg = fmt.Sprintf("%s failed: %v", e.Binary, e.Err)
	}
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

func (e *ProcessError) Unwrap() error { return e.Err }
