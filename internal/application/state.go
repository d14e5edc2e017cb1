// Package application provides the lifecycle shared by wrappers around
// external tools: a state machine guarding which operations are allowed
// when, and the error kinds those wrappers report.
//
// The lifecycle is:
//
//	Created ──Start──> Running ──(process exits)──> Finished ──Join──> Joined
//	   │                  │
//	   └─────Cancel───────┴──> Cancelled
//
// Parameters may only be set in Created; results may only be read in Joined.
package application

import (
	"strings"
	"sync"
)

// State is a lifecycle state.
type State uint8

const (
	Created State = iota
	Running
	Finished
	Joined
	Cancelled
)

func (s State) String() string {
	switch s {
	case Created:
		return "CREATED"
	case Running:
		return "RUNNING"
	case Finished:
		return "FINISHED"
	case Joined:
		return "JOINED"
	case Cancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

func joinStates(states []State) string {
	names := make([]string, len(states))
	for i, s := range states {
		names[i] = s.String()
	}
	return strings.Join(names, "|")
}

// Lifecycle tracks the state of one application instance. It is safe for
// concurrent use.
type Lifecycle struct {
	mu    sync.Mutex
	state State
}

// State returns the current state.
func (l *Lifecycle) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Require returns a *StateError unless the current state is one of want.
func (l *Lifecycle) Require(op string, want ...State) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return check(op, l.state, want)
}

// Transition moves to next if the current state is one of from.
func (l *Lifecycle) Transition(op string, next State, from ...State) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := check(op, l.state, from); err != nil {
		return err
	}
	l.state = next
	return nil
}

// Set moves to next unconditionally.
func (l *Lifecycle) Set(next State) {
	l.mu.Lock()
	l.state = next
	l.mu.Unlock()
}

func check(op string, got State, want []State) error {
	for _, w := range want {
		if got == w {
			return nil
		}
	}
	return &StateError{Op: op, Want: want, Got: got}
}
