// SPDX-License-Identifier: MPL-2.0

package wrapper

// State tracks where a supervised execution is in its lifecycle.
// Transitions: NotStarted -> Running -> {Completed, TimedOut, Cancelled},
// with Failed reachable from either non-terminal state when the run cannot
// proceed (hook abort, lookup or spawn failure). No transition skips Running
// once a child handle exists.
type State int32

const (
	// StateNotStarted is the initial state.
	StateNotStarted State = iota
	// StateRunning means a child handle exists and has not yet exited.
	StateRunning
	// StateCompleted means the child exited on its own, with any code.
	StateCompleted
	// StateTimedOut means the timeout fired and the child was terminated.
	StateTimedOut
	// StateCancelled means an external cancellation terminated the child.
	StateCancelled
	// StateFailed means the run failed before or outside normal child exit.
	StateFailed
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not-started"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateTimedOut:
		return "timed-out"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition can occur from s.
func (s State) Terminal() bool {
	switch s {
	case StateCompleted, StateTimedOut, StateCancelled, StateFailed:
		return true
	}
	return false
}
