// SPDX-License-Identifier: MPL-2.0

package wrapper

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrPreRun is the sentinel error wrapped by PreRunError.
	ErrPreRun = errors.New("pre-run hook failed")
	// ErrPostRun is the sentinel error wrapped by PostRunError.
	ErrPostRun = errors.New("post-run hook failed")
	// ErrExecution is the sentinel error wrapped by ExecutionError.
	ErrExecution = errors.New("execution failed")
	// ErrExecutableNotFound is the sentinel error wrapped by
	// ExecutableNotFoundError.
	ErrExecutableNotFound = errors.New("executable not found")
	// ErrAlreadyRun is returned when Run is invoked twice on one Wrapper.
	ErrAlreadyRun = errors.New("wrapper has already run")
)

type (
	// PreRunError reports a failed pre-run hook. When it aborts the run, no
	// child process was spawned and no result exists.
	PreRunError struct {
		Err error
	}

	// PostRunError reports a failed post-run hook. The run's result is
	// complete and valid despite it.
	PostRunError struct {
		Err error
	}

	// ExecutionError reports a failed execution (nonzero exit, timeout, or
	// an infrastructure failure) when Config.RaiseOnError is set. It always
	// carries the fully assembled Result so callers keep full diagnostics.
	ExecutionError struct {
		Result *Result
		Err    error
	}

	// ExecutableNotFoundError is returned when the executable cannot be
	// located via the resolved environment's PATH.
	ExecutableNotFoundError struct {
		Name string
	}
)

// Error implements the error interface.
func (e *PreRunError) Error() string {
	return fmt.Sprintf("pre-run hook failed: %v", e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *PreRunError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrPreRun}
	}
	return []error{ErrPreRun, e.Err}
}

// Error implements the error interface.
func (e *PostRunError) Error() string {
	return fmt.Sprintf("post-run hook failed: %v", e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *PostRunError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrPostRun}
	}
	return []error{ErrPostRun, e.Err}
}

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("execution failed: %v", e.Err)
	case e.Result != nil && e.Result.TimedOut:
		return fmt.Sprintf("process timed out (command: %s)", strings.Join(e.Result.Command, " "))
	case e.Result != nil:
		return fmt.Sprintf("process exited with code %d (command: %s)",
			e.Result.ReturnCode, strings.Join(e.Result.Command, " "))
	default:
		return "execution failed"
	}
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *ExecutionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrExecution}
	}
	return []error{ErrExecution, e.Err}
}

// Error implements the error interface.
func (e *ExecutableNotFoundError) Error() string {
	return fmt.Sprintf("executable %q not found in PATH", e.Name)
}

// Unwrap returns ErrExecutableNotFound so callers can use errors.Is.
func (e *ExecutableNotFoundError) Unwrap() error { return ErrExecutableNotFound }
