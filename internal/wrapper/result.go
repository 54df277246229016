// SPDX-License-Identifier: MPL-2.0

package wrapper

import (
	"fmt"
	"time"
)

// Sentinel return codes for exits the platform cannot report normally.
const (
	// CodeFailure is used when the child was killed, timed out, or never
	// produced a reportable exit code.
	CodeFailure = -1
	// CodeInterrupted is used when an external cancellation stopped the run.
	CodeInterrupted = -2
)

// Result is the immutable record of one supervised execution. It is built
// exactly once, after the child has exited and both streams are drained,
// and never mutated afterwards; it can be shared freely with hooks and
// callers.
type Result struct {
	// ReturnCode is the child's exit code, or a sentinel.
	ReturnCode int
	// Stdout and Stderr hold captured output; meaningful only when
	// Captured is true.
	Stdout string
	Stderr string
	// Captured records whether output capture was requested.
	Captured bool
	// Duration is the elapsed wall time of the execution.
	Duration time.Duration
	// PID is the child's process identifier (zero when never spawned).
	PID int
	// TimedOut is set when the timeout termination path fired.
	TimedOut bool
	// Command is the literal command vector executed.
	Command []string
}

// Success reports whether the child exited zero without timing out.
func (r *Result) Success() bool {
	return r.ReturnCode == 0 && !r.TimedOut
}

// String returns a compact status summary for logs.
func (r *Result) String() string {
	status := "SUCCESS"
	if !r.Success() {
		status = fmt.Sprintf("FAILED (code=%d)", r.ReturnCode)
	}
	return fmt.Sprintf("Result(%s, time=%.2fs, pid=%d)", status, r.Duration.Seconds(), r.PID)
}
