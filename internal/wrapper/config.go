// SPDX-License-Identifier: MPL-2.0

package wrapper

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// DefaultGracePeriod is how long a graceful termination request may take
// before the child is force-killed.
const DefaultGracePeriod = 5 * time.Second

// ErrInvalidWrapperConfig is the sentinel error wrapped by InvalidConfigError.
var ErrInvalidWrapperConfig = errors.New("invalid wrapper config")

type (
	// Hooks is the lifecycle listener set. All hooks are optional. PreRun
	// and PostRun run on the caller's goroutine; OnStart, OnOutput, and
	// OnError run on the goroutine that owns the event and must not assume
	// the caller's context.
	Hooks struct {
		// PreRun fires before executable resolution. A returned error
		// aborts the run with a PreRunError unless
		// Config.ContinueOnPreRunError is set; no child is spawned on abort.
		PreRun func() error
		// PostRun fires once the child has exited and both streams are
		// drained, with the fully assembled result. A returned error yields
		// a PostRunError unless Config.ContinueOnPostRunError is set.
		PostRun func(*Result) error
		// OnStart receives the child's PID exactly once, after spawn and
		// before any output callback.
		OnStart func(pid int)
		// OnOutput receives stdout lines in order, on the stdout reader
		// goroutine.
		OnOutput func(line string)
		// OnError receives stderr lines in order, on the stderr reader
		// goroutine.
		OnError func(line string)
	}

	// Config describes one supervised execution. The zero value is not
	// usable; build it with NewConfig to get the standard defaults.
	Config struct {
		// Executable is a command name resolved against the resolved
		// environment's PATH, or an explicit path.
		Executable string
		// Args is the argument vector passed to the child.
		Args []string
		// WorkDir is the child's working directory ("" inherits ours).
		WorkDir string
		// Timeout bounds the child's runtime; zero means unbounded.
		Timeout time.Duration
		// GracePeriod bounds graceful termination before a forced kill.
		// Zero selects DefaultGracePeriod.
		GracePeriod time.Duration
		// CaptureOutput buffers stdout/stderr into the result.
		CaptureOutput bool
		// StreamOutput copies output lines to Stdout/Stderr as they arrive.
		// Capture and streaming are independent; both may be active.
		StreamOutput bool
		// Stdout and Stderr receive streamed output (default os.Stdout and
		// os.Stderr). Stdin is handed to the child (default none).
		Stdout io.Writer
		Stderr io.Writer
		Stdin  io.Reader
		// Hooks is the lifecycle listener set.
		Hooks Hooks
		// Shell runs the command line in the embedded POSIX shell
		// interpreter instead of spawning an executable directly.
		Shell bool
		// Interactive attaches the child to a pseudo-terminal. Mutually
		// exclusive with CaptureOutput and Shell; unsupported on Windows.
		Interactive bool
		// RaiseOnError turns a failed result (nonzero code or timeout) into
		// an ExecutionError carrying the full result.
		RaiseOnError bool
		// ContinueOnPreRunError runs the child even when PreRun fails.
		ContinueOnPreRunError bool
		// ContinueOnPostRunError records a PostRun failure without
		// propagating it, so a failed cleanup never masks the run's result.
		ContinueOnPostRunError bool
	}

	// InvalidConfigError is returned when a Config fails validation.
	// It wraps ErrInvalidWrapperConfig for errors.Is() compatibility.
	InvalidConfigError struct {
		Reason string
	}
)

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid wrapper config: %s", e.Reason)
}

// Unwrap returns ErrInvalidWrapperConfig so callers can use errors.Is.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidWrapperConfig }

// NewConfig returns a Config with the standard defaults: streaming enabled,
// failures raised as ExecutionError, and post-run hook failures recorded but
// not propagated.
func NewConfig(executable string, args ...string) Config {
	return Config{
		Executable:             executable,
		Args:                   args,
		GracePeriod:            DefaultGracePeriod,
		StreamOutput:           true,
		RaiseOnError:           true,
		ContinueOnPostRunError: true,
	}
}

// Validate checks the Config for contradictions before any lifecycle hook
// runs.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Executable) == "" {
		return &InvalidConfigError{Reason: "executable must not be empty"}
	}
	if c.Timeout < 0 {
		return &InvalidConfigError{Reason: "timeout must not be negative"}
	}
	if c.GracePeriod < 0 {
		return &InvalidConfigError{Reason: "grace period must not be negative"}
	}
	if c.Interactive && c.CaptureOutput {
		return &InvalidConfigError{Reason: "output capture is not supported in interactive mode"}
	}
	if c.Interactive && c.Shell {
		return &InvalidConfigError{Reason: "interactive mode and shell mode are mutually exclusive"}
	}
	return nil
}
