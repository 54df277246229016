// SPDX-License-Identifier: MPL-2.0

package wrapper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// runShell interprets the command line with an embedded POSIX shell instead
// of spawning it directly. The script runs in-process, so the reported PID
// is our own and graceful termination is context cancellation.
func (w *Wrapper) runShell(ctx context.Context, start time.Time) (*Result, error) {
	script := strings.Join(append([]string{w.cfg.Executable}, w.cfg.Args...), " ")
	res := &Result{
		ReturnCode: CodeFailure,
		Captured:   w.cfg.CaptureOutput,
		Command:    []string{"sh", "-c", script},
		PID:        os.Getpid(),
	}

	prog, err := syntax.NewParser().Parse(strings.NewReader(script), "script")
	if err != nil {
		w.setState(StateFailed)
		res.Duration = time.Since(start)
		return res, fmt.Errorf("failed to parse shell command: %w", err)
	}

	var stdoutBuf, stderrBuf strings.Builder
	stdoutSink := &lineWriter{
		buf:    captureInto(w.cfg.CaptureOutput, &stdoutBuf),
		stream: w.streamTo(w.stdout()),
		onLine: w.cfg.Hooks.OnOutput,
	}
	stderrSink := &lineWriter{
		buf:    captureInto(w.cfg.CaptureOutput, &stderrBuf),
		stream: w.streamTo(w.stderr()),
		onLine: w.cfg.Hooks.OnError,
	}

	runner, err := interp.New(
		interp.Dir(w.cfg.WorkDir),
		interp.Env(expand.ListEnviron(w.env.Environ()...)),
		interp.StdIO(w.cfg.Stdin, stdoutSink, stderrSink),
	)
	if err != nil {
		w.setState(StateFailed)
		res.Duration = time.Since(start)
		return res, fmt.Errorf("failed to create shell interpreter: %w", err)
	}

	execCtx := ctx
	var cancel context.CancelFunc
	if w.cfg.Timeout > 0 {
		execCtx, cancel = context.WithTimeout(ctx, w.cfg.Timeout)
		defer cancel()
	}

	slog.Info("executing shell command", "script", script, "env_vars", w.env.Len())
	w.setState(StateRunning)
	w.fireOnStart(res.PID)

	runErr := runner.Run(execCtx, prog)
	stdoutSink.Flush()
	stderrSink.Flush()

	res.Duration = time.Since(start)
	if w.cfg.CaptureOutput {
		res.Stdout = stdoutBuf.String()
		res.Stderr = stderrBuf.String()
	}

	switch {
	case execCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil:
		res.TimedOut = true
		res.ReturnCode = CodeFailure
		w.setState(StateTimedOut)
		slog.Error("shell command timed out", "timeout", w.cfg.Timeout)
	case ctx.Err() != nil:
		res.ReturnCode = CodeInterrupted
		w.setState(StateCancelled)
		slog.Warn("shell command cancelled")
	case runErr != nil:
		var exitStatus interp.ExitStatus
		if errors.As(runErr, &exitStatus) {
			res.ReturnCode = int(exitStatus)
			w.setState(StateCompleted)
		} else {
			w.setState(StateFailed)
			return res, fmt.Errorf("shell execution failed: %w", runErr)
		}
	default:
		res.ReturnCode = 0
		w.setState(StateCompleted)
	}

	slog.Info("shell command finished", "code", res.ReturnCode, "duration", res.Duration)
	return res, nil
}
