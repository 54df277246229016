// SPDX-License-Identifier: MPL-2.0

package wrapper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"envoy-cli/internal/environment"
)

// Wrapper supervises exactly one child process execution. A Wrapper is
// single-use: Run may be called once.
type Wrapper struct {
	cfg     Config
	env     *environment.Resolved
	state   atomic.Int32
	started atomic.Bool
}

// New validates the configuration and builds a Wrapper bound to a resolved
// environment.
func New(cfg Config, env *environment.Resolved) (*Wrapper, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if env == nil {
		return nil, &InvalidConfigError{Reason: "resolved environment must not be nil"}
	}
	if cfg.GracePeriod == 0 {
		cfg.GracePeriod = DefaultGracePeriod
	}
	return &Wrapper{cfg: cfg, env: env}, nil
}

// Run builds a Wrapper and executes it. It is the package's convenience
// entry point.
func Run(ctx context.Context, cfg Config, env *environment.Resolved) (*Result, error) {
	w, err := New(cfg, env)
	if err != nil {
		return nil, err
	}
	return w.Run(ctx)
}

// State returns the current lifecycle state.
func (w *Wrapper) State() State { return State(w.state.Load()) }

func (w *Wrapper) setState(s State) {
	w.state.Store(int32(s))
	slog.Debug("execution state changed", "state", s.String())
}

// Run executes the configured command against the resolved environment.
//
// The returned Result is fully assembled before any error is returned, with
// one exception: a pre-run abort returns no Result because no child was ever
// spawned. On every exit path the child has been terminated (if it was still
// alive) and both stream readers have finished draining before Run returns.
func (w *Wrapper) Run(ctx context.Context) (*Result, error) {
	if !w.started.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRun
	}
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()

	if err := w.firePreRun(); err != nil {
		w.setState(StateFailed)
		return nil, err
	}

	var res *Result
	var cause error
	switch {
	case w.cfg.Shell:
		res, cause = w.runShell(ctx, start)
	case w.cfg.Interactive:
		res, cause = w.runInteractive(ctx, start)
	default:
		res, cause = w.runNative(ctx, start)
	}

	// The post-run hook fires even when execution failed, and always after
	// both streams have drained; an ExecutionError is raised only after it,
	// so exception-style callers still receive the complete result.
	if err := w.firePostRun(res); err != nil {
		return res, err
	}

	if w.cfg.RaiseOnError && (cause != nil || !res.Success()) {
		return res, &ExecutionError{Result: res, Err: cause}
	}
	return res, nil
}

// runNative spawns the executable directly and supervises it. It always
// returns a non-nil Result; a non-nil error marks an infrastructure failure
// (lookup, spawn, or wait) rather than a nonzero child exit.
func (w *Wrapper) runNative(ctx context.Context, start time.Time) (*Result, error) {
	res := &Result{ReturnCode: CodeFailure, Captured: w.cfg.CaptureOutput}

	exe, err := ResolveExecutable(w.cfg.Executable, w.env.Value("PATH"))
	if err != nil {
		w.setState(StateFailed)
		res.Duration = time.Since(start)
		return res, err
	}
	res.Command = append([]string{exe}, w.cfg.Args...)

	cmd := exec.Command(exe, w.cfg.Args...)
	cmd.Env = w.env.Environ()
	cmd.Dir = w.cfg.WorkDir
	cmd.Stdin = w.cfg.Stdin
	setProcessGroup(cmd)

	needPipes := w.cfg.CaptureOutput || w.cfg.StreamOutput ||
		w.cfg.Hooks.OnOutput != nil || w.cfg.Hooks.OnError != nil

	var stdoutPipe, stderrPipe io.ReadCloser
	if needPipes {
		if stdoutPipe, err = cmd.StdoutPipe(); err != nil {
			w.setState(StateFailed)
			res.Duration = time.Since(start)
			return res, fmt.Errorf("failed to open stdout pipe: %w", err)
		}
		if stderrPipe, err = cmd.StderrPipe(); err != nil {
			w.setState(StateFailed)
			res.Duration = time.Since(start)
			return res, fmt.Errorf("failed to open stderr pipe: %w", err)
		}
	}

	slog.Info("executing command",
		"command", strings.Join(res.Command, " "),
		"workdir", w.cfg.WorkDir,
		"env_mode", w.env.Mode().String(),
		"env_vars", w.env.Len())

	if err := cmd.Start(); err != nil {
		w.setState(StateFailed)
		res.Duration = time.Since(start)
		return res, fmt.Errorf("failed to start %s: %w", exe, err)
	}

	w.setState(StateRunning)
	res.PID = cmd.Process.Pid
	w.fireOnStart(res.PID)
	slog.Info("process started", "pid", res.PID)

	var timedOut, interrupted atomic.Bool
	waitDone := make(chan struct{})
	watchCtx, stopWatch := context.WithCancel(context.Background())
	watcherDone := make(chan struct{})

	// Timeout expiry and external cancellation share one termination path:
	// graceful request, bounded grace wait, forced kill.
	go func() {
		defer close(watcherDone)
		var timeoutCh <-chan time.Time
		if w.cfg.Timeout > 0 {
			timer := time.NewTimer(w.cfg.Timeout)
			defer timer.Stop()
			timeoutCh = timer.C
		}
		select {
		case <-watchCtx.Done():
		case <-timeoutCh:
			timedOut.Store(true)
			slog.Error("process timed out", "pid", res.PID, "timeout", w.cfg.Timeout)
			w.terminate(cmd, waitDone)
		case <-ctx.Done():
			interrupted.Store(true)
			slog.Warn("execution cancelled, terminating process", "pid", res.PID)
			w.terminate(cmd, waitDone)
		}
	}()

	// Scoped cleanup: whatever path leaves this function, the watcher is
	// stopped and a still-running child is killed and reaped.
	defer func() {
		stopWatch()
		<-watcherDone
		if cmd.ProcessState == nil {
			signalKill(cmd.Process)
			_, _ = cmd.Process.Wait()
		}
	}()

	var stdoutBuf, stderrBuf strings.Builder
	var readers sync.WaitGroup
	if needPipes {
		readers.Add(2)
		go drainLines(stdoutPipe, &readers,
			captureInto(w.cfg.CaptureOutput, &stdoutBuf), w.streamTo(w.stdout()), w.cfg.Hooks.OnOutput)
		go drainLines(stderrPipe, &readers,
			captureInto(w.cfg.CaptureOutput, &stderrBuf), w.streamTo(w.stderr()), w.cfg.Hooks.OnError)
	}

	// Readers must drain before Wait closes the pipes. After a forced kill a
	// surviving descendant can still hold the write ends open, so the drain is
	// bounded on the termination path: once the grace period passes, close the
	// read ends ourselves and let the readers unwind.
	readersDone := make(chan struct{})
	go func() {
		readers.Wait()
		close(readersDone)
	}()
	select {
	case <-readersDone:
	case <-watcherDone:
		select {
		case <-readersDone:
		case <-time.After(w.cfg.GracePeriod):
			slog.Warn("output pipes still open after kill, closing", "pid", res.PID)
			if needPipes {
				_ = stdoutPipe.Close()
				_ = stderrPipe.Close()
			}
			<-readersDone
		}
	}
	waitErr := cmd.Wait()
	close(waitDone)
	stopWatch()
	<-watcherDone

	res.Duration = time.Since(start)
	if w.cfg.CaptureOutput {
		res.Stdout = stdoutBuf.String()
		res.Stderr = stderrBuf.String()
	}
	res.ReturnCode = exitCode(waitErr)
	res.TimedOut = timedOut.Load()

	switch {
	case timedOut.Load():
		w.setState(StateTimedOut)
	case interrupted.Load():
		res.ReturnCode = CodeInterrupted
		w.setState(StateCancelled)
	case waitErr != nil && !isExitError(waitErr):
		w.setState(StateFailed)
		return res, fmt.Errorf("process wait failed: %w", waitErr)
	default:
		w.setState(StateCompleted)
	}

	slog.Info("process finished",
		"pid", res.PID,
		"code", res.ReturnCode,
		"duration", res.Duration,
		"timed_out", res.TimedOut)
	return res, nil
}

// terminate requests graceful termination, waits out the grace period, then
// force-kills. waitDone is closed by the owner once the child is reaped.
func (w *Wrapper) terminate(cmd *exec.Cmd, waitDone <-chan struct{}) {
	if cmd.Process == nil {
		return
	}
	if err := signalTerm(cmd.Process); err != nil {
		// Signal delivery is unsupported (Windows) or the process is gone.
		signalKill(cmd.Process)
		return
	}
	select {
	case <-waitDone:
	case <-time.After(w.cfg.GracePeriod):
		slog.Warn("process did not terminate gracefully, forcing kill", "pid", cmd.Process.Pid)
		signalKill(cmd.Process)
	}
}

func (w *Wrapper) firePreRun() error {
	hook := w.cfg.Hooks.PreRun
	if hook == nil {
		return nil
	}
	slog.Debug("running pre-run hook")
	if err := hook(); err != nil {
		slog.Error("pre-run hook failed", "error", err)
		if !w.cfg.ContinueOnPreRunError {
			return &PreRunError{Err: err}
		}
	}
	return nil
}

func (w *Wrapper) firePostRun(res *Result) error {
	hook := w.cfg.Hooks.PostRun
	if hook == nil {
		return nil
	}
	slog.Debug("running post-run hook")
	if err := hook(res); err != nil {
		slog.Error("post-run hook failed", "error", err)
		if !w.cfg.ContinueOnPostRunError {
			return &PostRunError{Err: err}
		}
	}
	return nil
}

func (w *Wrapper) fireOnStart(pid int) {
	if w.cfg.Hooks.OnStart != nil {
		w.cfg.Hooks.OnStart(pid)
	}
}

func (w *Wrapper) stdout() io.Writer {
	if w.cfg.Stdout != nil {
		return w.cfg.Stdout
	}
	return os.Stdout
}

func (w *Wrapper) stderr() io.Writer {
	if w.cfg.Stderr != nil {
		return w.cfg.Stderr
	}
	return os.Stderr
}

func (w *Wrapper) streamTo(out io.Writer) io.Writer {
	if w.cfg.StreamOutput {
		return out
	}
	return nil
}

func captureInto(capture bool, buf *strings.Builder) *strings.Builder {
	if capture {
		return buf
	}
	return nil
}

// exitCode maps a Wait error to a return code: nil is success, an exit
// error reports the child's code (CodeFailure when killed by a signal), and
// anything else is an infrastructure failure.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return CodeFailure
}

func isExitError(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr)
}
