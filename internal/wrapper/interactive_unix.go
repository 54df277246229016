// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package wrapper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync/atomic"
	"time"

	"github.com/creack/pty"
)

// runInteractive attaches the child to a pseudo-terminal so full-screen
// programs (editors, REPLs) behave as if launched from a real terminal.
// Output capture is unavailable in this mode; Config.Validate enforces
// that combination upfront.
func (w *Wrapper) runInteractive(ctx context.Context, start time.Time) (*Result, error) {
	res := &Result{ReturnCode: CodeFailure}

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

	slog.Info("executing interactive command", "command", strings.Join(res.Command, " "))

	ptmx, err := pty.Start(cmd)
	if err != nil {
		w.setState(StateFailed)
		res.Duration = time.Since(start)
		return res, fmt.Errorf("failed to start %s on a pty: %w", exe, err)
	}
	defer func() { _ = ptmx.Close() }()

	w.setState(StateRunning)
	res.PID = cmd.Process.Pid
	w.fireOnStart(res.PID)

	stdin := w.cfg.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	go func() { _, _ = io.Copy(ptmx, stdin) }()
	go func() { _, _ = io.Copy(w.stdout(), ptmx) }()

	var timedOut, interrupted atomic.Bool
	waitDone := make(chan struct{})
	watchCtx, stopWatch := context.WithCancel(context.Background())
	watcherDone := make(chan struct{})
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
			w.terminate(cmd, waitDone)
		case <-ctx.Done():
			interrupted.Store(true)
			w.terminate(cmd, waitDone)
		}
	}()

	waitErr := cmd.Wait()
	close(waitDone)
	stopWatch()
	<-watcherDone

	res.Duration = time.Since(start)
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
	return res, nil
}
