// SPDX-License-Identifier: MPL-2.0

package wrapper

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"envoy-cli/internal/environment"
)

// testEnv resolves an inherited-mode environment so spawned children see the
// test host's PATH.
func testEnv(t *testing.T) *environment.Resolved {
	t.Helper()
	env, err := environment.NewResolver(environment.ModeInherited, nil).Resolve(nil)
	if err != nil {
		t.Fatalf("failed to resolve test environment: %v", err)
	}
	return env
}

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("test relies on POSIX sh")
	}
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	env := testEnv(t)

	if _, err := New(Config{}, env); !errors.Is(err, ErrInvalidWrapperConfig) {
		t.Errorf("New with empty config: error %v does not wrap ErrInvalidWrapperConfig", err)
	}
	if _, err := New(NewConfig("true"), nil); !errors.Is(err, ErrInvalidWrapperConfig) {
		t.Errorf("New with nil env: error %v does not wrap ErrInvalidWrapperConfig", err)
	}
	if _, err := New(NewConfig("true"), env); err != nil {
		t.Errorf("New with valid inputs: error = %v", err)
	}
}

func TestRun_Success(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	cfg := NewConfig("sh", "-c", "echo hi")
	cfg.CaptureOutput = true
	cfg.StreamOutput = false

	w, err := New(cfg, testEnv(t))
	if err != nil {
		t.Fatal(err)
	}
	res, err := w.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !res.Success() {
		t.Errorf("result not successful: %+v", res)
	}
	if got := strings.TrimSpace(res.Stdout); got != "hi" {
		t.Errorf("Stdout = %q, want hi", got)
	}
	if res.PID <= 0 {
		t.Errorf("PID = %d, want > 0", res.PID)
	}
	if res.Duration <= 0 {
		t.Error("Duration not recorded")
	}
	if w.State() != StateCompleted {
		t.Errorf("State = %v, want StateCompleted", w.State())
	}
}

func TestRun_NonzeroExit(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	cfg := NewConfig("sh", "-c", "exit 3")
	cfg.StreamOutput = false

	res, err := Run(context.Background(), cfg, testEnv(t))
	if err == nil {
		t.Fatal("Run() expected error for nonzero exit")
	}
	if !errors.Is(err, ErrExecution) {
		t.Errorf("error %v does not wrap ErrExecution", err)
	}

	var execErr *ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("error %v is not an ExecutionError", err)
	}
	if execErr.Result == nil {
		t.Fatal("ExecutionError carries no result")
	}
	if execErr.Result.ReturnCode != 3 {
		t.Errorf("ReturnCode = %d, want 3", execErr.Result.ReturnCode)
	}
	if res == nil || res != execErr.Result {
		t.Error("Run should return the same result the error carries")
	}
}

func TestRun_RaiseOnErrorDisabled(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	cfg := NewConfig("sh", "-c", "exit 3")
	cfg.StreamOutput = false
	cfg.RaiseOnError = false

	res, err := Run(context.Background(), cfg, testEnv(t))
	if err != nil {
		t.Fatalf("Run() error = %v, want nil with RaiseOnError disabled", err)
	}
	if res.ReturnCode != 3 {
		t.Errorf("ReturnCode = %d, want 3", res.ReturnCode)
	}
}

func TestRun_Timeout(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping process timeout test in short mode")
	}
	t.Parallel()
	skipOnWindows(t)

	cfg := NewConfig("sleep", "10")
	cfg.StreamOutput = false
	cfg.Timeout = 100 * time.Millisecond
	cfg.GracePeriod = 100 * time.Millisecond

	w, err := New(cfg, testEnv(t))
	if err != nil {
		t.Fatal(err)
	}

	start := time.Now()
	res, err := w.Run(context.Background())
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("Run() expected error after timeout")
	}
	var execErr *ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("error %v is not an ExecutionError", err)
	}
	if !res.TimedOut {
		t.Error("TimedOut not set")
	}
	if res.Success() {
		t.Error("timed out run must not be successful")
	}
	if w.State() != StateTimedOut {
		t.Errorf("State = %v, want StateTimedOut", w.State())
	}
	if elapsed > 5*time.Second {
		t.Errorf("termination took %v, child was not killed promptly", elapsed)
	}
	assertProcessGone(t, res.PID)
}

func TestRun_CaptureLongLine(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping large output test in short mode")
	}
	t.Parallel()
	skipOnWindows(t)

	// A single line of a couple of megabytes must be captured in full and
	// never mistaken for a stalled child.
	cfg := NewConfig("sh", "-c", "head -c 2097152 /dev/zero | tr '\\0' a")
	cfg.CaptureOutput = true
	cfg.StreamOutput = false
	cfg.Timeout = 30 * time.Second

	res, err := Run(context.Background(), cfg, testEnv(t))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.TimedOut {
		t.Error("TimedOut set for a run that completed")
	}
	if got := len(res.Stdout); got < 2*1024*1024 {
		t.Errorf("captured %d bytes of stdout, want at least 2MiB", got)
	}
}

func TestRun_ContextCancellation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping process cancellation test in short mode")
	}
	t.Parallel()
	skipOnWindows(t)

	cfg := NewConfig("sleep", "10")
	cfg.StreamOutput = false
	cfg.GracePeriod = 100 * time.Millisecond
	cfg.RaiseOnError = false

	w, err := New(cfg, testEnv(t))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	res, err := w.Run(ctx)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.ReturnCode != CodeInterrupted {
		t.Errorf("ReturnCode = %d, want CodeInterrupted", res.ReturnCode)
	}
	if w.State() != StateCancelled {
		t.Errorf("State = %v, want StateCancelled", w.State())
	}
}

func TestRun_PreRunAbort(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	hookErr := errors.New("setup failed")
	ran := false

	cfg := NewConfig("sh", "-c", "echo should-not-run")
	cfg.StreamOutput = false
	cfg.Hooks.PreRun = func() error { return hookErr }
	cfg.Hooks.OnStart = func(int) { ran = true }

	w, err := New(cfg, testEnv(t))
	if err != nil {
		t.Fatal(err)
	}
	res, err := w.Run(context.Background())

	if !errors.Is(err, ErrPreRun) {
		t.Errorf("error %v does not wrap ErrPreRun", err)
	}
	if !errors.Is(err, hookErr) {
		t.Errorf("error %v does not wrap the hook's error", err)
	}
	if res != nil {
		t.Error("no result should exist when the pre-run hook aborts")
	}
	if ran {
		t.Error("child was spawned despite pre-run abort")
	}
	if w.State() != StateFailed {
		t.Errorf("State = %v, want StateFailed", w.State())
	}
}

func TestRun_PreRunContinue(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	cfg := NewConfig("sh", "-c", "exit 0")
	cfg.StreamOutput = false
	cfg.Hooks.PreRun = func() error { return errors.New("ignorable") }
	cfg.ContinueOnPreRunError = true

	res, err := Run(context.Background(), cfg, testEnv(t))
	if err != nil {
		t.Fatalf("Run() error = %v, want nil when pre-run errors are tolerated", err)
	}
	if !res.Success() {
		t.Errorf("result not successful: %+v", res)
	}
}

func TestRun_PostRun(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	t.Run("failure is tolerated by default", func(t *testing.T) {
		t.Parallel()
		var seen *Result
		cfg := NewConfig("sh", "-c", "exit 0")
		cfg.StreamOutput = false
		cfg.Hooks.PostRun = func(r *Result) error {
			seen = r
			return errors.New("cleanup failed")
		}

		res, err := Run(context.Background(), cfg, testEnv(t))
		if err != nil {
			t.Fatalf("Run() error = %v, want nil", err)
		}
		if seen != res {
			t.Error("post-run hook did not receive the run's result")
		}
	})

	t.Run("failure propagates when opted in", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig("sh", "-c", "exit 0")
		cfg.StreamOutput = false
		cfg.ContinueOnPostRunError = false
		cfg.Hooks.PostRun = func(*Result) error { return errors.New("cleanup failed") }

		res, err := Run(context.Background(), cfg, testEnv(t))
		if !errors.Is(err, ErrPostRun) {
			t.Errorf("error %v does not wrap ErrPostRun", err)
		}
		if res == nil {
			t.Error("result should survive a post-run failure")
		}
	})

	t.Run("fires even when execution fails", func(t *testing.T) {
		t.Parallel()
		fired := false
		cfg := NewConfig("sh", "-c", "exit 7")
		cfg.StreamOutput = false
		cfg.Hooks.PostRun = func(r *Result) error {
			fired = r != nil && r.ReturnCode == 7
			return nil
		}

		_, err := Run(context.Background(), cfg, testEnv(t))
		if !errors.Is(err, ErrExecution) {
			t.Fatalf("error %v does not wrap ErrExecution", err)
		}
		if !fired {
			t.Error("post-run hook did not fire with the failed result")
		}
	})
}

func TestRun_OutputCallbacks(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	var mu sync.Mutex
	var stdoutLines, stderrLines []string
	var startPID int

	cfg := NewConfig("sh", "-c", "echo out1; echo err1 >&2; echo out2")
	cfg.StreamOutput = false
	cfg.Hooks.OnStart = func(pid int) { startPID = pid }
	cfg.Hooks.OnOutput = func(line string) {
		mu.Lock()
		stdoutLines = append(stdoutLines, line)
		mu.Unlock()
	}
	cfg.Hooks.OnError = func(line string) {
		mu.Lock()
		stderrLines = append(stderrLines, line)
		mu.Unlock()
	}

	res, err := Run(context.Background(), cfg, testEnv(t))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if want := []string{"out1", "out2"}; len(stdoutLines) != 2 || stdoutLines[0] != want[0] || stdoutLines[1] != want[1] {
		t.Errorf("stdout lines = %v, want %v", stdoutLines, want)
	}
	if len(stderrLines) != 1 || stderrLines[0] != "err1" {
		t.Errorf("stderr lines = %v, want [err1]", stderrLines)
	}
	if startPID != res.PID {
		t.Errorf("OnStart pid = %d, want %d", startPID, res.PID)
	}
}

func TestRun_SingleUse(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	cfg := NewConfig("sh", "-c", "exit 0")
	cfg.StreamOutput = false

	w, err := New(cfg, testEnv(t))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Run(context.Background()); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	if _, err := w.Run(context.Background()); !errors.Is(err, ErrAlreadyRun) {
		t.Errorf("second Run() error = %v, want ErrAlreadyRun", err)
	}
}

func TestRun_ExecutableNotFound(t *testing.T) {
	t.Parallel()

	cfg := NewConfig("definitely-not-a-real-binary-1a2b3c")
	cfg.StreamOutput = false

	w, err := New(cfg, testEnv(t))
	if err != nil {
		t.Fatal(err)
	}
	res, err := w.Run(context.Background())
	if !errors.Is(err, ErrExecutableNotFound) {
		t.Errorf("error %v does not wrap ErrExecutableNotFound", err)
	}
	if res == nil || res.ReturnCode != CodeFailure {
		t.Errorf("result = %+v, want CodeFailure sentinel", res)
	}
	if w.State() != StateFailed {
		t.Errorf("State = %v, want StateFailed", w.State())
	}
}

func TestRun_Shell(t *testing.T) {
	t.Parallel()

	cfg := NewConfig("echo", "hello", "shell")
	cfg.Shell = true
	cfg.StreamOutput = false
	cfg.CaptureOutput = true

	res, err := Run(context.Background(), cfg, testEnv(t))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := strings.TrimSpace(res.Stdout); got != "hello shell" {
		t.Errorf("Stdout = %q, want %q", got, "hello shell")
	}
	if !res.Success() {
		t.Errorf("result not successful: %+v", res)
	}
}

func TestRun_ShellExitStatus(t *testing.T) {
	t.Parallel()

	cfg := NewConfig("exit", "4")
	cfg.Shell = true
	cfg.StreamOutput = false
	cfg.RaiseOnError = false

	res, err := Run(context.Background(), cfg, testEnv(t))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.ReturnCode != 4 {
		t.Errorf("ReturnCode = %d, want 4", res.ReturnCode)
	}
}

func TestRun_NilContext(t *testing.T) {
	t.Parallel()
	skipOnWindows(t)

	cfg := NewConfig("sh", "-c", "exit 0")
	cfg.StreamOutput = false

	w, err := New(cfg, testEnv(t))
	if err != nil {
		t.Fatal(err)
	}
	//nolint:staticcheck // nil context handling is the behavior under test
	if _, err := w.Run(nil); err != nil {
		t.Errorf("Run(nil) error = %v", err)
	}
}
