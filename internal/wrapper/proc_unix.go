// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package wrapper

import (
	"os"
	"os/exec"
	"syscall"
)

// setProcessGroup starts the child in its own process group so that
// termination signals reach its descendants too. Without this a killed shell
// can leave grandchildren holding the output pipes open and the stream
// readers would never see EOF.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// signalTerm delivers SIGTERM to the child's process group. An error means
// signal delivery is not possible and the caller should fall back to a kill.
func signalTerm(p *os.Process) error {
	return signalGroup(p, syscall.SIGTERM)
}

// signalKill force-kills the child's process group.
func signalKill(p *os.Process) {
	_ = signalGroup(p, syscall.SIGKILL)
}

// signalGroup signals the process group led by p, falling back to p alone
// when the group is already gone or was never created (pty children own
// their session instead).
func signalGroup(p *os.Process, sig syscall.Signal) error {
	if err := syscall.Kill(-p.Pid, sig); err == nil {
		return nil
	}
	return p.Signal(sig)
}
