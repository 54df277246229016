// SPDX-License-Identifier: MPL-2.0

//go:build windows

package wrapper

import (
	"os"
	"os/exec"
)

// setProcessGroup is a no-op on Windows; termination goes through
// Process.Kill, which Windows implements with TerminateProcess.
func setProcessGroup(cmd *exec.Cmd) {}

func signalTerm(p *os.Process) error {
	return p.Kill()
}

func signalKill(p *os.Process) {
	_ = p.Kill()
}
