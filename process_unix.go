//go:build unix

package main

import (
	"os/exec"
	"syscall"
)

// configureProcessGroup puts the child in its own process group so that
// signals reach the whole app tree, not just the direct child.
func configureProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
}

// signalProcessGroup delivers sig to every process in the child's group.
func signalProcessGroup(pid int, sig syscall.Signal) error {
	return syscall.Kill(-pid, sig)
}

// terminateProcessGroup asks the group to exit gracefully.
func terminateProcessGroup(pid int) error {
	return signalProcessGroup(pid, syscall.SIGTERM)
}

// forceKillProcessGroup ends the group immediately.
func forceKillProcessGroup(pid int) error {
	return signalProcessGroup(pid, syscall.SIGKILL)
}
