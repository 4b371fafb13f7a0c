//go:build windows

package main

import (
	"fmt"
	"os/exec"
	"syscall"
)

// configureProcessGroup keeps the child from opening a console window.
// Windows has no Unix-style process groups to join.
func configureProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		HideWindow: true,
	}
}

// terminateProcessGroup has no graceful signal to send on Windows. The error
// routes callers to the exec.Cmd Kill fallback.
func terminateProcessGroup(pid int) error {
	return fmt.Errorf("graceful termination is not available on windows")
}

// forceKillProcessGroup likewise defers to the process handle on Windows.
func forceKillProcessGroup(pid int) error {
	return fmt.Errorf("force kill must go through the process handle on windows")
}
