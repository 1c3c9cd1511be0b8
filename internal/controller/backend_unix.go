//go:build !windows

package controller

import (
	"os/exec"
	"syscall"
)

// setDetachAttrs puts the child in its own session so it survives the
// controlling invocation and its terminal.
func setDetachAttrs(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}

func (OSBackend) Terminate(pid int) error {
	return syscall.Kill(pid, syscall.SIGTERM)
}
