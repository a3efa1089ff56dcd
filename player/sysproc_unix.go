//go:build !windows

package player

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

// sysProcAttr detaches the player into its own process group so terminal
// signals aimed at us do not reach it, and so the whole group can be signalled.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Setpgid: true,
	}
}

// interruptProcess asks the player process group to exit.
func interruptProcess(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGTERM); err != nil && !errors.Is(err, syscall.ESRCH) {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	return nil
}

// killProcess forcibly kills the player process group.
func killProcess(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}
