//go:build windows

package player

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

const createNoWindow = 0x08000000

func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		CreationFlags: createNoWindow,
	}
}

// interruptProcess has no graceful equivalent on windows; the quit command
// sent over IPC is the graceful path, so this kills directly.
func interruptProcess(cmd *exec.Cmd) error {
	return killProcess(cmd)
}

func killProcess(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}
