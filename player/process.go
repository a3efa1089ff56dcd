package player

import (
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/tubecli/tube/log"
)

// Process supervises a spawned player binary.
type Process struct {
	cmd      *exec.Cmd
	endpoint string
	exited   chan struct{}
	waitErr  error

	terminateOnce sync.Once
}

// StartProcess launches the player for the given mode. The player's standard
// streams are not inherited. The returned process is reaped in the background.
func StartProcess(opts SpawnOptions, mode PlaybackMode) (*Process, error) {
	if opts.EndpointPath == "" {
		return nil, &SpawnError{Binary: opts.Binary, Err: fmt.Errorf("no IPC endpoint configured")}
	}

	path, err := exec.LookPath(opts.Binary)
	if err != nil {
		return nil, &SpawnError{Binary: opts.Binary, Err: err}
	}

	args := opts.args(mode)
	cmd := exec.Command(path, args...)
	cmd.SysProcAttr = sysProcAttr()
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Binary: opts.Binary, Err: err}
	}

	p := &Process{
		cmd:      cmd,
		endpoint: opts.EndpointPath,
		exited:   make(chan struct{}),
	}

	go func() {
		p.waitErr = cmd.Wait()
		close(p.exited)
	}()

	log.With(log.Fields{"pid": cmd.Process.Pid, "mode": mode.String()}).Debugf("started %s %v", path, args)
	return p, nil
}

// Pid returns the operating system process id.
func (p *Process) Pid() int {
	return p.cmd.Process.Pid
}

// Exited returns a channel closed when the process has exited and been reaped.
func (p *Process) Exited() <-chan struct{} {
	return p.exited
}

// IsRunning reports whether the process has not yet exited. It never blocks.
func (p *Process) IsRunning() bool {
	select {
	case <-p.exited:
		return false
	default:
		return true
	}
}

// ExitErr returns the wait error once the process has exited.
func (p *Process) ExitErr() error {
	select {
	case <-p.exited:
		return p.waitErr
	default:
		return nil
	}
}

// Terminate asks the process to exit and kills it if it is still alive after
// timeout. The IPC endpoint file is removed afterwards. Safe to call more than once.
func (p *Process) Terminate(timeout time.Duration) {
	p.terminateOnce.Do(func() {
		entry := log.With(log.Fields{"pid": p.cmd.Process.Pid})

		if p.IsRunning() {
			if err := interruptProcess(p.cmd); err != nil {
				entry.Warnf("interrupt player: %v", err)
			}

			select {
			case <-p.exited:
			case <-time.After(timeout):
				entry.Warnf("player did not exit within %s, killing", timeout)
				if err := killProcess(p.cmd); err != nil {
					entry.Errorf("kill player: %v", err)
				}
				select {
				case <-p.exited:
				case <-time.After(timeout):
					entry.Errorf("player %d still alive after kill", p.cmd.Process.Pid)
				}
			}
		}

		if err := removeEndpoint(p.endpoint); err != nil {
			entry.Warnf("remove endpoint %s: %v", p.endpoint, err)
		}
		entry.Debugf("player exited: %v", p.waitErr)
	})
}
