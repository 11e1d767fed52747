//go:build !windows

package process

import (
	"errors"
	"os/exec"
	"syscall"
	"time"
)

// setupProcessGroup configures the command to run in its own process group
// so npm and the node server it forks can be signalled together.
func setupProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// stopProcess sends SIGTERM to the group, waits up to grace for the leader
// to exit, then sends SIGKILL.
func stopProcess(cmd *exec.Cmd, done <-chan struct{}, grace time.Duration) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}

	pgid, pgErr := syscall.Getpgid(cmd.Process.Pid)
	if pgErr != nil {
		return cmd.Process.Kill()
	}

	termErr := syscall.Kill(-pgid, syscall.SIGTERM)
	if termErr != nil && !errors.Is(termErr, syscall.ESRCH) {
		return termErr
	}

	select {
	case <-done:
	case <-time.After(grace):
	}

	// The group may outlive its leader, so SIGKILL goes out either way.
	killErr := syscall.Kill(-pgid, syscall.SIGKILL)
	if killErr != nil && !errors.Is(killErr, syscall.ESRCH) {
		return killErr
	}

	return nil
}
