//go:build windows

package process

import (
	"os/exec"
	"time"
)

// setupProcessGroup is a no-op on Windows
func setupProcessGroup(cmd *exec.Cmd) {
}

// stopProcess kills the process on Windows; there is no graceful signal.
func stopProcess(cmd *exec.Cmd, done <-chan struct{}, grace time.Duration) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}
