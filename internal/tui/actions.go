//go:build !windows

package tui

import (
	"fmt"
	"os"
	"syscall"
)

func termProcess(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("process %d not found: %w", pid, err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal %v to PID %d failed: %w", syscall.SIGTERM, pid, err)
	}
	return nil
}
