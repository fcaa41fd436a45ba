package tui

import (
	"fmt"
	"os"
)

// Windows has no SIGTERM; the process is ended outright.
func termProcess(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("process %d not found: %w", pid, err)
	}
	if err := proc.Kill(); err != nil {
		return fmt.Errorf("terminate PID %d failed: %w", pid, err)
	}
	return nil
}
