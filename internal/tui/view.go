package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m MainModel) View() string {
	if m.quitting {
		return ""
	}

	outerStyle := baseStyle.
		Width(m.width-2).
		Height(m.height-2).
		Padding(0, 1)

	status := "Mode: Navigation (Press / to search)"
	switch {
	case m.pendingTerm != 0:
		status = confirmStyle.Render(fmt.Sprintf("Terminate PID %d? (y/n)", m.pendingTerm))
	case m.statusMsg != "":
		status = errorStyle.Render(m.statusMsg)
	case m.input.Focused():
		status = "Mode: Searching (Press Esc/Enter to stop)"
	case m.loading:
		status = "Taking snapshot..."
	}

	snapshot := "no snapshot"
	if !m.takenAt.IsZero() {
		snapshot = "snapshot " + m.takenAt.Format("15:04:05")
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		titleStyle.Render("listeners"),
		snapshotStyle.Render(snapshot),
	)

	helpText := fmt.Sprintf("Total: %d/%d | p/n/t/a/o/e: Sort | r: Re-snapshot | x: Terminate | Esc/q: Quit", len(m.filtered), len(m.listeners))
	footerContent := helpText
	if m.version != "" {
		gap := m.width - 6 - lipgloss.Width(helpText) - lipgloss.Width(m.version)
		if gap > 0 {
			footerContent = helpText + strings.Repeat(" ", gap) + m.version
		}
	}

	return outerStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			lipgloss.NewStyle().Height(1).Render(""),
			lipgloss.NewStyle().MarginBottom(1).PaddingLeft(1).Render(status),
			lipgloss.NewStyle().MarginBottom(1).PaddingLeft(1).Render(m.input.View()),
			m.table.View(),
			lipgloss.NewStyle().Height(1).Render(""),
			footerStyle.Width(max(m.width-4, 0)).Render(footerContent),
		),
	)
}
