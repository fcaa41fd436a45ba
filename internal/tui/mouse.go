package tui

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// screen rows of the filter input and the table header
const (
	inputRow       = 5
	tableHeaderRow = 7
)

// returns the column index at x pixels, or -1 if not found.
func getColumnAtX(x int, cols []table.Column) int {
	currentX := 0
	for i, col := range cols {
		colWidth := col.Width + 2
		if x >= currentX && x < currentX+colWidth {
			return i
		}
		currentX += colWidth
	}
	return -1
}

func (m MainModel) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.table, cmd = m.table.Update(tea.KeyMsg{Type: tea.KeyUp})
		return m, cmd
	case tea.MouseButtonWheelDown:
		m.table, cmd = m.table.Update(tea.KeyMsg{Type: tea.KeyDown})
		return m, cmd
	}

	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}

	if msg.Y == inputRow {
		m.input.Focus()
		return m, textinput.Blink
	}
	if m.input.Focused() {
		m.input.Blur()
	}

	contentX := msg.X - 2
	if contentX < 0 || msg.Y < tableHeaderRow {
		return m, nil
	}

	if msg.Y == tableHeaderRow {
		if col := getColumnAtX(contentX, m.table.Columns()); col >= 0 {
			m.setSort(sortColumn(col))
		}
		return m, nil
	}

	// Manual Row Selection: the table view starts with the header and its
	// border, then the visible rows.
	lines := strings.Split(m.table.View(), "\n")
	idx := msg.Y - tableHeaderRow
	if idx < 2 || idx >= len(lines) {
		return m, nil
	}
	fields := strings.Fields(stripAnsi(lines[idx]))
	if len(fields) == 0 {
		return m, nil
	}
	for i, row := range m.table.Rows() {
		if row[0] == fields[0] && slices.Contains(fields, row[3]) && slices.Contains(fields, row[4]) {
			m.table.SetCursor(i)
			break
		}
	}
	return m, nil
}
