package tui

import (
	"errors"
	"fmt"
	"slices"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pranshuparmar/listeners/pkg/model"
)

// fixed widths of every column but Path, plus the cell padding of all six
const fixedColumnsWidth = 8 + 20 + 6 + 28 + 6 + 6*2

func (m MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.statusMsg = "" // clear any transient error on interaction
		return m.handleMouse(msg)

	case tea.KeyMsg:
		m.statusMsg = ""
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}

		if m.pendingTerm != 0 {
			pid := m.pendingTerm
			m.pendingTerm = 0
			if msg.String() == "y" || msg.String() == "Y" {
				return m, terminate(pid)
			}
			m.statusMsg = "Cancelled"
			return m, nil
		}

		if m.input.Focused() {
			if msg.String() == "enter" || msg.String() == "esc" {
				m.input.Blur()
				return m, nil
			}
			var inputCmd tea.Cmd
			m.input, inputCmd = m.input.Update(msg)
			m.filterListeners()
			m.table.SetCursor(0)
			return m, inputCmd
		}

		switch msg.String() {
		case "q", "esc":
			m.quitting = true
			return m, tea.Quit
		case "/":
			m.input.Focus()
			return m, textinput.Blink
		case "r", "R":
			m.loading = true
			return m, m.refreshListeners()
		case "x", "X":
			if l, ok := m.selected(); ok {
				m.pendingTerm = l.Process.PID
			}
			return m, nil
		case "p", "P":
			m.setSort(sortPID)
			return m, nil
		case "n", "N":
			m.setSort(sortName)
			return m, nil
		case "t", "T":
			m.setSort(sortProto)
			return m, nil
		case "a", "A":
			m.setSort(sortAddress)
			return m, nil
		case "o", "O":
			m.setSort(sortPort)
			return m, nil
		case "e", "E":
			m.setSort(sortPath)
			return m, nil
		}

		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		tableWidth := max(msg.Width-6, 10)
		tableRows := max(msg.Height-11, 5)

		columns := m.table.Columns()
		columns[sortPath].Width = max(tableWidth-fixedColumnsWidth, 10)
		m.table.SetColumns(columns)
		m.table.SetWidth(tableWidth)
		// SetHeight counts the header and its border
		m.table.SetHeight(tableRows + 2)
		m.filterListeners()
		return m, nil

	case snapshotMsg:
		current, hadSelection := m.selected()

		m.loading = false
		m.takenAt = msg.takenAt
		m.listeners = slices.Clone(msg.listeners)
		m.sortListeners()
		m.filterListeners()

		newIdx := 0
		if hadSelection {
			for i, l := range m.filtered {
				if l == current {
					newIdx = i
					break
				}
			}
		}
		m.table.SetCursor(newIdx)
		return m, nil

	case termResultMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("Sent termination request to PID %d", msg.pid)
		m.loading = true
		return m, m.refreshListeners()

	case error:
		m.loading = false
		m.statusMsg = fmt.Sprintf("Error: %v", msg)
		if errors.Is(msg, model.ErrUnsupportedPlatform) {
			m.listeners = nil
			m.filterListeners()
		}
		return m, nil
	}

	return m, nil
}
