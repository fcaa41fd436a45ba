package tui

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/truncate"

	"github.com/pranshuparmar/listeners/internal/pipeline"
	"github.com/pranshuparmar/listeners/pkg/model"
)

type snapshotMsg struct {
	listeners []model.Listener
	takenAt   time.Time
}

type termResultMsg struct {
	pid uint32
	err error
}

func (m MainModel) refreshListeners() tea.Cmd {
	src := m.src
	return func() tea.Msg {
		ls, err := src.GetAll()
		if err != nil {
			return err
		}
		return snapshotMsg{listeners: ls, takenAt: time.Now()}
	}
}

func terminate(pid uint32) tea.Cmd {
	return func() tea.Msg {
		return termResultMsg{pid: pid, err: termProcess(int(pid))}
	}
}

func (m *MainModel) sortListeners() {
	slices.SortStableFunc(m.listeners, func(a, b model.Listener) int {
		var c int
		switch m.sortCol {
		case sortName:
			c = cmp.Compare(strings.ToLower(a.Process.Name), strings.ToLower(b.Process.Name))
		case sortProto:
			c = cmp.Compare(a.Protocol, b.Protocol)
		case sortAddress:
			c = a.Socket.Addr().Compare(b.Socket.Addr())
		case sortPort:
			c = cmp.Compare(a.Socket.Port(), b.Socket.Port())
		case sortPath:
			c = cmp.Compare(a.Process.Path, b.Process.Path)
		}
		if c == 0 {
			c = a.Compare(b)
		}
		if m.sortDesc {
			return -c
		}
		return c
	})
}

func (m *MainModel) filterListeners() {
	m.filtered = pipeline.Filter(m.listeners, m.input.Value())

	pathWidth := m.table.Columns()[sortPath].Width
	rows := make([]table.Row, 0, len(m.filtered))
	for _, l := range m.filtered {
		path := l.Process.Path
		if pathWidth > 0 {
			path = truncate.StringWithTail(path, uint(pathWidth), "…")
		}
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", l.Process.PID),
			l.Process.Name,
			l.Protocol.String(),
			l.Socket.Addr().String(),
			fmt.Sprintf("%d", l.Socket.Port()),
			path,
		})
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func baseColumns() []table.Column {
	return []table.Column{
		{Title: "PID", Width: 8},
		{Title: "Name", Width: 20},
		{Title: "Proto", Width: 6},
		{Title: "Address", Width: 28},
		{Title: "Port", Width: 6},
		{Title: "Path", Width: 40},
	}
}

func (m *MainModel) getColumns() []table.Column {
	cols := baseColumns()
	if m.sortDesc {
		cols[m.sortCol].Title += " ↓"
	} else {
		cols[m.sortCol].Title += " ↑"
	}
	return cols
}

// setSort selects col, flipping direction when it is already selected.
func (m *MainModel) setSort(col sortColumn) {
	if m.sortCol == col {
		m.sortDesc = !m.sortDesc
	} else {
		m.sortCol = col
		m.sortDesc = false
	}

	widths := m.table.Columns()
	cols := m.getColumns()
	for i := range cols {
		if i < len(widths) {
			cols[i].Width = widths[i].Width
		}
	}
	m.table.SetColumns(cols)
	m.sortListeners()
	m.filterListeners()
}

// selected returns the listener under the cursor.
func (m MainModel) selected() (model.Listener, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.filtered) {
		return model.Listener{}, false
	}
	return m.filtered[i], true
}
