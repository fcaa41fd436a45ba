package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/padding"
	"github.com/muesli/reflow/truncate"

	"github.com/pranshuparmar/listeners/pkg/model"
)

var (
	colorResetTable = "\033[0m"
	colorCyanTable  = "\033[36m"
	colorBoldTable  = "\033[1m"
)

type column struct {
	title string
	max   int // 0 means unbounded
	value func(model.Listener) string
}

var listenerColumns = []column{
	{title: "PID", value: func(l model.Listener) string { return fmt.Sprint(l.Process.PID) }},
	{title: "NAME", max: 24, value: func(l model.Listener) string { return l.Process.Name }},
	{title: "PROTO", value: func(l model.Listener) string { return l.Protocol.String() }},
	{title: "ADDRESS", max: 46, value: func(l model.Listener) string { return l.Socket.Addr().String() }},
	{title: "PORT", value: func(l model.Listener) string { return fmt.Sprint(l.Socket.Port()) }},
	{title: "PATH", value: func(l model.Listener) string { return l.Process.Path }},
}

// RenderTable writes listeners as aligned columns. Cells wider than their
// column limit are cut with an ellipsis. width bounds the last column when
// positive.
func RenderTable(w io.Writer, ls []model.Listener, width int, colorEnabled bool) error {
	widths := make([]int, len(listenerColumns))
	cells := make([][]string, len(ls))
	for i, c := range listenerColumns {
		widths[i] = len(c.title)
	}
	for r, l := range ls {
		cells[r] = make([]string, len(listenerColumns))
		for i, c := range listenerColumns {
			v := c.value(l)
			if c.max > 0 {
				v = truncate.StringWithTail(v, uint(c.max), "…")
			}
			cells[r][i] = v
			widths[i] = max(widths[i], ansi.PrintableRuneWidth(v))
		}
	}

	if width > 0 {
		used := 0
		for _, cw := range widths[:len(widths)-1] {
			used += cw + 2
		}
		if last := width - used; last > len("PATH") && last < widths[len(widths)-1] {
			widths[len(widths)-1] = last
			for r := range cells {
				cells[r][len(widths)-1] = truncate.StringWithTail(cells[r][len(widths)-1], uint(last), "…")
			}
		}
	}

	header := make([]string, len(listenerColumns))
	for i, c := range listenerColumns {
		header[i] = c.title
	}
	if err := writeRow(w, header, widths, colorEnabled); err != nil {
		return err
	}
	for _, row := range cells {
		if err := writeRow(w, row, widths, false); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(w io.Writer, row []string, widths []int, header bool) error {
	var b strings.Builder
	for i, cell := range row {
		if header {
			cell = colorBoldTable + colorCyanTable + cell + colorResetTable
		}
		if i < len(row)-1 {
			cell = padding.String(cell, uint(widths[i]+2))
		}
		b.WriteString(cell)
	}
	_, err := io.WriteString(w, strings.TrimRight(b.String(), " ")+"\n")
	return err
}
