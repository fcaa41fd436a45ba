package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/pranshuparmar/listeners/pkg/model"
)

var (
	colorResetTree   = "\033[0m"
	colorMagentaTree = "\033[35m"
	colorGreenTree   = "\033[32m"
	colorBoldTree    = "\033[2m"
)

// PrintTree groups listeners under their owning process. Input order is
// kept, so a sorted snapshot yields processes by ascending pid.
func PrintTree(w io.Writer, ls []model.Listener, colorEnabled bool) {
	colorReset := ""
	colorMagenta := ""
	colorGreen := ""
	colorBold := ""
	if colorEnabled {
		colorReset = colorResetTree
		colorMagenta = colorMagentaTree
		colorGreen = colorGreenTree
		colorBold = colorBoldTree
	}

	var order []model.Process
	groups := make(map[model.Process][]model.Listener)
	for _, l := range ls {
		if _, ok := groups[l.Process]; !ok {
			order = append(order, l.Process)
		}
		groups[l.Process] = append(groups[l.Process], l)
	}

	for _, p := range order {
		path := p.Path
		if path == "" {
			path = "-"
		}
		fmt.Fprintf(w, "%s%s%s (%spid %d%s) %s\n", colorGreen, p.Name, colorReset, colorBold, p.PID, colorReset, path)

		sockets := groups[p]
		for i, l := range sockets {
			connector := "├─ "
			if i == len(sockets)-1 {
				connector = "└─ "
			}
			fmt.Fprintf(w, "  %s%s%s%-3s %s\n", colorMagenta, connector, colorReset, l.Protocol, l.Socket)
		}
	}
}

// PrintPorts writes a one-line summary of ports for a pid or name target.
func PrintPorts(w io.Writer, subject string, ports []uint16) {
	if len(ports) == 0 {
		fmt.Fprintf(w, "%s: no bound ports\n", subject)
		return
	}
	strs := make([]string, len(ports))
	for i, p := range ports {
		strs[i] = fmt.Sprint(p)
	}
	fmt.Fprintf(w, "%s: %s\n", subject, strings.Join(strs, ", "))
}
