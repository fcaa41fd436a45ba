package output

import (
	"fmt"
	"io"

	"github.com/pranshuparmar/listeners/internal/pipeline"
)

// RenderShort writes one line per record: listeners and processes in their
// canonical text form, ports as bare numbers.
func RenderShort(w io.Writer, res pipeline.Result) error {
	for _, l := range res.Listeners {
		if _, err := fmt.Fprintln(w, l.String()); err != nil {
			return err
		}
	}
	for _, p := range res.Processes {
		if _, err := fmt.Fprintln(w, p.String()); err != nil {
			return err
		}
	}
	for _, port := range res.Ports {
		if _, err := fmt.Fprintln(w, port); err != nil {
			return err
		}
	}
	return nil
}

// RenderPaths writes the executable path of every listener's process.
func RenderPaths(w io.Writer, res pipeline.Result) error {
	for _, l := range res.Listeners {
		if _, err := fmt.Fprintf(w, "PID: %-10d Process path: %s\n", l.Process.PID, l.Process.Path); err != nil {
			return err
		}
	}
	return nil
}
