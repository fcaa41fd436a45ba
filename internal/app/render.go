package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pranshuparmar/listeners/internal/output"
	"github.com/pranshuparmar/listeners/internal/pipeline"
	"github.com/pranshuparmar/listeners/internal/target"
)

// render writes res in the configured format. Table and tree only change
// listener snapshots and port summaries; process lines stay plain.
func (rt *session) render(cmd *cobra.Command, res pipeline.Result) error {
	w := cmd.OutOrStdout()

	if rt.cfg.Format == FormatJSON {
		s, err := output.ToJSON(res)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, s)
		return err
	}

	switch res.Target.Kind {
	case target.All:
		switch rt.cfg.Format {
		case FormatTable:
			return output.RenderTable(w, res.Listeners, terminalWidth(w), rt.cfg.colorEnabled(w))
		case FormatTree:
			output.PrintTree(w, res.Listeners, rt.cfg.colorEnabled(w))
			return nil
		}
	case target.PID, target.Name:
		if rt.cfg.Format != FormatPlain {
			output.PrintPorts(w, res.Target.String(), res.Ports)
			return nil
		}
	}
	return output.RenderShort(w, res)
}
