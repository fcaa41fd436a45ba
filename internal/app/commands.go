package app

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pranshuparmar/listeners/internal/output"
	"github.com/pranshuparmar/listeners/internal/pipeline"
	"github.com/pranshuparmar/listeners/internal/target"
	"github.com/pranshuparmar/listeners/internal/tui"
)

func (rt *session) allCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "all",
		Aliases: []string{"ls"},
		Short:   "List every listening socket and its process",
		Args:    cobra.NoArgs,
		RunE:    rt.all,
	}
}

func (rt *session) all(cmd *cobra.Command, _ []string) error {
	res, err := rt.run(target.Target{})
	if err != nil {
		return err
	}
	return rt.render(cmd, res)
}

func (rt *session) portCmd() *cobra.Command {
	var protocol string
	cmd := &cobra.Command{
		Use:   "port <port>",
		Short: "Show the processes listening on a port",
		Example: `  listeners port 8080
  listeners port 53 --protocol udp
  listeners port :443/tcp`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := target.ParsePort(args[0])
			if err != nil {
				return err
			}
			if t, err = t.WithProtocol(protocol); err != nil {
				return err
			}
			res, err := rt.run(t)
			if err != nil {
				return err
			}
			return rt.render(cmd, res)
		},
	}
	cmd.Flags().StringVarP(&protocol, "protocol", "p", "", "only match this protocol (tcp or udp)")
	return cmd
}

func (rt *session) pidCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pid <pid>",
		Short: "List the ports bound by a process",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := target.ParsePID(args[0])
			if err != nil {
				return err
			}
			res, err := rt.run(t)
			if err != nil {
				return err
			}
			return rt.render(cmd, res)
		},
	}
}

func (rt *session) nameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "name <process-name>",
		Short: "List the ports bound by processes with an exact name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := target.ParseName(args[0])
			if err != nil {
				return err
			}
			res, err := rt.run(t)
			if err != nil {
				return err
			}
			return rt.render(cmd, res)
		},
	}
}

func (rt *session) pathsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print the executable path of every listening process",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := rt.run(target.Target{})
			if err != nil {
				return err
			}
			if rt.cfg.Format == FormatJSON {
				return rt.render(cmd, res)
			}
			return output.RenderPaths(cmd.OutOrStdout(), res)
		},
	}
}

func (rt *session) browseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse a listener snapshot interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return tui.Start(version, rt.src)
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), versionString())
		},
	}
}

// run evaluates t and logs what it did.
func (rt *session) run(t target.Target) (pipeline.Result, error) {
	start := time.Now()
	res, err := pipeline.Run(rt.src, t)
	if err != nil {
		rt.logger.Debug("query failed", "target", t.String(), "err", err, "elapsed", time.Since(start))
		if t.Kind == target.All {
			return res, err
		}
		return res, fmt.Errorf("%s: %w", t, err)
	}
	rt.logger.Debug("query done",
		"target", t.String(),
		"listeners", len(res.Listeners),
		"processes", len(res.Processes),
		"ports", len(res.Ports),
		"elapsed", time.Since(start),
	)
	return res, nil
}
