// Package app is the listeners command line.
package app

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pranshuparmar/listeners/internal/pipeline"
)

var (
	version   = "dev"
	commit    = ""
	buildDate = ""
)

// SetVersionBuildCommitString records the values injected by ldflags.
func SetVersionBuildCommitString(v, c, d string) {
	if v != "" {
		version = v
	}
	commit = c
	buildDate = d
}

func versionString() string {
	s := "listeners " + version
	if commit != "" {
		s += " (commit " + commit
		if buildDate != "" {
			s += ", built " + buildDate
		}
		s += ")"
	}
	return s
}

// session is shared by every subcommand of one invocation.
type session struct {
	src    pipeline.Source
	cfg    Config
	logger *slog.Logger
}

// NewRootCmd builds the command tree over src.
func NewRootCmd(src pipeline.Source) *cobra.Command {
	rt := &session{src: src, logger: slog.New(slog.DiscardHandler)}

	root := &cobra.Command{
		Use:   "listeners",
		Short: "Show which process listens on which socket",
		Long: `listeners reports every bound TCP and UDP socket on this host together
with the process that owns it. Each invocation reads one snapshot.`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.cfg.resolve(); err != nil {
				return err
			}
			rt.logger = newLogger(cmd.ErrOrStderr(), rt.cfg.Debug)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.all(cmd, args)
		},
	}
	root.SetVersionTemplate("{{.Version}}\n")
	root.Version = versionString()

	flags := root.PersistentFlags()
	flags.StringVar(&rt.cfg.Format, "format", defaultFormat(), "output format: plain, table, json or tree")
	flags.BoolVar(&rt.cfg.JSON, "json", false, "output in JSON format (same as --format json)")
	flags.BoolVar(&rt.cfg.NoColor, "no-color", false, "disable colored output")
	flags.BoolVar(&rt.cfg.Debug, "debug", false, "log query details to stderr")

	root.AddCommand(
		rt.allCmd(),
		rt.portCmd(),
		rt.pidCmd(),
		rt.nameCmd(),
		rt.pathsCmd(),
		rt.browseCmd(),
		versionCmd(),
	)
	return root
}

// Execute runs the command line against the local host.
func Execute() {
	root := NewRootCmd(pipeline.Host{})
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
