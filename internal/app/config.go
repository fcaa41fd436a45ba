package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"
)

// Output formats accepted by --format.
const (
	FormatPlain = "plain"
	FormatTable = "table"
	FormatJSON  = "json"
	FormatTree  = "tree"
)

// Config carries the global flags after environment fallbacks are applied.
type Config struct {
	Format  string
	JSON    bool
	NoColor bool
	Debug   bool
}

func defaultFormat() string {
	if f := strings.TrimSpace(os.Getenv("LISTENERS_FORMAT")); f != "" {
		return strings.ToLower(f)
	}
	return FormatPlain
}

// resolve validates the format and folds --json into it.
func (c *Config) resolve() error {
	if c.JSON {
		c.Format = FormatJSON
	}
	c.Format = strings.ToLower(c.Format)
	switch c.Format {
	case FormatPlain, FormatTable, FormatJSON, FormatTree:
		return nil
	}
	return fmt.Errorf("unknown format %q (want plain, table, json or tree)", c.Format)
}

// colorEnabled reports whether w is a terminal and colour was not disabled.
func (c Config) colorEnabled(w io.Writer) bool {
	if c.NoColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the width of w, or 0 when w is not a terminal.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
