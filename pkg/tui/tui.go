// Package tui is the embedding API of the pets view. Host programs use it to
// run the view or render a frame without importing the internal packages.
package tui

import (
	"context"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"

	"github.com/oakwood-commons/petsview/internal/config"
	"github.com/oakwood-commons/petsview/internal/navigation"
	"github.com/oakwood-commons/petsview/internal/petclient"
	"github.com/oakwood-commons/petsview/internal/ui/pets"
)

// defaultFallbackTermWidth is used when terminal size cannot be detected.
const defaultFallbackTermWidth = 120

// Location is the navigation history the view observes. Back, Forward and
// Notify refresh the view; Go does not.
type Location = navigation.Location

// NewLocation returns a history positioned on the pet list.
func NewLocation() *Location {
	return navigation.NewLocation(pets.ListPath)
}

// Config describes one pets view.
type Config struct {
	// ConfigSource is a path or http(s) URL of the configuration asset.
	// Empty resolves the default locations.
	ConfigSource string
	// Timeout bounds every HTTP request. Zero means no timeout.
	Timeout time.Duration
	NoColor bool
	// Width and Height size the view; zero detects the terminal.
	Width  int
	Height int
	// Location is optional. Without it the view refreshes only on start.
	Location *Location
}

func (c Config) options() pets.Options {
	opts := pets.Options{
		Config: config.AssetLoader{
			Source: config.ResolvePath(c.ConfigSource),
			HTTP:   &http.Client{Timeout: c.Timeout},
		},
		Fetcher: petclient.New(c.Timeout),
		NoColor: c.NoColor,
		Width:   c.Width,
		Height:  c.Height,
	}
	if c.Location != nil {
		opts.Location = c.Location
	}
	return opts
}

// Run starts the view and blocks until the user quits or ctx is canceled.
func Run(ctx context.Context, cfg Config, opts ...tea.ProgramOption) error {
	return pets.Run(ctx, cfg.options(), opts...)
}

// RenderSnapshot loads the configuration, performs the first fetch and returns
// the resulting frame. The error is the one shown in the status line, if any.
func RenderSnapshot(ctx context.Context, cfg Config) (string, error) {
	w, h := cfg.Width, cfg.Height
	if w <= 0 || h <= 0 {
		dw, dh := DetectTerminalSize()
		if w <= 0 {
			w = dw
		}
		if h <= 0 {
			h = dh
		}
	}
	if h <= 0 {
		h = 24
	}
	return pets.RenderSnapshot(ctx, cfg.options(), w, h)
}

// DetectTerminalSize returns the best-effort terminal width and height by probing
// stdout, stderr, and stdin, then falling back to the COLUMNS environment variable.
// If detection fails completely it returns (120, 24).
func DetectTerminalSize() (width int, height int) {
	fds := []uintptr{os.Stdout.Fd(), os.Stderr.Fd(), os.Stdin.Fd()}
	for _, fd := range fds {
		if w, h, err := term.GetSize(int(fd)); err == nil && (w > 0 || h > 0) {
			return w, h
		}
	}
	if col := os.Getenv("COLUMNS"); col != "" {
		if w, err := strconv.Atoi(col); err == nil && w > 0 {
			return w, 0
		}
	}
	return defaultFallbackTermWidth, 24
}

// WithIO returns tea.ProgramOptions to set custom input/output.
func WithIO(in io.Reader, out io.Writer) []tea.ProgramOption {
	opts := []tea.ProgramOption{}
	if in != nil {
		opts = append(opts, tea.WithInput(in))
	}
	if out != nil {
		opts = append(opts, tea.WithOutput(out))
	}
	return opts
}
