package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/oakwood-commons/petsview/internal/config"
	"github.com/oakwood-commons/petsview/pkg/logger"
	"github.com/oakwood-commons/petsview/pkg/settings"
	"github.com/oakwood-commons/petsview/pkg/tui"
)

var (
	configFile     string
	timeout        time.Duration
	noColor        bool
	debug          bool
	logFile        string
	renderSnapshot bool
	snapshotWidth  int
	snapshotHeight int

	rootCtx = context.Background()

	// logFileHandle is the --log-file sink of the current invocation.
	logFileHandle *os.File
)

var rootCmd = &cobra.Command{
	Use:   settings.CliBinaryName,
	Short: "Browse the pets served by the pet service",
	Long: `petsview loads {petServiceUrl, stage} from a configuration asset, fetches the
pet list from petServiceUrl and shows it in a table. The list is fetched again
whenever the view navigates back or forward, or when the process receives SIGHUP.`,
	Example:       "\n  petsview --config-file assets/config.json\n  petsview --snapshot --no-color --width 100 --height 20\n  petsview serve --addr :7000\n",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		run := settings.NewCliParams()
		run.ConfigFile = configFile
		run.Timeout = timeout
		run.NoColor = noColor
		run.LogFile = logFile
		run.Interactive = !cmd.HasParent() && !renderSnapshot
		// --debug maps to zap.DebugLevel (-1), which enables V(1).
		if debug {
			run.MinLogLevel = -1
		}

		out, err := logOutput(run)
		if err != nil {
			return err
		}
		if f, ok := out.(*os.File); ok && run.LogFile != "" {
			setLogFile(f)
		}
		lgr := logger.Setup(logger.Options{Level: run.MinLogLevel, Output: out})
		lgr = logger.WithValues(lgr, logger.RootCommandKey, settings.CliBinaryName, logger.SubCommandKey, cmd.Name())

		ctx := logger.WithLogger(context.Background(), lgr)
		rootCtx = settings.IntoContext(ctx, run)
		return nil
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runPets(cmd)
	},
}

// logOutput picks the log sink. The TUI owns the terminal, so interactive runs
// without --log-file discard logs.
func logOutput(run *settings.Run) (io.Writer, error) {
	if run.LogFile != "" {
		f, err := os.OpenFile(run.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		return f, nil
	}
	if run.Interactive {
		return io.Discard, nil
	}
	return os.Stderr, nil
}

// setLogFile records f so Execute can close it, closing any earlier handle.
func setLogFile(f *os.File) {
	closeLogFile()
	logFileHandle = f
}

// closeLogFile flushes the logger and closes the --log-file handle, if any.
func closeLogFile() {
	if logFileHandle == nil {
		return
	}
	logger.Sync()
	_ = logFileHandle.Close()
	logFileHandle = nil
}

func runSettings() *settings.Run {
	if run, ok := settings.FromContext(rootCtx); ok && run != nil {
		return run
	}
	return settings.NewCliParams()
}

// newConfigLoader builds the asset loader for the resolved --config-file.
func newConfigLoader(run *settings.Run) config.AssetLoader {
	return config.AssetLoader{
		Source: config.ResolvePath(run.ConfigFile),
		HTTP:   &http.Client{Timeout: run.Timeout},
	}
}

func runPets(cmd *cobra.Command) error {
	run := runSettings()
	lgr := logger.FromContext(rootCtx)

	cfg := tui.Config{
		ConfigSource: run.ConfigFile,
		Timeout:      run.Timeout,
		NoColor:      run.NoColor,
	}
	lgr.V(1).Info("starting pets view", "config_source", config.ResolvePath(run.ConfigFile), "timeout", run.Timeout.String())

	if renderSnapshot {
		return runSnapshot(cmd, run, cfg, *lgr)
	}

	cfg.Location = tui.NewLocation()

	ctx, cancel := context.WithCancel(rootCtx)
	defer cancel()
	stopHangup := watchHangup(ctx, cfg.Location)
	defer stopHangup()

	progOpts, cleanup := getProgramOptions()
	defer cleanup()

	return tui.Run(ctx, cfg, progOpts...)
}

func runSnapshot(cmd *cobra.Command, run *settings.Run, cfg tui.Config, lgr logr.Logger) error {
	cfg.Width, cfg.Height = snapshotSize()

	ctx := rootCtx
	if run.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(rootCtx, run.Timeout)
		defer cancel()
	}

	frame, err := tui.RenderSnapshot(ctx, cfg)
	fmt.Fprintln(cmd.OutOrStdout(), frame)
	if err != nil {
		lgr.Error(err, "snapshot incomplete")
	}
	return err
}

// snapshotSize honors --width/--height, then the terminal size, then 80x24.
func snapshotSize() (int, int) {
	w, h := snapshotWidth, snapshotHeight
	if w <= 0 || h <= 0 {
		if tw, th, err := termGetSize(int(os.Stdout.Fd())); err == nil {
			if w <= 0 {
				w = tw
			}
			if h <= 0 {
				h = th
			}
		}
	}
	if w <= 0 {
		w = 80
	}
	if h <= 0 {
		h = 24
	}
	return w, h
}

func init() { //nolint:gochecknoinits
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config-file", "", "path or http(s) URL of the configuration asset (json, yaml or toml)")
	pf.DurationVar(&timeout, "timeout", 10*time.Second, "HTTP timeout for the configuration asset and the pet service (0 = none)")
	pf.BoolVar(&noColor, "no-color", false, "disable color output")
	pf.BoolVar(&debug, "debug", false, "enable debug logging")
	pf.StringVar(&logFile, "log-file", "", "append JSON logs to this file")

	rootCmd.Flags().BoolVar(&renderSnapshot, "snapshot", false, "render a single frame after the first refresh and exit; honors --width/--height")
	rootCmd.Flags().IntVar(&snapshotWidth, "width", 0, "snapshot width in columns (default: terminal width or 80)")
	rootCmd.Flags().IntVar(&snapshotHeight, "height", 0, "snapshot height in rows (default: terminal height or 24)")

	rootCmd.Version = cliVersionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	configCmd.AddCommand(configGetCmd)
	rootCmd.AddCommand(configCmd)
}

func Execute() error {
	defer closeLogFile()
	return rootCmd.Execute()
}
