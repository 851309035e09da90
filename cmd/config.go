package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/petsview/internal/config"
	"github.com/oakwood-commons/petsview/pkg/logger"
)

var configOutput string

// configCmd groups configuration-related subcommands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect petsview configuration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the configuration the pets view would load",
	Long: `Resolves the configuration asset (--config-file, then
$XDG_CONFIG_HOME/petsview/config.yaml, then ./assets/config.json), applies the
PETSVIEW_PET_SERVICE_URL and PETSVIEW_STAGE overrides and prints the result.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runConfigGet(cmd)
	},
}

func init() { //nolint:gochecknoinits
	configGetCmd.Flags().StringVarP(&configOutput, "output", "o", "yaml", "output format: yaml|json")
}

func runConfigGet(cmd *cobra.Command) error {
	run := runSettings()
	loader := newConfigLoader(run)

	ctx := rootCtx
	if run.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(rootCtx, run.Timeout)
		defer cancel()
	}

	cfg, err := loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logger.FromContext(rootCtx).V(1).Info("configuration resolved", "config_source", loader.Source)

	out, err := renderConfig(cfg, configOutput)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), out)
	return err
}

func renderConfig(cfg config.Configuration, format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "yaml", "yml":
		b, err := yaml.Marshal(cfg)
		if err != nil {
			return "", fmt.Errorf("encode yaml: %w", err)
		}
		return string(b), nil
	case "json":
		b, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encode json: %w", err)
		}
		return string(b) + "\n", nil
	default:
		return "", fmt.Errorf("unsupported output format %q (want yaml or json)", format)
	}
}
