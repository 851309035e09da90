package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/petsview/pkg/settings"
)

func cliVersionString() string {
	v := settings.VersionInformation
	return fmt.Sprintf("%s %s (commit %s, built %s)", settings.CliBinaryName, v.BuildVersion, v.Commit, v.BuildTime)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print petsview version",
	RunE: func(cmd *cobra.Command, _ []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), cliVersionString())
		return nil
	},
}
