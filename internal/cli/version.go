package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	// No config is needed to print the version.
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		info := map[string]string{
			"version":   Version,
			"commit":    Commit,
			"buildDate": BuildDate,
			"go":        runtime.Version(),
		}
		text := fmt.Sprintf("appbridge-mock %s (commit %s, built %s, %s)", Version, Commit, BuildDate, runtime.Version())
		return printResult(cmd.OutOrStdout(), info, text)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
