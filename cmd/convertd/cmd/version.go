package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avpress/convertd/internal/version"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE:  runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().Bool("json", false, "output version information as JSON")
}

func runVersion(cmd *cobra.Command, _ []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	if asJSON {
		fmt.Fprintln(cmd.OutOrStdout(), version.JSON())
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), version.String())
	return nil
}
