package main

import (
	"fmt"

	"github.com/rodoo-dev/rodoo/internal/version"
	"github.com/spf13/cobra"
)

// versionCmd implements the version command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of rodoo",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), version.Get().Full())
		return err
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
