package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newCreateProfileCmd())
}

func newCreateProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-profile",
		Short: "Create a profile interactively",
		Long: `Ask for the profile's name, modules, versions and paths, then save it to
rodoo.toml in the current directory or in the user configuration directory.
An existing profile with the same name in that file is replaced.`,
		Example: `  rodoo create-profile`,
		Args:    cobra.NoArgs,
		RunE: withContainer(func(ctx *CommandContext, _ *cobra.Command, _ []string) error {
			entry, err := ctx.Container.ProfileResolver().CreateProfile(ctx.Context)
			if err != nil {
				return err
			}

			ctx.Console.Success("profile %q saved to %s", entry.Name, entry.Source)
			ctx.Console.Info("start it with: rodoo start -p %s", entry.Name)
			return nil
		}),
	}

	return cmd
}
