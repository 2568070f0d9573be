package main

import (
	"github.com/rodoo-dev/rodoo/internal/application/dto"
	"github.com/rodoo-dev/rodoo/internal/domain/services"
	"github.com/spf13/cobra"
)

// profileCmd represents the profile command
var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Inspect profiles",
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(newProfileShowCmd())
}

func newProfileShowCmd() *cobra.Command {
	var (
		profileOpts ProfileOptions
		outputOpts  OutputOptions
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the resolved profile and where each value comes from",
		Long: `Resolve the profile exactly as start would, without touching the cache, and
print every field with its source: cli, file or default.`,
		Example: `  rodoo profile show -p sales --version 18.0`,
		Args:    cobra.NoArgs,
		PreRunE: func(_ *cobra.Command, _ []string) error {
			return outputOpts.ValidateFlags()
		},
		RunE: withContainer(func(ctx *CommandContext, cmd *cobra.Command, _ []string) error {
			req, err := profileOpts.Request(cmd.Flags(), ctx.WorkDir)
			if err != nil {
				return err
			}

			resolved, err := ctx.Container.ProfileResolver().Resolve(ctx.Context, req)
			if err != nil {
				return err
			}
			reportSaved(ctx, *resolved)

			view := dto.NewProfileView(*resolved, services.NewKeyDeriver().Derive(resolved.Spec))
			ctx.Logger.Debug("showing profile", "profile", view.Summary())

			formatter, err := ctx.Container.FormatterFactory().Create(outputOpts.Format, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return formatter.FormatProfile(view)
		}),
	}

	profileOpts.RegisterFlags(cmd)
	outputOpts.RegisterFlags(cmd, "yaml")
	return cmd
}
