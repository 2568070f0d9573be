package main

import (
	"fmt"
	"strings"

	"github.com/rodoo-dev/rodoo/internal/application/dto"
	"github.com/rodoo-dev/rodoo/internal/domain/entities"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(
		newLaunchCmd(entities.LaunchModeRun, "start", "Start Odoo with the selected profile",
			`Resolve the profile, make sure the source trees and the environment it needs
are cached, then run the Odoo server in the foreground. Modules are installed
on first start.`,
			`  rodoo start
  rodoo start -p sales --version 17.0 -m sale,stock
  rodoo start --enterprise --save`),
		newLaunchCmd(entities.LaunchModeUpgrade, "upgrade", "Update the profile's modules and exit",
			`Run Odoo once with "-u <modules> --stop-after-init" against the profile's
database.`,
			`  rodoo upgrade -p sales`),
		newLaunchCmd(entities.LaunchModeTest, "test", "Run the tests of the profile's modules",
			`Install and update the profile's modules with tests enabled, then exit.`,
			`  rodoo test -m my_module --db test_my_module`),
		newLaunchCmd(entities.LaunchModeShell, "shell", "Open an Odoo shell on the profile's database",
			`Start "odoo shell" without the HTTP server.`,
			`  rodoo shell -p sales`),
	)
}

func newLaunchCmd(mode entities.LaunchMode, use, short, long, example string) *cobra.Command {
	var (
		profileOpts ProfileOptions
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:     use,
		Short:   short,
		Long:    long,
		Example: example,
		Args:    cobra.NoArgs,
		RunE: withContainer(func(ctx *CommandContext, cmd *cobra.Command, _ []string) error {
			req, err := profileOpts.Request(cmd.Flags(), ctx.WorkDir)
			if err != nil {
				return err
			}
			launchReq := dto.LaunchRequest{Mode: mode, Profile: req}
			service := ctx.Container.LaunchService()

			if dryRun {
				resp, err := service.Prepare(ctx.Context, launchReq)
				if err != nil {
					return err
				}
				reportSaved(ctx, resp.Profile)
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "VIRTUAL_ENV=%s %s\n",
					quoteCommand([]string{resp.Plan.Environment.Path}),
					quoteCommand(ctx.Container.CommandLine(resp.Plan)))
				return err
			}

			resp, err := service.Launch(ctx.Context, launchReq)
			if resp != nil {
				reportSaved(ctx, resp.Profile)
			}
			return err
		}),
	}

	profileOpts.RegisterFlags(cmd)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Prepare everything and print the command instead of running it")

	return cmd
}

func reportSaved(ctx *CommandContext, p dto.ResolvedProfile) {
	if p.SavedTo != "" {
		ctx.Console.Success("profile %q saved to %s", p.Spec.Name, p.SavedTo)
	}
}

// quoteCommand renders argv so it can be pasted into a POSIX shell.
func quoteCommand(argv []string) string {
	quoted := make([]string, len(argv))
	for i, arg := range argv {
		if arg != "" && strings.Trim(arg, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_./,=:@+") == "" {
			quoted[i] = arg
			continue
		}
		quoted[i] = "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
	}
	return strings.Join(quoted, " ")
}
