package main

import (
	"github.com/rodoo-dev/rodoo/internal/application/dto"
	"github.com/spf13/cobra"
)

// cacheCmd represents the cache command
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and clean the shared cache",
	Long:  `Inspect and clean the cache of source trees and environments shared by all profiles.`,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(newCacheListCmd(), newCachePruneCmd())
}

func newCacheListCmd() *cobra.Command {
	var outputOpts OutputOptions

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List cached source trees and environments",
		Example: `  rodoo cache list -o json`,
		Args:    cobra.NoArgs,
		PreRunE: func(_ *cobra.Command, _ []string) error {
			return outputOpts.ValidateFlags()
		},
		RunE: withContainer(func(ctx *CommandContext, cmd *cobra.Command, _ []string) error {
			entries, err := ctx.Container.CacheService().List(ctx.Context)
			if err != nil {
				return err
			}

			formatter, err := ctx.Container.FormatterFactory().Create(outputOpts.Format, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return formatter.FormatCacheEntries(dto.NewCacheEntryViews(entries))
		}),
	}

	outputOpts.RegisterFlags(cmd, "table")
	return cmd
}

func newCachePruneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove interrupted and incomplete cache entries",
		Long: `Remove temporary locations left behind by interrupted runs and entries that
were never marked complete. Entries locked by a running rodoo are skipped.`,
		Example: `  rodoo cache prune`,
		Args:    cobra.NoArgs,
		RunE: withContainer(func(ctx *CommandContext, _ *cobra.Command, _ []string) error {
			report, err := ctx.Container.CacheService().Prune(ctx.Context)
			if err != nil {
				return err
			}

			for _, path := range report.Removed {
				ctx.Console.Success("removed %s", path)
			}
			for _, path := range report.Skipped {
				ctx.Console.Warn("skipped %s (in use)", path)
			}
			if len(report.Removed) == 0 && len(report.Skipped) == 0 {
				ctx.Console.Info("nothing to prune")
			}
			return nil
		}),
	}

	return cmd
}
