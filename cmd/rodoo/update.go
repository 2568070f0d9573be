package main

import (
	"fmt"

	"github.com/rodoo-dev/rodoo/internal/application/dto"
	"github.com/rodoo-dev/rodoo/internal/domain/values"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newUpdateCmd())
}

// UpdateOptions holds the flags of the update command.
type UpdateOptions struct {
	Profile       string
	PythonVersion string
	Versions      []string
	Concurrency   int
	Enterprise    bool
	Environments  bool
}

func newUpdateCmd() *cobra.Command {
	var opts UpdateOptions

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Re-fetch cached source trees and rebuild environments",
		Long: `Clone the selected source trees again and swap them into the cache
atomically. Without --versions every cached version is refreshed. With --env
the matching environments are rebuilt against the fresh trees.`,
		Example: `  # Refresh every cached community tree
  rodoo update

  # Refresh 17.0 and 18.0 including enterprise and rebuild their environments
  rodoo update --versions 17.0,18.0 --enterprise --env

  # Refresh what the "sales" profile uses
  rodoo update -p sales --env`,
		Args: cobra.NoArgs,
		RunE: withContainer(func(ctx *CommandContext, _ *cobra.Command, _ []string) error {
			req, err := opts.Request()
			if err != nil {
				return err
			}

			resp, err := ctx.Container.UpdateService().Update(ctx.Context, req)
			if err != nil {
				return err
			}

			if len(resp.Sources) == 0 && len(resp.Environments) == 0 {
				ctx.Console.Info("nothing cached to update")
				return nil
			}
			for _, tree := range resp.Sources {
				ctx.Console.Success("source %s updated", tree.Key)
			}
			for _, env := range resp.Environments {
				ctx.Console.Success("environment %s rebuilt", env.Key)
			}
			return nil
		}),
	}

	cmd.Flags().StringVarP(&opts.Profile, "profile", "p", "", "Update the resources of this profile")
	cmd.Flags().StringSliceVar(&opts.Versions, "versions", nil, "Versions to update (default: every cached version)")
	cmd.Flags().BoolVar(&opts.Enterprise, "enterprise", false, "Also update enterprise trees")
	cmd.Flags().BoolVar(&opts.Environments, "env", false, "Rebuild the matching environments")
	cmd.Flags().StringVar(&opts.PythonVersion, "python-version", "", "Only rebuild environments of this Python version")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 2, "Number of parallel clones")
	cmd.MarkFlagsMutuallyExclusive("profile", "versions")

	return cmd
}

// Request validates the flags and builds the update request.
func (opts *UpdateOptions) Request() (dto.UpdateRequest, error) {
	req := dto.UpdateRequest{
		Enterprise:   opts.Enterprise,
		Environments: opts.Environments,
		Concurrency:  opts.Concurrency,
	}

	if opts.Concurrency < 1 {
		return req, flagError("concurrency", "--concurrency must be at least 1", nil)
	}
	if opts.PythonVersion != "" {
		py, err := values.NewPythonVersion(opts.PythonVersion)
		if err != nil {
			return req, flagError("python-version", "invalid --python-version value", err).
				WithHint("use a major.minor Python version such as 3.12")
		}
		req.PythonVersion = &py
	}
	for _, raw := range nonEmpty(opts.Versions) {
		v, err := values.NewProductVersion(raw)
		if err != nil {
			return req, flagError("versions", fmt.Sprintf("invalid --versions entry %q", raw), err).
				WithHint("list release numbers, e.g. --versions 17.0,18.0")
		}
		req.Versions = append(req.Versions, v)
	}
	if opts.Profile != "" {
		req.Profile = &dto.ResolveProfileRequest{ProfileName: opts.Profile}
	}
	return req, nil
}
