package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/rodoo-dev/rodoo/internal/application/dto"
	apperrors "github.com/rodoo-dev/rodoo/internal/application/errors"
	"github.com/rodoo-dev/rodoo/internal/domain/entities"
	"github.com/rodoo-dev/rodoo/internal/domain/values"
	"github.com/rodoo-dev/rodoo/internal/infrastructure/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ProfileOptions contains the profile selection and override flags shared
// by every command that resolves a profile.
type ProfileOptions struct {
	Profile       string
	Version       string
	PythonVersion string
	DB            string
	HTTPInterface string
	ExtraParams   string
	Modules       []string
	Paths         []string
	Workers       int

	// Flags (bools grouped for alignment)
	Enterprise  bool
	ForceUpdate bool
	Save        bool
}

// RegisterFlags adds profile flags to a cobra command.
func (opts *ProfileOptions) RegisterFlags(cmd *cobra.Command) {
	f := cmd.Flags()

	// Selection
	f.StringVarP(&opts.Profile, "profile", "p", "", "Profile to use")
	f.BoolVar(&opts.Save, "save", false, "Save the given values into the selected profile")

	// Shared resources
	f.StringVar(&opts.Version, "version", "", "Odoo version, e.g. 18.0")
	f.StringVar(&opts.PythonVersion, "python-version", "", "Python version of the environment, e.g. 3.12")
	f.BoolVar(&opts.Enterprise, "enterprise", false, "Use the enterprise edition")

	// Instance
	f.StringSliceVarP(&opts.Modules, "module", "m", nil, "Module to install (repeatable or comma-separated)")
	f.StringSliceVar(&opts.Paths, "path", nil, "Addon directory to put first on the addons path (repeatable)")
	f.StringVarP(&opts.DB, "db", "d", "", "Database name")
	f.StringVar(&opts.HTTPInterface, "http-interface", "", "Interface the server listens on")
	f.IntVar(&opts.Workers, "workers", 0, "Number of worker processes")
	f.BoolVar(&opts.ForceUpdate, "force-update", false, "Update the modules on every start")
	f.StringVar(&opts.ExtraParams, "extra-params", "", "Additional Odoo parameters, shell-quoted")
}

// Overrides builds the CLI configuration layer. Only flags given on the
// command line take part; relative paths are resolved against workDir.
func (opts *ProfileOptions) Overrides(flags *pflag.FlagSet, workDir string) (entities.ProfileOverrides, error) {
	var o entities.ProfileOverrides

	if flags.Changed("version") {
		v, err := values.NewProductVersion(opts.Version)
		if err != nil {
			return o, flagError("version", "invalid --version value", err).
				WithHint("use a release number such as 17.0 or 18.0")
		}
		o.Version = &v
	}
	if flags.Changed("python-version") {
		py, err := values.NewPythonVersion(opts.PythonVersion)
		if err != nil {
			return o, flagError("python-version", "invalid --python-version value", err).
				WithHint("use a major.minor Python version such as 3.12")
		}
		o.PythonVersion = &py
	}
	if flags.Changed("enterprise") {
		o.Enterprise = entities.Ptr(opts.Enterprise)
	}
	if flags.Changed("module") {
		o.Modules = nonEmpty(opts.Modules)
	}
	if flags.Changed("path") {
		paths := make([]string, 0, len(opts.Paths))
		for _, p := range nonEmpty(opts.Paths) {
			abs, err := config.ResolvePath(workDir, p)
			if err != nil {
				return o, flagError("path", fmt.Sprintf("invalid --path %q", p), err)
			}
			paths = append(paths, abs)
		}
		o.Paths = paths
	}
	if flags.Changed("db") {
		o.DB = entities.Ptr(opts.DB)
	}
	if flags.Changed("http-interface") {
		o.HTTPInterface = entities.Ptr(opts.HTTPInterface)
	}
	if flags.Changed("workers") {
		if opts.Workers < 0 {
			return o, flagError("workers", "--workers cannot be negative", nil).
				WithHint("use 0 for the threaded server")
		}
		o.Workers = entities.Ptr(opts.Workers)
	}
	if flags.Changed("force-update") {
		o.ForceUpdate = entities.Ptr(opts.ForceUpdate)
	}
	if flags.Changed("extra-params") {
		o.ExtraParams = entities.Ptr(opts.ExtraParams)
	}

	return o, nil
}

// Request builds the profile resolution request.
func (opts *ProfileOptions) Request(flags *pflag.FlagSet, workDir string) (dto.ResolveProfileRequest, error) {
	overrides, err := opts.Overrides(flags, workDir)
	if err != nil {
		return dto.ResolveProfileRequest{}, err
	}
	return dto.ResolveProfileRequest{
		ProfileName: opts.Profile,
		Overrides:   overrides,
		Save:        opts.Save,
	}, nil
}

// OutputOptions selects how results are printed.
type OutputOptions struct {
	Format string
}

var outputFormats = []string{"table", "json", "yaml"}

// RegisterFlags adds output flags to a cobra command.
func (opts *OutputOptions) RegisterFlags(cmd *cobra.Command, def string) {
	opts.Format = def
	cmd.Flags().StringVarP(&opts.Format, "output", "o", def, "Output format: table, json, yaml")
}

// ValidateFlags validates output options.
func (opts *OutputOptions) ValidateFlags() error {
	if !slices.Contains(outputFormats, opts.Format) {
		return flagError("output", fmt.Sprintf("invalid format: %s (valid: table, json, yaml)", opts.Format), nil)
	}
	return nil
}

// flagError reports an unusable command-line value.
func flagError(flag, message string, cause error) *apperrors.ConfigurationError {
	return apperrors.NewConfigurationError("--"+flag, message, cause)
}

func nonEmpty(items []string) []string {
	out := []string{}
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
