package services

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/mattn/go-shellwords"
	"github.com/rodoo-dev/rodoo/internal/domain/entities"
	"github.com/rodoo-dev/rodoo/internal/domain/values"
)

// LaunchPlanner assembles the product invocation for a resolved profile.
//
// Addons path order is fixed: project paths, then the enterprise tree, then
// the community tree. Parameters managed by the profile are emitted only when
// set and only if extra_params does not already carry them.
type LaunchPlanner struct{}

// NewLaunchPlanner creates a new launch planner.
func NewLaunchPlanner() *LaunchPlanner {
	return &LaunchPlanner{}
}

// Plan builds the invocation. trees must contain the community tree and, for
// enterprise profiles, the enterprise tree.
func (p *LaunchPlanner) Plan(
	mode entities.LaunchMode,
	spec entities.ProfileSpec,
	trees []entities.SourceTree,
	env entities.Environment,
) (entities.LaunchPlan, error) {
	addons, err := p.AddonsPath(spec, trees)
	if err != nil {
		return entities.LaunchPlan{}, err
	}

	extra, err := shellwords.Parse(spec.Launch.ExtraParams)
	if err != nil {
		return entities.LaunchPlan{}, fmt.Errorf("parsing extra_params %q: %w", spec.Launch.ExtraParams, err)
	}

	db := spec.Launch.DB
	if db == "" {
		db = DefaultDatabaseName(spec)
	}

	var args []string
	if mode == entities.LaunchModeShell {
		args = append(args, "shell")
	}
	args = append(args, "-d", db, "--addons-path", strings.Join(addons, ","))

	modules := strings.Join(spec.Modules, ",")
	switch mode {
	case entities.LaunchModeRun:
		if modules != "" {
			if spec.Launch.InstallsModules() {
				args = append(args, "-i", modules)
			}
			if spec.Launch.ForceUpdate {
				args = append(args, "-u", modules)
			}
		}
	case entities.LaunchModeUpgrade:
		args = append(args, "--stop-after-init", "-u", modules)
	case entities.LaunchModeTest:
		args = append(args, "--test-enable", "--stop-after-init", "-i", modules, "-u", modules)
	case entities.LaunchModeShell:
		args = append(args, "--no-http")
	default:
		return entities.LaunchPlan{}, fmt.Errorf("unknown launch mode %q", mode)
	}

	if len(spec.Launch.Load) > 0 {
		args = append(args, "--load", strings.Join(spec.Launch.Load, ","))
	}

	args = append(args, managedParams(mode, spec.Launch, extra)...)
	args = append(args, extra...)

	return entities.LaunchPlan{
		Mode:        mode,
		Database:    db,
		Environment: env,
		AddonsPath:  addons,
		Modules:     slices.Clone(spec.Modules),
		Args:        args,
	}, nil
}

// AddonsPath returns the addon directories in search order.
func (p *LaunchPlanner) AddonsPath(spec entities.ProfileSpec, trees []entities.SourceTree) ([]string, error) {
	community, ok := findTree(trees, values.EditionCommunity)
	if !ok {
		return nil, fmt.Errorf("community source tree missing")
	}

	paths := slices.Clone(spec.Paths)
	if spec.Enterprise {
		enterprise, ok := findTree(trees, values.EditionEnterprise)
		if !ok {
			return nil, fmt.Errorf("enterprise source tree missing")
		}
		paths = append(paths, enterprise.AddonDirs...)
	}
	paths = append(paths, community.AddonDirs...)

	return dedupe(paths), nil
}

// DefaultDatabaseName derives "v<major>_<modules>" ("nan" with no modules).
func DefaultDatabaseName(spec entities.ProfileSpec) string {
	suffix := "nan"
	if len(spec.Modules) > 0 {
		suffix = strings.Join(spec.Modules, "_")
	}
	return fmt.Sprintf("v%d_%s", spec.Version.Major(), suffix)
}

func findTree(trees []entities.SourceTree, edition values.Edition) (entities.SourceTree, bool) {
	for _, t := range trees {
		if t.Key.Edition == edition {
			return t, true
		}
	}
	return entities.SourceTree{}, false
}

type managedParam struct {
	flag  string
	value string
	// server params are meaningless for the shell
	server bool
}

func managedParams(mode entities.LaunchMode, opts entities.LaunchOptions, extra []string) []string {
	params := []managedParam{
		{flag: "--db_host", value: opts.DBHost},
		{flag: "--db_user", value: opts.DBUser},
		{flag: "--db_password", value: opts.DBPassword},
		{flag: "--workers", value: intParam(opts.Workers), server: true},
		{flag: "--max-cron-threads", value: intParam(opts.MaxCronThreads), server: true},
		{flag: "--limit-time-cpu", value: intParam(opts.LimitTimeCPU), server: true},
		{flag: "--limit-time-real", value: intParam(opts.LimitTimeReal), server: true},
		{flag: "--http-interface", value: opts.HTTPInterface, server: true},
	}

	present := make(map[string]bool)
	for _, arg := range extra {
		if strings.HasPrefix(arg, "--") {
			name, _, _ := strings.Cut(arg, "=")
			present[name] = true
		}
	}

	var out []string
	for _, p := range params {
		if p.value == "" || present[p.flag] {
			continue
		}
		if p.server && mode == entities.LaunchModeShell {
			continue
		}
		out = append(out, p.flag, p.value)
	}
	return out
}

func intParam(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}
