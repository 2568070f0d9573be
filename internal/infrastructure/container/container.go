// Package container provides dependency injection for the application.
package container

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/rodoo-dev/rodoo/internal/application/ports"
	"github.com/rodoo-dev/rodoo/internal/application/services"
	"github.com/rodoo-dev/rodoo/internal/domain/entities"
	domainservices "github.com/rodoo-dev/rodoo/internal/domain/services"
	"github.com/rodoo-dev/rodoo/internal/infrastructure/addons"
	"github.com/rodoo-dev/rodoo/internal/infrastructure/cache"
	"github.com/rodoo-dev/rodoo/internal/infrastructure/config"
	"github.com/rodoo-dev/rodoo/internal/infrastructure/git"
	"github.com/rodoo-dev/rodoo/internal/infrastructure/output"
	"github.com/rodoo-dev/rodoo/internal/infrastructure/process"
	"github.com/rodoo-dev/rodoo/internal/infrastructure/prompt"
	"github.com/rodoo-dev/rodoo/internal/infrastructure/system"
	"github.com/rodoo-dev/rodoo/internal/infrastructure/uv"
)

// Container holds all application dependencies.
type Container struct {
	profileResolver  *services.ProfileResolver
	launchService    *services.LaunchService
	updateService    *services.UpdateService
	cacheService     *services.CacheService
	launcher         *uv.Launcher
	formatterFactory ports.OutputFormatterFactory
	systemCfg        *system.Config
	logger           *slog.Logger
}

// Options configure the container.
type Options struct {
	Logger *slog.Logger
	// SystemConfigPath overrides the config.yaml location.
	SystemConfigPath string
	// ProfileFile reads and writes one profile file instead of discovering them.
	ProfileFile string
	// WorkDir is the project directory; empty means the current directory.
	WorkDir        string
	NonInteractive bool
	NoColor        bool
}

// New creates a new dependency injection container.
func New(opts Options) (*Container, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.WorkDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to determine working directory: %w", err)
		}
		opts.WorkDir = wd
	}

	// Load system config
	systemCfg, err := system.NewConfigLoader().Load(opts.SystemConfigPath)
	if err != nil {
		return nil, err
	}
	defaults, err := systemCfg.ProfileDefaults()
	if err != nil {
		return nil, err
	}
	opts.Logger.Debug("system config loaded", "cache_root", systemCfg.CacheRoot, "lock_timeout", systemCfg.LockTimeout)

	// Infrastructure adapters
	runner := process.NewRunner(opts.Logger)
	fetcher := git.NewFetcher(runner, systemCfg.GitBinary, opts.Logger)
	envManager := uv.NewManager(runner, systemCfg.UVBinary, opts.Logger)
	launcher := uv.NewLauncher(runner, systemCfg.UVBinary, opts.WorkDir, opts.Logger)

	store, err := cache.NewStore(cache.StoreOptions{
		Root:        systemCfg.CacheRoot,
		LockTimeout: systemCfg.LockTimeout,
		Logger:      opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	sourceCache := cache.NewSourceCache(store, fetcher, cache.Repositories{
		Community:  systemCfg.Repositories.Community,
		Enterprise: systemCfg.Repositories.Enterprise,
	}, opts.Logger)
	envCache := cache.NewEnvironmentCache(store, envManager, opts.Logger)

	profileRepo := config.NewFileRepository(config.RepositoryOptions{
		Logger:       opts.Logger,
		WorkDir:      opts.WorkDir,
		UserDir:      system.UserConfigDir(),
		ExplicitFile: opts.ProfileFile,
	})
	prompter := prompt.NewTerminalPrompter(prompt.Options{
		WorkDir:        opts.WorkDir,
		NonInteractive: opts.NonInteractive,
	})

	// Domain services
	keyDeriver := domainservices.NewKeyDeriver()

	// Wire up use cases
	resolver := services.NewProfileResolver(profileRepo, prompter, domainservices.NewProfileMerger(), defaults, opts.Logger)
	provisioner := services.NewProvisioner(sourceCache, envCache, keyDeriver, opts.Logger)

	return &Container{
		profileResolver: resolver,
		launchService: services.NewLaunchService(
			resolver,
			provisioner,
			domainservices.NewLaunchPlanner(),
			addons.NewInspector(),
			launcher,
			opts.Logger,
		),
		updateService:    services.NewUpdateService(resolver, sourceCache, envCache, keyDeriver, opts.Logger),
		cacheService:     services.NewCacheService(sourceCache, envCache, cache.NewMaintainer(store)),
		launcher:         launcher,
		formatterFactory: output.NewFormatterFactory(!opts.NoColor),
		systemCfg:        systemCfg,
		logger:           opts.Logger,
	}, nil
}

// ProfileResolver returns the profile resolution use case.
func (c *Container) ProfileResolver() *services.ProfileResolver {
	return c.profileResolver
}

// LaunchService returns the start/upgrade/test/shell use case.
func (c *Container) LaunchService() *services.LaunchService {
	return c.launchService
}

// UpdateService returns the update use case.
func (c *Container) UpdateService() *services.UpdateService {
	return c.updateService
}

// CacheService returns the cache maintenance use case.
func (c *Container) CacheService() *services.CacheService {
	return c.cacheService
}

// FormatterFactory returns the output formatter factory.
func (c *Container) FormatterFactory() ports.OutputFormatterFactory {
	return c.formatterFactory
}

// CommandLine returns the full command a launch plan runs.
func (c *Container) CommandLine(plan entities.LaunchPlan) []string {
	return c.launcher.Command(plan).Argv()
}

// SystemConfig returns the system configuration.
func (c *Container) SystemConfig() *system.Config {
	return c.systemCfg
}

// Logger returns the configured logger.
func (c *Container) Logger() *slog.Logger {
	return c.logger
}
