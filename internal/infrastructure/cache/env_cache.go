package cache

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"

	apperrors "github.com/rodoo-dev/rodoo/internal/application/errors"
	"github.com/rodoo-dev/rodoo/internal/application/ports"
	"github.com/rodoo-dev/rodoo/internal/domain/entities"
)

// EnvironmentPattern matches every environment under the root.
var EnvironmentPattern = filepath.Join("venvs", "*")

// EnvironmentCache keeps one environment per (version, python) under the root.
type EnvironmentCache struct {
	store   *Store
	manager ports.EnvironmentManager
	logger  *slog.Logger
}

// NewEnvironmentCache creates an environment cache.
func NewEnvironmentCache(store *Store, manager ports.EnvironmentManager, logger *slog.Logger) *EnvironmentCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &EnvironmentCache{store: store, manager: manager, logger: logger}
}

// Ensure returns the environment for key, creating it first if needed. A
// complete entry whose interpreter has vanished is reported, not rebuilt.
func (c *EnvironmentCache) Ensure(ctx context.Context, key entities.EnvironmentKey, deps ports.DependencyProvider) (entities.Environment, error) {
	rel := key.RelPath()
	if c.store.IsComplete(rel) {
		path := c.store.Path(rel)
		if !c.manager.Exists(ctx, path) {
			err := apperrors.NewEnvironmentSetupError(key.String(), errors.New("environment is marked complete but has no interpreter"))
			err.Hint = "rebuild it with: rodoo update --env --versions " + key.Version.String() + " --python-version " + key.PythonVersion.String()
			return entities.Environment{}, err
		}
		return entities.Environment{Key: key, Path: path}, nil
	}
	return c.materialize(ctx, key, deps, c.store.Ensure)
}

// Rebuild creates the environment anew and swaps it in.
func (c *EnvironmentCache) Rebuild(ctx context.Context, key entities.EnvironmentKey, deps ports.DependencyProvider) (entities.Environment, error) {
	return c.materialize(ctx, key, deps, c.store.Replace)
}

func (c *EnvironmentCache) materialize(
	ctx context.Context,
	key entities.EnvironmentKey,
	deps ports.DependencyProvider,
	fn materializeFunc,
) (entities.Environment, error) {
	populate := func(ctx context.Context, dir string) error {
		c.logger.Info("creating python environment", "env", key.String())
		return c.manager.Create(ctx, key.PythonVersion, deps, dir)
	}

	path, err := fn(ctx, key.RelPath(), populate)
	if err != nil {
		var busy *apperrors.ResourceBusyError
		if errors.As(err, &busy) || ctx.Err() != nil {
			return entities.Environment{}, err
		}
		return entities.Environment{}, apperrors.NewEnvironmentSetupError(key.String(), err)
	}
	return entities.Environment{Key: key, Path: path}, nil
}

// Entries lists cached environments.
func (c *EnvironmentCache) Entries(ctx context.Context) ([]entities.CacheEntry, error) {
	found, err := c.store.List(ctx, EnvironmentPattern)
	if err != nil {
		return nil, err
	}

	out := make([]entities.CacheEntry, 0, len(found))
	for _, e := range found {
		key, err := entities.ParseEnvironmentKey(filepath.Base(e.Path))
		if err != nil {
			c.logger.Debug("ignoring unknown entry in venvs", "path", e.Path)
			continue
		}
		out = append(out, entities.CacheEntry{
			Kind:        entities.CacheKindEnvironment,
			Name:        key.String(),
			Path:        e.Path,
			Environment: key,
			Complete:    e.Complete && c.manager.Exists(ctx, e.Path),
			ModTime:     e.ModTime,
		})
	}
	return out, nil
}
