package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	apperrors "github.com/rodoo-dev/rodoo/internal/application/errors"
	"github.com/rodoo-dev/rodoo/internal/application/ports"
	"github.com/rodoo-dev/rodoo/internal/domain/entities"
	"github.com/rodoo-dev/rodoo/internal/domain/values"
)

// SourcePattern matches every source tree under the root.
var SourcePattern = filepath.Join("src", "*", "*")

// Repositories are the remote locations of each edition.
type Repositories struct {
	Community  string
	Enterprise string
}

// URL returns the repository of edition.
func (r Repositories) URL(edition values.Edition) string {
	if edition == values.EditionEnterprise {
		return r.Enterprise
	}
	return r.Community
}

// SourceCache keeps one checkout per (version, edition) under the root.
type SourceCache struct {
	store   *Store
	fetcher ports.VersionControlFetcher
	repos   Repositories
	logger  *slog.Logger
}

// NewSourceCache creates a source cache.
func NewSourceCache(store *Store, fetcher ports.VersionControlFetcher, repos Repositories, logger *slog.Logger) *SourceCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &SourceCache{store: store, fetcher: fetcher, repos: repos, logger: logger}
}

// Ensure returns the tree for key, cloning it first if needed.
func (c *SourceCache) Ensure(ctx context.Context, key entities.SourceKey) (entities.SourceTree, error) {
	return c.materialize(ctx, key, c.store.Ensure)
}

// Refresh clones key again and swaps the new tree in.
func (c *SourceCache) Refresh(ctx context.Context, key entities.SourceKey) (entities.SourceTree, error) {
	return c.materialize(ctx, key, c.store.Replace)
}

type materializeFunc func(ctx context.Context, rel string, populate PopulateFunc) (string, error)

func (c *SourceCache) materialize(ctx context.Context, key entities.SourceKey, fn materializeFunc) (entities.SourceTree, error) {
	repo := c.repos.URL(key.Edition)
	if repo == "" {
		if key.Edition == values.EditionEnterprise {
			return entities.SourceTree{}, apperrors.NewEnterpriseAccessError("", nil)
		}
		return entities.SourceTree{}, apperrors.NewConfigurationError("repositories",
			"no community repository configured", nil).
			WithHint("set repositories.community in config.yaml")
	}

	populate := func(ctx context.Context, dir string) error {
		c.logger.Info("fetching odoo source", "version", key.Version.String(), "edition", key.Edition.String())
		return c.fetcher.Fetch(ctx, repo, key.Version.Branch(), dir)
	}

	path, err := fn(ctx, key.RelPath(), populate)
	if err != nil {
		return entities.SourceTree{}, c.classify(ctx, key, repo, err)
	}

	return entities.SourceTree{
		Key:       key,
		Path:      path,
		AddonDirs: addonDirs(key.Edition, path),
	}, nil
}

func (c *SourceCache) classify(ctx context.Context, key entities.SourceKey, repo string, err error) error {
	var busy *apperrors.ResourceBusyError
	switch {
	case errors.As(err, &busy):
		return err
	case ctx.Err() != nil:
		return err
	case key.Edition == values.EditionEnterprise && errors.Is(err, apperrors.ErrAccessDenied):
		return apperrors.NewEnterpriseAccessError(repo, err)
	default:
		return apperrors.NewSourceFetchError(key.String(), repo, err)
	}
}

// Entries lists cached trees.
func (c *SourceCache) Entries(ctx context.Context) ([]entities.CacheEntry, error) {
	found, err := c.store.List(ctx, SourcePattern)
	if err != nil {
		return nil, err
	}

	out := make([]entities.CacheEntry, 0, len(found))
	for _, e := range found {
		version, err := values.NewProductVersion(filepath.Base(filepath.Dir(e.Path)))
		if err != nil {
			continue
		}
		edition, err := values.ParseEdition(filepath.Base(e.Path))
		if err != nil {
			continue
		}
		key := entities.SourceKey{Version: version, Edition: edition}
		out = append(out, entities.CacheEntry{
			Kind:     entities.CacheKindSource,
			Name:     key.String(),
			Path:     e.Path,
			Source:   key,
			Complete: e.Complete,
			ModTime:  e.ModTime,
		})
	}
	return out, nil
}

// addonDirs lists the addon directories of a tree. Community keeps addons in
// two places; the enterprise tree is a flat addon directory.
func addonDirs(edition values.Edition, root string) []string {
	if edition == values.EditionEnterprise {
		return []string{root}
	}

	var dirs []string
	for _, candidate := range []string{
		filepath.Join(root, "addons"),
		filepath.Join(root, "odoo", "addons"),
	} {
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			dirs = append(dirs, candidate)
		}
	}
	if len(dirs) == 0 {
		// nothing recognisable; let the product report it
		dirs = append(dirs, root)
	}
	return dirs
}

// Maintainer prunes both kinds of cache entries.
type Maintainer struct {
	store *Store
}

// NewMaintainer creates a cache maintainer.
func NewMaintainer(store *Store) *Maintainer {
	return &Maintainer{store: store}
}

// Prune removes stale temporary locations and incomplete entries.
func (m *Maintainer) Prune(ctx context.Context) (*entities.PruneReport, error) {
	result, err := m.store.Prune(ctx, SourcePattern, EnvironmentPattern)
	if result == nil {
		return nil, fmt.Errorf("pruning cache: %w", err)
	}
	return &entities.PruneReport{Removed: result.Removed, Skipped: result.Skipped}, err
}
