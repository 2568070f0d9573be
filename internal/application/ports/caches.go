package ports

import (
	"context"

	"github.com/rodoo-dev/rodoo/internal/domain/entities"
)

// SourceCache hands out complete source trees from the cache root.
//
// SOLID: Interface Segregation - environments live behind EnvironmentCache
type SourceCache interface {
	// Ensure returns the tree for key, fetching it first if absent.
	Ensure(ctx context.Context, key entities.SourceKey) (entities.SourceTree, error)

	// Refresh fetches key anew and atomically replaces the cached tree.
	Refresh(ctx context.Context, key entities.SourceKey) (entities.SourceTree, error)

	// Entries lists cached trees, complete or not.
	Entries(ctx context.Context) ([]entities.CacheEntry, error)
}

// EnvironmentCache hands out complete environments from the cache root.
type EnvironmentCache interface {
	// Ensure returns the environment for key, creating it first if absent.
	// deps is called only on creation.
	Ensure(ctx context.Context, key entities.EnvironmentKey, deps DependencyProvider) (entities.Environment, error)

	// Rebuild creates the environment anew and atomically replaces it.
	Rebuild(ctx context.Context, key entities.EnvironmentKey, deps DependencyProvider) (entities.Environment, error)

	// Entries lists cached environments, complete or not.
	Entries(ctx context.Context) ([]entities.CacheEntry, error)
}

// CacheMaintainer performs explicit cleanup of the cache root.
type CacheMaintainer interface {
	// Prune removes stale temporary locations and incomplete entries whose
	// lock is free.
	Prune(ctx context.Context) (*entities.PruneReport, error)
}
