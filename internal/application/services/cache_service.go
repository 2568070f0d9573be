package services

import (
	"context"
	"sort"

	"github.com/rodoo-dev/rodoo/internal/application/ports"
	"github.com/rodoo-dev/rodoo/internal/domain/entities"
)

// CacheService lists and cleans the cache root.
type CacheService struct {
	sources    ports.SourceCache
	envs       ports.EnvironmentCache
	maintainer ports.CacheMaintainer
}

// NewCacheService creates a new cache service.
func NewCacheService(sources ports.SourceCache, envs ports.EnvironmentCache, maintainer ports.CacheMaintainer) *CacheService {
	return &CacheService{sources: sources, envs: envs, maintainer: maintainer}
}

// List returns source trees then environments, each sorted by name.
func (s *CacheService) List(ctx context.Context) ([]entities.CacheEntry, error) {
	sources, err := s.sources.Entries(ctx)
	if err != nil {
		return nil, err
	}
	envs, err := s.envs.Entries(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]entities.CacheEntry, 0, len(sources)+len(envs))
	entries = append(entries, sources...)
	entries = append(entries, envs...)
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Kind != entries[j].Kind {
			return entries[i].Kind == entities.CacheKindSource
		}
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}

// Prune removes stale temporary locations and incomplete entries.
func (s *CacheService) Prune(ctx context.Context) (*entities.PruneReport, error) {
	return s.maintainer.Prune(ctx)
}
