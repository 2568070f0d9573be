package services

import (
	"context"
	"log/slog"

	"github.com/rodoo-dev/rodoo/internal/application/dto"
	"github.com/rodoo-dev/rodoo/internal/application/ports"
	"github.com/rodoo-dev/rodoo/internal/domain/entities"
	"github.com/rodoo-dev/rodoo/internal/domain/services"
	"github.com/rodoo-dev/rodoo/internal/domain/values"
	"golang.org/x/sync/errgroup"
)

// DefaultUpdateConcurrency bounds parallel refreshes when the request does
// not say otherwise.
const DefaultUpdateConcurrency = 2

// UpdateService re-fetches cached source trees and rebuilds environments.
// Replacement goes through the same lock and rename protocol as creation, so
// concurrent readers see either the old or the new entry.
type UpdateService struct {
	resolver *ProfileResolver
	sources  ports.SourceCache
	envs     ports.EnvironmentCache
	deriver  *services.KeyDeriver
	logger   *slog.Logger
}

// NewUpdateService creates a new update service.
func NewUpdateService(
	resolver *ProfileResolver,
	sources ports.SourceCache,
	envs ports.EnvironmentCache,
	deriver *services.KeyDeriver,
	logger *slog.Logger,
) *UpdateService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UpdateService{resolver: resolver, sources: sources, envs: envs, deriver: deriver, logger: logger}
}

// Update refreshes the selected trees, then rebuilds the selected
// environments against the refreshed community trees.
func (s *UpdateService) Update(ctx context.Context, req dto.UpdateRequest) (*dto.UpdateResponse, error) {
	sourceKeys, envKeys, err := s.selectKeys(ctx, req)
	if err != nil {
		return nil, err
	}

	resp := &dto.UpdateResponse{}
	if len(sourceKeys) == 0 && len(envKeys) == 0 {
		s.logger.Info("nothing to update")
		return resp, nil
	}

	limit := req.Concurrency
	if limit <= 0 {
		limit = DefaultUpdateConcurrency
	}

	resp.Sources, err = s.refreshSources(ctx, sourceKeys, limit)
	if err != nil {
		return nil, err
	}
	resp.Environments, err = s.rebuildEnvironments(ctx, envKeys, resp.Sources, limit)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *UpdateService) selectKeys(ctx context.Context, req dto.UpdateRequest) ([]entities.SourceKey, []entities.EnvironmentKey, error) {
	if req.Profile != nil {
		resolved, err := s.resolver.Resolve(ctx, *req.Profile)
		if err != nil {
			return nil, nil, err
		}
		key := s.deriver.Derive(resolved.Spec)
		var envKeys []entities.EnvironmentKey
		if req.Environments {
			envKeys = append(envKeys, key.Environment())
		}
		return key.Sources(), envKeys, nil
	}

	var sourceKeys []entities.SourceKey
	if len(req.Versions) > 0 {
		for _, v := range req.Versions {
			sourceKeys = append(sourceKeys, entities.SourceKey{Version: v, Edition: values.EditionCommunity})
			if req.Enterprise {
				sourceKeys = append(sourceKeys, entities.SourceKey{Version: v, Edition: values.EditionEnterprise})
			}
		}
	} else {
		cached, err := s.sources.Entries(ctx)
		if err != nil {
			return nil, nil, err
		}
		for _, e := range cached {
			if !e.Complete {
				continue
			}
			if e.Source.Edition == values.EditionCommunity || req.Enterprise {
				sourceKeys = append(sourceKeys, e.Source)
			}
		}
	}
	sourceKeys = uniqueKeys(sourceKeys)

	if !req.Environments {
		return sourceKeys, nil, nil
	}

	envKeys, err := s.selectEnvironments(ctx, sourceKeys, req.PythonVersion)
	if err != nil {
		return nil, nil, err
	}
	return sourceKeys, envKeys, nil
}

// selectEnvironments picks cached environments of the selected versions.
// With an explicit python version, versions lacking such an environment get
// one created.
func (s *UpdateService) selectEnvironments(
	ctx context.Context,
	sourceKeys []entities.SourceKey,
	python *values.PythonVersion,
) ([]entities.EnvironmentKey, error) {
	var versions []values.ProductVersion
	wanted := make(map[string]bool)
	for _, k := range sourceKeys {
		if !wanted[k.Version.String()] {
			wanted[k.Version.String()] = true
			versions = append(versions, k.Version)
		}
	}

	cached, err := s.envs.Entries(ctx)
	if err != nil {
		return nil, err
	}

	var keys []entities.EnvironmentKey
	covered := make(map[string]bool)
	for _, e := range cached {
		key := e.Environment
		if !wanted[key.Version.String()] {
			continue
		}
		if python != nil && !key.PythonVersion.Equals(*python) {
			continue
		}
		keys = append(keys, key)
		covered[key.Version.String()] = true
	}

	if python != nil {
		for _, v := range versions {
			if !covered[v.String()] {
				keys = append(keys, entities.EnvironmentKey{Version: v, PythonVersion: *python})
			}
		}
	}
	return keys, nil
}

func (s *UpdateService) refreshSources(ctx context.Context, keys []entities.SourceKey, limit int) ([]entities.SourceTree, error) {
	trees := make([]entities.SourceTree, len(keys))
	errs := make([]error, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, key := range keys {
		g.Go(func() error {
			s.logger.Info("refreshing source tree", "key", key.String())
			trees[i], errs[i] = s.sources.Refresh(gctx, key)
			return errs[i]
		})
	}

	waitErr := g.Wait()
	if err := firstCause(ctx, errs); err != nil {
		return nil, err
	}
	return trees, waitErr
}

func (s *UpdateService) rebuildEnvironments(
	ctx context.Context,
	keys []entities.EnvironmentKey,
	refreshed []entities.SourceTree,
	limit int,
) ([]entities.Environment, error) {
	envs := make([]entities.Environment, len(keys))
	errs := make([]error, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, key := range keys {
		g.Go(func() error {
			s.logger.Info("rebuilding environment", "key", key.String())
			envs[i], errs[i] = s.envs.Rebuild(gctx, key, s.communityDependencies(key.Version, refreshed))
			return errs[i]
		})
	}

	waitErr := g.Wait()
	if err := firstCause(ctx, errs); err != nil {
		return nil, err
	}
	return envs, waitErr
}

// communityDependencies prefers a tree refreshed in this run and falls back
// to ensuring the cached one.
func (s *UpdateService) communityDependencies(version values.ProductVersion, refreshed []entities.SourceTree) ports.DependencyProvider {
	return func(ctx context.Context) (ports.DependencySpec, error) {
		for _, tree := range refreshed {
			if tree.Key.Edition == values.EditionCommunity && tree.Key.Version.Equals(version) {
				return dependenciesOf(tree), nil
			}
		}
		tree, err := s.sources.Ensure(ctx, entities.SourceKey{Version: version, Edition: values.EditionCommunity})
		if err != nil {
			return ports.DependencySpec{}, err
		}
		return dependenciesOf(tree), nil
	}
}

func uniqueKeys(keys []entities.SourceKey) []entities.SourceKey {
	seen := make(map[string]bool, len(keys))
	out := keys[:0]
	for _, k := range keys {
		if !seen[k.String()] {
			seen[k.String()] = true
			out = append(out, k)
		}
	}
	return out
}
