package services

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/rodoo-dev/rodoo/internal/application/dto"
	"github.com/rodoo-dev/rodoo/internal/application/ports"
	"github.com/rodoo-dev/rodoo/internal/domain/entities"
	"github.com/rodoo-dev/rodoo/internal/domain/services"
	"github.com/rodoo-dev/rodoo/internal/domain/values"
	"golang.org/x/sync/errgroup"
)

// RequirementsFile is the dependency list at the root of a community tree.
const RequirementsFile = "requirements.txt"

// Provisioner makes sure the source trees and environment of a profile
// exist. Trees and environment are prepared concurrently; environment
// creation waits for the community tree only when it actually needs it.
type Provisioner struct {
	sources ports.SourceCache
	envs    ports.EnvironmentCache
	deriver *services.KeyDeriver
	logger  *slog.Logger
}

// NewProvisioner creates a new provisioner.
func NewProvisioner(
	sources ports.SourceCache,
	envs ports.EnvironmentCache,
	deriver *services.KeyDeriver,
	logger *slog.Logger,
) *Provisioner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provisioner{sources: sources, envs: envs, deriver: deriver, logger: logger}
}

// Provision ensures every cached resource spec needs. On failure the first
// error in the order community, enterprise, environment is returned.
func (p *Provisioner) Provision(ctx context.Context, spec entities.ProfileSpec) (*dto.ProvisionedResources, error) {
	key := p.deriver.Derive(spec)
	sourceKeys := key.Sources()

	p.logger.Debug("provisioning", "key", key.String())

	g, gctx := errgroup.WithContext(ctx)
	community := newTreeFuture()

	trees := make([]entities.SourceTree, len(sourceKeys))
	errs := make([]error, len(sourceKeys)+1)

	for i, sk := range sourceKeys {
		g.Go(func() error {
			tree, err := p.sources.Ensure(gctx, sk)
			if sk.Edition == values.EditionCommunity {
				community.resolve(tree, err)
			}
			trees[i], errs[i] = tree, err
			return err
		})
	}

	var env entities.Environment
	g.Go(func() error {
		var err error
		env, err = p.envs.Ensure(gctx, key.Environment(), community.dependencies)
		errs[len(sourceKeys)] = err
		return err
	})

	waitErr := g.Wait()
	if err := firstCause(ctx, errs); err != nil {
		return nil, err
	}
	if waitErr != nil {
		return nil, waitErr
	}

	return &dto.ProvisionedResources{Key: key, Trees: trees, Environment: env}, nil
}

// firstCause returns the first error that is not a cancellation induced by a
// sibling task failing.
func firstCause(ctx context.Context, errs []error) error {
	for _, err := range errs {
		if err == nil {
			continue
		}
		if errors.Is(err, context.Canceled) && ctx.Err() == nil {
			continue
		}
		return err
	}
	return nil
}

// treeFuture hands the community tree from its fetch task to the
// environment task.
type treeFuture struct {
	done chan struct{}
	once sync.Once
	err  error
	tree entities.SourceTree
}

func newTreeFuture() *treeFuture {
	return &treeFuture{done: make(chan struct{})}
}

func (f *treeFuture) resolve(tree entities.SourceTree, err error) {
	f.once.Do(func() {
		f.tree, f.err = tree, err
		close(f.done)
	})
}

func (f *treeFuture) wait(ctx context.Context) (entities.SourceTree, error) {
	select {
	case <-f.done:
		return f.tree, f.err
	case <-ctx.Done():
		return entities.SourceTree{}, ctx.Err()
	}
}

// dependencies implements ports.DependencyProvider.
func (f *treeFuture) dependencies(ctx context.Context) (ports.DependencySpec, error) {
	tree, err := f.wait(ctx)
	if err != nil {
		return ports.DependencySpec{}, err
	}
	return dependenciesOf(tree), nil
}

func dependenciesOf(tree entities.SourceTree) ports.DependencySpec {
	return ports.DependencySpec{
		SourceDir:        tree.Path,
		RequirementsFile: filepath.Join(tree.Path, RequirementsFile),
	}
}
