// Package ports defines interfaces for infrastructure dependencies.
// These are the "ports" in hexagonal architecture - abstractions that
// the application layer depends on but doesn't implement.
package ports

import (
	"context"

	"github.com/rodoo-dev/rodoo/internal/domain/entities"
	"github.com/rodoo-dev/rodoo/internal/domain/values"
)

// VersionControlFetcher materializes one branch of a repository.
type VersionControlFetcher interface {
	// Fetch checks out ref of repository into dest, which must not exist yet.
	// An unreadable repository yields an error wrapping apperrors.ErrAccessDenied.
	Fetch(ctx context.Context, repository, ref, dest string) error
}

// DependencySpec is what an environment installs at creation time.
type DependencySpec struct {
	// SourceDir is installed in editable mode.
	SourceDir string
	// RequirementsFile is installed when it exists.
	RequirementsFile string
}

// DependencyProvider produces the dependency set on demand. Environment
// creation calls it only when the environment does not exist yet, so an
// existing environment never waits for a source tree.
type DependencyProvider func(ctx context.Context) (DependencySpec, error)

// EnvironmentManager creates isolated Python environments.
type EnvironmentManager interface {
	// Create builds an environment for python at dest (which must not exist)
	// and installs the dependency set.
	Create(ctx context.Context, python values.PythonVersion, deps DependencyProvider, dest string) error

	// Exists reports whether dest holds a usable environment.
	Exists(ctx context.Context, dest string) bool
}

// ProcessLauncher starts the product process in the foreground and blocks
// until it exits.
type ProcessLauncher interface {
	Launch(ctx context.Context, plan entities.LaunchPlan) error
}

// AddonInspector checks addon directories on disk.
type AddonInspector interface {
	// MissingModules returns the modules not found as a directory holding a
	// manifest in any of the addon directories.
	MissingModules(modules, addonDirs []string) []string
}
