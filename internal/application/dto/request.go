// Package dto contains data transfer objects for application layer use cases.
package dto

import (
	"github.com/rodoo-dev/rodoo/internal/domain/entities"
	"github.com/rodoo-dev/rodoo/internal/domain/values"
)

// ResolveProfileRequest encapsulates the inputs of profile resolution.
type ResolveProfileRequest struct {
	// ProfileName selects a profile; empty means auto-select or prompt.
	ProfileName string
	// Overrides are the values given on the command line.
	Overrides entities.ProfileOverrides
	// Save persists Overrides into the selected profile's file.
	Save bool
}

// LaunchRequest encapsulates all inputs needed to start the product.
type LaunchRequest struct {
	Mode    entities.LaunchMode
	Profile ResolveProfileRequest
}

// UpdateRequest selects which cached resources to re-fetch or rebuild.
type UpdateRequest struct {
	// Profile, when set, limits the update to the resources the resolved
	// profile uses.
	Profile *ResolveProfileRequest
	// PythonVersion selects environments to rebuild. Nil means every cached
	// environment of the selected versions.
	PythonVersion *values.PythonVersion
	// Versions to update. Empty means every cached version.
	Versions []values.ProductVersion
	// Enterprise also updates the enterprise trees of the selected versions.
	Enterprise bool
	// Environments rebuilds environments after refreshing sources.
	Environments bool
	// Concurrency bounds parallel refreshes (0 = default).
	Concurrency int
}
