package dto

import (
	"github.com/rodoo-dev/rodoo/internal/domain/entities"
)

// ResolvedProfile is the outcome of profile resolution.
type ResolvedProfile struct {
	Provenance entities.Provenance
	// Source is the file the profile came from; empty for flags-only runs.
	Source string
	// SavedTo is the file the profile was written to during resolution.
	SavedTo string
	Spec    entities.ProfileSpec
}

// ProvisionedResources are the cache entries a launch needs.
type ProvisionedResources struct {
	Environment entities.Environment
	Key         entities.ResourceKey
	Trees       []entities.SourceTree
}

// LaunchResponse describes the invocation that was handed to the launcher.
type LaunchResponse struct {
	Profile ResolvedProfile
	Plan    entities.LaunchPlan
}

// UpdateResponse lists what an update refreshed.
type UpdateResponse struct {
	Sources      []entities.SourceTree
	Environments []entities.Environment
}
