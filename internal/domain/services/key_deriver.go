package services

import "github.com/rodoo-dev/rodoo/internal/domain/entities"

// KeyDeriver maps a resolved profile to the shared resources it needs.
// Only version, python version and edition participate; modules and paths
// never do.
type KeyDeriver struct{}

// NewKeyDeriver creates a new key deriver.
func NewKeyDeriver() *KeyDeriver {
	return &KeyDeriver{}
}

// Derive returns the resource key for spec.
func (d *KeyDeriver) Derive(spec entities.ProfileSpec) entities.ResourceKey {
	return entities.ResourceKey{
		Version:       spec.Version,
		PythonVersion: spec.PythonVersion,
		Enterprise:    spec.Enterprise,
	}
}
