package entities

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rodoo-dev/rodoo/internal/domain/values"
)

// ResourceKey names the shared resources a profile needs. Two profiles with
// equal keys share the same source trees and environment regardless of
// their modules or paths.
type ResourceKey struct {
	Version       values.ProductVersion
	PythonVersion values.PythonVersion
	Enterprise    bool
}

// String returns the canonical form, e.g. "18.0/py3.12/community".
func (k ResourceKey) String() string {
	edition := values.EditionCommunity
	if k.Enterprise {
		edition = values.EditionEnterprise
	}
	return fmt.Sprintf("%s/py%s/%s", k.Version, k.PythonVersion, edition)
}

// Sources returns the source trees the key needs, community first.
func (k ResourceKey) Sources() []SourceKey {
	keys := []SourceKey{{Version: k.Version, Edition: values.EditionCommunity}}
	if k.Enterprise {
		keys = append(keys, SourceKey{Version: k.Version, Edition: values.EditionEnterprise})
	}
	return keys
}

// Environment returns the environment the key needs.
func (k ResourceKey) Environment() EnvironmentKey {
	return EnvironmentKey{Version: k.Version, PythonVersion: k.PythonVersion}
}

// SourceKey identifies one cached source tree.
type SourceKey struct {
	Version values.ProductVersion
	Edition values.Edition
}

func (k SourceKey) String() string {
	return k.Version.String() + "/" + k.Edition.String()
}

// RelPath is the tree location relative to the cache root.
func (k SourceKey) RelPath() string {
	return filepath.Join("src", k.Version.String(), k.Edition.String())
}

// EnvironmentKey identifies one cached runtime environment. Editions share
// environments because the enterprise tree adds no Python dependencies.
type EnvironmentKey struct {
	Version       values.ProductVersion
	PythonVersion values.PythonVersion
}

const envPrefix = "odoo-"

// String returns the directory name, e.g. "odoo-18.0-py3.12".
func (k EnvironmentKey) String() string {
	return fmt.Sprintf("%s%s-py%s", envPrefix, k.Version, k.PythonVersion)
}

// RelPath is the environment location relative to the cache root.
func (k EnvironmentKey) RelPath() string {
	return filepath.Join("venvs", k.String())
}

// ParseEnvironmentKey reverses EnvironmentKey.String.
func ParseEnvironmentKey(name string) (EnvironmentKey, error) {
	rest, ok := strings.CutPrefix(name, envPrefix)
	if !ok {
		return EnvironmentKey{}, fmt.Errorf("environment name %q: missing %q prefix", name, envPrefix)
	}
	version, python, ok := strings.Cut(rest, "-py")
	if !ok {
		return EnvironmentKey{}, fmt.Errorf("environment name %q: missing python suffix", name)
	}

	v, err := values.NewProductVersion(version)
	if err != nil {
		return EnvironmentKey{}, fmt.Errorf("environment name %q: %w", name, err)
	}
	py, err := values.NewPythonVersion(python)
	if err != nil {
		return EnvironmentKey{}, fmt.Errorf("environment name %q: %w", name, err)
	}
	return EnvironmentKey{Version: v, PythonVersion: py}, nil
}
