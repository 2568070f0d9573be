package entities

import "time"

// SourceTree is a complete cached checkout of one edition.
type SourceTree struct {
	Key  SourceKey
	Path string
	// AddonDirs are the directories of the tree that hold addons, in the
	// order they belong on the addons path.
	AddonDirs []string
}

// Environment is a complete cached Python environment.
type Environment struct {
	Key  EnvironmentKey
	Path string
}

// CacheKind distinguishes entries under the cache root.
type CacheKind string

const (
	CacheKindSource      CacheKind = "source"
	CacheKindEnvironment CacheKind = "environment"
)

// CacheEntry describes one keyed directory under the cache root.
type CacheEntry struct {
	ModTime     time.Time
	Kind        CacheKind
	Name        string
	Path        string
	Source      SourceKey
	Environment EnvironmentKey
	Complete    bool
}

// PruneReport lists what an explicit cache cleanup removed or left alone.
type PruneReport struct {
	Removed []string
	Skipped []string
}
