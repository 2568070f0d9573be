// Package addons inspects addon directories on disk.
package addons

import (
	"os"
	"path/filepath"
)

// ManifestFile marks a directory as an addon.
const ManifestFile = "__manifest__.py"

// Inspector looks modules up in addon directories.
type Inspector struct{}

// NewInspector creates an addon inspector.
func NewInspector() *Inspector {
	return &Inspector{}
}

// MissingModules returns the modules, in request order, that no addon
// directory provides.
func (i *Inspector) MissingModules(modules, addonDirs []string) []string {
	var missing []string
	for _, module := range modules {
		if !i.provides(module, addonDirs) {
			missing = append(missing, module)
		}
	}
	return missing
}

func (i *Inspector) provides(module string, addonDirs []string) bool {
	for _, dir := range addonDirs {
		info, err := os.Stat(filepath.Join(dir, module, ManifestFile))
		if err == nil && info.Mode().IsRegular() {
			return true
		}
	}
	return false
}
