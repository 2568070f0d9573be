package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/rodoo-dev/rodoo/internal/application/ports"
	"github.com/rodoo-dev/rodoo/internal/domain/entities"
)

// TargetPath resolves where a new profile is written. An explicit file
// always wins.
func (r *FileRepository) TargetPath(target ports.SaveTarget) (string, error) {
	if r.file != "" {
		return filepath.Abs(r.file)
	}
	switch target {
	case ports.SaveTargetProject:
		return filepath.Join(r.workDir, DefaultFileName), nil
	case ports.SaveTargetUser:
		if r.userDir == "" {
			return "", fmt.Errorf("no user configuration directory")
		}
		return filepath.Join(r.userDir, DefaultFileName), nil
	default:
		return "", fmt.Errorf("unknown save target %q", target)
	}
}

// Save writes entry into the file at path, keeping every other profile and
// replacing one of the same name. The file is replaced atomically.
func (r *FileRepository) Save(_ context.Context, path string, entry entities.ProfileEntry) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving path %q: %w", path, err)
	}

	doc, err := readDocument(abs)
	if err != nil {
		return fmt.Errorf("reading %s: %w", abs, err)
	}

	profiles, _ := doc["profile"].(map[string]any)
	if profiles == nil {
		profiles = map[string]any{}
	}
	profiles[entry.Name] = encodeProfile(entry.Overrides, filepath.Dir(abs))
	doc["profile"] = profiles

	data, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding profiles: %w", err)
	}

	if err := writeAtomic(abs, data); err != nil {
		return err
	}
	r.logger.Debug("saved profile", "profile", entry.Name, "path", abs)
	return nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temporary file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name()) // no-op after a successful rename
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	//nolint:gosec // G302: profile files are meant to be shared within the project
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("setting permissions on %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
