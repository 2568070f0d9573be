// Package config provides infrastructure for loading and saving profile files.
// Profile files are TOML documents holding [profile.<name>] tables; several
// of them may be visible at once and are merged by precedence.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	apperrors "github.com/rodoo-dev/rodoo/internal/application/errors"
	"github.com/rodoo-dev/rodoo/internal/application/ports"
	"github.com/rodoo-dev/rodoo/internal/domain/entities"
)

// FileNames are the recognised profile file names, highest precedence first.
var FileNames = []string{".rodoo.toml", "rodoo.toml"}

// DefaultFileName is the name new profile files are created with.
const DefaultFileName = "rodoo.toml"

// RepositoryOptions configure a FileRepository.
type RepositoryOptions struct {
	Logger *slog.Logger
	// WorkDir is the project directory searched first.
	WorkDir string
	// UserDir is the user configuration directory searched second.
	UserDir string
	// ExplicitFile, when set, is the only file read and written.
	ExplicitFile string
}

// FileRepository reads and writes profile files.
//
// Discovery Order (highest precedence first):
//   - <WorkDir>/.rodoo.toml
//   - <WorkDir>/rodoo.toml
//   - <UserDir>/.rodoo.toml
//   - <UserDir>/rodoo.toml
//
// Profiles are merged by name; a higher-precedence file replaces the whole
// profile of the same name. Relative paths are resolved against the
// directory of the file that declares them.
type FileRepository struct {
	logger  *slog.Logger
	workDir string
	userDir string
	file    string
}

var _ ports.ProfileRepository = (*FileRepository)(nil)

// NewFileRepository creates a profile file repository.
func NewFileRepository(opts RepositoryOptions) *FileRepository {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &FileRepository{
		logger:  opts.Logger,
		workDir: opts.WorkDir,
		userDir: opts.UserDir,
		file:    opts.ExplicitFile,
	}
}

// Discover returns the existing profile files, highest precedence first.
func (r *FileRepository) Discover() []string {
	if r.file != "" {
		return []string{r.file}
	}

	var found []string
	seen := make(map[string]bool)
	for _, dir := range []string{r.workDir, r.userDir} {
		if dir == "" {
			continue
		}
		for _, name := range FileNames {
			path := filepath.Join(dir, name)
			if seen[path] {
				continue
			}
			seen[path] = true
			if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
				found = append(found, path)
			}
		}
	}
	return found
}

// Load reads every discovered file and merges their profiles.
func (r *FileRepository) Load(_ context.Context) (*entities.ProfileSet, error) {
	set := entities.NewProfileSet()

	if r.file != "" {
		if _, err := os.Stat(r.file); err != nil {
			return nil, apperrors.NewConfigurationError("profile file",
				fmt.Sprintf("configuration file %s not found", r.file), err)
		}
	}

	files := r.Discover()
	// lowest precedence first so later files overwrite
	for i := len(files) - 1; i >= 0; i-- {
		entries, err := r.loadFile(files[i])
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			set.Put(entry)
		}
		set.AddFile(files[i])
		r.logger.Debug("loaded profile file", "path", files[i], "profiles", len(entries))
	}

	return set, nil
}

// loadFile parses one profile file.
func (r *FileRepository) loadFile(path string) ([]entities.ProfileEntry, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", path, err)
	}

	doc, err := readDocument(abs)
	if err != nil {
		return nil, apperrors.NewConfigurationError("profile file", "invalid TOML in "+abs, err)
	}

	for _, key := range sortedKeys(doc) {
		if key != "profile" {
			return nil, apperrors.NewConfigurationError("profile file",
				fmt.Sprintf("%s: unknown top-level key %q", abs, key), nil).
				WithHint("profiles are declared as [profile.<name>] tables")
		}
	}

	rawProfiles, ok := doc["profile"]
	if !ok {
		return nil, nil
	}
	tables, ok := rawProfiles.(map[string]any)
	if !ok {
		return nil, apperrors.NewConfigurationError("profile file",
			fmt.Sprintf("%s: profile must be a table", abs), nil)
	}

	dir := filepath.Dir(abs)
	entries := make([]entities.ProfileEntry, 0, len(tables))
	for _, name := range sortedKeys(tables) {
		table, ok := tables[name].(map[string]any)
		if !ok {
			return nil, apperrors.NewConfigurationError("profile file",
				fmt.Sprintf("%s: profile %q must be a table", abs, name), nil)
		}
		raw, err := decodeProfile(table)
		if err != nil {
			return nil, apperrors.NewConfigurationError("profile file",
				fmt.Sprintf("%s: profile %q", abs, name), err)
		}
		overrides, err := raw.toOverrides(dir)
		if err != nil {
			return nil, apperrors.NewConfigurationError("profile file",
				fmt.Sprintf("%s: profile %q", abs, name), err)
		}
		entries = append(entries, entities.ProfileEntry{Name: name, Source: abs, Overrides: overrides})
	}
	return entries, nil
}

// readDocument parses a TOML file into an untyped document. A missing file
// is an empty document.
func readDocument(path string) (map[string]any, error) {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	root, err := os.OpenRoot(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("failed to open profile directory: %w", err)
	}
	defer func() {
		_ = root.Close() // Best-effort cleanup
	}()

	data, err := root.ReadFile(base)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}

	doc := map[string]any{}
	if err := toml.Unmarshal(data, &doc); err != nil {
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			row, col := decodeErr.Position()
			return nil, fmt.Errorf("line %d, column %d: %w", row, col, err)
		}
		return nil, err
	}
	return doc, nil
}
