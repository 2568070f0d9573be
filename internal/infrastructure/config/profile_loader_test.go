package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/rodoo-dev/rodoo/internal/application/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProfileFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFileRepository_Load_SingleFile(t *testing.T) {
	t.Parallel()

	work := t.TempDir()
	writeProfileFile(t, work, "rodoo.toml", `
[profile.default]
modules = ["sale", "stock"]
version = 17.0
python_version = "3.10"
enterprise = true
paths = ["./custom_addons", "/abs/addons"]
workers = 2
extra_params = "--dev=all"
`)

	repo := NewFileRepository(RepositoryOptions{WorkDir: work})
	set, err := repo.Load(context.Background())
	require.NoError(t, err)

	entry, ok := set.Only()
	require.True(t, ok)
	assert.Equal(t, "default", entry.Name)
	assert.Equal(t, filepath.Join(work, "rodoo.toml"), entry.Source)

	o := entry.Overrides
	require.NotNil(t, o.Version)
	assert.Equal(t, "17.0", o.Version.String())
	assert.Equal(t, "3.10", o.PythonVersion.String())
	assert.True(t, *o.Enterprise)
	assert.Equal(t, []string{"sale", "stock"}, o.Modules)
	assert.Equal(t, []string{filepath.Join(work, "custom_addons"), "/abs/addons"}, o.Paths)
	assert.Equal(t, 2, *o.Workers)
	assert.Equal(t, "--dev=all", *o.ExtraParams)
	assert.Nil(t, o.DB)
}

func TestFileRepository_Load_VersionForms(t *testing.T) {
	t.Parallel()

	work := t.TempDir()
	writeProfileFile(t, work, "rodoo.toml", `
[profile.float]
version = 16.0
[profile.int]
version = 18
[profile.string]
version = "17.0"
`)

	set, err := NewFileRepository(RepositoryOptions{WorkDir: work}).Load(context.Background())
	require.NoError(t, err)

	for name, want := range map[string]string{"float": "16.0", "int": "18.0", "string": "17.0"} {
		entry, ok := set.Find(name)
		require.True(t, ok, name)
		assert.Equal(t, want, entry.Overrides.Version.String(), name)
	}
}

func TestFileRepository_Load_Precedence(t *testing.T) {
	t.Parallel()

	work := t.TempDir()
	user := t.TempDir()
	writeProfileFile(t, user, "rodoo.toml", `
[profile.shared]
version = "16.0"
[profile.user_only]
version = "15.0"
`)
	writeProfileFile(t, work, "rodoo.toml", `
[profile.shared]
version = "17.0"
`)
	writeProfileFile(t, work, ".rodoo.toml", `
[profile.shared]
version = "18.0"
`)

	repo := NewFileRepository(RepositoryOptions{WorkDir: work, UserDir: user})
	assert.Equal(t, []string{
		filepath.Join(work, ".rodoo.toml"),
		filepath.Join(work, "rodoo.toml"),
		filepath.Join(user, "rodoo.toml"),
	}, repo.Discover())

	set, err := repo.Load(context.Background())
	require.NoError(t, err)

	shared, ok := set.Find("shared")
	require.True(t, ok)
	assert.Equal(t, "18.0", shared.Overrides.Version.String())
	assert.Equal(t, filepath.Join(work, ".rodoo.toml"), shared.Source)

	userOnly, ok := set.Find("user_only")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(user, "rodoo.toml"), userOnly.Source)
	assert.Len(t, set.Files(), 3)
}

func TestFileRepository_Load_NoFiles(t *testing.T) {
	t.Parallel()

	set, err := NewFileRepository(RepositoryOptions{WorkDir: t.TempDir(), UserDir: t.TempDir()}).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, set.Len())
}

func TestFileRepository_Load_ExplicitFile(t *testing.T) {
	t.Parallel()

	work := t.TempDir()
	writeProfileFile(t, work, "rodoo.toml", "[profile.ignored]\n")
	explicit := writeProfileFile(t, t.TempDir(), "team.toml", "[profile.team]\nversion = \"17.0\"\n")

	set, err := NewFileRepository(RepositoryOptions{WorkDir: work, ExplicitFile: explicit}).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"team"}, set.Names())

	_, err = NewFileRepository(RepositoryOptions{ExplicitFile: filepath.Join(work, "missing.toml")}).Load(context.Background())
	var cfgErr *apperrors.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestFileRepository_Load_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{"bad toml", "[profile.a\nversion = 1"},
		{"duplicate profile", "[profile.a]\nversion = \"17.0\"\n[profile.a]\nversion = \"18.0\"\n"},
		{"unknown key", "[profile.a]\nverison = \"17.0\"\n"},
		{"unknown top level", "[profiles.a]\nversion = \"17.0\"\n"},
		{"bad version", "[profile.a]\nversion = \"latest\"\n"},
		{"numeric python", "[profile.a]\npython_version = 3.12\n"},
		{"modules not a list", "[profile.a]\nmodules = \"sale\"\n"},
		{"profile not a table", "profile = 3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			work := t.TempDir()
			writeProfileFile(t, work, "rodoo.toml", tt.content)

			_, err := NewFileRepository(RepositoryOptions{WorkDir: work}).Load(context.Background())

			var cfgErr *apperrors.ConfigurationError
			assert.True(t, errors.As(err, &cfgErr), "got %v", err)
		})
	}
}

func TestResolvePath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ResolvePath("/project", "~/addons")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "addons"), got)

	got, err = ResolvePath("/project", "../shared/./addons")
	require.NoError(t, err)
	assert.Equal(t, "/shared/addons", got)
}
