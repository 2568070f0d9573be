package addons

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addModule(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, name), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name, ManifestFile), []byte("{}"), 0o600))
}

func TestInspector_MissingModules(t *testing.T) {
	t.Parallel()

	project := t.TempDir()
	community := t.TempDir()
	addModule(t, project, "my_module")
	addModule(t, community, "sale")
	// a directory without a manifest is not an addon
	require.NoError(t, os.MkdirAll(filepath.Join(community, "stock"), 0o755))

	missing := NewInspector().MissingModules(
		[]string{"my_module", "stock", "sale", "crm"},
		[]string{project, community},
	)

	assert.Equal(t, []string{"stock", "crm"}, missing)
}

func TestInspector_NoModules(t *testing.T) {
	t.Parallel()

	assert.Empty(t, NewInspector().MissingModules(nil, []string{t.TempDir()}))
}
