package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	apperrors "github.com/rodoo-dev/rodoo/internal/application/errors"
	"github.com/rodoo-dev/rodoo/internal/application/ports"
	"github.com/rodoo-dev/rodoo/internal/domain/entities"
	"github.com/rodoo-dev/rodoo/internal/domain/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockEnvManager creates a directory with a bin/python file.
type MockEnvManager struct {
	Err     error
	Creates int32
}

func (m *MockEnvManager) Create(ctx context.Context, _ values.PythonVersion, deps ports.DependencyProvider, dest string) error {
	atomic.AddInt32(&m.Creates, 1)
	if _, err := deps(ctx); err != nil {
		return err
	}
	if m.Err != nil {
		return m.Err
	}
	if err := os.MkdirAll(filepath.Join(dest, "bin"), 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dest, "bin", "python"), nil, 0o755)
}

func (m *MockEnvManager) Exists(_ context.Context, dest string) bool {
	_, err := os.Stat(filepath.Join(dest, "bin", "python"))
	return err == nil
}

func envKey() entities.EnvironmentKey {
	return entities.EnvironmentKey{
		Version:       values.MustNewProductVersion("18.0"),
		PythonVersion: values.MustNewPythonVersion("3.12"),
	}
}

func countingDeps(calls *int32) ports.DependencyProvider {
	return func(context.Context) (ports.DependencySpec, error) {
		atomic.AddInt32(calls, 1)
		return ports.DependencySpec{SourceDir: "/src"}, nil
	}
}

func TestEnvironmentCache_Ensure_CreatesOnce(t *testing.T) {
	t.Parallel()

	manager := &MockEnvManager{}
	c := NewEnvironmentCache(newTestStore(t, t.TempDir()), manager, nil)
	var depCalls int32

	env, err := c.Ensure(context.Background(), envKey(), countingDeps(&depCalls))
	require.NoError(t, err)
	again, err := c.Ensure(context.Background(), envKey(), countingDeps(&depCalls))
	require.NoError(t, err)

	assert.Equal(t, env, again)
	assert.Equal(t, int32(1), manager.Creates)
	assert.Equal(t, int32(1), depCalls, "dependencies are resolved only on creation")
	assert.Equal(t, filepath.Join("venvs", "odoo-18.0-py3.12"), filepath.Join(filepath.Base(filepath.Dir(env.Path)), filepath.Base(env.Path)))
}

func TestEnvironmentCache_Ensure_FailureDiscardsPartial(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, t.TempDir())
	c := NewEnvironmentCache(store, &MockEnvManager{Err: errors.New("pip failed")}, nil)
	var depCalls int32

	_, err := c.Ensure(context.Background(), envKey(), countingDeps(&depCalls))

	var setupErr *apperrors.EnvironmentSetupError
	require.True(t, errors.As(err, &setupErr))
	assert.Equal(t, "odoo-18.0-py3.12", setupErr.Key)
	assert.NoDirExists(t, store.Path(envKey().RelPath()))
}

func TestEnvironmentCache_Ensure_MissingInterpreter(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, t.TempDir())
	c := NewEnvironmentCache(store, &MockEnvManager{}, nil)
	var depCalls int32

	env, err := c.Ensure(context.Background(), envKey(), countingDeps(&depCalls))
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(env.Path, "bin", "python")))

	_, err = c.Ensure(context.Background(), envKey(), countingDeps(&depCalls))

	var setupErr *apperrors.EnvironmentSetupError
	require.True(t, errors.As(err, &setupErr))
	assert.Contains(t, setupErr.Hint, "rodoo update --env")
	assert.DirExists(t, env.Path, "reuse never mutates the cache")
}

func TestEnvironmentCache_Entries(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, t.TempDir())
	c := NewEnvironmentCache(store, &MockEnvManager{}, nil)
	var depCalls int32

	_, err := c.Ensure(context.Background(), envKey(), countingDeps(&depCalls))
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(store.Path(filepath.Join("venvs", "scratch")), 0o755))

	entries, err := c.Entries(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "odoo-18.0-py3.12", entries[0].Name)
	assert.True(t, entries[0].Complete)
}
