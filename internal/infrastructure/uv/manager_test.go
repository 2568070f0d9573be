package uv

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rodoo-dev/rodoo/internal/application/ports"
	"github.com/rodoo-dev/rodoo/internal/domain/values"
	"github.com/rodoo-dev/rodoo/internal/infrastructure/process"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockRunner records commands and fails those whose argv starts with a
// prefix listed in Fail.
type MockRunner struct {
	Fail  map[string]error
	Calls []process.Command
}

func (m *MockRunner) Run(_ context.Context, cmd process.Command) (process.Result, error) {
	m.Calls = append(m.Calls, cmd)
	line := strings.Join(cmd.Args, " ")
	for prefix, err := range m.Fail {
		if strings.HasPrefix(line, prefix) {
			return process.Result{}, err
		}
	}
	return process.Result{}, nil
}

func (m *MockRunner) lines() []string {
	out := make([]string, 0, len(m.Calls))
	for _, c := range m.Calls {
		out = append(out, strings.Join(c.Args, " "))
	}
	return out
}

func staticDeps(spec ports.DependencySpec) ports.DependencyProvider {
	return func(context.Context) (ports.DependencySpec, error) { return spec, nil }
}

func TestManager_Create(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	req := filepath.Join(src, "requirements.txt")
	require.NoError(t, os.WriteFile(req, []byte("lxml\n"), 0o600))

	runner := &MockRunner{}
	m := NewManager(runner, "", nil)

	err := m.Create(context.Background(), values.MustNewPythonVersion("3.12"),
		staticDeps(ports.DependencySpec{SourceDir: src, RequirementsFile: req}), "/cache/tmp/env")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"python find 3.12",
		"venv --relocatable --python 3.12 /cache/tmp/env",
		"pip install -e " + src,
		"pip install -r " + req,
	}, runner.lines())
	assert.Equal(t, []string{"VIRTUAL_ENV=/cache/tmp/env"}, runner.Calls[2].Env)
	assert.Equal(t, "uv", runner.Calls[0].Name)
}

func TestManager_Create_InstallsMissingPython(t *testing.T) {
	t.Parallel()

	runner := &MockRunner{Fail: map[string]error{"python find": errors.New("not found")}}
	m := NewManager(runner, "/opt/uv", nil)

	err := m.Create(context.Background(), values.MustNewPythonVersion("3.10"),
		staticDeps(ports.DependencySpec{SourceDir: "/src", RequirementsFile: "/src/missing.txt"}), "/tmp/env")
	require.NoError(t, err)

	lines := runner.lines()
	assert.Equal(t, "python install 3.10", lines[1])
	assert.NotContains(t, lines, "pip install -r /src/missing.txt")
}

func TestManager_Create_DependencyFailureStops(t *testing.T) {
	t.Parallel()

	runner := &MockRunner{}
	m := NewManager(runner, "", nil)
	depErr := errors.New("source unavailable")

	err := m.Create(context.Background(), values.MustNewPythonVersion("3.12"),
		func(context.Context) (ports.DependencySpec, error) { return ports.DependencySpec{}, depErr }, "/tmp/env")

	require.ErrorIs(t, err, depErr)
	for _, line := range runner.lines() {
		assert.NotContains(t, line, "pip install")
	}
}

func TestManager_Create_InstallFailure(t *testing.T) {
	t.Parallel()

	runner := &MockRunner{Fail: map[string]error{"pip install -e": errors.New("build failed")}}
	m := NewManager(runner, "", nil)

	err := m.Create(context.Background(), values.MustNewPythonVersion("3.12"),
		staticDeps(ports.DependencySpec{SourceDir: "/src"}), "/tmp/env")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "installing /src")
}

func TestManager_Exists(t *testing.T) {
	t.Parallel()

	venv := t.TempDir()
	m := NewManager(&MockRunner{}, "", nil)
	assert.False(t, m.Exists(context.Background(), venv))

	py := interpreterPath(venv)
	require.NoError(t, os.MkdirAll(filepath.Dir(py), 0o755))
	require.NoError(t, os.WriteFile(py, nil, 0o755))
	assert.True(t, m.Exists(context.Background(), venv))
}
