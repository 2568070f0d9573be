// Package uv creates Python environments and launches the product with the
// uv package manager.
package uv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/rodoo-dev/rodoo/internal/application/ports"
	"github.com/rodoo-dev/rodoo/internal/domain/values"
	"github.com/rodoo-dev/rodoo/internal/infrastructure/process"
)

// CommandRunner executes a command and captures its output.
type CommandRunner interface {
	Run(ctx context.Context, cmd process.Command) (process.Result, error)
}

// Manager builds relocatable virtual environments. Environments are created
// at a temporary location and moved into the cache afterwards, so they must
// stay valid after a rename.
type Manager struct {
	runner CommandRunner
	logger *slog.Logger
	binary string
}

// NewManager creates a uv environment manager. An empty binary means "uv" on PATH.
func NewManager(runner CommandRunner, binary string, logger *slog.Logger) *Manager {
	if binary == "" {
		binary = "uv"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{runner: runner, binary: binary, logger: logger}
}

// Create provisions the interpreter if needed, creates the environment at
// dest and installs the dependency set into it.
func (m *Manager) Create(ctx context.Context, python values.PythonVersion, deps ports.DependencyProvider, dest string) error {
	if err := m.ensurePython(ctx, python); err != nil {
		return err
	}

	if _, err := m.uv(ctx, nil, "venv", "--relocatable", "--python", python.String(), dest); err != nil {
		return fmt.Errorf("creating virtual environment: %w", err)
	}

	spec, err := deps(ctx)
	if err != nil {
		return fmt.Errorf("resolving dependencies: %w", err)
	}

	env := []string{"VIRTUAL_ENV=" + dest}

	m.logger.Info("installing odoo into environment", "source", spec.SourceDir, "env", dest)
	if _, err := m.uv(ctx, env, "pip", "install", "-e", spec.SourceDir); err != nil {
		return fmt.Errorf("installing %s: %w", spec.SourceDir, err)
	}

	if spec.RequirementsFile != "" {
		if _, statErr := os.Stat(spec.RequirementsFile); statErr == nil {
			m.logger.Info("installing requirements", "file", spec.RequirementsFile)
			if _, err := m.uv(ctx, env, "pip", "install", "-r", spec.RequirementsFile); err != nil {
				return fmt.Errorf("installing requirements: %w", err)
			}
		} else if !errors.Is(statErr, os.ErrNotExist) {
			return fmt.Errorf("checking requirements file: %w", statErr)
		}
	}

	return nil
}

// Exists reports whether dest holds an environment with an interpreter.
func (m *Manager) Exists(_ context.Context, dest string) bool {
	info, err := os.Stat(interpreterPath(dest))
	return err == nil && !info.IsDir()
}

func (m *Manager) ensurePython(ctx context.Context, python values.PythonVersion) error {
	if _, err := m.uv(ctx, nil, "python", "find", python.String()); err == nil {
		return nil
	}

	m.logger.Info("installing python interpreter", "version", python.String())
	if _, err := m.uv(ctx, nil, "python", "install", python.String()); err != nil {
		return fmt.Errorf("installing python %s: %w", python, err)
	}
	return nil
}

func (m *Manager) uv(ctx context.Context, env []string, args ...string) (process.Result, error) {
	return m.runner.Run(ctx, process.Command{Name: m.binary, Args: args, Env: env})
}

func interpreterPath(venv string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(venv, "Scripts", "python.exe")
	}
	return filepath.Join(venv, "bin", "python")
}
