package uv

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rodoo-dev/rodoo/internal/domain/entities"
	"github.com/rodoo-dev/rodoo/internal/infrastructure/process"
)

// ForegroundRunner executes a command attached to the terminal.
type ForegroundRunner interface {
	RunForeground(ctx context.Context, cmd process.Command) error
}

// Launcher runs the product inside its cached environment via "uv run".
type Launcher struct {
	runner ForegroundRunner
	logger *slog.Logger
	binary string
	dir    string
}

// NewLauncher creates a launcher. dir is the working directory of the
// product process; empty means the current directory.
func NewLauncher(runner ForegroundRunner, binary, dir string, logger *slog.Logger) *Launcher {
	if binary == "" {
		binary = "uv"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{runner: runner, binary: binary, dir: dir, logger: logger}
}

// Launch blocks until the product process exits.
func (l *Launcher) Launch(ctx context.Context, plan entities.LaunchPlan) error {
	if plan.Environment.Path == "" {
		return fmt.Errorf("launch plan has no environment")
	}

	cmd := l.Command(plan)
	l.logger.Debug("launching odoo", "mode", plan.Mode, "database", plan.Database, "env", plan.Environment.Path)
	return l.runner.RunForeground(ctx, cmd)
}

// Command assembles the uv invocation for plan.
func (l *Launcher) Command(plan entities.LaunchPlan) process.Command {
	args := []string{"run", "--active", "--no-project", "odoo"}
	args = append(args, plan.Args...)

	return process.Command{
		Name: l.binary,
		Args: args,
		Env:  []string{"VIRTUAL_ENV=" + plan.Environment.Path},
		Dir:  l.dir,
	}
}
