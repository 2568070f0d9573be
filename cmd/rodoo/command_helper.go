package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/rodoo-dev/rodoo/internal/infrastructure/container"
	"github.com/rodoo-dev/rodoo/internal/infrastructure/output"
	"github.com/spf13/cobra"
)

// CommandContext provides common command dependencies.
// Eliminates repetitive container initialization across CLI commands.
type CommandContext struct {
	Container *container.Container
	Logger    *slog.Logger
	Console   *output.Console
	Context   context.Context
	WorkDir   string
}

// CommandHandler is a function that executes with initialized dependencies.
// Commands focus on business logic, not infrastructure setup.
type CommandHandler func(*CommandContext, *cobra.Command, []string) error

// withContainer wraps a command handler with container initialization.
// Handles common setup: config loading, logger creation, dependency injection.
func withContainer(handler CommandHandler) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		logger := slog.Default()

		workDir, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to determine working directory: %w", err)
		}

		// Initialize container with dependencies
		c, err := container.New(container.Options{
			SystemConfigPath: globalOpts.SystemConfig,
			ProfileFile:      globalOpts.ProfileFile,
			WorkDir:          workDir,
			NonInteractive:   globalOpts.NonInteractive,
			NoColor:          globalOpts.NoColor,
			Logger:           logger,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}

		ctx := &CommandContext{
			Container: c,
			Logger:    logger,
			Console:   output.NewConsole(cmd.ErrOrStderr(), globalOpts.NoColor),
			Context:   cmd.Context(),
			WorkDir:   workDir,
		}

		return handler(ctx, cmd, args)
	}
}
