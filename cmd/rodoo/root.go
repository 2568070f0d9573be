package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/fatih/color"
	apperrors "github.com/rodoo-dev/rodoo/internal/application/errors"
	"github.com/rodoo-dev/rodoo/internal/infrastructure/output"
	"github.com/spf13/cobra"
)

// GlobalOptions holds the persistent flags of every command.
type GlobalOptions struct {
	SystemConfig   string
	ProfileFile    string
	Verbose        bool
	NonInteractive bool
	NoColor        bool
}

var globalOpts GlobalOptions

// rootCmd is the application entry point.
var rootCmd = &cobra.Command{
	Use:   "rodoo",
	Short: "Start Odoo development instances from shared, cached installs",
	Long: `rodoo resolves a profile (command-line flags over profile files over
built-in defaults), makes sure the matching Odoo source trees and Python
environment exist in a shared cache, and starts Odoo in the foreground.

Source trees are cached per version and edition, environments per version and
Python version, so every project using the same combination shares them.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		setupLogging()
		if globalOpts.NoColor {
			color.NoColor = true
		}
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context) int {
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	console := output.NewConsole(os.Stderr, globalOpts.NoColor)
	reportError(console, err)
	return exitCode(err)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalOpts.SystemConfig, "config", "",
		"system config file (default is $XDG_CONFIG_HOME/rodoo/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.ProfileFile, "config-file", "",
		"profile file to use instead of discovering .rodoo.toml/rodoo.toml")
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.Verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&globalOpts.NonInteractive, "non-interactive", false,
		"never prompt, even on a terminal")
	rootCmd.PersistentFlags().BoolVar(&globalOpts.NoColor, "no-color", false, "disable colored output")
}

func setupLogging() {
	level := slog.LevelWarn
	if globalOpts.Verbose {
		level = slog.LevelDebug
	}

	// Using TextHandler for CLI friendliness
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}

func reportError(console *output.Console, err error) {
	if errors.Is(err, context.Canceled) {
		console.Warn("interrupted")
		return
	}
	console.Error("%s: %v", apperrors.Kind(err), err)
	if hint := apperrors.Hint(err); hint != "" {
		console.Info("hint: %s", hint)
	}
}

// exitCode passes the product's own exit status through; every other
// failure exits with 1.
func exitCode(err error) int {
	var subErr *apperrors.SubprocessError
	if apperrors.Kind(err) == "SubprocessError" && errors.As(err, &subErr) && subErr.ExitCode > 0 {
		return subErr.ExitCode
	}
	if errors.Is(err, context.Canceled) {
		return 130
	}
	return 1
}
