// Package git fetches source trees with the git command-line client.
package git

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	apperrors "github.com/rodoo-dev/rodoo/internal/application/errors"
	"github.com/rodoo-dev/rodoo/internal/infrastructure/process"
)

// CommandRunner executes a command and captures its output.
type CommandRunner interface {
	Run(ctx context.Context, cmd process.Command) (process.Result, error)
}

// stderr fragments git and ssh print when credentials cannot read a repository.
var accessDeniedMarkers = []string{
	"Permission denied",
	"Repository not found",
	"Authentication failed",
	"could not read Username",
	"access denied",
}

// Fetcher clones a single branch of a repository, shallowly.
type Fetcher struct {
	runner CommandRunner
	logger *slog.Logger
	binary string
}

// NewFetcher creates a git fetcher. An empty binary means "git" on PATH.
func NewFetcher(runner CommandRunner, binary string, logger *slog.Logger) *Fetcher {
	if binary == "" {
		binary = "git"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{runner: runner, binary: binary, logger: logger}
}

// Fetch clones ref of repository into dest.
func (f *Fetcher) Fetch(ctx context.Context, repository, ref, dest string) error {
	cmd := process.Command{
		Name: f.binary,
		Args: []string{
			"clone",
			"--depth", "1",
			"--single-branch",
			"--branch", ref,
			"--no-tags",
			"--quiet",
			repository,
			dest,
		},
		// never block on a credential prompt
		Env: []string{"GIT_TERMINAL_PROMPT=0"},
	}

	f.logger.Debug("cloning repository", "repository", repository, "ref", ref, "dest", dest)
	if _, err := f.runner.Run(ctx, cmd); err != nil {
		var subErr *apperrors.SubprocessError
		if errors.As(err, &subErr) && isAccessDenied(subErr.Stderr) {
			return fmt.Errorf("%w: %w", apperrors.ErrAccessDenied, err)
		}
		return fmt.Errorf("cloning %s at %s: %w", repository, ref, err)
	}
	return nil
}

func isAccessDenied(stderr string) bool {
	for _, marker := range accessDeniedMarkers {
		if strings.Contains(stderr, marker) {
			return true
		}
	}
	return false
}
