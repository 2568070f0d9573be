// Package process runs external commands.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"time"

	apperrors "github.com/rodoo-dev/rodoo/internal/application/errors"
)

// exitNotFound mirrors the shell's status for a missing binary.
const exitNotFound = 127

// Command describes one external command invocation.
type Command struct {
	Name string
	Args []string
	// Env entries are appended to the current process environment.
	Env []string
	Dir string
}

// Argv returns the command line as a slice.
func (c Command) Argv() []string {
	return append([]string{c.Name}, c.Args...)
}

// Result carries the captured output of a finished command.
type Result struct {
	Stdout string
	Stderr string
}

// Runner executes commands with exec.CommandContext.
type Runner struct {
	logger    *slog.Logger
	stdin     io.Reader
	stdout    io.Writer
	stderr    io.Writer
	waitDelay time.Duration
}

// NewRunner creates a runner whose foreground commands use the process's
// standard streams.
func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		logger:    logger,
		stdin:     os.Stdin,
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		waitDelay: 10 * time.Second,
	}
}

// WithStreams returns a copy of the runner attached to other streams.
func (r *Runner) WithStreams(stdin io.Reader, stdout, stderr io.Writer) *Runner {
	cp := *r
	cp.stdin, cp.stdout, cp.stderr = stdin, stdout, stderr
	return &cp
}

// Run executes cmd and captures its output. A non-zero exit or a missing
// binary yields *apperrors.SubprocessError.
func (r *Runner) Run(ctx context.Context, cmd Command) (Result, error) {
	c := r.build(ctx, cmd)

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	r.logger.Debug("running command", "argv", cmd.Argv(), "dir", cmd.Dir)
	err := c.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		return res, r.wrap(ctx, cmd, err, res)
	}
	return res, nil
}

// RunForeground executes cmd attached to the runner's streams and blocks
// until it exits. Cancelling ctx interrupts the child and waits for it to
// shut down.
func (r *Runner) RunForeground(ctx context.Context, cmd Command) error {
	c := r.build(ctx, cmd)
	c.Stdin = r.stdin
	c.Stdout = r.stdout
	c.Stderr = r.stderr
	c.Cancel = func() error {
		return c.Process.Signal(os.Interrupt)
	}
	c.WaitDelay = r.waitDelay

	r.logger.Debug("starting foreground command", "argv", cmd.Argv(), "dir", cmd.Dir)
	if err := c.Run(); err != nil {
		return r.wrap(ctx, cmd, err, Result{})
	}
	return nil
}

func (r *Runner) build(ctx context.Context, cmd Command) *exec.Cmd {
	//nolint:gosec // G204: commands are assembled from configuration, not user shell input
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}
	return c
}

func (r *Runner) wrap(ctx context.Context, cmd Command, err error, res Result) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s interrupted: %w", cmd.Name, ctxErr)
	}

	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		return apperrors.NewSubprocessError(cmd.Argv(), exitErr.ExitCode(), res.Stdout, res.Stderr)
	case errors.Is(err, exec.ErrNotFound):
		return apperrors.NewSubprocessError(cmd.Argv(), exitNotFound, res.Stdout, fmt.Sprintf("%s: command not found", cmd.Name))
	default:
		return fmt.Errorf("running %s: %w", cmd.Name, err)
	}
}
