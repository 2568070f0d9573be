// Package prompt asks the user questions on the terminal with huh forms.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	apperrors "github.com/rodoo-dev/rodoo/internal/application/errors"
	"github.com/rodoo-dev/rodoo/internal/application/ports"
	"github.com/rodoo-dev/rodoo/internal/domain/entities"
	"github.com/rodoo-dev/rodoo/internal/domain/values"
	"github.com/rodoo-dev/rodoo/internal/infrastructure/config"
	"golang.org/x/term"
)

// Options configure a TerminalPrompter.
type Options struct {
	// WorkDir anchors relative paths typed by the user.
	WorkDir string
	// NonInteractive disables prompting even on a terminal.
	NonInteractive bool
	// Accessible switches huh to plain line-based prompts.
	Accessible bool
}

// TerminalPrompter provides interactive prompts on stdin/stderr.
type TerminalPrompter struct {
	isTerminal func() bool
	workDir    string
	disabled   bool
	accessible bool
}

var _ ports.Prompter = (*TerminalPrompter)(nil)

// NewTerminalPrompter creates a new TerminalPrompter.
func NewTerminalPrompter(opts Options) *TerminalPrompter {
	return &TerminalPrompter{
		isTerminal: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stderr.Fd()))
		},
		workDir:    opts.WorkDir,
		disabled:   opts.NonInteractive,
		accessible: opts.Accessible,
	}
}

// IsInteractive checks if we're running in an interactive terminal.
func (p *TerminalPrompter) IsInteractive() bool {
	return !p.disabled && p.isTerminal()
}

// SelectProfile asks the user to pick a profile.
func (p *TerminalPrompter) SelectProfile(ctx context.Context, names []string) (string, error) {
	if err := p.requireInteractive("select a profile"); err != nil {
		return "", err
	}

	var choice string
	err := p.run(ctx, huh.NewGroup(
		huh.NewSelect[string]().
			Title("Several profiles are available. Which one?").
			Options(huh.NewOptions(names...)...).
			Value(&choice),
	))
	if err != nil {
		return "", err
	}
	return choice, nil
}

// Confirm asks a yes/no question.
func (p *TerminalPrompter) Confirm(ctx context.Context, question string, def bool) (bool, error) {
	if err := p.requireInteractive("confirm"); err != nil {
		return false, err
	}

	answer := def
	err := p.run(ctx, huh.NewGroup(
		huh.NewConfirm().
			Title(question).
			Value(&answer),
	))
	return answer, err
}

// CreateProfile runs the create-profile form.
func (p *TerminalPrompter) CreateProfile(ctx context.Context, defaults entities.ProfileSpec) (*ports.ProfileDraft, error) {
	if err := p.requireInteractive("create a profile"); err != nil {
		return nil, err
	}

	a := createAnswers{
		Name:          "default",
		Version:       defaults.Version.String(),
		PythonVersion: defaults.PythonVersion.String(),
	}

	err := p.run(ctx,
		huh.NewGroup(
			huh.NewInput().
				Title("Profile name").
				Value(&a.Name).
				Validate(notEmpty("profile name")),
			huh.NewInput().
				Title("Modules").
				Description("Comma-separated, installed on first start").
				Value(&a.Modules),
			huh.NewInput().
				Title("Odoo version").
				Value(&a.Version).
				Validate(func(s string) error {
					_, err := values.NewProductVersion(s)
					return err
				}),
			huh.NewInput().
				Title("Python version").
				Value(&a.PythonVersion).
				Validate(func(s string) error {
					_, err := values.NewPythonVersion(s)
					return err
				}),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Database name").
				Description("Leave empty to derive it from the version and modules").
				Value(&a.DB),
			huh.NewInput().
				Title("Addon paths").
				Description("Comma-separated, relative to the current directory").
				Value(&a.Paths),
			huh.NewConfirm().
				Title("Use the enterprise edition?").
				Value(&a.Enterprise),
			huh.NewConfirm().
				Title("Update modules on every start?").
				Value(&a.ForceUpdate),
			huh.NewInput().
				Title("Extra Odoo parameters").
				Value(&a.ExtraParams),
		),
		huh.NewGroup(
			huh.NewSelect[ports.SaveTarget]().
				Title("Where should the profile be saved?").
				Options(
					huh.NewOption("This project (./rodoo.toml)", ports.SaveTargetProject),
					huh.NewOption("My user configuration", ports.SaveTargetUser),
				).
				Value(&a.Target),
		),
	)
	if err != nil {
		return nil, err
	}

	return draftFromAnswers(a, p.workDir)
}

func (p *TerminalPrompter) run(ctx context.Context, groups ...*huh.Group) error {
	form := huh.NewForm(groups...).WithAccessible(p.accessible)
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return apperrors.NewConfigurationError("prompt", "aborted by user", nil)
		}
		return fmt.Errorf("prompt failed: %w", err)
	}
	return nil
}

func (p *TerminalPrompter) requireInteractive(action string) error {
	if p.IsInteractive() {
		return nil
	}
	return apperrors.NewConfigurationError("prompt",
		fmt.Sprintf("cannot %s: running in non-interactive mode", action), nil)
}

// createAnswers holds the raw form values.
type createAnswers struct {
	Name          string
	Modules       string
	Version       string
	PythonVersion string
	DB            string
	Paths         string
	ExtraParams   string
	Target        ports.SaveTarget
	Enterprise    bool
	ForceUpdate   bool
}

// draftFromAnswers validates form values and turns them into a draft.
func draftFromAnswers(a createAnswers, workDir string) (*ports.ProfileDraft, error) {
	name := strings.TrimSpace(a.Name)
	if name == "" {
		return nil, apperrors.NewConfigurationError("prompt", "profile name cannot be empty", nil)
	}

	version, err := values.NewProductVersion(a.Version)
	if err != nil {
		return nil, apperrors.NewConfigurationError("prompt", "invalid version", err)
	}
	python, err := values.NewPythonVersion(a.PythonVersion)
	if err != nil {
		return nil, apperrors.NewConfigurationError("prompt", "invalid python version", err)
	}

	o := entities.ProfileOverrides{
		Version:       &version,
		PythonVersion: &python,
		Enterprise:    entities.Ptr(a.Enterprise),
		Modules:       splitList(a.Modules),
	}
	if a.ForceUpdate {
		o.ForceUpdate = entities.Ptr(true)
	}
	if db := strings.TrimSpace(a.DB); db != "" {
		o.DB = &db
	}
	if extra := strings.TrimSpace(a.ExtraParams); extra != "" {
		o.ExtraParams = &extra
	}
	if paths := splitList(a.Paths); len(paths) > 0 {
		for i, path := range paths {
			abs, err := config.ResolvePath(workDir, path)
			if err != nil {
				return nil, apperrors.NewConfigurationError("prompt", fmt.Sprintf("invalid path %q", path), err)
			}
			paths[i] = abs
		}
		o.Paths = paths
	}

	target := a.Target
	if target == "" {
		target = ports.SaveTargetProject
	}

	return &ports.ProfileDraft{Name: name, Target: target, Overrides: o}, nil
}

func splitList(s string) []string {
	out := []string{}
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func notEmpty(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", field)
		}
		return nil
	}
}
