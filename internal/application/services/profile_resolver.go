// Package services contains application use cases.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/rodoo-dev/rodoo/internal/application/dto"
	apperrors "github.com/rodoo-dev/rodoo/internal/application/errors"
	"github.com/rodoo-dev/rodoo/internal/application/ports"
	"github.com/rodoo-dev/rodoo/internal/domain/entities"
	"github.com/rodoo-dev/rodoo/internal/domain/services"
)

// DefaultProfileName names profiles created without an explicit name.
const DefaultProfileName = "default"

const createProfileHint = "run 'rodoo create-profile' or pass --version/--module to start without a profile"

// ProfileResolver turns command-line input and profile files into one
// resolved ProfileSpec.
type ProfileResolver struct {
	repo     ports.ProfileRepository
	prompter ports.Prompter
	merger   *services.ProfileMerger
	logger   *slog.Logger
	defaults entities.ProfileSpec
}

// NewProfileResolver creates a new profile resolver. defaults is the
// lowest-precedence layer of every merge.
func NewProfileResolver(
	repo ports.ProfileRepository,
	prompter ports.Prompter,
	merger *services.ProfileMerger,
	defaults entities.ProfileSpec,
	logger *slog.Logger,
) *ProfileResolver {
	if logger == nil {
		logger = slog.Default()
	}

	return &ProfileResolver{
		repo:     repo,
		prompter: prompter,
		merger:   merger,
		defaults: defaults,
		logger:   logger,
	}
}

// Defaults returns the built-in defaults layer.
func (r *ProfileResolver) Defaults() entities.ProfileSpec {
	return r.defaults
}

// Resolve selects a profile and merges CLI > file > defaults.
func (r *ProfileResolver) Resolve(ctx context.Context, req dto.ResolveProfileRequest) (*dto.ResolvedProfile, error) {
	set, err := r.repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	entry, found, err := r.selectEntry(ctx, set, req.ProfileName)
	if err != nil {
		return nil, err
	}

	var savedTo string
	switch {
	case found:
		savedTo, err = r.maybeSave(ctx, entry, req)
		if err != nil {
			return nil, err
		}

	case !req.Overrides.IsEmpty():
		r.logger.Debug("no profile file, running from command-line values")
		entry = entities.ProfileEntry{Name: DefaultProfileName}
		if req.Save {
			entry.Overrides = req.Overrides
			if savedTo, err = r.save(ctx, "", ports.SaveTargetProject, entry); err != nil {
				return nil, err
			}
			entry.Source = savedTo
		}

	case r.prompter.IsInteractive():
		r.logger.Debug("no profile file, starting the create-profile flow")
		entry, err = r.CreateProfile(ctx)
		if err != nil {
			return nil, err
		}
		savedTo = entry.Source

	default:
		return nil, apperrors.NewConfigurationError("profile",
			"no profile file found and no profile values given", nil).
			WithHint(createProfileHint)
	}

	spec, prov := r.merger.Merge(r.defaults,
		services.ProfileLayer{Source: entities.SourceFile, Overrides: entry.Overrides},
		services.ProfileLayer{Source: entities.SourceCLI, Overrides: req.Overrides},
	)
	spec.Name = entry.Name

	r.logger.Debug("profile resolved",
		"name", spec.Name,
		"file", entry.Source,
		"version", spec.Version.String(),
		"python", spec.PythonVersion.String(),
		"enterprise", spec.Enterprise)

	return &dto.ResolvedProfile{
		Spec:       spec,
		Provenance: prov,
		Source:     entry.Source,
		SavedTo:    savedTo,
	}, nil
}

// CreateProfile runs the interactive create-profile flow and saves the result.
func (r *ProfileResolver) CreateProfile(ctx context.Context) (entities.ProfileEntry, error) {
	if !r.prompter.IsInteractive() {
		return entities.ProfileEntry{}, apperrors.NewConfigurationError("profile",
			"creating a profile requires an interactive terminal", nil).
			WithHint("write a [profile.<name>] section in rodoo.toml instead")
	}

	draft, err := r.prompter.CreateProfile(ctx, r.defaults)
	if err != nil {
		return entities.ProfileEntry{}, err
	}

	entry := entities.ProfileEntry{Name: draft.Name, Overrides: draft.Overrides}
	path, err := r.save(ctx, "", draft.Target, entry)
	if err != nil {
		return entities.ProfileEntry{}, err
	}
	entry.Source = path
	return entry, nil
}

func (r *ProfileResolver) selectEntry(ctx context.Context, set *entities.ProfileSet, name string) (entities.ProfileEntry, bool, error) {
	if name != "" {
		entry, ok := set.Find(name)
		if !ok {
			err := apperrors.NewConfigurationError("profile", fmt.Sprintf("profile %q not found", name), nil)
			if set.Len() > 0 {
				return entry, false, err.WithHint("available profiles: " + strings.Join(set.Names(), ", "))
			}
			return entry, false, err.WithHint(createProfileHint)
		}
		return entry, true, nil
	}

	switch set.Len() {
	case 0:
		return entities.ProfileEntry{}, false, nil
	case 1:
		entry, _ := set.Only()
		r.logger.Debug("auto-selected the only profile", "name", entry.Name)
		return entry, true, nil
	}

	names := set.Names()
	if !r.prompter.IsInteractive() {
		return entities.ProfileEntry{}, false, apperrors.NewConfigurationError("profile",
			fmt.Sprintf("%d profiles found (%s) and none selected", len(names), strings.Join(names, ", ")), nil).
			WithHint("choose one with --profile")
	}

	choice, err := r.prompter.SelectProfile(ctx, names)
	if err != nil {
		return entities.ProfileEntry{}, false, err
	}
	entry, ok := set.Find(choice)
	if !ok {
		return entities.ProfileEntry{}, false, apperrors.NewConfigurationError("profile",
			fmt.Sprintf("profile %q not found", choice), nil)
	}
	return entry, true, nil
}

// maybeSave persists CLI overrides into the profile's file when asked to,
// or when the user confirms interactively.
func (r *ProfileResolver) maybeSave(ctx context.Context, entry entities.ProfileEntry, req dto.ResolveProfileRequest) (string, error) {
	if req.Overrides.IsEmpty() {
		return "", nil
	}

	updated := entry.Overrides.Overlay(req.Overrides)
	if reflect.DeepEqual(updated, entry.Overrides) {
		return "", nil
	}

	if !req.Save {
		if !r.prompter.IsInteractive() {
			return "", nil
		}
		ok, err := r.prompter.Confirm(ctx,
			fmt.Sprintf("Save these settings to profile %q?", entry.Name), false)
		if err != nil || !ok {
			return "", err
		}
	}

	return r.save(ctx, entry.Source, ports.SaveTargetProject, entities.ProfileEntry{
		Name:      entry.Name,
		Source:    entry.Source,
		Overrides: updated,
	})
}

func (r *ProfileResolver) save(ctx context.Context, path string, target ports.SaveTarget, entry entities.ProfileEntry) (string, error) {
	if path == "" {
		var err error
		if path, err = r.repo.TargetPath(target); err != nil {
			return "", err
		}
	}

	if err := r.repo.Save(ctx, path, entry); err != nil {
		return "", fmt.Errorf("failed to save profile %q: %w", entry.Name, err)
	}
	r.logger.Info("profile saved", "name", entry.Name, "file", path)
	return path, nil
}
