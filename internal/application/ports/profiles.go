package ports

import (
	"context"

	"github.com/rodoo-dev/rodoo/internal/domain/entities"
)

// SaveTarget selects where a newly created profile is written.
type SaveTarget string

const (
	// SaveTargetProject writes rodoo.toml in the working directory.
	SaveTargetProject SaveTarget = "project"
	// SaveTargetUser writes rodoo.toml in the user configuration directory.
	SaveTargetUser SaveTarget = "user"
)

// ProfileRepository reads and writes profile configuration files.
type ProfileRepository interface {
	// Load returns every visible profile. No file at all yields an empty set.
	Load(ctx context.Context) (*entities.ProfileSet, error)

	// Save writes one profile into the file at path, keeping the others.
	Save(ctx context.Context, path string, entry entities.ProfileEntry) error

	// TargetPath resolves a save target to a file path.
	TargetPath(target SaveTarget) (string, error)
}

// ProfileDraft is the outcome of the interactive create-profile flow.
type ProfileDraft struct {
	Name      string
	Target    SaveTarget
	Overrides entities.ProfileOverrides
}

// Prompter asks the user questions. Implementations must not be called when
// IsInteractive reports false.
type Prompter interface {
	IsInteractive() bool

	// SelectProfile asks the user to pick one of names.
	SelectProfile(ctx context.Context, names []string) (string, error)

	// CreateProfile runs the create-profile form, seeded with defaults.
	CreateProfile(ctx context.Context, defaults entities.ProfileSpec) (*ProfileDraft, error)

	// Confirm asks a yes/no question.
	Confirm(ctx context.Context, question string, def bool) (bool, error)
}
