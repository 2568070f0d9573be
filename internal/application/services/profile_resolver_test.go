package services

import (
	"context"
	"errors"
	"testing"

	"github.com/rodoo-dev/rodoo/internal/application/dto"
	apperrors "github.com/rodoo-dev/rodoo/internal/application/errors"
	"github.com/rodoo-dev/rodoo/internal/application/ports"
	"github.com/rodoo-dev/rodoo/internal/domain/entities"
	"github.com/rodoo-dev/rodoo/internal/domain/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver(repo *MockProfileRepository, prompter *MockPrompter) *ProfileResolver {
	return NewProfileResolver(repo, prompter, services.NewProfileMerger(), testDefaults(), nil)
}

func requireConfigError(t *testing.T, err error) *apperrors.ConfigurationError {
	t.Helper()
	var cfgErr *apperrors.ConfigurationError
	require.True(t, errors.As(err, &cfgErr), "expected ConfigurationError, got %v", err)
	return cfgErr
}

func TestProfileResolver_SingleProfileAutoSelected(t *testing.T) {
	t.Parallel()

	repo := &MockProfileRepository{Set: profileSet(entities.ProfileEntry{
		Name:      "default",
		Source:    "/p/rodoo.toml",
		Overrides: entities.ProfileOverrides{Modules: []string{"sale"}},
	})}
	prompter := &MockPrompter{}

	resolved, err := newTestResolver(repo, prompter).Resolve(context.Background(), dto.ResolveProfileRequest{})
	require.NoError(t, err)

	assert.Equal(t, "default", resolved.Spec.Name)
	assert.Equal(t, []string{"sale"}, resolved.Spec.Modules)
	assert.Equal(t, "/p/rodoo.toml", resolved.Source)
	assert.Empty(t, prompter.Selections)
}

func TestProfileResolver_CLIBeatsFile(t *testing.T) {
	t.Parallel()

	repo := &MockProfileRepository{Set: profileSet(entities.ProfileEntry{
		Name:      "dev",
		Source:    "/p/rodoo.toml",
		Overrides: entities.ProfileOverrides{Version: versionPtr("17.0"), Enterprise: entities.Ptr(true)},
	})}

	resolved, err := newTestResolver(repo, &MockPrompter{}).Resolve(context.Background(), dto.ResolveProfileRequest{
		ProfileName: "dev",
		Overrides:   entities.ProfileOverrides{Version: versionPtr("18.0")},
	})
	require.NoError(t, err)

	assert.Equal(t, "18.0", resolved.Spec.Version.String())
	assert.True(t, resolved.Spec.Enterprise)
	assert.Equal(t, entities.SourceCLI, resolved.Provenance.Of("version"))
	assert.Equal(t, entities.SourceFile, resolved.Provenance.Of("enterprise"))
	assert.Equal(t, entities.SourceDefault, resolved.Provenance.Of("python_version"))
	assert.Empty(t, repo.Saved, "non-interactive runs never save implicitly")
}

func TestProfileResolver_ProfileNotFound(t *testing.T) {
	t.Parallel()

	repo := &MockProfileRepository{Set: profileSet(entities.ProfileEntry{Name: "a"}, entities.ProfileEntry{Name: "b"})}

	_, err := newTestResolver(repo, &MockPrompter{}).Resolve(context.Background(), dto.ResolveProfileRequest{ProfileName: "c"})

	cfgErr := requireConfigError(t, err)
	assert.Contains(t, cfgErr.Message, `"c" not found`)
	assert.Contains(t, cfgErr.Hint, "a, b")
}

func TestProfileResolver_MultipleProfiles(t *testing.T) {
	t.Parallel()

	set := profileSet(entities.ProfileEntry{Name: "b"}, entities.ProfileEntry{Name: "a"})

	t.Run("non-interactive", func(t *testing.T) {
		t.Parallel()
		_, err := newTestResolver(&MockProfileRepository{Set: set}, &MockPrompter{}).
			Resolve(context.Background(), dto.ResolveProfileRequest{})

		cfgErr := requireConfigError(t, err)
		assert.Equal(t, "choose one with --profile", cfgErr.Hint)
	})

	t.Run("interactive", func(t *testing.T) {
		t.Parallel()
		prompter := &MockPrompter{Interactive: true, Choice: "b"}
		resolved, err := newTestResolver(&MockProfileRepository{Set: set}, prompter).
			Resolve(context.Background(), dto.ResolveProfileRequest{})

		require.NoError(t, err)
		assert.Equal(t, "b", resolved.Spec.Name)
		assert.Equal(t, [][]string{{"a", "b"}}, prompter.Selections)
	})
}

func TestProfileResolver_NoFile(t *testing.T) {
	t.Parallel()

	t.Run("flags only", func(t *testing.T) {
		t.Parallel()
		repo := &MockProfileRepository{}
		resolved, err := newTestResolver(repo, &MockPrompter{}).Resolve(context.Background(), dto.ResolveProfileRequest{
			Overrides: entities.ProfileOverrides{Modules: []string{"crm"}},
		})

		require.NoError(t, err)
		assert.Equal(t, DefaultProfileName, resolved.Spec.Name)
		assert.Equal(t, []string{"crm"}, resolved.Spec.Modules)
		assert.Empty(t, resolved.Source)
		assert.Empty(t, repo.Saved)
	})

	t.Run("flags with save", func(t *testing.T) {
		t.Parallel()
		repo := &MockProfileRepository{Targets: map[ports.SaveTarget]string{ports.SaveTargetProject: "/proj/rodoo.toml"}}
		resolved, err := newTestResolver(repo, &MockPrompter{}).Resolve(context.Background(), dto.ResolveProfileRequest{
			Overrides: entities.ProfileOverrides{Modules: []string{"crm"}},
			Save:      true,
		})

		require.NoError(t, err)
		require.Len(t, repo.Saved, 1)
		assert.Equal(t, "/proj/rodoo.toml", repo.Saved[0].Path)
		assert.Equal(t, DefaultProfileName, repo.Saved[0].Entry.Name)
		assert.Equal(t, "/proj/rodoo.toml", resolved.SavedTo)
	})

	t.Run("non-interactive without values", func(t *testing.T) {
		t.Parallel()
		_, err := newTestResolver(&MockProfileRepository{}, &MockPrompter{}).
			Resolve(context.Background(), dto.ResolveProfileRequest{})

		cfgErr := requireConfigError(t, err)
		assert.Contains(t, cfgErr.Hint, "rodoo create-profile")
	})

	t.Run("interactive creates a profile", func(t *testing.T) {
		t.Parallel()
		repo := &MockProfileRepository{Targets: map[ports.SaveTarget]string{ports.SaveTargetUser: "/home/u/.config/rodoo/rodoo.toml"}}
		prompter := &MockPrompter{Interactive: true, Draft: &ports.ProfileDraft{
			Name:      "fresh",
			Target:    ports.SaveTargetUser,
			Overrides: entities.ProfileOverrides{Version: versionPtr("16.0")},
		}}

		resolved, err := newTestResolver(repo, prompter).Resolve(context.Background(), dto.ResolveProfileRequest{})
		require.NoError(t, err)

		assert.Equal(t, 1, prompter.Creates)
		assert.Equal(t, "fresh", resolved.Spec.Name)
		assert.Equal(t, "16.0", resolved.Spec.Version.String())
		assert.Equal(t, "/home/u/.config/rodoo/rodoo.toml", resolved.Source)
		require.Len(t, repo.Saved, 1)
	})
}

func TestProfileResolver_SaveOverrides(t *testing.T) {
	t.Parallel()

	entry := entities.ProfileEntry{
		Name:      "dev",
		Source:    "/p/rodoo.toml",
		Overrides: entities.ProfileOverrides{Modules: []string{"sale"}, Version: versionPtr("17.0")},
	}
	cli := entities.ProfileOverrides{Modules: []string{"stock"}}

	t.Run("explicit save", func(t *testing.T) {
		t.Parallel()
		repo := &MockProfileRepository{Set: profileSet(entry)}
		resolved, err := newTestResolver(repo, &MockPrompter{}).Resolve(context.Background(), dto.ResolveProfileRequest{
			Overrides: cli,
			Save:      true,
		})

		require.NoError(t, err)
		require.Len(t, repo.Saved, 1)
		saved := repo.Saved[0]
		assert.Equal(t, "/p/rodoo.toml", saved.Path)
		assert.Equal(t, []string{"stock"}, saved.Entry.Overrides.Modules)
		assert.Equal(t, "17.0", saved.Entry.Overrides.Version.String())
		assert.Equal(t, "/p/rodoo.toml", resolved.SavedTo)
	})

	t.Run("interactive declined", func(t *testing.T) {
		t.Parallel()
		repo := &MockProfileRepository{Set: profileSet(entry)}
		prompter := &MockPrompter{Interactive: true}
		_, err := newTestResolver(repo, prompter).Resolve(context.Background(), dto.ResolveProfileRequest{Overrides: cli})

		require.NoError(t, err)
		assert.Equal(t, 1, prompter.Confirms)
		assert.Empty(t, repo.Saved)
	})

	t.Run("unchanged values are not offered", func(t *testing.T) {
		t.Parallel()
		repo := &MockProfileRepository{Set: profileSet(entry)}
		prompter := &MockPrompter{Interactive: true}
		_, err := newTestResolver(repo, prompter).Resolve(context.Background(), dto.ResolveProfileRequest{
			Overrides: entities.ProfileOverrides{Version: versionPtr("17.0")},
		})

		require.NoError(t, err)
		assert.Zero(t, prompter.Confirms)
	})
}

func TestProfileResolver_CreateProfileRequiresTerminal(t *testing.T) {
	t.Parallel()

	_, err := newTestResolver(&MockProfileRepository{}, &MockPrompter{}).CreateProfile(context.Background())
	requireConfigError(t, err)
}
