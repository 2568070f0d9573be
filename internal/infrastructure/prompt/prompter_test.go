package prompt

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
	apperrors "github.com/rodoo-dev/rodoo/internal/application/errors"
	"github.com/rodoo-dev/rodoo/internal/application/ports"
	"github.com/rodoo-dev/rodoo/internal/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminalPrompter_NonInteractiveFlag(t *testing.T) {
	p := NewTerminalPrompter(Options{NonInteractive: true})
	p.isTerminal = func() bool { return true }

	assert.False(t, p.IsInteractive())

	_, err := p.SelectProfile(context.Background(), []string{"a", "b"})
	var cfgErr *apperrors.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Contains(t, cfgErr.Message, "non-interactive")

	_, err = p.CreateProfile(context.Background(), entities.ProfileSpec{})
	assert.True(t, errors.As(err, &cfgErr))
}

func TestTerminalPrompter_NotATerminal(t *testing.T) {
	p := NewTerminalPrompter(Options{})
	p.isTerminal = func() bool { return false }

	assert.False(t, p.IsInteractive())
	_, err := p.Confirm(context.Background(), "save?", true)
	assert.Error(t, err)
}

func TestDraftFromAnswers(t *testing.T) {
	draft, err := draftFromAnswers(createAnswers{
		Name:          " dev ",
		Modules:       "sale, stock,,",
		Version:       "17",
		PythonVersion: "3.11",
		Paths:         "custom_addons, /abs/addons",
		Enterprise:    true,
		Target:        ports.SaveTargetUser,
	}, "/work")
	require.NoError(t, err)

	assert.Equal(t, "dev", draft.Name)
	assert.Equal(t, ports.SaveTargetUser, draft.Target)
	o := draft.Overrides
	assert.Equal(t, "17.0", o.Version.String())
	assert.Equal(t, "3.11", o.PythonVersion.String())
	assert.True(t, *o.Enterprise)
	assert.Equal(t, []string{"sale", "stock"}, o.Modules)
	assert.Equal(t, []string{filepath.Join("/work", "custom_addons"), "/abs/addons"}, o.Paths)
	assert.Nil(t, o.DB)
	assert.Nil(t, o.ForceUpdate)
}

func TestDraftFromAnswers_Defaults(t *testing.T) {
	draft, err := draftFromAnswers(createAnswers{
		Name:          "default",
		Version:       "18.0",
		PythonVersion: "3.12",
		DB:            "scratch",
	}, "/work")
	require.NoError(t, err)

	assert.Equal(t, ports.SaveTargetProject, draft.Target)
	assert.NotNil(t, draft.Overrides.Modules)
	assert.Empty(t, draft.Overrides.Modules)
	assert.Equal(t, "scratch", *draft.Overrides.DB)
	assert.Nil(t, draft.Overrides.Paths)
}

func TestDraftFromAnswers_ExpandsHome(t *testing.T) {
	home, err := homedir.Expand("~/addons")
	require.NoError(t, err)

	draft, err := draftFromAnswers(createAnswers{
		Name:          "dev",
		Version:       "18.0",
		PythonVersion: "3.12",
		Paths:         "~/addons, ./local",
	}, "/work")
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Clean(home), filepath.Join("/work", "local")}, draft.Overrides.Paths)
}

func TestDraftFromAnswers_Invalid(t *testing.T) {
	tests := []createAnswers{
		{Name: "x", Version: "18.0", PythonVersion: "3.12", Paths: "~someone/addons"},
		{Name: "", Version: "18.0", PythonVersion: "3.12"},
		{Name: "x", Version: "master", PythonVersion: "3.12"},
		{Name: "x", Version: "18.0", PythonVersion: "three"},
	}
	for _, a := range tests {
		_, err := draftFromAnswers(a, "/work")
		assert.Error(t, err)
	}
}
