package add

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/youzi20/yz-cli/internal/materialize"
	"github.com/youzi20/yz-cli/internal/templateconfig"
	"github.com/youzi20/yz-cli/internal/templaterepo"
	"github.com/youzi20/yz-cli/internal/testutil"
	"github.com/youzi20/yz-cli/internal/testutil/cmdtest"
	"github.com/youzi20/yz-cli/internal/ui"
)

func TestAddCopiesSelectedTemplate(t *testing.T) {
	env := cmdtest.NewEnv(t, nil)
	env.Prompter.Selections = []string{"ui", "Button"}

	h := newHandler(env.Context)
	require.NoError(t, h.Execute(context.Background(), Inputs{}))

	dest := filepath.Join(env.WorkDir, "src", "components", "Button")
	assert.Equal(t, map[string]string{
		"index.tsx":  "export const Button = () => null\n",
		"Button.css": ".button {}\n",
	}, testutil.ReadTree(t, dest))

	assert.Equal(t, []string{"What do you want to add?", "Pick a UI component"}, env.Prompter.Titles)
	assert.Equal(t, []ui.SelectOption[string]{
		{Label: "UI component (ui)", Value: "ui"},
		{Label: "Business module (module)", Value: "module"},
	}, env.Prompter.Options[0])
	assert.Equal(t, []ui.SelectOption[string]{
		{Label: "Button", Value: "Button"},
		{Label: "Card", Value: "Card"},
	}, env.Prompter.Options[1])

	assert.Contains(t, env.Stdout.String(), "✓ Added UI component: Button to ")
	assert.Contains(t, env.Stdout.String(), filepath.Join("src", "components", "Button"))
}

func TestAddServesSecondRunFromCache(t *testing.T) {
	env := cmdtest.NewEnv(t, nil)
	env.Prompter.Selections = []string{"module", "Task", "module", "Billing"}

	h := newHandler(env.Context)
	require.NoError(t, h.Execute(context.Background(), Inputs{}))
	require.NoError(t, h.Execute(context.Background(), Inputs{}))

	assert.Len(t, env.Fetcher.Calls(), 1)
	assert.DirExists(t, filepath.Join(env.WorkDir, "src", "modules", "Task"))
	assert.DirExists(t, filepath.Join(env.WorkDir, "src", "modules", "Billing"))
}

func TestAddRefreshFetchesAgain(t *testing.T) {
	env := cmdtest.NewEnv(t, nil)
	env.Prompter.Selections = []string{"ui", "Card", "ui", "Button"}

	h := newHandler(env.Context)
	require.NoError(t, h.Execute(context.Background(), Inputs{}))
	require.NoError(t, h.Execute(context.Background(), Inputs{Refresh: true}))

	assert.Len(t, env.Fetcher.Calls(), 2)
}

func TestAddExistingDestination(t *testing.T) {
	env := cmdtest.NewEnv(t, nil)
	existing := filepath.Join(env.WorkDir, "src", "modules", "Task")
	testutil.WriteTree(t, existing, map[string]string{"mine.ts": "keep me\n"})
	env.Prompter.Selections = []string{"module", "Task"}

	h := newHandler(env.Context)
	err := h.Execute(context.Background(), Inputs{})
	require.ErrorIs(t, err, materialize.ErrAlreadyExists)
	assert.Contains(t, err.Error(), existing)
	assert.Equal(t, map[string]string{"mine.ts": "keep me\n"}, testutil.ReadTree(t, existing))
}

func TestAddNoTemplates(t *testing.T) {
	env := cmdtest.NewEnv(t, nil)
	env.Fetcher.Files = map[string]string{"templates/ui/README.md": "no templates yet\n"}
	env.Prompter.Selections = []string{"ui"}

	h := newHandler(env.Context)
	err := h.Execute(context.Background(), Inputs{})
	require.ErrorIs(t, err, templaterepo.ErrNoTemplatesAvailable)
	assert.NoDirExists(t, filepath.Join(env.WorkDir, "src"))
}

func TestAddFetchFailure(t *testing.T) {
	env := cmdtest.NewEnv(t, nil)
	env.Fetcher.Err = templaterepo.ErrFetchFailed
	env.Prompter.Selections = []string{"ui"}

	h := newHandler(env.Context)
	err := h.Execute(context.Background(), Inputs{})
	require.ErrorIs(t, err, templaterepo.ErrFetchFailed)
}

func TestAddPromptAborted(t *testing.T) {
	env := cmdtest.NewEnv(t, nil)
	env.Prompter.Err = ui.ErrPromptAborted

	h := newHandler(env.Context)
	err := h.Execute(context.Background(), Inputs{})
	require.True(t, errors.Is(err, ui.ErrPromptAborted))
	assert.Empty(t, env.Fetcher.Calls())

	_, statErr := os.Stat(filepath.Join(env.WorkDir, "src"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestAddConfiguredCategory(t *testing.T) {
	cfg := &templateconfig.Config{
		Categories: []templateconfig.CategoryConfig{
			{Key: "hook", Label: "React hook", Remote: "org/repo/templates/hooks", Destination: "src/hooks"},
		},
	}
	env := cmdtest.NewEnv(t, cfg)
	env.Fetcher.Files["templates/hooks/useToggle/index.ts"] = "export const useToggle = () => {}\n"
	env.Prompter.Selections = []string{"hook", "useToggle"}

	h := newHandler(env.Context)
	require.NoError(t, h.Execute(context.Background(), Inputs{}))

	assert.FileExists(t, filepath.Join(env.WorkDir, "src", "hooks", "useToggle", "index.ts"))
	assert.Len(t, env.Prompter.Options[0], 3)
}
