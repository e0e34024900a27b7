// Package cmdtest builds runtime contexts with scripted collaborators for
// command tests.
package cmdtest

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/youzi20/yz-cli/internal/runtime"
	"github.com/youzi20/yz-cli/internal/settings"
	"github.com/youzi20/yz-cli/internal/templateconfig"
	"github.com/youzi20/yz-cli/internal/templaterepo"
	"github.com/youzi20/yz-cli/internal/testutil"
	"github.com/youzi20/yz-cli/internal/ui"
)

// Repository is the template repository every test context points at.
const Repository = "org/repo/templates"

// Fetcher serves Files, keyed by "<sub/dir>/<file>", from memory and
// records every call.
type Fetcher struct {
	T     *testing.T
	Files map[string]string
	Err   error

	mu    sync.Mutex
	calls []templaterepo.RemoteRef
}

func (f *Fetcher) Fetch(_ context.Context, ref templaterepo.RemoteRef, destDir string) error {
	f.mu.Lock()
	f.calls = append(f.calls, ref)
	f.mu.Unlock()

	if f.Err != nil {
		return f.Err
	}

	prefix := ref.Subdir + "/"
	out := map[string]string{}
	for name, body := range f.Files {
		if strings.HasPrefix(name, prefix) {
			out[strings.TrimPrefix(name, prefix)] = body
		}
	}
	if len(out) == 0 {
		return fmt.Errorf("%w: %w: %s", templaterepo.ErrFetchFailed, templaterepo.ErrTemplateNotFound, ref)
	}
	testutil.WriteTree(f.T, destDir, out)
	return nil
}

// Calls returns the refs fetched so far.
func (f *Fetcher) Calls() []templaterepo.RemoteRef {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]templaterepo.RemoteRef(nil), f.calls...)
}

// Prompter answers prompts from queues and records the titles it saw.
type Prompter struct {
	Selections    []string
	Confirmations []bool
	Err           error

	Titles  []string
	Options [][]ui.SelectOption[string]
}

func (p *Prompter) Select(title string, options []ui.SelectOption[string]) (string, error) {
	p.Titles = append(p.Titles, title)
	p.Options = append(p.Options, options)
	if p.Err != nil {
		return "", p.Err
	}
	if len(p.Selections) == 0 {
		return "", fmt.Errorf("unexpected prompt %q", title)
	}
	answer := p.Selections[0]
	p.Selections = p.Selections[1:]
	return answer, nil
}

func (p *Prompter) Confirm(title string, _ ...ui.ConfirmOption) (bool, error) {
	p.Titles = append(p.Titles, title)
	if p.Err != nil {
		return false, p.Err
	}
	if len(p.Confirmations) == 0 {
		return false, fmt.Errorf("unexpected prompt %q", title)
	}
	answer := p.Confirmations[0]
	p.Confirmations = p.Confirmations[1:]
	return answer, nil
}

// Env is a runtime context wired to a temp working directory, cache and
// config file.
type Env struct {
	Context  *runtime.Context
	Fetcher  *Fetcher
	Prompter *Prompter
	WorkDir  string
	CacheDir string
	Stdout   *bytes.Buffer
	Stderr   *bytes.Buffer
}

// DefaultFiles is a small template repository with two ui components and
// one business module.
func DefaultFiles() map[string]string {
	return map[string]string{
		"templates/ui/Button/index.tsx":        "export const Button = () => null\n",
		"templates/ui/Button/Button.css":       ".button {}\n",
		"templates/ui/Card/index.tsx":          "export const Card = () => null\n",
		"templates/modules/Task/index.ts":      "export * from './task'\n",
		"templates/modules/Task/task.ts":       "export const task = {}\n",
		"templates/modules/Task/README.md":     "# Task\n",
		"templates/modules/Billing/index.ts":   "export {}\n",
		"templates/modules/Billing/billing.ts": "export const billing = {}\n",
	}
}

// NewEnv builds the context and moves into a fresh working directory.
// ui output is captured until the test ends.
func NewEnv(t *testing.T, cfg *templateconfig.Config) *Env {
	t.Helper()

	if cfg == nil {
		cfg = &templateconfig.Config{}
	}

	workDir := t.TempDir()
	t.Chdir(workDir)

	var stdout, stderr bytes.Buffer
	ui.SetOutput(&stdout, &stderr)
	t.Cleanup(func() { ui.SetOutput(os.Stdout, os.Stderr) })

	fetcher := &Fetcher{T: t, Files: DefaultFiles()}
	prompter := &Prompter{}
	cacheDir := filepath.Join(t.TempDir(), "templates")

	rc := runtime.NewContext(testutil.NewTestLogger(), viper.New())
	rc.Settings = &settings.Settings{
		Repository:  Repository,
		Transport:   templaterepo.TransportTarball,
		ExecCommand: "npx degit",
		CacheDir:    cacheDir,
		ConfigPath:  filepath.Join(t.TempDir(), "config.yaml"),
		Config:      cfg,
	}
	rc.Fetcher = fetcher
	rc.Prompter = prompter
	require.NoError(t, rc.AttachComponents())

	return &Env{
		Context:  rc,
		Fetcher:  fetcher,
		Prompter: prompter,
		WorkDir:  workDir,
		CacheDir: cacheDir,
		Stdout:   &stdout,
		Stderr:   &stderr,
	}
}
