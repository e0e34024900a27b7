package cmd

import (
	"errors"
	"fmt"
	"os/exec"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/youzi20/yz-cli/internal/settings"
	"github.com/youzi20/yz-cli/internal/templaterepo"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, 1, exitCode(errors.New("boom")))
	assert.Equal(t, 1, exitCode(fmt.Errorf("wrapped: %w", templaterepo.ErrFetchFailed)))

	err := exec.Command("sh", "-c", "exit 7").Run()
	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)

	wrapped := fmt.Errorf("%w: npx degit: %w", templaterepo.ErrFetchFailed, err)
	assert.Equal(t, 7, exitCode(wrapped))
}

func TestIsLoadSettings(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"add", true},
		{"get", true},
		{"list", true},
		{"clean", true},
		{"version", false},
		{"help", false},
		{"yz", false},
		{"templates", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, isLoadSettings(&cobra.Command{Use: tt.name}), tt.name)
	}
}

func TestRootCommandTree(t *testing.T) {
	root := newRootCommand()

	for _, path := range [][]string{
		{"add"},
		{"get"},
		{"version"},
		{"templates", "list"},
		{"templates", "clean"},
		{"templates", "add"},
		{"templates", "remove"},
	} {
		found, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], found.Name())
	}

	for _, flag := range []string{
		settings.Flags.Verbose.Name,
		settings.Flags.CliEnvFile.Name,
		settings.Flags.ConfigFile.Name,
		settings.Flags.CacheDir.Name,
		settings.Flags.Repository.Name,
		settings.Flags.Transport.Name,
		settings.Flags.ExecCommand.Name,
	} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}
}
