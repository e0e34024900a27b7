package version_test

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/youzi20/yz-cli/cmd/version"
	"github.com/youzi20/yz-cli/internal/runtime"
	"github.com/youzi20/yz-cli/internal/testutil"
	"github.com/youzi20/yz-cli/internal/ui"
	"github.com/youzi20/yz-cli/internal/update"
)

func setVersion(t *testing.T, v string) {
	t.Helper()
	prev := version.Version
	version.Version = v
	t.Cleanup(func() { version.Version = prev })
}

func TestVersionCommand(t *testing.T) {
	tests := []struct {
		name     string
		version  string
		expected string
	}{
		{
			name:     "Default development build",
			version:  "development",
			expected: "yz development",
		},
		{
			name:     "Release version",
			version:  "version v1.0.3-beta0",
			expected: "yz version v1.0.3-beta0",
		},
		{
			name:     "Local build hash",
			version:  "build c8ab91c87c7135aa7c57669bb454e6a3287139d7",
			expected: "yz build c8ab91c87c7135aa7c57669bb454e6a3287139d7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setVersion(t, tt.version)

			cmd := version.New(runtime.NewContext(testutil.NewTestLogger(), viper.New()))
			var buf bytes.Buffer
			cmd.SetOut(&buf)
			cmd.SetArgs([]string{})

			require.NoError(t, cmd.Execute())
			assert.Contains(t, buf.String(), tt.expected, "Output does not match for %s", tt.name)
		})
	}
}

func TestVersionCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"tag_name": "v1.4.0"}`)
	}))
	defer server.Close()

	tests := []struct {
		name    string
		version string
		stdout  string
		stderr  string
	}{
		{"outdated", "v1.2.0", "", "Update available! You're running 1.2.0, but 1.4.0 is the latest."},
		{"current", "v1.4.0", "yz 1.4.0 is up to date", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setVersion(t, tt.version)
			t.Setenv("YZ_FORCE_UPDATE_CHECK", "")

			var stdout, stderr bytes.Buffer
			ui.SetOutput(&stdout, &stderr)
			t.Cleanup(func() { ui.SetOutput(os.Stdout, os.Stderr) })

			cmd := version.New(runtime.NewContext(testutil.NewTestLogger(), viper.New()),
				update.WithHTTPClient(server.Client()),
				update.WithAPIURL(server.URL),
				update.WithCachePath(filepath.Join(t.TempDir(), "update.json")),
			)
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetArgs([]string{"--check"})

			require.NoError(t, cmd.Execute())
			assert.Contains(t, stdout.String(), tt.stdout)
			assert.Contains(t, stderr.String(), tt.stderr)
		})
	}
}

func TestVersionCheckDevelopmentBuild(t *testing.T) {
	setVersion(t, "development")
	t.Setenv("YZ_FORCE_UPDATE_CHECK", "")

	cmd := version.New(runtime.NewContext(testutil.NewTestLogger(), viper.New()),
		update.WithCachePath(filepath.Join(t.TempDir(), "update.json")),
	)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--check"})

	err := cmd.Execute()
	assert.ErrorContains(t, err, "update check failed")
}
