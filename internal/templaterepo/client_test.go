package templaterepo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/youzi20/yz-cli/internal/testutil"
)

func newMockedTarballFetcher(t *testing.T, opts ...TarballOption) (*TarballFetcher, *httpmock.MockTransport) {
	t.Helper()
	mock := httpmock.NewMockTransport()
	opts = append([]TarballOption{
		WithHTTPClient(&http.Client{Transport: mock}),
		WithRetry(3, time.Millisecond),
	}, opts...)
	return NewTarballFetcher(testutil.NewTestLogger(), opts...), mock
}

func templatesTarball(t *testing.T) []byte {
	return testutil.BuildTarball(t, "org-repo-abc123", map[string]string{
		"README.md":                               "# templates",
		"templates/ui/Button/":                    "",
		"templates/ui/Button/index.tsx":           "export const Button = () => null",
		"templates/ui/Button/node_modules/x.js":   "ignored",
		"templates/ui/Card/index.tsx":             "export const Card = () => null",
		"templates/modules/Task/index.ts":         "export {}",
		"templates/ui-extra/Other/index.tsx":      "not under ui",
		"templates/ui/Button/Button.test.tsx":     "test",
		"templates/ui/Button/.DS_Store":           "junk",
		"templates/ui/Button/styles/button.css":   ".btn {}",
		"templates/modules/Task/.git/config":      "[core]",
		"templates/modules/Task/README.md":        "task",
		"templates/modules/Task/lib/":             "",
		"templates/modules/Task/lib/store.ts":     "export const store = {}",
		"templates/modules/Task/lib/store.dev.ts": "dev",
	})
}

func TestTarballURL(t *testing.T) {
	f := NewTarballFetcher(testutil.NewTestLogger())

	assert.Equal(t, "https://api.github.com/repos/org/repo/tarball",
		f.TarballURL(RemoteRef{Owner: "org", Repo: "repo", Subdir: "templates/ui"}))
	assert.Equal(t, "https://api.github.com/repos/org/repo/tarball/v1.2.0",
		f.TarballURL(RemoteRef{Owner: "org", Repo: "repo", Ref: "v1.2.0"}))

	f = NewTarballFetcher(testutil.NewTestLogger(), WithAPIBaseURL("http://localhost:9999/"))
	assert.Equal(t, "http://localhost:9999/repos/o/r/tarball", f.TarballURL(RemoteRef{Owner: "o", Repo: "r"}))
}

func TestTarballFetcher_ExtractsCategorySubtree(t *testing.T) {
	f, mock := newMockedTarballFetcher(t)
	mock.RegisterResponder(http.MethodGet, "https://api.github.com/repos/org/repo/tarball",
		httpmock.NewBytesResponder(http.StatusOK, templatesTarball(t)))

	dest := filepath.Join(t.TempDir(), "ui")
	err := f.Fetch(context.Background(), RemoteRef{Owner: "org", Repo: "repo", Subdir: "templates/ui"}, dest)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"Button/index.tsx":         "export const Button = () => null",
		"Button/Button.test.tsx":   "test",
		"Button/styles/button.css": ".btn {}",
		"Card/index.tsx":           "export const Card = () => null",
	}, testutil.ReadTree(t, dest))
	assert.Equal(t, 1, mock.GetTotalCallCount())
}

func TestTarballFetcher_AppliesExcludePatterns(t *testing.T) {
	f, mock := newMockedTarballFetcher(t, WithExclude([]string{"*.dev.ts", "README.md"}))
	mock.RegisterResponder(http.MethodGet, "https://api.github.com/repos/org/repo/tarball",
		httpmock.NewBytesResponder(http.StatusOK, templatesTarball(t)))

	dest := filepath.Join(t.TempDir(), "Task")
	err := f.Fetch(context.Background(), RemoteRef{Owner: "org", Repo: "repo", Subdir: "templates/modules/Task"}, dest)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"index.ts":     "export {}",
		"lib/store.ts": "export const store = {}",
	}, testutil.ReadTree(t, dest))
}

func TestTarballFetcher_MissingSubtree(t *testing.T) {
	f, mock := newMockedTarballFetcher(t)
	mock.RegisterResponder(http.MethodGet, "https://api.github.com/repos/org/repo/tarball",
		httpmock.NewBytesResponder(http.StatusOK, templatesTarball(t)))

	dest := filepath.Join(t.TempDir(), "Nope")
	err := f.Fetch(context.Background(), RemoteRef{Owner: "org", Repo: "repo", Subdir: "templates/ui/Nope"}, dest)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.ErrorIs(t, err, ErrTemplateNotFound)
	assert.NoDirExists(t, dest)
}

func TestTarballFetcher_SubtreeRootMustBeDirectory(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
	}{
		{
			name:  "root is a regular file",
			files: map[string]string{"templates/ui/Button": "not a directory"},
		},
		{
			name: "root file beside sibling with shared prefix",
			files: map[string]string{
				"templates/ui/Button":            "not a directory",
				"templates/ui/ButtonGroup/a.tsx": "x",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, mock := newMockedTarballFetcher(t)
			mock.RegisterResponder(http.MethodGet, "https://api.github.com/repos/org/repo/tarball",
				httpmock.NewBytesResponder(http.StatusOK, testutil.BuildTarball(t, "org-repo-abc", tt.files)))

			dest := filepath.Join(t.TempDir(), "Button")
			err := f.Fetch(context.Background(), RemoteRef{Owner: "org", Repo: "repo", Subdir: "templates/ui/Button"}, dest)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrTemplateNotFound)
			assert.NoFileExists(t, dest)
			assert.NoDirExists(t, dest)
		})
	}
}

func TestTarballFetcher_HTTPErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		notFound bool
		calls    int
	}{
		{"not found", http.StatusNotFound, true, 1},
		{"server error", http.StatusInternalServerError, false, 3},
		{"rate limited", http.StatusTooManyRequests, false, 3},
		{"forbidden", http.StatusForbidden, false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, mock := newMockedTarballFetcher(t)
			mock.RegisterResponder(http.MethodGet, "https://api.github.com/repos/org/repo/tarball",
				httpmock.NewStringResponder(tt.status, "{}"))

			dest := filepath.Join(t.TempDir(), "out")
			err := f.Fetch(context.Background(), RemoteRef{Owner: "org", Repo: "repo", Subdir: "templates"}, dest)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrFetchFailed)
			assert.Equal(t, tt.notFound, errors.Is(err, ErrTemplateNotFound))
			assert.Equal(t, tt.calls, mock.GetTotalCallCount())
			assert.NoDirExists(t, dest)
		})
	}
}

func TestTarballFetcher_TransportError(t *testing.T) {
	f, mock := newMockedTarballFetcher(t)
	mock.RegisterResponder(http.MethodGet, "https://api.github.com/repos/org/repo/tarball",
		httpmock.NewErrorResponder(errors.New("connection reset")))

	err := f.Fetch(context.Background(), RemoteRef{Owner: "org", Repo: "repo"}, filepath.Join(t.TempDir(), "out"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, 3, mock.GetTotalCallCount())
}

func TestTarballFetcher_RetriesTransientFailure(t *testing.T) {
	f, mock := newMockedTarballFetcher(t)
	mock.RegisterResponder(http.MethodGet, "https://api.github.com/repos/org/repo/tarball",
		httpmock.ResponderFromMultipleResponses([]*http.Response{
			httpmock.NewStringResponse(http.StatusBadGateway, "bad gateway"),
			httpmock.NewBytesResponse(http.StatusOK, templatesTarball(t)),
		}))

	dest := filepath.Join(t.TempDir(), "ui")
	err := f.Fetch(context.Background(), RemoteRef{Owner: "org", Repo: "repo", Subdir: "templates/ui"}, dest)
	require.NoError(t, err)
	assert.Equal(t, 2, mock.GetTotalCallCount())
	assert.FileExists(t, filepath.Join(dest, "Card", "index.tsx"))
}

func TestTarballFetcher_SendsHeaders(t *testing.T) {
	tarball := templatesTarball(t)
	var gotAuth, gotUA, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotUA = r.Header.Get("User-Agent")
		gotPath = r.URL.Path
		_, _ = w.Write(tarball)
	}))
	defer server.Close()

	f := NewTarballFetcher(testutil.NewTestLogger(),
		WithHTTPClient(server.Client()),
		WithAPIBaseURL(server.URL),
		WithToken("secret-token"),
	)

	dest := filepath.Join(t.TempDir(), "Card")
	ref := RemoteRef{Owner: "org", Repo: "repo", Subdir: "templates/ui/Card", Ref: "main"}
	require.NoError(t, f.Fetch(context.Background(), ref, dest))

	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "yz-cli", gotUA)
	assert.Equal(t, "/repos/org/repo/tarball/main", gotPath)
	assert.FileExists(t, filepath.Join(dest, "index.tsx"))
}

func TestTarballFetcher_RejectsPathTraversal(t *testing.T) {
	f, mock := newMockedTarballFetcher(t)
	mock.RegisterResponder(http.MethodGet, "https://api.github.com/repos/org/repo/tarball",
		httpmock.NewBytesResponder(http.StatusOK, testutil.BuildTarball(t, "org-repo-abc", map[string]string{
			"templates/../../evil.txt": "pwned",
		})))

	root := t.TempDir()
	dest := filepath.Join(root, "out")
	err := f.Fetch(context.Background(), RemoteRef{Owner: "org", Repo: "repo"}, dest)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchFailed)

	_, statErr := os.Stat(filepath.Join(root, "evil.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestTarballFetcher_CanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not reach the server")
	}))
	defer server.Close()

	f := NewTarballFetcher(testutil.NewTestLogger(), WithHTTPClient(server.Client()), WithAPIBaseURL(server.URL))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := f.Fetch(ctx, RemoteRef{Owner: "org", Repo: "repo", Subdir: "templates/ui"}, filepath.Join(t.TempDir(), "ui"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.ErrorIs(t, err, context.Canceled)
}
