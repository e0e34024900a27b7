package materialize

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/youzi20/yz-cli/internal/templaterepo"
	"github.com/youzi20/yz-cli/internal/testutil"
)

type recordingFetcher struct {
	t     *testing.T
	files map[string]string
	err   error
	calls int
}

func (f *recordingFetcher) Fetch(_ context.Context, _ templaterepo.RemoteRef, destDir string) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	testutil.WriteTree(f.t, destDir, f.files)
	return nil
}

func TestDestination(t *testing.T) {
	m := New(testutil.NewTestLogger())
	root := t.TempDir()

	dest, err := m.Destination(root, "src/components", "Button")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "src", "components", "Button"), dest)
	assert.NoDirExists(t, dest)

	for _, name := range []string{"", ".", "..", "a/b", "/etc"} {
		_, err := m.Destination(root, "src/components", name)
		assert.ErrorIs(t, err, templaterepo.ErrInvalidTemplateName, name)
	}

	for _, destDir := range []string{"../../x", "/tmp/elsewhere", "src/../.."} {
		_, err := m.Destination(root, destDir, "Button")
		require.Error(t, err, destDir)
		assert.Contains(t, err.Error(), "invalid destination", destDir)
	}

	for _, name := range []string{"按钮", "Token Card", "@scope"} {
		dest, err := m.Destination(root, "src/components", name)
		require.NoError(t, err, name)
		assert.Equal(t, filepath.Join(root, "src", "components", name), dest)
	}
}

func TestCopyLocal(t *testing.T) {
	m := New(testutil.NewTestLogger())
	src := filepath.Join(t.TempDir(), "Button")
	testutil.WriteTree(t, src, map[string]string{
		"index.tsx":         "export const Button = () => null",
		"styles/button.css": ".btn {}",
	})
	root := t.TempDir()

	dest, err := m.CopyLocal(src, root, "src/components", "Button")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "src", "components", "Button"), dest)
	assert.Equal(t, testutil.ReadTree(t, src), testutil.ReadTree(t, dest))
}

func TestCopyLocal_SecondCallFails(t *testing.T) {
	m := New(testutil.NewTestLogger())
	src := filepath.Join(t.TempDir(), "Card")
	testutil.WriteTree(t, src, map[string]string{"index.tsx": "v1"})
	root := t.TempDir()

	dest, err := m.CopyLocal(src, root, "src/components", "Card")
	require.NoError(t, err)
	first := testutil.ReadTree(t, dest)

	// the template changes upstream, the copy must not
	testutil.WriteTree(t, src, map[string]string{"index.tsx": "v2", "extra.ts": "new"})

	_, err = m.CopyLocal(src, root, "src/components", "Card")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAlreadyExists)
	assert.Contains(t, err.Error(), dest)
	assert.Equal(t, first, testutil.ReadTree(t, dest))
}

func TestCopyLocal_ExistingFileAtDestination(t *testing.T) {
	m := New(testutil.NewTestLogger())
	src := filepath.Join(t.TempDir(), "Card")
	testutil.WriteTree(t, src, map[string]string{"index.tsx": "card"})
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{"src/components/Card": "a plain file"})

	_, err := m.CopyLocal(src, root, "src/components", "Card")
	assert.ErrorIs(t, err, ErrAlreadyExists)

	data, err := os.ReadFile(filepath.Join(root, "src", "components", "Card"))
	require.NoError(t, err)
	assert.Equal(t, "a plain file", string(data))
}

func TestCopyLocal_MissingSource(t *testing.T) {
	m := New(testutil.NewTestLogger())
	root := t.TempDir()

	_, err := m.CopyLocal(filepath.Join(t.TempDir(), "nope"), root, "src/components", "Nope")
	require.Error(t, err)
	assert.NoDirExists(t, filepath.Join(root, "src", "components", "Nope"))
}

func TestFetchInto(t *testing.T) {
	m := New(testutil.NewTestLogger())
	root := t.TempDir()
	fetcher := &recordingFetcher{t: t, files: map[string]string{"index.ts": "task"}}
	remote := templaterepo.RemoteRef{Owner: "org", Repo: "repo", Subdir: "templates/modules/Task"}

	dest, err := m.FetchInto(context.Background(), fetcher, remote, root, "src/modules", "Task")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "src", "modules", "Task"), dest)
	assert.Equal(t, map[string]string{"index.ts": "task"}, testutil.ReadTree(t, dest))
	assert.Equal(t, 1, fetcher.calls)
}

func TestFetchInto_ExistingDestinationIsUntouched(t *testing.T) {
	m := New(testutil.NewTestLogger())
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{"src/modules/Task/index.ts": "mine"})
	fetcher := &recordingFetcher{t: t, files: map[string]string{"index.ts": "theirs"}}

	_, err := m.FetchInto(context.Background(), fetcher, templaterepo.RemoteRef{Owner: "o", Repo: "r"}, root, "src/modules", "Task")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAlreadyExists)
	assert.Zero(t, fetcher.calls)
	assert.Equal(t, map[string]string{"index.ts": "mine"}, testutil.ReadTree(t, filepath.Join(root, "src", "modules", "Task")))
}

func TestFetchInto_FetchError(t *testing.T) {
	m := New(testutil.NewTestLogger())
	root := t.TempDir()
	fetchErr := errors.Join(templaterepo.ErrFetchFailed, templaterepo.ErrTemplateNotFound)
	fetcher := &recordingFetcher{t: t, err: fetchErr}

	_, err := m.FetchInto(context.Background(), fetcher, templaterepo.RemoteRef{Owner: "o", Repo: "r"}, root, "src/components", "Ghost")
	require.Error(t, err)
	assert.ErrorIs(t, err, templaterepo.ErrTemplateNotFound)
	assert.NoDirExists(t, filepath.Join(root, "src", "components", "Ghost"))
}
