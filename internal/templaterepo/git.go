package templaterepo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/rs/zerolog"

	"github.com/youzi20/yz-cli/internal/fsutil"
)

const defaultGitBaseURL = "https://github.com"

var _ Fetcher = (*GitFetcher)(nil)

// GitFetcher clones the repository into memory and copies the requested
// subtree out of the in-memory worktree.
type GitFetcher struct {
	logger  *zerolog.Logger
	baseURL string
	token   string
	depth   int
	exclude []string
}

// GitOption configures a GitFetcher.
type GitOption func(*GitFetcher)

// WithGitBaseURL sets the host the repository URL is built from.
func WithGitBaseURL(u string) GitOption {
	return func(f *GitFetcher) {
		f.baseURL = strings.TrimSuffix(u, "/")
	}
}

// WithGitToken enables HTTP basic auth with a GitHub token.
func WithGitToken(token string) GitOption {
	return func(f *GitFetcher) {
		f.token = token
	}
}

// WithGitDepth sets the clone depth. Zero clones full history.
func WithGitDepth(depth int) GitOption {
	return func(f *GitFetcher) {
		if depth >= 0 {
			f.depth = depth
		}
	}
}

// WithGitExclude adds ignore patterns applied while copying.
func WithGitExclude(patterns []string) GitOption {
	return func(f *GitFetcher) {
		f.exclude = patterns
	}
}

// NewGitFetcher creates a git transport fetcher with a shallow clone depth of 1.
func NewGitFetcher(logger *zerolog.Logger, opts ...GitOption) *GitFetcher {
	f := &GitFetcher{
		logger:  logger,
		baseURL: defaultGitBaseURL,
		depth:   1,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// RepoURL returns the clone URL for ref.
func (f *GitFetcher) RepoURL(ref RemoteRef) string {
	return fmt.Sprintf("%s/%s/%s", f.baseURL, ref.Owner, ref.Repo)
}

// Fetch clones ref's repository and copies ref.Subdir into destDir.
func (f *GitFetcher) Fetch(ctx context.Context, ref RemoteRef, destDir string) error {
	worktree, err := f.clone(ctx, ref)
	if err != nil {
		if errors.Is(err, transport.ErrRepositoryNotFound) {
			return fmt.Errorf("%w: %w: repository %s", ErrFetchFailed, ErrTemplateNotFound, ref.Repository())
		}
		return fmt.Errorf("%w: clone %s: %w", ErrFetchFailed, ref.Repository(), err)
	}

	root := "/" + strings.Trim(ref.Subdir, "/")
	info, err := worktree.Stat(root)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("%w: %w: %s", ErrFetchFailed, ErrTemplateNotFound, ref)
	case err != nil:
		return fmt.Errorf("%w: %w", ErrFetchFailed, err)
	case !info.IsDir():
		return fmt.Errorf("%w: %w: %s is not a directory", ErrFetchFailed, ErrTemplateNotFound, ref)
	}

	n, err := fsutil.CopyTree(worktree, root, destDir, IgnoreFunc(f.exclude))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	f.logger.Debug().Msgf("Copied %d files from %s into %s", n, ref, destDir)
	return nil
}

// clone tries ref.Ref as a branch first and then as a tag.
func (f *GitFetcher) clone(ctx context.Context, ref RemoteRef) (billy.Filesystem, error) {
	candidates := []plumbing.ReferenceName{""}
	if ref.Ref != "" {
		candidates = []plumbing.ReferenceName{
			plumbing.NewBranchReferenceName(ref.Ref),
			plumbing.NewTagReferenceName(ref.Ref),
		}
	}

	url := f.RepoURL(ref)
	var lastErr error
	for _, name := range candidates {
		f.logger.Debug().Msgf("Cloning %s (ref %q)", url, name)
		fs := memfs.New()
		opts := &git.CloneOptions{
			URL:           url,
			ReferenceName: name,
			SingleBranch:  true,
			Depth:         f.depth,
			Tags:          git.NoTags,
		}
		if f.token != "" {
			opts.Auth = &http.BasicAuth{
				Username: "x-access-token",
				Password: f.token,
			}
		}
		_, err := git.CloneContext(ctx, memory.NewStorage(), fs, opts)
		if err == nil {
			return fs, nil
		}
		lastErr = err
		if ctx.Err() != nil || errors.Is(err, transport.ErrRepositoryNotFound) {
			break
		}
	}
	return nil, lastErr
}
