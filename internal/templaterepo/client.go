package templaterepo

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog"

	"github.com/youzi20/yz-cli/internal/constants"
	"github.com/youzi20/yz-cli/internal/fsutil"
)

const (
	defaultAPIBaseURL = "https://api.github.com"
	defaultAttempts   = 3
	defaultRetryDelay = 500 * time.Millisecond
)

var _ Fetcher = (*TarballFetcher)(nil)

// TarballFetcher downloads a repository tarball from the GitHub API and
// extracts only the requested subtree, the way degit does.
type TarballFetcher struct {
	logger     *zerolog.Logger
	httpClient *http.Client
	apiBaseURL string
	token      string
	exclude    []string
	attempts   uint
	retryDelay time.Duration
}

// statusError is a non-200 answer from the GitHub API.
type statusError struct {
	code   int
	status string
}

func (e *statusError) Error() string {
	return e.status
}

// TarballOption configures a TarballFetcher.
type TarballOption func(*TarballFetcher)

// WithHTTPClient sets the HTTP client. A nil client leaves the default in place.
func WithHTTPClient(c *http.Client) TarballOption {
	return func(f *TarballFetcher) {
		if c != nil {
			f.httpClient = c
		}
	}
}

// WithAPIBaseURL points the fetcher at a different GitHub API host.
func WithAPIBaseURL(u string) TarballOption {
	return func(f *TarballFetcher) {
		f.apiBaseURL = strings.TrimSuffix(u, "/")
	}
}

// WithToken sets the Bearer token sent to the GitHub API.
func WithToken(token string) TarballOption {
	return func(f *TarballFetcher) {
		f.token = token
	}
}

// WithExclude adds ignore patterns applied during extraction.
func WithExclude(patterns []string) TarballOption {
	return func(f *TarballFetcher) {
		f.exclude = patterns
	}
}

// WithRetry sets how often a download that failed with a network error,
// 429 or 5xx is attempted, and the initial backoff between attempts.
func WithRetry(attempts uint, delay time.Duration) TarballOption {
	return func(f *TarballFetcher) {
		if attempts > 0 {
			f.attempts = attempts
		}
		f.retryDelay = delay
	}
}

// NewTarballFetcher creates a new GitHub tarball fetcher.
func NewTarballFetcher(logger *zerolog.Logger, opts ...TarballOption) *TarballFetcher {
	f := &TarballFetcher{
		logger:     logger,
		httpClient: &http.Client{Timeout: constants.TarballTimeout},
		apiBaseURL: defaultAPIBaseURL,
		attempts:   defaultAttempts,
		retryDelay: defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// TarballURL returns the GitHub API URL of the repository tarball for ref.
func (f *TarballFetcher) TarballURL(ref RemoteRef) string {
	u := fmt.Sprintf("%s/repos/%s/%s/tarball", f.apiBaseURL, ref.Owner, ref.Repo)
	if ref.Ref != "" {
		u += "/" + ref.Ref
	}
	return u
}

// Fetch downloads the tarball and extracts ref.Subdir into destDir.
func (f *TarballFetcher) Fetch(ctx context.Context, ref RemoteRef, destDir string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	tarballURL := f.TarballURL(ref)
	resp, err := retry.DoWithData(
		func() (*http.Response, error) {
			return f.download(ctx, tarballURL, ref)
		},
		retry.Context(ctx),
		retry.Attempts(f.attempts),
		retry.Delay(f.retryDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isTransient),
		retry.OnRetry(func(n uint, err error) {
			f.logger.Debug().Err(err).Msgf("Tarball download attempt %d failed, retrying", n+1)
		}),
	)
	if err != nil {
		if !errors.Is(err, ErrFetchFailed) {
			err = fmt.Errorf("%w: %w", ErrFetchFailed, err)
		}
		return err
	}
	defer resp.Body.Close()

	n, err := f.extractTarball(resp.Body, ref.Subdir, destDir)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %w: %s", ErrFetchFailed, ErrTemplateNotFound, ref)
	}

	f.logger.Debug().Msgf("Extracted %d entries from %s into %s", n, ref, destDir)
	return nil
}

// download performs one GET. On success the caller owns the response body.
func (f *TarballFetcher) download(ctx context.Context, tarballURL string, ref RemoteRef) (*http.Response, error) {
	f.logger.Debug().Msgf("Downloading tarball from %s", tarballURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tarballURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", ErrFetchFailed, err)
	}
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}
	req.Header.Set("User-Agent", "yz-cli")
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to download tarball: %w", ErrFetchFailed, err)
	}

	if resp.StatusCode == http.StatusOK {
		return resp, nil
	}
	resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %w: repository %s", ErrFetchFailed, ErrTemplateNotFound, ref.Repository())
	}
	return nil, fmt.Errorf("%w: tarball download failed with status: %w", ErrFetchFailed,
		&statusError{code: resp.StatusCode, status: resp.Status})
}

// isTransient reports whether a failed download is worth another attempt.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.code == http.StatusTooManyRequests || se.code >= http.StatusInternalServerError
	}
	return !errors.Is(err, ErrTemplateNotFound)
}

// extractTarball reads a gzip+tar stream and extracts entries under subdir
// into destDir. destDir is only created once a matching entry is seen.
// It returns the number of extracted entries.
func (f *TarballFetcher) extractTarball(r io.Reader, subdir, destDir string) (int, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return 0, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	skip := IgnoreFunc(f.exclude)
	subdir = strings.Trim(subdir, "/")

	// GitHub tarballs have a top-level directory like "owner-repo-sha/".
	var topLevelPrefix string
	extracted := 0

	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return extracted, fmt.Errorf("tar read error: %w", err)
		}

		// PAX global/extended headers are metadata records, not real files
		if header.Typeflag == tar.TypeXGlobalHeader || header.Typeflag == tar.TypeXHeader {
			continue
		}

		if topLevelPrefix == "" {
			topLevelPrefix = strings.SplitN(header.Name, "/", 2)[0] + "/"
		}

		name := strings.TrimSuffix(strings.TrimPrefix(header.Name, topLevelPrefix), "/")
		if name == "" {
			continue
		}

		var relPath string
		switch {
		case subdir == "":
			relPath = name
		case name == subdir:
			// the subtree root must be a directory
			if header.Typeflag != tar.TypeDir {
				f.logger.Debug().Msgf("Skipping %s: not a directory", header.Name)
				continue
			}
			relPath = ""
		case strings.HasPrefix(name, subdir+"/"):
			relPath = strings.TrimPrefix(name, subdir+"/")
		default:
			continue
		}

		if relPath != "" && skip(relPath, nil) {
			continue
		}

		targetPath, err := fsutil.SafeJoin(destDir, relPath)
		if err != nil {
			return extracted, fmt.Errorf("illegal file path in archive: %s", header.Name)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			f.logger.Trace().Msgf("Extracting dir: %s -> %s", name, targetPath)
			if err := os.MkdirAll(targetPath, 0755); err != nil {
				return extracted, fmt.Errorf("failed to create directory %s: %w", targetPath, err)
			}
		case tar.TypeReg:
			f.logger.Trace().Msgf("Extracting file: %s -> %s", name, targetPath)
			if err := writeTarFile(tr, targetPath, os.FileMode(header.Mode)); err != nil {
				return extracted, err
			}
		default:
			f.logger.Debug().Msgf("Skipping unsupported archive entry %s", header.Name)
			continue
		}
		extracted++
	}

	return extracted, nil
}

func writeTarFile(r io.Reader, targetPath string, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(targetPath), 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	out, err := os.OpenFile(targetPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode&0755|0600)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", targetPath, err)
	}

	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("failed to write file %s: %w", targetPath, err)
	}
	return out.Close()
}
