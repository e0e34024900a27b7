// Package materialize copies resolved templates into a project tree.
// It never overwrites: a destination that already exists is left untouched.
package materialize

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/youzi20/yz-cli/internal/fsutil"
	"github.com/youzi20/yz-cli/internal/templaterepo"
	"github.com/youzi20/yz-cli/internal/validation"
)

// ErrAlreadyExists is returned when the destination path is already taken.
var ErrAlreadyExists = errors.New("destination already exists")

type Materializer struct {
	logger *zerolog.Logger
}

func New(logger *zerolog.Logger) *Materializer {
	return &Materializer{logger: logger}
}

// Destination returns the absolute path root/destDir/name and fails with
// ErrAlreadyExists if anything is already there.
func (m *Materializer) Destination(root, destDir, name string) (string, error) {
	if err := validation.IsValidTemplateName(name); err != nil {
		return "", fmt.Errorf("%w: %w", templaterepo.ErrInvalidTemplateName, err)
	}
	if err := validation.IsValidRelativeDir(destDir); err != nil {
		return "", fmt.Errorf("invalid destination: %w", err)
	}

	dest, err := filepath.Abs(filepath.Join(root, filepath.FromSlash(destDir), name))
	if err != nil {
		return "", fmt.Errorf("failed to resolve destination: %w", err)
	}

	exists, err := fsutil.Exists(dest)
	if err != nil {
		return "", fmt.Errorf("failed to check destination %s: %w", dest, err)
	}
	if exists {
		return "", fmt.Errorf("%w: %s", ErrAlreadyExists, dest)
	}
	return dest, nil
}

// CopyLocal copies the template directory src into root/destDir/name.
func (m *Materializer) CopyLocal(src, root, destDir, name string) (string, error) {
	dest, err := m.Destination(root, destDir, name)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(src)
	if err != nil {
		return "", fmt.Errorf("failed to read template %s: %w", src, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("template %s is not a directory", src)
	}

	m.logger.Debug().Msgf("Copying %s to %s", src, dest)
	n, err := fsutil.CopyDir(src, dest, nil)
	if err != nil {
		return "", fmt.Errorf("failed to copy template into %s: %w", dest, err)
	}
	m.logger.Debug().Msgf("Copied %d files", n)
	return dest, nil
}

// FetchInto fetches remote straight into root/destDir/name.
func (m *Materializer) FetchInto(ctx context.Context, fetcher templaterepo.Fetcher, remote templaterepo.RemoteRef, root, destDir, name string) (string, error) {
	dest, err := m.Destination(root, destDir, name)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", filepath.Dir(dest), err)
	}

	m.logger.Debug().Msgf("Fetching %s into %s", remote, dest)
	if err := fetcher.Fetch(ctx, remote, dest); err != nil {
		return "", err
	}
	return dest, nil
}
