package templaterepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/youzi20/yz-cli/internal/category"
	"github.com/youzi20/yz-cli/internal/constants"
)

// Cache manages the per-category template trees under a cache root.
// An entry is only considered present once its completion marker exists.
type Cache struct {
	logger  *zerolog.Logger
	root    string
	fetcher Fetcher
}

// Marker is the content of the completion marker written into a cache entry.
type Marker struct {
	Remote    string    `json:"remote"`
	FetchedAt time.Time `json:"fetched_at"`
}

// DefaultCacheRoot returns "<dir of executable>/../.cache/templates".
func DefaultCacheRoot() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), "..", filepath.FromSlash(constants.CacheDirName)), nil
}

// NewCache creates a cache rooted at root that populates entries through fetcher.
func NewCache(logger *zerolog.Logger, root string, fetcher Fetcher) *Cache {
	return &Cache{
		logger:  logger,
		root:    filepath.Clean(root),
		fetcher: fetcher,
	}
}

// Root returns the cache root directory.
func (c *Cache) Root() string {
	return c.root
}

// Path returns the cache entry directory for a category.
func (c *Cache) Path(desc category.Descriptor) string {
	return filepath.Join(c.root, desc.CacheDir())
}

// Has reports whether the category has a completely populated entry.
func (c *Cache) Has(desc category.Descriptor) bool {
	_, err := c.Info(desc)
	return err == nil
}

// Info reads the completion marker of a category entry.
func (c *Cache) Info(desc category.Descriptor) (Marker, error) {
	var m Marker
	data, err := os.ReadFile(filepath.Join(c.Path(desc), constants.CacheMarkerFile))
	if err != nil {
		return m, err
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("corrupt cache marker for %s: %w", desc.Key, err)
	}
	return m, nil
}

// Populate fetches the whole category subtree into the cache unless a
// complete entry already exists. A present but incomplete entry is replaced.
func (c *Cache) Populate(ctx context.Context, desc category.Descriptor) error {
	if c.Has(desc) {
		c.logger.Debug().Msgf("Cache entry for %s already populated", desc.Key)
		return nil
	}
	return c.install(ctx, desc)
}

// Replace fetches the category again and swaps the new tree in for the
// current entry. The current entry is left as it was when the fetch fails.
func (c *Cache) Replace(ctx context.Context, desc category.Descriptor) error {
	return c.install(ctx, desc)
}

// install fetches into a staging directory next to the entry, marks the
// tree complete and only then moves it over the entry.
func (c *Cache) install(ctx context.Context, desc category.Descriptor) error {
	ref, err := ParseRemote(desc.RemotePath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(c.root, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	staging, err := os.MkdirTemp(c.root, "."+desc.CacheDir()+"-staging-")
	if err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(staging); rmErr != nil {
			c.logger.Warn().Err(rmErr).Msgf("Failed to remove staging directory %s", staging)
		}
	}()

	tree := filepath.Join(staging, "tree")
	c.logger.Debug().Msgf("Populating cache for %s from %s", desc.Key, ref)
	if err := c.fetcher.Fetch(ctx, ref, tree); err != nil {
		return err
	}

	if err := writeMarker(tree, Marker{Remote: ref.String(), FetchedAt: time.Now().UTC()}); err != nil {
		return err
	}

	target := c.Path(desc)
	if _, err := os.Lstat(target); err == nil {
		if c.Has(desc) {
			c.logger.Debug().Msgf("Replacing cache entry %s", target)
		} else {
			c.logger.Debug().Msgf("Replacing incomplete cache entry %s", target)
		}
		// the old entry is parked inside staging and removed with it
		if err := os.Rename(target, filepath.Join(staging, "old")); err != nil {
			return fmt.Errorf("failed to move old cache entry aside: %w", err)
		}
	}
	if err := os.Rename(tree, target); err != nil {
		return fmt.Errorf("failed to move cache entry into place: %w", err)
	}

	c.logger.Debug().Msgf("Cached %s at %s", desc.Key, target)
	return nil
}

// Clear removes a category entry. A missing entry is not an error.
func (c *Cache) Clear(desc category.Descriptor) error {
	if err := os.RemoveAll(c.Path(desc)); err != nil {
		return fmt.Errorf("failed to clear cache for %s: %w", desc.Key, err)
	}
	c.logger.Debug().Msgf("Cleared cache for %s", desc.Key)
	return nil
}

// ClearAll removes the cache root.
func (c *Cache) ClearAll() error {
	if err := os.RemoveAll(c.root); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	c.logger.Debug().Msgf("Cleared cache root %s", c.root)
	return nil
}

func writeMarker(dir string, m Marker) error {
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		// Fetchers that produced nothing still yield an (empty) entry.
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create cache entry: %w", err)
		}
	}
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal cache marker: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, constants.CacheMarkerFile), data, 0600); err != nil {
		return fmt.Errorf("failed to write cache marker: %w", err)
	}
	return nil
}
