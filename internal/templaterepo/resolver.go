package templaterepo

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/youzi20/yz-cli/internal/category"
	"github.com/youzi20/yz-cli/internal/validation"
)

// Resolver turns categories and user input into template locations,
// either from the local cache or as a remote reference.
type Resolver struct {
	logger   *zerolog.Logger
	registry *category.Registry
	cache    *Cache
}

// Direct is the outcome of resolving "<category>/<name>" without the cache.
type Direct struct {
	Category    category.Descriptor
	Name        string
	Remote      RemoteRef
	RemotePath  string // degit-style, e.g. "org/repo/templates/ui/Button"
	Destination string // relative to the working directory, e.g. "src/components/Button"
}

// NewResolver creates a Resolver over a category registry and a cache.
func NewResolver(logger *zerolog.Logger, registry *category.Registry, cache *Cache) *Resolver {
	return &Resolver{
		logger:   logger,
		registry: registry,
		cache:    cache,
	}
}

// Registry returns the category registry.
func (r *Resolver) Registry() *category.Registry {
	return r.registry
}

// Cache returns the template cache.
func (r *Resolver) Cache() *Cache {
	return r.cache
}

// Candidates lists the template names of a category, populating the cache
// on first use. A populated category is served without touching the network.
func (r *Resolver) Candidates(ctx context.Context, desc category.Descriptor) ([]string, error) {
	if !r.cache.Has(desc) {
		r.logger.Debug().Msgf("No cached templates for %s, fetching %s", desc.Key, desc.RemotePath)
		if err := r.cache.Populate(ctx, desc); err != nil {
			return nil, err
		}
	}

	dir := r.cache.Path(desc)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache directory %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if err := validation.IsValidTemplateName(e.Name()); err != nil {
			r.logger.Debug().Err(err).Msgf("Skipping cached directory %q", e.Name())
			continue
		}
		names = append(names, e.Name())
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w for %s in %s", ErrNoTemplatesAvailable, desc.Label, desc.RemotePath)
	}

	sort.Strings(names)
	return names, nil
}

// Refresh fetches a category again. The cached templates stay usable when
// the fetch fails.
func (r *Resolver) Refresh(ctx context.Context, desc category.Descriptor) error {
	return r.cache.Replace(ctx, desc)
}

// TemplateDir returns the cached directory of one template.
func (r *Resolver) TemplateDir(desc category.Descriptor, name string) (string, error) {
	if err := validation.IsValidTemplateName(name); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidTemplateName, err)
	}
	dir := filepath.Join(r.cache.Path(desc), name)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s/%s is not in the cache", ErrTemplateNotFound, desc.Key, name)
	}
	return dir, nil
}

// ParseArgument splits "<category>/<name>" on the first slash.
func ParseArgument(arg string) (string, string, error) {
	key, name, ok := strings.Cut(arg, "/")
	if !ok || key == "" || name == "" {
		return "", "", fmt.Errorf("%w: expected <category>/<name>, got %q", ErrMalformedArgument, arg)
	}
	return key, name, nil
}

// ResolveDirect maps a category key and template name to the remote path
// and destination. It performs no network or filesystem access.
func (r *Resolver) ResolveDirect(key, name string) (Direct, error) {
	desc, err := r.registry.Lookup(key)
	if err != nil {
		return Direct{}, err
	}
	if err := validation.IsValidTemplateName(name); err != nil {
		return Direct{}, fmt.Errorf("%w: %w", ErrInvalidTemplateName, err)
	}

	base, err := ParseRemote(desc.RemotePath)
	if err != nil {
		return Direct{}, fmt.Errorf("category %q: %w", desc.Key, err)
	}
	remote := base.Join(name)

	return Direct{
		Category:    desc,
		Name:        name,
		Remote:      remote,
		RemotePath:  remote.String(),
		Destination: path.Join(desc.DestinationDir, name),
	}, nil
}
