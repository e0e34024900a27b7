package category

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const (
	KeyUI     = "ui"
	KeyModule = "module"
)

// ErrUnsupportedCategory is returned by Lookup for keys that are not registered.
var ErrUnsupportedCategory = errors.New("unsupported category")

// Descriptor describes one kind of template: where it lives in the remote
// repository and where it is materialized in the consuming project.
type Descriptor struct {
	Key            string
	Label          string
	RemotePath     string // e.g. "youzi20/yz-cli/templates/ui"
	DestinationDir string // relative to the working directory
}

// CacheDir is the cache subdirectory name: the last segment of the remote
// path followed by a short hash of the whole remote, so that categories with
// the same last segment (or the same subtree at another ref) never share an
// entry. e.g. "ui-1a2b3c4d".
func (d Descriptor) CacheDir() string {
	remote := strings.TrimRight(d.RemotePath, "/")
	p := remote
	if i := strings.Index(p, "#"); i >= 0 {
		p = p[:i]
	}
	p = strings.TrimRight(p, "/")
	if i := strings.LastIndex(p, "/"); i >= 0 {
		p = p[i+1:]
	}
	sum := sha256.Sum256([]byte(remote))
	return p + "-" + hex.EncodeToString(sum[:4])
}

// Registry is an immutable key -> Descriptor table.
type Registry struct {
	order []string
	byKey map[string]Descriptor
}

// NewRegistry builds a registry from descriptors, preserving their order.
func NewRegistry(descs ...Descriptor) (*Registry, error) {
	r := &Registry{byKey: make(map[string]Descriptor, len(descs))}
	for _, d := range descs {
		d.Key = strings.TrimSpace(d.Key)
		switch {
		case d.Key == "":
			return nil, fmt.Errorf("category key must not be empty")
		case strings.ContainsAny(d.Key, "/\\ "):
			return nil, fmt.Errorf("category key %q must not contain slashes or spaces", d.Key)
		case d.RemotePath == "":
			return nil, fmt.Errorf("category %q: remote path must not be empty", d.Key)
		case d.DestinationDir == "":
			return nil, fmt.Errorf("category %q: destination directory must not be empty", d.Key)
		}
		if _, dup := r.byKey[d.Key]; dup {
			return nil, fmt.Errorf("duplicate category key %q", d.Key)
		}
		d.RemotePath = strings.TrimRight(d.RemotePath, "/")
		if d.Label == "" {
			d.Label = d.Key
		}
		r.order = append(r.order, d.Key)
		r.byKey[d.Key] = d
	}
	return r, nil
}

// Default returns the built-in ui and module categories rooted at repo
// (degit-style "owner/repo/sub/dir").
func Default(repo string) []Descriptor {
	repo = strings.TrimRight(repo, "/")
	return []Descriptor{
		{
			Key:            KeyUI,
			Label:          "UI component",
			RemotePath:     repo + "/ui",
			DestinationDir: "src/components",
		},
		{
			Key:            KeyModule,
			Label:          "Business module",
			RemotePath:     repo + "/modules",
			DestinationDir: "src/modules",
		},
	}
}

// Lookup returns the descriptor registered under key.
func (r *Registry) Lookup(key string) (Descriptor, error) {
	d, ok := r.byKey[key]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w %q, valid categories are: %s",
			ErrUnsupportedCategory, key, strings.Join(r.Keys(), ", "))
	}
	return d, nil
}

// Keys returns the registered keys in registration order.
func (r *Registry) Keys() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// All returns every descriptor in registration order.
func (r *Registry) All() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.byKey[k])
	}
	return out
}
