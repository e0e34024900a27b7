package templaterepo

import (
	"fmt"
	"path"
	"strings"
)

// RemoteRef identifies a directory inside a GitHub repository at a ref,
// written degit-style as "owner/repo[/sub/dir][#ref]".
type RemoteRef struct {
	Owner  string
	Repo   string
	Subdir string // Slash-separated path inside the repo, "" for the root
	Ref    string // Branch, tag, or SHA; "" means the default branch tip
}

// ParseRemote parses "owner/repo[/sub/dir][#ref]". A leading "github:" or
// "https://github.com/" is accepted and dropped.
func ParseRemote(s string) (RemoteRef, error) {
	raw := s
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "github:")
	s = strings.TrimPrefix(s, "https://github.com/")

	var ref string
	if idx := strings.Index(s, "#"); idx != -1 {
		ref = s[idx+1:]
		s = s[:idx]
		if ref == "" {
			return RemoteRef{}, fmt.Errorf("%w: empty ref in %q", ErrInvalidRemote, raw)
		}
	}

	parts := strings.Split(strings.Trim(s, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return RemoteRef{}, fmt.Errorf("%w: expected owner/repo[/sub/dir][#ref], got %q", ErrInvalidRemote, raw)
	}
	for _, p := range parts[2:] {
		if p == "" || p == "." || p == ".." {
			return RemoteRef{}, fmt.Errorf("%w: invalid path segment %q in %q", ErrInvalidRemote, p, raw)
		}
	}

	return RemoteRef{
		Owner:  parts[0],
		Repo:   strings.TrimSuffix(parts[1], ".git"),
		Subdir: strings.Join(parts[2:], "/"),
		Ref:    ref,
	}, nil
}

// Join returns the reference to a child directory of r.
func (r RemoteRef) Join(name string) RemoteRef {
	r.Subdir = path.Join(r.Subdir, name)
	return r
}

// Repository returns "owner/repo".
func (r RemoteRef) Repository() string {
	return r.Owner + "/" + r.Repo
}

// String returns "owner/repo[/sub/dir][#ref]".
func (r RemoteRef) String() string {
	s := r.Repository()
	if r.Subdir != "" {
		s += "/" + r.Subdir
	}
	if r.Ref != "" {
		s += "#" + r.Ref
	}
	return s
}
