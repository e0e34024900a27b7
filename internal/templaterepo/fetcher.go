package templaterepo

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Transport names accepted by NewFetcher.
const (
	TransportTarball = "tarball"
	TransportGit     = "git"
	TransportExec    = "exec"
)

// Fetcher extracts a remote subtree into destDir.
//
// destDir must not exist yet; Fetch creates it. When the remote has no
// entries under ref.Subdir the error wraps ErrTemplateNotFound and destDir
// is not created. Other failures wrap ErrFetchFailed.
type Fetcher interface {
	Fetch(ctx context.Context, ref RemoteRef, destDir string) error
}

// FetcherOptions carries the settings shared by all transports.
type FetcherOptions struct {
	Token       string   // GitHub token, optional
	Exclude     []string // Extra ignore patterns on top of standardIgnores
	ExecCommand string   // Command line for the exec transport, e.g. "npx degit"
}

// NewFetcher returns the Fetcher for a transport name.
func NewFetcher(logger *zerolog.Logger, transport string, opts FetcherOptions) (Fetcher, error) {
	switch strings.ToLower(strings.TrimSpace(transport)) {
	case "", TransportTarball:
		return NewTarballFetcher(logger, WithToken(opts.Token), WithExclude(opts.Exclude)), nil
	case TransportGit:
		return NewGitFetcher(logger, WithGitToken(opts.Token), WithGitExclude(opts.Exclude)), nil
	case TransportExec:
		return NewExecFetcher(logger, opts.ExecCommand)
	default:
		return nil, fmt.Errorf("unknown transport %q, expected one of: %s, %s, %s",
			transport, TransportTarball, TransportGit, TransportExec)
	}
}
