package templaterepo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

var _ Fetcher = (*ExecFetcher)(nil)

// ExecFetcher delegates fetching to an external degit-compatible command,
// invoked as "<command...> <owner/repo/sub/dir[#ref]> <destDir>".
// The child inherits the terminal.
type ExecFetcher struct {
	logger *zerolog.Logger
	name   string
	args   []string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecFetcher parses command (e.g. "npx degit") into an executable and
// leading arguments.
func NewExecFetcher(logger *zerolog.Logger, command string) (*ExecFetcher, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, errors.New("exec transport requires a command")
	}
	return &ExecFetcher{
		logger: logger,
		name:   fields[0],
		args:   fields[1:],
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}, nil
}

// Command returns the full command line that Fetch would run.
func (f *ExecFetcher) Command(ref RemoteRef, destDir string) []string {
	out := append([]string{f.name}, f.args...)
	return append(out, ref.String(), destDir)
}

// Fetch runs the command. A non-zero exit keeps the *exec.ExitError in the
// chain so the caller can propagate the exit code.
func (f *ExecFetcher) Fetch(ctx context.Context, ref RemoteRef, destDir string) error {
	argv := f.Command(ref, destDir)
	f.logger.Debug().Msgf("Running %s", strings.Join(argv, " "))

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = f.Stdin
	cmd.Stdout = f.Stdout
	cmd.Stderr = f.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrFetchFailed, strings.Join(argv, " "), err)
	}
	return nil
}
