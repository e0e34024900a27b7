package testutil

import (
	"bytes"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/youzi20/yz-cli/internal/logger"
)

// NewTestLogger logs everything down to debug on stdout so `go test -v`
// shows fetch and cache decisions next to the failing assertion.
func NewTestLogger() *zerolog.Logger {
	return logger.New(
		logger.WithOutput(os.Stdout),
		logger.WithLevel("debug"),
		logger.WithNoColor(true),
	)
}

// NewBufferedLogger is NewTestLogger that also captures JSON lines in the
// returned buffer for assertions on log content.
func NewBufferedLogger() (*zerolog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	console := zerolog.ConsoleWriter{Out: os.Stdout, NoColor: true}
	l := zerolog.New(io.MultiWriter(console, &buf)).Level(zerolog.DebugLevel)
	return &l, &buf
}
