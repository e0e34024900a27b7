package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/youzi20/yz-cli/internal/constants"
)

// New builds a zerolog logger. By default it writes console-formatted lines
// without timestamp and level to stderr, colored only on a terminal.
func New(opts ...Option) *zerolog.Logger {
	cfg := &Config{
		output:       os.Stderr,
		level:        zerolog.InfoLevel,
		excludeParts: []string{zerolog.TimestampFieldName, zerolog.LevelFieldName},
		console:      true,
	}
	for _, opt := range opts {
		opt.apply(cfg)
	}
	if cfg.noColor == nil {
		noColor := os.Getenv("NO_COLOR") != "" || !isTerminal(cfg.output)
		cfg.noColor = &noColor
	}

	logger := zerolog.New(cfg.output).Level(cfg.level)
	if cfg.console {
		logger = logger.Output(zerolog.ConsoleWriter{
			Out:          cfg.output,
			NoColor:      *cfg.noColor,
			PartsExclude: cfg.excludeParts,
		})
	}
	return &logger
}

// NewConsoleLogger is the logger the CLI starts with; --verbose lowers its level.
func NewConsoleLogger() *zerolog.Logger {
	return New(WithLevel(constants.DefaultLogLevel))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
