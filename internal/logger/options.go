package logger

import (
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// Config holds logger configuration
type Config struct {
	output       io.Writer
	level        zerolog.Level
	excludeParts []string
	console      bool
	noColor      *bool
}

// Option configures the logger
type Option interface {
	apply(*Config)
}

type optionFunc func(*Config)

func (f optionFunc) apply(cfg *Config) {
	f(cfg)
}

// WithLevel sets the level by name; unknown names fall back to info.
func WithLevel(level string) Option {
	return optionFunc(func(cfg *Config) {
		cfg.level = parseLevel(level)
	})
}

// WithConsoleWriter switches between human-readable lines and JSON.
func WithConsoleWriter(enabled bool) Option {
	return optionFunc(func(cfg *Config) {
		cfg.console = enabled
	})
}

// WithOutput sets the output writer
func WithOutput(output io.Writer) Option {
	return optionFunc(func(cfg *Config) {
		cfg.output = output
	})
}

// WithNoColor forces colors off (or on) instead of detecting a terminal.
func WithNoColor(noColor bool) Option {
	return optionFunc(func(cfg *Config) {
		cfg.noColor = &noColor
	})
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
