package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestLogger(t *testing.T) {
	t.Run("New creates working logger", func(t *testing.T) {
		var buf bytes.Buffer

		log := New(
			WithOutput(&buf),
			WithLevel("debug"),
			WithConsoleWriter(false),
		)

		log.Info().Msg("test message")

		output := buf.String()
		assert.Contains(t, output, "test message")
		assert.Contains(t, output, "info")
	})

	t.Run("Logger respects log levels", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(
			WithOutput(&buf),
			WithLevel("info"),
			WithConsoleWriter(false),
		)

		log.Debug().Msg("debug message")
		assert.Empty(t, buf.String(), "Debug message should not be logged")

		log.Info().Msg("info message")
		assert.Contains(t, buf.String(), "info message")
	})

	t.Run("Disabled level drops everything", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(
			WithOutput(&buf),
			WithLevel("disabled"),
			WithConsoleWriter(false),
		)

		log.Error().Msg("should not appear")
		assert.Empty(t, buf.String())
	})

	t.Run("Console writer is colorless on a non-terminal", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(WithOutput(&buf), WithLevel("debug"))

		log.Debug().Str("category", "ui").Msg("populating cache")
		output := buf.String()

		assert.Contains(t, output, "populating cache")
		assert.Contains(t, output, "category=ui")
		assert.NotContains(t, output, "\x1b[")
	})

	t.Run("Console mode enables pretty logging", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(
			WithOutput(&buf),
			WithLevel("debug"),
			WithConsoleWriter(true),
		)

		log.Info().Msg("pretty message")
		output := buf.String()

		assert.Contains(t, output, "pretty message")
		assert.NotContains(t, output, `{"level":"info"`)
	})

	t.Run("Fields are logged as an ordered object", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(
			WithOutput(&buf),
			WithLevel("debug"),
			WithConsoleWriter(false),
		)

		log.Debug().
			Object("category", Fields{"remote": "org/repo/templates/ui", "key": "ui"}).
			Msg("resolved category")
		output := buf.String()

		assert.Contains(t, output, `"category":{"key":"ui","remote":"org/repo/templates/ui"}`)
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{" info ", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"nonsense", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}
