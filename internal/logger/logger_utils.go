package logger

import (
	"sort"

	"github.com/rs/zerolog"
)

// Fields is a flat string map logged as a nested object with stable key order.
type Fields map[string]string

func (f Fields) MarshalZerologObject(e *zerolog.Event) {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		e.Str(k, f[k])
	}
}
