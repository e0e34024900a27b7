package templaterepo

import (
	"os"
	"strings"

	"github.com/youzi20/yz-cli/internal/fsutil"
)

// standardIgnores are files/dirs always excluded when extracting templates.
var standardIgnores = []string{
	".git",
	"node_modules",
	".DS_Store",
}

// IgnoreFunc adapts standardIgnores plus extra patterns to an fsutil.Skip.
func IgnoreFunc(extra []string) fsutil.Skip {
	patterns := append(append([]string{}, standardIgnores...), extra...)
	return func(rel string, _ os.FileInfo) bool {
		return shouldIgnore(rel, patterns)
	}
}

// shouldIgnore checks if a relative path matches any of the ignore patterns.
func shouldIgnore(relPath string, patterns []string) bool {
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		// Exact match on first path component
		firstComponent := strings.SplitN(relPath, "/", 2)[0]
		if firstComponent == pattern {
			return true
		}
		// Suffix match (e.g., "*.test.tsx")
		if strings.HasPrefix(pattern, "*") {
			suffix := strings.TrimPrefix(pattern, "*")
			if strings.HasSuffix(relPath, suffix) {
				return true
			}
		}
		// Prefix match for directory patterns (e.g., "tmp/")
		if strings.HasSuffix(pattern, "/") {
			dir := strings.TrimSuffix(pattern, "/")
			if relPath == dir || strings.HasPrefix(relPath, pattern) {
				return true
			}
		}
	}
	return false
}
