package validation

import (
	"fmt"
	"path"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const maxTemplateNameLength = 128

var (
	categoryKeyRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	repoSegmentRegex = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
)

func isTemplateName(fl validator.FieldLevel) bool {
	return IsValidTemplateName(stringField(fl)) == nil
}

func isCategoryKey(fl validator.FieldLevel) bool {
	return categoryKeyRegex.MatchString(stringField(fl))
}

func isRepoPath(fl validator.FieldLevel) bool {
	return IsValidRepoPath(stringField(fl)) == nil
}

func isRelativeDir(fl validator.FieldLevel) bool {
	return IsValidRelativeDir(stringField(fl)) == nil
}

func stringField(fl validator.FieldLevel) string {
	field := fl.Field()
	if field.Kind() != reflect.String {
		panic(fmt.Sprintf("input field name is not a string: %s", fl.FieldName()))
	}
	return field.String()
}

// IsValidTemplateName reports whether name can safely be joined onto a
// destination directory: one non-hidden path segment, never absolute. Any
// printable characters are allowed, e.g. "按钮", "Token Card" or "@scope".
func IsValidTemplateName(name string) error {
	if name == "" {
		return fmt.Errorf("template name can't be an empty string")
	}
	if utf8.RuneCountInString(name) > maxTemplateNameLength {
		return fmt.Errorf("template name is too long, limit is %d characters", maxTemplateNameLength)
	}
	if !utf8.ValidString(name) {
		return fmt.Errorf("template name %q is not valid UTF-8", name)
	}
	if filepath.IsAbs(name) || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("template name %q must not be a path", name)
	}
	if name == "." || name == ".." {
		return fmt.Errorf("template name %q is not allowed", name)
	}
	if strings.HasPrefix(name, ".") {
		return fmt.Errorf("template name %q must not start with '.'", name)
	}
	if strings.IndexFunc(name, unicode.IsControl) >= 0 {
		return fmt.Errorf("template name %q must not contain control characters", name)
	}
	return nil
}

// IsValidRelativeDir checks a destination directory such as "src/components":
// relative to the project root and never climbing out of it.
func IsValidRelativeDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("directory can't be an empty string")
	}
	if filepath.IsAbs(dir) || path.IsAbs(filepath.ToSlash(dir)) || filepath.VolumeName(dir) != "" {
		return fmt.Errorf("directory %q must be relative to the project root", dir)
	}
	for _, part := range strings.Split(filepath.ToSlash(dir), "/") {
		if part == ".." {
			return fmt.Errorf("directory %q must not contain '..'", dir)
		}
	}
	return nil
}

// IsValidRepoPath checks a degit-style "owner/repo[/sub/dir][#ref]" string.
func IsValidRepoPath(p string) error {
	path := p
	if i := strings.Index(path, "#"); i >= 0 {
		if path[i+1:] == "" {
			return fmt.Errorf("repository %q has an empty ref", p)
		}
		path = path[:i]
	}
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 {
		return fmt.Errorf("repository %q must look like owner/repo[/sub/dir]", p)
	}
	for _, part := range parts {
		if part == "." || part == ".." || !repoSegmentRegex.MatchString(part) {
			return fmt.Errorf("repository %q has an invalid segment %q", p, part)
		}
	}
	return nil
}
