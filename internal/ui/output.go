package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Output helpers - use these for consistent styled output across commands.
// Regular output goes to stdout; errors and warnings go to stderr so
// piped output stays clean.

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// SetOutput redirects all helpers. A nil writer leaves the current one in place.
func SetOutput(out, errOut io.Writer) {
	if out != nil {
		stdout = out
	}
	if errOut != nil {
		stderr = errOut
	}
}

// Title prints a styled title/header (Blue)
func Title(text string) {
	fmt.Fprintln(stdout, TitleStyle.Render(text))
}

// Success prints a success message with checkmark (Green)
func Success(text string) {
	fmt.Fprintln(stdout, SuccessStyle.Render("✓ "+text))
}

// Error prints an error message to stderr (Red)
func Error(text string) {
	fmt.Fprintln(stderr, ErrorStyle.Render("✗ "+text))
}

// ErrorErr prints err through Error. Multi-line errors keep their lines.
func ErrorErr(err error) {
	if err == nil {
		return
	}
	lines := strings.Split(strings.TrimRight(err.Error(), "\n"), "\n")
	Error(lines[0])
	for _, l := range lines[1:] {
		fmt.Fprintln(stderr, DimStyle.Render("  "+l))
	}
}

// Warning prints a warning message to stderr (Yellow)
func Warning(text string) {
	fmt.Fprintln(stderr, WarningStyle.Render("! "+text))
}

// Dim prints dimmed/secondary text (Gray - less important)
func Dim(text string) {
	fmt.Fprintln(stdout, DimStyle.Render("  "+text))
}

// Command prints a CLI command (Bold Light Blue - prominent)
func Command(text string) {
	fmt.Fprintln(stdout, CommandStyle.Render(text))
}

// Line prints an empty line
func Line() {
	fmt.Fprintln(stdout)
}

// Print prints plain text
func Print(text string) {
	fmt.Fprintln(stdout, text)
}
