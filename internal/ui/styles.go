package ui

import "github.com/charmbracelet/lipgloss"

// Palette tuned for dark terminal backgrounds.
const (
	colorWhite   = lipgloss.Color("#FFFFFF")
	colorGray500 = lipgloss.Color("#6C7585")
	colorGray600 = lipgloss.Color("#4E5560")
	colorGray800 = lipgloss.Color("#212732")
	colorBlue300 = lipgloss.Color("#97C1FF")
	colorBlue400 = lipgloss.Color("#639CFF")
	colorBlue500 = lipgloss.Color("#2E7BFF")
	colorBlue600 = lipgloss.Color("#0D5DFF")
	colorGreen   = lipgloss.Color("#63D78E")
	colorRed     = lipgloss.Color("#F87171")
	colorYellow  = lipgloss.Color("#F9C424")
)

var (
	TitleStyle   = bold(colorBlue500)
	SuccessStyle = bold(colorGreen)
	ErrorStyle   = bold(colorRed)
	WarningStyle = bold(colorYellow)
	CommandStyle = bold(colorBlue400)

	// DimStyle is used for hints, cache paths and spinner text.
	DimStyle = lipgloss.NewStyle().Foreground(colorGray500)
)

func bold(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(c)
}
