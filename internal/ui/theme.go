package ui

import "github.com/charmbracelet/huh"

// Theme returns the huh theme used by every yz prompt.
func Theme() *huh.Theme {
	t := huh.ThemeBase()

	f := &t.Focused
	f.Base = f.Base.BorderForeground(colorBlue500)
	f.Title = f.Title.Foreground(colorBlue400).Bold(true)
	f.Description = f.Description.Foreground(colorGray500)
	f.SelectSelector = f.SelectSelector.Foreground(colorBlue500)
	f.SelectedOption = f.SelectedOption.Foreground(colorBlue300)
	f.UnselectedOption = f.UnselectedOption.Foreground(colorGray500)
	f.FocusedButton = f.FocusedButton.Foreground(colorWhite).Background(colorBlue600)
	f.BlurredButton = f.BlurredButton.Foreground(colorGray500).Background(colorGray800)

	b := &t.Blurred
	b.Base = b.Base.BorderForeground(colorGray600)
	b.Title = b.Title.Foreground(colorGray500)
	b.Description = b.Description.Foreground(colorGray600)
	b.SelectSelector = b.SelectSelector.Foreground(colorGray600)
	b.SelectedOption = b.SelectedOption.Foreground(colorGray500)
	b.UnselectedOption = b.UnselectedOption.Foreground(colorGray600)

	return t
}

// KeyMap is huh's default key map with esc also aborting the form.
func KeyMap() *huh.KeyMap {
	km := huh.NewDefaultKeyMap()
	km.Quit.SetKeys("ctrl+c", "esc")
	return km
}
