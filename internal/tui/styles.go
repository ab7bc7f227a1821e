package tui

import (
	"autotag/internal/config"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/lipgloss"
)

// pickerStyles colours the directory picker from the configured theme.
func pickerStyles(cfg *config.Config) filepicker.Styles {
	c := cfg.Theme
	st := filepicker.DefaultStyles()

	st.Cursor = lipgloss.NewStyle().
		Foreground(lipgloss.Color(c.Primary))
	st.Selected = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color(c.Primary))
	st.Directory = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#81A1C1")).
		Bold(true)
	st.File = lipgloss.NewStyle().
		Foreground(lipgloss.Color(c.Muted))
	st.DisabledFile = lipgloss.NewStyle().
		Foreground(lipgloss.Color(c.Muted)).
		Faint(true)
	st.Symlink = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#D08770")).
		Italic(true)
	st.EmptyDirectory = lipgloss.NewStyle().
		Foreground(lipgloss.Color(c.Muted)).
		SetString("No subdirectories here. Press s to choose this one.")
	return st
}
