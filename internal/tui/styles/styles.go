package styles

import (
	"autotag/internal/config"

	"github.com/charmbracelet/lipgloss"
)

// Styles holds every style the browser renders with.
type Styles struct {
	App         lipgloss.Style
	Title       lipgloss.Style
	Header      lipgloss.Style
	Selected    lipgloss.Style
	Unselected  lipgloss.Style
	Tag         lipgloss.Style
	ActiveTag   lipgloss.Style
	Count       lipgloss.Style
	Help        lipgloss.Style
	Status      lipgloss.Style
	Error       lipgloss.Style
	Success     lipgloss.Style
	Warning     lipgloss.Style
	Muted       lipgloss.Style
	SearchInput lipgloss.Style
}

// Theme is the active style set. ApplyConfig replaces it.
var Theme = New(config.New())

// New builds the style set from the configured colours.
func New(cfg *config.Config) Styles {
	c := cfg.Theme
	return Styles{
		App: lipgloss.NewStyle().
			Padding(1, 2),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(c.Primary)).
			MarginBottom(1),
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(c.Primary)),
		Selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color(c.Success)).
			Bold(true),
		Unselected: lipgloss.NewStyle().
			Foreground(lipgloss.Color(c.Muted)),
		Tag: lipgloss.NewStyle().
			Foreground(lipgloss.Color(c.Emphasis)),
		ActiveTag: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color(c.Primary)).
			Padding(0, 1),
		Count: lipgloss.NewStyle().
			Foreground(lipgloss.Color(c.Muted)),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color(c.Emphasis)),
		Status: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#959595")),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color(c.Error)),
		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color(c.Success)),
		Warning: lipgloss.NewStyle().
			Foreground(lipgloss.Color(c.Warning)),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color(c.Muted)),
		SearchInput: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(c.Primary)).
			Padding(0, 1),
	}
}

// ApplyConfig rebuilds Theme from cfg.
func ApplyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	Theme = New(cfg)
}

// ImageListStyle frames the image list.
var ImageListStyle = lipgloss.NewStyle().
	Padding(0, 1).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("#7B61FF"))
