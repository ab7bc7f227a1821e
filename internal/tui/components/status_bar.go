package components

import (
	"autotag/internal/tui/common"
	"autotag/internal/tui/styles"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// StatusBar is the one-line status under the list. It is a value type so
// the model can copy it on every update.
type StatusBar struct {
	kind    common.StatusKind
	text    string
	spinner spinner.Model
}

func NewStatusBar() StatusBar {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Theme.Help

	return StatusBar{spinner: s}
}

// Set replaces the status. Busy statuses animate the spinner.
func (s StatusBar) Set(kind common.StatusKind, text string) StatusBar {
	s.kind = kind
	s.text = text
	return s
}

func (s StatusBar) Busy() bool {
	return s.kind == common.StatusBusy
}

// Tick starts the spinner.
func (s StatusBar) Tick() tea.Cmd {
	return s.spinner.Tick
}

func (s StatusBar) Update(msg tea.Msg) (StatusBar, tea.Cmd) {
	if !s.Busy() {
		return s, nil
	}
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return s, cmd
}

func (s StatusBar) Status() common.Status {
	st := common.Status{Kind: s.kind, Text: s.text}
	if s.Busy() {
		st.Spinner = s.spinner.View()
	}
	return st
}

// RenderStatus draws st in the style of its kind.
func RenderStatus(st common.Status) string {
	if st.Text == "" {
		return ""
	}
	switch st.Kind {
	case common.StatusBusy:
		return styles.Theme.Help.Render(st.Spinner + " " + st.Text)
	case common.StatusSuccess:
		return styles.Theme.Success.Render(st.Text)
	case common.StatusError:
		return styles.Theme.Error.Render(st.Text)
	default:
		return styles.Theme.Status.Render(st.Text)
	}
}
