package components

import (
	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
)

// DirPicker lets the user walk the file system and choose a directory.
// Enter on a directory chooses it, s chooses the directory being shown and
// esc cancels.
type DirPicker struct {
	fp        filepicker.Model
	chosen    string
	done      bool
	cancelled bool
}

func NewDirPicker(start string, st filepicker.Styles, height int) DirPicker {
	fp := filepicker.New()
	fp.CurrentDirectory = start
	fp.DirAllowed = true
	fp.FileAllowed = false
	fp.ShowPermissions = false
	fp.Styles = st
	if height > 0 {
		fp.Height = height
		fp.AutoHeight = false
	}
	return DirPicker{fp: fp}
}

func (p DirPicker) Init() tea.Cmd {
	return p.fp.Init()
}

func (p DirPicker) Update(msg tea.Msg) (DirPicker, tea.Cmd) {
	if p.done || p.cancelled {
		return p, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc", "q", "ctrl+c":
			p.cancelled = true
			return p, nil
		case "s", ".":
			p.chosen = p.fp.CurrentDirectory
			p.done = true
			return p, nil
		}
	}

	before := p.fp.Path
	var cmd tea.Cmd
	p.fp, cmd = p.fp.Update(msg)

	if ok, path := p.fp.DidSelectFile(msg); ok {
		p.chosen = path
		p.done = true
		return p, nil
	}
	// Enter on a directory sets Path even when DidSelectFile looks at the
	// listing of the directory it just opened.
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" && p.fp.Path != "" && p.fp.Path != before {
		p.chosen = p.fp.Path
		p.done = true
		return p, nil
	}
	return p, cmd
}

// Chosen returns the chosen directory once the user confirmed one.
func (p DirPicker) Chosen() (string, bool) {
	return p.chosen, p.done
}

func (p DirPicker) Cancelled() bool {
	return p.cancelled
}

// CurrentDirectory is the directory being listed.
func (p DirPicker) CurrentDirectory() string {
	return p.fp.CurrentDirectory
}

func (p DirPicker) View() string {
	return p.fp.View()
}
