package tui

import (
	"context"

	"autotag/internal/config"
	"autotag/internal/tui/components"
	"autotag/internal/tui/styles"
	"autotag/internal/tui/views"

	tea "github.com/charmbracelet/bubbletea"
)

// pickerModel is a program that only shows the directory picker.
type pickerModel struct {
	picker components.DirPicker
	chosen string
	ok     bool
}

func newPickerModel(start string, cfg *config.Config) pickerModel {
	return pickerModel{picker: components.NewDirPicker(start, pickerStyles(cfg), 0)}
}

func (m pickerModel) Init() tea.Cmd {
	return m.picker.Init()
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if m.picker.Cancelled() {
		return m, tea.Quit
	}
	if dir, ok := m.picker.Chosen(); ok {
		m.chosen, m.ok = dir, true
		return m, tea.Quit
	}
	return m, cmd
}

func (m pickerModel) View() string {
	return styles.Theme.App.Render(
		styles.Theme.Header.Render("Choose a directory") + "\n\n" +
			m.picker.View() + "\n" +
			views.RenderPickerKeys())
}

// Chooser asks for a directory with a full screen picker. It implements
// gallery.Chooser.
type Chooser struct {
	Config  *config.Config
	Options []tea.ProgramOption
}

// ChooseDirectory runs the picker starting at start. ok is false when the
// user cancelled.
func (c Chooser) ChooseDirectory(ctx context.Context, start string) (string, bool, error) {
	cfg := c.Config
	if cfg == nil {
		cfg = config.New()
	}
	if start == "" {
		start = homeDir()
	}

	opts := append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, c.Options...)
	final, err := tea.NewProgram(newPickerModel(start, cfg), opts...).Run()
	if err != nil {
		return "", false, err
	}
	pm, ok := final.(pickerModel)
	if !ok || !pm.ok {
		return "", false, nil
	}
	return pm.chosen, true, nil
}

// Run starts the browser on dir, or on the picker when dir is empty.
func Run(ctx context.Context, backend Backend, cfg *config.Config, dir string) error {
	p := tea.NewProgram(New(ctx, backend, cfg, dir), tea.WithContext(ctx), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
