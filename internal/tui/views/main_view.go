package views

import (
	"strings"

	"autotag/internal/tui/common"
	"autotag/internal/tui/components"
	"autotag/internal/tui/styles"
)

// RenderMainView draws the browser: directory, search box, top tags, the
// filtered image list and the status line.
func RenderMainView(m common.ModelReader) string {
	var sb strings.Builder

	sb.WriteString(renderBanner())
	sb.WriteString("\n")

	if m.Mode() == common.Picker {
		sb.WriteString(styles.Theme.Header.Render("Choose a directory"))
		sb.WriteString("\n\n")
		sb.WriteString(m.PickerView())
		sb.WriteString("\n")
		sb.WriteString(RenderPickerKeys())
		return styles.Theme.App.Render(sb.String())
	}

	dir := m.CurrentDir()
	if dir == "" {
		dir = "(none selected)"
	}
	sb.WriteString("Directory: " + styles.Theme.Help.Render(dir) + "\n\n")

	if m.Mode() == common.Search || m.SearchText() != "" {
		sb.WriteString(styles.Theme.SearchInput.Render(m.SearchView()))
		sb.WriteString("\n")
	}

	sb.WriteString(components.RenderTagBar(m.TopTags(), m.IsTagSelected))
	sb.WriteString("\n\n")

	list := components.ImageList{
		Images: m.Images(),
		Cursor: m.Cursor(),
		Height: m.ListHeight(),
		Total:  m.Total(),
	}
	sb.WriteString(styles.ImageListStyle.Render(list.View()))
	sb.WriteString("\n")

	if status := components.RenderStatus(m.Status()); status != "" {
		sb.WriteString(status + "\n")
	}

	sb.WriteString("\n" + m.HelpView())

	return styles.Theme.App.Render(sb.String())
}

// RenderPickerKeys lists the keys of the directory picker.
func RenderPickerKeys() string {
	return styles.Theme.Help.Render("[↑/↓] Move  [→/l] Open  [←/h] Up  [Enter] Choose  [s] Choose current  [Esc] Cancel")
}

func renderBanner() string {
	return styles.Theme.Title.Render("autotag")
}
