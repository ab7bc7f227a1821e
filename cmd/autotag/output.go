package main

import (
	"autotag/internal/tui/styles"
)

func errorText(s string) string {
	return styles.Theme.Error.Render(s)
}

func primaryText(s string) string {
	return styles.Theme.Header.Render(s)
}

func successText(s string) string {
	return styles.Theme.Success.Render(s)
}

func warningText(s string) string {
	return styles.Theme.Warning.Render(s)
}

func mutedText(s string) string {
	return styles.Theme.Muted.Render(s)
}

func tagText(s string) string {
	return styles.Theme.Tag.Render(s)
}
