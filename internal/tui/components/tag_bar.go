package components

import (
	"fmt"
	"strings"

	"autotag/internal/tui/styles"
	"autotag/pkg/types"
)

// TagKey returns the key that toggles the i-th top tag: 1-9, then 0.
func TagKey(i int) string {
	if i == 9 {
		return "0"
	}
	return fmt.Sprint(i + 1)
}

// TagIndex is the inverse of TagKey; ok is false for other keys.
func TagIndex(key string) (int, bool) {
	if len(key) != 1 || key[0] < '0' || key[0] > '9' {
		return 0, false
	}
	if key == "0" {
		return 9, true
	}
	return int(key[0] - '1'), true
}

// RenderTagBar draws the top tags with their counts and toggle keys.
func RenderTagBar(top []types.TagCount, selected func(string) bool) string {
	if len(top) == 0 {
		return styles.Theme.Muted.Render("No tags yet. Press p to classify this directory.")
	}

	parts := make([]string, 0, len(top))
	for i, tc := range top {
		label := fmt.Sprintf("%s %s", tc.Name, styles.Theme.Count.Render(fmt.Sprintf("(%d)", tc.Count)))
		if selected(tc.Name) {
			label = styles.Theme.ActiveTag.Render(fmt.Sprintf("%s (%d)", tc.Name, tc.Count))
		} else {
			label = styles.Theme.Tag.Render(label)
		}
		parts = append(parts, styles.Theme.Muted.Render("["+TagKey(i)+"]")+" "+label)
	}
	return strings.Join(parts, "  ")
}
