package components

import (
	"fmt"
	"strings"

	"autotag/internal/tui/styles"
	"autotag/pkg/types"

	"github.com/dustin/go-humanize"
)

// ImageList renders a window of images around the cursor.
type ImageList struct {
	Images []types.ImageRecord
	Cursor int
	Height int
	Total  int
}

// window returns the [start, end) range of rows to draw.
func (il ImageList) window() (int, int) {
	n := len(il.Images)
	if il.Height <= 0 || n <= il.Height {
		return 0, n
	}
	start := il.Cursor - il.Height/2
	if start < 0 {
		start = 0
	}
	if start+il.Height > n {
		start = n - il.Height
	}
	return start, start + il.Height
}

func (il ImageList) View() string {
	var s strings.Builder

	s.WriteString(styles.Theme.Count.Render(fmt.Sprintf("%d of %d images", len(il.Images), il.Total)))
	s.WriteString("\n\n")

	if len(il.Images) == 0 {
		if il.Total == 0 {
			s.WriteString("No images found\n")
		} else {
			s.WriteString("No images match the current filters\n")
		}
		return s.String()
	}

	start, end := il.window()
	for i := start; i < end; i++ {
		img := il.Images[i]
		style := styles.Theme.Unselected
		cursor := " "
		if i == il.Cursor {
			cursor = ">"
			style = styles.Theme.Selected
		}

		tags := styles.Theme.Muted.Render("(no tags)")
		if len(img.Tags) > 0 {
			tags = styles.Theme.Tag.Render(strings.Join(img.Tags, ", "))
		}

		s.WriteString(fmt.Sprintf("%s %-32s %8s  %s\n",
			cursor,
			style.Render(truncate(img.Name, 32)),
			humanize.Bytes(uint64(img.Size)),
			tags))
	}
	return s.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
