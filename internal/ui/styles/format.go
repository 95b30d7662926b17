package styles

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// TruncateString truncates s to fit within maxWidth cells, adding an
// ellipsis if needed. Grapheme clusters are never split.
func TruncateString(s string, maxWidth int) string {
	if maxWidth < 1 {
		return ""
	}
	if DisplayWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return strings.Repeat(".", maxWidth)
	}

	var b strings.Builder
	width := 0
	state := -1
	for len(s) > 0 {
		cluster, rest, _, newState := uniseg.StepString(s, state)
		w := runewidth.StringWidth(cluster)
		if width+w > maxWidth-3 {
			break
		}
		b.WriteString(cluster)
		width += w
		s, state = rest, newState
	}
	return b.String() + "..."
}

// DisplayWidth returns the width of s in terminal cells, counting each
// grapheme cluster once. Emoji with variation selectors count as two.
func DisplayWidth(s string) int {
	return uniseg.StringWidth(s)
}

// PadRight pads s with spaces to width cells.
func PadRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// ContrastText picks black or white text for a hex background using the
// perceived brightness formula GitHub applies to label colors.
func ContrastText(hex string) lipgloss.Color {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return lipgloss.Color("#FFFFFF")
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return lipgloss.Color("#FFFFFF")
	}
	r, g, b := (v>>16)&0xFF, (v>>8)&0xFF, v&0xFF
	if (r*299+g*587+b*114)/1000 > 150 {
		return lipgloss.Color("#1F2328")
	}
	return lipgloss.Color("#FFFFFF")
}
