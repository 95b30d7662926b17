package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/spooky/internal/theme"
)

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		width    int
		expected string
	}{
		{"fits", "ghost", 10, "ghost"},
		{"exact", "ghost", 5, "ghost"},
		{"truncated", "haunted house", 8, "haunt..."},
		{"tiny width", "haunted", 2, ".."},
		{"zero width", "haunted", 0, ""},
		{"emoji kept whole", "👻👻👻👻", 7, "👻👻..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateString(tt.in, tt.width)
			require.Equal(t, tt.expected, got)
			require.LessOrEqual(t, DisplayWidth(got), max(tt.width, 0))
		})
	}
}

func TestDisplayWidth_Emoji(t *testing.T) {
	assert.Equal(t, 2, DisplayWidth("👍"))
	assert.Equal(t, 5, DisplayWidth("ghost"))
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "ab  ", PadRight("ab", 4))
	assert.Equal(t, "abcdef", PadRight("abcdef", 4))
}

func TestContrastText(t *testing.T) {
	dark := lipgloss.Color("#1F2328")
	light := lipgloss.Color("#FFFFFF")

	assert.Equal(t, dark, ContrastText("ffffff"))
	assert.Equal(t, dark, ContrastText("#fbca04"))
	assert.Equal(t, light, ContrastText("000000"))
	assert.Equal(t, light, ContrastText("d73a4a"))
	assert.Equal(t, light, ContrastText("nothex"))
	assert.Equal(t, light, ContrastText("abc"))
}

func TestPaletteFor(t *testing.T) {
	assert.Equal(t, LightPalette, PaletteFor(theme.Light))
	assert.Equal(t, DarkPalette, PaletteFor(theme.Dark))
	assert.NotEqual(t, ForMode(theme.Light).Palette.Fg, ForMode(theme.Dark).Palette.Fg)
}
