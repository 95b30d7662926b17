// Package styles contains Lip Gloss style definitions.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/spooky/internal/theme"
)

// Colors shared by the chrome around the page (toasts, help, location bar).
// They follow the terminal background rather than the page theme.
var (
	TextMutedColor       = lipgloss.AdaptiveColor{Light: "#656D76", Dark: "#7D8590"}
	TextDescriptionColor = lipgloss.AdaptiveColor{Light: "#1F2328", Dark: "#C9D1D9"}
	TextSecondaryColor   = lipgloss.AdaptiveColor{Light: "#424A53", Dark: "#ADBAC7"}

	OverlayTitleColor  = lipgloss.AdaptiveColor{Light: "#1F2328", Dark: "#E6EDF3"}
	OverlayBorderColor = lipgloss.AdaptiveColor{Light: "#D0D7DE", Dark: "#30363D"}

	ToastBorderSuccessColor = lipgloss.AdaptiveColor{Light: "#1F883D", Dark: "#3FB950"}
	ToastBorderErrorColor   = lipgloss.AdaptiveColor{Light: "#CF222E", Dark: "#F85149"}
	ToastBorderInfoColor    = lipgloss.AdaptiveColor{Light: "#0969DA", Dark: "#2F81F7"}
	ToastBorderWarnColor    = lipgloss.AdaptiveColor{Light: "#9A6700", Dark: "#D29922"}

	LocationPromptColor = lipgloss.AdaptiveColor{Light: "#0969DA", Dark: "#2F81F7"}
)

// Palette is the set of page colors for one theme mode.
type Palette struct {
	Canvas     lipgloss.Color
	Fg         lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Accent     lipgloss.Color
	Open       lipgloss.Color
	Closed     lipgloss.Color
	Danger     lipgloss.Color
	Attention  lipgloss.Color
	OnEmphasis lipgloss.Color
	// Witching tints the header between 23:50 and 00:10 on the midnight story.
	Witching lipgloss.Color
}

// DarkPalette mirrors GitHub's dark default.
var DarkPalette = Palette{
	Canvas:     "#0D1117",
	Fg:         "#E6EDF3",
	Muted:      "#7D8590",
	Border:     "#30363D",
	Accent:     "#2F81F7",
	Open:       "#238636",
	Closed:     "#8957E5",
	Danger:     "#F85149",
	Attention:  "#D29922",
	OnEmphasis: "#FFFFFF",
	Witching:   "#FF7B00",
}

// LightPalette mirrors GitHub's light default.
var LightPalette = Palette{
	Canvas:     "#FFFFFF",
	Fg:         "#1F2328",
	Muted:      "#656D76",
	Border:     "#D0D7DE",
	Accent:     "#0969DA",
	Open:       "#1F883D",
	Closed:     "#8250DF",
	Danger:     "#CF222E",
	Attention:  "#9A6700",
	OnEmphasis: "#FFFFFF",
	Witching:   "#BC4C00",
}

// PaletteFor returns the palette for m.
func PaletteFor(m theme.Mode) Palette {
	if m == theme.Light {
		return LightPalette
	}
	return DarkPalette
}

// Styles are the page styles derived from a Palette.
type Styles struct {
	Palette Palette

	Title       lipgloss.Style
	Number      lipgloss.Style
	Text        lipgloss.Style
	Muted       lipgloss.Style
	Link        lipgloss.Style
	Author      lipgloss.Style
	Heading     lipgloss.Style
	Divider     lipgloss.Style
	StateOpen   lipgloss.Style
	StateClosed lipgloss.Style
	Tab         lipgloss.Style
	TabSelected lipgloss.Style
	TabCustom   lipgloss.Style
	Toggle      lipgloss.Style
	Reaction    lipgloss.Style
	Witching    lipgloss.Style
	Footer      lipgloss.Style
}

// New derives Styles from p.
func New(p Palette) Styles {
	badge := lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(p.OnEmphasis)
	tab := lipgloss.NewStyle().Padding(0, 1).Foreground(p.Muted)

	return Styles{
		Palette: p,

		Title:       lipgloss.NewStyle().Bold(true).Foreground(p.Fg),
		Number:      lipgloss.NewStyle().Foreground(p.Muted),
		Text:        lipgloss.NewStyle().Foreground(p.Fg),
		Muted:       lipgloss.NewStyle().Foreground(p.Muted),
		Link:        lipgloss.NewStyle().Foreground(p.Accent),
		Author:      lipgloss.NewStyle().Bold(true).Foreground(p.Fg),
		Heading:     lipgloss.NewStyle().Bold(true).Foreground(p.Muted),
		Divider:     lipgloss.NewStyle().Foreground(p.Border),
		StateOpen:   badge.Background(p.Open),
		StateClosed: badge.Background(p.Closed),
		Tab:         tab,
		TabSelected: tab.Bold(true).Foreground(p.Fg).Underline(true),
		TabCustom:   tab.Italic(true),
		Toggle:      lipgloss.NewStyle().Padding(0, 1),
		Reaction:    lipgloss.NewStyle().Padding(0, 1).Foreground(p.Accent),
		Witching:    lipgloss.NewStyle().Bold(true).Foreground(p.Witching),
		Footer:      lipgloss.NewStyle().Foreground(p.Muted),
	}
}

// ForMode is New(PaletteFor(m)).
func ForMode(m theme.Mode) Styles {
	return New(PaletteFor(m))
}

// Label returns the pill style for a label with the given hex background.
func (s Styles) Label(hex string) lipgloss.Style {
	return lipgloss.NewStyle().
		Padding(0, 1).
		Background(lipgloss.Color("#" + hex)).
		Foreground(ContrastText(hex))
}
