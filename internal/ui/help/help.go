// Package help contains the keybinding overlay.
package help

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/spooky/internal/keys"
	"github.com/zjrosen/spooky/internal/ui/overlay"
	"github.com/zjrosen/spooky/internal/ui/styles"
)

// Footer is the dismiss hint at the bottom of the overlay.
const Footer = "Press ? or Esc to close"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.OverlayTitleColor).
			PaddingLeft(2)

	dividerStyle = lipgloss.NewStyle().
			Foreground(styles.OverlayBorderColor)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.OverlayTitleColor).
			MarginTop(1)

	keyStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondaryColor).
			Width(12)

	descStyle = lipgloss.NewStyle().
			Foreground(styles.TextDescriptionColor)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.OverlayBorderColor)

	contentStyle = lipgloss.NewStyle().
			Padding(0, 2)

	footerStyle = lipgloss.NewStyle().
			Foreground(styles.TextMutedColor).
			MarginTop(1)

	columnStyle = lipgloss.NewStyle().MarginRight(4)
)

// Model holds the help view state.
type Model struct {
	keys    keys.KeyMap
	stories []string
	width   int
	height  int
}

// New creates a help view for km.
func New(km keys.KeyMap) Model {
	return Model{keys: km}
}

// SetStories sets the story names listed under their jump chords, in
// registry order.
func (m Model) SetStories(names []string) Model {
	m.stories = append([]string(nil), names...)
	return m
}

// SetSize updates dimensions.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}

// View renders the help box centered on an empty screen.
func (m Model) View() string {
	return m.Overlay("")
}

// Overlay renders the help box centered over background.
func (m Model) Overlay(background string) string {
	box := m.renderContent()
	if background == "" {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	return overlay.Place(overlay.Config{
		Width:    m.width,
		Height:   m.height,
		Position: overlay.Center,
	}, box, background)
}

func (m Model) renderContent() string {
	groups := m.keys.FullHelp()
	names := keys.HelpSections()

	cols := make([]string, len(groups))
	for i, group := range groups {
		var col strings.Builder
		col.WriteString(sectionStyle.Render(names[i]))
		col.WriteString("\n")
		for _, b := range group {
			col.WriteString(renderBinding(b))
		}
		cols[i] = col.String()
	}

	// Two rows of two columns keep the box inside 80 cells.
	top := lipgloss.JoinHorizontal(lipgloss.Top, columnStyle.Render(cols[0]), cols[1])
	bottom := lipgloss.JoinHorizontal(lipgloss.Top, columnStyle.Render(cols[2]), cols[3])
	sections := []string{top, bottom}

	if len(m.stories) > 0 {
		var list strings.Builder
		list.WriteString(sectionStyle.Render("Story shortcuts"))
		list.WriteString("\n")
		for i, name := range m.stories {
			if i == 9 {
				break
			}
			list.WriteString(renderKeyDesc(fmt.Sprintf("alt+%d", i+1), name))
		}
		sections = append(sections, list.String())
	}

	body := lipgloss.JoinVertical(lipgloss.Left, sections...)
	boxWidth := lipgloss.Width(body) + 4

	var content strings.Builder
	content.WriteString(titleStyle.Render("Keybindings"))
	content.WriteString("\n")
	content.WriteString(dividerStyle.Render(strings.Repeat("─", boxWidth)))
	content.WriteString("\n")
	content.WriteString(contentStyle.Render(body + "\n" + footerStyle.Render(Footer)))

	return boxStyle.Width(boxWidth).Render(content.String())
}

func renderBinding(b key.Binding) string {
	h := b.Help()
	return renderKeyDesc(h.Key, h.Desc)
}

func renderKeyDesc(k, desc string) string {
	return keyStyle.Render(k) + descStyle.Render(desc) + "\n"
}
