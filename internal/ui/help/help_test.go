package help

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/spooky/internal/keys"
)

func TestHelp_SetSize(t *testing.T) {
	m := New(keys.DefaultKeyMap()).SetSize(120, 40)
	assert.Equal(t, 120, m.width)
	assert.Equal(t, 40, m.height)

	m2 := m.SetSize(80, 24)
	assert.Equal(t, 80, m2.width)
	assert.Equal(t, 120, m.width, "SetSize must not mutate the receiver")
}

func TestHelp_View_ContainsSectionsAndBindings(t *testing.T) {
	view := New(keys.DefaultKeyMap()).SetSize(80, 30).View()

	for _, section := range keys.HelpSections() {
		assert.Contains(t, view, section)
	}
	assert.Contains(t, view, "Keybindings")
	assert.Contains(t, view, Footer)
	assert.Contains(t, view, "alt+D")
	assert.Contains(t, view, "toggle theme")
	assert.Contains(t, view, "alt+1-9")
	assert.Contains(t, view, "history back")
	assert.Contains(t, view, "copy location")
}

func TestHelp_FitsStandardTerminal(t *testing.T) {
	box := New(keys.DefaultKeyMap()).renderContent()
	assert.LessOrEqual(t, lipgloss.Width(box), 80)
}

func TestHelp_StoryShortcuts(t *testing.T) {
	names := []string{"Midnight", "Haunted", "Graveyard"}
	view := New(keys.DefaultKeyMap()).SetStories(names).SetSize(80, 40).View()

	assert.Contains(t, view, "Story shortcuts")
	assert.Contains(t, view, "alt+3")
	assert.Contains(t, view, "Graveyard")
}

func TestHelp_StoryShortcutsCapAtNine(t *testing.T) {
	names := make([]string, 12)
	for i := range names {
		names[i] = strings.Repeat("s", i+1)
	}
	box := New(keys.DefaultKeyMap()).SetStories(names).renderContent()

	assert.Contains(t, box, "alt+9")
	assert.NotContains(t, box, "alt+10")
}

func TestHelp_Overlay(t *testing.T) {
	m := New(keys.DefaultKeyMap()).SetSize(80, 30)
	background := strings.Repeat(strings.Repeat(".", 80)+"\n", 30)

	result := m.Overlay(background)

	assert.Contains(t, result, "Keybindings")
	lines := strings.Split(result, "\n")
	require.NotEmpty(t, lines)
	assert.Contains(t, lines[0], ".", "background stays visible around the box")
}
