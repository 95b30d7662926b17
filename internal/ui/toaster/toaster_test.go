package toaster

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	m := New()

	assert.False(t, m.Visible())
	assert.Empty(t, m.View())
}

func TestShow(t *testing.T) {
	m, cmd := New().Show("Editing is unavailable", StyleInfo)

	assert.True(t, m.Visible())
	assert.Equal(t, "Editing is unavailable", m.Message())
	assert.Contains(t, m.View(), "Editing is unavailable")
	assert.Contains(t, m.View(), "ℹ️")
	require.NotNil(t, cmd)
}

func TestShow_ReplacesExisting(t *testing.T) {
	m, _ := New().Show("First", StyleSuccess)
	m, _ = m.Show("Second", StyleError)

	assert.Contains(t, m.View(), "Second")
	assert.NotContains(t, m.View(), "First")
	assert.Contains(t, m.View(), "❌")
}

func TestHide(t *testing.T) {
	m, _ := New().Show("Hello", StyleSuccess)
	m = m.Hide()

	assert.False(t, m.Visible())
	assert.Empty(t, m.View())
}

func TestUpdate_DismissMatchingSeq(t *testing.T) {
	m, _ := New().Show("Hello", StyleSuccess)

	m = m.Update(DismissMsg{Seq: 1})

	assert.False(t, m.Visible())
}

func TestUpdate_StaleDismissIgnored(t *testing.T) {
	m, _ := New().Show("First", StyleSuccess)
	m, _ = m.Show("Second", StyleSuccess)

	m = m.Update(DismissMsg{Seq: 1})

	assert.True(t, m.Visible(), "dismiss for the first toast must not hide the second")
	assert.Equal(t, "Second", m.Message())

	m = m.Update(DismissMsg{Seq: 2})
	assert.False(t, m.Visible())
}

func TestView_Glyphs(t *testing.T) {
	for style, glyph := range glyphs {
		m, _ := New().Show("msg", style)
		assert.Contains(t, m.View(), strings.TrimSpace(glyph))
	}
}

func TestOverlay_HiddenReturnsBackground(t *testing.T) {
	bg := "line1\nline2"
	assert.Equal(t, bg, New().Overlay(bg, 10, 2))
}

func TestOverlay_PlacesNearBottom(t *testing.T) {
	bg := strings.Repeat(strings.Repeat(".", 40)+"\n", 9) + strings.Repeat(".", 40)
	m, _ := New().Show("Copied", StyleSuccess)

	lines := strings.Split(m.Overlay(bg, 40, 10), "\n")

	require.Len(t, lines, 10)
	assert.Contains(t, lines[7], "Copied")
	assert.Equal(t, strings.Repeat(".", 40), lines[9])
}
