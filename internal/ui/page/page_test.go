package page

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/spooky/internal/flags"
	"github.com/zjrosen/spooky/internal/keys"
	"github.com/zjrosen/spooky/internal/reltime"
	"github.com/zjrosen/spooky/internal/render"
	"github.com/zjrosen/spooky/internal/router"
	"github.com/zjrosen/spooky/internal/story"
	"github.com/zjrosen/spooky/internal/theme"
	"github.com/zjrosen/spooky/internal/ui/styles"
	"github.com/zjrosen/spooky/internal/view"
)

func TestMain(m *testing.M) {
	zone.NewGlobal()
	os.Exit(m.Run())
}

var noon = time.Date(2024, 11, 1, 12, 0, 0, 0, time.Local)

func newPage(t *testing.T, fragment string, now time.Time, width, height int) Model {
	t.Helper()
	reg, err := story.EmbeddedLoader{}.Load(context.Background())
	require.NoError(t, err)

	c := router.New(router.Options{
		DefaultID: "uuid",
		Location:  router.NewMemoryLocation(fragment),
		Clock:     reltime.FixedClock(now),
		Flags:     flags.New(nil),
	})
	t.Cleanup(c.Close)
	require.NoError(t, c.RegistryReady(reg))

	doc := c.Document()
	require.NoError(t, doc.Replace(view.ThemeToggle, render.ThemeToggle(string(theme.Dark), theme.Glyph(theme.Dark))))

	return New(doc, styles.ForMode(theme.Dark), keys.DefaultKeyMap()).
		SetFooter("? help").
		SetSize(width, height)
}

func TestView_NotReady(t *testing.T) {
	m := New(view.NewPageDocument(), styles.ForMode(theme.Dark), keys.DefaultKeyMap())
	assert.Equal(t, "Loading...", m.View())
}

func TestView_TwoColumn(t *testing.T) {
	m := newPage(t, "#midnight", noon, 140, 50)
	out := zone.Scan(m.View())

	assert.Contains(t, out, "Scheduled job keeps firing")
	assert.Contains(t, out, "#1031")
	assert.Contains(t, out, "Open")
	assert.Contains(t, out, "nadia-ops")
	assert.Contains(t, out, "opened this issue")
	assert.Contains(t, out, "Assignees")
	assert.Contains(t, out, "marisol")
	assert.Contains(t, out, "v2.13.0")
	assert.Contains(t, out, "haunted")
	assert.Contains(t, out, " │ ")
	assert.Contains(t, out, "☀️")
	assert.Contains(t, out, "? help")
	assert.Contains(t, out, "cron job that refuses to die", "selected story description under the tabs")
	assert.NotContains(t, out, "🌙 Scheduled", "no witching hour at noon")
}

func TestView_EveryLineFitsWidth(t *testing.T) {
	for _, width := range []int{80, 120} {
		m := newPage(t, "#uuid", noon, width, 40)
		for i, line := range strings.Split(zone.Scan(m.View()), "\n") {
			assert.LessOrEqual(t, lipgloss.Width(line), width, "width %d line %d", width, i)
		}
	}
}

func TestView_HeightMatchesTerminal(t *testing.T) {
	m := newPage(t, "#uuid", noon, 120, 40)
	assert.Equal(t, 40, lipgloss.Height(zone.Scan(m.View())))
}

func TestView_NarrowMovesSidebarIntoTimeline(t *testing.T) {
	m := newPage(t, "#midnight", noon, 80, 400)
	out := ansi.Strip(zone.Scan(m.View()))

	require.False(t, m.useTwoColumnLayout())
	lastComment := strings.LastIndex(out, "commented")
	assignees := strings.Index(out, "Assignees")
	require.NotEqual(t, -1, lastComment)
	require.NotEqual(t, -1, assignees)
	assert.Greater(t, assignees, lastComment, "sidebar follows the timeline")
	assert.Contains(t, out, "participants")

	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "Assignees") {
			assert.True(t, strings.HasPrefix(strings.TrimSpace(line), "Assignees"),
				"sidebar heading starts its own line: %q", line)
		}
	}
}

func TestView_OrderOfTimeline(t *testing.T) {
	m := newPage(t, "#uuid", noon, 140, 600)
	out := zone.Scan(m.View())

	opened := strings.Index(out, "opened this issue")
	first := strings.Index(out, "commented")
	require.NotEqual(t, -1, opened)
	require.NotEqual(t, -1, first)
	assert.Less(t, opened, first)
	assert.GreaterOrEqual(t, strings.Count(out, "commented"), 6, "opening post plus five comments")
}

func TestView_ReactionsInCanonicalOrder(t *testing.T) {
	m := newPage(t, "#midnight", noon, 140, 200)
	out := zone.Scan(m.View())

	// Midnight has 👍 31, 😄 4, 😕 58 and 👀 112 on the opening post.
	thumbs := strings.Index(out, "👍 31")
	confused := strings.Index(out, "😕 58")
	eyes := strings.Index(out, "👀 112")
	require.True(t, thumbs >= 0 && confused >= 0 && eyes >= 0)
	assert.Less(t, thumbs, confused)
	assert.Less(t, confused, eyes)
}

func TestView_WitchingHourTintsTitle(t *testing.T) {
	late := time.Date(2024, 10, 31, 23, 55, 0, 0, time.Local)
	m := newPage(t, "#midnight", late, 140, 40)

	assert.Contains(t, zone.Scan(m.View()), "🌙 Scheduled job")
}

func TestView_Status(t *testing.T) {
	m := newPage(t, "", noon, 100, 20).SetStatus("Summoning stories...")
	out := zone.Scan(m.View())

	assert.Contains(t, out, "Summoning stories...")
	assert.NotContains(t, out, "opened this issue")
}

func TestUpdate_ScrollsTimeline(t *testing.T) {
	m := newPage(t, "#uuid", noon, 120, 20)
	require.Equal(t, 0, m.YOffset())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, 1, m.YOffset())

	m = m.GotoTop()
	assert.Equal(t, 0, m.YOffset())
}

func TestSetStyles_KeepsContent(t *testing.T) {
	m := newPage(t, "#uuid", noon, 120, 40)
	light := m.SetStyles(styles.ForMode(theme.Light))

	assert.Contains(t, zone.Scan(light.View()), "npm installing 9.0.2")
}

func TestHitTest_IgnoresOtherButtons(t *testing.T) {
	m := newPage(t, "#uuid", noon, 120, 40)
	_ = zone.Scan(m.View())

	_, ok := m.HitTest(tea.MouseMsg{Button: tea.MouseButtonRight, Action: tea.MouseActionRelease})
	assert.False(t, ok)
	_, ok = m.HitTest(tea.MouseMsg{Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	assert.False(t, ok)
}

func TestBodyWidth(t *testing.T) {
	assert.Equal(t, 140-sidebarWidth-dividerWidth-2, newPage(t, "", noon, 140, 40).BodyWidth())
	assert.Equal(t, 78, newPage(t, "", noon, 80, 40).BodyWidth())
}

func TestFlow(t *testing.T) {
	assert.Equal(t, "aa bb\ncc", flow([]string{"aa", "bb", "cc"}, 5))
	assert.Equal(t, "", flow(nil, 5))
	assert.Equal(t, "toolong\nx", flow([]string{"toolong", "x"}, 3))
}
