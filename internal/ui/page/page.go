// Package page paints the rendered issue document to the terminal: story
// tabs and theme toggle on top, the issue header, a scrollable timeline and
// the metadata sidebar.
package page

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/muesli/reflow/wordwrap"

	"github.com/zjrosen/spooky/internal/keys"
	"github.com/zjrosen/spooky/internal/router"
	"github.com/zjrosen/spooky/internal/ui/styles"
	"github.com/zjrosen/spooky/internal/view"
)

// Layout constants for the two-column view.
const (
	minTwoColumnWidth = 100 // Below this the sidebar moves under the timeline
	sidebarWidth      = 34
	dividerWidth      = 3 // " │ "
	replyIndent       = 4
	footerHeight      = 1
)

// Zone ids for mouse hit testing.
const (
	toggleZone      = "theme-toggle"
	storyZonePrefix = "story-tab-"
)

// Model is the issue page.
type Model struct {
	doc      *view.Document
	st       styles.Styles
	paint    painter
	viewport viewport.Model
	width    int
	height   int
	ready    bool
	status   string
	footer   string
}

// New creates a page over doc.
func New(doc *view.Document, st styles.Styles, km keys.KeyMap) Model {
	vp := viewport.New(0, 0)
	vp.KeyMap.Up = km.Up
	vp.KeyMap.Down = km.Down
	vp.KeyMap.PageUp = km.PageUp
	vp.KeyMap.PageDown = km.PageDown
	vp.KeyMap.HalfPageUp.SetEnabled(false)
	vp.KeyMap.HalfPageDown.SetEnabled(false)
	vp.KeyMap.Left.SetEnabled(false)
	vp.KeyMap.Right.SetEnabled(false)

	return Model{doc: doc, st: st, paint: painter{st: st}, viewport: vp}
}

// SetStyles swaps the palette, for a theme change.
func (m Model) SetStyles(st styles.Styles) Model {
	m.st = st
	m.paint = painter{st: st}
	return m.Refresh()
}

// SetStatus shows text in place of the issue, for the loading state. An
// empty status shows the document.
func (m Model) SetStatus(text string) Model {
	m.status = text
	return m
}

// SetFooter sets the help line.
func (m Model) SetFooter(text string) Model {
	m.footer = text
	return m
}

// SetSize updates dimensions and repaints.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	m.ready = width > 0 && height > 0
	return m.Refresh()
}

// Refresh repaints the timeline from the document, keeping the scroll
// offset where the content allows.
func (m Model) Refresh() Model {
	if !m.ready {
		return m
	}
	left, _ := m.columnWidths()
	m.viewport.Width = left
	m.viewport.Height = max(m.height-lipgloss.Height(m.renderTop())-footerHeight, 1)
	m.viewport.SetContent(m.renderTimeline())
	return m
}

// GotoTop scrolls the timeline to the start, for a story change.
func (m Model) GotoTop() Model {
	m.viewport.GotoTop()
	return m
}

// YOffset returns the timeline scroll offset.
func (m Model) YOffset() int {
	return m.viewport.YOffset
}

// FitHeight is the page height that shows the whole timeline and sidebar
// without scrolling at the current width.
func (m Model) FitHeight() int {
	if !m.ready {
		return 0
	}
	body := m.viewport.TotalLineCount()
	if m.useTwoColumnLayout() {
		_, right := m.columnWidths()
		body = max(body, lipgloss.Height(m.renderSidebar(right)))
	}
	return lipgloss.Height(m.renderTop()) + body + footerHeight
}

// BodyWidth is the width markdown should be rendered at to fit a comment box.
func (m Model) BodyWidth() int {
	left, _ := m.columnWidths()
	return max(left-2, 10)
}

// Update scrolls the timeline for key and wheel messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// Hit is the target of a mouse click.
type Hit struct {
	StoryID string
	Toggle  bool
}

// HitTest maps a left click release to a story tab or the theme toggle.
// Zones are only known after the app has run zone.Scan over a frame.
func (m Model) HitTest(msg tea.MouseMsg) (Hit, bool) {
	if msg.Button != tea.MouseButtonLeft || msg.Action != tea.MouseActionRelease {
		return Hit{}, false
	}
	if z := zone.Get(toggleZone); z != nil && z.InBounds(msg) {
		return Hit{Toggle: true}, true
	}
	for _, tab := range m.tabs() {
		id, _ := tab.Get("data-story")
		if z := zone.Get(storyZonePrefix + id); z != nil && z.InBounds(msg) {
			return Hit{StoryID: id}, true
		}
	}
	return Hit{}, false
}

func (m Model) useTwoColumnLayout() bool {
	return m.width >= minTwoColumnWidth
}

func (m Model) columnWidths() (left, right int) {
	available := max(m.width, 20)
	if !m.useTwoColumnLayout() {
		return available, 0
	}
	return available - sidebarWidth - dividerWidth, sidebarWidth
}

// View renders the page.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	top := m.renderTop()
	if m.status != "" {
		body := lipgloss.Place(m.width, max(m.height-lipgloss.Height(top)-footerHeight, 1),
			lipgloss.Center, lipgloss.Center, m.st.Muted.Render(m.status))
		return lipgloss.JoinVertical(lipgloss.Left, top, body, m.renderFooter())
	}

	var body string
	if m.useTwoColumnLayout() {
		left, right := m.columnWidths()
		timeline := lipgloss.NewStyle().Width(left).Height(m.viewport.Height).Render(m.viewport.View())

		sidebarLines := strings.Split(m.renderSidebar(right), "\n")
		if len(sidebarLines) > m.viewport.Height {
			sidebarLines = sidebarLines[:m.viewport.Height]
		}
		sidebar := lipgloss.NewStyle().Width(right).Render(strings.Join(sidebarLines, "\n"))

		divider := make([]string, m.viewport.Height)
		for i := range divider {
			divider[i] = " │ "
		}
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			timeline,
			m.st.Divider.Render(strings.Join(divider, "\n")),
			sidebar,
		)
	} else {
		body = m.viewport.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, top, body, m.renderFooter())
}

func (m Model) region(id view.RegionID) []*view.Node {
	r, ok := m.doc.Region(id)
	if !ok {
		return nil
	}
	return r.Children
}

func (m Model) tabs() []*view.Node {
	var out []*view.Node
	for _, n := range m.region(view.StoryNav) {
		if n.HasClass("story-btn") {
			out = append(out, n)
		}
	}
	return out
}

// renderTop renders the nav bar, the selected story's description, a rule
// and the issue header.
func (m Model) renderTop() string {
	var sb strings.Builder
	sb.WriteString(m.renderNav())
	sb.WriteString("\n")
	sb.WriteString(m.st.Divider.Render(strings.Repeat("─", max(m.width, 1))))
	sb.WriteString("\n")
	if m.status == "" {
		sb.WriteString(m.renderHeader())
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func (m Model) renderNav() string {
	toggle := zone.Mark(toggleZone, m.st.Toggle.Render(m.paint.inline(firstOf(m.region(view.ThemeToggle)))))
	tabs := m.tabs()

	var parts []string
	var description string
	if len(tabs) > 0 {
		budget := max((m.width-lipgloss.Width(toggle))/len(tabs)-3, 4)
		for i, tab := range tabs {
			id, _ := tab.Get("data-story")
			name := styles.TruncateString(tab.TextContent(), budget)
			label := strconv.Itoa(i+1) + " " + name

			style := m.st.Tab
			if tab.HasClass("custom") {
				style = m.st.TabCustom
			}
			if tab.HasClass("selected") {
				style = m.st.TabSelected
				description, _ = tab.Get("title")
			}
			parts = append(parts, zone.Mark(storyZonePrefix+id, style.Render(label)))
		}
	}

	nav := strings.Join(parts, "")
	gap := max(m.width-lipgloss.Width(nav)-lipgloss.Width(toggle), 1)
	line := nav + strings.Repeat(" ", gap) + toggle
	if description != "" {
		line += "\n" + m.st.Muted.Render(" "+styles.TruncateString(description, max(m.width-1, 1)))
	}
	return line
}

func (m Model) renderHeader() string {
	left, _ := m.columnWidths()

	titleStyle := m.st.Title
	title := m.doc.Text(view.IssueTitle)
	if m.doc.HasBodyClass(router.WitchingHourClass) {
		titleStyle = m.st.Witching
		title = "🌙 " + title
	}
	number := m.doc.Text(view.IssueNumber)
	wrapped := wordwrap.String(title, max(left-lipgloss.Width(number)-1, 10))
	heading := titleStyle.Render(wrapped) + " " + m.st.Number.Render(number)

	comments := len(m.commentBlocks())
	noun := "comments"
	if comments == 1 {
		noun = "comment"
	}
	meta := fmt.Sprintf("%s %s opened this issue %s · %d %s",
		m.paint.inline(firstOf(m.region(view.IssueState))),
		m.paint.inline(firstOf(m.region(view.IssueAuthor))),
		m.paint.inline(firstOf(m.region(view.IssueCreatedAt))),
		comments, noun,
	)
	return heading + "\n" + meta + "\n"
}

func (m Model) commentBlocks() []*view.Node {
	var out []*view.Node
	for _, n := range m.region(view.CommentsTimeline) {
		if n.HasClass("timeline-comment-wrapper") {
			out = append(out, n)
		}
	}
	return out
}

// renderTimeline renders the opening post and every comment as titled boxes.
// Narrow layouts append the sidebar.
func (m Model) renderTimeline() string {
	width, _ := m.columnWidths()
	var blocks []string

	op := m.box(
		commentTitle(firstOf(m.region(view.OPAuthor)), firstOf(m.region(view.OPCreatedAt))),
		m.paint.inline(firstOf(m.region(view.IssueBody))),
		firstOf(m.region(view.IssueReactions)),
		width,
		false,
	)
	blocks = append(blocks, op)

	for _, c := range m.commentBlocks() {
		reply := c.HasClass("reply")
		w := width
		if reply {
			w -= replyIndent
		}
		box := m.box(commentTitle(c.First("author-name"), c.First("timestamp")), m.paint.inline(c.First("comment-body")), c.First("reaction-summary-item-group"), w, reply)
		if reply {
			box = lipgloss.NewStyle().PaddingLeft(replyIndent).Render(box)
		}
		blocks = append(blocks, box)
	}

	if !m.useTwoColumnLayout() {
		blocks = append(blocks, m.st.Divider.Render(strings.Repeat("─", width)), m.renderSidebar(width))
	}
	return strings.Join(blocks, "\n\n")
}

func (m Model) box(title, body string, reactions *view.Node, width int, reply bool) string {
	border := lipgloss.TerminalColor(m.st.Palette.Border)
	if reply {
		border = m.st.Palette.Accent
	}
	if pills := m.paint.reactions(reactions, width-2); reactions != nil && pills != "" {
		body += "\n\n" + pills
	}
	return styles.RenderTitledBox(body, title, width, border, m.st.Palette.Muted)
}

// renderSidebar renders assignees, labels, milestone and participants.
func (m Model) renderSidebar(width int) string {
	var sections []string
	section := func(heading string, body string) {
		sections = append(sections, m.st.Heading.Render(heading)+"\n"+body)
	}

	section("Assignees", strings.Join(m.paint.lines(m.region(view.AssigneesList)), "\n"))

	var labels []string
	for _, n := range m.region(view.LabelsList) {
		labels = append(labels, m.paint.inline(n))
	}
	section("Labels", flow(labels, width))

	section("Milestone", m.paint.inline(firstOf(m.region(view.MilestoneInfo))))

	count := m.doc.Text(view.ParticipantCount)
	var names []string
	for _, n := range m.region(view.ParticipantsList) {
		if avatar := firstTag(n, "img"); avatar != nil {
			name, _ := avatar.Get("title")
			names = append(names, m.st.Link.Render("@"+name))
		}
	}
	section(count+" participants", flow(names, width))

	rule := m.st.Divider.Render(strings.Repeat("─", max(width-5, 1)))
	return strings.Join(sections, "\n"+rule+"\n")
}

func (m Model) renderFooter() string {
	percent := ""
	if m.status == "" && m.viewport.TotalLineCount() > m.viewport.Height {
		percent = fmt.Sprintf("%3.f%%", m.viewport.ScrollPercent()*100)
	}
	gap := max(m.width-lipgloss.Width(m.footer)-lipgloss.Width(percent)-1, 1)
	return m.st.Footer.Render(" " + m.footer + strings.Repeat(" ", gap) + percent)
}

// commentTitle is the plain "author commented when" box title.
func commentTitle(author, when *view.Node) string {
	name := author.TextContent()
	if n := author.First("author-name"); n != nil {
		name = n.TextContent()
	}
	return name + " commented " + when.TextContent()
}

func firstOf(nodes []*view.Node) *view.Node {
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

func firstTag(n *view.Node, tag string) *view.Node {
	found := n.Find(func(m *view.Node) bool { return m.Tag == tag })
	return firstOf(found)
}
