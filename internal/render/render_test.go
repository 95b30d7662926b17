package render

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/spooky/internal/flags"
	"github.com/zjrosen/spooky/internal/reltime"
	"github.com/zjrosen/spooky/internal/story"
	"github.com/zjrosen/spooky/internal/view"
)

var now = time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC)

type mockMarkdown struct {
	mock.Mock
}

func (m *mockMarkdown) Render(markdown string) (string, error) {
	args := m.Called(markdown)
	return args.String(0), args.Error(1)
}

func newRenderer(fl *flags.Registry) *Renderer {
	return New(Options{Clock: reltime.FixedClock(now), Flags: fl})
}

func embedded(t *testing.T, id string) *story.IssueRecord {
	t.Helper()
	reg, err := story.EmbeddedLoader{}.Load(context.Background())
	require.NoError(t, err)
	e, ok := reg.Get(id)
	require.True(t, ok)
	return e.Issue
}

func kinds(group *view.Node) []string {
	var out []string
	for _, item := range group.FindClass("reaction-summary-item") {
		kind, _ := item.Get("data-kind")
		out = append(out, kind)
	}
	return out
}

func TestReactions_CanonicalOrderSkipsZero(t *testing.T) {
	group := Reactions(story.ReactionCounts{"+1": 3, "eyes": 5, "confused": 0})
	require.Equal(t, []string{"+1", "eyes"}, kinds(group))
	require.Equal(t, "👍3👀5", group.TextContent())
}

func TestReactions_Absent(t *testing.T) {
	group := Reactions(nil)
	require.Empty(t, group.Children)
	require.True(t, group.HasClass("reaction-summary-item-group"))
}

func TestLabels_EmptyRendersPlaceholderOnly(t *testing.T) {
	nodes := Labels(nil)
	require.Len(t, nodes, 1)
	require.Equal(t, NoneYet, nodes[0].TextContent())

	doc := view.NewPageDocument()
	issue := &story.IssueRecord{Number: 1, State: story.StateOpen, Labels: []story.Label{}}
	require.NoError(t, newRenderer(nil).RenderIssue(context.Background(), doc, issue))

	region, _ := doc.Region(view.LabelsList)
	require.Empty(t, region.FindClass("Label"))
	require.Equal(t, NoneYet, doc.Text(view.LabelsList))
}

func TestLabels_ColorAndTooltip(t *testing.T) {
	nodes := Labels([]story.Label{
		{Name: "bug", Color: "d73a4a", Description: "Something isn't working"},
		{Name: "haunted", Color: "5319e7"},
	})
	require.Len(t, nodes, 2)

	style, _ := nodes[0].Get("style")
	require.Equal(t, "background-color: #d73a4a;", style)
	title, ok := nodes[0].Get("title")
	require.True(t, ok)
	require.Equal(t, "Something isn't working", title)

	_, ok = nodes[1].Get("title")
	require.False(t, ok)
}

func TestSidebarPlaceholders(t *testing.T) {
	require.Equal(t, NoneYet, Assignees(nil)[0].TextContent())
	require.Equal(t, NoMilestone, Milestone(nil).TextContent())
	require.Empty(t, Participants(nil))
	require.Equal(t, "0", ParticipantCount(nil).TextContent())
	require.Equal(t, "v2.13.0", Milestone(&story.Milestone{Title: "v2.13.0"}).TextContent())
}

func TestStateBadge(t *testing.T) {
	open := StateBadge(story.StateOpen)
	require.Equal(t, []string{"State", "State--open"}, open.Classes)
	icon, _ := open.Get("data-icon")
	require.Equal(t, "issue-opened", icon)
	require.Equal(t, "Open", open.TextContent())

	closed := StateBadge(story.StateClosed)
	icon, _ = closed.Get("data-icon")
	require.Equal(t, "issue-closed", icon)
	require.Equal(t, "Closed", closed.TextContent())
}

func TestTimestamp(t *testing.T) {
	created := now.Add(-3 * time.Hour)
	n := Timestamp(created, now)
	require.Equal(t, "relative-time", n.Tag)
	require.Equal(t, "3 hours ago", n.TextContent())
	dt, _ := n.Get("datetime")
	require.Equal(t, reltime.Machine(created), dt)
	title, _ := n.Get("title")
	require.Equal(t, reltime.Absolute(created), title)
}

func TestRenderIssue_UUIDEndToEnd(t *testing.T) {
	issue := embedded(t, "uuid")
	doc := view.NewPageDocument()
	require.NoError(t, newRenderer(nil).RenderIssue(context.Background(), doc, issue))

	require.Equal(t, issue.Title, doc.Text(view.IssueTitle))
	require.Equal(t, "#917", doc.Text(view.IssueNumber))
	require.Equal(t, "Closed", doc.Text(view.IssueState))
	require.Equal(t, NoMilestone, doc.Text(view.MilestoneInfo))
	require.Equal(t, NoneYet, doc.Text(view.AssigneesList))
	require.Equal(t, "5", doc.Text(view.ParticipantCount))

	timeline, _ := doc.Region(view.CommentsTimeline)
	blocks := timeline.FindClass("timeline-comment-wrapper")
	require.Len(t, blocks, 5)
	for i, block := range blocks {
		c := issue.Comments[i]
		require.Equal(t, c.Author.Username, block.First("author-name").TextContent())

		var want []string
		for _, r := range c.Reactions.Visible() {
			want = append(want, string(r.Kind))
		}
		require.Equal(t, want, kinds(block.First("reaction-summary-item-group")))
	}
}

func TestRenderIssue_Idempotent(t *testing.T) {
	issue := embedded(t, "midnight")
	r := newRenderer(nil)

	once := view.NewPageDocument()
	require.NoError(t, r.RenderIssue(context.Background(), once, issue))

	twice := view.NewPageDocument()
	require.NoError(t, r.RenderIssue(context.Background(), twice, issue))
	require.NoError(t, r.RenderIssue(context.Background(), twice, issue))

	require.Equal(t, once, twice)
}

func TestRenderIssue_MissingTargetSkipsOnlyThatStep(t *testing.T) {
	doc := view.NewDocument(view.IssueTitle, view.LabelsList)
	err := newRenderer(nil).RenderIssue(context.Background(), doc, embedded(t, "uuid"))

	require.ErrorIs(t, err, view.ErrMissingTarget)
	require.Contains(t, err.Error(), "comments-timeline")
	require.NotEmpty(t, doc.Text(view.IssueTitle))
	require.Contains(t, doc.Text(view.LabelsList), "bug")
}

func TestRenderIssue_EmptyBodyPlaceholder(t *testing.T) {
	doc := view.NewPageDocument()
	issue := &story.IssueRecord{Number: 2, State: story.StateOpen}
	require.NoError(t, newRenderer(nil).RenderIssue(context.Background(), doc, issue))
	require.Equal(t, EmptyBody, doc.Text(view.IssueBody))
	require.Empty(t, doc.Text(view.CommentsTimeline))
}

func TestComments_ReplyHighlight(t *testing.T) {
	comments := []story.Comment{
		{Author: story.UserRef{Username: "a"}, Body: "plain", CreatedAt: now},
		{Author: story.UserRef{Username: "b"}, Body: "\n  @a hi", CreatedAt: now},
	}

	on := newRenderer(flags.New(nil)).Comments(context.Background(), comments, now)
	require.False(t, on[0].HasClass("reply"))
	require.True(t, on[1].HasClass("reply"))

	off := newRenderer(flags.New(map[string]bool{flags.FlagReplyHighlight: false})).Comments(context.Background(), comments, now)
	require.False(t, off[1].HasClass("reply"))
}

func TestComments_MarkdownInOrderAndFallback(t *testing.T) {
	md := &mockMarkdown{}
	md.On("Render", "one").Return("<1>", nil)
	md.On("Render", "two").Return("", errors.New("bad markdown"))
	md.On("Render", "three").Return("<3>", nil)

	r := New(Options{Markdown: md, Clock: reltime.FixedClock(now)})
	comments := []story.Comment{{Body: "one"}, {Body: "two"}, {Body: "three"}}
	blocks := r.Comments(context.Background(), comments, now)

	require.Len(t, blocks, 3)
	require.Equal(t, "<1>", blocks[0].First("comment-body").TextContent())
	require.Equal(t, "two", blocks[1].First("comment-body").TextContent())
	require.Equal(t, view.TagMarkup, blocks[2].First("markdown-body").Tag)
	require.True(t, strings.HasPrefix(blocks[2].First("comment-body").TextContent(), "<3>"))
	md.AssertExpectations(t)
}

func TestPreRender_ReturnsFailures(t *testing.T) {
	md := &mockMarkdown{}
	md.On("Render", "one").Return("<1>", nil)
	md.On("Render", "two").Return("", errors.New("bad markdown"))

	r := New(Options{Markdown: md, Clock: reltime.FixedClock(now)})
	bodies, err := r.preRender(context.Background(), []story.Comment{{Body: "one"}, {Body: "two"}, {}})

	require.Len(t, bodies, 3)
	require.ErrorContains(t, err, "comment 1: bad markdown")
	require.Equal(t, "two", bodies[1].TextContent())
	require.Equal(t, EmptyBody, bodies[2].TextContent())
}

func TestPreRender_CancelledContextShowsRawText(t *testing.T) {
	md := &mockMarkdown{}
	r := New(Options{Markdown: md, Clock: reltime.FixedClock(now)})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bodies, err := r.preRender(ctx, []story.Comment{{Body: "**boo**"}})

	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, "**boo**", bodies[0].TextContent())
	require.True(t, bodies[0].HasClass("markdown-body"))
	md.AssertNotCalled(t, "Render", mock.Anything)
}

func TestThemeToggle(t *testing.T) {
	n := ThemeToggle("dark", "☀️")
	require.True(t, n.HasClass("theme-toggle"))
	require.Equal(t, "☀️", n.TextContent())
	mode, _ := n.Get("data-mode")
	require.Equal(t, "dark", mode)
}

func TestSetMarkdown_AppliesToNextPass(t *testing.T) {
	md := &mockMarkdown{}
	md.On("Render", "body").Return("rendered body", nil)

	r := newRenderer(nil)
	doc := view.NewPageDocument()
	issue := &story.IssueRecord{Number: 3, State: story.StateOpen, Body: "body"}

	require.NoError(t, r.RenderIssue(context.Background(), doc, issue))
	require.Contains(t, doc.Text(view.IssueBody), "body")

	r.SetMarkdown(md)
	require.NoError(t, r.RenderIssue(context.Background(), doc, issue))
	require.Contains(t, doc.Text(view.IssueBody), "rendered body")

	r.SetMarkdown(nil)
	require.NoError(t, r.RenderIssue(context.Background(), doc, issue))
	require.NotContains(t, doc.Text(view.IssueBody), "rendered")
	md.AssertExpectations(t)
}
