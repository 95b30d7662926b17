package page

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/spooky/internal/ui/styles"
	"github.com/zjrosen/spooky/internal/view"
)

// painter turns rendered nodes into styled terminal text.
type painter struct {
	st styles.Styles
}

// inline paints n and its descendants on one logical line. Block children
// are not separated; callers split blocks themselves.
func (p painter) inline(n *view.Node) string {
	if n == nil {
		return ""
	}
	switch {
	case n.IsText():
		return n.Text
	case n.Tag == view.TagMarkup:
		return strings.Trim(n.Text, "\n")
	case n.Tag == "img":
		return ""
	case n.HasClass("State"):
		if n.HasClass("State--closed") {
			return p.st.StateClosed.Render(n.TextContent())
		}
		return p.st.StateOpen.Render(n.TextContent())
	case n.HasClass("author-name"), n.HasClass("assignee-link"):
		return p.st.Author.Render(n.TextContent())
	case n.Tag == "relative-time":
		return p.st.Muted.Render(n.TextContent())
	case n.HasClass("Label"):
		color, _ := n.Get("data-color")
		return p.st.Label(color).Render(n.TextContent())
	case n.HasClass("text-muted"):
		return p.st.Muted.Italic(true).Render(n.TextContent())
	case n.HasClass("milestone-title"):
		return p.st.Link.Render(n.TextContent())
	case n.HasClass("reaction-summary-item-group"):
		return p.reactions(n, 0)
	}

	var b strings.Builder
	for _, c := range n.Children {
		b.WriteString(p.inline(c))
	}
	return b.String()
}

// reactions paints each reaction item as an "emoji count" pill. A positive
// width wraps pills onto further lines.
func (p painter) reactions(group *view.Node, width int) string {
	var pills []string
	for _, item := range group.FindClass("reaction-summary-item") {
		emoji := item.First("reaction-summary-item-emoji").TextContent()
		count := item.First("reaction-summary-item-count").TextContent()
		pills = append(pills, p.st.Reaction.Render(emoji+" "+count))
	}
	if width <= 0 {
		return strings.Join(pills, " ")
	}
	return flow(pills, width)
}

// lines paints each node on its own line.
func (p painter) lines(nodes []*view.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, p.inline(n))
	}
	return out
}

// flow lays items left to right separated by a space, starting a new line
// when the next item would pass width.
func flow(items []string, width int) string {
	var lines []string
	var cur string
	for _, it := range items {
		switch {
		case cur == "":
			cur = it
		case lipgloss.Width(cur)+1+lipgloss.Width(it) <= width:
			cur += " " + it
		default:
			lines = append(lines, cur)
			cur = it
		}
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return strings.Join(lines, "\n")
}
