package render

import (
	"strconv"

	"github.com/zjrosen/spooky/internal/story"
	"github.com/zjrosen/spooky/internal/view"
)

// Reactions builds the reaction group: one item per kind with a positive
// count, in canonical order. Absent counts give an empty group.
func Reactions(rc story.ReactionCounts) *view.Node {
	group := view.El("div").Class("reaction-summary-item-group")
	for _, r := range rc.Visible() {
		group.Append(view.El("a",
			view.El("span", view.Text(r.Kind.Glyph())).Class("reaction-summary-item-emoji"),
			view.El("span", view.Text(strconv.Itoa(r.Count))).Class("reaction-summary-item-count"),
		).Class("reaction-summary-item").Attr("data-kind", string(r.Kind)))
	}
	return group
}
