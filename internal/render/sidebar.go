package render

import (
	"strconv"

	"github.com/zjrosen/spooky/internal/story"
	"github.com/zjrosen/spooky/internal/view"
)

func placeholder(text string) *view.Node {
	return view.El("span", view.Text(text)).Class("text-muted")
}

// Assignees builds one item per assignee, or the "None yet" placeholder.
func Assignees(users []story.UserRef) []*view.Node {
	if len(users) == 0 {
		return []*view.Node{placeholder(NoneYet)}
	}
	out := make([]*view.Node, 0, len(users))
	for _, u := range users {
		out = append(out, view.El("div",
			Avatar(u),
			view.El("a", view.Text(u.Username)).Class("assignee-link").Attr("href", "#user/"+u.Username),
		).Class("assignee-item"))
	}
	return out
}

// Labels builds one colored label per entry, or the "None yet" placeholder.
func Labels(labels []story.Label) []*view.Node {
	if len(labels) == 0 {
		return []*view.Node{placeholder(NoneYet)}
	}
	out := make([]*view.Node, 0, len(labels))
	for _, l := range labels {
		n := view.El("a", view.Text(l.Name)).
			Class("Label").
			Attr("style", "background-color: #"+l.Color+";").
			Attr("data-color", l.Color)
		if l.Description != "" {
			n.Attr("title", l.Description)
		}
		out = append(out, n)
	}
	return out
}

// Milestone builds the milestone title, or the "No milestone" placeholder.
func Milestone(m *story.Milestone) *view.Node {
	if m == nil {
		return placeholder(NoMilestone)
	}
	return view.El("a", view.Text(m.Title)).Class("milestone-title")
}

// Participants builds one avatar per participant. No participants renders
// nothing.
func Participants(users []story.UserRef) []*view.Node {
	out := make([]*view.Node, 0, len(users))
	for _, u := range users {
		out = append(out, view.El("div", Avatar(u).Attr("title", u.Username)).Class("participant-item"))
	}
	return out
}

// ParticipantCount is len(users) as text.
func ParticipantCount(users []story.UserRef) *view.Node {
	return view.Text(strconv.Itoa(len(users)))
}
