package render

import (
	"strconv"
	"time"

	"github.com/zjrosen/spooky/internal/story"
	"github.com/zjrosen/spooky/internal/view"
)

// header writes title, number, state badge, author and creation time. The
// author is assumed populated.
func (r *Renderer) header(p *pass, issue *story.IssueRecord, now time.Time) {
	p.replace(view.IssueTitle, view.Text(issue.Title))
	p.replace(view.IssueNumber, view.Text("#"+strconv.Itoa(issue.Number)))
	p.replace(view.IssueState, StateBadge(issue.State))
	p.replace(view.IssueAuthor, Author(issue.Author))
	p.replace(view.IssueCreatedAt, Timestamp(issue.CreatedAt, now))
}

// StateBadge builds the open/closed badge.
func StateBadge(s story.State) *view.Node {
	icon := "issue-opened"
	if s == story.StateClosed {
		icon = "issue-closed"
	}
	return view.El("span", view.Text(s.Label())).
		Class("State", "State--"+string(s)).
		Attr("data-icon", icon)
}

// Author builds the avatar + name block linking to the user.
func Author(u story.UserRef) *view.Node {
	return view.El("a",
		Avatar(u),
		view.El("span", view.Text(u.Username)).Class("author-name"),
	).Class("author").Attr("href", "#user/"+u.Username)
}

// Avatar builds a 20px avatar image.
func Avatar(u story.UserRef) *view.Node {
	return view.El("img").Class("avatar").
		Attr("src", u.AvatarURL).
		Attr("alt", u.Username).
		Attr("width", "20").
		Attr("height", "20")
}

// body writes the opening post: author, timestamp and markdown body.
func (r *Renderer) body(p *pass, issue *story.IssueRecord, now time.Time) {
	p.replace(view.OPAuthor, Author(issue.Author))
	p.replace(view.OPCreatedAt, Timestamp(issue.CreatedAt, now))
	if issue.Body == "" {
		p.replace(view.IssueBody, view.El("p", view.Text(EmptyBody)).Class("text-muted"))
		return
	}
	p.replace(view.IssueBody, r.markdown(issue.Body).Class("markdown-body"))
}
