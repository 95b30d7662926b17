package view

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrMissingTarget is returned when a renderer addresses a region the
// document does not have.
var ErrMissingTarget = errors.New("missing render target")

// RegionID names one render target. The set below is the contract between
// the renderers and the page shell.
type RegionID string

const (
	IssueTitle       RegionID = "issue-title"
	IssueNumber      RegionID = "issue-number"
	IssueState       RegionID = "issue-state"
	IssueAuthor      RegionID = "issue-author"
	OPAuthor         RegionID = "op-author"
	IssueCreatedAt   RegionID = "issue-created-at"
	OPCreatedAt      RegionID = "op-created-at"
	IssueBody        RegionID = "issue-body"
	IssueReactions   RegionID = "issue-reactions"
	AssigneesList    RegionID = "assignees-list"
	LabelsList       RegionID = "labels-list"
	MilestoneInfo    RegionID = "milestone-info"
	ParticipantsList RegionID = "participants-list"
	ParticipantCount RegionID = "participant-count"
	CommentsTimeline RegionID = "comments-timeline"
	ThemeToggle      RegionID = "theme-toggle"
	StoryNav         RegionID = "story-nav"
)

// PageRegions lists every region of the full page in paint order.
func PageRegions() []RegionID {
	return []RegionID{
		StoryNav, ThemeToggle,
		IssueTitle, IssueNumber, IssueState, IssueAuthor, IssueCreatedAt,
		OPAuthor, OPCreatedAt, IssueBody, IssueReactions,
		CommentsTimeline,
		AssigneesList, LabelsList, MilestoneInfo, ParticipantCount, ParticipantsList,
	}
}

// StoryMarkerPrefix prefixes the body class identifying the active story.
const StoryMarkerPrefix = "story-"

// Document is the page: a title, body classes and one container per region.
type Document struct {
	title       string
	bodyClasses []string
	regions     map[RegionID]*Node
	order       []RegionID
}

// NewDocument creates a document with the given regions, each an empty
// container.
func NewDocument(ids ...RegionID) *Document {
	d := &Document{regions: make(map[RegionID]*Node, len(ids))}
	for _, id := range ids {
		if _, ok := d.regions[id]; ok {
			continue
		}
		d.regions[id] = El("div").Attr("id", string(id))
		d.order = append(d.order, id)
	}
	return d
}

// NewPageDocument creates a document with every page region.
func NewPageDocument() *Document {
	return NewDocument(PageRegions()...)
}

// Replace swaps the content of region id for nodes. Prior content is
// discarded, never appended to.
func (d *Document) Replace(id RegionID, nodes ...*Node) error {
	container, ok := d.regions[id]
	if !ok {
		return fmt.Errorf("%w: #%s", ErrMissingTarget, id)
	}
	container.Children = nil
	container.Append(nodes...)
	return nil
}

// Region returns the container for id.
func (d *Document) Region(id RegionID) (*Node, bool) {
	n, ok := d.regions[id]
	return n, ok
}

// Regions returns the region ids in paint order.
func (d *Document) Regions() []RegionID {
	return slices.Clone(d.order)
}

// Text returns the text content of region id, or "" when absent.
func (d *Document) Text(id RegionID) string {
	n, ok := d.regions[id]
	if !ok {
		return ""
	}
	return n.TextContent()
}

// SetTitle sets the page title.
func (d *Document) SetTitle(title string) { d.title = title }

// Title returns the page title.
func (d *Document) Title() string { return d.title }

// SetStoryMarker replaces any story marker class with the one for id. At
// most one marker is present afterwards.
func (d *Document) SetStoryMarker(id string) {
	d.bodyClasses = slices.DeleteFunc(d.bodyClasses, func(c string) bool {
		return strings.HasPrefix(c, StoryMarkerPrefix)
	})
	d.AddBodyClass(StoryMarkerPrefix + id)
}

// AddBodyClass adds c if absent.
func (d *Document) AddBodyClass(c string) {
	if c != "" && !slices.Contains(d.bodyClasses, c) {
		d.bodyClasses = append(d.bodyClasses, c)
	}
}

// RemoveBodyClass removes c.
func (d *Document) RemoveBodyClass(c string) {
	d.bodyClasses = slices.DeleteFunc(d.bodyClasses, func(x string) bool { return x == c })
}

// HasBodyClass reports whether the body carries c.
func (d *Document) HasBodyClass(c string) bool {
	return slices.Contains(d.bodyClasses, c)
}

// BodyClasses returns a copy of the body classes.
func (d *Document) BodyClasses() []string {
	return slices.Clone(d.bodyClasses)
}
