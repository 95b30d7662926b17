// Package story holds the issue data model, the story registry and the
// loaders that build it from embedded or fetched JSON.
package story

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// ErrInvalidState is returned when an issue's state is neither open nor closed.
var ErrInvalidState = errors.New("invalid issue state")

// State is the issue state. Only two values exist.
type State string

const (
	StateOpen   State = "open"
	StateClosed State = "closed"
)

// ParseState validates s.
func ParseState(s string) (State, error) {
	switch State(s) {
	case StateOpen, StateClosed:
		return State(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidState, s)
	}
}

// Label returns the badge text, "Open" or "Closed".
func (s State) Label() string {
	if s == StateClosed {
		return "Closed"
	}
	return "Open"
}

// UserRef identifies a user by name and avatar.
type UserRef struct {
	Username  string
	AvatarURL string
}

// Label is an issue label. Color is six hex digits without '#'.
type Label struct {
	Name        string
	Color       string
	Description string
}

// Milestone is the optional issue milestone.
type Milestone struct {
	Title string
}

// Comment is one timeline entry.
type Comment struct {
	Author    UserRef
	CreatedAt time.Time
	Body      string
	Reactions ReactionCounts
}

// IsReply reports whether the body's first non-whitespace character is '@'.
// It is a cosmetic hint only; no thread structure exists.
func (c Comment) IsReply() bool {
	trimmed := strings.TrimLeftFunc(c.Body, unicode.IsSpace)
	return strings.HasPrefix(trimmed, "@")
}

// IssueRecord is one simulated issue. Records are never mutated after
// decoding; renderers only read them.
type IssueRecord struct {
	Number       int
	Title        string
	State        State
	Author       UserRef
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Body         string
	Labels       []Label
	Assignees    []UserRef
	Milestone    *Milestone
	Reactions    ReactionCounts
	Comments     []Comment
	Participants []UserRef
}

// Entry is one registered story.
type Entry struct {
	ID          string
	DisplayName string
	Description string
	Issue       *IssueRecord
	// Custom marks stories added through the registration hook.
	Custom bool
}
