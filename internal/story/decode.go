package story

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/go-github/v41/github"
)

var (
	// ErrInvalidLabelColor is returned for label colors that are not six hex digits.
	ErrInvalidLabelColor = errors.New("invalid label color")
	// ErrEmptyDocument is returned when a stories document has no entries.
	ErrEmptyDocument = errors.New("stories document is empty")
)

var hexColor = regexp.MustCompile(`^[0-9a-fA-F]{6}$`)

// The wire shape follows the GitHub REST payloads: labels, milestones and
// reactions decode straight into go-github types, whose pointer fields keep
// an absent reaction distinct from a zero one.

type wireUser struct {
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

type wireComment struct {
	Author    wireUser          `json:"author"`
	CreatedAt time.Time         `json:"created_at"`
	Body      string            `json:"body"`
	Reactions *github.Reactions `json:"reactions,omitempty"`
}

type wireIssue struct {
	Number       int               `json:"number"`
	Title        string            `json:"title"`
	State        string            `json:"state"`
	Author       wireUser          `json:"author"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	Body         string            `json:"body"`
	Labels       []*github.Label   `json:"labels"`
	Assignees    []wireUser        `json:"assignees"`
	Milestone    *github.Milestone `json:"milestone"`
	Reactions    *github.Reactions `json:"reactions,omitempty"`
	Comments     []wireComment     `json:"comments"`
	Participants []wireUser        `json:"participants"`
}

type wireEntry struct {
	ID          string          `json:"id,omitempty"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Data        json.RawMessage `json:"data"`
}

// DecodeIssue parses one issue record.
func DecodeIssue(data []byte) (*IssueRecord, error) {
	var w wireIssue
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decoding issue: %w", err)
	}
	return w.record()
}

func (w wireIssue) record() (*IssueRecord, error) {
	state, err := ParseState(w.State)
	if err != nil {
		return nil, fmt.Errorf("issue #%d: %w", w.Number, err)
	}

	rec := &IssueRecord{
		Number:       w.Number,
		Title:        w.Title,
		State:        state,
		Author:       w.Author.ref(),
		CreatedAt:    w.CreatedAt,
		UpdatedAt:    w.UpdatedAt,
		Body:         w.Body,
		Assignees:    users(w.Assignees),
		Reactions:    reactionsFromWire(w.Reactions),
		Participants: users(w.Participants),
	}

	for i, l := range w.Labels {
		if l == nil {
			continue
		}
		if !hexColor.MatchString(l.GetColor()) {
			return nil, fmt.Errorf("issue #%d label %d (%s): %w: %q", w.Number, i, l.GetName(), ErrInvalidLabelColor, l.GetColor())
		}
		rec.Labels = append(rec.Labels, Label{
			Name:        l.GetName(),
			Color:       l.GetColor(),
			Description: l.GetDescription(),
		})
	}

	if w.Milestone != nil {
		rec.Milestone = &Milestone{Title: w.Milestone.GetTitle()}
	}

	if len(w.Comments) > 0 {
		rec.Comments = make([]Comment, 0, len(w.Comments))
		for _, c := range w.Comments {
			rec.Comments = append(rec.Comments, Comment{
				Author:    c.Author.ref(),
				CreatedAt: c.CreatedAt,
				Body:      c.Body,
				Reactions: reactionsFromWire(c.Reactions),
			})
		}
	}

	return rec, nil
}

func (u wireUser) ref() UserRef {
	return UserRef{Username: u.Username, AvatarURL: u.AvatarURL}
}

func users(in []wireUser) []UserRef {
	if len(in) == 0 {
		return nil
	}
	out := make([]UserRef, len(in))
	for i, u := range in {
		out[i] = u.ref()
	}
	return out
}

func reactionsFromWire(r *github.Reactions) ReactionCounts {
	if r == nil {
		return nil
	}
	rc := ReactionCounts{}
	set := func(kind ReactionKind, v *int) {
		if v != nil {
			rc[kind] = *v
		}
	}
	set(ThumbsUp, r.PlusOne)
	set(ThumbsDown, r.MinusOne)
	set(Laugh, r.Laugh)
	set(Hooray, r.Hooray)
	set(Confused, r.Confused)
	set(Heart, r.Heart)
	set(Rocket, r.Rocket)
	set(Eyes, r.Eyes)
	return rc
}

func reactionsToWire(rc ReactionCounts) *github.Reactions {
	if rc == nil {
		return nil
	}
	get := func(kind ReactionKind) *int {
		if v, ok := rc[kind]; ok {
			return github.Int(v)
		}
		return nil
	}
	return &github.Reactions{
		PlusOne:  get(ThumbsUp),
		MinusOne: get(ThumbsDown),
		Laugh:    get(Laugh),
		Hooray:   get(Hooray),
		Confused: get(Confused),
		Heart:    get(Heart),
		Rocket:   get(Rocket),
		Eyes:     get(Eyes),
	}
}

func wireUsers(in []UserRef) []wireUser {
	out := make([]wireUser, len(in))
	for i, u := range in {
		out[i] = wireUser{Username: u.Username, AvatarURL: u.AvatarURL}
	}
	return out
}

func toWire(rec *IssueRecord) wireIssue {
	w := wireIssue{
		Number:       rec.Number,
		Title:        rec.Title,
		State:        string(rec.State),
		Author:       wireUser{Username: rec.Author.Username, AvatarURL: rec.Author.AvatarURL},
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
		Body:         rec.Body,
		Labels:       make([]*github.Label, 0, len(rec.Labels)),
		Assignees:    wireUsers(rec.Assignees),
		Reactions:    reactionsToWire(rec.Reactions),
		Comments:     make([]wireComment, 0, len(rec.Comments)),
		Participants: wireUsers(rec.Participants),
	}
	for _, l := range rec.Labels {
		label := &github.Label{Name: github.String(l.Name), Color: github.String(l.Color)}
		if l.Description != "" {
			label.Description = github.String(l.Description)
		}
		w.Labels = append(w.Labels, label)
	}
	if rec.Milestone != nil {
		w.Milestone = &github.Milestone{Title: github.String(rec.Milestone.Title)}
	}
	for _, c := range rec.Comments {
		w.Comments = append(w.Comments, wireComment{
			Author:    wireUser{Username: c.Author.Username, AvatarURL: c.Author.AvatarURL},
			CreatedAt: c.CreatedAt,
			Body:      c.Body,
			Reactions: reactionsToWire(c.Reactions),
		})
	}
	return w
}

// EncodeIssue writes rec in the wire shape DecodeIssue reads.
func EncodeIssue(rec *IssueRecord) ([]byte, error) {
	return json.MarshalIndent(toWire(rec), "", "  ")
}

// DecodeDocument parses either a single issue record or a stories document
// (an object of id → {name, description, data}). Entry order follows the
// document. A single issue yields one entry with an empty ID that the caller
// must assign.
func DecodeDocument(data []byte) ([]Entry, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decoding stories document: %w", err)
	}
	if _, single := probe["number"]; single {
		rec, err := DecodeIssue(data)
		if err != nil {
			return nil, err
		}
		return []Entry{{Issue: rec}}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decoding stories document: %w", err)
	}

	var entries []Entry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decoding stories document: %w", err)
		}
		key, _ := tok.(string)

		var we wireEntry
		if err := dec.Decode(&we); err != nil {
			return nil, fmt.Errorf("decoding story %q: %w", key, err)
		}
		rec, err := DecodeIssue(we.Data)
		if err != nil {
			return nil, fmt.Errorf("story %q: %w", key, err)
		}

		id := we.ID
		if id == "" {
			id = key
		}
		entries = append(entries, Entry{
			ID:          id,
			DisplayName: we.Name,
			Description: we.Description,
			Issue:       rec,
		})
	}

	if len(entries) == 0 {
		return nil, ErrEmptyDocument
	}
	return entries, nil
}

// EncodeDocument writes entries as a stories document, keeping their order.
func EncodeDocument(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("{")
	for i, e := range entries {
		if i > 0 {
			buf.WriteString(",")
		}
		key, err := json.Marshal(e.ID)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(toWire(e.Issue))
		if err != nil {
			return nil, fmt.Errorf("encoding story %q: %w", e.ID, err)
		}
		value, err := json.Marshal(wireEntry{ID: e.ID, Name: e.DisplayName, Description: e.Description, Data: data})
		if err != nil {
			return nil, fmt.Errorf("encoding story %q: %w", e.ID, err)
		}
		buf.Write(key)
		buf.WriteString(":")
		buf.Write(value)
	}
	buf.WriteString("}")

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
