package story

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const singleIssue = `{
  "number": 7,
  "title": "Ghost in the CI",
  "state": "closed",
  "author": {"username": "casper", "avatar_url": "https://example.com/c.png"},
  "created_at": "2024-10-01T12:00:00Z",
  "updated_at": "2024-10-02T12:00:00Z",
  "body": "boo",
  "labels": [{"name": "bug", "color": "d73a4a"}],
  "assignees": [],
  "milestone": null,
  "reactions": {"+1": 3, "eyes": 5, "confused": 0},
  "comments": [
    {"author": {"username": "a"}, "created_at": "2024-10-01T13:00:00Z", "body": "first"},
    {"author": {"username": "b"}, "created_at": "2024-10-01T14:00:00Z", "body": "  @a second"}
  ],
  "participants": [{"username": "casper"}]
}`

func TestDecodeIssue(t *testing.T) {
	rec, err := DecodeIssue([]byte(singleIssue))
	require.NoError(t, err)

	require.Equal(t, 7, rec.Number)
	require.Equal(t, StateClosed, rec.State)
	require.Equal(t, "Closed", rec.State.Label())
	require.Equal(t, "casper", rec.Author.Username)
	require.Nil(t, rec.Milestone)
	require.Empty(t, rec.Assignees)
	require.Len(t, rec.Labels, 1)
	require.Empty(t, rec.Labels[0].Description)

	require.Len(t, rec.Comments, 2)
	require.Equal(t, "first", rec.Comments[0].Body)
	require.False(t, rec.Comments[0].IsReply())
	require.True(t, rec.Comments[1].IsReply())
	require.Nil(t, rec.Comments[0].Reactions, "absent reactions stay nil")
}

func TestDecodeIssue_InvalidState(t *testing.T) {
	_, err := DecodeIssue([]byte(`{"number": 1, "state": "reopened"}`))
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestDecodeIssue_InvalidLabelColor(t *testing.T) {
	for _, color := range []string{"#d73a4a", "red", "d73a4", ""} {
		doc := `{"number": 1, "state": "open", "labels": [{"name": "x", "color": "` + color + `"}]}`
		_, err := DecodeIssue([]byte(doc))
		require.ErrorIs(t, err, ErrInvalidLabelColor, color)
	}
}

func TestReactionCounts_Visible(t *testing.T) {
	rc := ReactionCounts{Eyes: 5, Confused: 0, ThumbsUp: 3}
	require.Equal(t, []Reaction{{ThumbsUp, 3}, {Eyes, 5}}, rc.Visible())
	require.Equal(t, 8, rc.Total())

	var none ReactionCounts
	require.Nil(t, none.Visible())
	require.Zero(t, none.Total())
}

func TestReactionKinds(t *testing.T) {
	order := CanonicalOrder()
	require.Equal(t, []ReactionKind{ThumbsUp, ThumbsDown, Laugh, Hooray, Confused, Heart, Rocket, Eyes}, order)
	for _, k := range order {
		require.True(t, k.Valid())
		require.NotEmpty(t, k.Glyph())
	}
	require.False(t, ReactionKind("tada").Valid())

	order[0] = Eyes
	require.Equal(t, ThumbsUp, CanonicalOrder()[0], "callers get a copy")
}

func TestDecodeDocument_SingleIssue(t *testing.T) {
	entries, err := DecodeDocument([]byte(singleIssue))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Empty(t, entries[0].ID)
	require.Equal(t, 7, entries[0].Issue.Number)
}

func TestDecodeDocument_KeepsOrder(t *testing.T) {
	doc := `{
	  "zeta": {"name": "Z", "data": {"number": 1, "state": "open"}},
	  "alpha": {"id": "renamed", "name": "A", "data": {"number": 2, "state": "open"}}
	}`
	entries, err := DecodeDocument([]byte(doc))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "zeta", entries[0].ID)
	require.Equal(t, "renamed", entries[1].ID, "explicit id wins over the key")
}

func TestDecodeDocument_Empty(t *testing.T) {
	_, err := DecodeDocument([]byte(`{}`))
	require.ErrorIs(t, err, ErrEmptyDocument)

	_, err = DecodeDocument([]byte(`not json`))
	require.Error(t, err)
}

func TestEncodeDocument_RoundTripsEmbedded(t *testing.T) {
	entries, err := Embedded()
	require.NoError(t, err)

	data, err := EncodeDocument(entries)
	require.NoError(t, err)

	again, err := DecodeDocument(data)
	require.NoError(t, err)
	require.Equal(t, entries, again)
}

func TestEmbedded(t *testing.T) {
	entries, err := Embedded()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "midnight", entries[0].ID)
	require.Equal(t, "uuid", entries[1].ID)

	uuid := entries[1].Issue
	require.Equal(t, 917, uuid.Number)
	require.Equal(t, StateClosed, uuid.State)
	require.Nil(t, uuid.Milestone)
	require.Empty(t, uuid.Assignees)
	require.Len(t, uuid.Comments, 5)
	require.Equal(t, "system", uuid.Comments[4].Author.Username)
	require.Len(t, uuid.Participants, 5)

	midnight := entries[0].Issue
	require.True(t, midnight.Comments[1].IsReply())
	require.Equal(t, []Reaction{{ThumbsUp, 31}, {Laugh, 4}, {Confused, 58}, {Eyes, 112}}, midnight.Reactions.Visible())

	entries[0].ID = "mutated"
	fresh, err := Embedded()
	require.NoError(t, err)
	require.Equal(t, "midnight", fresh[0].ID)
}
