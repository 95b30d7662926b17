package story

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func entry(id string) Entry {
	return Entry{ID: id, Issue: &IssueRecord{Number: len(id), State: StateOpen}}
}

func TestRegistry_Order(t *testing.T) {
	reg, err := NewRegistry(entry("b"), entry("a"), entry("c"))
	require.NoError(t, err)

	require.Equal(t, []string{"b", "a", "c"}, reg.IDs())
	require.Equal(t, 3, reg.Len())

	e, ok := reg.At(1)
	require.True(t, ok)
	require.Equal(t, "a", e.ID)
	require.Equal(t, "a", e.DisplayName, "display name defaults to id")

	_, ok = reg.At(3)
	require.False(t, ok)
	_, ok = reg.At(-1)
	require.False(t, ok)
}

func TestRegistry_Duplicate(t *testing.T) {
	_, err := NewRegistry(entry("a"), entry("a"))
	require.ErrorIs(t, err, ErrDuplicateStory)
}

func TestRegistry_RegisterReplacesInPlace(t *testing.T) {
	reg, err := NewRegistry(entry("a"), entry("b"))
	require.NoError(t, err)

	replacement := entry("a")
	replacement.DisplayName = "New A"
	replaced, err := reg.Register(replacement)
	require.NoError(t, err)
	require.True(t, replaced)
	require.Equal(t, []string{"a", "b"}, reg.IDs())

	got, ok := reg.Get("a")
	require.True(t, ok)
	require.Equal(t, "New A", got.DisplayName)

	replaced, err = reg.Register(entry("c"))
	require.NoError(t, err)
	require.False(t, replaced)
	require.Equal(t, []string{"a", "b", "c"}, reg.IDs())
}

func TestRegistry_RejectsInvalid(t *testing.T) {
	reg := &Registry{}
	for _, id := range []string{"", "has space", "a#b", "a/b", "a?b"} {
		_, err := reg.Register(entry(id))
		require.ErrorIs(t, err, ErrInvalidEntry, id)
	}
	_, err := reg.Register(Entry{ID: "x"})
	require.ErrorIs(t, err, ErrInvalidEntry)
	require.Zero(t, reg.Len())
}

func TestRegistry_NilSafe(t *testing.T) {
	var reg *Registry
	require.Zero(t, reg.Len())
	require.False(t, reg.Contains("a"))
	require.Nil(t, reg.IDs())
	require.Nil(t, reg.Entries())
	_, ok := reg.At(0)
	require.False(t, ok)
}

func TestRegistry_EntriesIsCopy(t *testing.T) {
	reg, err := NewRegistry(entry("a"))
	require.NoError(t, err)
	entries := reg.Entries()
	entries[0].ID = "zzz"
	require.True(t, reg.Contains("a"))
}
