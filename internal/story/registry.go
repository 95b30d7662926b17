package story

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidEntry is returned when an entry lacks an id or issue.
	ErrInvalidEntry = errors.New("invalid story entry")
	// ErrDuplicateStory is returned when NewRegistry sees an id twice.
	ErrDuplicateStory = errors.New("duplicate story id")
)

// Registry is the ordered set of stories. Iteration order is registration
// order; keyboard jumps index into it.
type Registry struct {
	entries []Entry
	index   map[string]int
}

// NewRegistry builds a registry from entries in order.
func NewRegistry(entries ...Entry) (*Registry, error) {
	r := &Registry{index: make(map[string]int, len(entries))}
	for _, e := range entries {
		if _, exists := r.index[e.ID]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateStory, e.ID)
		}
		if _, err := r.Register(e); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ValidateID checks that id can be used as a location fragment.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidEntry)
	}
	if strings.ContainsAny(id, "# \t\n/?") {
		return fmt.Errorf("%w: id %q contains a reserved character", ErrInvalidEntry, id)
	}
	return nil
}

// Register adds e, or replaces the entry with the same id in place. It
// reports whether an existing entry was replaced.
func (r *Registry) Register(e Entry) (bool, error) {
	if err := ValidateID(e.ID); err != nil {
		return false, err
	}
	if e.Issue == nil {
		return false, fmt.Errorf("%w: story %q has no issue", ErrInvalidEntry, e.ID)
	}
	if e.DisplayName == "" {
		e.DisplayName = e.ID
	}
	if r.index == nil {
		r.index = make(map[string]int)
	}
	if i, ok := r.index[e.ID]; ok {
		r.entries[i] = e
		return true, nil
	}
	r.index[e.ID] = len(r.entries)
	r.entries = append(r.entries, e)
	return false, nil
}

// Get looks up a story by id.
func (r *Registry) Get(id string) (Entry, bool) {
	if r == nil {
		return Entry{}, false
	}
	i, ok := r.index[id]
	if !ok {
		return Entry{}, false
	}
	return r.entries[i], true
}

// Contains reports whether id is registered.
func (r *Registry) Contains(id string) bool {
	_, ok := r.Get(id)
	return ok
}

// At returns the entry at zero-based position i.
func (r *Registry) At(i int) (Entry, bool) {
	if r == nil || i < 0 || i >= len(r.entries) {
		return Entry{}, false
	}
	return r.entries[i], true
}

// Len returns the number of stories.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// IDs returns story ids in registry order.
func (r *Registry) IDs() []string {
	if r == nil {
		return nil
	}
	ids := make([]string, len(r.entries))
	for i, e := range r.entries {
		ids[i] = e.ID
	}
	return ids
}

// Entries returns a copy of the entries in registry order.
func (r *Registry) Entries() []Entry {
	if r == nil {
		return nil
	}
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}
