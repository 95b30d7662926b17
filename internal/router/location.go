package router

import (
	"slices"
	"strings"
)

// Location is the navigable fragment, the part of a URL after '#'.
// Fragments are passed and returned without the leading '#'.
type Location interface {
	Fragment() string
	// Navigate pushes a history entry and notifies subscribers. Navigating
	// to the current fragment does nothing.
	Navigate(fragment string)
	// Replace rewrites the current entry without notifying.
	Replace(fragment string)
	// Back and Forward move through history and notify on success.
	Back() bool
	Forward() bool
	// Subscribe registers fn for fragment changes. Call the returned func
	// to unsubscribe.
	Subscribe(fn func(fragment string)) func()
}

// NormalizeFragment strips surrounding whitespace and the leading '#'.
func NormalizeFragment(s string) string {
	return strings.TrimPrefix(strings.TrimSpace(s), "#")
}

type subscription struct {
	id int
	fn func(string)
}

// MemoryLocation is an in-process Location with a browser-like history
// stack. It is not safe for concurrent use; it lives on the UI loop.
type MemoryLocation struct {
	history []string
	pos     int
	subs    []subscription
	nextID  int
}

// NewMemoryLocation starts history at initial.
func NewMemoryLocation(initial string) *MemoryLocation {
	return &MemoryLocation{history: []string{NormalizeFragment(initial)}}
}

// Fragment implements Location.
func (l *MemoryLocation) Fragment() string {
	return l.history[l.pos]
}

// Navigate implements Location.
func (l *MemoryLocation) Navigate(fragment string) {
	fragment = NormalizeFragment(fragment)
	if fragment == l.Fragment() {
		return
	}
	l.history = append(l.history[:l.pos+1], fragment)
	l.pos++
	l.notify()
}

// Replace implements Location.
func (l *MemoryLocation) Replace(fragment string) {
	l.history[l.pos] = NormalizeFragment(fragment)
}

// Back implements Location.
func (l *MemoryLocation) Back() bool {
	if !l.CanBack() {
		return false
	}
	l.pos--
	l.notify()
	return true
}

// Forward implements Location.
func (l *MemoryLocation) Forward() bool {
	if !l.CanForward() {
		return false
	}
	l.pos++
	l.notify()
	return true
}

// CanBack reports whether Back would move.
func (l *MemoryLocation) CanBack() bool { return l.pos > 0 }

// CanForward reports whether Forward would move.
func (l *MemoryLocation) CanForward() bool { return l.pos < len(l.history)-1 }

// History returns a copy of the history stack and the current position.
func (l *MemoryLocation) History() ([]string, int) {
	return slices.Clone(l.history), l.pos
}

// Subscribe implements Location.
func (l *MemoryLocation) Subscribe(fn func(string)) func() {
	id := l.nextID
	l.nextID++
	l.subs = append(l.subs, subscription{id: id, fn: fn})
	return func() {
		l.subs = slices.DeleteFunc(l.subs, func(s subscription) bool { return s.id == id })
	}
}

func (l *MemoryLocation) notify() {
	fragment := l.Fragment()
	for _, s := range slices.Clone(l.subs) {
		s.fn(fragment)
	}
}
