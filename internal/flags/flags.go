// Package flags provides feature flags read from the `flags:` config map.
// Flags are read-only after initialization and unknown flags fall back to
// their registered default.
package flags

import (
	"maps"

	"github.com/zjrosen/spooky/internal/log"
)

const (
	// FlagReplyHighlight marks comments whose body starts with "@" as replies.
	FlagReplyHighlight = "reply-highlight"

	// FlagWitchingHour tints the midnight story between 23:50 and 00:10.
	FlagWitchingHour = "witching-hour"

	// FlagLocationBar enables the "/" location bar in the TUI.
	FlagLocationBar = "location-bar"
)

// Defaults returns the value each known flag has when config omits it.
func Defaults() map[string]bool {
	return map[string]bool{
		FlagReplyHighlight: true,
		FlagWitchingHour:   true,
		FlagLocationBar:    true,
	}
}

// Registry holds feature flag state.
type Registry struct {
	flags map[string]bool
}

// New creates a Registry from a config map layered over Defaults.
func New(overrides map[string]bool) *Registry {
	merged := Defaults()
	maps.Copy(merged, overrides)
	r := &Registry{flags: merged}
	log.Debug(log.CatConfig, "Feature flags initialized", "count", len(merged), "flags", r.All())
	return r
}

// Enabled reports whether the named flag is on. Unknown flags and a nil
// registry report false.
func (r *Registry) Enabled(name string) bool {
	if r == nil || r.flags == nil {
		return false
	}
	value, exists := r.flags[name]
	if !exists {
		log.Debug(log.CatConfig, "Unknown flag accessed", "flag", name)
		return false
	}
	return value
}

// All returns a copy of all flags.
func (r *Registry) All() map[string]bool {
	if r == nil || r.flags == nil {
		return make(map[string]bool)
	}
	result := make(map[string]bool, len(r.flags))
	maps.Copy(result, r.flags)
	return result
}
