// Package theme owns the light/dark mode and its persisted preference.
package theme

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/spooky/internal/log"
	"github.com/zjrosen/spooky/internal/tracing"
)

// ErrInvalidMode is returned for values other than "light" and "dark".
var ErrInvalidMode = errors.New("invalid theme mode")

// StorageKey is the preference key the mode is persisted under.
const StorageKey = "github-theme"

// Mode is the color mode.
type Mode string

const (
	Light Mode = "light"
	Dark  Mode = "dark"
)

// ParseMode validates s.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case Light, Dark:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// Opposite returns the other mode.
func (m Mode) Opposite() Mode {
	if m == Dark {
		return Light
	}
	return Dark
}

// Glyph is the toggle indicator for mode m: a sun while dark (switch to
// light), a half moon while light.
func Glyph(m Mode) string {
	if m == Dark {
		return "☀️"
	}
	return "🌓"
}

// Store persists preferences by key.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// MemoryStore is a Store that forgets on exit.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok, nil
}

// Set implements Store.
func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Controller holds the current mode. It is the only writer of the mode and
// of its persisted value.
type Controller struct {
	store     Store
	tracer    trace.Tracer
	mode      Mode
	persisted bool
}

// New reads the persisted mode. With no valid persisted value the ambient
// mode is kept, and the indicator follows it.
func New(ctx context.Context, store Store, ambient Mode, tracer trace.Tracer) *Controller {
	if _, err := ParseMode(string(ambient)); err != nil {
		ambient = Dark
	}
	c := &Controller{store: store, tracer: tracing.OrNoop(tracer), mode: ambient}
	if store == nil {
		return c
	}

	value, ok, err := store.Get(ctx, StorageKey)
	switch {
	case err != nil:
		log.ErrorErr(log.CatTheme, "Reading theme preference failed", err)
	case !ok:
		log.Debug(log.CatTheme, "No theme preference, using ambient", "mode", string(ambient))
	default:
		mode, err := ParseMode(value)
		if err != nil {
			log.Warn(log.CatTheme, "Ignoring invalid theme preference", "value", value)
			break
		}
		c.mode = mode
		c.persisted = true
		log.Debug(log.CatTheme, "Theme preference loaded", "mode", value)
	}
	return c
}

// Mode returns the current mode.
func (c *Controller) Mode() Mode { return c.mode }

// Glyph returns the indicator for the current mode.
func (c *Controller) Glyph() string { return Glyph(c.mode) }

// Persisted reports whether the current mode came from, or was written to,
// the store.
func (c *Controller) Persisted() bool { return c.persisted }

// Toggle flips the mode and persists it. The in-memory mode flips even when
// persisting fails.
func (c *Controller) Toggle(ctx context.Context) (Mode, error) {
	_, span := c.tracer.Start(ctx, tracing.SpanThemeToggle)
	err := c.set(ctx, c.mode.Opposite())
	span.SetAttributes(attribute.String(tracing.AttrThemeMode, string(c.mode)))
	tracing.Finish(span, err)
	return c.mode, err
}

// Set switches to mode and persists it.
func (c *Controller) Set(ctx context.Context, mode Mode) error {
	if _, err := ParseMode(string(mode)); err != nil {
		return err
	}
	return c.set(ctx, mode)
}

func (c *Controller) set(ctx context.Context, mode Mode) error {
	c.mode = mode
	log.Info(log.CatTheme, "Theme changed", "mode", string(mode))
	if c.store == nil {
		return nil
	}
	if err := c.store.Set(ctx, StorageKey, string(mode)); err != nil {
		log.ErrorErr(log.CatTheme, "Persisting theme failed", err)
		return fmt.Errorf("persisting theme: %w", err)
	}
	c.persisted = true
	return nil
}
