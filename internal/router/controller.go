// Package router owns which story is displayed. It keeps the current story
// in step with the location fragment and drives the render pass.
package router

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/spooky/internal/flags"
	"github.com/zjrosen/spooky/internal/log"
	"github.com/zjrosen/spooky/internal/reltime"
	"github.com/zjrosen/spooky/internal/render"
	"github.com/zjrosen/spooky/internal/story"
	"github.com/zjrosen/spooky/internal/tracing"
	"github.com/zjrosen/spooky/internal/view"
)

var (
	// ErrUnknownStory is returned when an id is not in the registry.
	ErrUnknownStory = errors.New("unknown story")
	// ErrNotReady is returned for activations before the registry is ready.
	ErrNotReady = errors.New("story registry not ready")
	// ErrEmptyRegistry is returned when there is nothing to fall back to.
	ErrEmptyRegistry = errors.New("story registry is empty")
)

// TitleSuffix follows the story name in the page title.
const TitleSuffix = " - Spooky GitHub Issues"

// WitchingHourClass is added to the body near midnight on the midnight story.
const WitchingHourClass = "witching-hour"

// MidnightStoryID is the story the witching hour applies to.
const MidnightStoryID = "midnight"

// State is the controller lifecycle.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "uninitialized"
	}
}

// Options configures a Controller.
type Options struct {
	DefaultID string
	Location  Location
	Document  *view.Document
	Renderer  *render.Renderer
	Clock     reltime.Clock
	Flags     *flags.Registry
	Tracer    trace.Tracer
}

// Controller is the single owner of the current story id.
type Controller struct {
	defaultID string
	location  Location
	doc       *view.Document
	renderer  *render.Renderer
	clock     reltime.Clock
	flags     *flags.Registry
	tracer    trace.Tracer

	state       State
	registry    *story.Registry
	current     string
	unsubscribe func()
}

// New creates a controller and subscribes it to location changes.
func New(opts Options) *Controller {
	c := &Controller{
		defaultID: opts.DefaultID,
		location:  opts.Location,
		doc:       opts.Document,
		renderer:  opts.Renderer,
		clock:     opts.Clock,
		flags:     opts.Flags,
		tracer:    tracing.OrNoop(opts.Tracer),
	}
	if c.location == nil {
		c.location = NewMemoryLocation("")
	}
	if c.doc == nil {
		c.doc = view.NewPageDocument()
	}
	if c.renderer == nil {
		c.renderer = render.New(render.Options{Clock: opts.Clock, Flags: opts.Flags, Tracer: opts.Tracer})
	}
	if c.clock == nil {
		c.clock = reltime.RealClock{}
	}
	c.unsubscribe = c.location.Subscribe(c.HandleLocationChange)
	return c
}

// Close detaches the controller from its location.
func (c *Controller) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
}

// BeginLoading marks an async load in flight.
func (c *Controller) BeginLoading() {
	if c.state == StateUninitialized {
		c.state = StateLoading
		log.Debug(log.CatRouter, "Waiting for story registry")
	}
}

// RegistryReady installs the loaded registry and resolves the location once.
// Calls after the first are ignored.
func (c *Controller) RegistryReady(reg *story.Registry) error {
	if c.state == StateReady {
		log.Warn(log.CatRouter, "Registry ready signalled twice, ignoring")
		return nil
	}
	c.registry = reg
	c.state = StateReady
	log.Info(log.CatRouter, "Story registry ready", "stories", reg.Len())
	return c.Resolve()
}

// Reload swaps in a rebuilt registry and resolves the location against it.
func (c *Controller) Reload(reg *story.Registry) error {
	if c.state != StateReady {
		return ErrNotReady
	}
	c.registry = reg
	log.Info(log.CatRouter, "Story registry reloaded", "stories", reg.Len())
	return c.Resolve()
}

// HandleLocationChange resolves a fragment change. Changes before Ready are
// dropped, not queued.
func (c *Controller) HandleLocationChange(fragment string) {
	if c.state != StateReady {
		log.Debug(log.CatRouter, "Dropping location change before ready", "fragment", fragment, "state", c.state.String())
		return
	}
	if err := c.Resolve(); err != nil {
		log.ErrorErr(log.CatRouter, "Resolve failed", err, "fragment", fragment)
	}
}

// Resolve activates the story named by the location fragment. An empty
// fragment means the default story. An unknown one is replaced by the
// default in the location and the default is activated.
func (c *Controller) Resolve() error {
	if c.state != StateReady {
		return ErrNotReady
	}
	id := c.location.Fragment()
	if id == "" {
		id = c.defaultID
	}
	if c.registry.Contains(id) {
		return c.Activate(id)
	}

	fallback := c.fallbackID()
	if fallback == "" {
		return ErrEmptyRegistry
	}
	log.Warn(log.CatRouter, "Story not found, falling back", "id", id, "fallback", fallback)
	c.location.Replace(fallback)
	return c.Activate(fallback)
}

func (c *Controller) fallbackID() string {
	if c.registry.Contains(c.defaultID) {
		return c.defaultID
	}
	if e, ok := c.registry.At(0); ok {
		return e.ID
	}
	return ""
}

// Activate makes id the current story and re-renders the document.
// Activating the current story again yields the same document.
func (c *Controller) Activate(id string) error {
	if c.state != StateReady {
		return ErrNotReady
	}
	entry, ok := c.registry.Get(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStory, id)
	}

	ctx, span := c.tracer.Start(context.Background(), tracing.SpanRouterActivate,
		trace.WithAttributes(attribute.String(tracing.AttrStoryID, id)))

	previous := c.current
	c.current = id
	c.doc.SetTitle(entry.DisplayName + TitleSuffix)
	c.renderNav()
	err := c.renderer.RenderIssue(ctx, c.doc, entry.Issue)
	c.doc.SetStoryMarker(id)
	c.applyWitchingHour(id)

	if previous != id {
		log.Info(log.CatRouter, "Story activated", "id", id, "previous", previous)
	}
	tracing.Finish(span, err)
	if err != nil {
		return fmt.Errorf("rendering story %q: %w", id, err)
	}
	return nil
}

// SwitchTo is an explicit navigation to id, as from a nav click.
func (c *Controller) SwitchTo(id string) error {
	if c.state != StateReady {
		return ErrNotReady
	}
	if !c.registry.Contains(id) {
		return fmt.Errorf("%w: %q", ErrUnknownStory, id)
	}
	if c.location.Fragment() == id {
		return c.Activate(id)
	}
	c.location.Navigate(id)
	return nil
}

// JumpTo switches to the nth story (1-indexed, registry order). It reports
// false and does nothing when there is no such story.
func (c *Controller) JumpTo(n int) bool {
	if c.state != StateReady {
		return false
	}
	e, ok := c.registry.At(n - 1)
	if !ok {
		return false
	}
	if err := c.SwitchTo(e.ID); err != nil {
		log.ErrorErr(log.CatRouter, "Story jump failed", err, "n", n)
	}
	return true
}

// Register adds or replaces a story at runtime. Registered stories are
// marked custom. Replacing the current story re-renders it.
func (c *Controller) Register(e story.Entry) (bool, error) {
	if c.state != StateReady {
		return false, ErrNotReady
	}
	e.Custom = true
	replaced, err := c.registry.Register(e)
	if err != nil {
		return false, err
	}
	log.Info(log.CatRouter, "Story registered", "id", e.ID, "replaced", replaced)

	if replaced && e.ID == c.current {
		return replaced, c.Activate(e.ID)
	}
	c.renderNav()
	return replaced, nil
}

// Rerender repaints the current story, e.g. after the clock moved.
func (c *Controller) Rerender() error {
	if c.current == "" {
		return nil
	}
	return c.Activate(c.current)
}

// Current returns the active story id, "" before the first activation.
func (c *Controller) Current() string { return c.current }

// CurrentEntry returns the active story.
func (c *Controller) CurrentEntry() (story.Entry, bool) {
	return c.registry.Get(c.current)
}

// State returns the lifecycle state.
func (c *Controller) State() State { return c.state }

// Registry returns the registry, nil before Ready.
func (c *Controller) Registry() *story.Registry { return c.registry }

// Document returns the document the controller renders into.
func (c *Controller) Document() *view.Document { return c.doc }

// Location returns the controller's location.
func (c *Controller) Location() Location { return c.location }

func (c *Controller) renderNav() {
	var items []*view.Node
	for _, e := range c.registry.Entries() {
		item := view.El("a", view.Text(e.DisplayName)).
			Class("story-btn").
			Attr("href", "#"+e.ID).
			Attr("data-story", e.ID)
		if e.Description != "" {
			item.Attr("title", e.Description)
		}
		if e.Custom {
			item.Class("custom")
		}
		if e.ID == c.current {
			item.Class("selected").Attr("aria-current", "page")
		}
		items = append(items, item)
	}
	if err := c.doc.Replace(view.StoryNav, items...); err != nil {
		log.Warn(log.CatRouter, "Story nav target missing", "error", err.Error())
	}
}

func (c *Controller) applyWitchingHour(id string) {
	on := id == MidnightStoryID && c.flags.Enabled(flags.FlagWitchingHour) && IsWitchingHour(c.clock.Now())
	if !on {
		c.doc.RemoveBodyClass(WitchingHourClass)
		return
	}
	if !c.doc.HasBodyClass(WitchingHourClass) {
		log.Info(log.CatRouter, "🌙 It's nearly midnight... strange things may happen...")
	}
	c.doc.AddBodyClass(WitchingHourClass)
}

// IsWitchingHour reports whether t's local time is within ten minutes of
// midnight (23:50 through 00:10 inclusive).
func IsWitchingHour(t time.Time) bool {
	t = t.Local()
	h, m := t.Hour(), t.Minute()
	return (h == 23 && m >= 50) || (h == 0 && m <= 10)
}
