// Package render turns an issue record into document regions. Each field
// renderer owns one or more regions and fully replaces their content on
// every pass, so rendering the same record twice yields the same document.
package render

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/spooky/internal/flags"
	"github.com/zjrosen/spooky/internal/log"
	"github.com/zjrosen/spooky/internal/reltime"
	"github.com/zjrosen/spooky/internal/story"
	"github.com/zjrosen/spooky/internal/tracing"
	"github.com/zjrosen/spooky/internal/view"
)

// Markdown converts markdown source to display-ready output. Implementations
// must be safe for concurrent use.
type Markdown interface {
	Render(markdown string) (string, error)
}

// Plain is a Markdown that returns the source unchanged.
type Plain struct{}

// Render implements Markdown.
func (Plain) Render(markdown string) (string, error) { return markdown, nil }

// Placeholder texts.
const (
	NoneYet       = "None yet"
	NoMilestone   = "No milestone"
	EmptyBody     = "No description provided."
	preRenderJobs = 4
)

// Options configures a Renderer.
type Options struct {
	Markdown Markdown
	Clock    reltime.Clock
	Flags    *flags.Registry
	Tracer   trace.Tracer
}

// Renderer holds the collaborators the field renderers share.
type Renderer struct {
	md     Markdown
	clock  reltime.Clock
	flags  *flags.Registry
	tracer trace.Tracer
}

// New creates a Renderer. Missing options fall back to plain markdown, the
// real clock and a no-op tracer.
func New(opts Options) *Renderer {
	r := &Renderer{md: opts.Markdown, clock: opts.Clock, flags: opts.Flags, tracer: tracing.OrNoop(opts.Tracer)}
	if r.md == nil {
		r.md = Plain{}
	}
	if r.clock == nil {
		r.clock = reltime.RealClock{}
	}
	return r
}

// SetMarkdown swaps the markdown converter used by later passes. A nil md
// restores Plain.
func (r *Renderer) SetMarkdown(md Markdown) {
	if md == nil {
		md = Plain{}
	}
	r.md = md
}

// RenderIssue runs the full render pass. A missing region skips only the
// step that writes it; the joined errors are returned after every step ran.
func (r *Renderer) RenderIssue(ctx context.Context, doc *view.Document, issue *story.IssueRecord) error {
	ctx, span := r.tracer.Start(ctx, tracing.SpanRenderIssue,
		trace.WithAttributes(
			attribute.Int(tracing.AttrIssueNumber, issue.Number),
			attribute.Int(tracing.AttrCommentCount, len(issue.Comments)),
		))

	now := r.clock.Now()
	p := &pass{doc: doc, span: span}

	r.header(p, issue, now)
	r.body(p, issue, now)
	p.replace(view.IssueReactions, Reactions(issue.Reactions))
	p.replace(view.AssigneesList, Assignees(issue.Assignees)...)
	p.replace(view.LabelsList, Labels(issue.Labels)...)
	p.replace(view.MilestoneInfo, Milestone(issue.Milestone))
	p.replace(view.ParticipantsList, Participants(issue.Participants)...)
	p.replace(view.ParticipantCount, ParticipantCount(issue.Participants))
	p.replace(view.CommentsTimeline, r.Comments(ctx, issue.Comments, now)...)

	err := errors.Join(p.errs...)
	tracing.Finish(span, err)
	return err
}

type pass struct {
	doc  *view.Document
	span trace.Span
	errs []error
}

func (p *pass) replace(id view.RegionID, nodes ...*view.Node) {
	if err := p.doc.Replace(id, nodes...); err != nil {
		log.Warn(log.CatRender, "Render target missing, skipping", "region", string(id))
		p.span.AddEvent(tracing.EventTargetMissing, trace.WithAttributes(attribute.String("region", string(id))))
		p.errs = append(p.errs, err)
	}
}

// markdown renders src, falling back to the raw text when the converter
// fails so a bad document never blanks the page.
func (r *Renderer) markdown(src string) *view.Node {
	n, err := r.renderMarkdown(src)
	if err != nil {
		log.ErrorErr(log.CatRender, "Markdown render failed", err)
	}
	return n
}

// renderMarkdown converts src, falling back to the raw text on error.
func (r *Renderer) renderMarkdown(src string) (*view.Node, error) {
	out, err := r.md.Render(src)
	if err != nil {
		return view.El("pre", view.Text(src)), err
	}
	return view.Markup(out), nil
}

// Timestamp builds a relative-time element: relative text for display, the
// absolute local time as tooltip and the RFC 3339 value as datetime.
func Timestamp(t, now time.Time) *view.Node {
	return view.El("relative-time", view.Text(reltime.Format(t, now))).
		Attr("datetime", reltime.Machine(t)).
		Attr("title", reltime.Absolute(t))
}
