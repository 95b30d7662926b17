package render

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zjrosen/spooky/internal/flags"
	"github.com/zjrosen/spooky/internal/log"
	"github.com/zjrosen/spooky/internal/story"
	"github.com/zjrosen/spooky/internal/view"
)

// Comments builds one block per comment in input order. Bodies are rendered
// in parallel and placed by index.
func (r *Renderer) Comments(ctx context.Context, comments []story.Comment, now time.Time) []*view.Node {
	bodies, err := r.preRender(ctx, comments)
	if err != nil {
		log.ErrorErr(log.CatRender, "Comment markdown failed, showing raw text", err)
	}
	replies := r.flags.Enabled(flags.FlagReplyHighlight)

	out := make([]*view.Node, 0, len(comments))
	for i, c := range comments {
		header := view.El("div",
			view.El("strong", Author(c.Author)),
			view.Text(" commented "),
			view.El("a", Timestamp(c.CreatedAt, now)).Class("timestamp"),
		).Class("timeline-comment-header")

		block := view.El("div",
			header,
			view.El("div", bodies[i]).Class("comment-body"),
			view.El("div", Reactions(c.Reactions)).Class("comment-reactions"),
		).Class("timeline-comment-wrapper").Attr("data-index", strconv.Itoa(i))

		if replies && c.IsReply() {
			block.Class("reply")
		}
		out = append(out, block)
	}
	return out
}

// preRender renders comment bodies with at most preRenderJobs workers. A
// failed or cancelled body falls back to its raw text; the failures are
// returned joined.
func (r *Renderer) preRender(ctx context.Context, comments []story.Comment) ([]*view.Node, error) {
	bodies := make([]*view.Node, len(comments))
	errs := make([]error, len(comments))

	var g errgroup.Group
	g.SetLimit(preRenderJobs)
	for i, c := range comments {
		g.Go(func() error {
			if c.Body == "" {
				bodies[i] = view.El("p", view.Text(EmptyBody)).Class("text-muted")
				return nil
			}
			if err := ctx.Err(); err != nil {
				bodies[i] = view.El("pre", view.Text(c.Body)).Class("markdown-body")
				errs[i] = fmt.Errorf("comment %d: %w", i, err)
				return errs[i]
			}
			n, err := r.renderMarkdown(c.Body)
			bodies[i] = n.Class("markdown-body")
			if err != nil {
				errs[i] = fmt.Errorf("comment %d: %w", i, err)
			}
			return errs[i]
		})
	}
	if err := g.Wait(); err != nil {
		return bodies, errors.Join(errs...)
	}
	return bodies, nil
}
