package render

import "github.com/zjrosen/spooky/internal/view"

// ThemeToggle builds the toggle control showing glyph for the current mode.
func ThemeToggle(mode, glyph string) *view.Node {
	return view.El("button", view.Text(glyph)).
		Class("theme-toggle").
		Attr("data-mode", mode).
		Attr("aria-label", "Toggle theme").
		Attr("title", "Toggle theme (alt+D)")
}
