// Package markdown provides styled markdown rendering for the TUI.
package markdown

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"sync"

	"github.com/charmbracelet/glamour"

	"github.com/zjrosen/spooky/internal/cachemanager"
	"github.com/zjrosen/spooky/internal/log"
)

// noMarginStyle is a JSON style that removes document margins.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

// Styles accepted by New. "notty" renders without escape sequences.
const (
	StyleDark  = "dark"
	StyleLight = "light"
	StyleNoTTY = "notty"
)

// Cache holds rendered output keyed by style, width and source hash.
type Cache = cachemanager.CacheManager[string, string]

// NewCache creates a rendered-markdown cache.
func NewCache() Cache {
	return cachemanager.NewInMemoryCacheManager[string, string]("markdown", cachemanager.DefaultExpiration, cachemanager.DefaultCleanupInterval)
}

// Renderer wraps glamour with spooky's configuration. It is safe for
// concurrent use: cache hits run in parallel, glamour itself is serialized.
type Renderer struct {
	mu       sync.Mutex
	renderer *glamour.TermRenderer
	width    int
	style    string
	cache    *cachemanager.ReadThroughCache[string, string, string]
}

// New creates a markdown renderer with the given width and style. Pass a
// shared cache to reuse output across renderers; nil creates a private one.
// Use explicit styles instead of WithAutoStyle(), which queries the terminal
// and leaks the response into the input stream.
func New(width int, style string, cache Cache) (*Renderer, error) {
	if style == "" {
		style = StyleDark
	}
	if cache == nil {
		cache = NewCache()
	}

	tr, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	r := &Renderer{renderer: tr, width: width, style: style}
	r.cache = cachemanager.NewReadThroughCache(cache, r.render, false)
	return r, nil
}

// Width returns the configured word wrap width.
func (r *Renderer) Width() int { return r.width }

// Style returns the glamour style name.
func (r *Renderer) Style() string { return r.style }

// Render transforms markdown to styled terminal output.
func (r *Renderer) Render(markdown string) (string, error) {
	return r.cache.Get(context.Background(), r.key(markdown), markdown, cachemanager.DefaultExpiration)
}

func (r *Renderer) key(markdown string) string {
	sum := sha256.Sum256([]byte(markdown))
	return r.style + ":" + strconv.Itoa(r.width) + ":" + hex.EncodeToString(sum[:])
}

func (r *Renderer) render(_ context.Context, markdown string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out, err := r.renderer.Render(markdown)
	if err != nil {
		log.ErrorErr(log.CatRender, "glamour render failed", err, "style", r.style)
		return "", err
	}
	return out, nil
}
