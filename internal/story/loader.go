package story

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/zjrosen/spooky/internal/log"
)

// ErrLoad wraps every registry load failure.
var ErrLoad = errors.New("loading stories")

// ErrorStoryTitle is the title of the degraded story shown after a failed load.
const ErrorStoryTitle = "Failed to load story"

// Loader builds the registry. Async loaders run off the UI loop and report
// readiness later; sync loaders are ready immediately.
type Loader interface {
	Load(ctx context.Context) (*Registry, error)
	Async() bool
	Name() string
}

// EmbeddedLoader serves the stories compiled into the binary.
type EmbeddedLoader struct{}

// Load implements Loader.
func (EmbeddedLoader) Load(context.Context) (*Registry, error) {
	entries, err := Embedded()
	if err != nil {
		return nil, fmt.Errorf("%w: embedded: %w", ErrLoad, err)
	}
	return NewRegistry(entries...)
}

// Async implements Loader.
func (EmbeddedLoader) Async() bool { return false }

// Name implements Loader.
func (EmbeddedLoader) Name() string { return "embedded" }

// FetchLoader reads one JSON document from a URL or file path. The document
// may be a single issue (registered as StoryID) or a stories document. When
// Base is set, fetched stories are merged over the base registry.
//
// A failed fetch never returns a nil registry: Load substitutes a one-entry
// registry holding an error story under DefaultID and returns the error
// alongside it so the caller can log it.
type FetchLoader struct {
	Location    string
	StoryID     string
	DisplayName string
	DefaultID   string
	Base        Loader
	Client      *http.Client
	Timeout     time.Duration
}

// Async implements Loader.
func (l FetchLoader) Async() bool { return true }

// Name implements Loader.
func (l FetchLoader) Name() string { return "fetch" }

// Load implements Loader.
func (l FetchLoader) Load(ctx context.Context) (*Registry, error) {
	reg, err := l.load(ctx)
	if err != nil {
		log.ErrorErr(log.CatStory, "Story fetch failed, using error story", err, "location", l.Location)
		return ErrorRegistry(l.DefaultID, err), err
	}
	return reg, nil
}

func (l FetchLoader) load(ctx context.Context) (*Registry, error) {
	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}

	data, err := l.fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	entries, err := DecodeDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	reg := &Registry{}
	if l.Base != nil {
		if reg, err = l.Base.Load(ctx); err != nil {
			return nil, fmt.Errorf("%w: base %s: %w", ErrLoad, l.Base.Name(), err)
		}
	}

	for _, e := range entries {
		if e.ID == "" {
			e.ID = l.StoryID
			if e.ID == "" {
				e.ID = l.DefaultID
			}
			e.DisplayName = l.DisplayName
		}
		if _, err := reg.Register(e); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoad, err)
		}
	}

	log.Info(log.CatStory, "Fetched stories", "location", l.Location, "count", len(entries), "total", reg.Len())
	return reg, nil
}

func (l FetchLoader) fetch(ctx context.Context) ([]byte, error) {
	loc := strings.TrimSpace(l.Location)
	switch {
	case loc == "":
		return nil, errors.New("no source location configured")
	case strings.HasPrefix(loc, "http://"), strings.HasPrefix(loc, "https://"):
		return l.fetchHTTP(ctx, loc)
	default:
		return ReadFile(strings.TrimPrefix(loc, "file://"))
	}
}

func (l FetchLoader) fetchHTTP(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: HTTP %d", url, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 8<<20))
}

// ReadFile reads a story document from disk.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from config or flags
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// LoadFile decodes a single-story file for the registration hook. A stories
// document with several entries uses its first entry.
func LoadFile(path, id, name, description string) (Entry, error) {
	data, err := ReadFile(path)
	if err != nil {
		return Entry{}, err
	}
	entries, err := DecodeDocument(data)
	if err != nil {
		return Entry{}, fmt.Errorf("%s: %w", path, err)
	}
	e := entries[0]
	e.ID = id
	if name != "" {
		e.DisplayName = name
	}
	if description != "" {
		e.Description = description
	}
	e.Custom = true
	return e, nil
}

// ErrorStory builds the degraded record shown when loading fails.
func ErrorStory(err error) *IssueRecord {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	now := time.Now()
	return &IssueRecord{
		Title:     ErrorStoryTitle,
		State:     StateOpen,
		Author:    UserRef{Username: "spooky"},
		CreatedAt: now,
		UpdatedAt: now,
		Body:      "The story data could not be loaded.\n\n```\n" + msg + "\n```",
	}
}

// ErrorRegistry is the one-entry registry substituted after a failed load.
func ErrorRegistry(id string, err error) *Registry {
	if id == "" {
		id = "error"
	}
	reg := &Registry{}
	_, _ = reg.Register(Entry{
		ID:          id,
		DisplayName: "⚠️ " + ErrorStoryTitle,
		Description: "story data unavailable",
		Issue:       ErrorStory(err),
	})
	return reg
}
