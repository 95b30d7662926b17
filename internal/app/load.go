package app

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/spooky/internal/config"
	"github.com/zjrosen/spooky/internal/log"
	"github.com/zjrosen/spooky/internal/pubsub"
	"github.com/zjrosen/spooky/internal/story"
	"github.com/zjrosen/spooky/internal/tracing"
)

// loadFailedMsg reports a load that fell back to the error story.
type loadFailedMsg struct {
	err error
}

// loadRegistry runs loader under a story.load span. A failed load still
// yields a registry (the error story), so the page always leaves Loading.
func loadRegistry(ctx context.Context, loader story.Loader, tracer trace.Tracer, defaultID string) (*story.Registry, error) {
	ctx, span := tracer.Start(ctx, tracing.SpanStoryLoad,
		trace.WithAttributes(attribute.String(tracing.AttrLoader, loader.Name())))

	reg, err := loader.Load(ctx)
	if reg == nil {
		if err == nil {
			err = fmt.Errorf("%w: %s loader returned no registry", story.ErrLoad, loader.Name())
		}
		reg = story.ErrorRegistry(defaultID, err)
	}
	span.SetAttributes(attribute.Int(tracing.AttrStoryCount, reg.Len()))
	tracing.Finish(span, err)
	return reg, err
}

// loadCmd loads off the UI loop and publishes the registry on signal: the
// first load as ReadyEvent, later ones as ChangedEvent.
func loadCmd(ctx context.Context, loader story.Loader, tracer trace.Tracer, defaultID string, signal *pubsub.Signal[*story.Registry]) tea.Cmd {
	return func() tea.Msg {
		reg, err := loadRegistry(ctx, loader, tracer, defaultID)
		if _, fired := signal.Fired(); fired {
			signal.Update(reg)
		} else {
			signal.Fire(reg)
		}
		if err != nil {
			return loadFailedMsg{err: err}
		}
		return nil
	}
}

// customEntry reads one configured story file.
func customEntry(configPath string, s config.StoryConfig) (story.Entry, error) {
	path := config.ResolvePath(configPath, s.Path)
	e, err := story.LoadFile(path, s.ID, s.Name, s.Description)
	if err != nil {
		return story.Entry{}, fmt.Errorf("custom story %q: %w", s.ID, err)
	}
	return e, nil
}

// addCustom merges every configured story file into reg before it is
// installed, so a fragment naming a custom story resolves on first load.
func (m *Model) addCustom(reg *story.Registry) error {
	return addCustomStories(reg, m.configPath, m.cfg.Stories)
}

// addCustomStories registers each configured story into reg. Failures are
// logged and joined; the other stories still register.
func addCustomStories(reg *story.Registry, configPath string, stories []config.StoryConfig) error {
	var errs []error
	for _, s := range stories {
		e, err := customEntry(configPath, s)
		if err == nil {
			_, err = reg.Register(e)
		}
		if err != nil {
			log.ErrorErr(log.CatStory, "Custom story not registered", err, "id", s.ID)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LoadStories builds the full registry outside the UI: the loader's stories
// followed by the configured custom stories. The registry is never nil; the
// error joins the load failure with any custom story failures.
func LoadStories(ctx context.Context, cfg config.Config, configPath string, loader story.Loader, tracer trace.Tracer) (*story.Registry, error) {
	defaultID := cfg.DefaultStory
	if defaultID == "" {
		defaultID = config.DefaultStoryID
	}
	reg, err := loadRegistry(ctx, loader, tracing.OrNoop(tracer), defaultID)
	return reg, errors.Join(err, addCustomStories(reg, configPath, cfg.Stories))
}
