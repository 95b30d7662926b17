// Package app contains the root application model.
package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/spooky/internal/config"
	"github.com/zjrosen/spooky/internal/flags"
	"github.com/zjrosen/spooky/internal/keys"
	"github.com/zjrosen/spooky/internal/log"
	"github.com/zjrosen/spooky/internal/pubsub"
	"github.com/zjrosen/spooky/internal/reltime"
	"github.com/zjrosen/spooky/internal/render"
	"github.com/zjrosen/spooky/internal/router"
	"github.com/zjrosen/spooky/internal/story"
	"github.com/zjrosen/spooky/internal/theme"
	"github.com/zjrosen/spooky/internal/tracing"
	"github.com/zjrosen/spooky/internal/ui/help"
	"github.com/zjrosen/spooky/internal/ui/markdown"
	"github.com/zjrosen/spooky/internal/ui/page"
	"github.com/zjrosen/spooky/internal/ui/styles"
	"github.com/zjrosen/spooky/internal/ui/toaster"
	"github.com/zjrosen/spooky/internal/view"
	"github.com/zjrosen/spooky/internal/watcher"
)

// LoadingStatus is shown while an async loader runs.
const LoadingStatus = "Summoning stories..."

const (
	// clockInterval is how often relative times are refreshed.
	clockInterval = time.Minute
	// initialBodyWidth is the markdown width until the first WindowSizeMsg.
	initialBodyWidth = 78
)

// Options holds the app's collaborators. Zero values get working defaults:
// embedded stories, in-memory theme preference, real clock and clipboard.
type Options struct {
	Config     config.Config
	ConfigPath string
	Loader     story.Loader
	Store      theme.Store
	Ambient    theme.Mode
	Tracer     trace.Tracer
	Clock      reltime.Clock
	Clipboard  Clipboard
	Cache      markdown.Cache
	// Fragment is the initial location, with or without '#'.
	Fragment string
}

// NavigationState is a read-only snapshot of what is on screen.
type NavigationState struct {
	CurrentStoryID string
	ThemeMode      theme.Mode
}

type clockTickMsg time.Time

// Model is the root application state.
type Model struct {
	cfg        config.Config
	configPath string
	loader     story.Loader
	tracer     trace.Tracer
	clock      reltime.Clock
	clipboard  Clipboard
	flags      *flags.Registry
	keys       keys.KeyMap
	dispatcher *keys.Dispatcher

	// Controllers
	location *router.MemoryLocation
	renderer *render.Renderer
	router   *router.Controller
	theme    *theme.Controller
	mdCache  markdown.Cache
	mdWidth  int

	// Registry readiness and reloads (pubsub-based)
	ctx              context.Context
	cancel           context.CancelFunc
	signal           *pubsub.Signal[*story.Registry]
	registryListener *pubsub.ContinuousListener[*story.Registry]

	// File watcher for custom story files and a local fetch source
	watcherHandle   *watcher.Watcher
	watcherListener *pubsub.ContinuousListener[watcher.Event]

	// View state
	page      page.Model
	help      help.Model
	toaster   toaster.Model
	input     textinput.Model
	locating  bool
	showHelp  bool
	width     int
	height    int
	startCmds []tea.Cmd
}

// New creates the application model. A synchronous loader runs here, so the
// first frame already shows a story; an async one runs from Init.
func New(opts Options) *Model {
	cfg := opts.Config
	if cfg.DefaultStory == "" {
		cfg.DefaultStory = config.DefaultStoryID
	}
	loader := opts.Loader
	if loader == nil {
		loader = story.EmbeddedLoader{}
	}
	clock := opts.Clock
	if clock == nil {
		clock = reltime.RealClock{}
	}
	clip := opts.Clipboard
	if clip == nil {
		clip = SystemClipboard{}
	}
	store := opts.Store
	if store == nil {
		store = theme.NewMemoryStore()
	}
	mdCache := opts.Cache
	if mdCache == nil {
		mdCache = markdown.NewCache()
	}
	tracer := tracing.OrNoop(opts.Tracer)
	fl := flags.New(cfg.Flags)
	km := keys.DefaultKeyMap()

	ctx, cancel := context.WithCancel(context.Background())
	m := &Model{
		cfg:        cfg,
		configPath: opts.ConfigPath,
		loader:     loader,
		tracer:     tracer,
		clock:      clock,
		clipboard:  clip,
		flags:      fl,
		keys:       km,
		dispatcher: keys.NewDispatcher(km),
		location:   router.NewMemoryLocation(opts.Fragment),
		mdCache:    mdCache,
		ctx:        ctx,
		cancel:     cancel,
		signal:     pubsub.NewSignal[*story.Registry](),
		help:       help.New(km),
		toaster:    toaster.New(),
		input:      newLocationInput(),
	}

	m.theme = theme.New(ctx, store, opts.Ambient, tracer)
	m.renderer = render.New(render.Options{Clock: clock, Flags: fl, Tracer: tracer})
	m.router = router.New(router.Options{
		DefaultID: cfg.DefaultStory,
		Location:  m.location,
		Document:  view.NewPageDocument(),
		Renderer:  m.renderer,
		Clock:     clock,
		Flags:     fl,
		Tracer:    tracer,
	})
	m.page = page.New(m.router.Document(), styles.ForMode(m.theme.Mode()), km)
	m.setMarkdown(initialBodyWidth)
	m.applyTheme()

	if loader.Async() {
		m.router.BeginLoading()
		m.page = m.page.SetStatus(LoadingStatus)
		m.startCmds = append(m.startCmds, loadCmd(ctx, loader, tracer, cfg.DefaultStory, m.signal))
	} else {
		reg, err := loadRegistry(ctx, loader, tracer, cfg.DefaultStory)
		if err != nil {
			log.ErrorErr(log.CatStory, "Story load failed", err, "loader", loader.Name())
		}
		m.signal.Fire(reg)
		m.ready(reg)
	}
	// Subscribe after a synchronous Fire so only reloads reach the listener.
	m.registryListener = pubsub.NewContinuousListener[*story.Registry](ctx, m.signal)

	m.startWatcher()
	m.refreshFooter()
	return m
}

func newLocationInput() textinput.Model {
	ti := textinput.New()
	ti.Prompt = "# "
	ti.Placeholder = "story id"
	ti.CharLimit = 64
	return ti
}

// startWatcher watches custom story files and a local fetch source.
// Watcher failures leave the app running without reloads.
func (m *Model) startWatcher() {
	if !m.cfg.Watch.Enabled {
		return
	}
	var paths []string
	for _, s := range m.cfg.Stories {
		paths = append(paths, m.storyPath(s))
	}
	if p := m.localSourcePath(); p != "" {
		paths = append(paths, p)
	}
	if len(paths) == 0 {
		return
	}

	wcfg := watcher.DefaultConfig(paths...)
	if m.cfg.Watch.Debounce > 0 {
		wcfg.DebounceDur = m.cfg.Watch.Debounce
	}
	w, err := watcher.New(wcfg)
	if err != nil {
		log.ErrorErr(log.CatWatcher, "Watcher unavailable", err)
		return
	}
	if err := w.Start(); err != nil {
		log.ErrorErr(log.CatWatcher, "Watcher failed to start", err)
		_ = w.Stop()
		return
	}
	m.watcherHandle = w
	m.watcherListener = pubsub.NewContinuousListener[watcher.Event](m.ctx, w.Broker())
}

// localSourcePath returns the fetch source when it is a file on disk.
func (m *Model) localSourcePath() string {
	if m.cfg.Source.Mode != config.SourceFetch {
		return ""
	}
	loc := strings.TrimSpace(m.cfg.Source.Location)
	if loc == "" || strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://") {
		return ""
	}
	return absPath(strings.TrimPrefix(loc, "file://"))
}

// storyPath is the absolute path of a custom story file, as the watcher
// reports it.
func (m *Model) storyPath(s config.StoryConfig) string {
	return absPath(config.ResolvePath(m.configPath, s.Path))
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	cmds := append([]tea.Cmd{}, m.startCmds...)
	cmds = append(cmds, m.registryListener.Listen(), m.tickClock())
	if m.watcherListener != nil {
		cmds = append(cmds, m.watcherListener.Listen())
	}
	return tea.Batch(cmds...)
}

func (m *Model) tickClock() tea.Cmd {
	return tea.Tick(clockInterval, func(t time.Time) tea.Msg { return clockTickMsg(t) })
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.page = m.page.SetSize(msg.Width, msg.Height)
		m.help = m.help.SetSize(msg.Width, msg.Height)
		m.input.Width = max(msg.Width-12, 10)
		if w := m.page.BodyWidth(); w != m.mdWidth {
			m.setMarkdown(w)
			m.rerender()
		}
		m.refreshFooter()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if hit, ok := m.page.HitTest(msg); ok {
			if hit.Toggle {
				return m, m.toggleTheme()
			}
			return m, m.switchTo(hit.StoryID)
		}
		var cmd tea.Cmd
		m.page, cmd = m.page.Update(msg)
		return m, cmd

	case pubsub.Event[*story.Registry]:
		return m, tea.Batch(m.handleRegistry(msg), m.registryListener.Listen())

	case pubsub.Event[watcher.Event]:
		return m, tea.Batch(m.handleWatcher(msg.Payload), m.watcherListener.Listen())

	case loadFailedMsg:
		return m, m.notify("Failed to load stories: "+msg.err.Error(), toaster.StyleError)

	case toaster.DismissMsg:
		m.toaster = m.toaster.Update(msg)
		return m, nil

	case clockTickMsg:
		m.rerender()
		return m, m.tickClock()
	}

	if m.locating {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	res := m.dispatcher.Dispatch(msg, m.locating)

	switch res.Action {
	case keys.ActionToggleTheme:
		return m, m.toggleTheme()
	case keys.ActionJumpStory:
		before := m.router.Current()
		if m.router.JumpTo(res.Index) {
			m.afterNavigate(before)
		}
		return m, nil
	}

	if m.locating {
		return m.handleLocationKey(msg)
	}

	if m.showHelp {
		switch res.Action {
		case keys.ActionToggleHelp:
			m.showHelp = false
		case keys.ActionDismiss:
			m.showHelp = false
			m.toaster = m.toaster.Hide()
		case keys.ActionQuit:
			return m, tea.Quit
		}
		return m, nil
	}

	switch res.Action {
	case keys.ActionNotice:
		return m, m.notify(res.Notice, toaster.StyleInfo)
	case keys.ActionToggleHelp:
		m.showHelp = true
		m.toaster = m.toaster.Hide()
	case keys.ActionDismiss:
		m.toaster = m.toaster.Hide()
	case keys.ActionCopyLocation:
		return m, m.copyLocation()
	case keys.ActionBack:
		before := m.router.Current()
		if m.location.Back() {
			m.afterNavigate(before)
		}
	case keys.ActionForward:
		before := m.router.Current()
		if m.location.Forward() {
			m.afterNavigate(before)
		}
	case keys.ActionNextStory:
		return m, m.step(1)
	case keys.ActionPrevStory:
		return m, m.step(-1)
	case keys.ActionFocusLocation:
		return m, m.focusLocation()
	case keys.ActionScroll:
		var cmd tea.Cmd
		m.page, cmd = m.page.Update(msg)
		return m, cmd
	case keys.ActionQuit:
		return m, tea.Quit
	}
	return m, nil
}

// handleLocationKey edits the location bar. Enter navigates, Esc cancels.
func (m *Model) handleLocationKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		target := router.NormalizeFragment(m.input.Value())
		m.blurLocation()
		before := m.router.Current()
		m.location.Navigate(target)
		m.afterNavigate(before)
		if target != "" && target != m.router.Current() {
			return m, m.notify(fmt.Sprintf("No story %q, showing %s", target, m.router.Current()), toaster.StyleWarn)
		}
		return m, nil
	case tea.KeyEsc:
		m.blurLocation()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) focusLocation() tea.Cmd {
	if !m.flags.Enabled(flags.FlagLocationBar) {
		return nil
	}
	m.locating = true
	current := m.location.Fragment()
	if current == "" {
		current = m.router.Current()
	}
	m.input.SetValue(current)
	m.input.CursorEnd()
	m.refreshFooter()
	return m.input.Focus()
}

func (m *Model) blurLocation() {
	m.locating = false
	m.input.Blur()
	m.refreshFooter()
}

func (m *Model) handleRegistry(ev pubsub.Event[*story.Registry]) tea.Cmd {
	switch ev.Type {
	case pubsub.ReadyEvent:
		return m.ready(ev.Payload)
	case pubsub.ChangedEvent:
		before := m.router.Current()
		if err := m.addCustom(ev.Payload); err != nil {
			log.Warn(log.CatStory, "Custom stories incomplete after reload", "error", err.Error())
		}
		if err := m.router.Reload(ev.Payload); err != nil {
			log.ErrorErr(log.CatRouter, "Registry reload failed", err)
			return m.notify("Reload failed: "+err.Error(), toaster.StyleError)
		}
		m.afterNavigate(before)
		return m.notify("Stories reloaded", toaster.StyleSuccess)
	}
	return nil
}

// ready installs the first registry and registers configured custom stories.
func (m *Model) ready(reg *story.Registry) tea.Cmd {
	var cmd tea.Cmd
	if err := m.addCustom(reg); err != nil {
		cmd = m.notify("Some custom stories failed to load", toaster.StyleWarn)
	}
	if err := m.router.RegistryReady(reg); err != nil {
		log.ErrorErr(log.CatRouter, "Initial resolve failed", err)
	}
	m.page = m.page.SetStatus("")
	m.afterNavigate("")
	return cmd
}

func (m *Model) handleWatcher(ev watcher.Event) tea.Cmd {
	if ev.Type == watcher.WatcherError {
		log.Warn(log.CatWatcher, "Watcher error received", "error", ev.Error)
		return nil
	}
	if m.router.State() != router.StateReady {
		return nil
	}

	if ev.Path == m.localSourcePath() {
		log.Info(log.CatWatcher, "Story source changed, reloading", "path", ev.Path)
		return loadCmd(m.ctx, m.loader, m.tracer, m.cfg.DefaultStory, m.signal)
	}

	for _, s := range m.cfg.Stories {
		if m.storyPath(s) != ev.Path {
			continue
		}
		e, err := customEntry(m.configPath, s)
		if err != nil {
			log.ErrorErr(log.CatStory, "Reloading custom story failed", err, "id", s.ID)
			return m.notify("Could not reload "+s.ID+": "+err.Error(), toaster.StyleError)
		}
		if _, err := m.router.Register(e); err != nil {
			log.ErrorErr(log.CatStory, "Registering reloaded story failed", err, "id", s.ID)
			return m.notify("Could not reload "+s.ID, toaster.StyleError)
		}
		m.afterNavigate(m.router.Current())
		return m.notify("Reloaded "+e.DisplayName, toaster.StyleSuccess)
	}
	return nil
}

// afterNavigate repaints the page after the router may have activated a
// different story. A new story starts scrolled to the top.
func (m *Model) afterNavigate(before string) {
	m.page = m.page.Refresh()
	if m.router.Current() != before {
		m.page = m.page.GotoTop()
	}
	if reg := m.router.Registry(); reg != nil {
		names := make([]string, 0, reg.Len())
		for _, e := range reg.Entries() {
			names = append(names, e.DisplayName)
		}
		m.help = m.help.SetStories(names)
	}
}

func (m *Model) switchTo(id string) tea.Cmd {
	before := m.router.Current()
	if err := m.router.SwitchTo(id); err != nil {
		log.ErrorErr(log.CatRouter, "Story switch failed", err, "id", id)
		return nil
	}
	m.afterNavigate(before)
	return nil
}

// step moves delta stories along the nav, wrapping at either end.
func (m *Model) step(delta int) tea.Cmd {
	reg := m.router.Registry()
	if reg == nil || reg.Len() == 0 {
		return nil
	}
	ids := reg.IDs()
	i := 0
	for j, id := range ids {
		if id == m.router.Current() {
			i = j
			break
		}
	}
	next := ((i+delta)%len(ids) + len(ids)) % len(ids)
	return m.switchTo(ids[next])
}

func (m *Model) toggleTheme() tea.Cmd {
	mode, err := m.theme.Toggle(m.ctx)
	m.applyTheme()
	m.setMarkdown(m.page.BodyWidth())
	m.rerender()
	if err != nil {
		return m.notify("Theme changed but not saved: "+err.Error(), toaster.StyleWarn)
	}
	log.Debug(log.CatUI, "Theme toggled", "mode", string(mode))
	return nil
}

// applyTheme updates the toggle region and the page palette.
func (m *Model) applyTheme() {
	mode := m.theme.Mode()
	toggle := render.ThemeToggle(string(mode), m.theme.Glyph())
	if err := m.router.Document().Replace(view.ThemeToggle, toggle); err != nil {
		log.Warn(log.CatUI, "Theme toggle target missing", "error", err.Error())
	}
	m.page = m.page.SetStyles(styles.ForMode(mode))
}

func (m *Model) markdownStyle() string {
	switch m.cfg.UI.MarkdownStyle {
	case "", "auto":
		return string(m.theme.Mode())
	default:
		return m.cfg.UI.MarkdownStyle
	}
}

// setMarkdown rebuilds the markdown converter for width. The shared cache
// keeps output for widths and styles seen before.
func (m *Model) setMarkdown(width int) {
	m.mdWidth = width
	md, err := markdown.New(width, m.markdownStyle(), m.mdCache)
	if err != nil {
		log.ErrorErr(log.CatRender, "Markdown renderer unavailable, using plain text", err)
		m.renderer.SetMarkdown(nil)
		return
	}
	m.renderer.SetMarkdown(md)
}

func (m *Model) rerender() {
	if err := m.router.Rerender(); err != nil {
		log.ErrorErr(log.CatRender, "Rerender failed", err)
	}
	m.page = m.page.Refresh()
}

func (m *Model) copyLocation() tea.Cmd {
	id := m.router.Current()
	if id == "" {
		return nil
	}
	text := "#" + id
	if err := m.clipboard.Copy(text); err != nil {
		log.ErrorErr(log.CatUI, "Clipboard copy failed", err)
		return m.notify("Could not copy location", toaster.StyleError)
	}
	return m.notify("Copied "+text, toaster.StyleSuccess)
}

func (m *Model) notify(message string, style toaster.Style) tea.Cmd {
	var cmd tea.Cmd
	m.toaster, cmd = m.toaster.Show(message, style)
	return cmd
}

func (m *Model) refreshFooter() {
	switch {
	case m.locating:
		m.page = m.page.SetFooter(m.input.View())
	case m.cfg.UI.ShowFooter:
		m.page = m.page.SetFooter(footerText(m.keys.ShortHelp(), m.width))
	default:
		m.page = m.page.SetFooter("")
	}
}

func footerText(bindings []key.Binding, width int) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	text := strings.Join(parts, " • ")
	if width > 0 {
		text = styles.TruncateString(text, max(width-8, 4))
	}
	return text
}

// View implements tea.Model.
func (m *Model) View() string {
	pg := m.page
	if m.locating {
		pg = pg.SetFooter(m.input.View())
	}
	out := pg.View()
	if m.showHelp {
		out = m.help.Overlay(out)
	}
	if m.toaster.Visible() {
		out = m.toaster.Overlay(out, m.width, m.height)
	}
	return zone.Scan(out)
}

// Fit sizes the page to width and to the height of the whole story, so a
// single frame shows everything. Used by the render command.
func (m *Model) Fit(width int) {
	m.Update(tea.WindowSizeMsg{Width: width, Height: 40})
	if h := m.page.FitHeight(); h > 0 {
		m.Update(tea.WindowSizeMsg{Width: width, Height: h})
	}
}

// State returns a snapshot of the current story and theme.
func (m *Model) State() NavigationState {
	return NavigationState{
		CurrentStoryID: m.router.Current(),
		ThemeMode:      m.theme.Mode(),
	}
}

// Document returns the rendered document, for tests and the render command.
func (m *Model) Document() *view.Document {
	return m.router.Document()
}

// Close releases resources held by the application.
func (m *Model) Close() error {
	m.cancel()
	m.router.Close()
	m.signal.Close()
	if m.watcherHandle != nil {
		if err := m.watcherHandle.Stop(); err != nil {
			return err
		}
	}
	return nil
}
