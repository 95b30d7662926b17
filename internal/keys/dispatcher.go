package keys

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/spooky/internal/log"
)

// Action is what a key press asks the app to do.
type Action int

const (
	ActionNone Action = iota
	ActionToggleTheme
	ActionJumpStory
	ActionNextStory
	ActionPrevStory
	ActionNotice
	ActionGoToArmed
	ActionToggleHelp
	ActionDismiss
	ActionCopyLocation
	ActionBack
	ActionForward
	ActionFocusLocation
	ActionScroll
	ActionQuit
)

// Notices shown for shortcuts that have no effect in the simulation.
const (
	NoticeEdit          = "Editing is unavailable in simulated mode"
	NoticeSubscribe     = "Subscribing is unavailable in simulated mode"
	NoticeGoToIssues    = "Go to issues: unavailable in simulated mode"
	NoticeGoToCode      = "Go to code: unavailable in simulated mode"
	NoticeGoToPulls     = "Go to pull requests: unavailable in simulated mode"
	NoticeGoToDashboard = "Go to dashboard: unavailable in simulated mode"
)

var goToNotices = map[string]string{
	"i": NoticeGoToIssues,
	"c": NoticeGoToCode,
	"p": NoticeGoToPulls,
	"h": NoticeGoToDashboard,
}

// Result is the outcome of one key press.
type Result struct {
	Action Action
	// Index is the 1-based story position for ActionJumpStory.
	Index int
	// Notice is the text for ActionNotice.
	Notice string
}

// Dispatcher maps key presses to actions. Its only state is the armed
// "g" prefix, which lasts for exactly one following key.
type Dispatcher struct {
	keys  KeyMap
	armed bool
}

// NewDispatcher creates a dispatcher over km.
func NewDispatcher(km KeyMap) *Dispatcher {
	return &Dispatcher{keys: km}
}

// Armed reports whether a "g" prefix is waiting for its second key.
func (d *Dispatcher) Armed() bool { return d.armed }

// Dispatch resolves msg. Single-key shortcuts are ignored while a text
// input has focus; modifier chords are not.
func (d *Dispatcher) Dispatch(msg tea.KeyMsg, inputFocused bool) Result {
	switch {
	case key.Matches(msg, d.keys.ToggleTheme):
		d.armed = false
		return Result{Action: ActionToggleTheme}
	case key.Matches(msg, d.keys.JumpStory):
		d.armed = false
		return Result{Action: ActionJumpStory, Index: digit(msg)}
	}

	if inputFocused {
		return Result{}
	}

	if d.armed {
		d.armed = false
		if notice, ok := goToNotices[msg.String()]; ok {
			return Result{Action: ActionNotice, Notice: notice}
		}
		log.Debug(log.CatKeys, "Go-to sequence cancelled", "key", msg.String())
	}

	switch {
	case key.Matches(msg, d.keys.GoTo):
		d.armed = true
		return Result{Action: ActionGoToArmed}
	case key.Matches(msg, d.keys.Edit):
		return Result{Action: ActionNotice, Notice: NoticeEdit}
	case key.Matches(msg, d.keys.Subscribe):
		return Result{Action: ActionNotice, Notice: NoticeSubscribe}
	case key.Matches(msg, d.keys.Help):
		return Result{Action: ActionToggleHelp}
	case key.Matches(msg, d.keys.Escape):
		return Result{Action: ActionDismiss}
	case key.Matches(msg, d.keys.Copy):
		return Result{Action: ActionCopyLocation}
	case key.Matches(msg, d.keys.Back):
		return Result{Action: ActionBack}
	case key.Matches(msg, d.keys.Forward):
		return Result{Action: ActionForward}
	case key.Matches(msg, d.keys.Location):
		return Result{Action: ActionFocusLocation}
	case key.Matches(msg, d.keys.NextStory):
		return Result{Action: ActionNextStory}
	case key.Matches(msg, d.keys.PrevStory):
		return Result{Action: ActionPrevStory}
	case key.Matches(msg, d.keys.Up, d.keys.Down, d.keys.PageUp, d.keys.PageDown):
		return Result{Action: ActionScroll}
	case key.Matches(msg, d.keys.Quit):
		return Result{Action: ActionQuit}
	}
	return Result{}
}

func digit(msg tea.KeyMsg) int {
	if len(msg.Runes) == 0 {
		return 0
	}
	r := msg.Runes[len(msg.Runes)-1]
	if r < '1' || r > '9' {
		return 0
	}
	return int(r - '0')
}
