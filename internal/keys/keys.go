// Package keys contains keybinding definitions and the shortcut dispatcher.
package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings for the issue page.
type KeyMap struct {
	// Chords, honored even while the location bar has focus.
	ToggleTheme key.Binding
	JumpStory   key.Binding

	// Navigation
	Up        key.Binding
	Down      key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
	NextStory key.Binding
	PrevStory key.Binding
	Back      key.Binding
	Forward   key.Binding
	Location  key.Binding

	// Simulated GitHub actions
	Edit      key.Binding
	Subscribe key.Binding
	GoTo      key.Binding
	Copy      key.Binding

	// General
	Help   key.Binding
	Escape key.Binding
	Quit   key.Binding
}

// DefaultKeyMap returns the default keybindings. The modifier is alt, the
// one terminals reliably deliver alongside shift and digits. There is no
// ctrl+digit key and ctrl+d is page down, so chords have no ctrl form.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		ToggleTheme: key.NewBinding(
			key.WithKeys("alt+D"),
			key.WithHelp("alt+D", "toggle theme"),
		),
		JumpStory: key.NewBinding(
			key.WithKeys("alt+1", "alt+2", "alt+3", "alt+4", "alt+5", "alt+6", "alt+7", "alt+8", "alt+9"),
			key.WithHelp("alt+1-9", "jump to story"),
		),

		// Navigation
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d", " "),
			key.WithHelp("pgdn", "page down"),
		),
		NextStory: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next story"),
		),
		PrevStory: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous story"),
		),
		Back: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "history back"),
		),
		Forward: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "history forward"),
		),
		Location: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "edit location"),
		),

		// Simulated GitHub actions
		Edit: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "edit title"),
		),
		Subscribe: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "subscribe"),
		),
		GoTo: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g i/c/p/h", "go to…"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy location"),
		),

		// General
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "dismiss"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns keybindings for the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.JumpStory, k.ToggleTheme, k.Help, k.Quit}
}

// FullHelp returns keybindings for the help overlay, one group per column.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.JumpStory, k.NextStory, k.PrevStory, k.Back, k.Forward, k.Location}, // Stories
		{k.Up, k.Down, k.PageUp, k.PageDown},                                   // Scrolling
		{k.Edit, k.Subscribe, k.GoTo, k.Copy},                                  // Issue
		{k.ToggleTheme, k.Help, k.Escape, k.Quit},                              // General
	}
}

// HelpSections names the FullHelp groups.
func HelpSections() []string {
	return []string{"Stories", "Scrolling", "Issue", "General"}
}
