package keys

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func altKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}, Alt: true}
}

func TestDefaultKeyMap_Assignments(t *testing.T) {
	km := DefaultKeyMap()
	tests := []struct {
		name     string
		binding  key.Binding
		expected []string
	}{
		{"theme toggle is alt+shift+d", km.ToggleTheme, []string{"alt+D"}},
		{"help is ?", km.Help, []string{"?"}},
		{"go-to prefix is g", km.GoTo, []string{"g"}},
		{"quit uses q and ctrl+c", km.Quit, []string{"q", "ctrl+c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.binding.Keys())
		})
	}
	require.Len(t, km.JumpStory.Keys(), 9)
}

func TestFullHelp_HasSectionPerGroup(t *testing.T) {
	km := DefaultKeyMap()
	require.Len(t, km.FullHelp(), len(HelpSections()))
	for _, group := range km.FullHelp() {
		for _, b := range group {
			require.NotEmpty(t, b.Help().Desc)
		}
	}
}

func TestDispatch_Chords(t *testing.T) {
	d := NewDispatcher(DefaultKeyMap())

	require.Equal(t, Result{Action: ActionToggleTheme}, d.Dispatch(altKey('D'), false))
	require.Equal(t, Result{Action: ActionJumpStory, Index: 3}, d.Dispatch(altKey('3'), false))
	require.Equal(t, Result{Action: ActionJumpStory, Index: 9}, d.Dispatch(altKey('9'), true), "chords work while typing")
	require.Equal(t, Result{}, d.Dispatch(altKey('0'), false))
	require.Equal(t, Result{}, d.Dispatch(altKey('d'), false), "shift is required")
	require.Equal(t, Result{Action: ActionScroll}, d.Dispatch(tea.KeyMsg{Type: tea.KeyCtrlD}, false), "ctrl+d stays page down")
	require.Equal(t, Result{}, d.Dispatch(tea.KeyMsg{Type: tea.KeyCtrlD}, true), "ctrl+d is not a chord")
}

func TestDispatch_SingleKeysSuppressedWhileTyping(t *testing.T) {
	d := NewDispatcher(DefaultKeyMap())
	for _, r := range "tsg?y[]/q" {
		require.Equal(t, Result{}, d.Dispatch(runeKey(r), true), string(r))
	}
	require.False(t, d.Armed())
}

func TestDispatch_Notices(t *testing.T) {
	d := NewDispatcher(DefaultKeyMap())
	require.Equal(t, Result{Action: ActionNotice, Notice: NoticeEdit}, d.Dispatch(runeKey('t'), false))
	require.Equal(t, Result{Action: ActionNotice, Notice: NoticeSubscribe}, d.Dispatch(runeKey('s'), false))
}

func TestDispatch_GoToSequence(t *testing.T) {
	d := NewDispatcher(DefaultKeyMap())
	want := map[rune]string{'i': NoticeGoToIssues, 'c': NoticeGoToCode, 'p': NoticeGoToPulls, 'h': NoticeGoToDashboard}
	seen := map[string]bool{}

	for r, notice := range want {
		require.Equal(t, Result{Action: ActionGoToArmed}, d.Dispatch(runeKey('g'), false))
		require.True(t, d.Armed())
		require.Equal(t, Result{Action: ActionNotice, Notice: notice}, d.Dispatch(runeKey(r), false))
		require.False(t, d.Armed(), "one-shot")
		seen[notice] = true
	}
	require.Len(t, seen, 4, "each target has its own notice")

	require.Equal(t, Result{}, d.Dispatch(runeKey('i'), false), "i alone does nothing")
}

func TestDispatch_GoToCancelledByOtherKey(t *testing.T) {
	d := NewDispatcher(DefaultKeyMap())
	d.Dispatch(runeKey('g'), false)

	require.Equal(t, Result{Action: ActionToggleHelp}, d.Dispatch(runeKey('?'), false), "other key disarms and is processed")
	require.False(t, d.Armed())

	d.Dispatch(runeKey('g'), false)
	require.Equal(t, Result{Action: ActionGoToArmed}, d.Dispatch(runeKey('g'), false), "g re-arms")
	require.True(t, d.Armed())

	d.Dispatch(altKey('1'), false)
	require.False(t, d.Armed(), "chords disarm")
}

func TestDispatch_General(t *testing.T) {
	d := NewDispatcher(DefaultKeyMap())
	tests := []struct {
		msg  tea.KeyMsg
		want Action
	}{
		{runeKey('?'), ActionToggleHelp},
		{tea.KeyMsg{Type: tea.KeyEsc}, ActionDismiss},
		{runeKey('y'), ActionCopyLocation},
		{runeKey('['), ActionBack},
		{runeKey(']'), ActionForward},
		{runeKey('/'), ActionFocusLocation},
		{tea.KeyMsg{Type: tea.KeyTab}, ActionNextStory},
		{tea.KeyMsg{Type: tea.KeyShiftTab}, ActionPrevStory},
		{runeKey('j'), ActionScroll},
		{tea.KeyMsg{Type: tea.KeyPgDown}, ActionScroll},
		{runeKey('q'), ActionQuit},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, ActionQuit},
		{runeKey('z'), ActionNone},
	}
	for _, tt := range tests {
		t.Run(tt.msg.String(), func(t *testing.T) {
			require.Equal(t, tt.want, d.Dispatch(tt.msg, false).Action)
		})
	}
}
