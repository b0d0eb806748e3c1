// Package screen provides the modal prompts rendered by the interactive UI.
package screen

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Screen represents a modal prompt that can handle input and render itself.
type Screen interface {
	// Update processes a key message and returns the updated screen and any command.
	// Returning nil for the Screen signals that this screen should be closed.
	Update(msg tea.KeyMsg) (Screen, tea.Cmd)

	// View renders the screen's content.
	View() string

	// Type returns the screen's type identifier.
	Type() Type
}

// Type identifies the kind of screen being displayed.
type Type int

// Screen type constants.
const (
	TypeNone Type = iota
	TypeConfirm
	TypeInput
	TypeListSelect
)

// String returns a human-readable name for the screen type.
func (t Type) String() string {
	switch t {
	case TypeConfirm:
		return "confirm"
	case TypeInput:
		return "input"
	case TypeListSelect:
		return "list-select"
	default:
		return "none"
	}
}

// Key names shared by the screens.
const (
	keyEnter    = "enter"
	keyEsc      = "esc"
	keyTab      = "tab"
	keyShiftTab = "shift+tab"
	keyQ        = "q"
	keyCtrlC    = "ctrl+c"
)
