package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
)

// SuggestionSlots — количество слотов подсказок в TUI.
const SuggestionSlots = 3

// KeyMap определяет клавиатурные сокращения чата.
type KeyMap struct {
	Quit         key.Binding
	ScrollUp     key.Binding
	ScrollDown   key.Binding
	ToggleHelp   key.Binding
	ToggleDebug  key.Binding
	ConfirmInput key.Binding

	// Suggestions[i] отправляет подсказку из слота i.
	Suggestions [SuggestionSlots]key.Binding
}

// ShortHelp реализует help.KeyMap интерфейс.
func (km KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{km.ConfirmInput, km.Suggestions[0], km.ToggleHelp, km.Quit}
}

// FullHelp реализует help.KeyMap интерфейс.
func (km KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{km.ConfirmInput, km.Suggestions[0], km.Suggestions[1], km.Suggestions[2]},
		{km.ScrollUp, km.ScrollDown, km.ToggleDebug},
		{km.ToggleHelp, km.Quit},
	}
}

// DefaultKeyMap возвращает дефолтный KeyMap.
func DefaultKeyMap() KeyMap {
	km := KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("Ctrl+C", "quit"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("ctrl+u", "pgup"),
			key.WithHelp("Ctrl+U", "scroll up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("ctrl+d", "pgdown"),
			key.WithHelp("Ctrl+D", "scroll down"),
		),
		ToggleHelp: key.NewBinding(
			key.WithKeys("ctrl+h"),
			key.WithHelp("Ctrl+H", "toggle help"),
		),
		ToggleDebug: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("Ctrl+G", "show tool calls"),
		),
		ConfirmInput: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "send"),
		),
	}
	for i := range km.Suggestions {
		n := i + 1
		km.Suggestions[i] = key.NewBinding(
			key.WithKeys(fmt.Sprintf("f%d", n), fmt.Sprintf("alt+%d", n)),
			key.WithHelp(fmt.Sprintf("F%d", n), fmt.Sprintf("send suggestion %d", n)),
		)
	}
	return km
}
