// Package tui предоставляет color schemes и стили для TUI компонентов.
package tui

import "github.com/charmbracelet/lipgloss"

// ColorScheme определяет цвета для различных элементов TUI.
//
// Каждое поле - это lipgloss.Color (может быть hex, ANSI, или named color).
type ColorScheme struct {
	// Status Bar
	StatusBackground lipgloss.Color
	StatusForeground lipgloss.Color

	// Messages
	SystemMessage lipgloss.Color // Системные сообщения и вызовы инструментов
	UserMessage   lipgloss.Color
	AIMessage     lipgloss.Color
	ErrorMessage  lipgloss.Color

	// Suggestions
	Suggestion       lipgloss.Color
	SuggestionBorder lipgloss.Color

	// UI Elements
	Spinner lipgloss.Color
	Border  lipgloss.Color
}

// ColorSchemes предоставляет предустановленные цветовые схемы.
var ColorSchemes = map[string]ColorScheme{
	"default": {
		StatusBackground: lipgloss.Color("235"),
		StatusForeground: lipgloss.Color("252"),
		SystemMessage:    lipgloss.Color("242"),
		UserMessage:      lipgloss.Color("226"),
		AIMessage:        lipgloss.Color("86"),
		ErrorMessage:     lipgloss.Color("196"),
		Suggestion:       lipgloss.Color("252"),
		SuggestionBorder: lipgloss.Color("62"),
		Spinner:          lipgloss.Color("86"),
		Border:           lipgloss.Color("240"),
	},
	"dark": {
		StatusBackground: lipgloss.Color("0"),
		StatusForeground: lipgloss.Color("15"),
		SystemMessage:    lipgloss.Color("8"),
		UserMessage:      lipgloss.Color("11"),
		AIMessage:        lipgloss.Color("14"),
		ErrorMessage:     lipgloss.Color("9"),
		Suggestion:       lipgloss.Color("15"),
		SuggestionBorder: lipgloss.Color("4"),
		Spinner:          lipgloss.Color("14"),
		Border:           lipgloss.Color("4"),
	},
	"light": {
		StatusBackground: lipgloss.Color("255"),
		StatusForeground: lipgloss.Color("0"),
		SystemMessage:    lipgloss.Color("8"),
		UserMessage:      lipgloss.Color("130"),
		AIMessage:        lipgloss.Color("31"),
		ErrorMessage:     lipgloss.Color("1"),
		Suggestion:       lipgloss.Color("0"),
		SuggestionBorder: lipgloss.Color("8"),
		Spinner:          lipgloss.Color("31"),
		Border:           lipgloss.Color("8"),
	},
}

// DefaultColorScheme возвращает схему по умолчанию.
func DefaultColorScheme() ColorScheme {
	return ColorSchemes["default"]
}

// GetColorScheme возвращает цветовую схему по имени.
//
// Если схема не найдена, возвращает default.
func GetColorScheme(name string) ColorScheme {
	if scheme, ok := ColorSchemes[name]; ok {
		return scheme
	}
	return DefaultColorScheme()
}
