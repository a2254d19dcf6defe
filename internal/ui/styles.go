// Красота

package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ilkoid/poncho-chat/pkg/tui"
)

// styles — стили, собранные из цветовой схемы.
type styles struct {
	header     lipgloss.Style
	user       lipgloss.Style
	ai         lipgloss.Style
	system     lipgloss.Style
	err        lipgloss.Style
	suggestion lipgloss.Style
	border     lipgloss.Style
}

func newStyles(c tui.ColorScheme) styles {
	return styles{
		header: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(c.SuggestionBorder).
			Padding(0, 1).
			Bold(true),
		user:   lipgloss.NewStyle().Foreground(c.UserMessage).Bold(true),
		ai:     lipgloss.NewStyle().Foreground(c.AIMessage).Bold(true),
		system: lipgloss.NewStyle().Foreground(c.SystemMessage),
		err:    lipgloss.NewStyle().Foreground(c.ErrorMessage).Bold(true),
		suggestion: lipgloss.NewStyle().
			Foreground(c.Suggestion).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c.SuggestionBorder).
			Padding(0, 1),
		border: lipgloss.NewStyle().Foreground(c.Border),
	}
}
