// Рендер

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/ilkoid/poncho-chat/pkg/tui"
)

func (m MainModel) View() string {
	if !m.ready {
		return "Initializing UI..."
	}

	header := m.styles.header.Width(m.width).Render(m.title)
	border := m.styles.border.Render(strings.Repeat("─", max(m.width, 1)))

	errLine := ""
	if m.errLine != "" {
		errLine = m.styles.err.Render("Error: " + m.errLine)
	}

	helpView := m.help.ShortHelpView(m.keys.ShortHelp())
	if m.showHelp {
		helpView = m.help.FullHelpView(m.keys.FullHelp())
	}

	return strings.Join([]string{
		header,
		m.transcript.View(),
		border,
		m.renderSuggestions(),
		errLine,
		m.textarea.View(),
		m.status.Render(),
		helpView,
	}, "\n")
}

// renderSuggestions рисует три слота подсказок в одну строку.
func (m MainModel) renderSuggestions() string {
	// Рамка и отступы съедают 4 колонки в каждом слоте
	slotWidth := m.width/tui.SuggestionSlots - 4
	if slotWidth < 10 {
		slotWidth = 10
	}

	boxes := make([]string, tui.SuggestionSlots)
	for i := range boxes {
		text := ""
		if i < len(m.suggestions) {
			text = m.suggestions[i]
		}
		label := fmt.Sprintf("F%d %s", i+1, text)
		boxes[i] = m.styles.suggestion.
			Width(slotWidth).
			Render(truncate.StringWithTail(label, uint(slotWidth), "…"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
}
