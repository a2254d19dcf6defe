package tui

import (
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// StatusBar — строка статуса со спиннером, DEBUG индикатором и доп. информацией.
type StatusBar struct {
	spinner      spinner.Model
	isProcessing bool
	debugMode    bool
	extra        string
	colors       ColorScheme
	mu           sync.RWMutex
}

// NewStatusBar создаёт строку статуса.
func NewStatusBar(colors ColorScheme) *StatusBar {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colors.Spinner)
	return &StatusBar{spinner: s, colors: colors}
}

// Tick возвращает команду для анимации спиннера.
func (sb *StatusBar) Tick() tea.Cmd {
	sb.mu.RLock()
	defer sb.mu.RUnlock()
	return sb.spinner.Tick
}

// Update обрабатывает spinner.TickMsg. Пока нет обработки, спиннер не тикает.
func (sb *StatusBar) Update(msg tea.Msg) tea.Cmd {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	if !sb.isProcessing {
		return nil
	}
	var cmd tea.Cmd
	sb.spinner, cmd = sb.spinner.Update(msg)
	return cmd
}

// Render возвращает строку статуса.
func (sb *StatusBar) Render() string {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	text := "✓ Ready"
	fg := sb.colors.SystemMessage
	if sb.isProcessing {
		text = sb.spinner.View() + " Thinking..."
		fg = sb.colors.Spinner
	}

	out := lipgloss.NewStyle().
		Background(sb.colors.StatusBackground).
		Foreground(fg).
		Padding(0, 1).
		Render(text)

	if sb.debugMode {
		out += lipgloss.NewStyle().
			Background(sb.colors.ErrorMessage).
			Foreground(lipgloss.Color("15")).
			Bold(true).
			Padding(0, 1).
			Render("DEBUG")
	}
	if sb.extra != "" {
		out += lipgloss.NewStyle().
			Background(sb.colors.StatusBackground).
			Foreground(sb.colors.StatusForeground).
			Padding(0, 1).
			Render(sb.extra)
	}
	return out
}

// SetProcessing включает спиннер.
func (sb *StatusBar) SetProcessing(processing bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.isProcessing = processing
}

// IsProcessing сообщает, идёт ли обработка.
func (sb *StatusBar) IsProcessing() bool {
	sb.mu.RLock()
	defer sb.mu.RUnlock()
	return sb.isProcessing
}

// SetDebugMode включает DEBUG индикатор.
func (sb *StatusBar) SetDebugMode(enabled bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.debugMode = enabled
}

// IsDebugMode сообщает, включён ли DEBUG.
func (sb *StatusBar) IsDebugMode() bool {
	sb.mu.RLock()
	defer sb.mu.RUnlock()
	return sb.debugMode
}

// SetExtra задаёт дополнительный текст (например, имя модели).
func (sb *StatusBar) SetExtra(s string) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.extra = s
}
