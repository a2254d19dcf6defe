package tui

import (
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
)

// Transcript — viewport с логом диалога и переносом строк по ширине окна.
//
// Хранит исходные строки без переноса: при изменении ширины всё
// переносится заново. Thread-safe.
type Transcript struct {
	viewport viewport.Model
	lines    []string
	mu       sync.RWMutex
}

// NewTranscript создаёт пустой транскрипт.
func NewTranscript() *Transcript {
	return &Transcript{viewport: viewport.New(0, 0)}
}

// HandleResize пересчитывает размеры и перенос.
//
// Если пользователь был внизу, остаётся внизу; иначе позиция
// ограничивается новым количеством строк.
func (t *Transcript) HandleResize(msg tea.WindowSizeMsg, headerHeight, footerHeight int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	height := msg.Height - headerHeight - footerHeight
	if height < 1 {
		height = 1
	}
	width := msg.Width
	if width < 20 {
		width = 20
	}

	// wasAtBottom считаем до изменения высоты
	wasAtBottom := t.atBottom()

	t.viewport.Height = height
	t.viewport.Width = width
	t.viewport.SetContent(t.render())

	if wasAtBottom {
		t.viewport.GotoBottom()
		return
	}
	maxOffset := t.viewport.TotalLineCount() - t.viewport.Height
	if maxOffset < 0 {
		maxOffset = 0
	}
	if t.viewport.YOffset > maxOffset {
		t.viewport.SetYOffset(maxOffset)
	}
}

// Append добавляет строку и прокручивает вниз, если пользователь был внизу.
func (t *Transcript) Append(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	wasAtBottom := t.atBottom()
	t.lines = append(t.lines, line)
	t.viewport.SetContent(t.render())
	if wasAtBottom {
		t.viewport.GotoBottom()
	}
}

// Lines возвращает копию исходных строк.
func (t *Transcript) Lines() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]string(nil), t.lines...)
}

// View рендерит viewport.
func (t *Transcript) View() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.viewport.View()
}

// Viewport возвращает копию viewport.Model.
func (t *Transcript) Viewport() viewport.Model {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.viewport
}

// ScrollUp прокручивает вверх на n строк.
func (t *Transcript) ScrollUp(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.viewport.ScrollUp(n)
}

// ScrollDown прокручивает вниз на n строк.
func (t *Transcript) ScrollDown(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.viewport.ScrollDown(n)
}

func (t *Transcript) atBottom() bool {
	return t.viewport.YOffset+t.viewport.Height >= t.viewport.TotalLineCount()
}

// render переносит исходные строки по текущей ширине. Вызывать под mu.
func (t *Transcript) render() string {
	return strings.Join(WrapLines(t.lines, t.viewport.Width), "\n")
}

// WrapLines переносит строки по словам, а слишком длинные слова режет.
// width <= 0 отключает перенос.
func WrapLines(lines []string, width int) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if width <= 0 {
			out = append(out, strings.Split(line, "\n")...)
			continue
		}
		wrapped := wrap.String(wordwrap.String(line, width), width)
		out = append(out, strings.Split(wrapped, "\n")...)
	}
	return out
}
