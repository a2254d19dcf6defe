// Логика - Обрабатывает нажатия клавиш и события чата.

package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ilkoid/poncho-chat/pkg/events"
	"github.com/ilkoid/poncho-chat/pkg/tui"
	"github.com/ilkoid/poncho-chat/pkg/utils"
)

// Высоты элементов вокруг транскрипта.
const (
	headerHeight      = 1
	suggestionsHeight = 3 // рамка + одна строка
	chromeLines       = 4 // разделитель, строка ошибки, статус, help
)

// busyText показывается при попытке отправить запрос во время хода.
const busyText = "Please wait for the current answer."

func (m MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	// 1. Изменение размера окна терминала
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.ready = true
		m.textarea.SetWidth(msg.Width)
		m.help.Width = msg.Width
		footer := m.textarea.Height() + suggestionsHeight + chromeLines
		m.transcript.HandleResize(msg, headerHeight, footer)
		return m, nil

	// 2. Клавиши
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.ScrollUp):
			m.transcript.ScrollUp(5)
			return m, nil

		case key.Matches(msg, m.keys.ScrollDown):
			m.transcript.ScrollDown(5)
			return m, nil

		case key.Matches(msg, m.keys.ToggleHelp):
			m.showHelp = !m.showHelp
			m.help.ShowAll = m.showHelp
			return m, nil

		case key.Matches(msg, m.keys.ToggleDebug):
			m.status.SetDebugMode(!m.status.IsDebugMode())
			return m, nil

		case key.Matches(msg, m.keys.ConfirmInput):
			input := m.textarea.Value()
			if strings.TrimSpace(input) == "" {
				return m, nil
			}
			var cmd tea.Cmd
			m, cmd = m.submit(input)
			if cmd != nil {
				m.textarea.Reset()
			}
			return m, cmd
		}

		for i, binding := range m.keys.Suggestions {
			if key.Matches(msg, binding) {
				prompt, ok := m.slotPrompt(i)
				if !ok {
					return m, nil
				}
				return m.submit(prompt)
			}
		}

	// 3. События чата (приходят асинхронно)
	case tui.EventMsg:
		m.handleEvent(events.Event(msg))
		return m, tui.ReceiveEventCmd(m.eventSub, tui.ToEventMsg)

	// 4. Ход завершён
	case turnDoneMsg:
		m.busy = false
		m.status.SetProcessing(false)
		if msg.err != nil {
			m.errLine = msg.err.Error()
		}
		m.textarea.Focus()
		return m, nil

	case spinner.TickMsg:
		return m, m.status.Update(msg)
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

// submit запускает ход в отдельной команде, UI не блокируется.
func (m MainModel) submit(prompt string) (MainModel, tea.Cmd) {
	if m.busy {
		m.errLine = busyText
		return m, nil
	}
	m.busy = true
	m.errLine = ""
	m.status.SetProcessing(true)

	ctx, session := m.ctx, m.session
	return m, tea.Batch(
		m.status.Tick(),
		func() tea.Msg {
			_, err := session.Submit(ctx, prompt)
			return turnDoneMsg{err: err}
		},
	)
}

// handleEvent обновляет транскрипт, подсказки и строку ошибки.
func (m *MainModel) handleEvent(event events.Event) {
	switch data := event.Data.(type) {
	case events.MessageData:
		switch event.Type {
		case events.EventUserMessage:
			m.transcript.Append(m.styles.user.Render("User:") + " " + data.Content)
		case events.EventMessage:
			m.transcript.Append(m.styles.ai.Render("AI:") + " " + data.Content)
		}

	case events.ToolCallData:
		if m.status.IsDebugMode() {
			m.transcript.Append(m.styles.system.Render(fmt.Sprintf("→ %s(%s)", data.ToolName, data.Args)))
		}

	case events.ToolResultData:
		if m.status.IsDebugMode() {
			m.transcript.Append(m.styles.system.Render(fmt.Sprintf("← %s [%s]: %s",
				data.ToolName, data.Duration.Round(time.Millisecond), utils.Truncate(utils.CollapseWhitespace(data.Result), 200))))
		}

	case events.SuggestionsData:
		m.suggestions = append([]string(nil), data.Prompts...)

	case events.ErrorData:
		if data.Err != nil {
			m.errLine = data.Err.Error()
		}
	}
}

// slotPrompt возвращает подсказку слота i.
func (m MainModel) slotPrompt(i int) (string, bool) {
	if m.slots != nil {
		prompt, err := m.slots.Select(i)
		if err != nil {
			utils.Debug("Suggestion slot unavailable", "slot", i, "error", err)
			return "", false
		}
		return prompt, prompt != ""
	}
	if i >= len(m.suggestions) || m.suggestions[i] == "" {
		return "", false
	}
	return m.suggestions[i], true
}
