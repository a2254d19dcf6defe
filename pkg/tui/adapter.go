// Package tui предоставляет reusable helpers для подключения Bubble Tea TUI к чату.
//
// Это НЕ готовый TUI (он остаётся в internal/ui/), а reusable адаптеры
// и компоненты для удобной работы с событиями чата.
//
// Port & Adapter паттерн:
//   - pkg/events.* — Port (интерфейсы)
//   - pkg/tui.* — Adapter helpers (переиспользуемые утилиты)
//   - internal/ui.* — Конкретная реализация TUI (app-specific)
//
// # Basic Usage
//
//	emitter := events.NewChanEmitter(64)
//	sub := emitter.Subscribe()
//
//	// Конвертируем события чата в Bubble Tea сообщения
//	cmd := tui.ReceiveEventCmd(sub, func(event events.Event) tea.Msg {
//	    return tui.EventMsg(event)
//	})
//
// Rule 6: только reusable код, без app-specific логики.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ilkoid/poncho-chat/pkg/events"
)

// EventMsg конвертирует events.Event в Bubble Tea сообщение.
type EventMsg events.Event

// ReceiveEventCmd возвращает Bubble Tea Cmd для чтения одного события из Subscriber.
//
// После обработки события Update() должен снова вернуть этот Cmd,
// иначе чтение остановится. Закрытый канал завершает программу.
func ReceiveEventCmd(sub events.Subscriber, converter func(events.Event) tea.Msg) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-sub.Events()
		if !ok {
			return tea.QuitMsg{}
		}
		return converter(event)
	}
}

// ToEventMsg — стандартный конвертер для ReceiveEventCmd.
func ToEventMsg(event events.Event) tea.Msg {
	return EventMsg(event)
}
