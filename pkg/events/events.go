// Package events предоставляет интерфейсы для реализации Port & Adapter паттерна.
//
// Это Port (интерфейс) для подписки на события чата: сообщения транскрипта,
// вызовы инструментов, новые подсказки и ошибки хода.
// Позволяет подключать любые UI (TUI, Web, CLI) без изменения библиотечной логики.
//
// # Port & Adapter Pattern
//
//	Port — это интерфейс (Emitter, Subscriber), определённый в библиотеке.
//	Adapter — это реализация интерфейса для конкретного UI (TUI, Web, etc).
//
// # Basic Usage
//
//	// В библиотеке (pkg/chat/):
//	emitter := events.NewChanEmitter(64)
//	session, err := chat.NewSession(chat.Config{History: history, Emitter: emitter, ...})
//
//	// В UI (internal/ui/):
//	sub := emitter.Subscribe()
//	for event := range sub.Events() {
//	    switch event.Type {
//	    case events.EventMessage:
//	        ui.showMessage(event.Data)
//	    case events.EventSuggestions:
//	        ui.showSuggestions(event.Data)
//	    }
//	}
//
// # Thread Safety
//
// Все реализации интерфейсов должны быть thread-safe.
//
// # Rule 11: Context Propagation
//
// Emitter.Emit() принимает context.Context для отмены операции.
package events

import (
	"context"
	"time"
)

// EventType представляет тип события чата.
type EventType string

const (
	// EventUserMessage отправляется когда сообщение пользователя добавлено в историю.
	EventUserMessage EventType = "user_message"

	// EventToolCall отправляется перед вызовом инструмента.
	EventToolCall EventType = "tool_call"

	// EventToolResult отправляется когда инструмент вернул результат.
	EventToolResult EventType = "tool_result"

	// EventMessage отправляется когда финальный ответ AI добавлен в историю.
	EventMessage EventType = "message"

	// EventSuggestions отправляется когда набор подсказок заменён целиком.
	EventSuggestions EventType = "suggestions"

	// EventError отправляется при ошибке хода.
	EventError EventType = "error"

	// EventDone отправляется когда ход завершён (успешно или нет).
	EventDone EventType = "done"
)

// EventData — sealed interface для данных события.
//
// Только типы из пакета events могут реализовать этот интерфейс,
// что обеспечивает compile-time type safety.
type EventData interface {
	eventData()
}

// ToolCallData содержит данные о вызове инструмента.
type ToolCallData struct {
	CallID   string
	ToolName string
	Args     string
}

func (ToolCallData) eventData() {}

// ToolResultData содержит результат выполнения инструмента.
type ToolResultData struct {
	CallID   string
	ToolName string
	Result   string
	Duration time.Duration
}

func (ToolResultData) eventData() {}

// MessageData содержит данные для EventUserMessage, EventMessage и EventDone.
type MessageData struct {
	Content string
}

func (MessageData) eventData() {}

// SuggestionsData содержит новый набор подсказок.
//
// Prompts[i] привязан к слоту i.
type SuggestionsData struct {
	Prompts []string
	Elapsed time.Duration
}

func (SuggestionsData) eventData() {}

// ErrorData содержит данные для EventError.
type ErrorData struct {
	Err error
}

func (ErrorData) eventData() {}

// Event представляет событие чата.
//
// Для каждого EventType существует соответствующий тип данных:
//   - EventUserMessage, EventMessage, EventDone: MessageData
//   - EventToolCall: ToolCallData
//   - EventToolResult: ToolResultData
//   - EventSuggestions: SuggestionsData
//   - EventError: ErrorData
type Event struct {
	Type      EventType
	Data      EventData
	Timestamp time.Time
}

// New создаёт событие с текущим временем.
func New(t EventType, data EventData) Event {
	return Event{Type: t, Data: data, Timestamp: time.Now()}
}

// Emitter — это Port для отправки событий.
//
// Emitter инвертирует зависимость: библиотека (pkg/chat) зависит
// от этого интерфейса, а не от конкретного UI.
//
// Rule 11: все операции должны уважать context.Context.
type Emitter interface {
	// Emit отправляет событие.
	//
	// Если context отменён, операция должна прерваться.
	Emit(ctx context.Context, event Event)
}

// Subscriber позволяет читать события из канала.
//
// Rule 5: thread-safe операции.
type Subscriber interface {
	// Events возвращает read-only канал событий.
	//
	// Канал закрывается при вызове Close() у эмиттера.
	Events() <-chan Event

	// Close освобождает ресурсы подписчика.
	Close()
}

// Discard — Emitter, который ничего не делает.
type Discard struct{}

// Emit ничего не делает.
func (Discard) Emit(ctx context.Context, event Event) {}
