// Базовые типы - определяем универсальный язык общения с моделями.
package llm

import (
	"errors"
	"fmt"
)

// Role — дискриминатор варианта сообщения.
type Role string

// Константы для удобства
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

var (
	// ErrUnknownRole возвращается для сообщения с неизвестной ролью.
	ErrUnknownRole = errors.New("unknown message role")

	// ErrInvalidMessage возвращается когда поля сообщения не соответствуют его роли.
	ErrInvalidMessage = errors.New("invalid message")
)

// ToolCall — запрос модели на вызов инструмента.
//
// Args — сырой JSON объект аргументов в том виде, в каком его прислала модель
// ("Raw In, String Out"). Разбирает его сам инструмент.
type ToolCall struct {
	ID   string
	Name string
	Args string
}

// Message — одно сообщение истории.
//
// Это tagged union над {System, User, Assistant, ToolResult}: Role определяет
// вариант, а Validate проверяет что заполнены только допустимые для него поля.
//   - System/User: Content
//   - Assistant:   Content и опционально ToolCalls
//   - Tool:        ToolCallID и Content (вывод инструмента)
type Message struct {
	Role       Role
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
}

// NewSystemMessage создаёт системное сообщение.
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// NewUserMessage создаёт сообщение пользователя.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage создаёт ответ ассистента, опционально с запросами инструментов.
func NewAssistantMessage(content string, calls ...ToolCall) Message {
	msg := Message{Role: RoleAssistant, Content: content}
	if len(calls) > 0 {
		msg.ToolCalls = append([]ToolCall(nil), calls...)
	}
	return msg
}

// NewToolResultMessage создаёт результат инструмента для callID.
func NewToolResultMessage(callID, output string) Message {
	return Message{Role: RoleTool, ToolCallID: callID, Content: output}
}

// HasToolCalls сообщает, запрашивает ли сообщение вызов инструментов.
func (m Message) HasToolCalls() bool {
	return m.Role == RoleAssistant && len(m.ToolCalls) > 0
}

// IsFinalAnswer сообщает, является ли сообщение финальным ответом ассистента
// (assistant без запросов инструментов).
func (m Message) IsFinalAnswer() bool {
	return m.Role == RoleAssistant && len(m.ToolCalls) == 0
}

// Validate проверяет сообщение для каждого варианта роли.
func (m Message) Validate() error {
	switch m.Role {
	case RoleSystem, RoleUser:
		if len(m.ToolCalls) > 0 || m.ToolCallID != "" {
			return fmt.Errorf("%w: %s message cannot carry tool data", ErrInvalidMessage, m.Role)
		}
	case RoleAssistant:
		if m.ToolCallID != "" {
			return fmt.Errorf("%w: assistant message cannot carry tool_call_id", ErrInvalidMessage)
		}
		seen := make(map[string]struct{}, len(m.ToolCalls))
		for i, tc := range m.ToolCalls {
			if tc.ID == "" || tc.Name == "" {
				return fmt.Errorf("%w: tool call #%d needs id and name", ErrInvalidMessage, i)
			}
			if _, dup := seen[tc.ID]; dup {
				return fmt.Errorf("%w: duplicate tool call id %q", ErrInvalidMessage, tc.ID)
			}
			seen[tc.ID] = struct{}{}
		}
	case RoleTool:
		if m.ToolCallID == "" {
			return fmt.Errorf("%w: tool result without tool_call_id", ErrInvalidMessage)
		}
		if len(m.ToolCalls) > 0 {
			return fmt.Errorf("%w: tool result cannot request tools", ErrInvalidMessage)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownRole, m.Role)
	}
	return nil
}

// CloneMessage возвращает глубокую копию сообщения.
func CloneMessage(m Message) Message {
	out := m
	if m.ToolCalls != nil {
		out.ToolCalls = make([]ToolCall, len(m.ToolCalls))
		copy(out.ToolCalls, m.ToolCalls)
	}
	return out
}

// CloneMessages возвращает глубокую копию среза сообщений.
func CloneMessages(msgs []Message) []Message {
	out := make([]Message, len(msgs))
	for i := range msgs {
		out[i] = CloneMessage(msgs[i])
	}
	return out
}
