// Package state хранит историю диалога.
//
// History — упорядоченный append-only журнал сообщений. Единственный
// писатель — сессия чата; все остальные получают снапшоты.
//
// Package state следует правилам из dev_manifest.md:
//   - Rule 5: Thread-safe доступ через sync.RWMutex, никаких глобальных переменных
//   - Rule 7: Все ошибки возвращаются, никаких panic
package state

import (
	"fmt"
	"sync"

	"github.com/ilkoid/poncho-chat/pkg/llm"
)

// History — thread-safe история диалога.
//
// Инварианты:
//   - позиция 0 всегда System сообщение, других System нет
//   - сообщения только добавляются, никогда не меняются и не удаляются
//   - каждый ToolResult отвечает на вызов из ближайшего предшествующего
//     Assistant сообщения с вызовами, ровно один раз
type History struct {
	mu       sync.RWMutex
	messages []llm.Message

	// open — вызовы последнего Assistant сообщения, ещё не получившие результат.
	open map[string]struct{}
}

// NewHistory создает историю с системным сообщением.
func NewHistory(systemPrompt string) *History {
	return &History{
		messages: []llm.Message{llm.NewSystemMessage(systemPrompt)},
		open:     make(map[string]struct{}),
	}
}

// Append атомарно добавляет пачку сообщений.
//
// Если хоть одно сообщение нарушает инвариант, не добавляется ничего.
func (h *History) Append(msgs ...llm.Message) error {
	if len(msgs) == 0 {
		return ErrEmptyBatch
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	open := make(map[string]struct{}, len(h.open))
	for id := range h.open {
		open[id] = struct{}{}
	}

	for i, msg := range msgs {
		if err := msg.Validate(); err != nil {
			return fmt.Errorf("message %d: %w", i, err)
		}

		switch msg.Role {
		case llm.RoleSystem:
			return fmt.Errorf("message %d: %w", i, ErrSystemMessage)

		case llm.RoleTool:
			if _, ok := open[msg.ToolCallID]; !ok {
				return fmt.Errorf("message %d: %w: %s", i, ErrOrphanToolResult, msg.ToolCallID)
			}
			delete(open, msg.ToolCallID)

		default:
			if len(open) > 0 {
				return fmt.Errorf("message %d: %w: %d pending", i, ErrUnansweredToolCall, len(open))
			}
			for _, tc := range msg.ToolCalls {
				open[tc.ID] = struct{}{}
			}
		}
	}

	h.messages = append(h.messages, llm.CloneMessages(msgs)...)
	h.open = open
	return nil
}

// Snapshot возвращает глубокую копию истории.
//
// Изменение снапшота не влияет на историю.
func (h *History) Snapshot() []llm.Message {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return llm.CloneMessages(h.messages)
}

// Len возвращает количество сообщений, включая системное.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.messages)
}

// Last возвращает копию последнего сообщения.
func (h *History) Last() llm.Message {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return llm.CloneMessage(h.messages[len(h.messages)-1])
}

// System возвращает системное сообщение.
func (h *History) System() llm.Message {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.messages[0]
}
