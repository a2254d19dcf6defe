package chat

import (
	"context"
	"errors"
	"sync"

	"github.com/ilkoid/poncho-chat/pkg/events"
	"github.com/ilkoid/poncho-chat/pkg/llm"
	"github.com/ilkoid/poncho-chat/pkg/tools"
)

// MockLLMProvider — мок LLM провайдера для тестирования.
// Реализует интерфейс llm.Provider для детерминированного тестирования.
type MockLLMProvider struct {
	mu sync.Mutex
	// Responses — последовательность ответов для возврата
	Responses []llm.Message
	// Errors — ошибка для вызова с тем же индексом (nil = ответ из Responses)
	Errors []error
	// CallCount — количество вызовов Generate
	CallCount int
	// LastMessages — последние сообщения, переданные в Generate
	LastMessages []llm.Message
	// LastTools — последние tools definitions
	LastTools []tools.ToolDefinition
}

// Generate реализует llm.Provider интерфейс.
func (m *MockLLMProvider) Generate(ctx context.Context, messages []llm.Message, toolsArgs ...any) (llm.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CallCount++
	m.LastMessages = llm.CloneMessages(messages)
	m.LastTools = nil
	if defs, err := tools.DefinitionsFromArgs(toolsArgs...); err == nil {
		m.LastTools = defs
	}

	i := m.CallCount - 1
	if i < len(m.Errors) && m.Errors[i] != nil {
		return llm.Message{}, m.Errors[i]
	}
	if i >= len(m.Responses) {
		return llm.Message{}, errors.New("unexpected call: no more responses")
	}
	return m.Responses[i], nil
}

// MockTool — мок инструмента для тестирования.
// Реализует интерфейс tools.Tool с предсказуемым поведением.
type MockTool struct {
	Name        string
	ExecuteFunc func(ctx context.Context, argsJSON string) (string, error)
}

// Definition возвращает определение инструмента.
func (m *MockTool) Definition() tools.ToolDefinition {
	return tools.ToolDefinition{
		Name:        m.Name,
		Description: "Mock tool for testing",
		Parameters:  tools.JSONSchema{"type": "object", "properties": map[string]any{}},
	}
}

// Execute выполняет инструмент.
func (m *MockTool) Execute(ctx context.Context, argsJSON string) (string, error) {
	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(ctx, argsJSON)
	}
	return "mock success", nil
}

// recordingEmitter запоминает все события.
type recordingEmitter struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingEmitter) Emit(ctx context.Context, event events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingEmitter) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func (r *recordingEmitter) find(t events.EventType) (events.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.Type == t {
			return e, true
		}
	}
	return events.Event{}, false
}
