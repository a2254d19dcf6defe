package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ilkoid/poncho-chat/pkg/llm"
	"github.com/ilkoid/poncho-chat/pkg/tools"
	"github.com/ilkoid/poncho-chat/pkg/utils"
)

// Decision — результат модели выбора инструментов.
//
// Calls пуст: Message — финальный ответ, инструменты не нужны.
// Calls не пуст: Message — Assistant stub, несущий эти же вызовы.
type Decision struct {
	Message llm.Message
	Calls   []llm.ToolCall
}

// Direct сообщает, что модель ответила сразу, без инструментов.
func (d Decision) Direct() bool {
	return len(d.Calls) == 0
}

// UnnamedTool подставляется вместо пустого имени вызова: такой вызов
// исполнитель отклоняет как неизвестный инструмент, и ход продолжается.
const UnnamedTool = "unnamed_tool"

// ToolDecisionModel — модель с function calling, решающая нужны ли инструменты.
//
// Видит все определения из реестра, tool_choice=auto. Без повторов.
type ToolDecisionModel struct {
	provider llm.Provider
	registry *tools.Registry
}

// NewToolDecisionModel создаёт адаптер модели выбора инструментов.
func NewToolDecisionModel(provider llm.Provider, registry *tools.Registry) *ToolDecisionModel {
	return &ToolDecisionModel{provider: provider, registry: registry}
}

// Decide вызывает модель на истории и возвращает её решение.
//
// Вызовам без id (или с повторяющимся id) присваивается новый id,
// чтобы каждый результат инструмента однозначно ссылался на свой вызов.
// Вызовы без имени получают имя UnnamedTool.
func (m *ToolDecisionModel) Decide(ctx context.Context, history []llm.Message) (Decision, error) {
	start := time.Now()

	resp, err := m.provider.Generate(ctx, history, m.registry.GetDefinitions())
	if err != nil {
		return Decision{}, fmt.Errorf("%w: tool decision: %v", ErrModelAdapter, err)
	}

	calls := make([]llm.ToolCall, 0, len(resp.ToolCalls))
	seen := make(map[string]struct{}, len(resp.ToolCalls))
	for _, tc := range resp.ToolCalls {
		if _, dup := seen[tc.ID]; tc.ID == "" || dup {
			tc.ID = "call_" + uuid.NewString()
		}
		seen[tc.ID] = struct{}{}
		if tc.Name == "" {
			utils.Warn("Tool call without name", "call_id", tc.ID)
			tc.Name = UnnamedTool
		}
		calls = append(calls, tc)
	}

	utils.Debug("Tool decision received",
		"tool_calls", len(calls),
		"duration_ms", time.Since(start).Milliseconds())

	if len(calls) == 0 {
		return Decision{Message: llm.NewAssistantMessage(resp.Content)}, nil
	}
	return Decision{
		Message: llm.NewAssistantMessage(resp.Content, calls...),
		Calls:   calls,
	}, nil
}

// AnswerModel — модель финального ответа.
//
// Вызывается без инструментов на истории, уже содержащей stub и результаты.
type AnswerModel struct {
	provider llm.Provider
}

// NewAnswerModel создаёт адаптер модели финального ответа.
func NewAnswerModel(provider llm.Provider) *AnswerModel {
	return &AnswerModel{provider: provider}
}

// Answer возвращает финальный Assistant ответ.
//
// Если модель всё же запросила инструменты, вызовы отбрасываются:
// в этом ходе был ровно один раунд инструментов.
func (m *AnswerModel) Answer(ctx context.Context, history []llm.Message) (llm.Message, error) {
	start := time.Now()

	resp, err := m.provider.Generate(ctx, history)
	if err != nil {
		return llm.Message{}, fmt.Errorf("%w: final answer: %v", ErrModelAdapter, err)
	}
	if len(resp.ToolCalls) > 0 {
		utils.Warn("Final answer model requested tools, ignoring", "tool_calls", len(resp.ToolCalls))
	}

	utils.Debug("Final answer received",
		"content_length", len(resp.Content),
		"duration_ms", time.Since(start).Milliseconds())

	return llm.NewAssistantMessage(resp.Content), nil
}
