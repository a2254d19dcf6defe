package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ilkoid/poncho-chat/pkg/config"
	"github.com/ilkoid/poncho-chat/pkg/events"
	"github.com/ilkoid/poncho-chat/pkg/llm"
	"github.com/ilkoid/poncho-chat/pkg/tools"
	"github.com/ilkoid/poncho-chat/pkg/utils"
)

// ToolExecutor выполняет вызовы инструментов одного хода.
//
// Rule 1: Работает с Tool interface ("Raw In, String Out").
// Rule 3: Tools вызываются через Registry.
//
// На каждый вызов ровно один результат, в порядке запроса. Ошибки
// инструментов не прерывают ход: они становятся текстом результата.
type ToolExecutor struct {
	registry *tools.Registry
	emitter  events.Emitter

	// defaultTimeout — защитный timeout для выполнения инструментов
	defaultTimeout time.Duration

	// timeouts — переопределение timeout для конкретных инструментов
	timeouts map[string]time.Duration
}

// NewToolExecutor создаёт исполнитель инструментов.
func NewToolExecutor(registry *tools.Registry, emitter events.Emitter, defaultTimeout time.Duration) *ToolExecutor {
	if emitter == nil {
		emitter = events.Discard{}
	}
	if defaultTimeout <= 0 {
		defaultTimeout = config.DefaultToolTimeout
	}
	return &ToolExecutor{
		registry:       registry,
		emitter:        emitter,
		defaultTimeout: defaultTimeout,
		timeouts:       make(map[string]time.Duration),
	}
}

// SetToolTimeout переопределяет timeout для инструмента.
func (e *ToolExecutor) SetToolTimeout(name string, timeout time.Duration) {
	if timeout > 0 {
		e.timeouts[name] = timeout
	}
}

// Execute выполняет вызовы последовательно и возвращает ToolResult сообщения.
func (e *ToolExecutor) Execute(ctx context.Context, calls []llm.ToolCall) []llm.Message {
	results := make([]llm.Message, 0, len(calls))
	for _, tc := range calls {
		e.emitter.Emit(ctx, events.New(events.EventToolCall, events.ToolCallData{
			CallID:   tc.ID,
			ToolName: tc.Name,
			Args:     tc.Args,
		}))

		start := time.Now()
		output := e.executeToolCall(ctx, tc)
		duration := time.Since(start)

		e.emitter.Emit(ctx, events.New(events.EventToolResult, events.ToolResultData{
			CallID:   tc.ID,
			ToolName: tc.Name,
			Result:   output,
			Duration: duration,
		}))

		utils.Info("Tool executed",
			"tool", tc.Name,
			"call_id", tc.ID,
			"result_length", len(output),
			"duration_ms", duration.Milliseconds())

		results = append(results, llm.NewToolResultMessage(tc.ID, output))
	}
	return results
}

// executeToolCall выполняет один tool call и всегда возвращает текст результата.
func (e *ToolExecutor) executeToolCall(ctx context.Context, tc llm.ToolCall) string {
	// 1. Санитизируем JSON аргументы
	cleanArgs := utils.CleanJsonBlock(tc.Args)

	// 2. Получаем tool из registry (Rule 3)
	tool, err := e.registry.Get(tc.Name)
	if err != nil {
		utils.Warn("Model requested unknown tool", "tool", tc.Name, "call_id", tc.ID)
		return fmt.Sprintf("Error: tool not found: %s", tc.Name)
	}

	// 3. Определяем timeout для этого инструмента
	timeout := e.defaultTimeout
	if custom, exists := e.timeouts[tc.Name]; exists {
		timeout = custom
	}

	toolCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// 4. Выполняем tool в отдельной goroutine для возможности отмены
	type execResult struct {
		output string
		err    error
	}
	resultChan := make(chan execResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resultChan <- execResult{err: fmt.Errorf("tool panicked: %v", r)}
			}
		}()
		out, execErr := tool.Execute(toolCtx, cleanArgs)
		resultChan <- execResult{out, execErr}
	}()

	// 5. Ждём результат или timeout
	select {
	case <-toolCtx.Done():
		return e.interrupted(tc.Name, timeout, toolCtx.Err())

	case res := <-resultChan:
		if res.err != nil {
			// Инструмент мог вернуть ошибку контекста раньше, чем сработал select
			if toolCtx.Err() != nil {
				return e.interrupted(tc.Name, timeout, toolCtx.Err())
			}
			utils.Error("Tool execution failed", "tool", tc.Name, "error", res.err)
			return fmt.Sprintf("Error: %v", res.err)
		}
		return res.output
	}
}

// interrupted формирует результат для прерванного вызова.
func (e *ToolExecutor) interrupted(name string, timeout time.Duration, err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		utils.Warn("Tool execution timeout", "tool", name, "timeout", timeout)
		return fmt.Sprintf("Tool %q exceeded timeout of %v.", name, timeout)
	}
	return "Tool execution was cancelled"
}
