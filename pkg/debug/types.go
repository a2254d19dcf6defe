// Package debug записывает трейсы ходов диалога в JSON файлы.
//
// Один файл на ход: запрос пользователя, вызовы инструментов с результатами,
// финальный ответ и длительность. Включается флагом app.debug.
package debug

import (
	"time"
)

// TurnTrace представляет полный трейс одного хода диалога.
type TurnTrace struct {
	// RunID — уникальный идентификатор хода (используется в имени файла)
	RunID string `json:"run_id"`

	// Timestamp — время начала хода
	Timestamp time.Time `json:"timestamp"`

	// UserQuery — исходный запрос пользователя
	UserQuery string `json:"user_query"`

	// Duration — длительность хода в миллисекундах (0 если начало не видно)
	Duration int64 `json:"duration_ms"`

	// ToolsExecuted — вызовы инструментов в порядке запроса моделью
	ToolsExecuted []ToolExecution `json:"tools_executed,omitempty"`

	// Messages — сообщения хода в порядке добавления в историю
	Messages []MessageEntry `json:"messages"`

	// HistoryLen — длина истории после хода, включая системный промпт
	HistoryLen int `json:"history_len"`

	// FinalResult — финальный ответ модели
	FinalResult string `json:"final_result"`
}

// ToolExecution описывает один вызов инструмента.
type ToolExecution struct {
	CallID string `json:"call_id"`
	Name   string `json:"name"`
	Args   string `json:"args,omitempty"`

	// Result — результат (может быть обрезан по MaxResultSize)
	Result          string `json:"result,omitempty"`
	ResultTruncated bool   `json:"result_truncated,omitempty"`
}

// MessageEntry представляет одно сообщение истории.
type MessageEntry struct {
	Role       string         `json:"role"`
	Content    string         `json:"content,omitempty"`
	ToolCalls  []ToolCallInfo `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

// ToolCallInfo описывает вызов инструмента от LLM.
type ToolCallInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Args string `json:"args"`
}
