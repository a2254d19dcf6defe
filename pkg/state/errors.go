// Package state предоставляет ошибки истории диалога.
//
// Все ошибки следуют принципам из dev_manifest.md:
//   - Rule 7: Возвращаются вверх по стеку, никаких panic
//   - Поддержка errors.Is() для error wrapping
package state

import "errors"

// ErrSystemMessage возвращается при попытке добавить второе системное сообщение.
//
// Системное сообщение задаётся один раз в NewHistory и стоит на позиции 0.
var ErrSystemMessage = errors.New("system message is fixed at position 0")

// ErrOrphanToolResult возвращается когда результат инструмента не ссылается
// на вызов из непосредственно предшествующего Assistant сообщения,
// или когда на один вызов пришло два результата.
//
// Пример использования:
//   if _, ok := open[msg.ToolCallID]; !ok {
//       return fmt.Errorf("%w: %s", ErrOrphanToolResult, msg.ToolCallID)
//   }
var ErrOrphanToolResult = errors.New("tool result without matching tool call")

// ErrUnansweredToolCall возвращается когда после Assistant сообщения с вызовами
// добавляется не-tool сообщение, а часть вызовов осталась без результата.
var ErrUnansweredToolCall = errors.New("tool call without result")

// ErrEmptyBatch возвращается при вызове Append без сообщений.
var ErrEmptyBatch = errors.New("empty append batch")
