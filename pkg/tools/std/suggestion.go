package std

import (
	"context"

	"github.com/ilkoid/poncho-chat/pkg/tools"
)

// SuggestionToolName — имя единственного инструмента модели подсказок.
const SuggestionToolName = "add_prompt_suggestion"

// PromptSuggestionTool — no-op инструмент, к которому привязана модель подсказок.
//
// Сам вызов ничего не делает: генератор подсказок читает аргумент prompt
// прямо из tool call.
type PromptSuggestionTool struct{}

// NewPromptSuggestionTool создает инструмент подсказок.
func NewPromptSuggestionTool() *PromptSuggestionTool { return &PromptSuggestionTool{} }

// Definition возвращает определение инструмента для function calling.
func (t *PromptSuggestionTool) Definition() tools.ToolDefinition {
	return tools.ToolDefinition{
		Name:        SuggestionToolName,
		Description: "Gives the user a prompt suggestion.",
		Parameters:  tools.ObjectSchema(map[string]string{"prompt": "string"}, "prompt"),
	}
}

// Execute ничего не делает.
func (t *PromptSuggestionTool) Execute(ctx context.Context, argsJSON string) (string, error) {
	return "", nil
}
