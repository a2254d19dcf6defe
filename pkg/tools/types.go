// Интерфейс Tool и структуры определений.

package tools

import (
	"context"
	"fmt"
)

// JSONSchema представляет JSON Schema для параметров инструмента.
//
// Формат — JSON Schema объекта, как ожидает Function Calling API.
type JSONSchema map[string]any

// ToolDefinition описывает инструмент для LLM (Function Calling API format).
type ToolDefinition struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Parameters  JSONSchema `json:"parameters"` // JSON Schema объекта аргументов
}

// Tool — контракт, который должен реализовать любой инструмент.
type Tool interface {
	// Definition возвращает описание инструмента для LLM.
	Definition() ToolDefinition

	// Execute выполняет логику инструмента.
	// argsJSON — это сырой JSON с аргументами, который прислала LLM.
	// Возвращает результат (текст для модели) или ошибку.
	Execute(ctx context.Context, argsJSON string) (string, error)
}

// ObjectSchema строит JSON Schema объекта из простых (primitive) параметров.
//
// props: имя параметра → JSON тип ("integer", "number", "string", "boolean").
// Все перечисленные параметры обязательны.
func ObjectSchema(props map[string]string, order ...string) JSONSchema {
	properties := make(map[string]any, len(props))
	for name, typ := range props {
		properties[name] = map[string]any{"type": typ}
	}

	required := make([]any, 0, len(props))
	if len(order) > 0 {
		for _, name := range order {
			required = append(required, name)
		}
	} else {
		for name := range props {
			required = append(required, name)
		}
	}

	return JSONSchema{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

// Properties возвращает секцию "properties" схемы в виде name → {type, description}.
func (s JSONSchema) Properties() map[string]map[string]any {
	out := make(map[string]map[string]any)
	raw, ok := s["properties"].(map[string]any)
	if !ok {
		return out
	}
	for name, v := range raw {
		if prop, ok := v.(map[string]any); ok {
			out[name] = prop
		}
	}
	return out
}

// Required возвращает список обязательных параметров схемы.
func (s JSONSchema) Required() []string {
	var out []string
	switch req := s["required"].(type) {
	case []any:
		for _, v := range req {
			if name, ok := v.(string); ok {
				out = append(out, name)
			}
		}
	case []string:
		out = append(out, req...)
	}
	return out
}

// DefinitionsFromArgs извлекает определения из variadic аргумента Provider.Generate.
//
// Пустой args — запрос без инструментов.
func DefinitionsFromArgs(args ...any) ([]ToolDefinition, error) {
	if len(args) == 0 || args[0] == nil {
		return nil, nil
	}
	defs, ok := args[0].([]ToolDefinition)
	if !ok {
		return nil, fmt.Errorf("invalid tools type: expected []tools.ToolDefinition, got %T", args[0])
	}
	return defs, nil
}
