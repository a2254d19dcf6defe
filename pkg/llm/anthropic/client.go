// Package anthropic реализует адаптер llm.Provider поверх Anthropic Messages API.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/ilkoid/poncho-chat/pkg/config"
	"github.com/ilkoid/poncho-chat/pkg/llm"
	"github.com/ilkoid/poncho-chat/pkg/tools"
	"github.com/ilkoid/poncho-chat/pkg/utils"
)

// Client реализует интерфейс llm.Provider для Claude.
type Client struct {
	api  sdk.Client
	opts llm.GenerateOptions
}

// NewClient создает клиент на основе конфигурации модели.
func NewClient(modelDef config.ModelDef) *Client {
	reqOpts := []option.RequestOption{option.WithAPIKey(modelDef.APIKey)}
	if modelDef.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(modelDef.BaseURL))
	}
	if modelDef.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(modelDef.Timeout))
	}

	return &Client{
		api: sdk.NewClient(reqOpts...),
		opts: llm.NewGenerateOptions(
			llm.WithModel(modelDef.ModelName),
			llm.WithTemperature(modelDef.Temperature),
			llm.WithMaxTokens(modelDef.MaxTokens),
		),
	}
}

// Generate выполняет запрос к Messages API.
//
// System сообщение уходит отдельным полем, результаты инструментов —
// блоками tool_result в user сообщении, как того требует API.
func (c *Client) Generate(ctx context.Context, messages []llm.Message, toolsArgs ...any) (llm.Message, error) {
	startTime := time.Now()

	toolDefs, err := tools.DefinitionsFromArgs(toolsArgs...)
	if err != nil {
		return llm.Message{}, err
	}

	system, msgs := mapMessages(messages)
	params := sdk.MessageNewParams{
		Model:     sdk.Model(c.opts.Model),
		MaxTokens: int64(c.opts.MaxTokens),
		Messages:  msgs,
	}
	if system != "" {
		params.System = []sdk.TextBlockParam{{Text: system}}
	}
	if c.opts.Temperature > 0 {
		params.Temperature = sdk.Float(c.opts.Temperature)
	}
	if len(toolDefs) > 0 {
		params.Tools = convertTools(toolDefs)
	} else if used := historyTools(messages); len(used) > 0 {
		// Messages API отклоняет tool_use блоки без объявленных tools.
		// Объявляем их, но запрещаем новые вызовы.
		params.Tools = convertTools(used)
		params.ToolChoice = sdk.ToolChoiceUnionParam{OfNone: &sdk.ToolChoiceNoneParam{}}
	}

	resp, err := c.api.Messages.New(ctx, params)
	if err != nil {
		utils.Error("LLM API request failed",
			"provider", "anthropic",
			"model", c.opts.Model,
			"error", err,
			"duration_ms", time.Since(startTime).Milliseconds())
		return llm.Message{}, fmt.Errorf("anthropic api error: %w", err)
	}

	result := llm.Message{Role: llm.RoleAssistant}
	var text strings.Builder
	for _, block := range resp.Content {
		switch b := block.AsAny().(type) {
		case sdk.TextBlock:
			text.WriteString(b.Text)
		case sdk.ToolUseBlock:
			result.ToolCalls = append(result.ToolCalls, llm.ToolCall{
				ID:   b.ID,
				Name: b.Name,
				Args: string(b.Input),
			})
		}
	}
	result.Content = text.String()

	utils.Info("LLM response received",
		"provider", "anthropic",
		"model", c.opts.Model,
		"tool_calls_count", len(result.ToolCalls),
		"content_length", len(result.Content),
		"duration_ms", time.Since(startTime).Milliseconds())

	return result, nil
}

// mapMessages конвертирует историю в параметры SDK.
//
// Подряд идущие результаты инструментов собираются в одно user сообщение.
func mapMessages(messages []llm.Message) (string, []sdk.MessageParam) {
	var system string
	var out []sdk.MessageParam
	var pending []sdk.ContentBlockParamUnion

	flush := func() {
		if len(pending) > 0 {
			out = append(out, sdk.NewUserMessage(pending...))
			pending = nil
		}
	}

	for _, m := range messages {
		switch m.Role {
		case llm.RoleSystem:
			system = m.Content
		case llm.RoleUser:
			flush()
			out = append(out, sdk.NewUserMessage(sdk.NewTextBlock(m.Content)))
		case llm.RoleAssistant:
			flush()
			var blocks []sdk.ContentBlockParamUnion
			if m.Content != "" {
				blocks = append(blocks, sdk.NewTextBlock(m.Content))
			}
			for _, tc := range m.ToolCalls {
				blocks = append(blocks, sdk.NewToolUseBlock(tc.ID, json.RawMessage(utils.CleanJsonBlock(tc.Args)), tc.Name))
			}
			if len(blocks) == 0 {
				blocks = append(blocks, sdk.NewTextBlock(""))
			}
			out = append(out, sdk.NewAssistantMessage(blocks...))
		case llm.RoleTool:
			pending = append(pending, sdk.NewToolResultBlock(m.ToolCallID, m.Content, false))
		}
	}
	flush()
	return system, out
}

// historyTools возвращает минимальные определения инструментов,
// вызванных в истории, в порядке первого вызова.
func historyTools(messages []llm.Message) []tools.ToolDefinition {
	var defs []tools.ToolDefinition
	seen := make(map[string]struct{})
	for _, m := range messages {
		for _, tc := range m.ToolCalls {
			if _, ok := seen[tc.Name]; ok {
				continue
			}
			seen[tc.Name] = struct{}{}
			defs = append(defs, tools.ToolDefinition{
				Name:       tc.Name,
				Parameters: tools.JSONSchema{"type": "object"},
			})
		}
	}
	return defs
}

// convertTools конвертирует определения в формат Anthropic tools.
func convertTools(defs []tools.ToolDefinition) []sdk.ToolUnionParam {
	out := make([]sdk.ToolUnionParam, 0, len(defs))
	for _, def := range defs {
		tool := sdk.ToolParam{
			Name:        def.Name,
			Description: sdk.String(def.Description),
			InputSchema: sdk.ToolInputSchemaParam{
				Properties: def.Parameters.Properties(),
				Required:   def.Parameters.Required(),
			},
		}
		out = append(out, sdk.ToolUnionParam{OfTool: &tool})
	}
	return out
}
