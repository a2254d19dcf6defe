// Package ollama реализует адаптер llm.Provider для локального Ollama сервера.
package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	api "github.com/ollama/ollama/api"

	"github.com/ilkoid/poncho-chat/pkg/config"
	"github.com/ilkoid/poncho-chat/pkg/llm"
	"github.com/ilkoid/poncho-chat/pkg/tools"
	"github.com/ilkoid/poncho-chat/pkg/utils"
)

// DefaultHost — адрес Ollama если base_url не задан.
const DefaultHost = "http://localhost:11434"

// Client реализует интерфейс llm.Provider для Ollama /api/chat.
type Client struct {
	api  *api.Client
	opts llm.GenerateOptions
}

// NewClient создает клиент на основе конфигурации модели.
func NewClient(modelDef config.ModelDef) (*Client, error) {
	host := modelDef.BaseURL
	if host == "" {
		host = DefaultHost
	}
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base_url %q: %w", host, err)
	}

	timeout := modelDef.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		api: api.NewClient(u, &http.Client{Timeout: timeout}),
		opts: llm.NewGenerateOptions(
			llm.WithModel(modelDef.ModelName),
			llm.WithTemperature(modelDef.Temperature),
			llm.WithMaxTokens(modelDef.MaxTokens),
		),
	}, nil
}

// Wire-форма сообщений /api/chat. Собираем её сами и переводим в типы
// SDK через JSON, так адаптер не зависит от внутренних полей api.Message.
type wireFunction struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

type wireToolCall struct {
	Function wireFunction `json:"function"`
}

type wireMessage struct {
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	ToolCalls []wireToolCall `json:"tool_calls,omitempty"`
	ToolName  string         `json:"tool_name,omitempty"`
}

type wireTool struct {
	Type     string `json:"type"`
	Function struct {
		Name        string           `json:"name"`
		Description string           `json:"description"`
		Parameters  tools.JSONSchema `json:"parameters"`
	} `json:"function"`
}

// Generate выполняет non-streaming запрос /api/chat.
//
// Ollama не выдаёт id вызовов, поэтому каждому tool call присваивается uuid.
func (c *Client) Generate(ctx context.Context, messages []llm.Message, toolsArgs ...any) (llm.Message, error) {
	startTime := time.Now()

	toolDefs, err := tools.DefinitionsFromArgs(toolsArgs...)
	if err != nil {
		return llm.Message{}, err
	}

	req, err := buildRequest(c.opts, messages, toolDefs)
	if err != nil {
		return llm.Message{}, err
	}

	var last api.ChatResponse
	err = c.api.Chat(ctx, req, func(resp api.ChatResponse) error {
		last = resp
		return nil
	})
	if err != nil {
		utils.Error("LLM API request failed",
			"provider", "ollama",
			"model", c.opts.Model,
			"error", err,
			"duration_ms", time.Since(startTime).Milliseconds())
		return llm.Message{}, fmt.Errorf("ollama api error: %w", err)
	}

	result, err := parseResponse(last.Message)
	if err != nil {
		return llm.Message{}, err
	}

	utils.Info("LLM response received",
		"provider", "ollama",
		"model", c.opts.Model,
		"tool_calls_count", len(result.ToolCalls),
		"content_length", len(result.Content),
		"duration_ms", time.Since(startTime).Milliseconds())

	return result, nil
}

func buildRequest(opts llm.GenerateOptions, messages []llm.Message, defs []tools.ToolDefinition) (*api.ChatRequest, error) {
	// Результат инструмента в Ollama ссылается на имя, а не на id вызова.
	callNames := make(map[string]string)

	wireMsgs := make([]wireMessage, 0, len(messages))
	for _, m := range messages {
		wm := wireMessage{Role: string(m.Role), Content: m.Content}
		for _, tc := range m.ToolCalls {
			callNames[tc.ID] = tc.Name
			wm.ToolCalls = append(wm.ToolCalls, wireToolCall{Function: wireFunction{
				Name:      tc.Name,
				Arguments: json.RawMessage(utils.CleanJsonBlock(tc.Args)),
			}})
		}
		if m.Role == llm.RoleTool {
			wm.ToolName = callNames[m.ToolCallID]
		}
		wireMsgs = append(wireMsgs, wm)
	}

	wireTools := make([]wireTool, 0, len(defs))
	for _, def := range defs {
		var wt wireTool
		wt.Type = "function"
		wt.Function.Name = def.Name
		wt.Function.Description = def.Description
		wt.Function.Parameters = def.Parameters
		wireTools = append(wireTools, wt)
	}

	stream := false
	req := &api.ChatRequest{
		Model:  opts.Model,
		Stream: &stream,
		Options: map[string]any{
			"num_predict": opts.MaxTokens,
		},
	}
	if opts.Temperature > 0 {
		req.Options["temperature"] = opts.Temperature
	}

	if err := convertVia(wireMsgs, &req.Messages); err != nil {
		return nil, fmt.Errorf("convert messages: %w", err)
	}
	if len(wireTools) > 0 {
		if err := convertVia(wireTools, &req.Tools); err != nil {
			return nil, fmt.Errorf("convert tools: %w", err)
		}
	}
	return req, nil
}

func parseResponse(msg api.Message) (llm.Message, error) {
	var wm wireMessage
	if err := convertVia(msg, &wm); err != nil {
		return llm.Message{}, fmt.Errorf("convert response: %w", err)
	}

	result := llm.Message{Role: llm.RoleAssistant, Content: wm.Content}
	for _, tc := range wm.ToolCalls {
		args := string(tc.Function.Arguments)
		if args == "" || args == "null" {
			args = "{}"
		}
		result.ToolCalls = append(result.ToolCalls, llm.ToolCall{
			ID:   "call_" + uuid.NewString(),
			Name: tc.Function.Name,
			Args: args,
		})
	}
	return result, nil
}

// convertVia переводит значение между совместимыми JSON формами.
func convertVia(from, to any) error {
	raw, err := json.Marshal(from)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, to)
}
