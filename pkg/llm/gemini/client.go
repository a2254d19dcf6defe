// Package gemini реализует адаптер llm.Provider для Google Gemini.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"github.com/ilkoid/poncho-chat/pkg/config"
	"github.com/ilkoid/poncho-chat/pkg/llm"
	"github.com/ilkoid/poncho-chat/pkg/tools"
	"github.com/ilkoid/poncho-chat/pkg/utils"
)

// Client реализует интерфейс llm.Provider для Gemini.
type Client struct {
	api     *genai.Client
	opts    llm.GenerateOptions
	timeout time.Duration
}

// NewClient создает клиент на основе конфигурации модели.
func NewClient(ctx context.Context, modelDef config.ModelDef) (*Client, error) {
	if modelDef.APIKey == "" {
		return nil, fmt.Errorf("gemini: api_key is required")
	}

	clientOpts := []option.ClientOption{option.WithAPIKey(modelDef.APIKey)}
	if modelDef.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(modelDef.BaseURL))
	}

	client, err := genai.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("gemini init: %w", err)
	}

	return &Client{
		api:     client,
		timeout: modelDef.Timeout,
		opts: llm.NewGenerateOptions(
			llm.WithModel(modelDef.ModelName),
			llm.WithTemperature(modelDef.Temperature),
			llm.WithMaxTokens(modelDef.MaxTokens),
		),
	}, nil
}

// Close освобождает соединения клиента.
func (c *Client) Close() error {
	return c.api.Close()
}

// Generate отправляет историю в чат-сессию Gemini.
//
// Последнее сообщение истории уходит через SendMessage, предыдущие
// становятся History сессии. Gemini не выдаёт id вызовов, поэтому
// каждому FunctionCall присваивается uuid.
func (c *Client) Generate(ctx context.Context, messages []llm.Message, toolsArgs ...any) (llm.Message, error) {
	startTime := time.Now()

	toolDefs, err := tools.DefinitionsFromArgs(toolsArgs...)
	if err != nil {
		return llm.Message{}, err
	}

	system, contents := mapMessages(messages)
	if len(contents) == 0 {
		return llm.Message{}, fmt.Errorf("gemini: no messages to send")
	}

	ctx, cancel := c.requestContext(ctx)
	defer cancel()

	model := c.api.GenerativeModel(c.opts.Model)
	model.SetMaxOutputTokens(int32(c.opts.MaxTokens))
	if c.opts.Temperature > 0 {
		model.SetTemperature(float32(c.opts.Temperature))
	}
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	if len(toolDefs) > 0 {
		model.Tools = []*genai.Tool{convertTools(toolDefs)}
	}

	session := model.StartChat()
	session.History = contents[:len(contents)-1]
	resp, err := session.SendMessage(ctx, contents[len(contents)-1].Parts...)
	if err != nil {
		utils.Error("LLM API request failed",
			"provider", "gemini",
			"model", c.opts.Model,
			"error", err,
			"duration_ms", time.Since(startTime).Milliseconds())
		return llm.Message{}, fmt.Errorf("gemini generate: %w", err)
	}

	result, err := parseResponse(resp)
	if err != nil {
		return llm.Message{}, err
	}

	utils.Info("LLM response received",
		"provider", "gemini",
		"model", c.opts.Model,
		"tool_calls_count", len(result.ToolCalls),
		"content_length", len(result.Content),
		"duration_ms", time.Since(startTime).Milliseconds())

	return result, nil
}

// requestContext ограничивает запрос timeout из ModelDef.
// SDK не принимает свой http.Client вместе с API ключом, поэтому
// deadline задаётся через контекст.
func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// mapMessages конвертирует историю в genai.Content.
//
// Роли Gemini: "user" и "model". Результаты инструментов идут как
// FunctionResponse части user сообщения, подряд идущие объединяются.
func mapMessages(messages []llm.Message) (string, []*genai.Content) {
	var system string
	var out []*genai.Content
	callNames := make(map[string]string)

	for _, m := range messages {
		switch m.Role {
		case llm.RoleSystem:
			system = m.Content
		case llm.RoleUser:
			out = append(out, &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(m.Content)}})
		case llm.RoleAssistant:
			var parts []genai.Part
			if m.Content != "" {
				parts = append(parts, genai.Text(m.Content))
			}
			for _, tc := range m.ToolCalls {
				callNames[tc.ID] = tc.Name
				parts = append(parts, genai.FunctionCall{Name: tc.Name, Args: decodeArgs(tc.Args)})
			}
			if len(parts) == 0 {
				parts = append(parts, genai.Text(""))
			}
			out = append(out, &genai.Content{Role: "model", Parts: parts})
		case llm.RoleTool:
			part := genai.FunctionResponse{
				Name:     callNames[m.ToolCallID],
				Response: map[string]any{"output": m.Content},
			}
			if n := len(out); n > 0 && out[n-1].Role == "user" && isFunctionResponses(out[n-1]) {
				out[n-1].Parts = append(out[n-1].Parts, part)
				continue
			}
			out = append(out, &genai.Content{Role: "user", Parts: []genai.Part{part}})
		}
	}
	return system, out
}

func isFunctionResponses(c *genai.Content) bool {
	for _, p := range c.Parts {
		if _, ok := p.(genai.FunctionResponse); !ok {
			return false
		}
	}
	return len(c.Parts) > 0
}

func decodeArgs(raw string) map[string]any {
	args := make(map[string]any)
	if err := json.Unmarshal([]byte(utils.CleanJsonBlock(raw)), &args); err != nil {
		utils.Warn("gemini: cannot decode tool call args", "args", raw, "error", err)
	}
	return args
}

func parseResponse(resp *genai.GenerateContentResponse) (llm.Message, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return llm.Message{}, fmt.Errorf("gemini: empty response")
	}

	result := llm.Message{Role: llm.RoleAssistant}
	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		switch p := part.(type) {
		case genai.Text:
			text.WriteString(string(p))
		case genai.FunctionCall:
			args, err := json.Marshal(p.Args)
			if err != nil {
				return llm.Message{}, fmt.Errorf("gemini: encode args: %w", err)
			}
			result.ToolCalls = append(result.ToolCalls, llm.ToolCall{
				ID:   "call_" + uuid.NewString(),
				Name: p.Name,
				Args: string(args),
			})
		}
	}
	result.Content = text.String()
	return result, nil
}

// convertTools конвертирует определения в FunctionDeclarations.
func convertTools(defs []tools.ToolDefinition) *genai.Tool {
	tool := &genai.Tool{}
	for _, def := range defs {
		schema := &genai.Schema{
			Type:       genai.TypeObject,
			Properties: make(map[string]*genai.Schema),
			Required:   def.Parameters.Required(),
		}
		for name, prop := range def.Parameters.Properties() {
			typ, _ := prop["type"].(string)
			desc, _ := prop["description"].(string)
			schema.Properties[name] = &genai.Schema{Type: schemaType(typ), Description: desc}
		}
		tool.FunctionDeclarations = append(tool.FunctionDeclarations, &genai.FunctionDeclaration{
			Name:        def.Name,
			Description: def.Description,
			Parameters:  schema,
		})
	}
	return tool
}

func schemaType(jsonType string) genai.Type {
	switch jsonType {
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}
