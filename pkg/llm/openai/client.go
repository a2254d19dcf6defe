// Package openai реализует адаптер LLM провайдера для OpenAI-совместимых API.
//
// Один адаптер обслуживает OpenAI, Azure OpenAI (deployment + api_version)
// и любой OpenAI-совместимый endpoint через base_url (Groq, DeepSeek).
// Соблюдает правило 4 манифеста: работает только через интерфейс llm.Provider.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ilkoid/poncho-chat/pkg/config"
	"github.com/ilkoid/poncho-chat/pkg/llm"
	"github.com/ilkoid/poncho-chat/pkg/tools"
	"github.com/ilkoid/poncho-chat/pkg/utils"
	openai "github.com/sashabaranov/go-openai"
)

// Client реализует интерфейс llm.Provider для OpenAI-совместимых API.
type Client struct {
	api  *openai.Client
	opts llm.GenerateOptions
}

// NewClient создает OpenAI клиент на основе конфигурации модели.
//
// provider "azure" использует Azure конфигурацию SDK: base_url — адрес ресурса,
// model_name — имя deployment, api_version обязателен для Azure API.
//
// Правило 2: Все настройки из конфигурации, никакого хардкода.
func NewClient(modelDef config.ModelDef) *Client {
	var cfg openai.ClientConfig
	if modelDef.Provider == "azure" {
		cfg = openai.DefaultAzureConfig(modelDef.APIKey, modelDef.BaseURL)
		if modelDef.APIVersion != "" {
			cfg.APIVersion = modelDef.APIVersion
		}
	} else {
		// Поддержка custom BaseURL для non-OpenAI провайдеров (Groq, DeepSeek и т.д.)
		cfg = openai.DefaultConfig(modelDef.APIKey)
		if modelDef.BaseURL != "" {
			cfg.BaseURL = modelDef.BaseURL
		}
	}

	if modelDef.Timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: modelDef.Timeout}
	}

	return &Client{
		api: openai.NewClientWithConfig(cfg),
		opts: llm.NewGenerateOptions(
			llm.WithModel(modelDef.ModelName),
			llm.WithTemperature(modelDef.Temperature),
			llm.WithMaxTokens(modelDef.MaxTokens),
		),
	}
}

// Generate выполняет запрос к API и возвращает ответ модели.
//
// Поддерживает опциональную передачу definitions инструментов для Function Calling:
//   toolsArgs[0] должен быть []tools.ToolDefinition
//
// Правило 7: Все ошибки возвращаются, никаких panic.
func (c *Client) Generate(ctx context.Context, messages []llm.Message, toolsArgs ...any) (llm.Message, error) {
	startTime := time.Now()

	toolDefs, err := tools.DefinitionsFromArgs(toolsArgs...)
	if err != nil {
		return llm.Message{}, err
	}

	utils.Debug("LLM request started",
		"provider", "openai",
		"model", c.opts.Model,
		"messages_count", len(messages),
		"tools_count", len(toolDefs))

	// 1. Конвертируем наши сообщения в формат OpenAI SDK
	openaiMsgs := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		openaiMsgs[i] = mapToOpenAI(m)
	}

	// 2. Создаём базовый запрос
	req := openai.ChatCompletionRequest{
		Model:       c.opts.Model,
		Messages:    openaiMsgs,
		MaxTokens:   c.opts.MaxTokens,
		Temperature: float32(c.opts.Temperature),
	}

	// 3. Добавляем tools если переданы
	if len(toolDefs) > 0 {
		req.Tools = convertToolsToOpenAI(toolDefs)

		// Включаем автоматический режим — LLM сама решает когда вызывать tools
		req.ToolChoice = "auto"
	}

	// 4. Вызываем API
	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		utils.Error("LLM API request failed",
			"error", err,
			"model", c.opts.Model,
			"duration_ms", time.Since(startTime).Milliseconds())
		return llm.Message{}, fmt.Errorf("openai api error: %w", err)
	}

	// Проверяем что есть хотя бы один выбор
	if len(resp.Choices) == 0 {
		return llm.Message{}, fmt.Errorf("no choices in response")
	}

	// 5. Маппим ответ обратно в наш формат
	result := mapFromOpenAI(resp.Choices[0].Message)

	utils.Info("LLM response received",
		"model", c.opts.Model,
		"tool_calls_count", len(result.ToolCalls),
		"content_length", len(result.Content),
		"duration_ms", time.Since(startTime).Milliseconds())

	return result, nil
}

// mapToOpenAI конвертирует наше внутреннее сообщение в формат SDK.
//
// Assistant сообщение сохраняет свои tool calls, а результат инструмента
// ссылается на них через tool_call_id: без этого API отклонит историю.
func mapToOpenAI(m llm.Message) openai.ChatCompletionMessage {
	msg := openai.ChatCompletionMessage{
		Role:    string(m.Role),
		Content: m.Content,
	}

	switch m.Role {
	case llm.RoleAssistant:
		for _, tc := range m.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.Args,
				},
			})
		}
	case llm.RoleTool:
		msg.ToolCallID = m.ToolCallID
	}

	return msg
}

// mapFromOpenAI конвертирует ответ SDK в llm.Message.
//
// Ответ всегда Assistant, даже если API не заполнил роль.
func mapFromOpenAI(choice openai.ChatCompletionMessage) llm.Message {
	result := llm.Message{
		Role:    llm.RoleAssistant,
		Content: choice.Content,
	}

	// Извлекаем ToolCalls если модель решила вызвать функции
	if len(choice.ToolCalls) > 0 {
		result.ToolCalls = make([]llm.ToolCall, len(choice.ToolCalls))
		for i, tc := range choice.ToolCalls {
			result.ToolCalls[i] = llm.ToolCall{
				ID:   tc.ID,
				Name: tc.Function.Name,
				Args: tc.Function.Arguments,
			}
		}
	}
	return result
}

// convertToolsToOpenAI конвертирует определения инструментов во внутреннем формате
// в формат OpenAI Function Calling.
//
// ToolDefinition.Parameters уже является JSON Schema объектом, поэтому
// он напрямую передаётся в OpenAI SDK.
func convertToolsToOpenAI(defs []tools.ToolDefinition) []openai.Tool {
	result := make([]openai.Tool, len(defs))

	for i, def := range defs {
		result[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  def.Parameters,
			},
		}
	}

	return result
}
