package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ilkoid/poncho-chat/pkg/config"
	"github.com/ilkoid/poncho-chat/pkg/llm"
	"github.com/ilkoid/poncho-chat/pkg/tools"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewClient тестирует создание клиента.
func TestNewClient(t *testing.T) {
	tests := []struct {
		name     string
		modelDef config.ModelDef
	}{
		{"minimal config", config.ModelDef{APIKey: "test-key", ModelName: "gpt-4"}},
		{"groq base url", config.ModelDef{APIKey: "test-key", ModelName: "llama3-70b-8192", BaseURL: "https://api.groq.com/openai/v1"}},
		{"azure deployment", config.ModelDef{Provider: "azure", APIKey: "k", ModelName: "gpt35", BaseURL: "https://res.openai.azure.com", APIVersion: "2023-12-01-preview"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(tt.modelDef)
			require.NotNil(t, client)
			assert.NotNil(t, client.api)
			assert.Equal(t, tt.modelDef.ModelName, client.opts.Model)
			assert.Equal(t, llm.DefaultMaxTokens, client.opts.MaxTokens)
		})
	}
}

// TestConvertToolsToOpenAI тестирует конвертацию tools.
func TestConvertToolsToOpenAI(t *testing.T) {
	input := []tools.ToolDefinition{
		{
			Name:        "add",
			Description: "Adds a and b.",
			Parameters:  tools.ObjectSchema(map[string]string{"a": "integer", "b": "integer"}, "a", "b"),
		},
		{
			Name:        "find_current_news_headlines",
			Description: "News",
			Parameters:  tools.ObjectSchema(nil),
		},
	}

	result := convertToolsToOpenAI(input)

	require.Len(t, result, 2)
	assert.Equal(t, openai.ToolTypeFunction, result[0].Type)
	assert.Equal(t, "add", result[0].Function.Name)
	assert.Equal(t, "Adds a and b.", result[0].Function.Description)
	assert.Equal(t, input[0].Parameters, result[0].Function.Parameters)
}

func TestMapToOpenAI(t *testing.T) {
	stub := llm.NewAssistantMessage("", llm.ToolCall{ID: "c1", Name: "add", Args: `{"a":2,"b":2}`})
	msg := mapToOpenAI(stub)
	assert.Equal(t, "assistant", msg.Role)
	require.Len(t, msg.ToolCalls, 1)
	assert.Equal(t, "c1", msg.ToolCalls[0].ID)
	assert.Equal(t, "add", msg.ToolCalls[0].Function.Name)
	assert.Equal(t, `{"a":2,"b":2}`, msg.ToolCalls[0].Function.Arguments)

	result := mapToOpenAI(llm.NewToolResultMessage("c1", "4"))
	assert.Equal(t, "tool", result.Role)
	assert.Equal(t, "c1", result.ToolCallID)
	assert.Equal(t, "4", result.Content)
}

func TestGenerate_RoundTrip(t *testing.T) {
	var got openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"id": "x",
			"object": "chat.completion",
			"choices": [{
				"index": 0,
				"finish_reason": "tool_calls",
				"message": {
					"role": "assistant",
					"content": "",
					"tool_calls": [{"id": "c1", "type": "function", "function": {"name": "add", "arguments": "{\"a\":2,\"b\":2}"}}]
				}
			}]
		}`)
	}))
	defer srv.Close()

	client := NewClient(config.ModelDef{APIKey: "k", ModelName: "gpt35", BaseURL: srv.URL, MaxTokens: 200})
	defs := []tools.ToolDefinition{{Name: "add", Description: "Adds", Parameters: tools.ObjectSchema(map[string]string{"a": "integer"}, "a")}}

	msg, err := client.Generate(context.Background(), []llm.Message{
		llm.NewSystemMessage("sys"),
		llm.NewUserMessage("What is 2+2?"),
	}, defs)
	require.NoError(t, err)

	assert.Equal(t, "gpt35", got.Model)
	assert.Equal(t, 200, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	require.Len(t, got.Tools, 1)
	assert.Equal(t, "auto", got.ToolChoice)

	assert.Equal(t, llm.RoleAssistant, msg.Role)
	require.Len(t, msg.ToolCalls, 1)
	assert.Equal(t, llm.ToolCall{ID: "c1", Name: "add", Args: `{"a":2,"b":2}`}, msg.ToolCalls[0])
}

func TestGenerate_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error": {"message": "boom"}}`)
	}))
	defer srv.Close()

	client := NewClient(config.ModelDef{APIKey: "k", ModelName: "gpt4", BaseURL: srv.URL})

	_, err := client.Generate(context.Background(), []llm.Message{llm.NewUserMessage("hi")})
	assert.Error(t, err)

	_, err = client.Generate(context.Background(), []llm.Message{llm.NewUserMessage("hi")}, "bad tools")
	assert.Error(t, err)
}

func TestGenerate_ModelTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices": [{"index": 0, "message": {"role": "assistant", "content": "late"}}]}`)
	}))
	defer srv.Close()

	client := NewClient(config.ModelDef{APIKey: "k", ModelName: "gpt4", BaseURL: srv.URL, Timeout: 100 * time.Millisecond})

	start := time.Now()
	_, err := client.Generate(context.Background(), []llm.Message{llm.NewUserMessage("hi")})
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}
