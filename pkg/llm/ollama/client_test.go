package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ilkoid/poncho-chat/pkg/config"
	"github.com/ilkoid/poncho-chat/pkg/llm"
	"github.com/ilkoid/poncho-chat/pkg/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_ToolCalls(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"model":"llama3.1","created_at":"2024-05-01T00:00:00Z","message":{"role":"assistant","content":"","tool_calls":[{"function":{"name":"add","arguments":{"a":2,"b":2}}}]},"done":true}`)
	}))
	defer srv.Close()

	client, err := NewClient(config.ModelDef{ModelName: "llama3.1", BaseURL: srv.URL})
	require.NoError(t, err)

	defs := []tools.ToolDefinition{{
		Name:        "add",
		Description: "Adds a and b.",
		Parameters:  tools.ObjectSchema(map[string]string{"a": "integer", "b": "integer"}, "a", "b"),
	}}

	msg, err := client.Generate(context.Background(), []llm.Message{
		llm.NewSystemMessage("sys"),
		llm.NewUserMessage("What is 2+2?"),
	}, defs)
	require.NoError(t, err)

	assert.Equal(t, "llama3.1", got["model"])
	assert.Equal(t, false, got["stream"])
	assert.Len(t, got["messages"], 2)
	assert.Len(t, got["tools"], 1)

	require.Len(t, msg.ToolCalls, 1)
	assert.Equal(t, "add", msg.ToolCalls[0].Name)
	assert.JSONEq(t, `{"a":2,"b":2}`, msg.ToolCalls[0].Args)
	assert.True(t, strings.HasPrefix(msg.ToolCalls[0].ID, "call_"))
}

func TestBuildRequest_ToolResultCarriesName(t *testing.T) {
	history := []llm.Message{
		llm.NewUserMessage("What is 2+2?"),
		llm.NewAssistantMessage("", llm.ToolCall{ID: "c1", Name: "add", Args: `{"a":2,"b":2}`}),
		llm.NewToolResultMessage("c1", "4"),
	}

	req, err := buildRequest(llm.NewGenerateOptions(llm.WithModel("m")), history, nil)
	require.NoError(t, err)
	require.Len(t, req.Messages, 3)

	raw, err := json.Marshal(req.Messages[2])
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"tool_name":"add"`)
	assert.Empty(t, req.Tools)
}

func TestNewClient_InvalidURL(t *testing.T) {
	_, err := NewClient(config.ModelDef{ModelName: "m", BaseURL: "://bad"})
	assert.Error(t, err)
}
