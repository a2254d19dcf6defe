package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ilkoid/poncho-chat/pkg/llm"
	"github.com/ilkoid/poncho-chat/pkg/tools"
	"github.com/ilkoid/poncho-chat/pkg/tools/std"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedProvider возвращает по одному ответу на вызов.
type scriptedProvider struct {
	mu        sync.Mutex
	responses []any // llm.Message или error
	calls     int
	messages  []llm.Message
	tools     []tools.ToolDefinition
}

func (p *scriptedProvider) Generate(ctx context.Context, messages []llm.Message, toolsArgs ...any) (llm.Message, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls++
	p.messages = llm.CloneMessages(messages)
	p.tools, _ = tools.DefinitionsFromArgs(toolsArgs...)

	if p.calls > len(p.responses) {
		return llm.Message{}, errors.New("no more responses")
	}
	switch r := p.responses[p.calls-1].(type) {
	case error:
		return llm.Message{}, r
	case llm.Message:
		return r, nil
	}
	return llm.Message{}, fmt.Errorf("bad script entry")
}

func suggestions(prompts ...string) llm.Message {
	calls := make([]llm.ToolCall, len(prompts))
	for i, p := range prompts {
		args, _ := json.Marshal(map[string]string{"prompt": p})
		calls[i] = llm.ToolCall{ID: fmt.Sprintf("s%d", i), Name: std.SuggestionToolName, Args: string(args)}
	}
	return llm.NewAssistantMessage("", calls...)
}

func noBackoff(int) time.Duration { return 0 }

func TestGenerator_Suggest(t *testing.T) {
	tests := []struct {
		name      string
		responses []any
		want      []string
		wantErr   bool
		wantCalls int
	}{
		{
			name:      "three on first attempt",
			responses: []any{suggestions("Tell me a joke", "What is the weather in Oslo?", "Latest news")},
			want:      []string{"Tell me a joke", "What is the weather in Oslo?", "Latest news"},
			wantCalls: 1,
		},
		{
			name: "accumulates across attempts with dedupe",
			responses: []any{
				suggestions("a", "b"),
				suggestions("b", "  ", "a"),
				suggestions("c"),
			},
			want:      []string{"a", "b", "c"},
			wantCalls: 3,
		},
		{
			name:      "truncated to target",
			responses: []any{suggestions("1", "2", "3", "4", "5")},
			want:      []string{"1", "2", "3"},
			wantCalls: 1,
		},
		{
			name: "model error counts as attempt",
			responses: []any{
				errors.New("503"),
				suggestions("a", "b", "c"),
			},
			want:      []string{"a", "b", "c"},
			wantCalls: 2,
		},
		{
			name: "exhausted after three attempts",
			responses: []any{
				suggestions("a"),
				errors.New("boom"),
				suggestions("a", "b"),
			},
			wantErr:   true,
			wantCalls: 3,
		},
		{
			name: "other tools and malformed args ignored",
			responses: []any{llm.NewAssistantMessage("",
				llm.ToolCall{ID: "1", Name: "add", Args: `{"prompt":"nope"}`},
				llm.ToolCall{ID: "2", Name: std.SuggestionToolName, Args: `not json`},
				llm.ToolCall{ID: "3", Name: std.SuggestionToolName, Args: "```json\n{\"prompt\":\"fenced\"}\n```"},
			)},
			wantErr:   true,
			wantCalls: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &scriptedProvider{responses: tt.responses}
			gen := NewGenerator(provider, "suggest prompts", WithBackoff(noBackoff))

			got, err := gen.Suggest(context.Background(), []llm.Message{llm.NewSystemMessage("sys")})
			assert.Equal(t, tt.wantCalls, provider.calls)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrSuggestionsExhausted))
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerator_MessagesAndTool(t *testing.T) {
	provider := &scriptedProvider{responses: []any{suggestions("a", "b", "c")}}
	gen := NewGenerator(provider, "You suggest prompts.")

	history := []llm.Message{
		llm.NewSystemMessage("chat system"),
		llm.NewUserMessage("Hello"),
		llm.NewAssistantMessage("Hi!"),
	}
	_, err := gen.Suggest(context.Background(), history)
	require.NoError(t, err)

	require.Len(t, provider.messages, 3)
	assert.Equal(t, llm.NewSystemMessage("You suggest prompts."), provider.messages[0])
	assert.Equal(t, "Hello", provider.messages[1].Content)
	assert.Equal(t, "Hi!", provider.messages[2].Content)

	require.Len(t, provider.tools, 1)
	assert.Equal(t, std.SuggestionToolName, provider.tools[0].Name)
}

func TestGenerator_BackoffBetweenAttempts(t *testing.T) {
	provider := &scriptedProvider{responses: []any{suggestions("a"), suggestions("b"), suggestions("c")}}

	var attempts []int
	gen := NewGenerator(provider, "p", WithBackoff(func(attempt int) time.Duration {
		attempts = append(attempts, attempt)
		return time.Millisecond
	}))

	got, err := gen.Suggest(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, []int{2, 3}, attempts)
}

func TestGenerator_ContextCancelledDuringBackoff(t *testing.T) {
	provider := &scriptedProvider{responses: []any{suggestions("a")}}
	ctx, cancel := context.WithCancel(context.Background())

	gen := NewGenerator(provider, "p", WithBackoff(func(int) time.Duration {
		cancel()
		return time.Hour
	}))

	_, err := gen.Suggest(ctx, nil)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 1, provider.calls)
}

func TestGenerator_Options(t *testing.T) {
	gen := NewGenerator(&scriptedProvider{}, "p", WithTarget(5), WithMaxAttempts(7), WithTarget(0), WithMaxAttempts(-1), WithBackoff(nil))
	assert.Equal(t, 5, gen.target)
	assert.Equal(t, 7, gen.maxAttempts)
	assert.NotNil(t, gen.backoff)
}
