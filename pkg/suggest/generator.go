// Package suggest генерирует подсказки следующего запроса пользователя.
//
// Generator просит модель подсказок вызвать инструмент add_prompt_suggestion
// несколько раз и собирает аргументы prompt в множество. Board — async
// наблюдатель, который держит три слота подсказок для UI.
package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ilkoid/poncho-chat/pkg/config"
	"github.com/ilkoid/poncho-chat/pkg/llm"
	"github.com/ilkoid/poncho-chat/pkg/tools"
	"github.com/ilkoid/poncho-chat/pkg/tools/std"
	"github.com/ilkoid/poncho-chat/pkg/utils"
)

// ErrSuggestionsExhausted — за все попытки собрано меньше подсказок, чем нужно.
var ErrSuggestionsExhausted = errors.New("suggestion attempts exhausted")

// BackoffFunc возвращает паузу перед попыткой attempt (нумерация с 2).
type BackoffFunc func(attempt int) time.Duration

// ConstantBackoff возвращает одну и ту же паузу для всех попыток.
func ConstantBackoff(d time.Duration) BackoffFunc {
	return func(int) time.Duration { return d }
}

// Generator собирает подсказки через модель с function calling.
type Generator struct {
	provider     llm.Provider
	systemPrompt string
	definition   tools.ToolDefinition

	target      int
	maxAttempts int
	backoff     BackoffFunc
}

// Option настраивает Generator.
type Option func(*Generator)

// WithTarget задаёт нужное количество подсказок.
func WithTarget(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.target = n
		}
	}
}

// WithMaxAttempts задаёт количество вызовов модели.
func WithMaxAttempts(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxAttempts = n
		}
	}
}

// WithBackoff задаёт паузу между неудачными попытками.
func WithBackoff(b BackoffFunc) Option {
	return func(g *Generator) {
		if b != nil {
			g.backoff = b
		}
	}
}

// NewGenerator создаёт генератор подсказок.
func NewGenerator(provider llm.Provider, systemPrompt string, opts ...Option) *Generator {
	g := &Generator{
		provider:     provider,
		systemPrompt: systemPrompt,
		definition:   std.NewPromptSuggestionTool().Definition(),
		target:       config.DefaultSuggestionTarget,
		maxAttempts:  config.DefaultSuggestionRetries,
		backoff:      ConstantBackoff(config.DefaultSuggestionBackoff),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Suggest возвращает ровно target различных подсказок или ErrSuggestionsExhausted.
//
// history — снапшот истории; её System сообщение заменяется промптом подсказок.
func (g *Generator) Suggest(ctx context.Context, history []llm.Message) ([]string, error) {
	start := time.Now()
	messages := g.buildMessages(history)

	var collected []string
	seen := make(map[string]struct{})

	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, g.backoff(attempt)); err != nil {
				return nil, err
			}
		}

		resp, err := g.provider.Generate(ctx, messages, []tools.ToolDefinition{g.definition})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			utils.Warn("Suggestion attempt failed", "attempt", attempt, "error", err)
			continue
		}

		for _, prompt := range extractPrompts(resp) {
			if _, dup := seen[prompt]; dup {
				continue
			}
			seen[prompt] = struct{}{}
			collected = append(collected, prompt)
		}

		utils.Debug("Suggestion attempt",
			"attempt", attempt,
			"tool_calls", len(resp.ToolCalls),
			"collected", len(collected))

		if len(collected) >= g.target {
			utils.Info("Suggestions generated",
				"attempts", attempt,
				"elapsed_ms", time.Since(start).Milliseconds())
			return collected[:g.target], nil
		}
	}

	utils.Warn("Suggestions exhausted",
		"attempts", g.maxAttempts,
		"collected", len(collected),
		"elapsed_ms", time.Since(start).Milliseconds())
	return nil, fmt.Errorf("%w: got %d of %d after %d attempts",
		ErrSuggestionsExhausted, len(collected), g.target, g.maxAttempts)
}

func (g *Generator) buildMessages(history []llm.Message) []llm.Message {
	messages := make([]llm.Message, 0, len(history)+1)
	messages = append(messages, llm.NewSystemMessage(g.systemPrompt))
	for _, msg := range history {
		if msg.Role == llm.RoleSystem {
			continue
		}
		messages = append(messages, llm.CloneMessage(msg))
	}
	return messages
}

// extractPrompts достаёт непустые аргументы prompt из вызовов add_prompt_suggestion.
func extractPrompts(resp llm.Message) []string {
	var prompts []string
	for _, tc := range resp.ToolCalls {
		if tc.Name != std.SuggestionToolName {
			continue
		}
		var args struct {
			Prompt string `json:"prompt"`
		}
		if err := json.Unmarshal([]byte(utils.CleanJsonBlock(tc.Args)), &args); err != nil {
			utils.Debug("Skipping malformed suggestion", "args", tc.Args, "error", err)
			continue
		}
		if p := strings.TrimSpace(args.Prompt); p != "" {
			prompts = append(prompts, p)
		}
	}
	return prompts
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
