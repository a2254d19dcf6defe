// Package prompt предоставляет функции для загрузки и рендеринга промптов.
package prompt

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ilkoid/poncho-chat/pkg/config"
)

// Имена файлов промптов в app.prompts_dir.
const (
	SystemPromptFile     = "chat_system.yaml"
	SuggestionPromptFile = "suggestion_system.yaml"
)

// DefaultSystemPrompt — системный промпт диалога по умолчанию.
const DefaultSystemPrompt = `You are a helpful assistant. Help the user with any kind of request and answer as well as you can. Never answer with "I am just an AI".

## Functions

You can fetch the most recent news headlines, both world news and Norwegian news. Report headlines in their original language, do not translate them.

You can add and multiply integers. Never do arithmetic yourself, always use the functions.

You can look up the current weather for a city.

A tool message means you called a function earlier. Use its output in your answer, but never mention the function itself.
{{if .Tools}}
Available functions: {{range $i, $t := .Tools}}{{if $i}}, {{end}}{{$t}}{{end}}.
{{end}}`

// DefaultSuggestionPrompt — системный промпт модели подсказок по умолчанию.
const DefaultSuggestionPrompt = `Your task is to write three (3) prompts that the user might naturally ask a chatbot next, based on the conversation so far.

- Look at the previous messages to understand what the user is interested in.
- Write three engaging, open-ended questions in the user's own voice and style.
- Phrase each question as if the user wrote it, ready for the chatbot to answer.
- Call the 'add_prompt_suggestion' function once for every question.

If the conversation gives no obvious follow-up, suggest questions people commonly ask about the same subject.`

// LoadSystemPrompt возвращает системный промпт диалога.
//
// Приоритет: chat.system_prompt из config.yaml, затем
// {PromptsDir}/chat_system.yaml, затем DefaultSystemPrompt.
// Результат рендерится как text/template с data.
func LoadSystemPrompt(cfg *config.AppConfig, data Data) (string, error) {
	return load(cfg.Chat.SystemPrompt, cfg.App.PromptsDir, SystemPromptFile, DefaultSystemPrompt, data)
}

// LoadSuggestionPrompt возвращает системный промпт модели подсказок.
//
// Приоритет тот же, что у LoadSystemPrompt, файл — suggestion_system.yaml.
func LoadSuggestionPrompt(cfg *config.AppConfig, data Data) (string, error) {
	return load(cfg.Chat.SuggestionPrompt, cfg.App.PromptsDir, SuggestionPromptFile, DefaultSuggestionPrompt, data)
}

func load(inline, dir, file, fallback string, data Data) (string, error) {
	if inline != "" {
		return Render(inline, data)
	}

	if dir != "" {
		path := filepath.Join(dir, file)
		if _, err := os.Stat(path); err == nil {
			pf, err := Load(path)
			if err != nil {
				return "", fmt.Errorf("failed to load prompt from %s: %w", path, err)
			}
			msgs, err := pf.RenderMessages(data)
			if err != nil {
				return "", fmt.Errorf("failed to render prompt %s: %w", path, err)
			}
			// Первое сообщение — системный промпт
			if len(msgs) > 0 && msgs[0].Content != "" {
				return msgs[0].Content, nil
			}
		}
	}

	return Render(fallback, data)
}
