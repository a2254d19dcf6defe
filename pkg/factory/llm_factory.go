package factory

import (
	"context"
	"fmt"

	"github.com/ilkoid/poncho-chat/pkg/config"
	"github.com/ilkoid/poncho-chat/pkg/llm"
	"github.com/ilkoid/poncho-chat/pkg/llm/anthropic"
	"github.com/ilkoid/poncho-chat/pkg/llm/gemini"
	"github.com/ilkoid/poncho-chat/pkg/llm/ollama"
	"github.com/ilkoid/poncho-chat/pkg/llm/openai"
)

// Значения groq/deepseek без base_url подставляются автоматически.
const (
	groqBaseURL     = "https://api.groq.com/openai/v1"
	deepseekBaseURL = "https://api.deepseek.com/v1"
)

// NewLLMProvider создает провайдера на основе конфигурации модели.
//
// Провайдер пустой строкой трактуется как "openai".
func NewLLMProvider(ctx context.Context, modelDef config.ModelDef) (llm.Provider, error) {
	switch modelDef.Provider {
	case "", "openai", "azure", "zai":
		return openai.NewClient(modelDef), nil

	case "groq":
		if modelDef.BaseURL == "" {
			modelDef.BaseURL = groqBaseURL
		}
		return openai.NewClient(modelDef), nil

	case "deepseek":
		if modelDef.BaseURL == "" {
			modelDef.BaseURL = deepseekBaseURL
		}
		return openai.NewClient(modelDef), nil

	case "anthropic":
		return anthropic.NewClient(modelDef), nil

	case "ollama":
		client, err := ollama.NewClient(modelDef)
		if err != nil {
			return nil, err
		}
		return client, nil

	case "gemini":
		client, err := gemini.NewClient(ctx, modelDef)
		if err != nil {
			return nil, err
		}
		return client, nil

	default:
		return nil, fmt.Errorf("unknown provider type: %s", modelDef.Provider)
	}
}
