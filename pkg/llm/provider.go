// Интерфейс Провайдера через который работает всё приложение.

package llm

import "context"

// Provider — контракт для любого AI-сервиса (OpenAI, Anthropic, Ollama, Gemini).
//
// Какая именно модель стоит за провайдером — вопрос конфигурации,
// ядро чата знает только этот метод.
type Provider interface {
	// Generate принимает контекст и историю сообщений.
	// Возвращает ответ модели в унифицированном формате Message.
	// tools — опциональный список определений функций: tools[0] должен быть
	// []tools.ToolDefinition (если провайдер поддерживает Function Calling).
	Generate(ctx context.Context, messages []Message, tools ...any) (Message, error)
}

// ProviderFunc позволяет использовать функцию как Provider (удобно в тестах).
type ProviderFunc func(ctx context.Context, messages []Message, tools ...any) (Message, error)

// Generate вызывает f.
func (f ProviderFunc) Generate(ctx context.Context, messages []Message, tools ...any) (Message, error) {
	return f(ctx, messages, tools...)
}
