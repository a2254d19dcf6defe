// Структуры данных - описывает формат YAML файла промпта.
package prompt

// PromptFile описывает структуру YAML-файла с промптом
type PromptFile struct {
	Messages []Message `yaml:"messages"`
}

// Message - одно сообщение в чате
type Message struct {
	Role    string `yaml:"role"`    // system, user, assistant
	Content string `yaml:"content"` // Шаблон с {{.Variables}}
}

// Data — переменные, доступные в шаблонах системных промптов.
type Data struct {
	Date  string   // Текущая дата, YYYY-MM-DD
	Tools []string // Имена зарегистрированных инструментов
}
