package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig — корневая структура конфигурации.
// Она зеркалит структуру config.yaml.
type AppConfig struct {
	Models  ModelsConfig          `yaml:"models"`
	Chat    ChatConfig            `yaml:"chat"`
	Tools   map[string]ToolConfig `yaml:"tools"`
	HTTP    HTTPConfig            `yaml:"http"`
	News    NewsConfig            `yaml:"news"`
	Weather WeatherConfig         `yaml:"weather"`
	App     AppSpecific           `yaml:"app"`
}

// ModelsConfig — настройки AI моделей.
//
// Три роли моделей: решение о вызове инструментов, финальный ответ
// и генерация подсказок. Каждая роль ссылается на алиас из Definitions.
type ModelsConfig struct {
	ToolsModel   string              `yaml:"tools_model"`   // Модель с function calling (например, "gpt35")
	AnswerModel  string              `yaml:"answer_model"`  // Модель финального ответа (например, "gpt4")
	SuggestModel string              `yaml:"suggest_model"` // Модель подсказок (по умолчанию = answer_model)
	Definitions  map[string]ModelDef `yaml:"definitions"`   // Словарь определений моделей
}

// ModelDef — параметры конкретной модели.
type ModelDef struct {
	Provider    string        `yaml:"provider"`    // "openai", "azure", "groq", "anthropic", "ollama", "gemini"
	ModelName   string        `yaml:"model_name"`  // Реальное имя в API (для azure — deployment)
	APIKey      string        `yaml:"api_key"`     // Поддерживает ${VAR}
	BaseURL     string        `yaml:"base_url"`    // Custom endpoint (Groq, Azure resource, Ollama host)
	APIVersion  string        `yaml:"api_version"` // Только для azure
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"` // Go умеет парсить строки вида "60s", "1m"
}

// ChatConfig — параметры цикла диалога и подсказок.
type ChatConfig struct {
	SystemPrompt      string        `yaml:"system_prompt"`
	SuggestionPrompt  string        `yaml:"suggestion_prompt"`
	ToolTimeout       time.Duration `yaml:"tool_timeout"`
	TurnTimeout       time.Duration `yaml:"turn_timeout"`
	SuggestionTarget  int           `yaml:"suggestion_target"`
	SuggestionRetries int           `yaml:"suggestion_attempts"`
	SuggestionBackoff time.Duration `yaml:"suggestion_backoff"`
	InitialPrompts    []string      `yaml:"initial_suggestions"`
}

// ToolConfig — настройки инструментов.
type ToolConfig struct {
	Enabled bool          `yaml:"enabled"`
	Timeout time.Duration `yaml:"timeout"`
}

// HTTPConfig — общий HTTP клиент для инструментов (новости, погода).
type HTTPConfig struct {
	RateLimit     int    `yaml:"rate_limit"`     // Запросов в минуту на хост
	BurstLimit    int    `yaml:"burst_limit"`    // Burst для rate limiter
	RetryAttempts int    `yaml:"retry_attempts"` // Количество retry попыток
	Timeout       string `yaml:"timeout"`        // Timeout для HTTP запросов (например, "30s")
	UserAgent     string `yaml:"user_agent"`
}

// NewsConfig — источники новостей.
type NewsConfig struct {
	WorldURL     string `yaml:"world_url"`
	NorwegianRSS string `yaml:"norwegian_rss"`
	MaxItems     int    `yaml:"max_items"`
	MaxChars     int    `yaml:"max_chars"`
}

// WeatherConfig — open-meteo endpoints.
type WeatherConfig struct {
	GeocodingURL string `yaml:"geocoding_url"`
	ForecastURL  string `yaml:"forecast_url"`
}

// AppSpecific — общие настройки приложения.
type AppSpecific struct {
	Debug      bool   `yaml:"debug"`
	LogDir     string `yaml:"log_dir"`
	PromptsDir string `yaml:"prompts_dir"` // chat_system.yaml, suggestion_system.yaml
}

// Дефолтные значения chat секции.
const (
	DefaultToolTimeout       = 30 * time.Second
	DefaultTurnTimeout       = 2 * time.Minute
	DefaultSuggestionTarget  = 3
	DefaultSuggestionRetries = 3
	DefaultSuggestionBackoff = 100 * time.Millisecond
)

// DefaultInitialPrompts — подсказки, которые видны до первого ответа AI.
var DefaultInitialPrompts = []string{
	"What is 16 * 256 and is it a prime?",
	"What are some of the current Norwegian news?",
	"What is the weather in Oslo, Norway right now?",
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
func (c *HTTPConfig) GetDefaults() HTTPConfig {
	result := *c // Копируем текущие значения

	if result.RateLimit == 0 {
		result.RateLimit = 60 // запросов в минуту
	}
	if result.BurstLimit == 0 {
		result.BurstLimit = 5
	}
	if result.RetryAttempts == 0 {
		result.RetryAttempts = 3
	}
	if result.Timeout == "" {
		result.Timeout = "30s"
	}
	if result.UserAgent == "" {
		result.UserAgent = "poncho-chat/1.0"
	}
	return result
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
func (c *NewsConfig) GetDefaults() NewsConfig {
	result := *c
	if result.WorldURL == "" {
		result.WorldURL = "https://www.nytimes.com/international/"
	}
	if result.NorwegianRSS == "" {
		result.NorwegianRSS = "https://www.nrk.no/toppsaker.rss"
	}
	if result.MaxItems == 0 {
		result.MaxItems = 15
	}
	if result.MaxChars == 0 {
		result.MaxChars = 6000
	}
	return result
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
func (c *WeatherConfig) GetDefaults() WeatherConfig {
	result := *c
	if result.GeocodingURL == "" {
		result.GeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"
	}
	if result.ForecastURL == "" {
		result.ForecastURL = "https://api.open-meteo.com/v1/forecast"
	}
	return result
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
func (c *ChatConfig) GetDefaults() ChatConfig {
	result := *c
	if result.ToolTimeout <= 0 {
		result.ToolTimeout = DefaultToolTimeout
	}
	if result.TurnTimeout <= 0 {
		result.TurnTimeout = DefaultTurnTimeout
	}
	if result.SuggestionTarget <= 0 {
		result.SuggestionTarget = DefaultSuggestionTarget
	}
	if result.SuggestionRetries <= 0 {
		result.SuggestionRetries = DefaultSuggestionRetries
	}
	if result.SuggestionBackoff <= 0 {
		result.SuggestionBackoff = DefaultSuggestionBackoff
	}
	if len(result.InitialPrompts) == 0 {
		result.InitialPrompts = append([]string(nil), DefaultInitialPrompts...)
	}
	return result
}

// Load читает YAML файл, подставляет ENV переменные и возвращает готовую структуру.
func Load(path string) (*AppConfig, error) {
	// 1. Проверяем существование файла
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found at: %s", path)
	}

	// 2. Читаем файл целиком
	rawBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(rawBytes)
}

// Parse разбирает содержимое config.yaml.
//
// os.ExpandEnv заменяет ${VAR} или $VAR на значение из системы.
func Parse(raw []byte) (*AppConfig, error) {
	contentWithEnv := os.ExpandEnv(string(raw))

	var cfg AppConfig
	if err := yaml.Unmarshal([]byte(contentWithEnv), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	if cfg.Models.SuggestModel == "" {
		cfg.Models.SuggestModel = cfg.Models.AnswerModel
	}
	cfg.Chat = cfg.Chat.GetDefaults()
	cfg.HTTP = cfg.HTTP.GetDefaults()
	cfg.News = cfg.News.GetDefaults()
	cfg.Weather = cfg.Weather.GetDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// validate проверяет обязательные поля.
func (c *AppConfig) validate() error {
	roles := map[string]string{
		"models.tools_model":   c.Models.ToolsModel,
		"models.answer_model":  c.Models.AnswerModel,
		"models.suggest_model": c.Models.SuggestModel,
	}
	for field, alias := range roles {
		if alias == "" {
			return fmt.Errorf("%s is required", field)
		}
		def, ok := c.Models.Definitions[alias]
		if !ok {
			return fmt.Errorf("%s: model '%s' is not defined in definitions", field, alias)
		}
		if def.ModelName == "" {
			return fmt.Errorf("model '%s': model_name is required", alias)
		}
	}
	if _, err := time.ParseDuration(c.HTTP.Timeout); err != nil {
		return fmt.Errorf("invalid http.timeout format: %w", err)
	}
	return nil
}

// Helper методы для удобства доступа (Syntactic sugar)

// GetModel возвращает определение модели по алиасу.
func (c *AppConfig) GetModel(alias string) (ModelDef, bool) {
	m, ok := c.Models.Definitions[alias]
	return m, ok
}

// ToolEnabled сообщает включён ли инструмент.
// Инструменты без секции в config.yaml включены по умолчанию.
func (c *AppConfig) ToolEnabled(name string) bool {
	tc, ok := c.Tools[name]
	if !ok {
		return true
	}
	return tc.Enabled
}

// ToolTimeout возвращает timeout инструмента или 0 если не переопределён.
func (c *AppConfig) ToolTimeout(name string) time.Duration {
	return c.Tools[name].Timeout
}
