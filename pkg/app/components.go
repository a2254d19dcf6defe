// Package app собирает компоненты чата из config.yaml для разных точек входа
// (TUI, однократный запрос из CLI).
//
// Пакет следует правилам из dev_manifest.md:
//   - Работает через llm.Provider интерфейс (Правило 4)
//   - Использует tools.Registry (Правило 3)
//   - История меняется только сессией (Правило 5)
//   - Все ошибки возвращаются, никаких panic (Правило 7)
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilkoid/poncho-chat/pkg/chat"
	"github.com/ilkoid/poncho-chat/pkg/config"
	"github.com/ilkoid/poncho-chat/pkg/debug"
	"github.com/ilkoid/poncho-chat/pkg/events"
	"github.com/ilkoid/poncho-chat/pkg/llm"
	"github.com/ilkoid/poncho-chat/pkg/models"
	"github.com/ilkoid/poncho-chat/pkg/prompt"
	"github.com/ilkoid/poncho-chat/pkg/state"
	"github.com/ilkoid/poncho-chat/pkg/suggest"
	"github.com/ilkoid/poncho-chat/pkg/tools"
	"github.com/ilkoid/poncho-chat/pkg/utils"
	"github.com/ilkoid/poncho-chat/pkg/webclient"
)

// Components содержит все компоненты приложения для переиспользования.
//
// Одна и та же сборка используется в TUI и в CLI командах.
type Components struct {
	Config   *config.AppConfig
	Registry *tools.Registry
	History  *state.History
	Fanout   *chat.Fanout
	Board    *suggest.Board
	Session  *chat.Session
	Models   *models.Registry
}

// ExecutionResult содержит результаты выполнения запроса.
//
// Используется для отделения логики вывода от логики выполнения.
type ExecutionResult struct {
	Response string        // Финальный ответ модели
	History  []llm.Message // История сообщений после хода
	Duration time.Duration // Время выполнения хода
}

// ConfigPathFinder определяет стратегию поиска пути к config.yaml.
type ConfigPathFinder interface {
	FindConfigPath() string
}

// DefaultConfigPathFinder реализует стандартную стратегию поиска config.yaml.
//
// Порядок поиска:
// 1. Флаг --config (если указан)
// 2. Переменная окружения PONCHO_CHAT_CONFIG
// 3. Текущая директория (./config.yaml)
// 4. Директория бинарника
type DefaultConfigPathFinder struct {
	// ConfigFlag - значение флага --config, если указан
	ConfigFlag string
}

// ConfigEnvVar — переменная окружения с путём к config.yaml.
const ConfigEnvVar = "PONCHO_CHAT_CONFIG"

// FindConfigPath находит путь к config.yaml.
func (f *DefaultConfigPathFinder) FindConfigPath() string {
	// 1. Флаг имеет приоритет
	if f.ConfigFlag != "" {
		return resolveAbsPath(f.ConfigFlag)
	}

	// 2. ENV
	if p := os.Getenv(ConfigEnvVar); p != "" {
		return resolveAbsPath(p)
	}

	// 3. Текущая директория
	if _, err := os.Stat("config.yaml"); err == nil {
		return resolveAbsPath("config.yaml")
	}

	// 4. Директория бинарника
	if execPath, err := os.Executable(); err == nil {
		cfgPath := filepath.Join(filepath.Dir(execPath), "config.yaml")
		if _, err := os.Stat(cfgPath); err == nil {
			return cfgPath
		}
	}

	// Возвращаем дефолтный путь (даже если не существует)
	return resolveAbsPath("config.yaml")
}

// InitializeConfig находит и загружает конфигурацию.
//
// Правило 2: все настройки в YAML с поддержкой ENV-переменных.
func InitializeConfig(finder ConfigPathFinder) (*config.AppConfig, string, error) {
	cfgPath := finder.FindConfigPath()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config from %s: %w", cfgPath, err)
	}

	return cfg, cfgPath, nil
}

// Options — внешние зависимости сборки.
type Options struct {
	// Emitter получает события чата. nil — события отбрасываются.
	Emitter events.Emitter

	// ProviderFactory создаёт провайдера по определению модели.
	// nil — factory.NewLLMProvider.
	ProviderFactory models.Factory
}

// Initialize создаёт и связывает все компоненты чата.
//
// Правило 6: entry points - initialization and orchestration only.
func Initialize(ctx context.Context, cfg *config.AppConfig, opts Options) (*Components, error) {
	utils.Info("Initializing components",
		"tools_model", cfg.Models.ToolsModel,
		"answer_model", cfg.Models.AnswerModel,
		"suggest_model", cfg.Models.SuggestModel)

	emitter := opts.Emitter
	if emitter == nil {
		emitter = events.Discard{}
	}

	c := &Components{Config: cfg}

	// 1. HTTP клиент для инструментов
	httpClient, err := webclient.New(cfg.HTTP)
	if err != nil {
		return nil, fmt.Errorf("failed to create http client: %w", err)
	}

	// 2. Реестр и исполнитель инструментов
	c.Registry = tools.NewRegistry()
	executor := chat.NewToolExecutor(c.Registry, emitter, cfg.Chat.ToolTimeout)
	if err := SetupTools(c.Registry, executor, cfg, httpClient); err != nil {
		utils.Error("Tools registration failed", "error", err)
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	// 3. Провайдеры для трёх ролей. Один алиас — один клиент.
	c.Models = models.NewRegistry(cfg.Models.Definitions, opts.ProviderFactory)
	toolsModel, _, err := c.Models.Get(ctx, cfg.Models.ToolsModel)
	if err != nil {
		c.Close()
		return nil, err
	}
	answerModel, _, err := c.Models.Get(ctx, cfg.Models.AnswerModel)
	if err != nil {
		c.Close()
		return nil, err
	}
	suggestModel, _, err := c.Models.Get(ctx, cfg.Models.SuggestModel)
	if err != nil {
		c.Close()
		return nil, err
	}

	// 4. Промпты
	data := prompt.Data{Date: time.Now().Format("2006-01-02"), Tools: c.Registry.Names()}
	systemPrompt, err := prompt.LoadSystemPrompt(cfg, data)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to load system prompt: %w", err)
	}
	suggestionPrompt, err := prompt.LoadSuggestionPrompt(cfg, data)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to load suggestion prompt: %w", err)
	}

	// 5. Наблюдатели: транскрипт синхронно, подсказки асинхронно
	generator := suggest.NewGenerator(suggestModel, suggestionPrompt,
		suggest.WithTarget(cfg.Chat.SuggestionTarget),
		suggest.WithMaxAttempts(cfg.Chat.SuggestionRetries),
		suggest.WithBackoff(suggest.ConstantBackoff(cfg.Chat.SuggestionBackoff)))
	c.Board = suggest.NewBoard(generator, emitter, cfg.Chat.InitialPrompts)

	c.Fanout = chat.NewFanout()
	c.Fanout.Register("transcript", chat.NewTranscriptObserver(emitter), chat.Sync)
	c.Fanout.Register("suggestions", c.Board, chat.Async)
	if cfg.App.Debug {
		recorder, err := debug.NewRecorder(debug.RecorderConfig{
			LogsDir:            filepath.Join(cfg.App.LogDir, "traces"),
			IncludeToolResults: true,
			MaxResultSize:      4000,
		})
		if err != nil {
			// Трейсы не обязательны для работы чата
			utils.Warn("Turn traces disabled", "error", err)
		} else {
			c.Fanout.Register("trace", recorder, chat.Sync)
		}
	}

	// 6. Сессия
	c.History = state.NewHistory(systemPrompt)
	c.Session, err = chat.NewSession(chat.Config{
		History:     c.History,
		Decider:     chat.NewToolDecisionModel(toolsModel, c.Registry),
		Executor:    executor,
		Answerer:    chat.NewAnswerModel(answerModel),
		Fanout:      c.Fanout,
		Emitter:     emitter,
		TurnTimeout: cfg.Chat.TurnTimeout,
	})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	utils.Info("Components initialized", "tools", c.Registry.Len())
	return c, nil
}

// Execute выполняет один ход диалога.
//
// Правило 4: работает только через llm.Provider интерфейс.
func Execute(ctx context.Context, c *Components, query string) (*ExecutionResult, error) {
	startTime := time.Now()
	utils.Info("Executing query", "query_length", len(query))

	final, err := c.Session.Submit(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("turn failed: %w", err)
	}

	return &ExecutionResult{
		Response: final.Content,
		History:  c.Session.History(),
		Duration: time.Since(startTime),
	}, nil
}

// Close дожидается async наблюдателей и освобождает клиентов моделей.
func (c *Components) Close() {
	if c.Fanout != nil {
		c.Fanout.Wait()
	}
	if c.Models != nil {
		if err := c.Models.Close(); err != nil {
			utils.Warn("Failed to close providers", "error", err)
		}
	}
}

// resolveAbsPath преобразует путь в абсолютный (если это не уже абсолютный путь).
func resolveAbsPath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}
