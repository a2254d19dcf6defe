// Package models предоставляет реестр LLM провайдеров по алиасам из config.yaml.
//
// Провайдер создаётся при первом обращении к алиасу и переиспользуется:
// если tools_model и answer_model ссылаются на один алиас, клиент один.
//
// Rule 3: Registry pattern (similar to tools.Registry)
// Rule 5: Thread-safe via sync.Mutex
// Rule 6: Reusable library package, no imports from internal/
package models

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/ilkoid/poncho-chat/pkg/config"
	"github.com/ilkoid/poncho-chat/pkg/factory"
	"github.com/ilkoid/poncho-chat/pkg/llm"
	"github.com/ilkoid/poncho-chat/pkg/utils"
)

// Factory создаёт провайдер по определению модели.
type Factory func(ctx context.Context, def config.ModelDef) (llm.Provider, error)

// Registry — потокобезопасное хранилище LLM провайдеров.
type Registry struct {
	mu          sync.Mutex
	definitions map[string]config.ModelDef
	factory     Factory
	models      map[string]ModelEntry
}

// ModelEntry — кешированный провайдер с конфигурацией.
type ModelEntry struct {
	Provider llm.Provider
	Config   config.ModelDef
}

// NewRegistry создаёт реестр поверх definitions.
//
// nil factory означает factory.NewLLMProvider.
func NewRegistry(definitions map[string]config.ModelDef, f Factory) *Registry {
	if f == nil {
		f = factory.NewLLMProvider
	}
	return &Registry{
		definitions: definitions,
		factory:     f,
		models:      make(map[string]ModelEntry),
	}
}

// Get возвращает провайдер алиаса, создавая его при первом обращении.
//
// Rule 7: Возвращает ошибку вместо panic.
func (r *Registry) Get(ctx context.Context, alias string) (llm.Provider, config.ModelDef, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.models[alias]; ok {
		return entry.Provider, entry.Config, nil
	}

	def, ok := r.definitions[alias]
	if !ok {
		return nil, config.ModelDef{}, fmt.Errorf("model '%s' not found in definitions", alias)
	}

	provider, err := r.factory(ctx, def)
	if err != nil {
		return nil, config.ModelDef{}, fmt.Errorf("model '%s': %w", alias, err)
	}
	if provider == nil {
		return nil, config.ModelDef{}, fmt.Errorf("model '%s': factory returned nil provider", alias)
	}

	r.models[alias] = ModelEntry{Provider: provider, Config: def}
	utils.Info("LLM provider created", "alias", alias, "provider", def.Provider, "model", def.ModelName)
	return provider, def, nil
}

// ListNames возвращает отсортированные алиасы созданных провайдеров.
func (r *Registry) ListNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close закрывает провайдеры, которые держат соединения (io.Closer).
// После Close реестр пуст и может создавать провайдеры заново.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for alias, entry := range r.models {
		if closer, ok := entry.Provider.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("model '%s': %w", alias, err))
			}
		}
	}
	r.models = make(map[string]ModelEntry)
	return errors.Join(errs...)
}
