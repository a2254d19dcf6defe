// Реестр для хранения и поиска инструментов.
package tools

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrToolNotFound возвращается когда модель запросила незарегистрированный инструмент.
	ErrToolNotFound = errors.New("tool not found")

	// ErrDuplicateTool возвращается при повторной регистрации имени.
	ErrDuplicateTool = errors.New("tool already registered")

	// ErrInvalidDefinition возвращается для определения, которое не примет LLM API.
	ErrInvalidDefinition = errors.New("invalid tool definition")
)

// Registry — потокобезопасное хранилище инструментов.
//
// Порядок регистрации сохраняется: GetDefinitions отдаёт определения
// в том же порядке, поэтому запросы к LLM детерминированы.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

// NewRegistry создает новый пустой реестр.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Validate проверяет что определение годится для Function Calling API:
// непустое имя и Parameters как JSON Schema объекта, где required,
// если задан, является списком строк.
func (d ToolDefinition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidDefinition)
	}
	if d.Parameters == nil {
		return fmt.Errorf("%w: tool '%s': nil parameters", ErrInvalidDefinition, d.Name)
	}
	if typ, _ := d.Parameters["type"].(string); typ != "object" {
		return fmt.Errorf("%w: tool '%s': parameters.type must be 'object', got %v",
			ErrInvalidDefinition, d.Name, d.Parameters["type"])
	}

	switch required := d.Parameters["required"].(type) {
	case nil, []string:
	case []any:
		for i, item := range required {
			if _, ok := item.(string); !ok {
				return fmt.Errorf("%w: tool '%s': parameters.required[%d] is %T",
					ErrInvalidDefinition, d.Name, i, item)
			}
		}
	default:
		return fmt.Errorf("%w: tool '%s': parameters.required must be an array", ErrInvalidDefinition, d.Name)
	}
	return nil
}

// Register добавляет инструмент в реестр с валидацией схемы.
//
// Возвращает ошибку если определение не валидно или имя уже занято:
// имя инструмента уникально в пределах реестра.
func (r *Registry) Register(tool Tool) error {
	def := tool.Definition()

	if err := def.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[def.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, def.Name)
	}
	r.tools[def.Name] = tool
	r.order = append(r.order, def.Name)
	return nil
}

// Get ищет инструмент по имени.
func (r *Registry) Get(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrToolNotFound, name)
	}
	return tool, nil
}

// GetDefinitions возвращает список всех определений для отправки в LLM.
func (r *Registry) GetDefinitions() []ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Definition())
	}
	return defs
}

// Names возвращает имена инструментов в порядке регистрации.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Len возвращает количество зарегистрированных инструментов.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
