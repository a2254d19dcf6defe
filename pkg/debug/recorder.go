package debug

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ilkoid/poncho-chat/pkg/llm"
	"github.com/ilkoid/poncho-chat/pkg/utils"
)

// Recorder — наблюдатель транскрипта, сохраняющий трейс каждого хода.
//
// Регистрируется как Sync: начало хода (сообщение пользователя) должно
// быть видно до финального ответа.
type Recorder struct {
	mu sync.Mutex

	config RecorderConfig

	// started — время, когда было получено последнее сообщение пользователя
	started time.Time

	lastPath string
	now      func() time.Time
}

// RecorderConfig конфигурация для создания Recorder.
type RecorderConfig struct {
	// LogsDir — директория для сохранения трейсов
	LogsDir string

	// IncludeToolResults — включать результаты инструментов в трейс
	IncludeToolResults bool

	// MaxResultSize — максимальный размер результата (превышение обрезается)
	// 0 означает без ограничений
	MaxResultSize int
}

// NewRecorder создает новый Recorder с заданной конфигурацией.
//
// Если LogsDir не существует, пытается создать её.
func NewRecorder(cfg RecorderConfig) (*Recorder, error) {
	if cfg.LogsDir != "" {
		if err := os.MkdirAll(cfg.LogsDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create traces directory: %w", err)
		}
	}
	return &Recorder{config: cfg, now: time.Now}, nil
}

// Receive запоминает начало хода и пишет трейс на финальном ответе.
func (r *Recorder) Receive(ctx context.Context, msg llm.Message, history []llm.Message) error {
	switch {
	case msg.Role == llm.RoleUser:
		r.mu.Lock()
		r.started = r.now()
		r.mu.Unlock()
		return nil
	case msg.IsFinalAnswer():
		path, err := r.finalize(history)
		if err != nil {
			return err
		}
		utils.Debug("Turn trace saved", "path", path)
		return nil
	}
	return nil
}

// LastPath возвращает путь к последнему сохранённому трейсу.
func (r *Recorder) LastPath() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastPath
}

func (r *Recorder) finalize(history []llm.Message) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	trace := r.buildTrace(history)

	data, err := json.MarshalIndent(trace, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal turn trace: %w", err)
	}

	path := filepath.Join(r.config.LogsDir, trace.RunID+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write turn trace: %w", err)
	}

	r.lastPath = path
	r.started = time.Time{}
	return path, nil
}

// buildTrace собирает трейс из хвоста истории после последнего сообщения пользователя.
func (r *Recorder) buildTrace(history []llm.Message) TurnTrace {
	now := r.now()
	trace := TurnTrace{
		RunID:      fmt.Sprintf("turn_%s_%s", now.Format("20060102_150405"), uuid.NewString()[:8]),
		Timestamp:  now,
		HistoryLen: len(history),
	}
	if !r.started.IsZero() {
		trace.Timestamp = r.started
		trace.Duration = now.Sub(r.started).Milliseconds()
	}

	start := 0
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == llm.RoleUser {
			start = i
			break
		}
	}

	results := make(map[string]string)
	for _, msg := range history[start:] {
		if msg.Role == llm.RoleTool {
			results[msg.ToolCallID] = msg.Content
		}
	}

	for _, msg := range history[start:] {
		trace.Messages = append(trace.Messages, toEntry(msg))

		switch {
		case msg.Role == llm.RoleUser:
			trace.UserQuery = msg.Content
		case msg.HasToolCalls():
			for _, tc := range msg.ToolCalls {
				trace.ToolsExecuted = append(trace.ToolsExecuted, r.toolExecution(tc, results[tc.ID]))
			}
		case msg.IsFinalAnswer():
			trace.FinalResult = msg.Content
		}
	}
	return trace
}

func (r *Recorder) toolExecution(tc llm.ToolCall, result string) ToolExecution {
	exec := ToolExecution{CallID: tc.ID, Name: tc.Name, Args: tc.Args}
	if !r.config.IncludeToolResults {
		return exec
	}
	exec.Result = result
	if r.config.MaxResultSize > 0 && len(result) > r.config.MaxResultSize {
		exec.Result = result[:r.config.MaxResultSize] + "... (truncated)"
		exec.ResultTruncated = true
	}
	return exec
}

func toEntry(msg llm.Message) MessageEntry {
	entry := MessageEntry{
		Role:       string(msg.Role),
		Content:    msg.Content,
		ToolCallID: msg.ToolCallID,
	}
	for _, tc := range msg.ToolCalls {
		entry.ToolCalls = append(entry.ToolCalls, ToolCallInfo{ID: tc.ID, Name: tc.Name, Args: tc.Args})
	}
	return entry
}
