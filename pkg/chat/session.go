// Package chat реализует цикл хода диалога с инструментами.
//
// Один ход: сообщение пользователя → модель выбора инструментов →
// (инструменты → модель финального ответа) → рассылка наблюдателям.
// Ровно один раунд инструментов на ход, без планирования.
//
// Правила из dev_manifest.md:
//   - Rule 4: модели доступны только через llm.Provider
//   - Rule 5: ход сериализован, история меняется только сессией
//   - Rule 7: ошибки возвращаются, никаких panic
package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ilkoid/poncho-chat/pkg/config"
	"github.com/ilkoid/poncho-chat/pkg/events"
	"github.com/ilkoid/poncho-chat/pkg/llm"
	"github.com/ilkoid/poncho-chat/pkg/state"
	"github.com/ilkoid/poncho-chat/pkg/utils"
)

// TurnState — этап текущего хода.
type TurnState int

const (
	StateAwaitingUserInput TurnState = iota
	StateToolDecision
	StateToolExecution
	StateFinalAnswer
	StatePublished
)

// String возвращает строковое представление этапа.
func (s TurnState) String() string {
	switch s {
	case StateAwaitingUserInput:
		return "awaiting_user_input"
	case StateToolDecision:
		return "tool_decision"
	case StateToolExecution:
		return "tool_execution"
	case StateFinalAnswer:
		return "final_answer"
	case StatePublished:
		return "published"
	default:
		return "unknown"
	}
}

// Decider выбирает инструменты для хода.
type Decider interface {
	Decide(ctx context.Context, history []llm.Message) (Decision, error)
}

// Executor выполняет вызовы инструментов.
type Executor interface {
	Execute(ctx context.Context, calls []llm.ToolCall) []llm.Message
}

// Answerer формирует финальный ответ после инструментов.
type Answerer interface {
	Answer(ctx context.Context, history []llm.Message) (llm.Message, error)
}

// Config — зависимости сессии.
type Config struct {
	History  *state.History
	Decider  Decider
	Executor Executor
	Answerer Answerer
	Fanout   *Fanout
	Emitter  events.Emitter

	// TurnTimeout ограничивает вызовы моделей и инструментов одного хода.
	TurnTimeout time.Duration
}

// Session — единственный писатель истории диалога.
type Session struct {
	cfg Config

	// turn сериализует ходы: второй Submit во время хода отклоняется.
	turn sync.Mutex

	stateMu sync.RWMutex
	state   TurnState
}

// NewSession создаёт сессию.
//
// Fanout и Emitter опциональны, остальные зависимости обязательны.
func NewSession(cfg Config) (*Session, error) {
	switch {
	case cfg.History == nil:
		return nil, fmt.Errorf("%w: history is required", ErrInvalidConfig)
	case cfg.Decider == nil:
		return nil, fmt.Errorf("%w: decider is required", ErrInvalidConfig)
	case cfg.Executor == nil:
		return nil, fmt.Errorf("%w: executor is required", ErrInvalidConfig)
	case cfg.Answerer == nil:
		return nil, fmt.Errorf("%w: answerer is required", ErrInvalidConfig)
	}
	if cfg.Fanout == nil {
		cfg.Fanout = NewFanout()
	}
	if cfg.Emitter == nil {
		cfg.Emitter = events.Discard{}
	}
	if cfg.TurnTimeout <= 0 {
		cfg.TurnTimeout = config.DefaultTurnTimeout
	}
	return &Session{cfg: cfg}, nil
}

// State возвращает этап текущего хода.
func (s *Session) State() TurnState {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

// History возвращает снапшот истории.
func (s *Session) History() []llm.Message {
	return s.cfg.History.Snapshot()
}

func (s *Session) setState(st TurnState) {
	s.stateMu.Lock()
	s.state = st
	s.stateMu.Unlock()
}

// Submit выполняет один ход диалога и возвращает финальный ответ.
//
// При ошибке модели ход прерывается: в истории остаётся только сообщение
// пользователя, ошибка возвращается и уходит в UI как EventError.
//
// ctx ограничивает и async наблюдателей (подсказки), поэтому сюда стоит
// передавать контекст приложения, а не короткоживущий.
func (s *Session) Submit(ctx context.Context, prompt string) (llm.Message, error) {
	if strings.TrimSpace(prompt) == "" {
		return llm.Message{}, ErrEmptyPrompt
	}
	if !s.turn.TryLock() {
		return llm.Message{}, ErrTurnInProgress
	}
	defer s.turn.Unlock()
	defer s.setState(StateAwaitingUserInput)

	start := time.Now()
	utils.Info("Turn started", "prompt_length", len(prompt))

	// 1. Сообщение пользователя сразу в историю и в транскрипт
	userMsg := llm.NewUserMessage(prompt)
	if err := s.cfg.History.Append(userMsg); err != nil {
		return llm.Message{}, s.fail(ctx, fmt.Errorf("append user message: %w", err))
	}
	s.cfg.Fanout.Publish(ctx, userMsg, s.cfg.History.Snapshot())

	turnCtx, cancel := context.WithTimeout(ctx, s.cfg.TurnTimeout)
	defer cancel()

	// 2. Модель решает, нужны ли инструменты
	s.setState(StateToolDecision)
	decision, err := s.cfg.Decider.Decide(turnCtx, s.cfg.History.Snapshot())
	if err != nil {
		return llm.Message{}, s.fail(ctx, err)
	}

	final := decision.Message
	commit := []llm.Message{final}

	if !decision.Direct() {
		// 3. Инструменты. Stub и результаты не попадают в историю
		// до успешного финального ответа.
		s.setState(StateToolExecution)
		results := s.cfg.Executor.Execute(turnCtx, decision.Calls)

		staged := make([]llm.Message, 0, len(results)+2)
		staged = append(staged, decision.Message)
		staged = append(staged, results...)

		// 4. Финальный ответ на истории с результатами
		s.setState(StateFinalAnswer)
		final, err = s.cfg.Answerer.Answer(turnCtx, append(s.cfg.History.Snapshot(), staged...))
		if err != nil {
			return llm.Message{}, s.fail(ctx, err)
		}
		commit = append(staged, final)
	} else {
		s.setState(StateFinalAnswer)
	}

	if err := s.cfg.History.Append(commit...); err != nil {
		return llm.Message{}, s.fail(ctx, fmt.Errorf("append turn: %w", err))
	}

	// 5. Рассылка: транскрипт синхронно, подсказки асинхронно
	s.setState(StatePublished)
	s.cfg.Fanout.Publish(ctx, final, s.cfg.History.Snapshot())
	s.cfg.Emitter.Emit(ctx, events.New(events.EventDone, events.MessageData{Content: final.Content}))

	utils.Info("Turn completed",
		"tool_calls", len(decision.Calls),
		"history_len", s.cfg.History.Len(),
		"duration_ms", time.Since(start).Milliseconds())

	return llm.CloneMessage(final), nil
}

// fail логирует ошибку хода и сообщает о ней UI.
func (s *Session) fail(ctx context.Context, err error) error {
	utils.Error("Turn failed", "error", err)
	s.cfg.Emitter.Emit(ctx, events.New(events.EventError, events.ErrorData{Err: err}))
	s.cfg.Emitter.Emit(ctx, events.New(events.EventDone, events.MessageData{}))
	return err
}
