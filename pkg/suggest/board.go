package suggest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ilkoid/poncho-chat/pkg/events"
	"github.com/ilkoid/poncho-chat/pkg/llm"
	"github.com/ilkoid/poncho-chat/pkg/utils"
)

// ErrNoSuggestion — в выбранном слоте нет подсказки.
var ErrNoSuggestion = errors.New("no suggestion in slot")

// Suggester — источник подсказок для Board.
type Suggester interface {
	Suggest(ctx context.Context, history []llm.Message) ([]string, error)
}

// Board хранит текущие подсказки по слотам и обновляет их после каждого ответа.
//
// Регистрируется в chat.Fanout как Async наблюдатель. Набор подсказок
// заменяется целиком или не меняется совсем.
type Board struct {
	suggester Suggester
	emitter   events.Emitter

	mu    sync.RWMutex
	slots []string

	// dispatched нумерует запуски. Результат применяется, только если
	// после него не было нового запуска, даже если новый завершился ошибкой.
	dispatched atomic.Uint64
	publishMu  sync.Mutex
}

// NewBoard создаёт доску подсказок с начальными слотами.
func NewBoard(suggester Suggester, emitter events.Emitter, initial []string) *Board {
	if emitter == nil {
		emitter = events.Discard{}
	}
	return &Board{
		suggester: suggester,
		emitter:   emitter,
		slots:     append([]string(nil), initial...),
	}
}

// Receive реализует chat.Observer.
//
// Реагирует только на финальные ответы Assistant.
func (b *Board) Receive(ctx context.Context, msg llm.Message, history []llm.Message) error {
	if !msg.IsFinalAnswer() {
		return nil
	}

	seq := b.dispatched.Add(1)
	start := time.Now()

	prompts, err := b.suggester.Suggest(ctx, history)
	if err != nil {
		return fmt.Errorf("suggestions for turn %d: %w", seq, err)
	}
	elapsed := time.Since(start)

	b.publishMu.Lock()
	defer b.publishMu.Unlock()

	if latest := b.dispatched.Load(); seq < latest {
		utils.Debug("Dropping stale suggestions", "seq", seq, "latest", latest)
		return nil
	}

	b.mu.Lock()
	b.slots = append([]string(nil), prompts...)
	b.mu.Unlock()

	utils.Info("Suggestions updated", "count", len(prompts), "elapsed_ms", elapsed.Milliseconds())
	b.emitter.Emit(ctx, events.New(events.EventSuggestions, events.SuggestionsData{
		Prompts: append([]string(nil), prompts...),
		Elapsed: elapsed,
	}))
	return nil
}

// Slots возвращает копию текущих подсказок.
func (b *Board) Slots() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]string(nil), b.slots...)
}

// Select возвращает подсказку из слота i.
func (b *Board) Select(i int) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if i < 0 || i >= len(b.slots) {
		return "", fmt.Errorf("%w: %d", ErrNoSuggestion, i)
	}
	return b.slots[i], nil
}
