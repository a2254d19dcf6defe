package events

import (
	"context"
	"sync"
)

// ChanEmitter — стандартная реализация Emitter через канал.
//
// Thread-safe. Close можно вызывать параллельно с Emit:
// заблокированные отправители освобождаются, канал закрывается после них.
type ChanEmitter struct {
	mu        sync.RWMutex
	ch        chan Event
	done      chan struct{}
	closeOnce sync.Once
}

// NewChanEmitter создаёт новый ChanEmitter с буферизованным каналом.
//
// buffer определяет размер буфера канала.
// Если buffer = 0, канал будет небуферизованным (blocking).
func NewChanEmitter(buffer int) *ChanEmitter {
	return &ChanEmitter{
		ch:   make(chan Event, buffer),
		done: make(chan struct{}),
	}
}

// Emit отправляет событие в канал.
//
// Rule 11: уважает context.Context.
// Если эмиттер закрыт или context отменён, событие отбрасывается.
func (e *ChanEmitter) Emit(ctx context.Context, event Event) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	select {
	case <-e.done:
		return
	default:
	}

	select {
	case e.ch <- event:
	case <-ctx.Done():
	case <-e.done:
	}
}

// Subscribe возвращает Subscriber для чтения событий.
//
// Все подписчики читают один общий канал.
func (e *ChanEmitter) Subscribe() Subscriber {
	return &chanSubscriber{ch: e.ch}
}

// Close закрывает канал и освобождает ресурсы.
//
// После закрытия Emit больше не отправляет события. Повторный вызов — no-op.
func (e *ChanEmitter) Close() {
	e.closeOnce.Do(func() {
		close(e.done)

		// Ждём выхода текущих отправителей
		e.mu.Lock()
		defer e.mu.Unlock()
		close(e.ch)
	})
}

// chanSubscriber реализует Subscriber интерфейс.
type chanSubscriber struct {
	ch <-chan Event
}

// Events возвращает read-only канал событий.
func (s *chanSubscriber) Events() <-chan Event {
	return s.ch
}

// Close закрывает подписчика (no-op для shared channel).
//
// Реальный канал закрывается только через ChanEmitter.Close().
func (s *chanSubscriber) Close() {}

// Ensure ChanEmitter implements Emitter
var _ Emitter = (*ChanEmitter)(nil)

// Ensure Discard implements Emitter
var _ Emitter = Discard{}

// Ensure chanSubscriber implements Subscriber
var _ Subscriber = (*chanSubscriber)(nil)
