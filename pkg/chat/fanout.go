package chat

import (
	"context"
	"fmt"
	"sync"

	"github.com/ilkoid/poncho-chat/pkg/llm"
	"github.com/ilkoid/poncho-chat/pkg/utils"
)

// Mode — режим доставки сообщения наблюдателю.
type Mode int

const (
	// Sync — наблюдатель вызывается в потоке хода, в порядке регистрации.
	Sync Mode = iota

	// Async — наблюдатель вызывается в собственной горутине, ход его не ждёт.
	Async
)

// String возвращает строковое представление режима.
func (m Mode) String() string {
	if m == Async {
		return "async"
	}
	return "sync"
}

// Observer получает каждое опубликованное сообщение вместе со снапшотом истории.
//
// msg и history — собственные копии наблюдателя, их можно менять.
type Observer interface {
	Receive(ctx context.Context, msg llm.Message, history []llm.Message) error
}

// ObserverFunc позволяет использовать функцию как Observer.
type ObserverFunc func(ctx context.Context, msg llm.Message, history []llm.Message) error

// Receive вызывает f.
func (f ObserverFunc) Receive(ctx context.Context, msg llm.Message, history []llm.Message) error {
	return f(ctx, msg, history)
}

type registration struct {
	name     string
	observer Observer
	mode     Mode
}

// Fanout рассылает сообщения хода зарегистрированным наблюдателям.
//
// Ошибки и паники наблюдателей изолированы: они логируются и не доходят
// ни до других наблюдателей, ни до сессии.
type Fanout struct {
	mu        sync.RWMutex
	observers []registration
	wg        sync.WaitGroup
}

// NewFanout создаёт пустой fan-out.
func NewFanout() *Fanout {
	return &Fanout{}
}

// Register добавляет наблюдателя. name используется только в логах.
func (f *Fanout) Register(name string, observer Observer, mode Mode) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.observers = append(f.observers, registration{name: name, observer: observer, mode: mode})
}

// Publish доставляет msg всем наблюдателям.
//
// Sync наблюдатели отработают до возврата из Publish. Async наблюдатели
// запускаются в горутинах с тем же ctx: при его отмене они должны выйти.
func (f *Fanout) Publish(ctx context.Context, msg llm.Message, history []llm.Message) {
	f.mu.RLock()
	observers := append([]registration(nil), f.observers...)
	f.mu.RUnlock()

	for _, reg := range observers {
		msgCopy := llm.CloneMessage(msg)
		historyCopy := llm.CloneMessages(history)

		if reg.mode == Async {
			f.wg.Add(1)
			go func(reg registration) {
				defer f.wg.Done()
				f.deliver(ctx, reg, msgCopy, historyCopy)
			}(reg)
			continue
		}
		f.deliver(ctx, reg, msgCopy, historyCopy)
	}
}

// Wait блокируется до завершения всех запущенных async наблюдателей.
func (f *Fanout) Wait() {
	f.wg.Wait()
}

func (f *Fanout) deliver(ctx context.Context, reg registration, msg llm.Message, history []llm.Message) {
	defer func() {
		if r := recover(); r != nil {
			utils.Error("Observer panicked", "observer", reg.name, "mode", reg.mode.String(), "panic", fmt.Sprint(r))
		}
	}()

	if err := reg.observer.Receive(ctx, msg, history); err != nil {
		utils.Warn("Observer failed", "observer", reg.name, "mode", reg.mode.String(), "error", err)
	}
}
