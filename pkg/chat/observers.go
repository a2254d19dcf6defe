package chat

import (
	"context"

	"github.com/ilkoid/poncho-chat/pkg/events"
	"github.com/ilkoid/poncho-chat/pkg/llm"
)

// TranscriptObserver переводит сообщения транскрипта в события UI.
//
// Регистрируется как Sync: пользователь видит свою реплику до начала
// ожидания модели. Stub и результаты инструментов в транскрипт не попадают.
type TranscriptObserver struct {
	emitter events.Emitter
}

// NewTranscriptObserver создаёт наблюдатель транскрипта.
func NewTranscriptObserver(emitter events.Emitter) *TranscriptObserver {
	return &TranscriptObserver{emitter: emitter}
}

// Receive реализует Observer.
func (o *TranscriptObserver) Receive(ctx context.Context, msg llm.Message, history []llm.Message) error {
	switch {
	case msg.Role == llm.RoleUser:
		o.emitter.Emit(ctx, events.New(events.EventUserMessage, events.MessageData{Content: msg.Content}))
	case msg.IsFinalAnswer():
		o.emitter.Emit(ctx, events.New(events.EventMessage, events.MessageData{Content: msg.Content}))
	}
	return nil
}

var _ Observer = (*TranscriptObserver)(nil)
