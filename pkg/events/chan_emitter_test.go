package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChanEmitter_Delivers(t *testing.T) {
	e := NewChanEmitter(4)
	sub := e.Subscribe()
	defer sub.Close()

	e.Emit(context.Background(), New(EventMessage, MessageData{Content: "4"}))

	select {
	case ev := <-sub.Events():
		assert.Equal(t, EventMessage, ev.Type)
		assert.Equal(t, MessageData{Content: "4"}, ev.Data)
		assert.False(t, ev.Timestamp.IsZero())
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestChanEmitter_CancelledContextDoesNotBlock(t *testing.T) {
	e := NewChanEmitter(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		e.Emit(ctx, New(EventDone, MessageData{}))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked on cancelled context")
	}
}

func TestChanEmitter_CloseReleasesBlockedSenders(t *testing.T) {
	e := NewChanEmitter(0)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.Emit(context.Background(), New(EventError, ErrorData{}))
		}()
	}

	time.Sleep(10 * time.Millisecond)
	e.Close()
	wg.Wait()

	_, ok := <-e.Subscribe().Events()
	assert.False(t, ok, "channel must be closed")

	require.NotPanics(t, func() {
		e.Emit(context.Background(), New(EventDone, MessageData{}))
		e.Close()
	})
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() {
		Discard{}.Emit(context.Background(), New(EventDone, MessageData{}))
	})
}
