package suggest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ilkoid/poncho-chat/pkg/events"
	"github.com/ilkoid/poncho-chat/pkg/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type suggesterFunc func(ctx context.Context, history []llm.Message) ([]string, error)

func (f suggesterFunc) Suggest(ctx context.Context, history []llm.Message) ([]string, error) {
	return f(ctx, history)
}

type sliceEmitter struct {
	mu     sync.Mutex
	events []events.Event
}

func (e *sliceEmitter) Emit(ctx context.Context, event events.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
}

var initial = []string{"What's the latest news?", "What is 2+2?", "What's the weather in Oslo?"}

func TestBoard_ReplacesSlotsOnFinalAnswer(t *testing.T) {
	emitter := &sliceEmitter{}
	board := NewBoard(suggesterFunc(func(ctx context.Context, history []llm.Message) ([]string, error) {
		return []string{"x", "y", "z"}, nil
	}), emitter, initial)

	assert.Equal(t, initial, board.Slots())

	err := board.Receive(context.Background(), llm.NewAssistantMessage("4"), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"x", "y", "z"}, board.Slots())
	require.Len(t, emitter.events, 1)
	assert.Equal(t, events.EventSuggestions, emitter.events[0].Type)
	assert.Equal(t, []string{"x", "y", "z"}, emitter.events[0].Data.(events.SuggestionsData).Prompts)
}

func TestBoard_IgnoresNonFinalMessages(t *testing.T) {
	called := false
	board := NewBoard(suggesterFunc(func(ctx context.Context, history []llm.Message) ([]string, error) {
		called = true
		return nil, nil
	}), nil, initial)

	for _, msg := range []llm.Message{
		llm.NewUserMessage("hi"),
		llm.NewAssistantMessage("", llm.ToolCall{ID: "1", Name: "add"}),
		llm.NewToolResultMessage("1", "4"),
	} {
		require.NoError(t, board.Receive(context.Background(), msg, nil))
	}
	assert.False(t, called)
	assert.Equal(t, initial, board.Slots())
}

func TestBoard_FailureKeepsPreviousSlots(t *testing.T) {
	emitter := &sliceEmitter{}
	board := NewBoard(suggesterFunc(func(ctx context.Context, history []llm.Message) ([]string, error) {
		return nil, ErrSuggestionsExhausted
	}), emitter, initial)

	err := board.Receive(context.Background(), llm.NewAssistantMessage("done"), nil)
	assert.True(t, errors.Is(err, ErrSuggestionsExhausted))
	assert.Equal(t, initial, board.Slots())
	assert.Empty(t, emitter.events)
}

func TestBoard_StaleResultIsDropped(t *testing.T) {
	releaseOld := make(chan struct{})
	oldStarted := make(chan struct{})

	board := NewBoard(suggesterFunc(func(ctx context.Context, history []llm.Message) ([]string, error) {
		if history[0].Content == "old" {
			close(oldStarted)
			<-releaseOld
			return []string{"old1", "old2", "old3"}, nil
		}
		return []string{"new1", "new2", "new3"}, nil
	}), nil, initial)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = board.Receive(context.Background(), llm.NewAssistantMessage("a"), []llm.Message{llm.NewUserMessage("old")})
	}()
	<-oldStarted

	require.NoError(t, board.Receive(context.Background(), llm.NewAssistantMessage("b"), []llm.Message{llm.NewUserMessage("new")}))
	close(releaseOld)
	wg.Wait()

	assert.Equal(t, []string{"new1", "new2", "new3"}, board.Slots())
}

func TestBoard_OlderResultAfterNewerFailureIsDropped(t *testing.T) {
	releaseOld := make(chan struct{})
	oldStarted := make(chan struct{})
	emitter := &sliceEmitter{}

	board := NewBoard(suggesterFunc(func(ctx context.Context, history []llm.Message) ([]string, error) {
		if history[0].Content == "old" {
			close(oldStarted)
			<-releaseOld
			return []string{"old1", "old2", "old3"}, nil
		}
		return nil, ErrSuggestionsExhausted
	}), emitter, initial)

	var wg sync.WaitGroup
	var oldErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		oldErr = board.Receive(context.Background(), llm.NewAssistantMessage("a"), []llm.Message{llm.NewUserMessage("old")})
	}()
	<-oldStarted

	err := board.Receive(context.Background(), llm.NewAssistantMessage("b"), []llm.Message{llm.NewUserMessage("new")})
	assert.True(t, errors.Is(err, ErrSuggestionsExhausted))
	close(releaseOld)
	wg.Wait()

	require.NoError(t, oldErr)
	assert.Equal(t, initial, board.Slots())
	assert.Empty(t, emitter.events)
}

func TestBoard_Select(t *testing.T) {
	board := NewBoard(nil, nil, initial)

	got, err := board.Select(1)
	require.NoError(t, err)
	assert.Equal(t, "What is 2+2?", got)

	for _, i := range []int{-1, 3} {
		_, err := board.Select(i)
		assert.True(t, errors.Is(err, ErrNoSuggestion))
	}
}

func TestBoard_SlotsAreCopies(t *testing.T) {
	board := NewBoard(nil, nil, initial)
	slots := board.Slots()
	slots[0] = "changed"
	assert.Equal(t, initial[0], board.Slots()[0])
}
