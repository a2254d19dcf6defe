package ui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkoid/poncho-chat/pkg/events"
	"github.com/ilkoid/poncho-chat/pkg/llm"
	"github.com/ilkoid/poncho-chat/pkg/tui"
)

type fakeSession struct {
	mu      sync.Mutex
	prompts []string
	err     error
}

func (f *fakeSession) Submit(ctx context.Context, prompt string) (llm.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return llm.NewAssistantMessage("ok"), f.err
}

func newTestModel(t *testing.T, session Submitter) MainModel {
	t.Helper()
	emitter := events.NewChanEmitter(8)
	t.Cleanup(emitter.Close)

	m := InitialModel(context.Background(), session, emitter.Subscribe(), Options{
		ModelName:          "gpt-4o",
		InitialSuggestions: []string{"What is 16 * 256?", "Norwegian news?", "Weather in Oslo?"},
	})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return updated.(MainModel)
}

// runTurn выполняет batch команду и возвращает результат хода.
func runTurn(t *testing.T, cmd tea.Cmd) turnDoneMsg {
	t.Helper()
	require.NotNil(t, cmd)
	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	for _, c := range batch {
		if c == nil {
			continue
		}
		if done, ok := c().(turnDoneMsg); ok {
			return done
		}
	}
	t.Fatal("no turnDoneMsg in batch")
	return turnDoneMsg{}
}

func TestUpdate_SubmitFromInput(t *testing.T) {
	session := &fakeSession{}
	m := newTestModel(t, session)

	m.textarea.SetValue("What is 2+2?")
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(MainModel)

	assert.True(t, m.Busy())
	assert.Empty(t, m.textarea.Value())

	done := runTurn(t, cmd)
	assert.Equal(t, []string{"What is 2+2?"}, session.prompts)

	updated, _ = m.Update(done)
	m = updated.(MainModel)
	assert.False(t, m.Busy())
	assert.Empty(t, m.ErrorLine())
}

func TestUpdate_EmptyInputIgnored(t *testing.T) {
	m := newTestModel(t, &fakeSession{})
	m.textarea.SetValue("   ")
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.False(t, updated.(MainModel).Busy())
}

func TestUpdate_RejectsSubmitWhileBusy(t *testing.T) {
	m := newTestModel(t, &fakeSession{})

	m, cmd := m.submit("first")
	require.NotNil(t, cmd)

	m, cmd = m.submit("second")
	assert.Nil(t, cmd)
	assert.Equal(t, busyText, m.ErrorLine())
}

func TestUpdate_SuggestionKeySubmitsSlot(t *testing.T) {
	session := &fakeSession{}
	m := newTestModel(t, session)

	updated, _ := m.Update(tui.EventMsg(events.New(events.EventSuggestions, events.SuggestionsData{
		Prompts: []string{"a?", "b?", "c?"},
	})))
	m = updated.(MainModel)
	assert.Equal(t, []string{"a?", "b?", "c?"}, m.Suggestions())

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyF2})
	m = updated.(MainModel)
	assert.True(t, m.Busy())
	runTurn(t, cmd)
	assert.Equal(t, []string{"b?"}, session.prompts)
}

type fakeSlots struct {
	prompts []string
}

func (f fakeSlots) Select(i int) (string, error) {
	if i < 0 || i >= len(f.prompts) {
		return "", errors.New("no suggestion in slot")
	}
	return f.prompts[i], nil
}

func TestUpdate_SuggestionKeyUsesSlotSelector(t *testing.T) {
	tests := []struct {
		name    string
		prompts []string
		key     tea.KeyType
		want    []string
	}{
		{name: "selector slot", prompts: []string{"x?", "y?", "z?"}, key: tea.KeyF3, want: []string{"z?"}},
		{name: "missing slot", prompts: []string{"x?"}, key: tea.KeyF2},
		{name: "empty slot", prompts: []string{"", "y?"}, key: tea.KeyF1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := &fakeSession{}
			emitter := events.NewChanEmitter(8)
			t.Cleanup(emitter.Close)
			m := InitialModel(context.Background(), session, emitter.Subscribe(), Options{
				InitialSuggestions: []string{"stale 1", "stale 2", "stale 3"},
				Slots:              fakeSlots{prompts: tt.prompts},
			})

			updated, cmd := m.Update(tea.KeyMsg{Type: tt.key})
			m = updated.(MainModel)
			if tt.want == nil {
				assert.Nil(t, cmd)
				assert.False(t, m.Busy())
				assert.Empty(t, session.prompts)
				return
			}
			assert.True(t, m.Busy())
			runTurn(t, cmd)
			assert.Equal(t, tt.want, session.prompts)
		})
	}
}

func TestUpdate_TranscriptEvents(t *testing.T) {
	m := newTestModel(t, &fakeSession{})

	for _, ev := range []events.Event{
		events.New(events.EventUserMessage, events.MessageData{Content: "Hello"}),
		events.New(events.EventToolCall, events.ToolCallData{CallID: "1", ToolName: "add", Args: "{}"}),
		events.New(events.EventMessage, events.MessageData{Content: "Hi there"}),
	} {
		updated, cmd := m.Update(tui.EventMsg(ev))
		assert.NotNil(t, cmd, "must keep reading events")
		m = updated.(MainModel)
	}

	lines := m.Transcript()
	require.Len(t, lines, 2, "tool calls are hidden without debug")
	assert.Contains(t, lines[0], "User:")
	assert.Contains(t, lines[0], "Hello")
	assert.Contains(t, lines[1], "AI:")
	assert.Contains(t, lines[1], "Hi there")
}

func TestUpdate_DebugShowsToolCalls(t *testing.T) {
	m := newTestModel(t, &fakeSession{})
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlG})
	m = updated.(MainModel)

	updated, _ = m.Update(tui.EventMsg(events.New(events.EventToolResult, events.ToolResultData{
		CallID: "1", ToolName: "multiply", Result: "4096", Duration: 3 * time.Millisecond,
	})))
	m = updated.(MainModel)

	lines := m.Transcript()
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "multiply")
	assert.Contains(t, lines[0], "4096")
}

func TestUpdate_Errors(t *testing.T) {
	m := newTestModel(t, &fakeSession{err: errors.New("model adapter failure")})

	updated, _ := m.Update(tui.EventMsg(events.New(events.EventError, events.ErrorData{Err: errors.New("boom")})))
	m = updated.(MainModel)
	assert.Equal(t, "boom", m.ErrorLine())

	m, cmd := m.submit("hi")
	assert.Empty(t, m.ErrorLine(), "new turn clears the error line")

	updated, _ = m.Update(runTurn(t, cmd))
	m = updated.(MainModel)
	assert.Equal(t, "model adapter failure", m.ErrorLine())
	assert.Contains(t, m.View(), "Error: model adapter failure")
}

func TestView(t *testing.T) {
	m := InitialModel(context.Background(), &fakeSession{}, events.NewChanEmitter(1).Subscribe(), Options{})
	assert.Equal(t, "Initializing UI...", m.View())

	m = newTestModel(t, &fakeSession{})
	view := m.View()
	assert.Contains(t, view, "Poncho Chat")
	assert.Contains(t, view, "F1 What is 16 * 256?")
	assert.Contains(t, view, "gpt-4o")
	assert.True(t, strings.Contains(view, "Ready"))
}

func TestUpdate_Quit(t *testing.T) {
	m := newTestModel(t, &fakeSession{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}
