package tui

import (
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkoid/poncho-chat/pkg/events"
)

func TestTranscript_AppendAndWrap(t *testing.T) {
	tr := NewTranscript()
	tr.HandleResize(tea.WindowSizeMsg{Width: 20, Height: 10}, 1, 1)

	tr.Append("User: What is the weather in Oslo right now?")
	tr.Append("AI: Cloudy")

	assert.Equal(t, []string{"User: What is the weather in Oslo right now?", "AI: Cloudy"}, tr.Lines())

	vp := tr.Viewport()
	assert.Equal(t, 8, vp.Height)
	assert.Greater(t, vp.TotalLineCount(), 2, "long line must be wrapped")
}

func TestTranscript_MinimumSize(t *testing.T) {
	tr := NewTranscript()
	tr.HandleResize(tea.WindowSizeMsg{Width: 5, Height: 3}, 3, 3)

	vp := tr.Viewport()
	assert.Equal(t, 20, vp.Width)
	assert.Equal(t, 1, vp.Height)
}

func TestTranscript_StaysAtBottom(t *testing.T) {
	tr := NewTranscript()
	tr.HandleResize(tea.WindowSizeMsg{Width: 80, Height: 5}, 1, 1)

	for i := 0; i < 20; i++ {
		tr.Append("line")
	}
	vp := tr.Viewport()
	assert.Equal(t, vp.TotalLineCount(), vp.YOffset+vp.Height)

	// Пользователь прокрутил вверх: позиция сохраняется
	tr.ScrollUp(5)
	before := tr.Viewport().YOffset
	tr.Append("new")
	assert.Equal(t, before, tr.Viewport().YOffset)
}

func TestWrapLines(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		width int
		want  []string
	}{
		{"no wrap", []string{"a b"}, 0, []string{"a b"}},
		{"word wrap", []string{"hello world"}, 6, []string{"hello", "world"}},
		{"hard wrap", []string{"abcdefghij"}, 4, []string{"abcd", "efgh", "ij"}},
		{"embedded newline", []string{"a\nb"}, 10, []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapLines(tt.lines, tt.width)
			for i := range got {
				got[i] = strings.TrimRight(got[i], " ")
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatusBar(t *testing.T) {
	sb := NewStatusBar(DefaultColorScheme())
	assert.Contains(t, sb.Render(), "Ready")
	assert.Nil(t, sb.Update(sb.Tick()()))

	sb.SetProcessing(true)
	sb.SetDebugMode(true)
	sb.SetExtra("gpt-4o")
	out := sb.Render()
	assert.Contains(t, out, "Thinking")
	assert.Contains(t, out, "DEBUG")
	assert.Contains(t, out, "gpt-4o")
	assert.True(t, sb.IsProcessing())
	assert.True(t, sb.IsDebugMode())
}

func TestReceiveEventCmd(t *testing.T) {
	emitter := events.NewChanEmitter(1)
	sub := emitter.Subscribe()

	emitter.Emit(context.Background(), events.New(events.EventMessage, events.MessageData{Content: "hi"}))
	msg := ReceiveEventCmd(sub, ToEventMsg)()
	ev, ok := msg.(EventMsg)
	require.True(t, ok)
	assert.Equal(t, events.EventMessage, ev.Type)

	emitter.Close()
	_, quit := ReceiveEventCmd(sub, ToEventMsg)().(tea.QuitMsg)
	assert.True(t, quit)
}

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyF2}, km.Suggestions[1]))
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyEnter}, km.ConfirmInput))
	assert.Len(t, km.FullHelp(), 3)
	assert.Equal(t, GetColorScheme("missing"), DefaultColorScheme())
}
