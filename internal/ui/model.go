// Package ui реализует Bubble Tea TUI чата.
//
// Транскрипт "User:" / "AI:", три слота подсказок, поле ввода и строка
// ошибки. Всё, что приходит от чата, читается из events.Subscriber.
package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ilkoid/poncho-chat/pkg/events"
	"github.com/ilkoid/poncho-chat/pkg/llm"
	"github.com/ilkoid/poncho-chat/pkg/tui"
)

// Submitter — вход в цикл диалога (chat.Session).
type Submitter interface {
	Submit(ctx context.Context, prompt string) (llm.Message, error)
}

// SlotSelector отдаёт подсказку из слота (suggest.Board).
type SlotSelector interface {
	Select(i int) (string, error)
}

// Options — настройки TUI.
type Options struct {
	Title              string
	ModelName          string
	InitialSuggestions []string
	Colors             tui.ColorScheme
	Debug              bool

	// Slots — источник подсказок для F1-F3. Без него берутся
	// подсказки из последнего события.
	Slots SlotSelector
}

// turnDoneMsg приходит, когда Submit вернул управление.
type turnDoneMsg struct {
	err error
}

// MainModel представляет главную модель UI (Bubble Tea Model).
//
// transcript и status — указатели: Bubble Tea копирует модель
// на каждом Update, мьютексы внутри не копируются.
type MainModel struct {
	ctx      context.Context
	session  Submitter
	eventSub events.Subscriber

	transcript *tui.Transcript
	status     *tui.StatusBar
	textarea   textarea.Model
	help       help.Model
	keys       tui.KeyMap
	styles     styles

	title       string
	slots       SlotSelector
	suggestions []string
	errLine     string

	busy     bool
	showHelp bool
	ready    bool
	width    int
}

// InitialModel создает начальное состояние UI.
func InitialModel(ctx context.Context, session Submitter, eventSub events.Subscriber, opts Options) MainModel {
	if opts.Title == "" {
		opts.Title = "Poncho Chat"
	}
	if opts.Colors == (tui.ColorScheme{}) {
		opts.Colors = tui.DefaultColorScheme()
	}

	ta := textarea.New()
	ta.Placeholder = "Ask anything..."
	ta.Focus()
	ta.Prompt = "┃ "
	ta.CharLimit = 2000
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	// Enter отправляет запрос, перевод строки не нужен
	ta.KeyMap.InsertNewline.SetEnabled(false)

	status := tui.NewStatusBar(opts.Colors)
	status.SetExtra(opts.ModelName)
	status.SetDebugMode(opts.Debug)

	return MainModel{
		ctx:         ctx,
		session:     session,
		eventSub:    eventSub,
		transcript:  tui.NewTranscript(),
		status:      status,
		textarea:    ta,
		help:        help.New(),
		keys:        tui.DefaultKeyMap(),
		styles:      newStyles(opts.Colors),
		title:       opts.Title,
		slots:       opts.Slots,
		suggestions: append([]string(nil), opts.InitialSuggestions...),
	}
}

// Init запускает мигание курсора и чтение событий чата.
func (m MainModel) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		tui.ReceiveEventCmd(m.eventSub, tui.ToEventMsg),
	)
}

// Suggestions возвращает текущие подсказки по слотам.
func (m MainModel) Suggestions() []string {
	return append([]string(nil), m.suggestions...)
}

// Transcript возвращает строки транскрипта.
func (m MainModel) Transcript() []string {
	return m.transcript.Lines()
}

// ErrorLine возвращает текст строки ошибки.
func (m MainModel) ErrorLine() string {
	return m.errLine
}

// Busy сообщает, идёт ли ход.
func (m MainModel) Busy() bool {
	return m.busy
}

// Run запускает TUI и блокируется до выхода.
//
// Без AltScreen: текст транскрипта можно выделять мышкой.
func Run(m MainModel) error {
	_, err := tea.NewProgram(m, tea.WithContext(m.ctx)).Run()
	return err
}
