// Package app содержит основную логику TUI приложения
package app

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/go-playlist/internal/errmsg"
	"github.com/hazadus/go-playlist/internal/profile"
	"github.com/hazadus/go-playlist/internal/session"
	"github.com/hazadus/go-playlist/internal/track"
	"github.com/hazadus/go-playlist/internal/tui/adder"
	"github.com/hazadus/go-playlist/internal/tui/editor"
	tuiPlayer "github.com/hazadus/go-playlist/internal/tui/player"
	"github.com/hazadus/go-playlist/internal/tui/tracklist"
)

// ScreenType определяет тип текущего экрана
type ScreenType int

// Константы для типов экранов
const (
	// TracklistScreen - экран списка треков
	TracklistScreen ScreenType = iota
	// PlayerScreen - экран плеера
	PlayerScreen
	// EditorScreen - экран редактирования
	EditorScreen
	// AddScreen - экран добавления трека
	AddScreen
)

var (
	headerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginLeft(2)
	nowPlayingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).MarginLeft(2)
)

// PlaybackChangedMsg содержит новый снимок сессии воспроизведения
type PlaybackChangedMsg struct {
	Snapshot session.Snapshot
}

// PlaybackErrorMsg содержит ошибку воспроизведения
type PlaybackErrorMsg struct {
	Event session.ErrorEvent
}

// MainModel представляет главную модель TUI
type MainModel struct {
	trackManager   *track.Manager
	profile        profile.Profile
	subscription   *session.Subscription
	sources        []string // источники, импортируемые при запуске
	currentScreen  ScreenType
	tracklistModel *tracklist.Model
	playerModel    *tuiPlayer.Model
	editorModel    *editor.Model
	adderModel     *adder.Model
	playback       session.Snapshot
	size           tea.WindowSizeMsg
}

// NewMainModel создает новую главную модель
func NewMainModel(trackManager *track.Manager, p profile.Profile, sources ...string) *MainModel {
	return &MainModel{
		trackManager:   trackManager,
		profile:        p,
		subscription:   trackManager.Session().Subscribe(),
		sources:        sources,
		currentScreen:  TracklistScreen,
		tracklistModel: tracklist.NewModel(trackManager),
		playback:       trackManager.Session().Snapshot(),
	}
}

// Init инициализирует модель
func (m *MainModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.tracklistModel.Init(), listen(m.subscription)}
	for _, source := range m.sources {
		cmds = append(cmds, adder.Add(context.Background(), m.trackManager, source, ""))
	}
	return tea.Batch(cmds...)
}

// listen ждет следующее событие сессии воспроизведения
func listen(sub *session.Subscription) tea.Cmd {
	return func() tea.Msg {
		select {
		case snap := <-sub.Changed:
			return PlaybackChangedMsg{Snapshot: snap}
		case event := <-sub.Errors:
			return PlaybackErrorMsg{Event: event}
		case <-sub.Done:
			return nil
		}
	}
}

// Update обрабатывает сообщения
func (m *MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Глобальные горячие клавиши
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case PlaybackChangedMsg:
		m.playback = msg.Snapshot
		m.tracklistModel.SetPlayback(msg.Snapshot)
		cmds := []tea.Cmd{listen(m.subscription)}
		if m.playerModel != nil {
			cmds = append(cmds, m.playerModel.SetPlayback(msg.Snapshot))
		}
		return m, tea.Batch(cmds...)

	case PlaybackErrorMsg:
		text := m.describePlaybackError(msg.Event)
		m.tracklistModel.SetError(text)
		if m.playerModel != nil {
			m.playerModel.SetError(text)
		}
		return m, listen(m.subscription)

	case tracklist.TrackSelectedMsg:
		// Переключаемся на экран плеера
		m.currentScreen = PlayerScreen
		m.playerModel = tuiPlayer.NewModel(m.trackManager)
		if m.hasSize() {
			m.playerModel.Update(m.innerSize())
		}
		return m, m.playerModel.Init()

	case tracklist.TrackEditMsg:
		editorModel, err := editor.NewModel(m.trackManager, msg.Track.ID)
		if err != nil {
			m.tracklistModel.SetError(errmsg.FormatWith(errmsg.OpTrackEdit, msg.Track.Name, err))
			return m, nil
		}
		m.currentScreen = EditorScreen
		m.editorModel = editorModel
		if m.hasSize() {
			m.editorModel.Update(m.innerSize())
		}
		return m, m.editorModel.Init()

	case tracklist.AddRequestedMsg:
		m.currentScreen = AddScreen
		m.adderModel = adder.NewModel(m.trackManager)
		if m.hasSize() {
			m.adderModel.Update(m.innerSize())
		}
		return m, m.adderModel.Init()

	case adder.TrackAddedMsg:
		m.tracklistModel.SetStatus(fmt.Sprintf("Добавлен: %s", msg.Track.Name))
		m.tracklistModel.RefreshData()
		if m.currentScreen == AddScreen {
			m.backToTracklist()
		}
		return m, nil

	case adder.AddFailedMsg:
		if m.currentScreen == AddScreen && m.adderModel != nil && m.adderModel.Busy() {
			var cmd tea.Cmd
			m.adderModel, cmd = m.adderModel.Update(msg)
			return m, cmd
		}
		m.tracklistModel.SetError(errmsg.FormatWith(errmsg.OpTrackAdd, msg.Source, msg.Err))
		return m, nil

	case tuiPlayer.GoBackMsg, editor.GoBackMsg, adder.GoBackMsg:
		m.backToTracklist()
		return m, nil

	case editor.TrackSavedMsg:
		// Трек переименован, список и панель "Сейчас играет" читают имя из каталога
		m.tracklistModel.RefreshData()
		return m, nil

	case tea.WindowSizeMsg:
		m.size = msg
		inner := m.innerSize()
		var cmds []tea.Cmd
		var cmd tea.Cmd
		m.tracklistModel, cmd = m.tracklistModel.Update(inner)
		cmds = append(cmds, cmd)
		if m.playerModel != nil {
			m.playerModel, cmd = m.playerModel.Update(inner)
			cmds = append(cmds, cmd)
		}
		if m.editorModel != nil {
			m.editorModel, cmd = m.editorModel.Update(inner)
			cmds = append(cmds, cmd)
		}
		if m.adderModel != nil {
			m.adderModel, cmd = m.adderModel.Update(inner)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	// Передаем сообщение активной модели
	var cmd tea.Cmd
	switch m.currentScreen {
	case TracklistScreen:
		m.tracklistModel, cmd = m.tracklistModel.Update(msg)

	case PlayerScreen:
		if m.playerModel != nil {
			m.playerModel, cmd = m.playerModel.Update(msg)
		}

	case EditorScreen:
		if m.editorModel != nil {
			m.editorModel, cmd = m.editorModel.Update(msg)
		}

	case AddScreen:
		if m.adderModel != nil {
			m.adderModel, cmd = m.adderModel.Update(msg)
		}
	}

	return m, cmd
}

func (m *MainModel) backToTracklist() {
	m.currentScreen = TracklistScreen
	m.playerModel = nil
	m.editorModel = nil
	m.adderModel = nil
	m.tracklistModel.RefreshData()
}

// hasSize сообщает, известен ли размер окна
func (m *MainModel) hasSize() bool {
	return m.size.Width > 0
}

// innerSize - размер окна без заголовка
func (m *MainModel) innerSize() tea.WindowSizeMsg {
	return tea.WindowSizeMsg{Width: m.size.Width, Height: max(0, m.size.Height-2)}
}

func (m *MainModel) describePlaybackError(event session.ErrorEvent) string {
	op := errmsg.OpPlaybackStart
	switch event.Op {
	case "pause":
		op = errmsg.OpPlaybackPause
	case "resume":
		op = errmsg.OpPlaybackResume
	case "stop":
		op = errmsg.OpPlaybackStop
	}

	name := ""
	if t, ok := m.trackManager.Catalog().Track(event.TrackID); ok {
		name = t.Name
	}
	return errmsg.FormatWith(op, name, event.Err)
}

// header отображает профиль и панель "Сейчас играет"
func (m *MainModel) header() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(m.profile.Greeting()))
	b.WriteString("\n")

	switch {
	case m.playback.State.IsActive():
		now := tuiPlayer.ResolveNowPlaying(m.trackManager, m.playback)
		icon := "▶"
		if m.playback.State == session.Paused {
			icon = "⏸"
		}
		b.WriteString(nowPlayingStyle.Render(fmt.Sprintf("%s %s - %s", icon, now.Artist, now.Name)))
	case m.playback.IsPending():
		b.WriteString(nowPlayingStyle.Render("⏳ Загрузка..."))
	}
	b.WriteString("\n")
	return b.String()
}

// View отображает интерфейс
func (m *MainModel) View() string {
	var body string
	switch m.currentScreen {
	case TracklistScreen:
		body = m.tracklistModel.View()

	case PlayerScreen:
		if m.playerModel == nil {
			return "Ошибка: модель плеера не инициализирована"
		}
		body = m.playerModel.View()

	case EditorScreen:
		if m.editorModel == nil {
			return "Ошибка: модель редактора не инициализирована"
		}
		body = m.editorModel.View()

	case AddScreen:
		if m.adderModel == nil {
			return "Ошибка: модель добавления не инициализирована"
		}
		body = m.adderModel.View()

	default:
		return "Неизвестный экран"
	}

	return m.header() + body
}
