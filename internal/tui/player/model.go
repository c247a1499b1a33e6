// Package player содержит модель экрана воспроизведения для TUI
package player

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/go-playlist/internal/session"
	"github.com/hazadus/go-playlist/internal/track"
	"github.com/hazadus/go-playlist/internal/utils"
)

// tickInterval - период обновления позиции воспроизведения
const tickInterval = 500 * time.Millisecond

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#0000ff")).
			MarginBottom(1)

	trackInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginBottom(1)

	statusStyle = lipgloss.NewStyle().
			Bold(true).
			MarginTop(1).
			MarginBottom(1)

	controlsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff0000")).
			Bold(true)
)

// GoBackMsg отправляется для возврата к списку треков
type GoBackMsg struct{}

// TickMsg запрашивает свежий снимок сессии
type TickMsg time.Time

// Model представляет модель экрана воспроизведения
type Model struct {
	trackManager *track.Manager
	progressBar  progress.Model
	snapshot     session.Snapshot
	err          string
	width        int
	height       int
}

// NewModel создает новую модель плеера
func NewModel(trackManager *track.Manager) *Model {
	// Создаем прогресс-бар
	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 40

	return &Model{
		trackManager: trackManager,
		progressBar:  prog,
		snapshot:     trackManager.Session().Snapshot(),
	}
}

// Init запускает периодическое обновление позиции
func (m *Model) Init() tea.Cmd {
	return tick()
}

// SetPlayback обновляет снимок сессии
func (m *Model) SetPlayback(snap session.Snapshot) tea.Cmd {
	m.snapshot = snap
	if snap.State.IsActive() {
		m.err = ""
	}
	return m.progressBar.SetPercent(percent(snap))
}

// SetError показывает сообщение об ошибке воспроизведения
func (m *Model) SetError(err string) {
	m.err = err
}

// Update обрабатывает сообщения и обновляет модель
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Обновляем ширину прогресс-бара
		m.progressBar.Width = max(10, min(60, msg.Width-10))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc":
			// Воспроизведение продолжается, возвращаемся к списку треков
			return m, func() tea.Msg {
				return GoBackMsg{}
			}

		case " ":
			// Пауза/воспроизведение
			m.trackManager.Toggle()
			return m, nil

		case "s":
			m.trackManager.Stop()
			return m, nil
		}

	case TickMsg:
		cmd := m.SetPlayback(m.trackManager.Session().Snapshot())
		return m, tea.Batch(cmd, tick())

	case progress.FrameMsg:
		// Обновляем прогресс-бар
		progressModel, cmd := m.progressBar.Update(msg)
		m.progressBar = progressModel.(progress.Model)
		return m, cmd
	}

	return m, nil
}

// View отображает модель
func (m *Model) View() string {
	if m.err != "" {
		return fmt.Sprintf(
			"%s\n\n%s\n\n%s",
			titleStyle.Render("❌ Ошибка воспроизведения"),
			errorStyle.Render(m.err),
			controlsStyle.Render("Нажмите 'q' или 'esc' для возврата"),
		)
	}

	// Заголовок
	title := titleStyle.Render("🎵 Воспроизведение")

	if !m.snapshot.State.IsActive() {
		text := "Ничего не играет"
		if m.snapshot.IsPending() {
			text = "⏳ Загрузка..."
		}
		return fmt.Sprintf(
			"%s\n\n%s\n\n%s",
			title,
			trackInfoStyle.Render(text),
			controlsStyle.Render("q/esc: назад к списку"),
		)
	}

	// Информация о треке
	now := ResolveNowPlaying(m.trackManager, m.snapshot)
	trackInfo := trackInfoStyle.Render(fmt.Sprintf("🎤 %s\n🎵 %s", now.Artist, now.Name))

	// Статус воспроизведения
	statusIcon := "⏸️"
	if m.snapshot.State == session.Playing {
		statusIcon = "▶️"
	}
	statusText := statusStyle.Render(fmt.Sprintf("%s %s", statusIcon, formatStatus(m.snapshot.State)))

	// Элементы управления
	controls := controlsStyle.Render(
		"Пробел: пауза/воспроизведение • s: стоп • q/esc: назад к списку",
	)

	return fmt.Sprintf(
		"%s\n\n%s\n\n%s\n\n%s\n%s\n\n%s",
		title,
		trackInfo,
		statusText,
		m.progressBar.View(),
		utils.FormatProgress(m.snapshot.Position, m.snapshot.Duration),
		controls,
	)
}

// ResolveNowPlaying возвращает название и исполнителя активного трека.
// Данные берутся из каталога, чтобы переименование сразу отражалось
// в панели; если трека там уже нет, используется снимок сессии.
func ResolveNowPlaying(trackManager *track.Manager, snap session.Snapshot) session.NowPlaying {
	if t, ok := trackManager.Catalog().Track(snap.ActiveTrackID); ok {
		return session.NowPlaying{Name: t.Name, Artist: t.Artist}
	}
	return snap.NowPlaying
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func percent(snap session.Snapshot) float64 {
	if snap.Duration <= 0 {
		return 0
	}
	return min(1, float64(snap.Position)/float64(snap.Duration))
}

// Вспомогательные функции

func formatStatus(state session.State) string {
	switch state {
	case session.Playing:
		return "Воспроизведение"
	case session.Paused:
		return "Пауза"
	default:
		return "Остановлено"
	}
}
