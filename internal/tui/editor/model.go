// Package editor содержит модель экрана переименования трека для TUI
package editor

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/go-playlist/internal/catalog"
	"github.com/hazadus/go-playlist/internal/errmsg"
	"github.com/hazadus/go-playlist/internal/track"
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true).Margin(1, 0)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(15)
	focusedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	blurredStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Margin(1, 0)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Margin(1, 0)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Margin(1, 0)
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Margin(1, 0)
)

// TrackSavedMsg отправляется когда трек успешно переименован
type TrackSavedMsg struct {
	TrackID string
}

// GoBackMsg отправляется при выходе из редактора
type GoBackMsg struct{}

// fieldType определяет тип поля для редактирования
type fieldType int

const (
	nameField fieldType = iota
	artistField
	numFields
)

// Model представляет модель экрана редактирования трека
type Model struct {
	trackManager *track.Manager
	draft        catalog.Draft
	inputs       []textinput.Model
	focusIndex   int
	err          string
	success      string
}

// NewModel начинает редактирование трека и создает модель редактора
func NewModel(trackManager *track.Manager, trackID string) (*Model, error) {
	draft, err := trackManager.BeginEdit(trackID)
	if err != nil {
		return nil, err
	}

	inputs := make([]textinput.Model, numFields)

	inputs[nameField] = textinput.New()
	inputs[nameField].Placeholder = "Введите название трека"
	inputs[nameField].SetValue(draft.Name)
	inputs[nameField].Focus()
	inputs[nameField].PromptStyle = focusedStyle
	inputs[nameField].TextStyle = focusedStyle

	inputs[artistField] = textinput.New()
	inputs[artistField].Placeholder = "Введите исполнителя"
	inputs[artistField].SetValue(draft.Artist)
	inputs[artistField].PromptStyle = blurredStyle
	inputs[artistField].TextStyle = blurredStyle

	return &Model{
		trackManager: trackManager,
		draft:        draft,
		inputs:       inputs,
	}, nil
}

// Init инициализирует модель
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update обрабатывает сообщения и обновляет модель
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			// Отменяем редактирование
			m.trackManager.CancelEdit()
			return m, func() tea.Msg {
				return GoBackMsg{}
			}

		case "ctrl+s":
			return m, m.save()

		case "tab", "shift+tab", "enter", "up", "down":
			s := msg.String()

			if s == "enter" && m.focusIndex == len(m.inputs) {
				// Enter на кнопке Save
				return m, m.save()
			}

			// Перемещение фокуса
			if s == "up" || s == "shift+tab" {
				m.focusIndex--
			} else {
				m.focusIndex++
			}

			if m.focusIndex > len(m.inputs) {
				m.focusIndex = 0
			} else if m.focusIndex < 0 {
				m.focusIndex = len(m.inputs)
			}

			cmds := make([]tea.Cmd, len(m.inputs))
			for i := range m.inputs {
				if i == m.focusIndex {
					cmds[i] = m.inputs[i].Focus()
					m.inputs[i].PromptStyle = focusedStyle
					m.inputs[i].TextStyle = focusedStyle
				} else {
					m.inputs[i].Blur()
					m.inputs[i].PromptStyle = blurredStyle
					m.inputs[i].TextStyle = blurredStyle
				}
			}

			return m, tea.Batch(cmds...)
		}

	case tea.WindowSizeMsg:
		for i := range m.inputs {
			m.inputs[i].Width = msg.Width - 20
		}
		return m, nil
	}

	// Обновляем активное поле ввода и черновик
	if m.focusIndex < len(m.inputs) {
		var cmd tea.Cmd
		m.inputs[m.focusIndex], cmd = m.inputs[m.focusIndex].Update(msg)
		m.syncDraft()
		return m, cmd
	}

	return m, nil
}

func (m *Model) syncDraft() {
	edit := m.trackManager.Edit()
	edit.SetName(m.inputs[nameField].Value())
	edit.SetArtist(m.inputs[artistField].Value())
	m.draft.Name = m.inputs[nameField].Value()
	m.draft.Artist = m.inputs[artistField].Value()
}

// save применяет черновик. При ошибке черновик остается для исправления.
func (m *Model) save() tea.Cmd {
	m.syncDraft()

	if err := m.trackManager.CommitEdit(); err != nil {
		m.success = ""
		m.err = errmsg.FormatWith(errmsg.OpTrackRename, strings.TrimSpace(m.draft.Name), err)

		var notFound *catalog.NotFoundError
		if errors.As(err, &notFound) || errors.Is(err, catalog.ErrNoDraft) {
			// Трек удален во время редактирования
			m.trackManager.CancelEdit()
		}
		return nil
	}

	m.err = ""
	m.success = "Трек успешно сохранен!"
	trackID := m.draft.TrackID

	// Возвращаемся к списку треков через небольшую задержку
	return tea.Batch(
		func() tea.Msg { return TrackSavedMsg{TrackID: trackID} },
		tea.Tick(time.Second, func(time.Time) tea.Msg {
			return GoBackMsg{}
		}),
	)
}

// View отображает модель
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Редактирование трека"))
	b.WriteString("\n\n")

	labels := []string{"Название:", "Исполнитель:"}

	for i, input := range m.inputs {
		b.WriteString(labelStyle.Render(labels[i]))
		b.WriteString(" ")
		b.WriteString(input.View())
		b.WriteString("\n\n")
	}

	// Кнопка сохранения
	saveButton := "[ Сохранить ]"
	if m.focusIndex == len(m.inputs) {
		saveButton = focusedStyle.Render(saveButton)
	} else {
		saveButton = blurredStyle.Render(saveButton)
	}
	b.WriteString(saveButton)
	b.WriteString("\n\n")

	if m.err != "" {
		b.WriteString(errorStyle.Render(m.err))
		b.WriteString("\n")
	}

	if m.success != "" {
		b.WriteString(successStyle.Render(m.success))
		b.WriteString("\n")
	}

	// Справка
	b.WriteString(helpStyle.Render("Tab/Enter: следующее поле • Shift+Tab: предыдущее поле"))
	b.WriteString("\n")
	b.WriteString(footerStyle.Render("Ctrl+S: сохранить • Esc: отмена"))

	return b.String()
}
