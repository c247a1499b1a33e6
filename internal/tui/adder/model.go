// Package adder содержит модель экрана добавления трека для TUI
package adder

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/go-playlist/internal/data"
	"github.com/hazadus/go-playlist/internal/errmsg"
	"github.com/hazadus/go-playlist/internal/track"
)

// NoSourceText показывается, если источник не указан
const NoSourceText = "Файл не выбран."

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true).Margin(1, 0)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(15)
	focusedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	blurredStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Margin(1, 0)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Margin(1, 0)
)

// TrackAddedMsg отправляется после успешного добавления
type TrackAddedMsg struct {
	Track data.Track
}

// AddFailedMsg отправляется при ошибке добавления
type AddFailedMsg struct {
	Source string
	Err    error
}

// GoBackMsg отправляется при отмене добавления
type GoBackMsg struct{}

const (
	sourceField = iota
	nameField
	numFields
)

// Model представляет модель экрана добавления трека
type Model struct {
	trackManager *track.Manager
	inputs       []textinput.Model
	focusIndex   int
	spinner      spinner.Model
	busy         bool
	cancel       context.CancelFunc
	err          string
}

// NewModel создает модель экрана добавления
func NewModel(trackManager *track.Manager) *Model {
	inputs := make([]textinput.Model, numFields)

	inputs[sourceField] = textinput.New()
	inputs[sourceField].Placeholder = "Путь к файлу, http(s):// или s3:// ссылка"
	inputs[sourceField].Focus()
	inputs[sourceField].PromptStyle = focusedStyle
	inputs[sourceField].TextStyle = focusedStyle

	inputs[nameField] = textinput.New()
	inputs[nameField].Placeholder = "Необязательно"
	inputs[nameField].PromptStyle = blurredStyle
	inputs[nameField].TextStyle = blurredStyle

	s := spinner.New()
	s.Spinner = spinner.Dot

	return &Model{
		trackManager: trackManager,
		inputs:       inputs,
		spinner:      s,
	}
}

// Init инициализирует модель
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Busy сообщает, идет ли импорт
func (m *Model) Busy() bool {
	return m.busy
}

// Update обрабатывает сообщения и обновляет модель
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			if m.cancel != nil {
				m.cancel()
			}
			return m, func() tea.Msg {
				return GoBackMsg{}
			}
		}

		if m.busy {
			return m, nil
		}

		switch msg.String() {
		case "ctrl+s":
			return m, m.submit()

		case "enter":
			if m.focusIndex == nameField {
				return m, m.submit()
			}
			return m, m.focus(nameField)

		case "tab", "down":
			return m, m.focus((m.focusIndex + 1) % numFields)

		case "shift+tab", "up":
			return m, m.focus((m.focusIndex + numFields - 1) % numFields)
		}

	case AddFailedMsg:
		m.busy = false
		m.cancel = nil
		m.err = errmsg.FormatWith(errmsg.OpTrackAdd, msg.Source, msg.Err)
		return m, nil

	case TrackAddedMsg:
		m.busy = false
		m.cancel = nil
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		for i := range m.inputs {
			m.inputs[i].Width = msg.Width - 20
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focusIndex], cmd = m.inputs[m.focusIndex].Update(msg)
	return m, cmd
}

func (m *Model) focus(index int) tea.Cmd {
	m.focusIndex = index
	var cmd tea.Cmd
	for i := range m.inputs {
		if i == index {
			cmd = m.inputs[i].Focus()
			m.inputs[i].PromptStyle = focusedStyle
			m.inputs[i].TextStyle = focusedStyle
		} else {
			m.inputs[i].Blur()
			m.inputs[i].PromptStyle = blurredStyle
			m.inputs[i].TextStyle = blurredStyle
		}
	}
	return cmd
}

// submit запускает импорт в отдельной команде
func (m *Model) submit() tea.Cmd {
	source := strings.TrimSpace(m.inputs[sourceField].Value())
	if source == "" {
		m.err = NoSourceText
		return nil
	}
	name := m.inputs[nameField].Value()

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.busy = true
	m.err = ""

	return tea.Batch(m.spinner.Tick, Add(ctx, m.trackManager, source, name))
}

// Add возвращает команду, импортирующую источник в каталог
func Add(ctx context.Context, trackManager *track.Manager, source, name string) tea.Cmd {
	return func() tea.Msg {
		t, err := trackManager.Add(ctx, source, name)
		if err != nil {
			return AddFailedMsg{Source: source, Err: err}
		}
		return TrackAddedMsg{Track: t}
	}
}

// View отображает модель
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("➕ Добавление трека"))
	b.WriteString("\n\n")

	labels := []string{"Источник:", "Название:"}
	for i, input := range m.inputs {
		b.WriteString(labelStyle.Render(labels[i]))
		b.WriteString(" ")
		b.WriteString(input.View())
		b.WriteString("\n\n")
	}

	if m.busy {
		b.WriteString(m.spinner.View())
		b.WriteString(" Загрузка...\n")
	}

	if m.err != "" {
		b.WriteString(errorStyle.Render(m.err))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("Enter: далее/добавить • Ctrl+S: добавить • Esc: отмена"))
	return b.String()
}
