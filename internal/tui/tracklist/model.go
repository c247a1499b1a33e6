// Package tracklist содержит модель экрана списка треков для TUI
package tracklist

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/go-playlist/internal/data"
	"github.com/hazadus/go-playlist/internal/errmsg"
	"github.com/hazadus/go-playlist/internal/session"
	"github.com/hazadus/go-playlist/internal/track"
	"github.com/hazadus/go-playlist/internal/utils"
)

const (
	artistWidth = 20
	nameWidth   = 40

	// Размер до первого WindowSizeMsg
	defaultWidth  = 100
	defaultHeight = 20

	// Тексты пустого списка
	emptySearchText  = "Ничего не найдено."
	emptyCatalogText = "Треков пока нет. Добавьте первый!"
)

var (
	titleStyle        = lipgloss.NewStyle().MarginLeft(2)
	itemStyle         = lipgloss.NewStyle().PaddingLeft(4)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("170"))
	playingItemStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	paginationStyle   = list.DefaultStyles().PaginationStyle.PaddingLeft(4)
	helpStyle         = list.DefaultStyles().HelpStyle.PaddingLeft(4).PaddingBottom(1)
	emptyStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Margin(1, 0, 1, 4)
	searchStyle       = lipgloss.NewStyle().MarginLeft(4)
	statusStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).MarginLeft(4)
	errorStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).MarginLeft(4)
)

// TrackSelectedMsg отправляется при запуске трека для воспроизведения
type TrackSelectedMsg struct {
	Track data.Track
}

// TrackEditMsg отправляется при выборе трека для редактирования
type TrackEditMsg struct {
	Track data.Track
}

// AddRequestedMsg отправляется при нажатии клавиши добавления трека
type AddRequestedMsg struct{}

// trackItem реализует интерфейс list.Item для трека
type trackItem struct {
	track    data.Track
	selected bool
	state    session.State // состояние, если трек активен в сессии
}

func (i trackItem) FilterValue() string {
	return i.track.Name
}

// trackItemDelegate реализует отображение элементов списка
type trackItemDelegate struct{}

func (d trackItemDelegate) Height() int                             { return 1 }
func (d trackItemDelegate) Spacing() int                            { return 0 }
func (d trackItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d trackItemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(trackItem)
	if !ok {
		return
	}

	// Строка таблицы: отметка | Исполнитель | Название | Размер
	str := fmt.Sprintf("%s %s %s %s %s",
		stateMarker(i.state),
		checkbox(i.selected),
		utils.PadRight(i.track.Artist, artistWidth),
		utils.PadRight(i.track.Name, nameWidth),
		utils.FormatSize(i.track.Size))

	if i.state.IsActive() {
		str = playingItemStyle.Render(str)
	}

	fn := itemStyle.Render
	if index == m.Index() {
		fn = func(s ...string) string {
			return selectedItemStyle.Render("> " + strings.Join(s, " "))
		}
	}

	fmt.Fprint(w, fn(str))
}

func stateMarker(state session.State) string {
	switch state {
	case session.Playing:
		return "▶"
	case session.Paused:
		return "⏸"
	default:
		return " "
	}
}

func checkbox(selected bool) string {
	if selected {
		return "[x]"
	}
	return "[ ]"
}

// Model представляет модель экрана списка треков
type Model struct {
	list         list.Model
	search       textinput.Model
	searching    bool
	trackManager *track.Manager
	playback     session.Snapshot
	status       string
	err          string
	quitting     bool
}

// NewModel создает новую модель списка треков
func NewModel(trackManager *track.Manager) *Model {
	l := list.New(nil, trackItemDelegate{}, defaultWidth, defaultHeight)
	l.Title = "Треки"
	l.SetShowStatusBar(false)
	l.SetShowTitle(true)
	// Поиск выполняет каталог, встроенный фильтр списка не нужен
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()
	l.Styles.Title = titleStyle
	l.Styles.PaginationStyle = paginationStyle
	l.Styles.HelpStyle = helpStyle

	search := textinput.New()
	search.Prompt = "🔍 "
	search.Placeholder = "Поиск по названию"
	search.SetValue(trackManager.Catalog().SearchText())

	m := &Model{
		list:         l,
		search:       search,
		trackManager: trackManager,
	}
	m.RefreshData()
	return m
}

// Init инициализирует модель
func (m *Model) Init() tea.Cmd {
	return nil
}

// RefreshData обновляет данные модели без пересоздания
func (m *Model) RefreshData() {
	c := m.trackManager.Catalog()
	tracks := m.trackManager.ListTracks()

	items := make([]list.Item, len(tracks))
	for i, t := range tracks {
		item := trackItem{track: t, selected: c.IsSelected(t.ID)}
		if t.ID == m.playback.ActiveTrackID {
			item.state = m.playback.State
		}
		items[i] = item
	}

	m.list.SetItems(items)
}

// SetPlayback обновляет отметку играющего трека
func (m *Model) SetPlayback(snap session.Snapshot) {
	m.playback = snap
	m.RefreshData()
}

// SetStatus показывает сообщение об успешной операции
func (m *Model) SetStatus(status string) {
	m.status = status
	m.err = ""
}

// SetError показывает сообщение об ошибке
func (m *Model) SetError(err string) {
	m.err = err
	m.status = ""
}

// Searching сообщает, что фокус в строке поиска
func (m *Model) Searching() bool {
	return m.searching
}

// Update обрабатывает сообщения и обновляет модель
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		m.list.SetHeight(max(0, msg.Height-8)) // Оставляем место для поиска и справки
		m.search.Width = max(10, msg.Width-10)
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}

		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit

		case "/":
			m.searching = true
			return m, m.search.Focus()

		case "enter":
			if item, ok := m.selectedItem(); ok {
				if _, err := m.trackManager.Play(item.track.ID); err != nil {
					m.SetError(errmsg.FormatWith(errmsg.OpPlaybackStart, item.track.Name, err))
					return m, nil
				}
				return m, func() tea.Msg {
					return TrackSelectedMsg{Track: item.track}
				}
			}
			return m, nil

		case " ", "x":
			// Выделение трека
			if item, ok := m.selectedItem(); ok {
				m.trackManager.Catalog().ToggleSelect(item.track.ID)
				m.RefreshData()
			}
			return m, nil

		case "c":
			m.trackManager.Catalog().ClearSelection()
			m.RefreshData()
			return m, nil

		case "d":
			// Удаление выделенных треков
			removed := m.trackManager.RemoveSelected()
			if len(removed) > 0 {
				m.SetStatus(fmt.Sprintf("Удалено треков: %d", len(removed)))
				m.RefreshData()
			}
			return m, nil

		case "delete", "backspace":
			if item, ok := m.selectedItem(); ok {
				removed := m.trackManager.Remove(item.track.ID)
				m.SetStatus(fmt.Sprintf("Удалено треков: %d", len(removed)))
				m.RefreshData()
			}
			return m, nil

		case "p":
			m.trackManager.Toggle()
			return m, nil

		case "s":
			m.trackManager.Stop()
			return m, nil

		case "a":
			return m, func() tea.Msg {
				return AddRequestedMsg{}
			}

		case "e":
			if item, ok := m.selectedItem(); ok {
				return m, func() tea.Msg {
					return TrackEditMsg{Track: item.track}
				}
			}
			return m, nil
		}
	}

	// Обновляем список
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) updateSearch(msg tea.KeyMsg) (*Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.searching = false
		m.search.Blur()
		if msg.String() == "esc" {
			m.search.SetValue("")
			m.applySearch()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.applySearch()
	return m, cmd
}

func (m *Model) applySearch() {
	m.trackManager.Catalog().SetSearchText(m.search.Value())
	m.RefreshData()
	m.list.ResetSelected()
}

func (m *Model) selectedItem() (trackItem, bool) {
	item, ok := m.list.SelectedItem().(trackItem)
	return item, ok
}

// View отображает модель
func (m *Model) View() string {
	if m.quitting {
		return "До свидания!\n"
	}

	var b strings.Builder

	if len(m.list.Items()) == 0 {
		b.WriteString(titleStyle.Render(m.list.Styles.Title.Render(m.list.Title)))
		b.WriteString("\n")
		empty := emptyCatalogText
		if m.trackManager.Catalog().SearchText() != "" {
			empty = emptySearchText
		}
		b.WriteString(emptyStyle.Render(empty))
	} else {
		b.WriteString(m.list.View())
	}
	b.WriteString("\n")

	if m.searching || m.search.Value() != "" {
		b.WriteString(searchStyle.Render(m.search.View()))
		b.WriteString("\n")
	}

	if m.err != "" {
		b.WriteString(errorStyle.Render(m.err))
		b.WriteString("\n")
	} else if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}

	help := "Enter: воспроизвести • Пробел: выделить • c: снять выделение • d: удалить выделенные • Del: удалить • a: добавить • e: редактировать • /: поиск • p: пауза • s: стоп • q: выход"
	if m.searching {
		help = "Enter: готово • Esc: сбросить поиск"
	}
	b.WriteString(helpStyle.Render(help))
	return b.String()
}
