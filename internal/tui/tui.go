// Package tui содержит компоненты для текстового пользовательского интерфейса
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hazadus/go-playlist/internal/profile"
	"github.com/hazadus/go-playlist/internal/track"
	"github.com/hazadus/go-playlist/internal/tui/app"
)

// App представляет основное TUI приложение
type App struct {
	trackManager *track.Manager
	profile      profile.Profile
	sources      []string
}

// NewApp создает новый экземпляр TUI приложения.
// Источники sources импортируются в каталог сразу после запуска.
func NewApp(trackManager *track.Manager, p profile.Profile, sources ...string) *App {
	return &App{
		trackManager: trackManager,
		profile:      p,
		sources:      sources,
	}
}

// Model возвращает главную модель Bubble Tea
func (tuiApp *App) Model() *app.MainModel {
	return app.NewMainModel(tuiApp.trackManager, tuiApp.profile, tuiApp.sources...)
}

// Run запускает TUI приложение
func (tuiApp *App) Run() error {
	p := tea.NewProgram(tuiApp.Model(), tea.WithAltScreen())

	_, err := p.Run()

	// Останавливаем воспроизведение после выхода из интерфейса
	if closeErr := tuiApp.trackManager.Close(); err == nil {
		err = closeErr
	}
	return err
}
