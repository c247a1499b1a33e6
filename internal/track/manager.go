// Package track содержит логику управления треками: каталог, сессию
// воспроизведения и черновик редактирования.
package track

import (
	"context"
	"slices"
	"sync"

	"github.com/hazadus/go-playlist/internal/catalog"
	"github.com/hazadus/go-playlist/internal/data"
	"github.com/hazadus/go-playlist/internal/session"
)

// Manager управляет треками в приложении
type Manager struct {
	// mu упорядочивает Play относительно удаления треков
	mu      sync.Mutex
	catalog *catalog.Catalog
	session *session.Session
	edit    *catalog.EditBuffer
}

// NewManager создает новый экземпляр Manager.
// Удаление трека из каталога останавливает его воспроизведение.
func NewManager(c *catalog.Catalog, s *session.Session) *Manager {
	m := &Manager{
		catalog: c,
		session: s,
		edit:    catalog.NewEditBuffer(),
	}
	c.OnRemove(func(ids []string) {
		for _, id := range ids {
			s.Release(id)
		}
	})
	return m
}

// Catalog возвращает каталог треков
func (m *Manager) Catalog() *catalog.Catalog {
	return m.catalog
}

// Session возвращает сессию воспроизведения
func (m *Manager) Session() *session.Session {
	return m.session
}

// Add импортирует источник и добавляет трек
func (m *Manager) Add(ctx context.Context, source, displayName string) (data.Track, error) {
	return m.catalog.Add(ctx, source, displayName)
}

// Play запускает трек из каталога
func (m *Manager) Play(id string) (*session.Future, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	track, ok := m.catalog.Track(id)
	if !ok {
		return nil, &catalog.NotFoundError{ID: id}
	}
	return m.session.Play(track), nil
}

// Pause ставит воспроизведение на паузу
func (m *Manager) Pause() *session.Future {
	return m.session.Pause()
}

// Resume продолжает воспроизведение
func (m *Manager) Resume() *session.Future {
	return m.session.Resume()
}

// Toggle переключает паузу
func (m *Manager) Toggle() *session.Future {
	return m.session.Toggle()
}

// Stop останавливает воспроизведение
func (m *Manager) Stop() *session.Future {
	return m.session.Stop()
}

// Remove удаляет треки
func (m *Manager) Remove(ids ...string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.catalog.Remove(ids...)
}

// RemoveSelected удаляет выделенные треки
func (m *Manager) RemoveSelected() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.catalog.RemoveSelected()
}

// Rename переименовывает трек
func (m *Manager) Rename(id, name, artist string) error {
	return m.catalog.Rename(id, name, artist)
}

// BeginEdit начинает редактирование трека
func (m *Manager) BeginEdit(id string) (catalog.Draft, error) {
	track, ok := m.catalog.Track(id)
	if !ok {
		return catalog.Draft{}, &catalog.NotFoundError{ID: id}
	}
	return m.edit.Begin(track), nil
}

// Edit возвращает буфер редактирования
func (m *Manager) Edit() *catalog.EditBuffer {
	return m.edit
}

// CommitEdit применяет черновик
func (m *Manager) CommitEdit() error {
	return m.edit.Commit(m.catalog)
}

// CancelEdit отбрасывает черновик
func (m *Manager) CancelEdit() {
	m.edit.Cancel()
}

// ListTracks возвращает треки, подходящие под строку поиска
func (m *Manager) ListTracks() []data.Track {
	return slices.Collect(m.catalog.Filtered())
}

// Close останавливает воспроизведение и освобождает ресурсы
func (m *Manager) Close() error {
	return m.session.Close()
}
