package catalog

import (
	"sync"

	"github.com/hazadus/go-playlist/internal/data"
)

// Draft - черновик переименования трека
type Draft struct {
	TrackID string
	Name    string
	Artist  string
}

// EditBuffer хранит не более одного черновика.
// Новый Begin перезаписывает предыдущий.
type EditBuffer struct {
	mu    sync.Mutex
	draft *Draft
}

// NewEditBuffer создает пустой буфер
func NewEditBuffer() *EditBuffer {
	return &EditBuffer{}
}

// Begin начинает редактирование трека
func (b *EditBuffer) Begin(track data.Track) Draft {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.draft = &Draft{TrackID: track.ID, Name: track.Name, Artist: track.Artist}
	return *b.draft
}

// SetName меняет название в черновике
func (b *EditBuffer) SetName(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.draft != nil {
		b.draft.Name = name
	}
}

// SetArtist меняет исполнителя в черновике
func (b *EditBuffer) SetArtist(artist string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.draft != nil {
		b.draft.Artist = artist
	}
}

// Draft возвращает копию текущего черновика
func (b *EditBuffer) Draft() (Draft, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.draft == nil {
		return Draft{}, false
	}
	return *b.draft, true
}

// Active сообщает, есть ли черновик
func (b *EditBuffer) Active() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.draft != nil
}

// Commit применяет черновик к каталогу.
// При ошибке черновик сохраняется, при успехе очищается.
func (b *EditBuffer) Commit(c *Catalog) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.draft == nil {
		return ErrNoDraft
	}
	if err := c.Rename(b.draft.TrackID, b.draft.Name, b.draft.Artist); err != nil {
		return err
	}
	b.draft = nil
	return nil
}

// Cancel отбрасывает черновик
func (b *EditBuffer) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.draft = nil
}
