// Package catalog хранит упорядоченный список треков плейлиста
// вместе с выделением и строкой поиска.
package catalog

import (
	"context"
	"iter"
	"log"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/hazadus/go-playlist/internal/data"
	"github.com/hazadus/go-playlist/internal/importer"
	"github.com/hazadus/go-playlist/internal/metadata"
)

// RemoveListener получает идентификаторы удаленных треков
type RemoveListener func(ids []string)

// Snapshot - неизменяемый снимок каталога
type Snapshot struct {
	Tracks     []data.Track
	Selection  []string
	SearchText string
}

// Catalog - упорядоченная коллекция треков
type Catalog struct {
	importer importer.Importer

	mu         sync.RWMutex
	tracks     []data.Track
	selection  map[string]struct{}
	searchText string
	listeners  []RemoveListener
}

// New создает пустой каталог
func New(imp importer.Importer) *Catalog {
	return &Catalog{
		importer:  imp,
		selection: make(map[string]struct{}),
	}
}

// Add импортирует источник и добавляет трек в конец каталога.
// displayName имеет приоритет над названием из тегов.
func (c *Catalog) Add(ctx context.Context, source, displayName string) (data.Track, error) {
	// Импорт выполняется без блокировки каталога
	result, err := c.importer.Import(ctx, source)
	if err != nil {
		return data.Track{}, &InvalidSourceError{Source: source, ContentType: result.ContentType, Err: err}
	}
	if !metadata.IsAudio(result.ContentType) {
		return data.Track{}, &InvalidSourceError{Source: source, ContentType: result.ContentType, Err: importer.ErrNotAudio}
	}

	track := data.NewTrack(resolveName(displayName, result.Title, source), result.Artist, result.Ref)
	track.ContentType = result.ContentType
	track.Album = result.Album
	track.Size = result.Size

	c.mu.Lock()
	c.tracks = append(c.tracks, track)
	c.mu.Unlock()

	log.Printf("Добавлен трек %q (%s)", track.Name, track.ID)
	return track, nil
}

// resolveName выбирает название: явное, из тегов, из имени файла
func resolveName(displayName, title, source string) string {
	if name := strings.TrimSpace(displayName); name != "" {
		return name
	}
	if name := strings.TrimSpace(title); name != "" {
		return name
	}
	base := filepath.Base(source)
	if name := strings.TrimSpace(strings.TrimSuffix(base, filepath.Ext(base))); name != "" && name != "." && name != "/" {
		return name
	}
	return data.UntitledTrack
}

// Remove удаляет треки и снимает с них выделение.
// Возвращает идентификаторы, которые действительно были удалены.
func (c *Catalog) Remove(ids ...string) []string {
	if len(ids) == 0 {
		return nil
	}
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	c.mu.Lock()
	var removed []string
	c.tracks = slices.DeleteFunc(c.tracks, func(t data.Track) bool {
		if _, ok := wanted[t.ID]; ok {
			removed = append(removed, t.ID)
			return true
		}
		return false
	})
	for _, id := range removed {
		delete(c.selection, id)
	}
	listeners := slices.Clone(c.listeners)
	c.mu.Unlock()

	if len(removed) == 0 {
		return nil
	}

	log.Printf("Удалено треков: %d", len(removed))
	for _, listener := range listeners {
		listener(removed)
	}
	return removed
}

// RemoveSelected удаляет выделенные треки
func (c *Catalog) RemoveSelected() []string {
	return c.Remove(c.Selection()...)
}

// Rename меняет название и исполнителя одной операцией
func (c *Catalog) Rename(id, newName, newArtist string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexLocked(id)
	if i < 0 {
		return &NotFoundError{ID: id}
	}

	name := strings.TrimSpace(newName)
	if name == "" {
		return ErrEmptyName
	}
	artist := strings.TrimSpace(newArtist)
	if artist == "" {
		artist = data.UnknownArtist
	}
	c.tracks[i].Name = name
	c.tracks[i].Artist = artist
	return nil
}

// ToggleSelect добавляет трек в выделение или убирает из него.
// Неизвестный идентификатор игнорируется.
func (c *Catalog) ToggleSelect(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.indexLocked(id) < 0 {
		return
	}
	if _, ok := c.selection[id]; ok {
		delete(c.selection, id)
	} else {
		c.selection[id] = struct{}{}
	}
}

// ClearSelection снимает выделение со всех треков
func (c *Catalog) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.selection)
}

// IsSelected сообщает, выделен ли трек
func (c *Catalog) IsSelected(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.selection[id]
	return ok
}

// Selection возвращает выделенные треки в порядке каталога
func (c *Catalog) Selection() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selectionLocked()
}

// SetSearchText задает строку поиска
func (c *Catalog) SetSearchText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.searchText = text
}

// SearchText возвращает строку поиска
func (c *Catalog) SearchText() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.searchText
}

// Filtered возвращает треки, название которых содержит строку поиска
// без учета регистра. Каждый проход читает актуальное состояние.
func (c *Catalog) Filtered() iter.Seq[data.Track] {
	return func(yield func(data.Track) bool) {
		c.mu.RLock()
		tracks := slices.Clone(c.tracks)
		query := strings.ToLower(c.searchText)
		c.mu.RUnlock()

		for _, t := range tracks {
			if query != "" && !strings.Contains(strings.ToLower(t.Name), query) {
				continue
			}
			if !yield(t) {
				return
			}
		}
	}
}

// Track возвращает трек по идентификатору
func (c *Catalog) Track(id string) (data.Track, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i := c.indexLocked(id)
	if i < 0 {
		return data.Track{}, false
	}
	return c.tracks[i], true
}

// Tracks возвращает копию всех треков
func (c *Catalog) Tracks() []data.Track {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.tracks)
}

// Len возвращает количество треков
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tracks)
}

// Snapshot возвращает согласованный снимок каталога
func (c *Catalog) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot{
		Tracks:     slices.Clone(c.tracks),
		Selection:  c.selectionLocked(),
		SearchText: c.searchText,
	}
}

// OnRemove регистрирует обработчик удаления треков
func (c *Catalog) OnRemove(listener RemoveListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, listener)
}

func (c *Catalog) indexLocked(id string) int {
	return slices.IndexFunc(c.tracks, func(t data.Track) bool { return t.ID == id })
}

func (c *Catalog) selectionLocked() []string {
	ids := make([]string, 0, len(c.selection))
	for _, t := range c.tracks {
		if _, ok := c.selection[t.ID]; ok {
			ids = append(ids, t.ID)
		}
	}
	return ids
}
