// Package data содержит описание записей треков плейлиста
package data

import (
	"time"

	"github.com/google/uuid"
)

const (
	// UnknownArtist подставляется, когда исполнитель не указан
	UnknownArtist = "Unknown Artist"
	// UntitledTrack подставляется, когда название не удалось определить
	UntitledTrack = "Untitled"
)

// Track представляет один трек плейлиста
type Track struct {
	ID          string    // Уникальный идентификатор, не меняется за время жизни трека
	Name        string    // Отображаемое название
	Artist      string    // Исполнитель
	SourceRef   string    // Локальная ссылка на аудиофайл
	ContentType string    // Заявленный MIME-тип источника
	Album       string    // Альбом из тегов, если был
	Size        int64     // Размер файла в байтах
	AddedAt     time.Time // Момент добавления в плейлист
}

// NewTrack создает трек с новым идентификатором
func NewTrack(name, artist, sourceRef string) Track {
	if artist == "" {
		artist = UnknownArtist
	}
	if name == "" {
		name = UntitledTrack
	}
	return Track{
		ID:        NewID(),
		Name:      name,
		Artist:    artist,
		SourceRef: sourceRef,
		AddedAt:   time.Now(),
	}
}

// NewID генерирует новый идентификатор трека
func NewID() string {
	return uuid.New().String()
}

// Title возвращает строку вида "Исполнитель - Название"
func (t Track) Title() string {
	return t.Artist + " - " + t.Name
}
