// Package errmsg формирует сообщения об ошибках для пользователя
package errmsg

import (
	"errors"
	"fmt"

	"github.com/hazadus/go-playlist/internal/catalog"
	"github.com/hazadus/go-playlist/internal/importer"
	"github.com/hazadus/go-playlist/internal/session"
)

// Op - операция, которая может завершиться ошибкой
type Op string

// Операции, сгруппированные по области
const (
	// Каталог
	OpTrackAdd    Op = "добавить трек"
	OpTrackRemove Op = "удалить трек"
	OpTrackRename Op = "переименовать трек"
	OpTrackEdit   Op = "начать редактирование"

	// Воспроизведение
	OpPlaybackStart  Op = "начать воспроизведение"
	OpPlaybackPause  Op = "поставить на паузу"
	OpPlaybackResume Op = "продолжить воспроизведение"
	OpPlaybackStop   Op = "остановить воспроизведение"

	// Инициализация
	OpConfigLoad Op = "загрузить конфигурацию"
	OpInitialize Op = "инициализировать приложение"
)

// Format формирует понятное пользователю сообщение
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Не удалось %s: %s", op, Describe(err))
}

// FormatWith добавляет к сообщению контекст, например название трека
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Не удалось %s '%s': %s", op, context, Describe(err))
}

// Describe возвращает короткое описание известных ошибок
func Describe(err error) string {
	var invalid *catalog.InvalidSourceError
	var notFound *catalog.NotFoundError
	var acquire *session.AcquireError
	var playback *session.PlaybackError

	switch {
	case errors.Is(err, importer.ErrNotAudio):
		if errors.As(err, &invalid) && invalid.ContentType != "" {
			return fmt.Sprintf("это не аудиофайл (%s)", invalid.ContentType)
		}
		return "это не аудиофайл"
	case errors.As(err, &invalid):
		return invalid.Err.Error()
	case errors.As(err, &notFound):
		return "трек уже удален"
	case errors.Is(err, catalog.ErrEmptyName):
		return "название не может быть пустым"
	case errors.As(err, &acquire):
		return fmt.Sprintf("файл не открывается: %v", acquire.Err)
	case errors.As(err, &playback):
		return fmt.Sprintf("сбой звука: %v", playback.Err)
	default:
		return err.Error()
	}
}
