// Package metadata предоставляет функционал для извлечения метаданных из аудио файлов
package metadata

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"

	"github.com/hazadus/go-playlist/internal/data"
)

// sniffLen - сколько байт читаем для определения типа содержимого
const sniffLen = 512

// TrackMetadata хранит метаданные трека
type TrackMetadata struct {
	Artist string
	Title  string
	Album  string
}

// Extractor извлекает метаданные из аудио файлов
type Extractor struct{}

// NewExtractor создает новый экстрактор метаданных
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractFromReader извлекает метаданные из io.ReadSeeker
func (e *Extractor) ExtractFromReader(reader io.ReadSeeker, source string) TrackMetadata {
	// Сбрасываем reader в начало
	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return e.getDefaultMetadata(source)
	}

	metadata, err := tag.ReadFrom(reader)
	if err != nil {
		return e.getDefaultMetadata(source)
	}

	result := TrackMetadata{
		Artist: strings.TrimSpace(metadata.Artist()),
		Title:  strings.TrimSpace(metadata.Title()),
		Album:  strings.TrimSpace(metadata.Album()),
	}

	// Пустые теги дополняем данными из имени файла
	fallback := e.getDefaultMetadata(source)
	if result.Title == "" {
		result.Title = fallback.Title
	}
	if result.Artist == "" {
		result.Artist = fallback.Artist
	}
	return result
}

// ExtractFromFile извлекает метаданные из файла
func (e *Extractor) ExtractFromFile(filePath string) TrackMetadata {
	file, err := os.Open(filePath)
	if err != nil {
		return e.getDefaultMetadata(filePath)
	}
	defer file.Close()

	return e.ExtractFromReader(file, filePath)
}

// DetectContentType определяет MIME-тип по содержимому.
// После вызова reader снова указывает на начало.
func (e *Extractor) DetectContentType(reader io.ReadSeeker) (string, error) {
	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("ошибка позиционирования: %w", err)
	}
	defer func() { _, _ = reader.Seek(0, io.SeekStart) }()

	// Сначала пробуем распознать контейнер по тегам
	_, fileType, err := tag.Identify(reader)
	if err == nil {
		if contentType := contentTypeForFileType(fileType); contentType != "" {
			return contentType, nil
		}
	}

	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("ошибка позиционирования: %w", err)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(reader, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("ошибка чтения заголовка: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return "application/octet-stream", nil
	}

	// MP3 без ID3 начинается сразу с синхрослова фрейма
	if n >= 2 && head[0] == 0xFF && head[1]&0xE0 == 0xE0 {
		return "audio/mpeg", nil
	}

	contentType := http.DetectContentType(head)
	if contentType == "application/ogg" {
		return "audio/ogg", nil
	}
	return contentType, nil
}

// DetectFileContentType определяет MIME-тип файла
func (e *Extractor) DetectFileContentType(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("ошибка открытия файла: %w", err)
	}
	defer file.Close()

	return e.DetectContentType(file)
}

// IsAudio сообщает, относится ли MIME-тип к аудио
func IsAudio(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "audio/")
}

func contentTypeForFileType(fileType tag.FileType) string {
	switch fileType {
	case tag.MP3:
		return "audio/mpeg"
	case tag.M4A, tag.M4B, tag.M4P, tag.ALAC:
		return "audio/mp4"
	case tag.FLAC:
		return "audio/flac"
	case tag.OGG:
		return "audio/ogg"
	case tag.DSF:
		return "audio/dsf"
	default:
		return ""
	}
}

// getDefaultMetadata возвращает метаданные по умолчанию на основе имени файла
func (e *Extractor) getDefaultMetadata(source string) TrackMetadata {
	fileName := filepath.Base(source)
	nameWithoutExt := strings.TrimSuffix(fileName, filepath.Ext(fileName))

	// Пытаемся разобрать имя файла в формате "Artist - Title"
	parts := strings.Split(nameWithoutExt, " - ")
	if len(parts) >= 2 {
		return TrackMetadata{
			Artist: strings.TrimSpace(parts[0]),
			Title:  strings.TrimSpace(strings.Join(parts[1:], " - ")),
			Album:  "",
		}
	}

	if nameWithoutExt == "" || nameWithoutExt == "." || nameWithoutExt == string(filepath.Separator) {
		nameWithoutExt = data.UntitledTrack
	}

	// Если не удалось разобрать, используем имя файла как название
	return TrackMetadata{
		Artist: data.UnknownArtist,
		Title:  nameWithoutExt,
		Album:  "",
	}
}
