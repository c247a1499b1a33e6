package importer

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/hazadus/go-playlist/internal/data"
	"github.com/hazadus/go-playlist/internal/metadata"
)

// Library - каталог, куда складываются импортированные файлы
type Library struct {
	Dir       string
	extractor *metadata.Extractor
}

// NewLibrary создает библиотеку в указанном каталоге
func NewLibrary(dir string) *Library {
	return &Library{
		Dir:       dir,
		extractor: metadata.NewExtractor(),
	}
}

// create создает новый уникальный файл для источника name
func (l *Library) create(name, contentType string) (*os.File, error) {
	if err := os.MkdirAll(l.Dir, 0755); err != nil {
		return nil, fmt.Errorf("ошибка создания каталога библиотеки: %w", err)
	}

	base := filepath.Base(name)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if ext == "" {
		ext = extensionFor(contentType)
	}
	if stem == "" || stem == "." || stem == string(filepath.Separator) {
		stem = "track"
	}

	// Короткий суффикс из идентификатора исключает совпадения имен
	fileName := fmt.Sprintf("%s-%s%s", stem, data.NewID()[:8], ext)
	file, err := os.OpenFile(filepath.Join(l.Dir, fileName), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания файла в библиотеке: %w", err)
	}
	return file, nil
}

// store копирует reader в новый файл библиотеки
func (l *Library) store(name, contentType string, reader io.Reader) (string, int64, error) {
	file, err := l.create(name, contentType)
	if err != nil {
		return "", 0, err
	}

	n, copyErr := io.Copy(file, reader)
	closeErr := file.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(file.Name())
		if copyErr != nil {
			return "", 0, fmt.Errorf("ошибка копирования: %w", copyErr)
		}
		return "", 0, fmt.Errorf("ошибка записи файла: %w", closeErr)
	}
	return file.Name(), n, nil
}

// describe собирает результат импорта по уже сохраненному файлу.
// Метаданные по умолчанию берутся из имени исходного источника.
func (l *Library) describe(path, source, contentType string, size int64) Result {
	result := Result{
		Ref:         path,
		ContentType: contentType,
		Size:        size,
	}

	file, err := os.Open(path)
	if err != nil {
		log.Printf("Не удалось прочитать метаданные %s: %v", path, err)
		return result
	}
	defer file.Close()

	meta := l.extractor.ExtractFromReader(file, source)
	result.Title = meta.Title
	result.Artist = meta.Artist
	result.Album = meta.Album
	return result
}

// ensureExtension добавляет расширение по MIME-типу, если его нет.
// Декодер выбирается по расширению.
func (l *Library) ensureExtension(path, contentType string) string {
	if filepath.Ext(path) != "" {
		return path
	}
	ext := extensionFor(contentType)
	if ext == "" {
		return path
	}
	renamed := path + ext
	if err := os.Rename(path, renamed); err != nil {
		log.Printf("Не удалось переименовать %s: %v", path, err)
		return path
	}
	return renamed
}

// discard удаляет файл, не прошедший проверку
func discard(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("Не удалось удалить файл %s: %v", path, err)
	}
}

// extensionFor подбирает расширение для MIME-типа
func extensionFor(contentType string) string {
	ct := strings.ToLower(contentType)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	switch strings.TrimSpace(ct) {
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/wav", "audio/wave", "audio/x-wav", "audio/vnd.wave":
		return ".wav"
	case "audio/flac", "audio/x-flac":
		return ".flac"
	case "audio/ogg", "audio/vorbis":
		return ".ogg"
	case "audio/mp4", "audio/m4a", "audio/x-m4a":
		return ".m4a"
	default:
		return ""
	}
}

// isGeneric сообщает, что тип ничего не говорит о содержимом
func isGeneric(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	return ct == "" || strings.HasPrefix(ct, "application/octet-stream") || strings.HasPrefix(ct, "binary/octet-stream")
}

// ProgressReader структура для отслеживания прогресса чтения
type ProgressReader struct {
	io.Reader
	Size       int64
	OnProgress ProgressFunc
	bytesRead  int64
}

func (pr *ProgressReader) Read(p []byte) (n int, err error) {
	n, err = pr.Reader.Read(p)
	pr.bytesRead += int64(n)
	if pr.OnProgress != nil {
		pr.OnProgress(pr.bytesRead, pr.Size)
	}
	return n, err
}

func withProgress(reader io.Reader, size int64, progress ProgressFunc) io.Reader {
	if progress == nil {
		return reader
	}
	return &ProgressReader{Reader: reader, Size: size, OnProgress: progress}
}
