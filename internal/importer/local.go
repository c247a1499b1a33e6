package importer

import (
	"context"
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"

	"github.com/hazadus/go-playlist/internal/metadata"
)

// Local импортирует файлы с локального диска
type Local struct {
	Library  *Library
	Progress ProgressFunc
}

// NewLocal создает импортер локальных файлов
func NewLocal(library *Library) *Local {
	return &Local{Library: library}
}

// Import копирует локальный файл в библиотеку
func (l *Local) Import(ctx context.Context, source string) (Result, error) {
	info, err := os.Stat(source)
	if err != nil {
		return Result{}, fmt.Errorf("файл не найден: %w", err)
	}
	if info.IsDir() {
		return Result{}, fmt.Errorf("ожидался файл, а не каталог: %s", source)
	}

	file, err := os.Open(source)
	if err != nil {
		return Result{}, fmt.Errorf("ошибка открытия файла: %w", err)
	}
	defer file.Close()

	contentType, err := l.Library.extractor.DetectContentType(file)
	if err != nil {
		return Result{}, err
	}
	if !metadata.IsAudio(contentType) {
		// Содержимое не распознано - пробуем по расширению
		if byExt := mime.TypeByExtension(filepath.Ext(source)); metadata.IsAudio(byExt) {
			contentType = byExt
		}
	}
	if !metadata.IsAudio(contentType) {
		return Result{ContentType: contentType}, ErrNotAudio
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	path, size, err := l.Library.store(source, contentType, withProgress(file, info.Size(), l.Progress))
	if err != nil {
		return Result{}, err
	}

	log.Printf("Импортирован файл %s -> %s (%d байт)", source, path, size)
	return l.Library.describe(path, source, contentType, size), nil
}
