// Package importer превращает внешний источник (файл, URL, объект S3)
// в стабильную локальную ссылку внутри библиотеки.
package importer

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

var (
	// ErrNotAudio - источник не является аудио
	ErrNotAudio = errors.New("источник не является аудиофайлом")
	// ErrUnsupportedSource - для источника не настроен импорт
	ErrUnsupportedSource = errors.New("импорт из этого источника не настроен")
)

// Result - результат импорта
type Result struct {
	Ref         string // Локальный путь к копии в библиотеке
	ContentType string // Заявленный MIME-тип источника
	Title       string
	Artist      string
	Album       string
	Size        int64
}

// Importer импортирует источник и возвращает локальную ссылку.
// При ErrNotAudio Result.ContentType содержит обнаруженный тип.
type Importer interface {
	Import(ctx context.Context, source string) (Result, error)
}

// ProgressFunc вызывается по мере копирования данных.
// total равен -1, если размер заранее неизвестен.
type ProgressFunc func(done, total int64)

// Router выбирает импортер по схеме источника
type Router struct {
	Local Importer
	HTTP  Importer
	S3    Importer
}

// Import передает источник подходящему импортеру
func (r *Router) Import(ctx context.Context, source string) (Result, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return Result{}, fmt.Errorf("пустой источник")
	}

	imp, source := r.route(source)
	if imp == nil {
		return Result{}, fmt.Errorf("%w: %s", ErrUnsupportedSource, source)
	}
	return imp.Import(ctx, source)
}

func (r *Router) route(source string) (Importer, string) {
	u, err := url.Parse(source)
	if err != nil || u.Scheme == "" || isWindowsDrive(u.Scheme) {
		return r.Local, source
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return r.HTTP, source
	case "s3":
		return r.S3, source
	case "file":
		return r.Local, filepath.FromSlash(u.Path)
	default:
		return nil, source
	}
}

func isWindowsDrive(scheme string) bool {
	return len(scheme) == 1
}
