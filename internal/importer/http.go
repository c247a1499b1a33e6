package importer

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/hazadus/go-playlist/internal/metadata"
)

// HTTP скачивает треки по ссылкам http(s):// в библиотеку.
// Воспроизводится всегда локальная копия.
type HTTP struct {
	Library  *Library
	Client   *http.Client
	Progress ProgressFunc
}

// NewHTTP создает импортер с настроенным транспортом
func NewHTTP(library *Library, timeout time.Duration) *HTTP {
	client := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			// Таймаут для TLS handshake
			TLSHandshakeTimeout: 10 * time.Second,
			// Таймаут ожидания заголовков ответа
			ResponseHeaderTimeout: 30 * time.Second,
			IdleConnTimeout:       90 * time.Second,
			MaxIdleConns:          10,
			MaxIdleConnsPerHost:   2,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
	return &HTTP{Library: library, Client: client}
}

// Import скачивает файл и сохраняет его в библиотеку
func (h *HTTP) Import(ctx context.Context, source string) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return Result{}, fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Accept-Encoding", "identity")
	req.Header.Set("User-Agent", "go-playlist/1.0")

	resp, err := h.Client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("ошибка HTTP: %s", resp.Status)
	}

	declared := resp.Header.Get("Content-Type")
	if !isGeneric(declared) && !metadata.IsAudio(declared) {
		return Result{ContentType: declared}, ErrNotAudio
	}

	name := fileNameFromURL(source)
	ref, size, err := h.Library.store(name, declared, withProgress(resp.Body, resp.ContentLength, h.Progress))
	if err != nil {
		return Result{}, err
	}

	contentType := declared
	if isGeneric(contentType) {
		// Сервер не назвал тип - определяем по содержимому
		contentType, err = h.Library.extractor.DetectFileContentType(ref)
		if err != nil || !metadata.IsAudio(contentType) {
			discard(ref)
			return Result{ContentType: contentType}, ErrNotAudio
		}
	}
	ref = h.Library.ensureExtension(ref, contentType)

	log.Printf("Скачан трек %s -> %s (%d байт)", source, ref, size)
	return h.Library.describe(ref, name, contentType, size), nil
}

// fileNameFromURL возвращает последний сегмент пути ссылки
func fileNameFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Path == "" || u.Path == "/" {
		return "track"
	}
	return path.Base(u.Path)
}
