package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hazadus/go-playlist/internal/audio"
	"github.com/hazadus/go-playlist/internal/catalog"
	"github.com/hazadus/go-playlist/internal/config"
	"github.com/hazadus/go-playlist/internal/errmsg"
	"github.com/hazadus/go-playlist/internal/importer"
	"github.com/hazadus/go-playlist/internal/profile"
	"github.com/hazadus/go-playlist/internal/s3"
	"github.com/hazadus/go-playlist/internal/session"
	"github.com/hazadus/go-playlist/internal/track"
)

// Application содержит все зависимости приложения
type Application struct {
	Config   *config.Config
	Importer *importer.Router
	Manager  *track.Manager
	Profile  profile.Profile

	local *importer.Local
	http  *importer.HTTP
}

// NewApplication собирает приложение поверх указанного аудио-бэкенда
func NewApplication(cfg *config.Config, backend audio.Backend) (*Application, error) {
	library := importer.NewLibrary(cfg.LibraryDir)
	local := importer.NewLocal(library)
	httpImporter := importer.NewHTTP(library, cfg.HTTPTimeout)

	router := &importer.Router{Local: local, HTTP: httpImporter}

	// s3:// ссылки доступны, только если заданы ключи
	if cfg.S3Enabled() {
		downloader, err := s3.NewDownloader(&s3.Config{
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Endpoint:  cfg.S3.Endpoint,
		})
		if err != nil {
			return nil, fmt.Errorf("ошибка создания S3 downloader: %w", err)
		}
		router.S3 = importer.NewS3(library, downloader)
	}

	manager := track.NewManager(catalog.New(router), session.New(backend))

	return &Application{
		Config:   cfg,
		Importer: router,
		Manager:  manager,
		Profile:  profile.FromConfig(cfg.Profile),
		local:    local,
		http:     httpImporter,
	}, nil
}

// SetProgress задает вывод прогресса копирования для импортеров
func (app *Application) SetProgress(progress importer.ProgressFunc) {
	app.local.Progress = progress
	app.http.Progress = progress
}

// Close останавливает воспроизведение
func (app *Application) Close() error {
	return app.Manager.Close()
}

// setupLogging направляет стандартный логгер в файл, чтобы не портить экран TUI
func setupLogging(path string) (io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("ошибка создания каталога для логов: %w", err)
	}
	file, err := tea.LogToFile(path, "playlist")
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия лог-файла: %w", err)
	}
	return file, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Загружаем конфигурацию
	cfg, err := config.LoadConfig(config.DefaultPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, errmsg.Format(errmsg.OpConfigLoad, err))
		os.Exit(1)
	}

	logFile, err := setupLogging(cfg.LogFile)
	if err != nil {
		log.SetOutput(io.Discard)
	} else {
		defer logFile.Close()
	}

	app, err := NewApplication(cfg, audio.NewBeep())
	if err != nil {
		fmt.Fprintln(os.Stderr, errmsg.Format(errmsg.OpInitialize, err))
		os.Exit(1)
	}

	err = app.createRootCommand(ctx).Execute()
	_ = app.Close()
	if err != nil {
		os.Exit(1)
	}
}
