package main

import (
	"bytes"
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hazadus/go-playlist/internal/audio"
	"github.com/hazadus/go-playlist/internal/config"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

// createTestApplication создает приложение с библиотекой во временном каталоге
func createTestApplication(t *testing.T, tempDir string) (*Application, *audio.Mock) {
	t.Helper()

	cfg := config.Default()
	cfg.LibraryDir = filepath.Join(tempDir, "library")
	cfg.LogFile = filepath.Join(tempDir, "playlist.log")

	backend := audio.NewMock()
	app, err := NewApplication(cfg, backend)
	if err != nil {
		t.Fatalf("Ошибка создания приложения: %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })
	return app, backend
}

// writeMP3 создает файл, начинающийся с синхрослова MP3
func writeMP3(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	content := append([]byte{0xFF, 0xFB, 0x90, 0x64}, make([]byte, 256)...)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Ошибка создания тестового файла: %v", err)
	}
	return path
}

// TestCmdProbe проверяет, что команда `probe` выводит метаданные и не оставляет копию
func TestCmdProbe(t *testing.T) {
	tempDir := t.TempDir()
	app, _ := createTestApplication(t, tempDir)
	source := writeMP3(t, tempDir, "Test Artist - Test Title.mp3")

	var buf bytes.Buffer
	probeCmd := app.createProbeCommand(context.Background())
	probeCmd.SetOut(&buf)
	probeCmd.SetErr(&buf)
	probeCmd.SetArgs([]string{source})

	if err := probeCmd.Execute(); err != nil {
		t.Fatalf("Ошибка выполнения команды probe: %v", err)
	}

	output := buf.String()
	expectedStrings := []string{
		"🔎 Источник:",
		"Исполнитель: Test Artist",
		"Название: Test Title",
		"Тип содержимого: audio/mpeg",
	}
	for _, expected := range expectedStrings {
		if !strings.Contains(output, expected) {
			t.Errorf("Вывод команды probe не содержит ожидаемую строку '%s': %s", expected, output)
		}
	}

	entries, _ := os.ReadDir(app.Config.LibraryDir)
	if len(entries) != 0 {
		t.Errorf("Копия после probe должна быть удалена, файлов: %d", len(entries))
	}
	if app.Manager.Catalog().Len() != 0 {
		t.Error("Команда probe не должна добавлять треки в каталог")
	}
}

// TestCmdProbeNotAudio проверяет отказ для не-аудио файла
func TestCmdProbeNotAudio(t *testing.T) {
	tempDir := t.TempDir()
	app, _ := createTestApplication(t, tempDir)

	source := filepath.Join(tempDir, "notes.txt")
	if err := os.WriteFile(source, []byte("just some text"), 0644); err != nil {
		t.Fatalf("Ошибка создания тестового файла: %v", err)
	}

	var buf bytes.Buffer
	err := app.probe(context.Background(), &buf, source)
	if err == nil {
		t.Fatal("Ожидалась ошибка для текстового файла")
	}
	if !strings.Contains(err.Error(), "это не аудиофайл") {
		t.Errorf("Неожиданное сообщение об ошибке: %v", err)
	}
	if !strings.Contains(buf.String(), "text/plain") {
		t.Errorf("Ожидался вывод типа содержимого: %s", buf.String())
	}
}

// TestCmdPlay проверяет воспроизведение до конца трека
func TestCmdPlay(t *testing.T) {
	tempDir := t.TempDir()
	app, backend := createTestApplication(t, tempDir)
	source := writeMP3(t, tempDir, "Test Artist - Test Title.mp3")

	var buf bytes.Buffer
	done := make(chan error, 1)
	go func() {
		done <- app.play(context.Background(), &buf, source)
	}()

	// Дожидаемся начала воспроизведения и завершаем трек
	deadline := time.Now().Add(2 * time.Second)
	for {
		if h := backend.LastHandle(); h != nil && h.IsPlaying() {
			h.Finish()
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Воспроизведение не началось")
		}
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Ошибка воспроизведения: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Команда play не завершилась после окончания трека")
	}

	output := buf.String()
	for _, expected := range []string{"🎵 Сейчас играет:", "Test Title", "✅ Воспроизведение завершено"} {
		if !strings.Contains(output, expected) {
			t.Errorf("Вывод команды play не содержит '%s': %s", expected, output)
		}
	}

	assertLibraryEmpty(t, app)
}

// assertLibraryEmpty проверяет, что после команды в библиотеке не осталось копий
func assertLibraryEmpty(t *testing.T, app *Application) {
	t.Helper()
	entries, _ := os.ReadDir(app.Config.LibraryDir)
	if len(entries) != 0 {
		t.Errorf("Копия после play должна быть удалена, файлов: %d", len(entries))
	}
	if app.Manager.Catalog().Len() != 0 {
		t.Errorf("После play каталог должен быть пуст, треков: %d", app.Manager.Catalog().Len())
	}
}

// TestCmdPlayCancelled проверяет остановку по отмене контекста
func TestCmdPlayCancelled(t *testing.T) {
	tempDir := t.TempDir()
	app, backend := createTestApplication(t, tempDir)
	source := writeMP3(t, tempDir, "song.mp3")

	ctx, cancel := context.WithCancel(context.Background())
	var buf bytes.Buffer
	done := make(chan error, 1)
	go func() {
		done <- app.play(ctx, &buf, source)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		if h := backend.LastHandle(); h != nil && h.IsPlaying() {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Воспроизведение не началось")
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Неожиданная ошибка: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Команда play не завершилась после отмены")
	}
	if !strings.Contains(buf.String(), "🚫 Воспроизведение прервано") {
		t.Errorf("Ожидалось сообщение об отмене: %s", buf.String())
	}

	assertLibraryEmpty(t, app)
}

// TestCmdPlayInvalidArgs проверяет обработку неверных аргументов в команде play
func TestCmdPlayInvalidArgs(t *testing.T) {
	app, _ := createTestApplication(t, t.TempDir())

	playCmd := app.createPlayCommand(context.Background())

	var buf bytes.Buffer
	playCmd.SetOut(&buf)
	playCmd.SetErr(&buf)
	playCmd.SetArgs([]string{})

	if err := playCmd.Execute(); err == nil {
		t.Error("Ожидалась ошибка при выполнении команды play без аргументов")
	}

	output := buf.String()
	if !strings.Contains(output, "accepts 1 arg") {
		t.Errorf("Команда play не отобразила ошибку о неверных аргументах: %s", output)
	}
}

// TestRootCommand проверяет набор подкоманд
func TestRootCommand(t *testing.T) {
	app, _ := createTestApplication(t, t.TempDir())
	rootCmd := app.createRootCommand(context.Background())

	for _, name := range []string{"tui", "probe", "play"} {
		if cmd, _, err := rootCmd.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("Подкоманда %s не найдена", name)
		}
	}
}

// TestNewApplicationS3 проверяет, что импорт из S3 включается только с ключами
func TestNewApplicationS3(t *testing.T) {
	app, _ := createTestApplication(t, t.TempDir())
	if app.Importer.S3 != nil {
		t.Error("Импорт из S3 не должен быть настроен без ключей")
	}

	cfg := config.Default()
	cfg.LibraryDir = t.TempDir()
	cfg.S3.AccessKey = "key"
	cfg.S3.SecretKey = "secret"
	cfg.S3.Endpoint = "http://localhost:9000"

	withS3, err := NewApplication(cfg, audio.NewMock())
	if err != nil {
		t.Fatalf("Ошибка создания приложения: %v", err)
	}
	defer withS3.Close()
	if withS3.Importer.S3 == nil {
		t.Error("Ожидался импорт из S3 при заданных ключах")
	}
	if withS3.Profile.DisplayName == "" {
		t.Error("Ожидалось имя профиля по умолчанию")
	}
}
