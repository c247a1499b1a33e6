package importer

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	awss3 "github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"

	"github.com/hazadus/go-playlist/internal/s3"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

// mp3Frames возвращает данные, начинающиеся с синхрослова MP3
func mp3Frames() []byte {
	return append([]byte{0xFF, 0xFB, 0x90, 0x64}, make([]byte, 256)...)
}

// id3Frame собирает текстовый фрейм ID3v2.3
func id3Frame(id, text string) []byte {
	body := append([]byte{0}, text...)
	frame := []byte(id)
	frame = binary.BigEndian.AppendUint32(frame, uint32(len(body)))
	frame = append(frame, 0, 0)
	return append(frame, body...)
}

// taggedMP3 возвращает MP3 с тегами названия и исполнителя
func taggedMP3(title, artist string) []byte {
	frames := append(id3Frame("TIT2", title), id3Frame("TPE1", artist)...)
	size := len(frames)
	header := []byte{'I', 'D', '3', 3, 0, 0,
		byte(size >> 21 & 0x7F), byte(size >> 14 & 0x7F), byte(size >> 7 & 0x7F), byte(size & 0x7F)}
	out := append(header, frames...)
	return append(out, mp3Frames()...)
}

func writeFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Ошибка создания тестового файла: %v", err)
	}
	return path
}

func TestLocalImportCopiesIntoLibrary(t *testing.T) {
	srcDir := t.TempDir()
	libDir := filepath.Join(t.TempDir(), "library")
	source := writeFile(t, srcDir, "Daft Punk - Digital Love.mp3", mp3Frames())

	var progressCalls int
	local := NewLocal(NewLibrary(libDir))
	local.Progress = func(done, total int64) { progressCalls++ }

	result, err := local.Import(context.Background(), source)
	if err != nil {
		t.Fatalf("Неожиданная ошибка импорта: %v", err)
	}

	if filepath.Dir(result.Ref) != libDir {
		t.Errorf("Копия должна лежать в библиотеке, получено: %s", result.Ref)
	}
	if filepath.Ext(result.Ref) != ".mp3" {
		t.Errorf("Ожидалось расширение .mp3, получено: %s", result.Ref)
	}
	if result.ContentType != "audio/mpeg" {
		t.Errorf("Ожидался тип audio/mpeg, получено: %s", result.ContentType)
	}
	if result.Size != int64(len(mp3Frames())) {
		t.Errorf("Ожидался размер %d, получено: %d", len(mp3Frames()), result.Size)
	}
	// Без тегов метаданные берутся из имени исходного файла
	if result.Artist != "Daft Punk" || result.Title != "Digital Love" {
		t.Errorf("Неожиданные метаданные: %q - %q", result.Artist, result.Title)
	}
	if progressCalls == 0 {
		t.Error("Ожидались вызовы прогресса")
	}

	copied, err := os.ReadFile(result.Ref)
	if err != nil {
		t.Fatalf("Ошибка чтения копии: %v", err)
	}
	if !bytes.Equal(copied, mp3Frames()) {
		t.Error("Копия отличается от исходного файла")
	}
}

func TestLocalImportReadsTags(t *testing.T) {
	source := writeFile(t, t.TempDir(), "track01.mp3", taggedMP3("Night Drive", "Neon"))

	result, err := NewLocal(NewLibrary(t.TempDir())).Import(context.Background(), source)
	if err != nil {
		t.Fatalf("Неожиданная ошибка импорта: %v", err)
	}
	if result.Title != "Night Drive" {
		t.Errorf("Ожидалось название из тегов, получено: %q", result.Title)
	}
	if result.Artist != "Neon" {
		t.Errorf("Ожидался исполнитель из тегов, получено: %q", result.Artist)
	}
}

func TestLocalImportRejectsNonAudio(t *testing.T) {
	libDir := t.TempDir()
	source := writeFile(t, t.TempDir(), "notes.txt", []byte("just some text"))

	result, err := NewLocal(NewLibrary(libDir)).Import(context.Background(), source)
	if !errors.Is(err, ErrNotAudio) {
		t.Fatalf("Ожидалась ErrNotAudio, получено: %v", err)
	}
	if !strings.HasPrefix(result.ContentType, "text/plain") {
		t.Errorf("Ожидался тип text/plain, получено: %s", result.ContentType)
	}

	entries, _ := os.ReadDir(libDir)
	if len(entries) != 0 {
		t.Errorf("Библиотека должна остаться пустой, файлов: %d", len(entries))
	}
}

func TestLocalImportMissingFile(t *testing.T) {
	_, err := NewLocal(NewLibrary(t.TempDir())).Import(context.Background(), "/non/existent/file.mp3")
	if err == nil {
		t.Fatal("Ожидалась ошибка для несуществующего файла")
	}
	if !strings.Contains(err.Error(), "файл не найден") {
		t.Errorf("Неожиданное сообщение об ошибке: %v", err)
	}
}

func TestLocalImportDirectory(t *testing.T) {
	_, err := NewLocal(NewLibrary(t.TempDir())).Import(context.Background(), t.TempDir())
	if err == nil {
		t.Fatal("Ожидалась ошибка для каталога")
	}
}

func TestHTTPImport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/songs/intro.mp3":
			w.Header().Set("Content-Type", "audio/mpeg")
			w.Write(mp3Frames())
		case "/download":
			w.Header().Set("Content-Type", "application/octet-stream")
			w.Write(mp3Frames())
		case "/page.html":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write([]byte("<html></html>"))
		case "/blob":
			w.Header().Set("Content-Type", "application/octet-stream")
			w.Write([]byte("plain text pretending"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	libDir := t.TempDir()
	importer := NewHTTP(NewLibrary(libDir), 0)

	t.Run("DeclaredAudio", func(t *testing.T) {
		result, err := importer.Import(context.Background(), server.URL+"/songs/intro.mp3")
		if err != nil {
			t.Fatalf("Неожиданная ошибка: %v", err)
		}
		if result.ContentType != "audio/mpeg" {
			t.Errorf("Ожидался тип audio/mpeg, получено: %s", result.ContentType)
		}
		if result.Title != "intro" {
			t.Errorf("Ожидалось название intro, получено: %q", result.Title)
		}
		if filepath.Dir(result.Ref) != libDir {
			t.Errorf("Копия должна лежать в библиотеке, получено: %s", result.Ref)
		}
	})

	t.Run("SniffedAudioGetsExtension", func(t *testing.T) {
		result, err := importer.Import(context.Background(), server.URL+"/download")
		if err != nil {
			t.Fatalf("Неожиданная ошибка: %v", err)
		}
		if result.ContentType != "audio/mpeg" {
			t.Errorf("Ожидался тип audio/mpeg, получено: %s", result.ContentType)
		}
		if filepath.Ext(result.Ref) != ".mp3" {
			t.Errorf("Ожидалось расширение .mp3, получено: %s", result.Ref)
		}
		if _, err := os.Stat(result.Ref); err != nil {
			t.Errorf("Файл должен существовать: %v", err)
		}
	})

	t.Run("DeclaredNonAudio", func(t *testing.T) {
		result, err := importer.Import(context.Background(), server.URL+"/page.html")
		if !errors.Is(err, ErrNotAudio) {
			t.Fatalf("Ожидалась ErrNotAudio, получено: %v", err)
		}
		if !strings.HasPrefix(result.ContentType, "text/html") {
			t.Errorf("Ожидался тип text/html, получено: %s", result.ContentType)
		}
	})

	t.Run("SniffedNonAudioIsRemoved", func(t *testing.T) {
		before, _ := os.ReadDir(libDir)
		_, err := importer.Import(context.Background(), server.URL+"/blob")
		if !errors.Is(err, ErrNotAudio) {
			t.Fatalf("Ожидалась ErrNotAudio, получено: %v", err)
		}
		after, _ := os.ReadDir(libDir)
		if len(after) != len(before) {
			t.Errorf("Отклоненный файл должен быть удален: было %d, стало %d", len(before), len(after))
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := importer.Import(context.Background(), server.URL+"/missing.mp3")
		if err == nil {
			t.Fatal("Ожидалась ошибка для 404")
		}
		if !strings.Contains(err.Error(), "ошибка HTTP") {
			t.Errorf("Неожиданное сообщение об ошибке: %v", err)
		}
	})
}

// mockDownloader отдает заранее заданное содержимое
type mockDownloader struct {
	content []byte
}

func (m *mockDownloader) DownloadWithContext(ctx aws.Context, w io.WriterAt, input *awss3.GetObjectInput, options ...func(*s3manager.Downloader)) (int64, error) {
	n, err := w.WriteAt(m.content, 0)
	return int64(n), err
}

// mockHead возвращает заданный тип содержимого
type mockHead struct {
	contentType string
}

func (m *mockHead) HeadObjectWithContext(ctx aws.Context, input *awss3.HeadObjectInput, opts ...request.Option) (*awss3.HeadObjectOutput, error) {
	return &awss3.HeadObjectOutput{ContentType: aws.String(m.contentType)}, nil
}

func TestS3Import(t *testing.T) {
	libDir := t.TempDir()

	t.Run("Audio", func(t *testing.T) {
		downloader := s3.NewDownloaderWithAPI(&mockDownloader{content: mp3Frames()}, &mockHead{contentType: "audio/mpeg"})
		result, err := NewS3(NewLibrary(libDir), downloader).Import(context.Background(), "s3://music/albums/Artist - Song.mp3")
		if err != nil {
			t.Fatalf("Неожиданная ошибка: %v", err)
		}
		if result.Artist != "Artist" || result.Title != "Song" {
			t.Errorf("Неожиданные метаданные: %q - %q", result.Artist, result.Title)
		}
		if result.Size != int64(len(mp3Frames())) {
			t.Errorf("Неожиданный размер: %d", result.Size)
		}
	})

	t.Run("NonAudio", func(t *testing.T) {
		downloader := s3.NewDownloaderWithAPI(&mockDownloader{}, &mockHead{contentType: "image/png"})
		_, err := NewS3(NewLibrary(libDir), downloader).Import(context.Background(), "s3://music/cover.png")
		if !errors.Is(err, ErrNotAudio) {
			t.Fatalf("Ожидалась ErrNotAudio, получено: %v", err)
		}
	})

	t.Run("BadURL", func(t *testing.T) {
		downloader := s3.NewDownloaderWithAPI(&mockDownloader{}, &mockHead{})
		_, err := NewS3(NewLibrary(libDir), downloader).Import(context.Background(), "s3://music")
		if err == nil {
			t.Fatal("Ожидалась ошибка для ссылки без ключа")
		}
	})
}

// recordingImporter запоминает, какой источник ему передали
type recordingImporter struct {
	got string
}

func (r *recordingImporter) Import(ctx context.Context, source string) (Result, error) {
	r.got = source
	return Result{Ref: source}, nil
}

func TestRouter(t *testing.T) {
	tests := []struct {
		source string
		want   string
		expect string
	}{
		{"/music/song.mp3", "local", "/music/song.mp3"},
		{"song.mp3", "local", "song.mp3"},
		{"file:///music/song.mp3", "local", "/music/song.mp3"},
		{"http://example.com/a.mp3", "http", "http://example.com/a.mp3"},
		{"https://example.com/a.mp3", "http", "https://example.com/a.mp3"},
		{"s3://bucket/a.mp3", "s3", "s3://bucket/a.mp3"},
	}

	for _, tt := range tests {
		local, httpImp, s3Imp := &recordingImporter{}, &recordingImporter{}, &recordingImporter{}
		router := &Router{Local: local, HTTP: httpImp, S3: s3Imp}

		if _, err := router.Import(context.Background(), tt.source); err != nil {
			t.Fatalf("Неожиданная ошибка для %q: %v", tt.source, err)
		}

		got := map[string]string{"local": local.got, "http": httpImp.got, "s3": s3Imp.got}[tt.want]
		if got != tt.expect {
			t.Errorf("Router(%q): импортер %s получил %q, ожидалось %q", tt.source, tt.want, got, tt.expect)
		}
	}
}

func TestRouterUnsupported(t *testing.T) {
	router := &Router{Local: &recordingImporter{}}

	if _, err := router.Import(context.Background(), "s3://bucket/a.mp3"); !errors.Is(err, ErrUnsupportedSource) {
		t.Errorf("Ожидалась ErrUnsupportedSource без S3, получено: %v", err)
	}
	if _, err := router.Import(context.Background(), "ftp://host/a.mp3"); !errors.Is(err, ErrUnsupportedSource) {
		t.Errorf("Ожидалась ErrUnsupportedSource для ftp, получено: %v", err)
	}
	if _, err := router.Import(context.Background(), "   "); err == nil {
		t.Error("Ожидалась ошибка для пустого источника")
	}
}

func TestExtensionFor(t *testing.T) {
	cases := map[string]string{
		"audio/mpeg":                ".mp3",
		"audio/wave":                ".wav",
		"audio/flac":                ".flac",
		"audio/ogg":                 ".ogg",
		"audio/mpeg; charset=utf-8": ".mp3",
		"text/plain":                "",
	}
	for ct, want := range cases {
		if got := extensionFor(ct); got != want {
			t.Errorf("extensionFor(%q) = %q, ожидалось %q", ct, got, want)
		}
	}
}
