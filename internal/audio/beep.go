package audio

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/flac"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"
)

// resampleQuality - качество передискретизации при несовпадении частот
const resampleQuality = 4

// Beep открывает локальные файлы через gopxl/beep и выводит их в speaker
type Beep struct {
	mutex         sync.Mutex
	isInitialized bool
	sampleRate    beep.SampleRate
}

// NewBeep создает новый экземпляр бэкенда
func NewBeep() *Beep {
	return &Beep{}
}

// Acquire открывает файл, декодирует его и готовит к воспроизведению
func (b *Beep) Acquire(ctx context.Context, ref string) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	decoded, err := Decode(ref)
	if err != nil {
		return nil, err
	}

	// Вызывающий мог передумать, пока мы декодировали
	if err := ctx.Err(); err != nil {
		decoded.Close()
		return nil, err
	}

	speakerRate, err := b.initSpeaker(decoded.Format)
	if err != nil {
		decoded.Close()
		return nil, err
	}

	ctrl := &beep.Ctrl{Streamer: decoded.Streamer, Paused: false}

	var out beep.Streamer = ctrl
	if decoded.Format.SampleRate != speakerRate {
		out = beep.Resample(resampleQuality, decoded.Format.SampleRate, speakerRate, ctrl)
	}

	log.Printf("audio: открыт %s (%d Гц)", ref, decoded.Format.SampleRate)

	return &beepHandle{
		decoded: decoded,
		ctrl:    ctrl,
		out:     out,
		done:    make(chan struct{}),
	}, nil
}

// initSpeaker инициализирует speaker (только один раз)
func (b *Beep) initSpeaker(format beep.Format) (beep.SampleRate, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.isInitialized {
		return b.sampleRate, nil
	}

	err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/5))
	if err != nil {
		return 0, fmt.Errorf("ошибка инициализации динамиков: %w", err)
	}
	b.isInitialized = true
	b.sampleRate = format.SampleRate
	return b.sampleRate, nil
}

// Decoded - открытый файл вместе с декодером
type Decoded struct {
	Streamer beep.StreamSeekCloser
	Format   beep.Format
	file     *os.File
}

// Duration возвращает полную длительность записи
func (d *Decoded) Duration() time.Duration {
	return d.Format.SampleRate.D(d.Streamer.Len())
}

// Close закрывает декодер и файл
func (d *Decoded) Close() {
	if d.Streamer != nil {
		d.Streamer.Close()
	}
	if d.file != nil {
		// Декодер мог уже закрыть файл сам
		_ = d.file.Close()
	}
}

// Decode открывает файл и подбирает декодер по расширению
func Decode(path string) (*Decoded, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !IsSupported(path) {
		return nil, fmt.Errorf("неподдерживаемый формат: %q", ext)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла: %w", err)
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch ext {
	case ".mp3":
		streamer, format, err = mp3.Decode(file)
	case ".wav":
		streamer, format, err = wav.Decode(file)
	case ".flac":
		streamer, format, err = flac.Decode(file)
	case ".ogg", ".oga":
		streamer, format, err = vorbis.Decode(file)
	}
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("ошибка декодирования %s: %w", strings.TrimPrefix(ext, "."), err)
	}

	return &Decoded{Streamer: streamer, Format: format, file: file}, nil
}

// IsSupported сообщает, умеет ли бэкенд декодировать файл
func IsSupported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3", ".wav", ".flac", ".ogg", ".oga":
		return true
	default:
		return false
	}
}

// beepHandle - ресурс, воспроизводимый через speaker
type beepHandle struct {
	mutex    sync.Mutex
	decoded  *Decoded
	ctrl     *beep.Ctrl
	out      beep.Streamer
	started  bool
	released bool

	done     chan struct{}
	doneOnce sync.Once
}

func (h *beepHandle) Play() error {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.released {
		return ErrReleased
	}

	if !h.started {
		h.started = true
		speaker.Play(beep.Seq(h.out, beep.Callback(h.finish)))
		return nil
	}

	speaker.Lock()
	h.ctrl.Paused = false
	speaker.Unlock()
	return nil
}

func (h *beepHandle) Pause() error {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.released {
		return ErrReleased
	}

	speaker.Lock()
	h.ctrl.Paused = true
	speaker.Unlock()
	return nil
}

func (h *beepHandle) Release() error {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.released {
		return nil
	}
	h.released = true

	// В системе одновременно живет не больше одного ресурса
	if h.started {
		speaker.Clear()
	}
	h.decoded.Close()
	return nil
}

func (h *beepHandle) Done() <-chan struct{} {
	return h.done
}

func (h *beepHandle) Position() time.Duration {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.released {
		return 0
	}
	speaker.Lock()
	defer speaker.Unlock()
	return h.decoded.Format.SampleRate.D(h.decoded.Streamer.Position())
}

func (h *beepHandle) Duration() time.Duration {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.released {
		return 0
	}
	speaker.Lock()
	defer speaker.Unlock()
	return h.decoded.Duration()
}

// finish вызывается из горутины speaker, когда поток закончился
func (h *beepHandle) finish() {
	h.doneOnce.Do(func() {
		close(h.done)
	})
}
