package audio

import (
	"context"
	"sync"
	"time"
)

// Mock - тестовый двойник для Backend
type Mock struct {
	mu sync.Mutex

	// IgnoreCancel заставляет заблокированные Acquire ждать Unblock даже после отмены ctx
	IgnoreCancel bool

	failures map[string]error
	gates    map[string]chan struct{}
	calls    []string
	handles  []*MockHandle
	live     int
	maxLive  int
}

// NewMock создает мок бэкенда для тестов
func NewMock() *Mock {
	return &Mock{
		failures: make(map[string]error),
		gates:    make(map[string]chan struct{}),
	}
}

func (m *Mock) Acquire(ctx context.Context, ref string) (Handle, error) {
	m.mu.Lock()
	m.calls = append(m.calls, ref)
	gate := m.gates[ref]
	ignoreCancel := m.IgnoreCancel
	m.mu.Unlock()

	if gate != nil {
		if ignoreCancel {
			<-gate
		} else {
			select {
			case <-gate:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failures[ref]; err != nil {
		return nil, err
	}

	h := &MockHandle{
		mock:     m,
		ref:      ref,
		done:     make(chan struct{}),
		duration: 3 * time.Minute,
	}
	m.handles = append(m.handles, h)
	m.live++
	if m.live > m.maxLive {
		m.maxLive = m.live
	}
	return h, nil
}

// Вспомогательные методы для тестов

// FailAcquire заставляет Acquire(ref) возвращать err
func (m *Mock) FailAcquire(ref string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[ref] = err
}

// Block задерживает Acquire(ref) до вызова Unblock
func (m *Mock) Block(ref string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gates[ref] = make(chan struct{})
}

// Unblock отпускает ожидающие Acquire(ref)
func (m *Mock) Unblock(ref string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gate, ok := m.gates[ref]; ok {
		close(gate)
		delete(m.gates, ref)
	}
}

// AcquireCalls возвращает ссылки, переданные в Acquire, в порядке вызовов
func (m *Mock) AcquireCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// Live возвращает число открытых и еще не освобожденных ресурсов
func (m *Mock) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.live
}

// MaxLive возвращает максимум одновременно живых ресурсов
func (m *Mock) MaxLive() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxLive
}

// Handles возвращает все созданные ресурсы
func (m *Mock) Handles() []*MockHandle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*MockHandle(nil), m.handles...)
}

// LastHandle возвращает последний созданный ресурс или nil
func (m *Mock) LastHandle() *MockHandle {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.handles) == 0 {
		return nil
	}
	return m.handles[len(m.handles)-1]
}

// MockHandle - тестовый двойник для Handle
type MockHandle struct {
	mock *Mock
	ref  string

	mu        sync.Mutex
	playing   bool
	released  bool
	playCalls int
	playErr   error
	pauseErr  error
	position  time.Duration
	duration  time.Duration

	done     chan struct{}
	doneOnce sync.Once
}

func (h *MockHandle) Play() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.playCalls++
	if h.released {
		return ErrReleased
	}
	if h.playErr != nil {
		return h.playErr
	}
	h.playing = true
	return nil
}

func (h *MockHandle) Pause() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return ErrReleased
	}
	if h.pauseErr != nil {
		return h.pauseErr
	}
	h.playing = false
	return nil
}

func (h *MockHandle) Release() error {
	h.mu.Lock()
	if h.released {
		h.mu.Unlock()
		return nil
	}
	h.released = true
	h.playing = false
	h.mu.Unlock()

	h.mock.mu.Lock()
	h.mock.live--
	h.mock.mu.Unlock()
	return nil
}

func (h *MockHandle) Done() <-chan struct{} { return h.done }

func (h *MockHandle) Position() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.position
}

func (h *MockHandle) Duration() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.duration
}

// Ref возвращает ссылку, для которой открыт ресурс
func (h *MockHandle) Ref() string { return h.ref }

// IsPlaying сообщает, идет ли воспроизведение
func (h *MockHandle) IsPlaying() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.playing
}

// PlayCalls возвращает число вызовов Play
func (h *MockHandle) PlayCalls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.playCalls
}

// IsReleased сообщает, был ли вызван Release
func (h *MockHandle) IsReleased() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.released
}

// SetPlayError заставляет последующие Play завершаться ошибкой
func (h *MockHandle) SetPlayError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.playErr = err
}

// SetPauseError заставляет последующие Pause завершаться ошибкой
func (h *MockHandle) SetPauseError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pauseErr = err
}

// SetPosition задает позицию воспроизведения
func (h *MockHandle) SetPosition(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.position = d
}

// Finish имитирует естественное завершение трека
func (h *MockHandle) Finish() {
	h.doneOnce.Do(func() { close(h.done) })
}

// Проверяем реализацию интерфейсов на этапе компиляции
var (
	_ Backend = (*Mock)(nil)
	_ Handle  = (*MockHandle)(nil)
	_ Backend = (*Beep)(nil)
)
