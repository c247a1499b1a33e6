// Package session реализует сессию воспроизведения: не более одного
// открытого аудиоресурса, команды обрабатываются строго по порядку.
package session

import (
	"context"
	"log"
	"sync"

	"github.com/hazadus/go-playlist/internal/audio"
	"github.com/hazadus/go-playlist/internal/data"
)

type opKind int

const (
	opPlay opKind = iota
	opPause
	opResume
	opToggle
	opStop
	opRelease
	opCompleted
)

// op - команда в очереди обработчика
type op struct {
	kind   opKind
	gen    uint64
	track  data.Track
	id     string
	force  bool // для opRelease: освободить текущий ресурс независимо от его трека
	handle audio.Handle
	future *Future
}

// binding связывает трек с открытым ресурсом
type binding struct {
	track  data.Track
	handle audio.Handle
	gen    uint64
	stop   chan struct{}
}

// Session управляет воспроизведением одного трека за раз
type Session struct {
	backend audio.Backend

	mu    sync.Mutex
	state State
	// active - текущий открытый ресурс; nil в состоянии Idle
	active  *binding
	pending string
	// target - трек, к которому ведут выданные команды; пусто после stop
	target string
	// gen увеличивается командами, которые вытесняют предыдущие play
	gen           uint64
	acquireCancel context.CancelFunc
	queue         []op
	closed        bool
	subs          []*Subscription

	wake       chan struct{}
	ctx        context.Context
	cancel     context.CancelFunc
	workerDone chan struct{}
}

// New создает сессию и запускает обработчик команд
func New(backend audio.Backend) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		backend:    backend,
		state:      Idle,
		wake:       make(chan struct{}, 1),
		ctx:        ctx,
		cancel:     cancel,
		workerDone: make(chan struct{}),
	}
	go s.run()
	return s
}

// Play запускает трек. Повторный play того же трека не открывает ресурс заново,
// а для трека на паузе продолжает воспроизведение.
func (s *Session) Play(track data.Track) *Future {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return resolvedFuture(ErrClosed)
	}

	f := newFuture()
	if track.ID != "" && track.ID == s.target {
		s.enqueueLocked(op{kind: opPlay, gen: s.gen, track: track, future: f})
		return f
	}

	s.supersedeLocked()
	s.target = track.ID
	s.pending = track.ID
	s.enqueueLocked(op{kind: opPlay, gen: s.gen, track: track, future: f})
	return f
}

// Pause ставит воспроизведение на паузу. В Idle и Paused ничего не делает.
func (s *Session) Pause() *Future {
	return s.enqueue(op{kind: opPause})
}

// Resume продолжает воспроизведение. В Idle и Playing ничего не делает.
func (s *Session) Resume() *Future {
	return s.enqueue(op{kind: opResume})
}

// Toggle переключает Playing и Paused
func (s *Session) Toggle() *Future {
	return s.enqueue(op{kind: opToggle})
}

// Stop освобождает ресурс и переводит сессию в Idle
func (s *Session) Stop() *Future {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return resolvedFuture(ErrClosed)
	}
	s.supersedeLocked()
	s.target = ""
	s.pending = ""
	f := newFuture()
	s.enqueueLocked(op{kind: opStop, gen: s.gen, future: f})
	return f
}

// Release останавливает воспроизведение, если оно связано с треком id.
// Вызывается при удалении трека из каталога.
func (s *Session) Release(id string) *Future {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return resolvedFuture(ErrClosed)
	}

	f := newFuture()
	o := op{kind: opRelease, id: id, future: f}
	if id != "" && id == s.target {
		// Отложенный play этого трека больше не нужен,
		// но предыдущий ресурс он бы освободил
		s.supersedeLocked()
		s.target = ""
		s.pending = ""
		o.force = true
	}
	o.gen = s.gen
	s.enqueueLocked(o)
	return f
}

// Snapshot возвращает текущее состояние сессии
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	snap := s.snapshotLocked()
	var h audio.Handle
	if s.active != nil {
		h = s.active.handle
	}
	s.mu.Unlock()

	if h != nil {
		snap.Position = h.Position()
		snap.Duration = h.Duration()
	}
	return snap
}

// State возвращает текущее состояние
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ActiveTrackID возвращает идентификатор играющего трека или пустую строку
func (s *Session) ActiveTrackID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return ""
	}
	return s.active.track.ID
}

// Subscribe подписывает на изменения состояния и ошибки
func (s *Session) Subscribe() *Subscription {
	sub := newSubscription()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		sub.close()
		return sub
	}
	s.subs = append(s.subs, sub)
	return sub
}

// Close останавливает обработчик и освобождает ресурс
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	queued := s.queue
	s.queue = nil
	s.mu.Unlock()

	for _, o := range queued {
		if o.future != nil {
			o.future.resolve(ErrClosed)
		}
	}

	s.cancel()
	s.signal()
	<-s.workerDone

	s.mu.Lock()
	old := s.detachLocked()
	s.target = ""
	s.pending = ""
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()

	s.releaseBinding(old)
	for _, sub := range subs {
		sub.close()
	}
	return nil
}

// supersedeLocked делает устаревшими все ранее выданные play
func (s *Session) supersedeLocked() {
	s.gen++
	if s.acquireCancel != nil {
		s.acquireCancel()
		s.acquireCancel = nil
	}
}

func (s *Session) enqueue(o op) *Future {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return resolvedFuture(ErrClosed)
	}
	o.future = newFuture()
	s.enqueueLocked(o)
	return o.future
}

func (s *Session) enqueueLocked(o op) {
	s.queue = append(s.queue, o)
	s.signal()
}

func (s *Session) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Session) run() {
	defer close(s.workerDone)
	for {
		o, ok := s.next()
		if !ok {
			return
		}
		s.apply(o)
	}
}

func (s *Session) next() (op, bool) {
	for {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return op{}, false
		}
		if len(s.queue) > 0 {
			o := s.queue[0]
			s.queue[0] = op{}
			s.queue = s.queue[1:]
			s.mu.Unlock()
			return o, true
		}
		s.mu.Unlock()
		<-s.wake
	}
}

func (s *Session) apply(o op) {
	var err error
	switch o.kind {
	case opPlay:
		err = s.runPlay(o)
	case opPause:
		err = s.runPause()
	case opResume:
		err = s.runResume()
	case opToggle:
		if s.State() == Playing {
			err = s.runPause()
		} else {
			err = s.runResume()
		}
	case opStop:
		s.runStop(o)
	case opRelease:
		s.runRelease(o)
	case opCompleted:
		s.runCompleted(o)
	}
	if o.future != nil {
		o.future.resolve(err)
	}
}

func (s *Session) runPlay(o op) error {
	s.mu.Lock()
	if o.gen != s.gen {
		s.mu.Unlock()
		return ErrSuperseded
	}
	if s.active != nil && s.active.track.ID == o.track.ID {
		// Возврат к уже открытому треку: загружать нечего
		s.pending = ""
		s.active.gen = o.gen
		paused := s.state == Paused
		s.mu.Unlock()
		if paused {
			return s.runResume()
		}
		s.publish()
		return nil
	}

	// Старый ресурс освобождается полностью до открытия нового
	old := s.detachLocked()
	s.pending = o.track.ID
	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	s.acquireCancel = cancel
	s.mu.Unlock()
	s.releaseBinding(old)
	s.publish()

	log.Printf("Открытие трека %q (%s)", o.track.Name, o.track.SourceRef)
	handle, err := s.backend.Acquire(ctx, o.track.SourceRef)

	s.mu.Lock()
	if o.gen != s.gen || s.closed {
		closed := s.closed
		s.mu.Unlock()
		// Ресурс, открытый для вытесненной команды, освобождается без запуска
		if handle != nil {
			s.releaseHandle(handle)
		}
		if closed {
			return ErrClosed
		}
		return ErrSuperseded
	}
	s.acquireCancel = nil
	if err != nil {
		s.pending = ""
		s.target = ""
		s.mu.Unlock()
		aerr := &AcquireError{TrackID: o.track.ID, Ref: o.track.SourceRef, Err: err}
		s.fail(aerr, "play", o.track.ID)
		return aerr
	}

	// Запуск под блокировкой: новая команда не вытеснит ресурс между проверкой и стартом
	if playErr := handle.Play(); playErr != nil {
		s.pending = ""
		s.target = ""
		s.mu.Unlock()
		s.releaseHandle(handle)
		perr := &PlaybackError{TrackID: o.track.ID, Op: "play", Err: playErr}
		s.fail(perr, "play", o.track.ID)
		return perr
	}

	b := &binding{
		track:  o.track,
		handle: handle,
		gen:    o.gen,
		stop:   make(chan struct{}),
	}
	s.active = b
	s.state = Playing
	s.pending = ""
	s.target = o.track.ID
	s.mu.Unlock()

	go s.watch(b)
	s.publish()
	return nil
}

func (s *Session) runPause() error {
	s.mu.Lock()
	if s.state != Playing || s.active == nil {
		s.mu.Unlock()
		return nil
	}
	b := s.active
	s.mu.Unlock()

	if err := b.handle.Pause(); err != nil {
		return s.abort(b, "pause", err)
	}

	s.mu.Lock()
	if s.active == b {
		s.state = Paused
	}
	s.mu.Unlock()
	s.publish()
	return nil
}

func (s *Session) runResume() error {
	s.mu.Lock()
	if s.state != Paused || s.active == nil {
		s.mu.Unlock()
		return nil
	}
	b := s.active
	s.mu.Unlock()

	if err := b.handle.Play(); err != nil {
		return s.abort(b, "resume", err)
	}

	s.mu.Lock()
	if s.active == b {
		s.state = Playing
	}
	s.mu.Unlock()
	s.publish()
	return nil
}

// abort освобождает ресурс после сбоя воспроизведения и переводит сессию в Idle
func (s *Session) abort(b *binding, opName string, cause error) error {
	s.mu.Lock()
	if s.active == b {
		s.active = nil
		s.state = Idle
		if s.target == b.track.ID {
			s.target = ""
		}
	}
	s.mu.Unlock()
	s.releaseBinding(b)

	perr := &PlaybackError{TrackID: b.track.ID, Op: opName, Err: cause}
	s.fail(perr, opName, b.track.ID)
	return perr
}

func (s *Session) runStop(o op) {
	s.mu.Lock()
	old := s.detachLocked()
	if o.gen == s.gen {
		s.pending = ""
	}
	s.mu.Unlock()

	if old != nil {
		log.Printf("Остановка трека %q", old.track.Name)
	}
	s.releaseBinding(old)
	s.publish()
}

func (s *Session) runRelease(o op) {
	s.mu.Lock()
	if s.active == nil || (!o.force && s.active.track.ID != o.id) {
		s.mu.Unlock()
		return
	}
	old := s.detachLocked()
	if s.target == old.track.ID && s.gen == old.gen {
		s.target = ""
		s.pending = ""
	}
	s.mu.Unlock()

	log.Printf("Трек %q удален, воспроизведение остановлено", old.track.Name)
	s.releaseBinding(old)
	s.publish()
}

// runCompleted обрабатывает естественное завершение как stop
func (s *Session) runCompleted(o op) {
	s.mu.Lock()
	if s.active == nil || s.active.handle != o.handle {
		// Завершение ресурса, который уже не активен
		s.mu.Unlock()
		return
	}
	old := s.detachLocked()
	if s.target == old.track.ID && s.gen == old.gen {
		s.target = ""
		s.pending = ""
	}
	s.mu.Unlock()

	log.Printf("Трек %q доиграл до конца", old.track.Name)
	s.releaseBinding(old)
	s.publish()
}

// watch ждет естественного завершения ресурса
func (s *Session) watch(b *binding) {
	select {
	case <-b.handle.Done():
		s.mu.Lock()
		if !s.closed {
			s.enqueueLocked(op{kind: opCompleted, handle: b.handle})
		}
		s.mu.Unlock()
	case <-b.stop:
	}
}

func (s *Session) detachLocked() *binding {
	b := s.active
	s.active = nil
	s.state = Idle
	return b
}

func (s *Session) releaseBinding(b *binding) {
	if b == nil {
		return
	}
	close(b.stop)
	s.releaseHandle(b.handle)
}

func (s *Session) releaseHandle(h audio.Handle) {
	if err := h.Release(); err != nil {
		log.Printf("Ошибка освобождения аудиоресурса: %v", err)
	}
}

func (s *Session) fail(err error, opName, trackID string) {
	log.Printf("Ошибка %s: %v", opName, err)
	s.publish()

	s.mu.Lock()
	subs := append([]*Subscription(nil), s.subs...)
	s.mu.Unlock()
	for _, sub := range subs {
		sub.sendError(ErrorEvent{Op: opName, TrackID: trackID, Err: err})
	}
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:          s.state,
		PendingTrackID: s.pending,
	}
	if s.active != nil {
		snap.ActiveTrackID = s.active.track.ID
		snap.NowPlaying = NowPlaying{
			Name:   s.active.track.Name,
			Artist: s.active.track.Artist,
		}
	}
	return snap
}

func (s *Session) publish() {
	snap := s.Snapshot()

	s.mu.Lock()
	subs := append([]*Subscription(nil), s.subs...)
	s.mu.Unlock()
	for _, sub := range subs {
		sub.sendChanged(snap)
	}
}
