package session

const eventBufferSize = 16

// ErrorEvent отправляется при ошибке воспроизведения
type ErrorEvent struct {
	Op      string // например, "play", "pause"
	TrackID string
	Err     error
}

// Subscription предоставляет каналы событий подписчику
type Subscription struct {
	Changed <-chan Snapshot
	Errors  <-chan ErrorEvent
	Done    <-chan struct{}

	changedCh chan Snapshot
	errorCh   chan ErrorEvent
	doneCh    chan struct{}
}

func newSubscription() *Subscription {
	s := &Subscription{
		changedCh: make(chan Snapshot, eventBufferSize),
		errorCh:   make(chan ErrorEvent, eventBufferSize),
		doneCh:    make(chan struct{}),
	}
	s.Changed = s.changedCh
	s.Errors = s.errorCh
	s.Done = s.doneCh
	return s
}

func (s *Subscription) close() {
	close(s.doneCh)
}

// sendChanged не блокирует: при переполнении выбрасывает самый старый снимок
func (s *Subscription) sendChanged(snap Snapshot) {
	select {
	case s.changedCh <- snap:
		return
	default:
	}
	select {
	case <-s.changedCh:
	default:
	}
	select {
	case s.changedCh <- snap:
	default:
	}
}

func (s *Subscription) sendError(e ErrorEvent) {
	select {
	case s.errorCh <- e:
	default:
		// Буфер полон - пропускаем
	}
}
