package session

import (
	"errors"
	"fmt"
)

var (
	// ErrSuperseded - команда вытеснена более поздней командой play/stop
	ErrSuperseded = errors.New("команда вытеснена более поздней")
	// ErrClosed - сессия уже закрыта
	ErrClosed = errors.New("сессия воспроизведения закрыта")
)

// AcquireError - не удалось открыть или декодировать аудиоресурс
type AcquireError struct {
	TrackID string
	Ref     string
	Err     error
}

func (e *AcquireError) Error() string {
	return fmt.Sprintf("не удалось открыть аудио %q: %v", e.Ref, e.Err)
}

func (e *AcquireError) Unwrap() error {
	return e.Err
}

// PlaybackError - сбой во время активного воспроизведения
type PlaybackError struct {
	TrackID string
	Op      string
	Err     error
}

func (e *PlaybackError) Error() string {
	return fmt.Sprintf("ошибка воспроизведения (%s): %v", e.Op, e.Err)
}

func (e *PlaybackError) Unwrap() error {
	return e.Err
}
