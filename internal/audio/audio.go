// Package audio описывает доступ к декодированным аудиоресурсам
package audio

import (
	"context"
	"errors"
	"time"
)

// ErrReleased возвращается при обращении к уже освобожденному ресурсу
var ErrReleased = errors.New("аудиоресурс уже освобожден")

// Backend открывает аудиоресурсы по локальной ссылке
type Backend interface {
	// Acquire открывает и декодирует ресурс. Возвращенный Handle принадлежит вызывающему.
	Acquire(ctx context.Context, ref string) (Handle, error)
}

// Handle - живой декодированный аудиоресурс, привязанный к одному треку
type Handle interface {
	Play() error
	Pause() error
	// Release останавливает вывод и закрывает файл. Повторный вызов безопасен.
	Release() error
	// Done закрывается, когда трек доиграл до конца
	Done() <-chan struct{}
	Position() time.Duration
	Duration() time.Duration
}
