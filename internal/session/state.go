package session

import "time"

// State представляет состояние сессии воспроизведения.
//
//	┌──────────┐      play       ┌──────────┐
//	│   Idle   │ ───────────────▶│  Playing │◀─┐ play(другой трек)
//	└──────────┘                 └──────────┘──┘
//	     ▲                        │ ▲     │
//	     │ stop / завершение      │ │     │ pause
//	     │ / удаление трека       │ │     ▼
//	     │                        │ │ resume
//	     │                        │ ┌──────────┐
//	     └────────────────────────┴─│  Paused  │
//	                                └──────────┘
//
// Pause и Resume в состоянии Idle ничего не делают.
type State int

const (
	Idle State = iota
	Playing
	Paused
)

// String возвращает название состояния
func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// IsActive возвращает true, если ресурс удерживается (Playing или Paused)
func (s State) IsActive() bool {
	return s == Playing || s == Paused
}

// CanPause возвращает true, если из состояния можно поставить на паузу
func (s State) CanPause() bool {
	return s == Playing
}

// CanResume возвращает true, если из состояния можно продолжить
func (s State) CanResume() bool {
	return s == Paused
}

// NowPlaying - то, что показывается в панели "Сейчас играет"
type NowPlaying struct {
	Name   string
	Artist string
}

// Snapshot - неизменяемый снимок состояния сессии
type Snapshot struct {
	State         State
	ActiveTrackID string
	NowPlaying    NowPlaying
	// PendingTrackID - трек, ресурс которого сейчас открывается
	PendingTrackID string
	Position       time.Duration
	Duration       time.Duration
}

// IsPending сообщает, ожидается ли открытие ресурса
func (s Snapshot) IsPending() bool {
	return s.PendingTrackID != ""
}
