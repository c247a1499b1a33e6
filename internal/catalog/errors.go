package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyName - новое название трека пустое
	ErrEmptyName = errors.New("название трека не может быть пустым")
	// ErrNoDraft - нет активного черновика редактирования
	ErrNoDraft = errors.New("нет активного редактирования")
)

// InvalidSourceError - источник не удалось импортировать или он не является аудио
type InvalidSourceError struct {
	Source      string
	ContentType string
	Err         error
}

func (e *InvalidSourceError) Error() string {
	if e.ContentType != "" {
		return fmt.Sprintf("недопустимый источник %q (%s): %v", e.Source, e.ContentType, e.Err)
	}
	return fmt.Sprintf("недопустимый источник %q: %v", e.Source, e.Err)
}

func (e *InvalidSourceError) Unwrap() error {
	return e.Err
}

// NotFoundError - трека с таким идентификатором нет в каталоге
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("трек %s не найден", e.ID)
}
