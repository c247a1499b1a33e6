// Package profile описывает профиль пользователя, показываемый в заголовке
package profile

import (
	"path/filepath"
	"strings"

	"github.com/hazadus/go-playlist/internal/config"
)

const (
	// GuestName - имя по умолчанию
	GuestName = "Guest"
	// Placeholder показывается вместо аватара
	Placeholder = "👤"
)

// Profile - данные профиля
type Profile struct {
	DisplayName string
	AvatarRef   string
}

// FromConfig собирает профиль из конфигурации
func FromConfig(cfg config.Profile) Profile {
	p := Profile{
		DisplayName: strings.TrimSpace(cfg.DisplayName),
		AvatarRef:   strings.TrimSpace(cfg.Avatar),
	}
	if p.DisplayName == "" {
		p.DisplayName = GuestName
	}
	return p
}

// Avatar возвращает имя файла аватара или заглушку
func (p Profile) Avatar() string {
	if p.AvatarRef == "" {
		return Placeholder
	}
	return "🖼 " + filepath.Base(p.AvatarRef)
}

// Greeting возвращает строку для заголовка
func (p Profile) Greeting() string {
	return p.Avatar() + " " + p.DisplayName
}
