// Package utils содержит утилитарные функции, используемые в разных частях приложения
package utils

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
)

// FormatDuration форматирует длительность как M:SS или H:MM:SS
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Truncate(time.Second)
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// FormatProgress форматирует позицию воспроизведения вида "1:02 / 3:00"
func FormatProgress(position, duration time.Duration) string {
	return FormatDuration(position) + " / " + FormatDuration(duration)
}

// FormatSize форматирует размер файла в читаемом виде
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "—"
	}
	return humanize.Bytes(uint64(bytes))
}

// TruncateString обрезает строку до указанной ширины в ячейках терминала,
// добавляя "..." если строка длиннее
func TruncateString(s string, maxWidth int) string {
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// PadRight обрезает и дополняет строку пробелами до нужной ширины
func PadRight(s string, width int) string {
	return runewidth.FillRight(TruncateString(s, width), width)
}
