package utils

import (
	"testing"
	"time"

	"github.com/mattn/go-runewidth"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		duration time.Duration
		expected string
	}{
		{0, "0:00"},
		{-5 * time.Second, "0:00"},
		{59 * time.Second, "0:59"},
		{60 * time.Second, "1:00"},
		{90*time.Second + 900*time.Millisecond, "1:30"},
		{61*time.Minute + 1*time.Second, "1:01:01"},
		{25*time.Hour + 45*time.Minute + 30*time.Second, "25:45:30"},
	}

	for _, test := range tests {
		result := FormatDuration(test.duration)
		if result != test.expected {
			t.Errorf("FormatDuration(%v) = %s; ожидалось %s", test.duration, result, test.expected)
		}
	}
}

func TestFormatProgress(t *testing.T) {
	if got := FormatProgress(62*time.Second, 3*time.Minute); got != "1:02 / 3:00" {
		t.Errorf("FormatProgress = %s; ожидалось 1:02 / 3:00", got)
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{0, "—"},
		{500, "500 B"},
		{1000, "1.0 kB"},
		{1500000, "1.5 MB"},
	}

	for _, test := range tests {
		if got := FormatSize(test.bytes); got != test.expected {
			t.Errorf("FormatSize(%d) = %s; ожидалось %s", test.bytes, got, test.expected)
		}
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10", 10, "exactly10"},
		{"this is a very long string", 10, "this is..."},
		{"abc", 3, "abc"},
		{"abcd", 3, "abc"},
		{"abcde", 4, "a..."},
		{"очень длинная песня", 10, "очень д..."},
		{"日本語のタイトル", 10, "日本語..."},
	}

	for _, test := range tests {
		result := TruncateString(test.input, test.maxLen)
		if result != test.expected {
			t.Errorf("TruncateString(%s, %d) = %s; ожидалось %s", test.input, test.maxLen, result, test.expected)
		}
	}
}

func TestPadRight(t *testing.T) {
	for _, s := range []string{"ab", "日本", "a very long artist name"} {
		if got := runewidth.StringWidth(PadRight(s, 8)); got != 8 {
			t.Errorf("PadRight(%q, 8) имеет ширину %d", s, got)
		}
	}
}
