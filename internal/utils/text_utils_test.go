package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"go.uber.org/zap"
)

func TestTruncateText(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	tests := []struct {
		name    string
		text    string
		maxSize int
		want    string
	}{
		{"within limit", "hello", 10, "hello"},
		{"exact limit", "hello", 5, "hello"},
		{"over limit", "hello world", 5, "hello"},
		{"zero means no limit", strings.Repeat("x", 100), 0, strings.Repeat("x", 100)},
		{"negative means no limit", "hello", -1, "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tp.TruncateText(tt.text, tt.maxSize); got != tt.want {
				t.Errorf("TruncateText = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruncateTextDoesNotSplitRunes(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	// "héllo": the é is two bytes; cutting at 2 would split it
	got := tp.TruncateText("héllo", 2)
	if !utf8.ValidString(got) {
		t.Errorf("truncation produced invalid UTF-8: %q", got)
	}
	if got != "h" {
		t.Errorf("TruncateText = %q, want %q", got, "h")
	}
}

func TestSanitizeUTF8(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	valid := "héllo wörld"
	if got := tp.SanitizeUTF8(valid); got != valid {
		t.Errorf("valid input changed: %q", got)
	}

	invalid := "abc\xffdef"
	got := tp.SanitizeUTF8(invalid)
	if !utf8.ValidString(got) {
		t.Errorf("sanitized output still invalid: %q", got)
	}
	if got != "abcdef" {
		t.Errorf("SanitizeUTF8 = %q, want %q", got, "abcdef")
	}
}

func TestProcessText(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	// Truncation at 7 leaves a trailing invalid byte, which the
	// validity scan then strips back to "hello"
	got := tp.ProcessText("hello\xff world", 7)
	if !utf8.ValidString(got) {
		t.Errorf("processed output invalid: %q", got)
	}
	if got != "hello" {
		t.Errorf("ProcessText = %q, want %q", got, "hello")
	}
}
