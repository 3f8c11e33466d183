package display

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		s      string
		maxLen int
		want   string
	}{
		{"short string unchanged", "hello", 10, "hello"},
		{"exact length unchanged", "hello", 5, "hello"},
		{"ascii truncation", "hello world", 8, "hello..."},
		{"multi-byte rune not split", "été très chaud", 7, "ét..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.s, tt.maxLen)
			if got != tt.want {
				t.Fatalf("truncate(%q, %d): expected %q, got %q", tt.s, tt.maxLen, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Fatalf("truncate produced invalid UTF-8: %q", got)
			}
			if len(got) > tt.maxLen {
				t.Fatalf("truncate exceeded %d bytes: %q (%d)", tt.maxLen, got, len(got))
			}
		})
	}
}

func TestDigits(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{1, 1}, {9, 1}, {10, 2}, {99, 2}, {100, 3},
	}
	for _, tt := range tests {
		if got := digits(tt.n); got != tt.want {
			t.Fatalf("digits(%d): expected %d, got %d", tt.n, tt.want, got)
		}
	}
}

func TestRenderBannerNonEmpty(t *testing.T) {
	banner := RenderBanner()
	if strings.TrimSpace(banner) == "" {
		t.Fatal("banner is empty")
	}
}
