// Package display renders styled terminal output for the build: the
// startup banner, per-item progress lines, and the final summary. Log
// detail goes to the logger; this package is only the human-facing surface.
package display

import (
	"fmt"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

// ── Styles ───────────────────────────────────────────────────────

var (
	// BannerStyle — muted slate for the startup banner.
	BannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	stepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbf7d0"))

	itemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4d4d8"))

	cachedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a1a1aa"))

	urgentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fca5a5")).
			Bold(true)
)

// Step prints a section heading, e.g. the questionnaire being built.
func Step(format string, args ...any) {
	fmt.Println(stepStyle.Render(fmt.Sprintf(format, args...)))
}

// Item prints one per-question progress line. Cached items render dimmed
// so fresh synthesis stands out.
func Item(index, total int, cached bool, text string) {
	label := "synth"
	style := itemStyle
	if cached {
		label = "cache"
		style = cachedStyle
	}
	line := fmt.Sprintf("  [%*d/%d] %s  %s", digits(total), index, total, label, truncate(text, 60))
	fmt.Println(style.Render(line))
}

// Hint prints secondary information.
func Hint(format string, args ...any) {
	fmt.Println(hintStyle.Render(fmt.Sprintf(format, args...)))
}

// Urgent prints an error message.
func Urgent(format string, args ...any) {
	fmt.Println(urgentStyle.Render(fmt.Sprintf(format, args...)))
}

func digits(n int) int {
	d := 1
	for n >= 10 {
		n /= 10
		d++
	}
	return d
}

// truncate shortens s to at most maxLen bytes, cutting on a rune boundary
// so multi-byte characters are never split mid-sequence.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
