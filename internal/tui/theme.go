package tui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"numis-cli/internal/model"
)

// Theme/palette helpers.
//
// The TUI must remain readable on both light and dark terminal backgrounds,
// so colors are lipgloss.AdaptiveColor pairs.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var (
	colorMuted    = ac("240", "243")
	colorAccent   = ac("26", "39")
	colorError    = ac("124", "203")
	colorInfo     = ac("28", "78")
	colorSelected = ac("232", "255")

	headerStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorSelected).
			Underline(true)
	tabInactiveStyle = lipgloss.NewStyle().Foreground(colorMuted)

	badgeStyle = lipgloss.NewStyle().Foreground(colorAccent)

	flashInfoStyle = lipgloss.NewStyle().Foreground(colorInfo)
	flashErrStyle  = lipgloss.NewStyle().Foreground(colorError).Bold(true)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(1, 2)
)

// asciiGlyphs is set when the terminal (or the user) can't do Unicode.
var asciiGlyphs = detectASCII()

func detectASCII() bool {
	if strings.EqualFold(strings.TrimSpace(os.Getenv("NUMIS_ASCII")), "1") {
		return true
	}
	return termenv.ColorProfile() == termenv.Ascii
}

// SetGlyphs applies the configured glyph preference ("ascii" forces plain
// markers).
func SetGlyphs(pref string) {
	if strings.EqualFold(strings.TrimSpace(pref), "ascii") {
		asciiGlyphs = true
	}
}

func glyphChecked() string {
	if asciiGlyphs {
		return "[x]"
	}
	return "◉"
}

func glyphUnchecked() string {
	if asciiGlyphs {
		return "[ ]"
	}
	return "○"
}

func statusGlyph(s model.JobStatus) string {
	if asciiGlyphs {
		switch s {
		case model.JobDone:
			return "+"
		case model.JobFailed:
			return "!"
		case model.JobRunning:
			return "~"
		}
		return "."
	}
	switch s {
	case model.JobDone:
		return "✓"
	case model.JobFailed:
		return "✗"
	case model.JobRunning:
		return "…"
	}
	return "·"
}
