package tui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme/palette helpers.
//
// The dashboard must stay readable on light and dark terminal backgrounds, so
// colors are lipgloss.AdaptiveColor and faint styling is only applied on dark
// backgrounds.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted      = ac("240", "243")
	colorChromeFg   = ac("240", "245")
	colorSelectedBg = ac("#e9e9e9", "#262626")
	colorSelectedFg = ac("235", "255")
	colorSurfaceBg  = ac("255", "235")
	colorSurfaceFg  = ac("235", "252")
	colorControlBg  = ac("252", "235")
	colorAccent     = ac("27", "62")
	colorBorder     = ac("250", "243")

	// Inline alert levels.
	colorDanger  = ac("160", "203")
	colorWarning = ac("130", "214")
	colorOK      = ac("28", "42")
)

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

func styleTitle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(colorSurfaceFg)
}

func styleChrome() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorChromeFg)
}

// applyColorProfilePreference sets Lip Gloss's color profile for the TUI.
//
// termenv.EnvColorProfile respects CLICOLOR/CLICOLOR_FORCE, which can disable
// colors in a TUI. Here only NO_COLOR is honored; otherwise the terminal's
// capabilities decide.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}

	profile := termenv.ColorProfile()

	// Trust TERM/COLORTERM when they claim more than the detector found.
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	colorterm := strings.ToLower(strings.TrimSpace(os.Getenv("COLORTERM")))
	if strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit") {
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	} else if strings.Contains(term, "256color") && (profile == termenv.Ascii || profile == termenv.ANSI) {
		profile = termenv.ANSI256
	}

	lipgloss.SetColorProfile(profile)
}

// applyThemePreference configures Lip Gloss's background detection.
//
// Priority:
// 1) BOTSDASH_TUI_THEME=light|dark|auto
// 2) the config file's tui.theme
// 3) COLORFGBG heuristic ("fg;bg")
func applyThemePreference(configured string) string {
	v := strings.TrimSpace(os.Getenv("BOTSDASH_TUI_THEME"))
	if v == "" {
		v = strings.TrimSpace(configured)
	}
	switch strings.ToLower(v) {
	case "light":
		lipgloss.SetHasDarkBackground(false)
		return "light"
	case "dark":
		lipgloss.SetHasDarkBackground(true)
		return "dark"
	}

	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			// 0-6 are the dark colors of the common xterm palette.
			lipgloss.SetHasDarkBackground(bg < 7)
		}
	}
	if lipgloss.HasDarkBackground() {
		return "dark"
	}
	return "light"
}
