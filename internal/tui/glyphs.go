package tui

import (
	"os"
	"strings"
	"sync"
)

// Some terminal fonts render emoji badly, so the running badge and a few UI
// affordances have ASCII fallbacks.

type glyphSet int

const (
	glyphSetUnicode glyphSet = iota
	glyphSetASCII
)

var (
	glyphsMu      sync.RWMutex
	currentGlyphs = glyphSetUnicode
)

// applyGlyphPreference reads BOTSDASH_TUI_GLYPHS, falling back to the
// configured value.
func applyGlyphPreference(configured string) {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("BOTSDASH_TUI_GLYPHS")))
	if v == "" {
		v = strings.ToLower(strings.TrimSpace(configured))
	}
	switch v {
	case "", "unicode", "utf8":
		setGlyphs(glyphSetUnicode)
	case "ascii":
		setGlyphs(glyphSetASCII)
	}
}

func setGlyphs(gs glyphSet) {
	glyphsMu.Lock()
	currentGlyphs = gs
	glyphsMu.Unlock()
}

func glyphs() glyphSet {
	glyphsMu.RLock()
	gs := currentGlyphs
	glyphsMu.RUnlock()
	return gs
}

// glyphCell maps a row cell's badge to the active glyph set.
func glyphCell(text string) string {
	if glyphs() != glyphSetASCII {
		return text
	}
	switch text {
	case "✅":
		return "yes"
	case "❌":
		return "no"
	}
	return text
}

func glyphDot() string {
	if glyphs() == glyphSetASCII {
		return "*"
	}
	return "●"
}

func glyphRequired() string {
	if glyphs() == glyphSetASCII {
		return "*"
	}
	return "✱"
}

func glyphHRule() string {
	if glyphs() == glyphSetASCII {
		return "-"
	}
	return "─"
}
