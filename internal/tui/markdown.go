package tui

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
)

var (
	mdRendererMu sync.Mutex
	// Renderers are cached by style and wrap width. WithAutoStyle can block on
	// terminal background queries, so a fixed style is used instead.
	mdRenderers = map[string]*glamour.TermRenderer{}
)

// renderMarkdown renders md for a box of the given width. On any renderer
// failure the source text is returned unchanged.
func renderMarkdown(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 10 {
		width = 10
	}

	styleName := markdownStyle()
	key := styleName + ":" + strconv.Itoa(width)

	mdRendererMu.Lock()
	r := mdRenderers[key]
	if r == nil {
		cfg := markdownStyleConfig(styleName)
		zero := uint(0)
		cfg.Document.Margin = &zero
		rr, err := glamour.NewTermRenderer(
			glamour.WithStyles(cfg),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			mdRendererMu.Unlock()
			return md
		}
		mdRenderers[key] = rr
		r = rr
	}
	mdRendererMu.Unlock()

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

// renderSchema shows a JSON schema as a highlighted code block.
func renderSchema(prettyJSON string, width int) string {
	if strings.TrimSpace(prettyJSON) == "" {
		return ""
	}
	return renderMarkdown("```json\n"+prettyJSON+"\n```", width)
}

func markdownStyleConfig(styleName string) ansi.StyleConfig {
	switch styleName {
	case "light":
		cfg := styles.LightStyleConfig
		applyMarkdownPalette(&cfg, "light")
		return cfg
	default:
		cfg := styles.DarkStyleConfig
		applyMarkdownPalette(&cfg, "dark")
		return cfg
	}
}

func markdownStyle() string {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("BOTSDASH_TUI_THEME"))) {
	case "light":
		return "light"
	case "dark":
		return "dark"
	}
	if lipgloss.HasDarkBackground() {
		return "dark"
	}
	return "light"
}

func applyMarkdownPalette(cfg *ansi.StyleConfig, styleName string) {
	if cfg == nil {
		return
	}
	cfg.Text.Color = mdColor(colorSurfaceFg, styleName)
	cfg.Code.Color = mdColor(colorSurfaceFg, styleName)
	cfg.CodeBlock.Color = mdColor(colorSurfaceFg, styleName)
	if cfg.CodeBlock.BackgroundColor == nil {
		cfg.CodeBlock.BackgroundColor = mdColor(colorControlBg, styleName)
	}
	// Code blocks carry their own margin; the modal already pads.
	zero := uint(0)
	cfg.CodeBlock.Margin = &zero
}

func mdColor(c lipgloss.AdaptiveColor, styleName string) *string {
	if styleName == "light" {
		return &c.Light
	}
	return &c.Dark
}
