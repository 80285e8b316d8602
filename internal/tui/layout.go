package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// normalizePane forces s to exactly width columns (ANSI-aware) and height
// lines so stacked panes keep a stable layout.
func normalizePane(s string, width, height int) string {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}

	lines := strings.Split(s, "\n")
	if height > 0 {
		if len(lines) > height {
			lines = lines[:height]
		}
		for len(lines) < height {
			lines = append(lines, "")
		}
	}

	for i, ln := range lines {
		w := xansi.StringWidth(ln)
		if w > width {
			switch {
			case width <= 0:
				ln = ""
			case width == 1:
				ln = xansi.Cut(ln, 0, 1)
			default:
				ln = xansi.Cut(ln, 0, width-1) + "…"
			}
			w = xansi.StringWidth(ln)
		}
		if w < width {
			ln += strings.Repeat(" ", width-w)
		}
		lines[i] = ln
	}
	return strings.Join(lines, "\n")
}

// truncate shortens s to width display columns.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if xansi.StringWidth(s) <= width {
		return s
	}
	return xansi.Truncate(s, width, "…")
}

func modalWidth(termW int) int {
	w := termW - 8
	if w > 100 {
		w = 100
	}
	if w < 30 {
		w = 30
	}
	return w
}

func modalBodyWidth(termW int) int {
	return modalWidth(termW) - 4
}

// renderModalBox draws a titled, bordered box sized for the terminal width.
func renderModalBox(termW int, title, body string) string {
	w := modalWidth(termW)
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorSurfaceFg).
		Background(colorControlBg).
		Width(w-2).
		Padding(0, 1).
		Render(truncate(title, w-4))
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Width(w-2).
		Padding(0, 1)
	return lipgloss.JoinVertical(lipgloss.Left, header, box.Render(body))
}

// renderAlert draws an inline alert; level is "danger" or "warning".
func renderAlert(level, text string, width int) string {
	c := colorWarning
	if level == alertDanger {
		c = colorDanger
	}
	return lipgloss.NewStyle().
		Foreground(c).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(c).
		PaddingLeft(1).
		Width(width).
		Render(text)
}
