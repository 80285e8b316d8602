package tui

import (
	"fmt"
	"strings"

	"botsdash/internal/router"

	"github.com/charmbracelet/lipgloss"
)

func (m appModel) View() string {
	w := m.width
	if w < 40 {
		w = 40
	}
	h := m.height
	if h < 12 {
		h = 12
	}

	base := lipgloss.JoinVertical(lipgloss.Left,
		m.viewHeader(w),
		m.viewApps(w),
		m.viewLog(w),
		m.viewFooter(w),
	)
	base = normalizePane(base, w, h)

	overlay := m.viewModal(w)
	if overlay == "" {
		return base
	}
	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, overlay,
		lipgloss.WithWhitespaceChars(" "))
}

func (m appModel) viewHeader(w int) string {
	title := styleTitle().Render("botsdash")
	if m.serverLabel != "" {
		title += styleMuted().Render("  " + m.serverLabel)
	}
	status := m.connStatus(router.ChannelAPI) + "  " + m.connStatus(router.ChannelServer)
	gap := w - lipgloss.Width(title) - lipgloss.Width(status)
	if gap < 1 {
		gap = 1
	}
	line := title + strings.Repeat(" ", gap) + status
	rule := styleMuted().Render(strings.Repeat(glyphHRule(), w))
	return line + "\n" + rule
}

func (m appModel) connStatus(ch string) string {
	label := strings.TrimPrefix(ch, "/")
	switch m.sess.conn[ch] {
	case connUp:
		return lipgloss.NewStyle().Foreground(colorOK).Render(glyphDot() + " " + label)
	case connDown:
		return lipgloss.NewStyle().Foreground(colorDanger).Render(glyphDot() + " " + label)
	default:
		return styleMuted().Render(m.spinner.View() + label)
	}
}

func (m appModel) paneTitle(title string, pane focusPane, w int) string {
	st := styleChrome()
	if m.focus == pane && !m.sess.modal.open() {
		st = st.Bold(true).Foreground(colorAccent)
	}
	return st.Render(truncate(title, w))
}

func (m appModel) viewApps(w int) string {
	title := fmt.Sprintf("Apps (%d)", m.sess.apps.Len())
	if m.sess.apps.Len() == 0 {
		msg := "Waiting for apps..."
		if m.offline {
			msg = "Not connected"
		}
		return m.paneTitle(title, paneApps, w) + "\n" + styleMuted().Render(msg)
	}
	return m.paneTitle(title, paneApps, w) + "\n" + m.appsTable.View()
}

func (m appModel) viewLog(w int) string {
	title := "Log"
	if m.sess.log.ShowServer() {
		title += " (with server)"
	}
	if !m.sess.log.AtBottom() {
		title += styleMuted().Render("  ↓ more")
	}
	return m.paneTitle(title, paneLog, w) + "\n" + m.sess.log.View()
}

func (m appModel) viewFooter(w int) string {
	var line string
	switch {
	case m.minibufferText != "":
		line = styleChrome().Render(m.minibufferText)
	case m.logRecord != nil:
		line = styleMuted().Render(m.logRecord.Level.String() + " " + m.logRecord.Summary)
	default:
		m.help.Width = w
		m.help.ShowAll = m.showFullHelp
		line = m.help.View(m.keys)
	}
	rule := styleMuted().Render(strings.Repeat(glyphHRule(), w))
	return rule + "\n" + line
}

func (m appModel) viewModal(w int) string {
	st := m.sess.modal
	switch st.kind {
	case modalSchema:
		app, _ := m.sess.apps.Get(st.appID)
		body := m.schemaView.View()
		if st.schemaLoading {
			body = ""
		}
		return renderSchemaModal(w, st, app, body)
	case modalEdit:
		app, _ := m.sess.apps.Get(st.appID)
		return renderEditModal(w, st, app, m.configEditor.View())
	case modalConfirmShutdown:
		return renderConfirmModal(w, "Shut down server",
			"Stop the bots server? Every app will stop and the dashboard will lose its connection.",
			"Shut down", "Cancel", st.confirmFocus)
	}
	return ""
}
