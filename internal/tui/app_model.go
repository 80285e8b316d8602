package tui

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"botsdash/internal/logging"
	"botsdash/internal/socketio"
	"botsdash/internal/table"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	btable "github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type focusPane int

const (
	paneApps focusPane = iota
	paneLog
)

// inboundMsg carries one socket event into Update.
type inboundMsg struct {
	in socketio.Inbound
}

// inboundClosedMsg reports that the transport stopped for good.
type inboundClosedMsg struct{}

type minibufferClearMsg struct {
	seq int
}

const minibufferAutoClearAfter = 4 * time.Second

type appModel struct {
	sess        *session
	inbound     <-chan socketio.Inbound
	serverLabel string
	offline     bool

	width  int
	height int
	focus  focusPane

	appsTable    btable.Model
	tableVersion int

	schemaView        viewport.Model
	schemaRenderedKey string

	configEditor textarea.Model
	// externalEditorPath is the temp file used while the config is open in
	// $VISUAL/$EDITOR.
	externalEditorPath   string
	externalEditorBefore string

	spinner      spinner.Model
	keys         keyMap
	help         help.Model
	showFullHelp bool

	minibufferText string
	minibufferSeq  int

	logRecord    *logging.RecordMsg
	logRecordSeq int
}

// Layout constants (lines).
const (
	headerLines = 2
	footerLines = 2
	paneTitles  = 2
	minTableH   = 3
	minLogH     = 3
)

func newAppModel(t Transport, serverLabel string, logger *slog.Logger) appModel {
	m := appModel{
		sess:        newSession(t, logger),
		serverLabel: strings.TrimSpace(serverLabel),
		width:       100,
		height:      30,
		keys:        defaultKeyMap(),
		help:        help.New(),
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot)),
		schemaView:  viewport.New(60, 12),
	}
	if t != nil {
		m.inbound = t.Events()
	}

	m.appsTable = btable.New(
		btable.WithColumns(appColumns(m.width)),
		btable.WithFocused(true),
		btable.WithHeight(minTableH),
	)
	st := btable.DefaultStyles()
	st.Header = st.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorBorder).
		BorderBottom(true).
		Bold(true)
	st.Selected = st.Selected.
		Foreground(colorSelectedFg).
		Background(colorSelectedBg).
		Bold(true)
	m.appsTable.SetStyles(st)

	m.configEditor = textarea.New()
	m.configEditor.ShowLineNumbers = true
	m.configEditor.CharLimit = 0
	m.configEditor.Prompt = ""

	m.resize()
	return m
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(waitForInbound(m.inbound), m.spinner.Tick)
}

// waitForInbound blocks on the transport and delivers the next event.
func waitForInbound(ch <-chan socketio.Inbound) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		in, ok := <-ch
		if !ok {
			return inboundClosedMsg{}
		}
		return inboundMsg{in: in}
	}
}

func appColumns(width int) []btable.Column {
	const idW, startedW, actionsW = 6, 7, 22
	rest := width - idW - startedW - actionsW - 10
	if rest < 20 {
		rest = 20
	}
	tgW := rest * 2 / 5
	return []btable.Column{
		{Title: "ID", Width: idW},
		{Title: "Telegram", Width: tgW},
		{Title: "Token", Width: rest - tgW},
		{Title: "Started", Width: startedW},
		{Title: "Actions", Width: actionsW},
	}
}

// syncTable copies the reconciled rows into the table widget when the body
// changed, keeping the cursor on the same app when it still exists.
func (m *appModel) syncTable() {
	v := m.sess.body.Version()
	if v == m.tableVersion {
		return
	}
	m.tableVersion = v

	selected := m.selectedAppID()
	rows := m.sess.body.Rows()
	out := make([]btable.Row, 0, len(rows))
	cursor := 0
	for i, r := range rows {
		out = append(out, tableRow(r))
		if r.AppID == selected {
			cursor = i
		}
	}
	m.appsTable.SetRows(out)
	if len(out) > 0 {
		m.appsTable.SetCursor(cursor)
	}
}

func tableRow(r table.Row) btable.Row {
	cell := func(class string) string {
		c, _ := r.Cell(class)
		return glyphCell(c.Text)
	}
	var actions []string
	for _, c := range r.Controls {
		if !c.Disabled {
			actions = append(actions, c.Label)
		}
	}
	return btable.Row{
		cell(table.CellID),
		cell(table.CellTelegram),
		cell(table.CellToken),
		cell(table.CellStarted),
		strings.Join(actions, " · "),
	}
}

// selectedAppID is the identity of the row under the cursor.
func (m appModel) selectedAppID() string {
	rows := m.sess.body.Rows()
	i := m.appsTable.Cursor()
	if i < 0 || i >= len(rows) {
		return ""
	}
	return rows[i].AppID
}

func (m appModel) selectedRow() (table.Row, bool) {
	rows := m.sess.body.Rows()
	i := m.appsTable.Cursor()
	if i < 0 || i >= len(rows) {
		return table.Row{}, false
	}
	return rows[i], true
}

func (m *appModel) resize() {
	w := m.width
	if w < 40 {
		w = 40
	}
	avail := m.height - headerLines - footerLines - paneTitles
	tableH := avail / 2
	if tableH < minTableH {
		tableH = minTableH
	}
	logH := avail - tableH
	if logH < minLogH {
		logH = minLogH
	}

	m.appsTable.SetColumns(appColumns(w))
	m.appsTable.SetWidth(w)
	m.appsTable.SetHeight(tableH)
	m.sess.log.SetSize(w, logH)

	bodyW := modalBodyWidth(w)
	m.configEditor.SetWidth(bodyW)
	edH := m.height / 3
	if edH < 5 {
		edH = 5
	}
	m.configEditor.SetHeight(edH)

	m.schemaView.Width = bodyW
	h := m.height - 10
	if h < 5 {
		h = 5
	}
	m.schemaView.Height = h
	m.schemaRenderedKey = ""
}

func (m *appModel) showMinibuffer(text string) tea.Cmd {
	m.minibufferText = strings.TrimSpace(text)
	m.minibufferSeq++
	seq := m.minibufferSeq
	return tea.Tick(minibufferAutoClearAfter, func(time.Time) tea.Msg { return minibufferClearMsg{seq: seq} })
}

// refreshSchemaView re-renders the schema body when its source or the modal
// width changed.
func (m *appModel) refreshSchemaView() {
	st := m.sess.modal
	if st.kind != modalSchema {
		m.schemaRenderedKey = ""
		return
	}
	key := st.appID + ":" + st.schemaJSON + ":" + strconv.Itoa(m.schemaView.Width)
	if key == m.schemaRenderedKey {
		return
	}
	m.schemaRenderedKey = key
	m.schemaView.SetContent(renderSchema(st.schemaJSON, m.schemaView.Width))
	m.schemaView.GotoTop()
}
