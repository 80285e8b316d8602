package tui

import (
	"errors"
	"strings"
	"time"

	"botsdash/internal/command"
	"botsdash/internal/logging"
	"botsdash/internal/socketio"
	"botsdash/internal/table"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.refreshSchemaView()
		return m, nil

	case inboundMsg:
		m.sess.handle(msg.in)
		m.syncTable()
		m.refreshSchemaView()
		return m, waitForInbound(m.inbound)

	case inboundClosedMsg:
		m.offline = true
		for ch := range m.sess.conn {
			m.sess.conn[ch] = connDown
		}
		cmd := m.showMinibuffer("Connection closed")
		return m, cmd

	case minibufferClearMsg:
		if msg.seq == m.minibufferSeq {
			m.minibufferText = ""
		}
		return m, nil

	case logging.RecordMsg:
		rec := msg
		m.logRecord = &rec
		m.logRecordSeq++
		seq := m.logRecordSeq
		return m, tea.Tick(logging.RecordFadeDelay, func(time.Time) tea.Msg { return logging.RecordFadeMsg{Seq: seq} })

	case logging.RecordFadeMsg:
		if msg.Seq == m.logRecordSeq {
			m.logRecord = nil
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case externalEditorDoneMsg:
		m.applyExternalEditorResult(msg)
		return m, nil

	case tea.MouseMsg:
		if m.sess.modal.open() {
			return m, nil
		}
		return m, m.sess.log.Update(msg)

	case tea.KeyMsg:
		switch m.sess.modal.kind {
		case modalSchema:
			return m.updateSchemaModal(msg)
		case modalEdit:
			return m.updateEditModal(msg)
		case modalConfirmShutdown:
			return m.updateConfirmShutdown(msg)
		}
		return m.updateMain(msg)
	}
	return m, nil
}

func (m appModel) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit
	case key.Matches(msg, k.Help):
		m.showFullHelp = !m.showFullHelp
		return m, nil
	case key.Matches(msg, k.Focus):
		if m.focus == paneApps {
			m.focus = paneLog
			m.appsTable.Blur()
		} else {
			m.focus = paneApps
			m.appsTable.Focus()
		}
		return m, nil
	case key.Matches(msg, k.ServerLogs):
		if m.sess.log.ToggleServer() {
			cmd := m.showMinibuffer("Showing server logs")
			return m, cmd
		}
		cmd := m.showMinibuffer("Hiding server logs")
		return m, cmd
	case key.Matches(msg, k.StartAll):
		cmd := m.emitResult(m.sess.cmds.StartAll(), "Starting all apps")
		return m, cmd
	case key.Matches(msg, k.PauseAll):
		cmd := m.emitResult(m.sess.cmds.PauseAll(), "Pausing all apps")
		return m, cmd
	case key.Matches(msg, k.ReloadAll):
		cmd := m.emitResult(m.sess.cmds.ReloadAll(), "Reloading all apps")
		return m, cmd
	case key.Matches(msg, k.Refresh):
		cmd := m.emitResult(m.sess.cmds.RefreshAll(), "Refreshing configs")
		return m, cmd
	case key.Matches(msg, k.Shutdown):
		m.sess.modal.openConfirmShutdown()
		return m, nil
	}

	if m.focus == paneLog {
		switch {
		case key.Matches(msg, k.Up):
			m.sess.log.ScrollUp(1)
			return m, nil
		case key.Matches(msg, k.Down):
			m.sess.log.ScrollDown(1)
			return m, nil
		}
		return m, m.sess.log.Update(msg)
	}

	switch {
	case key.Matches(msg, k.Start):
		cmd := m.activate(table.ActionStart)
		return m, cmd
	case key.Matches(msg, k.Pause):
		cmd := m.activate(table.ActionPause)
		return m, cmd
	case key.Matches(msg, k.Reload):
		cmd := m.activate(table.ActionReload)
		return m, cmd
	case key.Matches(msg, k.Edit):
		cmd := m.activate(table.ActionEditConfig)
		return m, cmd
	case key.Matches(msg, k.Schema):
		cmd := m.openSchema(m.selectedAppID(), false)
		return m, cmd
	case key.Matches(msg, k.Copy):
		cmd := m.copyCell(table.CellToken, "token")
		return m, cmd
	case key.Matches(msg, k.CopyLink):
		cmd := m.copyLink()
		return m, cmd
	}

	var cmd tea.Cmd
	m.appsTable, cmd = m.appsTable.Update(msg)
	return m, cmd
}

// activate runs the control bound to action on the selected row.
func (m *appModel) activate(action table.Action) tea.Cmd {
	row, ok := m.selectedRow()
	if !ok {
		return m.showMinibuffer("No app selected")
	}
	ctl, ok := row.Control(action)
	if !ok {
		return nil
	}
	if ctl.Disabled {
		return m.showMinibuffer(ctl.Label + " is not available for app " + row.AppID)
	}
	if !action.Outbound() {
		return m.openEdit(ctl.AppID)
	}
	return m.emitResult(m.sess.cmds.Run(string(action), ctl.AppID), ctl.Label+" sent for app "+row.AppID)
}

func (m *appModel) emitResult(err error, ok string) tea.Cmd {
	if err != nil {
		m.sess.logger.Warn("emit failed", "err", err)
		if errors.Is(err, socketio.ErrNotConnected) || errors.Is(err, socketio.ErrClosed) || errors.Is(err, command.ErrNoEmitter) {
			return m.showMinibuffer("Not connected")
		}
		return m.showMinibuffer(err.Error())
	}
	return m.showMinibuffer(ok)
}

func (m *appModel) openEdit(appID string) tea.Cmd {
	app, ok := m.sess.apps.Get(appID)
	if !ok {
		return m.showMinibuffer("App " + appID + " is no longer listed")
	}
	m.sess.modal.openEdit(appID, !app.HasConfig())
	m.configEditor.SetValue(command.FormatConfig(app.Config))
	m.configEditor.Focus()
	m.configEditor.CursorStart()
	return nil
}

func (m *appModel) openSchema(appID string, fromEdit bool) tea.Cmd {
	if _, ok := m.sess.apps.Get(appID); !ok {
		return m.showMinibuffer("App " + appID + " is no longer listed")
	}
	m.sess.modal.openSchema(appID, fromEdit)
	m.refreshSchemaView()
	if err := m.sess.cmds.Schema(appID); err != nil {
		m.sess.modal.schemaLoading = false
		m.sess.modal.schemaAlert = &alert{level: alertDanger, text: "Not connected"}
		m.sess.logger.Warn("schema request failed", "app", appID, "err", err)
	}
	return m.spinner.Tick
}

func (m *appModel) copyCell(class, what string) tea.Cmd {
	row, ok := m.selectedRow()
	if !ok {
		return m.showMinibuffer("No app selected")
	}
	c, _ := row.Cell(class)
	if strings.TrimSpace(c.Text) == "" {
		return m.showMinibuffer("Nothing to copy")
	}
	if err := copyToClipboard(c.Text); err != nil {
		return m.showMinibuffer("Copy failed: " + err.Error())
	}
	return m.showMinibuffer("Copied " + what)
}

func (m *appModel) copyLink() tea.Cmd {
	row, ok := m.selectedRow()
	if !ok {
		return m.showMinibuffer("No app selected")
	}
	c, _ := row.Cell(table.CellTelegram)
	if strings.TrimSpace(c.Href) == "" {
		return m.showMinibuffer("No link for app " + row.AppID)
	}
	if err := copyToClipboard(c.Href); err != nil {
		return m.showMinibuffer("Copy failed: " + err.Error())
	}
	return m.showMinibuffer("Copied link")
}

func (m appModel) updateSchemaModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	st := m.sess.modal
	switch msg.String() {
	case "esc", "q":
		if st.returnToEdit {
			appID := st.appID
			cmd := m.reopenEdit(appID)
			return m, cmd
		}
		st.close()
		return m, nil
	case "e":
		if !st.returnToEdit {
			appID := st.appID
			cmd := m.openEdit(appID)
			return m, cmd
		}
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.schemaView, cmd = m.schemaView.Update(msg)
	return m, cmd
}

// reopenEdit returns to the editor without discarding unsaved text.
func (m *appModel) reopenEdit(appID string) tea.Cmd {
	app, ok := m.sess.apps.Get(appID)
	if !ok {
		m.sess.modal.close()
		return m.showMinibuffer("App " + appID + " is no longer listed")
	}
	m.sess.modal.openEdit(appID, !app.HasConfig())
	m.configEditor.Focus()
	return nil
}

func (m appModel) updateEditModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	st := m.sess.modal
	switch msg.String() {
	case "esc":
		m.configEditor.Blur()
		st.close()
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	case "ctrl+o":
		m.configEditor.Blur()
		cmd := m.openSchema(st.appID, true)
		return m, cmd
	}
	if st.editNoConfig {
		return m, nil
	}

	switch msg.String() {
	case "ctrl+s":
		cmd := m.saveConfig()
		return m, cmd
	case "ctrl+e":
		cmd, err := m.openExternalEditor()
		if err != nil {
			cmd = m.showMinibuffer("Editor failed: " + err.Error())
		}
		return m, cmd
	case "ctrl+t":
		m.tidyConfig()
		return m, nil
	}

	var cmd tea.Cmd
	m.configEditor, cmd = m.configEditor.Update(msg)
	return m, cmd
}

// tidyConfig strips comments and trailing commas in the editor. The result
// stays in the editor for review; nothing is sent.
func (m *appModel) tidyConfig() {
	st := m.sess.modal
	text, err := command.TidyConfig(m.configEditor.Value())
	m.configEditor.SetValue(text)
	var invalid *command.InvalidJSONError
	if errors.As(err, &invalid) {
		st.editAlert = &alert{level: alertDanger, text: invalid.Error()}
		return
	}
	st.editAlert = nil
}

// saveConfig validates the editor text and sends app_edit. Invalid text is
// reported inline and nothing is sent.
func (m *appModel) saveConfig() tea.Cmd {
	st := m.sess.modal
	if st.editSending {
		return nil
	}
	err := m.sess.cmds.Edit(st.appID, m.configEditor.Value())
	var invalid *command.InvalidJSONError
	switch {
	case errors.As(err, &invalid):
		st.editAlert = &alert{level: alertDanger, text: invalid.Error()}
		return nil
	case err != nil:
		st.editAlert = &alert{level: alertDanger, text: "Not connected"}
		m.sess.logger.Warn("edit failed", "app", st.appID, "err", err)
		return nil
	}
	st.editAlert = nil
	st.editSending = true
	return m.spinner.Tick
}

func (m appModel) updateConfirmShutdown(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	st := m.sess.modal
	switch msg.String() {
	case "esc", "n":
		st.close()
		return m, nil
	case "tab", "shift+tab", "left", "right", "h", "l":
		st.confirmFocus = st.confirmFocus.toggle()
		return m, nil
	case "y":
		st.close()
		cmd := m.emitResult(m.sess.cmds.Shutdown(), "Shutdown requested")
		return m, cmd
	case "enter":
		confirm := st.confirmFocus == confirmFocusConfirm
		st.close()
		if confirm {
			cmd := m.emitResult(m.sess.cmds.Shutdown(), "Shutdown requested")
			return m, cmd
		}
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}
