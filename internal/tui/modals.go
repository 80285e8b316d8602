package tui

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"botsdash/internal/model"

	"github.com/charmbracelet/lipgloss"
)

type modalKind int

const (
	modalNone modalKind = iota
	modalSchema
	modalEdit
	modalConfirmShutdown
)

const (
	alertDanger  = "danger"
	alertWarning = "warning"
)

type alert struct {
	level string
	text  string
}

// modalState is shared by pointer so router listeners can update the open
// modal while it is displayed.
type modalState struct {
	kind  modalKind
	appID string

	schemaLoading bool
	schemaJSON    string
	schemaAlert   *alert
	// returnToEdit reopens the editor when the schema viewer closes.
	returnToEdit bool

	editAlert   *alert
	editSending bool
	// editNoConfig is set when the app exposes no configurable fields.
	editNoConfig bool

	confirmFocus confirmModalFocus
}

func (s *modalState) open() bool { return s.kind != modalNone }

func (s *modalState) close() {
	*s = modalState{}
}

func (s *modalState) openSchema(appID string, fromEdit bool) {
	*s = modalState{
		kind:          modalSchema,
		appID:         appID,
		schemaLoading: true,
		returnToEdit:  fromEdit,
	}
}

func (s *modalState) openEdit(appID string, noConfig bool) {
	*s = modalState{
		kind:         modalEdit,
		appID:        appID,
		editNoConfig: noConfig,
	}
}

func (s *modalState) openConfirmShutdown() {
	*s = modalState{kind: modalConfirmShutdown, confirmFocus: confirmFocusCancel}
}

func renderSchemaModal(width int, st *modalState, app model.AppRecord, body string) string {
	title := "Schema for " + appLabel(app)
	bodyW := modalBodyWidth(width)

	var parts []string
	switch {
	case st.schemaAlert != nil:
		parts = append(parts, renderAlert(st.schemaAlert.level, st.schemaAlert.text, bodyW))
	case st.schemaLoading:
		parts = append(parts, styleMuted().Render("Loading..."))
	default:
		parts = append(parts, body)
	}
	help := "↑/↓: scroll   esc: close"
	if st.returnToEdit {
		help = "↑/↓: scroll   esc: back to editor"
	} else {
		help += "   e: edit config"
	}
	parts = append(parts, "", styleMuted().Width(bodyW).Render(help))
	return renderModalBox(width, title, strings.Join(parts, "\n"))
}

func renderEditModal(width int, st *modalState, app model.AppRecord, editorView string) string {
	title := "Edit config for " + appLabel(app)
	bodyW := modalBodyWidth(width)

	var parts []string
	if st.editNoConfig {
		parts = append(parts,
			styleMuted().Render("This app has no configuration."),
			"",
			styleMuted().Width(bodyW).Render("esc: close"),
		)
		return renderModalBox(width, title, strings.Join(parts, "\n"))
	}

	parts = append(parts, renderFieldsTable(app.Fields, bodyW), "")
	if st.editAlert != nil {
		parts = append(parts, renderAlert(st.editAlert.level, st.editAlert.text, bodyW), "")
	}
	parts = append(parts, editorView)
	status := ""
	if st.editSending {
		status = "Saving...   "
	}
	parts = append(parts, "", styleMuted().Width(bodyW).Render(status+"ctrl+s: save   ctrl+t: tidy   ctrl+e: $EDITOR   ctrl+o: schema   esc: cancel"))
	return renderModalBox(width, title, strings.Join(parts, "\n"))
}

// renderFieldsTable lists the app's configurable fields, sorted by name.
func renderFieldsTable(fields map[string]model.FieldDescriptor, width int) string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	header := []string{"", "Name", "Type", "Help", "Default", "Current"}
	rows := [][]string{header}
	for _, name := range names {
		f := fields[name]
		req := ""
		if f.Required {
			req = glyphRequired()
		}
		rows = append(rows, []string{req, name, f.Type, f.HelpText(), fieldValue(f.Default), fieldValue(f.Current)})
	}

	// Fixed share per column; Help gets what is left.
	widths := []int{1, 16, 10, 0, 12, 12}
	fixed := len(widths) - 1
	for i, w := range widths {
		if i != 3 {
			fixed += w
		}
	}
	widths[3] = width - fixed
	if widths[3] < 8 {
		widths[3] = 8
	}

	headStyle := lipgloss.NewStyle().Bold(true).Foreground(colorChromeFg)
	reqStyle := lipgloss.NewStyle().Foreground(colorDanger)
	lines := make([]string, 0, len(rows)+1)
	for r, row := range rows {
		cells := make([]string, len(row))
		for c, v := range row {
			cell := truncate(v, widths[c])
			cell += strings.Repeat(" ", max(0, widths[c]-lipgloss.Width(cell)))
			switch {
			case r == 0:
				cell = headStyle.Render(cell)
			case c == 0:
				cell = reqStyle.Render(cell)
			}
			cells[c] = cell
		}
		lines = append(lines, strings.Join(cells, " "))
		if r == 0 {
			lines = append(lines, styleMuted().Render(strings.Repeat(glyphHRule(), min(width, lipgloss.Width(lines[0])))))
		}
	}
	return strings.Join(lines, "\n")
}

func fieldValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "-"
	case string:
		return x
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

func appLabel(app model.AppRecord) string {
	if u := strings.TrimSpace(app.Bot.Username); u != "" {
		return "@" + u
	}
	return "app " + app.ID
}
