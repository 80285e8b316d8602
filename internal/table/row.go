// Package table projects the app collection onto an ordered set of rows keyed
// by app identity, and reconciles that set incrementally.
package table

import "botsdash/internal/model"

// Action is what activating a row control does.
type Action string

const (
	ActionStart      Action = "app_start"
	ActionReload     Action = "app_reload"
	ActionPause      Action = "app_pause"
	ActionEditConfig Action = "edit_config"
)

// Outbound reports whether the action is sent to the server as a command
// (as opposed to opening a local modal).
func (a Action) Outbound() bool {
	switch a {
	case ActionStart, ActionReload, ActionPause:
		return true
	default:
		return false
	}
}

// Cell classes. They double as column keys for renderers.
const (
	CellID       = "col-id"
	CellTelegram = "col-telegram"
	CellToken    = "col-telegram-token"
	CellStarted  = "col-started"
)

const (
	glyphRunning = "✅"
	glyphStopped = "❌"
)

type Cell struct {
	Class string
	Text  string
	// Href is set for link cells.
	Href string
}

type Control struct {
	Label    string
	Action   Action
	Disabled bool
	// AppID is the context the control carries (command payload or modal target).
	AppID string
}

// Row is the structured description of one rendered app.
type Row struct {
	// AppID is the row's identity attribute (data-app-id).
	AppID    string
	Running  bool
	Cells    []Cell
	Controls []Control
}

// Cell returns the cell with the given class.
func (r Row) Cell(class string) (Cell, bool) {
	for _, c := range r.Cells {
		if c.Class == class {
			return c, true
		}
	}
	return Cell{}, false
}

// Control returns the control bound to the given action.
func (r Row) Control(a Action) (Control, bool) {
	for _, c := range r.Controls {
		if c.Action == a {
			return c, true
		}
	}
	return Control{}, false
}

// BuildRow maps an app record to its row. It is a pure function of the record.
func BuildRow(app model.AppRecord) Row {
	started := glyphStopped
	if app.Running {
		started = glyphRunning
	}
	return Row{
		AppID:   app.ID,
		Running: app.Running,
		Cells: []Cell{
			{Class: CellID, Text: app.ID},
			{Class: CellTelegram, Text: "@" + app.Bot.Username, Href: app.Bot.Link},
			{Class: CellToken, Text: app.TelegramToken},
			{Class: CellStarted, Text: started},
		},
		Controls: []Control{
			{Label: "Start", Action: ActionStart, Disabled: app.Running, AppID: app.ID},
			{Label: "Reload", Action: ActionReload, AppID: app.ID},
			{Label: "Pause", Action: ActionPause, Disabled: !app.Running, AppID: app.ID},
			{Label: "Edit Config", Action: ActionEditConfig, AppID: app.ID},
		},
	}
}
