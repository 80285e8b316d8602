package model

import (
	"strings"
	"time"
)

// Bot is the Telegram-side identity of an app, as reported by the server.
type Bot struct {
	ID        int64  `json:"id,omitempty"`
	Username  string `json:"username"`
	FirstName string `json:"first_name,omitempty"`
	Link      string `json:"link"`
}

// FieldDescriptor describes one configurable field of an app's arguments schema.
type FieldDescriptor struct {
	Required bool    `json:"required"`
	Type     string  `json:"type"`
	Help     *string `json:"help,omitempty"`
	Default  any     `json:"default"`
	Current  any     `json:"current"`
}

// HelpText returns the field's help or "Not provided" when the server sent none.
func (f FieldDescriptor) HelpText() string {
	if f.Help == nil || strings.TrimSpace(*f.Help) == "" {
		return "Not provided"
	}
	return *f.Help
}

// AppRecord is one managed bot process as mirrored from the server.
type AppRecord struct {
	ID            string                     `json:"id"`
	Bot           Bot                        `json:"bot"`
	TelegramToken string                     `json:"telegram_token"`
	Initialized   bool                       `json:"initialized"`
	Running       bool                       `json:"running"`
	Type          string                     `json:"type"`
	Fields        map[string]FieldDescriptor `json:"fields"`
	Config        map[string]any             `json:"config"`
}

// HasConfig reports whether the app exposes any configurable fields.
func (a AppRecord) HasConfig() bool {
	return len(a.Fields) > 0
}

// LogEntry is one line of the operator-visible event log.
type LogEntry struct {
	At      time.Time `json:"at"`
	Channel string    `json:"channel"`
	Event   string    `json:"event"`
	Status  string    `json:"status"`
	Message string    `json:"message"`
}

// Text renders the entry the way the log view shows it, e.g.
// "[/api/app_start] Status: SUCCESS, Message: started".
func (e LogEntry) Text() string {
	return "[" + e.Channel + "/" + e.Event + "] Status: " + strings.ToUpper(e.Status) + ", Message: " + e.Message
}

// Namespace returns the channel name without its leading slash ("api", "server").
func (e LogEntry) Namespace() string {
	return strings.TrimPrefix(e.Channel, "/")
}
