package tui

import (
	"bytes"
	"encoding/json"
	"log/slog"

	"botsdash/internal/apps"
	"botsdash/internal/command"
	"botsdash/internal/logsink"
	"botsdash/internal/router"
	"botsdash/internal/socketio"
	"botsdash/internal/table"
)

// Transport is the live connection to the bots server.
type Transport interface {
	Events() <-chan socketio.Inbound
	Emit(namespace, event string, payload any) error
}

type connState int

const (
	connConnecting connState = iota
	connUp
	connDown
)

// session owns the state shared by every copy of appModel. It is only touched
// from Update.
type session struct {
	apps   *apps.Collection
	body   *table.Body
	log    *logsink.Sink
	router *router.Router
	cmds   *command.Commands
	modal  *modalState
	conn   map[string]connState
	logger *slog.Logger
}

func newSession(t Transport, logger *slog.Logger) *session {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	body := table.NewBody()
	rec := &table.Reconciler{Body: body}
	coll := apps.New(rec, logger)
	rec.Source = coll

	sink := logsink.New(80, 8)
	s := &session{
		apps:   coll,
		body:   body,
		log:    sink,
		router: router.New(sink, coll, logger),
		modal:  &modalState{},
		conn: map[string]connState{
			router.ChannelAPI:    connConnecting,
			router.ChannelServer: connConnecting,
		},
		cmds:   command.New(t),
		logger: logger,
	}

	s.router.On(router.ChannelAPI, command.EventAppSchema, s.onSchema)
	s.router.On(router.ChannelAPI, command.EventAppEdit, s.onEdit)
	for _, ch := range []string{router.ChannelAPI, router.ChannelServer} {
		s.router.On(ch, "connect", func(router.Event) { s.conn[ch] = connUp })
		s.router.On(ch, socketio.EventConnectError, func(router.Event) { s.conn[ch] = connDown })
		s.router.On(ch, socketio.EventDisconnect, func(router.Event) { s.conn[ch] = connDown })
	}
	return s
}

// handle routes one inbound event.
func (s *session) handle(in socketio.Inbound) {
	_, _ = s.router.Handle(in.Namespace, in.Event, in.Payload)
}

func (s *session) connected() bool {
	return s.conn[router.ChannelAPI] == connUp
}

func (s *session) onSchema(ev router.Event) {
	m := s.modal
	if m.kind != modalSchema {
		return
	}
	m.schemaLoading = false
	if ev.Status != router.StatusSuccess {
		m.schemaAlert = &alert{level: alertLevel(ev.Status), text: alertText(ev)}
		return
	}
	var data struct {
		Schema json.RawMessage `json:"schema"`
	}
	if err := json.Unmarshal(ev.Data, &data); err != nil || len(data.Schema) == 0 {
		m.schemaAlert = &alert{level: alertWarning, text: "Server returned no schema"}
		return
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data.Schema, "", "  "); err != nil {
		m.schemaAlert = &alert{level: alertWarning, text: "Schema is not valid JSON"}
		return
	}
	m.schemaAlert = nil
	m.schemaJSON = buf.String()
}

func (s *session) onEdit(ev router.Event) {
	m := s.modal
	if m.kind != modalEdit {
		return
	}
	m.editSending = false
	if ev.Status == router.StatusSuccess {
		m.close()
		return
	}
	m.editAlert = &alert{level: alertLevel(ev.Status), text: alertText(ev)}
}

func alertLevel(st router.Status) string {
	if st == router.StatusError {
		return alertDanger
	}
	return alertWarning
}

func alertText(ev router.Event) string {
	if ev.HasMessage {
		return ev.Message
	}
	if ev.Status == router.StatusError {
		return "An error occurred"
	}
	return "Unexpected response: " + string(ev.Status)
}
