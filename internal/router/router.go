// Package router fans inbound channel events out to the event log and the app
// collection.
package router

import (
	"log/slog"
	"time"

	"botsdash/internal/model"
)

// Sink receives every event that carries a human message. A zero at means
// the event carried no timestamp.
type Sink interface {
	AppendAt(at time.Time, channel, event, status, message string) model.LogEntry
}

// Store receives the state updates carried by api success events.
type Store interface {
	ReplaceAll(records []model.AppRecord)
	UpsertByID(id string, record model.AppRecord) error
}

// Listener observes one decoded event after logging and state dispatch.
type Listener func(Event)

type listenerKey struct {
	channel string
	name    string
}

// Router handles events strictly in arrival order, one at a time, on the
// caller's goroutine.
type Router struct {
	sink      Sink
	store     Store
	logger    *slog.Logger
	listeners map[listenerKey][]Listener
}

func New(sink Sink, store Store, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Router{
		sink:      sink,
		store:     store,
		logger:    logger,
		listeners: map[listenerKey][]Listener{},
	}
}

// On registers fn for events with the given name on the given channel.
func (r *Router) On(channel, name string, fn Listener) {
	k := listenerKey{channel: channel, name: name}
	r.listeners[k] = append(r.listeners[k], fn)
}

// Handle decodes and dispatches one inbound event. Undecodable payloads are
// logged and dropped; the returned error is informational only.
func (r *Router) Handle(channel, name string, raw []byte) (Event, error) {
	ev, err := Decode(channel, name, raw)
	if err != nil {
		r.logger.Warn("dropping undecodable event", "channel", channel, "event", name, "err", err)
		return ev, err
	}
	r.Dispatch(ev)
	return ev, nil
}

// Dispatch routes an already decoded event.
func (r *Router) Dispatch(ev Event) {
	if ev.HasMessage && r.sink != nil {
		r.sink.AppendAt(ev.At, ev.Channel, ev.Name, string(ev.Status), ev.Message)
	}

	if ev.Channel == ChannelAPI && ev.Status == StatusSuccess && r.store != nil {
		switch u := ev.Update.(type) {
		case SingleRecord:
			if err := r.store.UpsertByID(u.App.ID, u.App); err != nil {
				r.logger.Debug("single-record update not applied", "event", ev.Name, "err", err)
			}
		case FullCollection:
			r.store.ReplaceAll(u.Apps)
		case NoUpdate, nil:
		}
	}

	for _, fn := range r.listeners[listenerKey{channel: ev.Channel, name: ev.Name}] {
		fn(ev)
	}
}
