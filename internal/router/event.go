package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"botsdash/internal/model"
)

// Channel names (socket.io namespaces).
const (
	ChannelAPI    = "/api"
	ChannelServer = "/server"
)

// Status is the envelope status. Values outside the known set are kept verbatim.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusWarning Status = "warning"
	StatusInfo    Status = "info"
)

// Update is the state change an event carries. It is one of NoUpdate,
// SingleRecord or FullCollection.
type Update interface {
	isUpdate()
}

// NoUpdate is a message-only event (e.g. a command acknowledgment).
type NoUpdate struct{}

// SingleRecord replaces exactly one app by identity (data.app_update).
type SingleRecord struct {
	App model.AppRecord
}

// FullCollection replaces the whole collection (data.apps_update).
type FullCollection struct {
	Apps []model.AppRecord
}

func (NoUpdate) isUpdate()       {}
func (SingleRecord) isUpdate()   {}
func (FullCollection) isUpdate() {}

// Event is an inbound envelope decoded at the channel boundary.
type Event struct {
	Channel    string
	Name       string
	Status     Status
	Message    string
	HasMessage bool
	// At is when the server says the event happened (data.timestamp, Unix
	// seconds). Zero when absent.
	At     time.Time
	Update Update
	// Data is the raw data member, kept for listeners that need other shapes
	// (e.g. the app_schema response).
	Data json.RawMessage
}

type envelope struct {
	Status  string          `json:"status"`
	Message *string         `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type eventTime struct {
	Timestamp *float64 `json:"timestamp"`
}

// timestampOf reads data.timestamp. Missing or malformed values give zero.
func timestampOf(data json.RawMessage) time.Time {
	var et eventTime
	if json.Unmarshal(data, &et) != nil || et.Timestamp == nil || *et.Timestamp <= 0 {
		return time.Time{}
	}
	sec, frac := math.Modf(*et.Timestamp)
	return time.Unix(int64(sec), int64(frac*1e9))
}

type updateMarkers struct {
	AppUpdate  json.RawMessage `json:"app_update"`
	AppsUpdate json.RawMessage `json:"apps_update"`
}

// Decode parses an inbound payload. Only success events on the api channel
// are classified into state updates; everything else decodes to NoUpdate.
func Decode(channel, name string, raw []byte) (Event, error) {
	ev := Event{Channel: channel, Name: name, Update: NoUpdate{}}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ev, nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return ev, fmt.Errorf("decode %s/%s envelope: %w", channel, name, err)
	}
	ev.Status = Status(env.Status)
	if env.Message != nil && *env.Message != "" {
		ev.Message = *env.Message
		ev.HasMessage = true
	}
	ev.Data = env.Data
	if isObject(env.Data) {
		ev.At = timestampOf(env.Data)
	}

	if channel != ChannelAPI || ev.Status != StatusSuccess || !isObject(env.Data) {
		return ev, nil
	}

	var markers updateMarkers
	if err := json.Unmarshal(env.Data, &markers); err != nil {
		return ev, fmt.Errorf("decode %s/%s data: %w", channel, name, err)
	}
	switch {
	case present(markers.AppUpdate):
		var app model.AppRecord
		if err := json.Unmarshal(markers.AppUpdate, &app); err != nil {
			return ev, fmt.Errorf("decode %s/%s app_update: %w", channel, name, err)
		}
		ev.Update = SingleRecord{App: app}
	case present(markers.AppsUpdate):
		var list []model.AppRecord
		if err := json.Unmarshal(markers.AppsUpdate, &list); err != nil {
			return ev, fmt.Errorf("decode %s/%s apps_update: %w", channel, name, err)
		}
		ev.Update = FullCollection{Apps: list}
	}
	return ev, nil
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}

func present(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}
