// Package apps holds the client-side mirror of the server's app records.
package apps

import (
	"errors"
	"fmt"
	"log/slog"

	"botsdash/internal/model"
)

// ErrNotFound is the identity-miss condition: an update referenced an id that
// is not in the collection.
var ErrNotFound = errors.New("app not found")

// IdentityMissError carries the id of a rejected single-record update.
type IdentityMissError struct {
	ID string
}

func (e *IdentityMissError) Error() string {
	return fmt.Sprintf("app with id %q not found", e.ID)
}

func (e *IdentityMissError) Unwrap() error { return ErrNotFound }

// Renderer projects the collection somewhere visible. A nil target asks for a
// full rebuild; a non-nil target asks for that single record only.
type Renderer interface {
	Render(target *model.AppRecord)
}

// Collection is an ordered, identity-keyed set of app records.
//
// It is not safe for concurrent use; all calls must come from the goroutine
// that owns the UI.
type Collection struct {
	apps     []model.AppRecord
	renderer Renderer
	logger   *slog.Logger
}

// New returns an empty collection. renderer may be nil (no projection) and
// logger may be nil (discard).
func New(renderer Renderer, logger *slog.Logger) *Collection {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Collection{renderer: renderer, logger: logger}
}

// SetRenderer swaps the projection target.
func (c *Collection) SetRenderer(r Renderer) {
	c.renderer = r
}

// ReplaceAll discards prior contents, keeps records in the given order and
// triggers a full re-render.
func (c *Collection) ReplaceAll(records []model.AppRecord) {
	next := make([]model.AppRecord, len(records))
	copy(next, records)
	c.apps = next
	c.logger.Debug("apps replaced", "count", len(next))
	if c.renderer != nil {
		c.renderer.Render(nil)
	}
}

// UpsertByID replaces the record with the given id in place and re-renders
// only that row. An unknown id is reported as *IdentityMissError; the
// collection is left untouched and nothing is rendered.
func (c *Collection) UpsertByID(id string, record model.AppRecord) error {
	idx := c.indexOf(id)
	if idx < 0 {
		c.logger.Warn("app update for unknown id", "app_id", id)
		return &IdentityMissError{ID: id}
	}
	c.apps[idx] = record
	if c.renderer != nil {
		r := record
		c.renderer.Render(&r)
	}
	return nil
}

// Get returns the record with the given id.
func (c *Collection) Get(id string) (model.AppRecord, bool) {
	idx := c.indexOf(id)
	if idx < 0 {
		return model.AppRecord{}, false
	}
	return c.apps[idx], true
}

// All returns a copy of the records in collection order.
func (c *Collection) All() []model.AppRecord {
	out := make([]model.AppRecord, len(c.apps))
	copy(out, c.apps)
	return out
}

// IDs returns the record ids in collection order.
func (c *Collection) IDs() []string {
	out := make([]string, 0, len(c.apps))
	for _, a := range c.apps {
		out = append(out, a.ID)
	}
	return out
}

func (c *Collection) Len() int { return len(c.apps) }

func (c *Collection) indexOf(id string) int {
	for i := range c.apps {
		if c.apps[i].ID == id {
			return i
		}
	}
	return -1
}
