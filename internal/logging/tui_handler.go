package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// RecordMsg delivers a log record to the bubbletea model for display in the
// status line.
type RecordMsg struct {
	// Summary is the one-line "message (key=value, ...)" form.
	Summary string
	// Structured is the full JSON-encoded record, for clipboard copy.
	Structured string
	Level      slog.Level
}

// RecordFadeMsg clears a displayed record after RecordFadeDelay. Seq lets the
// receiver ignore fades for records that were already replaced.
type RecordFadeMsg struct {
	Seq int
}

const RecordFadeDelay = 5 * time.Second

// Sender is the part of *tea.Program the handler needs.
type Sender interface {
	Send(msg tea.Msg)
}

type senderRef struct{ s Sender }

// tuiQueueSize bounds the records waiting for the program. Records beyond it
// are dropped.
const tuiQueueSize = 64

// pump forwards queued records to the program on its own goroutine. Send
// blocks until the program's event loop receives, and records are often
// logged from inside that loop.
type pump struct {
	program *atomic.Pointer[senderRef]
	queue   chan RecordMsg
	done    chan struct{}
	once    sync.Once
}

func (p *pump) run() {
	for {
		select {
		case <-p.done:
			return
		case msg := <-p.queue:
			if ref := p.program.Load(); ref != nil {
				ref.s.Send(msg)
			}
		}
	}
}

// TUIHandler routes records into a running bubbletea program. Records that
// arrive before SetProgram are dropped. Handlers derived through WithAttrs
// and WithGroup share the program reference.
type TUIHandler struct {
	level  slog.Level
	pump   *pump
	attrs  []slog.Attr
	groups []string
}

func NewTUIHandler(level slog.Level) *TUIHandler {
	p := &pump{
		program: &atomic.Pointer[senderRef]{},
		queue:   make(chan RecordMsg, tuiQueueSize),
		done:    make(chan struct{}),
	}
	go p.run()
	return &TUIHandler{level: level, pump: p}
}

// Close stops delivery for this handler and every handler derived from it.
func (h *TUIHandler) Close() {
	h.pump.once.Do(func() {
		h.pump.program.Store(nil)
		close(h.pump.done)
	})
}

// SetProgram is safe to call from any goroutine. Passing nil stops delivery.
func (h *TUIHandler) SetProgram(s Sender) {
	if s == nil {
		h.pump.program.Store(nil)
		return
	}
	h.pump.program.Store(&senderRef{s: s})
}

func (h *TUIHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *TUIHandler) Handle(_ context.Context, record slog.Record) error {
	if h.pump.program.Load() == nil {
		return nil
	}

	var parts []string
	for _, a := range h.attrs {
		parts = append(parts, fmt.Sprintf("%s=%s", h.key(a.Key), a.Value))
	}
	record.Attrs(func(a slog.Attr) bool {
		parts = append(parts, fmt.Sprintf("%s=%s", h.key(a.Key), a.Value))
		return true
	})
	summary := record.Message
	if len(parts) > 0 {
		summary += " (" + strings.Join(parts, ", ") + ")"
	}

	msg := RecordMsg{
		Summary:    summary,
		Structured: h.structured(record),
		Level:      record.Level,
	}
	select {
	case h.pump.queue <- msg:
	default:
	}
	return nil
}

func (h *TUIHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TUIHandler{
		level:  h.level,
		pump:   h.pump,
		attrs:  append(clone(h.attrs), attrs...),
		groups: clone(h.groups),
	}
}

func (h *TUIHandler) WithGroup(name string) slog.Handler {
	return &TUIHandler{
		level:  h.level,
		pump:   h.pump,
		attrs:  clone(h.attrs),
		groups: append(clone(h.groups), name),
	}
}

func (h *TUIHandler) key(k string) string {
	if len(h.groups) == 0 {
		return k
	}
	return strings.Join(h.groups, ".") + "." + k
}

func (h *TUIHandler) structured(record slog.Record) string {
	fields := map[string]any{
		"time":  record.Time.Format(time.RFC3339),
		"level": record.Level.String(),
		"msg":   record.Message,
	}
	for _, a := range h.attrs {
		fields[h.key(a.Key)] = a.Value.String()
	}
	record.Attrs(func(a slog.Attr) bool {
		fields[h.key(a.Key)] = a.Value.String()
		return true
	})
	b, err := json.Marshal(fields)
	if err != nil {
		return fmt.Sprintf(`{"msg":%q,"error":"marshal failed"}`, record.Message)
	}
	return string(b)
}

func clone[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}
