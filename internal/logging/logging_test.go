package logging

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestOpenFile_WritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "botsdash.log")
	h, closer, err := OpenFile(path, slog.LevelInfo)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	logger := slog.New(h)
	logger.Debug("hidden")
	logger.Warn("app not found", "id", "9")
	_ = closer.Close()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one record, got %q", b)
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec["msg"] != "app not found" || rec["id"] != "9" || rec["level"] != "WARN" {
		t.Fatalf("unexpected record %v", rec)
	}
}

func TestOpenFile_EmptyPathDiscards(t *testing.T) {
	h, closer, err := OpenFile("", slog.LevelDebug)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if h.Enabled(t.Context(), slog.LevelError) {
		t.Fatalf("discard handler should accept nothing")
	}
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

type captureSender struct {
	got chan tea.Msg
}

func newCaptureSender() *captureSender {
	return &captureSender{got: make(chan tea.Msg, 16)}
}

func (c *captureSender) Send(msg tea.Msg) { c.got <- msg }

func (c *captureSender) next(t *testing.T) RecordMsg {
	t.Helper()
	select {
	case msg := <-c.got:
		rec, ok := msg.(RecordMsg)
		if !ok {
			t.Fatalf("unexpected message type %T", msg)
		}
		return rec
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for record")
	}
	return RecordMsg{}
}

func (c *captureSender) none(t *testing.T) {
	t.Helper()
	select {
	case msg := <-c.got:
		t.Fatalf("unexpected delivery %#v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestTUIHandler(t *testing.T) {
	h := NewTUIHandler(slog.LevelWarn)
	defer h.Close()
	logger := slog.New(h).With("component", "socketio")

	logger.Warn("dropped before program")

	s := newCaptureSender()
	h.SetProgram(s)
	logger.Info("below level")
	logger.Warn("namespace refused", "namespace", "/api")

	msg := s.next(t)
	if msg.Summary != "namespace refused (component=socketio, namespace=/api)" {
		t.Fatalf("summary = %q", msg.Summary)
	}
	if msg.Level != slog.LevelWarn || !strings.Contains(msg.Structured, `"namespace":"/api"`) {
		t.Fatalf("unexpected record %#v", msg)
	}
	s.none(t)

	h.SetProgram(nil)
	logger.Error("after detach")
	s.none(t)
}

// A blocked program must never block the logging goroutine.
func TestTUIHandler_DoesNotBlockCaller(t *testing.T) {
	h := NewTUIHandler(slog.LevelInfo)
	defer h.Close()
	h.SetProgram(&captureSender{got: make(chan tea.Msg)})
	logger := slog.New(h)

	done := make(chan struct{})
	go func() {
		for i := 0; i < tuiQueueSize*3; i++ {
			logger.Info("flood")
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("logging blocked on a stalled program")
	}
}

func TestFanout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.log")
	fileH, closer, err := OpenFile(path, slog.LevelDebug)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer closer.Close()
	tui := NewTUIHandler(slog.LevelError)
	defer tui.Close()
	s := newCaptureSender()
	tui.SetProgram(s)

	logger := slog.New(NewFanout(fileH, nil, tui)).WithGroup("router")
	logger.Debug("debug only to file")
	logger.Error("boom", "err", "x")

	if got := s.next(t).Summary; got != "boom (router.err=x)" {
		t.Fatalf("summary = %q", got)
	}
	s.none(t)
	b, _ := os.ReadFile(path)
	if strings.Count(string(b), "\n") != 2 {
		t.Fatalf("expected both records in the file, got %q", b)
	}
}
