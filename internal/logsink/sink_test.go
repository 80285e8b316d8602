package logsink

import (
	"errors"
	"strings"
	"testing"
	"time"

	"botsdash/internal/model"

	xansi "github.com/charmbracelet/x/ansi"
)

type memJournal struct {
	got []model.LogEntry
	err error
}

func (j *memJournal) Record(e model.LogEntry) error {
	j.got = append(j.got, e)
	return j.err
}

func fill(s *Sink, n int) {
	for i := 0; i < n; i++ {
		s.Append("/server", "log", "info", "line")
	}
}

func TestEntryText(t *testing.T) {
	s := New(80, 5)
	e := s.Append("/api", "app_start", "success", "started")
	if got, want := e.Text(), "[/api/app_start] Status: SUCCESS, Message: started"; got != want {
		t.Fatalf("text = %q, want %q", got, want)
	}
	if e.Namespace() != "api" {
		t.Fatalf("namespace = %q", e.Namespace())
	}
}

func TestClassify(t *testing.T) {
	cases := map[string]Severity{
		"success": SeveritySuccess,
		"error":   SeverityError,
		"warning": SeverityWarning,
		"info":    SeverityInfo,
		"weird":   SeverityNone,
		"":        SeverityNone,
	}
	for status, want := range cases {
		if got := Classify(status); got != want {
			t.Fatalf("Classify(%q) = %q, want %q", status, got, want)
		}
	}
}

func TestAppend_FollowsWhenAtBottom(t *testing.T) {
	s := New(80, 3)
	fill(s, 10)
	if !s.AtBottom() {
		t.Fatalf("expected view to follow while at bottom")
	}
	if s.YOffset() != 7 {
		t.Fatalf("expected offset 7 after 10 lines in a 3-line view, got %d", s.YOffset())
	}

	s.Append("/api", "app_start", "success", "started")
	if !s.AtBottom() || s.YOffset() != 8 {
		t.Fatalf("expected auto-scroll to new bottom (8), got offset %d", s.YOffset())
	}
}

func TestAppend_PreservesManualScroll(t *testing.T) {
	s := New(80, 3)
	fill(s, 10)
	s.ScrollUp(4)
	before := s.YOffset()
	if before != 3 {
		t.Fatalf("expected offset 3 after scrolling up, got %d", before)
	}

	s.Append("/api", "app_start", "success", "started")
	if s.YOffset() != before {
		t.Fatalf("expected scroll position %d preserved, got %d", before, s.YOffset())
	}
	if s.AtBottom() {
		t.Fatalf("expected view to stay scrolled up")
	}
	if len(s.Entries()) != 11 {
		t.Fatalf("expected 11 entries, got %d", len(s.Entries()))
	}
}

func TestToggleServer(t *testing.T) {
	s := New(80, 10)
	s.Append("/server", "log", "info", "boot")
	s.Append("/api", "connect", "success", "Connection established")

	if s.ToggleServer() {
		t.Fatalf("expected server entries hidden after first toggle")
	}
	vis := s.Visible()
	if len(vis) != 1 || vis[0].Channel != "/api" {
		t.Fatalf("expected only /api entry visible, got %#v", vis)
	}
	if len(s.Entries()) != 2 {
		t.Fatalf("hidden entries must be kept")
	}
	if !s.ToggleServer() || len(s.Visible()) != 2 {
		t.Fatalf("expected server entries shown again")
	}
}

func TestJournal(t *testing.T) {
	s := New(80, 3)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	j := &memJournal{}
	var reported error
	s.SetJournal(j, func(err error) { reported = err })
	s.Append("/api", "app_edit", "error", "bad field")
	if len(j.got) != 1 || !j.got[0].At.Equal(fixed) || j.got[0].Message != "bad field" {
		t.Fatalf("unexpected journal entries: %#v", j.got)
	}

	j.err = errors.New("disk full")
	s.Append("/api", "app_edit", "error", "again")
	if reported == nil {
		t.Fatalf("expected journal error to be reported")
	}
	if len(s.Entries()) != 2 {
		t.Fatalf("journal failures must not drop entries")
	}
}

func TestAppendAt_UsesServerTime(t *testing.T) {
	s := New(80, 3)
	local := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return local }
	j := &memJournal{}
	s.SetJournal(j, nil)

	server := time.Unix(1700000000, 0)
	if e := s.AppendAt(server, "/server", "log", "warning", "slow start"); !e.At.Equal(server) {
		t.Fatalf("entry time = %v, want %v", e.At, server)
	}
	if e := s.AppendAt(time.Time{}, "/server", "log", "info", "no stamp"); !e.At.Equal(local) {
		t.Fatalf("zero time should fall back to now, got %v", e.At)
	}
	if len(j.got) != 2 || !j.got[0].At.Equal(server) {
		t.Fatalf("journal should record the server time, got %#v", j.got)
	}
}

func TestView_WrapsLongAndMultilineMessages(t *testing.T) {
	s := New(24, 20)
	s.Append("/api", "app_edit", "error", "validation failed for field chat_id END")
	s.Append("/server", "log", "error", "Traceback:\r\n  line one\n  line two")

	view := xansi.Strip(s.View())
	if strings.Contains(view, "…") {
		t.Fatalf("entries must wrap, not truncate:\n%s", view)
	}
	for _, want := range []string{"END", "Traceback:", "line one", "line two"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view is missing %q:\n%s", want, view)
		}
	}
	for _, line := range strings.Split(view, "\n") {
		if w := xansi.StringWidth(line); w > 24 {
			t.Fatalf("line %q is %d cells wide", line, w)
		}
	}
}
