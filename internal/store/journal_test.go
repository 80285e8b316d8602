package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"botsdash/internal/model"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := OpenJournal(context.Background(), filepath.Join(t.TempDir(), "nested", "journal.sqlite"))
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestJournal_AppendAndList(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	for i, msg := range []string{"one", "two", "three"} {
		e := model.LogEntry{At: at.Add(time.Duration(i) * time.Second), Channel: "/api", Event: "app_start", Status: "success", Message: msg}
		if err := j.Append(ctx, "s1", e); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	if err := j.Append(ctx, "s2", model.LogEntry{At: at, Channel: "/server", Event: "log", Status: "info", Message: "other"}); err != nil {
		t.Fatalf("append s2: %v", err)
	}

	all, err := j.List(ctx, 0, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 4 || all[0].Entry.Message != "one" || all[3].Entry.Message != "other" {
		t.Fatalf("unexpected list %#v", all)
	}
	if !all[1].Entry.At.Equal(at.Add(time.Second)) {
		t.Fatalf("timestamp not preserved: %v", all[1].Entry.At)
	}

	tail, err := j.List(ctx, 2, "s1")
	if err != nil {
		t.Fatalf("list tail: %v", err)
	}
	if len(tail) != 2 || tail[0].Entry.Message != "two" || tail[1].Entry.Message != "three" {
		t.Fatalf("expected newest two of s1 oldest first, got %#v", tail)
	}

	sessions, err := j.Sessions(ctx)
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	if len(sessions) != 2 || sessions[0] != "s2" {
		t.Fatalf("unexpected sessions %v", sessions)
	}
}

func TestJournal_EmptyList(t *testing.T) {
	j := openTestJournal(t)
	got, err := j.List(context.Background(), 10, "missing")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestJournal_SessionRecord(t *testing.T) {
	j := openTestJournal(t)
	s1 := j.NewSession()
	s2 := j.NewSession()
	if s1.ID == "" || s1.ID == s2.ID {
		t.Fatalf("expected distinct session ids, got %q and %q", s1.ID, s2.ID)
	}
	if err := s1.Record(model.LogEntry{Channel: "/api", Event: "connect", Status: "success", Message: "Connection established"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	got, err := j.List(context.Background(), 0, s1.ID)
	if err != nil || len(got) != 1 || got[0].SessionID != s1.ID {
		t.Fatalf("unexpected entries %#v (%v)", got, err)
	}
	if got[0].Entry.At.IsZero() {
		t.Fatalf("zero timestamps are replaced on append")
	}
}

func TestJournal_RejectsEmptySession(t *testing.T) {
	j := openTestJournal(t)
	if err := j.Append(context.Background(), " ", model.LogEntry{}); err == nil {
		t.Fatalf("expected error for empty session id")
	}
}

func TestOpenJournal_ReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.sqlite")
	ctx := context.Background()
	j, err := OpenJournal(ctx, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := j.Append(ctx, "s", model.LogEntry{Channel: "/api", Event: "e", Status: "info", Message: "m"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	_ = j.Close()

	j2, err := OpenJournal(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer j2.Close()
	got, err := j2.List(ctx, 0, "")
	if err != nil || len(got) != 1 {
		t.Fatalf("expected entry to survive reopen, got %#v (%v)", got, err)
	}
}
