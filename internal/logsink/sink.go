// Package logsink is the operator-visible event log: a growing list of
// severity-tagged entries shown in a scrollable viewport.
package logsink

import (
	"strings"
	"time"

	"botsdash/internal/model"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	xansi "github.com/charmbracelet/x/ansi"
)

// Journal persists entries beyond the lifetime of the view.
type Journal interface {
	Record(e model.LogEntry) error
}

// Sink keeps every appended entry; there is no cap and no pruning.
type Sink struct {
	entries    []model.LogEntry
	showServer bool
	vp         viewport.Model
	journal    Journal
	now        func() time.Time
	// onJournalErr is called when the journal rejects an entry.
	onJournalErr func(error)
}

func New(width, height int) *Sink {
	return &Sink{
		showServer: true,
		vp:         viewport.New(width, height),
		now:        time.Now,
	}
}

// SetJournal attaches a journal; onErr may be nil.
func (s *Sink) SetJournal(j Journal, onErr func(error)) {
	s.journal = j
	s.onJournalErr = onErr
}

// Append adds an entry stamped with the current time.
func (s *Sink) Append(channel, event, status, message string) model.LogEntry {
	return s.AppendAt(time.Time{}, channel, event, status, message)
}

// AppendAt adds an entry at the end of the log, stamped with at (the current
// time when at is zero). The view follows the new entry only when it was
// already scrolled to the bottom; otherwise the operator's scroll position is
// left alone.
func (s *Sink) AppendAt(at time.Time, channel, event, status, message string) model.LogEntry {
	if at.IsZero() {
		at = s.now()
	}
	e := model.LogEntry{
		At:      at,
		Channel: channel,
		Event:   event,
		Status:  status,
		Message: message,
	}

	wasAtBottom := s.vp.AtBottom()
	s.entries = append(s.entries, e)
	s.refresh()
	if wasAtBottom {
		s.vp.GotoBottom()
	}

	if s.journal != nil {
		if err := s.journal.Record(e); err != nil && s.onJournalErr != nil {
			s.onJournalErr(err)
		}
	}
	return e
}

// Entries returns every entry ever appended, oldest first.
func (s *Sink) Entries() []model.LogEntry {
	out := make([]model.LogEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Visible returns the entries the view currently shows.
func (s *Sink) Visible() []model.LogEntry {
	out := make([]model.LogEntry, 0, len(s.entries))
	for _, e := range s.entries {
		if !s.showServer && e.Channel == "/server" {
			continue
		}
		out = append(out, e)
	}
	return out
}

// ShowServer reports whether /server entries are shown.
func (s *Sink) ShowServer() bool { return s.showServer }

// ToggleServer shows or hides /server entries and jumps to the newest entry.
func (s *Sink) ToggleServer() bool {
	s.showServer = !s.showServer
	s.refresh()
	s.vp.GotoBottom()
	return s.showServer
}

func (s *Sink) SetSize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	wasAtBottom := s.vp.AtBottom()
	s.vp.Width = width
	s.vp.Height = height
	s.refresh()
	if wasAtBottom {
		s.vp.GotoBottom()
	}
}

// AtBottom reports whether the newest line is in view.
func (s *Sink) AtBottom() bool { return s.vp.AtBottom() }

// YOffset is the index of the first visible line.
func (s *Sink) YOffset() int { return s.vp.YOffset }

// ScrollUp moves the view towards older entries.
func (s *Sink) ScrollUp(n int) { s.vp.LineUp(n) }

// ScrollDown moves the view towards newer entries.
func (s *Sink) ScrollDown(n int) { s.vp.LineDown(n) }

// Update forwards scrolling input (keys, mouse wheel) to the viewport.
func (s *Sink) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	s.vp, cmd = s.vp.Update(msg)
	return cmd
}

func (s *Sink) View() string { return s.vp.View() }

func (s *Sink) refresh() {
	visible := s.Visible()
	lines := make([]string, 0, len(visible))
	for _, e := range visible {
		text := strings.ReplaceAll(e.Text(), "\r\n", "\n")
		if s.vp.Width > 0 {
			text = xansi.Wrap(text, s.vp.Width, "")
		}
		lines = append(lines, StyleFor(e.Status).Render(text))
	}
	s.vp.SetContent(strings.Join(lines, "\n"))
}
