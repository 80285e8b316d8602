package tui

import (
	"context"
	"errors"
	"log/slog"

	"botsdash/internal/logging"
	"botsdash/internal/logsink"

	tea "github.com/charmbracelet/bubbletea"
)

// Deps is what the dashboard needs from the process that runs it.
type Deps struct {
	Transport Transport
	Logger    *slog.Logger
	// LogHandler, when set, receives the program so records show in the
	// status line.
	LogHandler  *logging.TUIHandler
	Journal     logsink.Journal
	ServerLabel string
	Theme       string
	Glyphs      string
}

// Run shows the dashboard until the user quits or ctx is cancelled.
func Run(ctx context.Context, deps Deps) error {
	applyColorProfilePreference()
	applyThemePreference(deps.Theme)
	applyGlyphPreference(deps.Glyphs)

	m := newAppModel(deps.Transport, deps.ServerLabel, deps.Logger)
	if deps.Journal != nil {
		logger := m.sess.logger
		m.sess.log.SetJournal(deps.Journal, func(err error) {
			logger.Warn("journal write failed", "err", err)
		})
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx), tea.WithMouseCellMotion())
	if deps.LogHandler != nil {
		deps.LogHandler.SetProgram(p)
		defer deps.LogHandler.SetProgram(nil)
	}
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
