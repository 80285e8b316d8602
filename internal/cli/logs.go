package cli

import (
	"time"

	"botsdash/internal/store"

	"github.com/spf13/cobra"
)

func newLogsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Read the event log journal kept by the dashboard",
	}
	cmd.AddCommand(newLogsListCmd(app))
	cmd.AddCommand(newLogsSessionsCmd(app))
	return cmd
}

type logLine struct {
	ID      int64     `json:"id"`
	Session string    `json:"session"`
	At      time.Time `json:"at"`
	Channel string    `json:"channel"`
	Event   string    `json:"event"`
	Status  string    `json:"status"`
	Message string    `json:"message"`
	Text    string    `json:"text"`
}

func withJournal(cmd *cobra.Command, app *App, fn func(*store.Journal) error) error {
	s, err := loadSettings(app)
	if err != nil {
		return writeErr(cmd, err)
	}
	j, err := openJournal(cmdContext(cmd), s)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer j.Close()
	return fn(j)
}

func newLogsListCmd(app *App) *cobra.Command {
	var (
		limit   int
		session string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List journal entries, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withJournal(cmd, app, func(j *store.Journal) error {
				entries, err := j.List(cmdContext(cmd), limit, session)
				if err != nil {
					return writeErr(cmd, err)
				}
				out := make([]logLine, 0, len(entries))
				for _, je := range entries {
					e := je.Entry
					out = append(out, logLine{
						ID:      je.ID,
						Session: je.SessionID,
						At:      e.At,
						Channel: e.Channel,
						Event:   e.Event,
						Status:  e.Status,
						Message: e.Message,
						Text:    e.Text(),
					})
				}
				return writeOut(cmd, app, map[string]any{"data": out})
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "Newest N entries (0 for all)")
	cmd.Flags().StringVar(&session, "session", "", "Only entries from this session")
	return cmd
}

func newLogsSessionsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List dashboard sessions, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withJournal(cmd, app, func(j *store.Journal) error {
				ids, err := j.Sessions(cmdContext(cmd))
				if err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, map[string]any{"data": ids})
			})
		},
	}
}
