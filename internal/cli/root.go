package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"botsdash/internal/format"
	"botsdash/internal/logging"
	"botsdash/internal/router"
	"botsdash/internal/socketio"
	"botsdash/internal/store"
	"botsdash/internal/tui"

	"github.com/spf13/cobra"
)

type App struct {
	Server     string
	ConfigPath string
	PrettyJSON bool
	Format     string
	LogFile    string
	LogLevel   string
	Timeout    time.Duration
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "botsdash",
		Short:        "Dashboard for a bots server (TUI + scriptable commands)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive dashboard
  botsdash --server http://localhost:8000

  # Scriptable commands
  botsdash apps list
  botsdash apps start 3
  botsdash apps edit 3 --config '{"greeting": "hi"}'

  # Direct app lookup (shortcut for: botsdash apps show <id>)
  botsdash 3
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.Server, "server", envOr("BOTSDASH_SERVER", ""), "Bots server URL (default from config, else "+store.DefaultServer+")")
	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("BOTSDASH_CONFIG", ""), "Path to config.yaml (default ~/.botsdash/config.yaml)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("BOTSDASH_FORMAT", "json"), "Output format (json|yaml)")
	cmd.PersistentFlags().StringVar(&app.LogFile, "log-file", envOr("BOTSDASH_LOG_FILE", ""), "Write process logs to this file")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", envOr("BOTSDASH_LOG_LEVEL", ""), "Log level (debug|info|warn|error)")
	cmd.PersistentFlags().DurationVar(&app.Timeout, "timeout", 10*time.Second, "How long scripted commands wait for the server")

	cmd.AddCommand(newAppsCmd(app))
	cmd.AddCommand(newLogsCmd(app))
	cmd.AddCommand(newServerCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

// settings is the effective configuration: file values overridden by flags
// and environment.
type settings struct {
	cfg      *store.Config
	server   string
	logFile  string
	logLevel slog.Level
}

func loadSettings(app *App) (settings, error) {
	cfg, err := store.LoadConfig(app.ConfigPath)
	if err != nil {
		return settings{}, err
	}
	s := settings{cfg: cfg, server: cfg.ServerURL(), logFile: cfg.LogFile}
	if v := strings.TrimSpace(app.Server); v != "" {
		s.server = v
	}
	if v := strings.TrimSpace(app.LogFile); v != "" {
		s.logFile = v
	}
	level := cfg.LogLevelOrDefault()
	if v := strings.TrimSpace(app.LogLevel); v != "" {
		level = v
	}
	s.logLevel = logging.ParseLevel(level)
	return s, nil
}

func newClient(s settings, logger *slog.Logger, reconnect bool, namespaces ...string) (*socketio.Client, error) {
	base, maxDelay, err := s.cfg.ReconnectBounds()
	if err != nil {
		return nil, err
	}
	return socketio.NewClient(socketio.Config{
		URL:         s.server,
		Path:        s.cfg.SocketPathOrDefault(),
		Namespaces:  namespaces,
		Reconnect:   reconnect,
		BackoffBase: base,
		BackoffMax:  maxDelay,
		Logger:      logger,
	})
}

func runTUI(cmd *cobra.Command, app *App) error {
	s, err := loadSettings(app)
	if err != nil {
		return writeErr(cmd, err)
	}
	fileH, logCloser, err := logging.OpenFile(s.logFile, s.logLevel)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer logCloser.Close()

	// The terminal belongs to the dashboard; warnings surface in its status line.
	tuiH := logging.NewTUIHandler(slog.LevelWarn)
	defer tuiH.Close()
	logger := slog.New(logging.NewFanout(fileH, tuiH))

	client, err := newClient(s, logger, true, router.ChannelAPI, router.ChannelServer)
	if err != nil {
		return writeErr(cmd, err)
	}

	ctx, cancel := context.WithCancel(cmdContext(cmd))
	defer cancel()
	go func() {
		if err := client.Run(ctx); err != nil {
			logger.Error("transport stopped", "err", err)
		}
	}()
	defer client.Close()

	deps := tui.Deps{
		Transport:   client,
		Logger:      logger,
		LogHandler:  tuiH,
		ServerLabel: s.server,
		Theme:       s.cfg.Theme(),
		Glyphs:      s.cfg.Glyphs(),
	}
	if s.cfg.JournalEnabled() {
		j, err := openJournal(ctx, s)
		if err != nil {
			logger.Warn("journal unavailable", "err", err)
		} else {
			defer j.Close()
			sess := j.NewSession()
			logger.Info("journal session", "session", sess.ID, "path", j.Path())
			deps.Journal = sess
		}
	}
	return tui.Run(ctx, deps)
}

func openJournal(ctx context.Context, s settings) (*store.Journal, error) {
	path, err := s.cfg.JournalFile()
	if err != nil {
		return nil, err
	}
	return store.OpenJournal(ctx, path)
}

// newLogger opens the process logger for scripted commands.
func newLogger(s settings) (*slog.Logger, io.Closer, error) {
	h, closer, err := logging.OpenFile(s.logFile, s.logLevel)
	if err != nil {
		return nil, nil, err
	}
	return slog.New(h), closer, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func (app *App) timeoutContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmdContext(cmd)
	if app.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, app.Timeout)
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}

var errTimeout = errors.New("timed out waiting for the server")
