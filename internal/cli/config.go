package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"botsdash/internal/store"

	"github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the config file",
	}
	cmd.AddCommand(newConfigShowCmd(app))
	cmd.AddCommand(newConfigSetCmd(app))
	return cmd
}

func configFilePath(app *App) (string, error) {
	if p := strings.TrimSpace(app.ConfigPath); p != "" {
		return p, nil
	}
	return store.ConfigPath()
}

func newConfigShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			path, err := configFilePath(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			journal, err := s.cfg.JournalFile()
			if err != nil {
				return writeErr(cmd, err)
			}
			base, maxDelay, _ := s.cfg.ReconnectBounds()
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"configPath":    path,
				"server":        s.server,
				"socketPath":    s.cfg.SocketPathOrDefault(),
				"logLevel":      s.logLevel.String(),
				"logFile":       s.logFile,
				"journal":       s.cfg.JournalEnabled(),
				"journalPath":   journal,
				"reconnectBase": base.String(),
				"reconnectMax":  maxDelay.String(),
				"theme":         s.cfg.Theme(),
				"glyphs":        s.cfg.Glyphs(),
			}})
		},
	}
}

// configSetters maps a settable key to how it is applied.
var configSetters = map[string]func(cfg *store.Config, v string) error{
	"server":      func(cfg *store.Config, v string) error { cfg.Server = v; return nil },
	"socketPath":  func(cfg *store.Config, v string) error { cfg.SocketPath = v; return nil },
	"logLevel":    func(cfg *store.Config, v string) error { cfg.LogLevel = v; return nil },
	"logFile":     func(cfg *store.Config, v string) error { cfg.LogFile = v; return nil },
	"journalPath": func(cfg *store.Config, v string) error { cfg.JournalPath = v; return nil },
	"journal": func(cfg *store.Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("journal: %w", err)
		}
		cfg.Journal = &b
		return nil
	},
	"reconnect.base": func(cfg *store.Config, v string) error {
		if _, err := time.ParseDuration(v); err != nil {
			return err
		}
		cfg.Reconnect.Base = v
		return nil
	},
	"reconnect.max": func(cfg *store.Config, v string) error {
		if _, err := time.ParseDuration(v); err != nil {
			return err
		}
		cfg.Reconnect.Max = v
		return nil
	},
	"tui.theme": func(cfg *store.Config, v string) error {
		tuiConfig(cfg).Theme = v
		return nil
	},
	"tui.glyphs": func(cfg *store.Config, v string) error {
		tuiConfig(cfg).Glyphs = v
		return nil
	},
}

func tuiConfig(cfg *store.Config) *store.TUIConfig {
	if cfg.TUI == nil {
		cfg.TUI = &store.TUIConfig{}
	}
	return cfg.TUI
}

func configKeys() []string {
	keys := make([]string, 0, len(configSetters))
	for k := range configSetters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func newConfigSetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a config value",
		Long:  "Keys: " + strings.Join(configKeys(), ", "),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := strings.TrimSpace(args[0]), strings.TrimSpace(args[1])
			set, ok := configSetters[key]
			if !ok {
				return writeErr(cmd, errNotFound("config key", key))
			}
			cfg, err := store.LoadConfig(app.ConfigPath)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := set(cfg, value); err != nil {
				return writeErr(cmd, err)
			}
			if err := store.SaveConfig(app.ConfigPath, cfg); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{key: value}})
		},
	}
}
