package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
)

const (
	DefaultServer     = "ws://localhost:8000"
	DefaultSocketPath = "/ws/socket.io"
	DefaultLogLevel   = "info"

	defaultReconnectBase = 500 * time.Millisecond
	defaultReconnectMax  = 30 * time.Second
)

type Config struct {
	Server     string `yaml:"server,omitempty"`
	SocketPath string `yaml:"socketPath,omitempty"`

	LogLevel string `yaml:"logLevel,omitempty"`
	// LogFile receives the process log; the terminal belongs to the TUI.
	LogFile string `yaml:"logFile,omitempty"`

	// Journal keeps a copy of every event log entry in sqlite.
	Journal     *bool  `yaml:"journal,omitempty"`
	JournalPath string `yaml:"journalPath,omitempty"`

	Reconnect ReconnectConfig `yaml:"reconnect,omitempty"`

	TUI *TUIConfig `yaml:"tui,omitempty"`
}

type ReconnectConfig struct {
	// Base and Max are Go durations ("500ms", "30s").
	Base string `yaml:"base,omitempty"`
	Max  string `yaml:"max,omitempty"`
}

type TUIConfig struct {
	// Theme is "auto", "dark", "light" or "none".
	Theme string `yaml:"theme,omitempty"`
	// Glyphs selects the glyph set ("unicode" or "ascii").
	Glyphs string `yaml:"glyphs,omitempty"`
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.botsdash).
	if v := strings.TrimSpace(os.Getenv("BOTSDASH_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".botsdash"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// LoadConfig reads path, or the default config path when path is empty. A
// missing file yields an empty config.
func LoadConfig(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		p, err := ConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if _, _, err := cfg.ReconnectBounds(); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// SaveConfig writes cfg as YAML to path (or the default path).
func SaveConfig(path string, cfg *Config) error {
	if strings.TrimSpace(path) == "" {
		p, err := ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	// Unique temp name so concurrent CLI and TUI writers never interleave.
	return atomicWriteFile(dir, "config.yaml.*.tmp", path, b, 0o600)
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

func (c *Config) ServerURL() string {
	if c == nil || strings.TrimSpace(c.Server) == "" {
		return DefaultServer
	}
	return strings.TrimSpace(c.Server)
}

func (c *Config) SocketPathOrDefault() string {
	if c == nil || strings.TrimSpace(c.SocketPath) == "" {
		return DefaultSocketPath
	}
	return strings.TrimSpace(c.SocketPath)
}

func (c *Config) LogLevelOrDefault() string {
	if c == nil || strings.TrimSpace(c.LogLevel) == "" {
		return DefaultLogLevel
	}
	return strings.TrimSpace(c.LogLevel)
}

// JournalEnabled defaults to true.
func (c *Config) JournalEnabled() bool {
	if c == nil || c.Journal == nil {
		return true
	}
	return *c.Journal
}

// JournalFile is the sqlite journal location, defaulting to the config dir.
func (c *Config) JournalFile() (string, error) {
	if c != nil && strings.TrimSpace(c.JournalPath) != "" {
		return strings.TrimSpace(c.JournalPath), nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "journal.sqlite"), nil
}

// ReconnectBounds parses the reconnect durations, applying defaults.
func (c *Config) ReconnectBounds() (time.Duration, time.Duration, error) {
	base, max := defaultReconnectBase, defaultReconnectMax
	if c == nil {
		return base, max, nil
	}
	if s := strings.TrimSpace(c.Reconnect.Base); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return 0, 0, fmt.Errorf("reconnect.base: %w", err)
		}
		base = d
	}
	if s := strings.TrimSpace(c.Reconnect.Max); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return 0, 0, fmt.Errorf("reconnect.max: %w", err)
		}
		max = d
	}
	if max < base {
		max = base
	}
	return base, max, nil
}

func (c *Config) Theme() string {
	if c == nil || c.TUI == nil {
		return ""
	}
	return strings.TrimSpace(c.TUI.Theme)
}

func (c *Config) Glyphs() string {
	if c == nil || c.TUI == nil {
		return ""
	}
	return strings.TrimSpace(c.TUI.Glyphs)
}
