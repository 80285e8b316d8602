package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_MissingFileIsEmpty(t *testing.T) {
	t.Setenv("BOTSDASH_CONFIG_DIR", t.TempDir())
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ServerURL() != DefaultServer || cfg.SocketPathOrDefault() != DefaultSocketPath || cfg.LogLevelOrDefault() != "info" {
		t.Fatalf("unexpected defaults: %#v", cfg)
	}
	if !cfg.JournalEnabled() {
		t.Fatalf("journal should default to enabled")
	}
	base, max, err := cfg.ReconnectBounds()
	if err != nil || base != 500*time.Millisecond || max != 30*time.Second {
		t.Fatalf("unexpected reconnect bounds %v %v %v", base, max, err)
	}
}

func TestLoadConfig_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `server: http://bots.local:9000
socketPath: /sio
logLevel: debug
journal: false
journalPath: /tmp/j.sqlite
reconnect:
  base: 1s
  max: 10s
tui:
  theme: light
  glyphs: ascii
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ServerURL() != "http://bots.local:9000" || cfg.SocketPathOrDefault() != "/sio" || cfg.LogLevelOrDefault() != "debug" {
		t.Fatalf("unexpected config %#v", cfg)
	}
	if cfg.JournalEnabled() {
		t.Fatalf("journal should be disabled")
	}
	if p, _ := cfg.JournalFile(); p != "/tmp/j.sqlite" {
		t.Fatalf("journal path = %q", p)
	}
	base, max, _ := cfg.ReconnectBounds()
	if base != time.Second || max != 10*time.Second {
		t.Fatalf("reconnect = %v..%v", base, max)
	}
	if cfg.Theme() != "light" || cfg.Glyphs() != "ascii" {
		t.Fatalf("tui prefs = %q %q", cfg.Theme(), cfg.Glyphs())
	}
}

func TestLoadConfig_BadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("reconnect:\n  base: soon\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected duration parse error")
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	t.Setenv("BOTSDASH_CONFIG_DIR", t.TempDir())
	off := false
	in := &Config{Server: "ws://x:1", Journal: &off, TUI: &TUIConfig{Theme: "dark"}}
	if err := SaveConfig("", in); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err := LoadConfig("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out.ServerURL() != "ws://x:1" || out.JournalEnabled() || out.Theme() != "dark" {
		t.Fatalf("unexpected round trip %#v", out)
	}
}

func TestJournalFile_DefaultsToConfigDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("BOTSDASH_CONFIG_DIR", dir)
	var cfg *Config
	p, err := cfg.JournalFile()
	if err != nil || p != filepath.Join(dir, "journal.sqlite") {
		t.Fatalf("journal file = %q (%v)", p, err)
	}
}
