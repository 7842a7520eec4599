package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	config := Default()

	if config.Logging.Level != "info" {
		t.Errorf("expected Logging.Level 'info', got '%s'", config.Logging.Level)
	}
	if config.Logging.Format != "tint" {
		t.Errorf("expected Logging.Format 'tint', got '%s'", config.Logging.Format)
	}
	if config.Session.Seed != 0 {
		t.Errorf("expected Seed 0, got %d", config.Session.Seed)
	}
	if config.Session.TickInterval != time.Second {
		t.Errorf("expected TickInterval 1s, got %v", config.Session.TickInterval)
	}
	if !config.Session.AmbientFeed {
		t.Error("expected AmbientFeed to be true by default")
	}
	if config.Journal.Enabled {
		t.Error("expected Journal.Enabled to be false by default")
	}
	if config.Monitor.Addr != "127.0.0.1:0" {
		t.Errorf("expected Monitor.Addr '127.0.0.1:0', got '%s'", config.Monitor.Addr)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("expected valid default config, got error: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
logging:
  level: debug
  format: text

session:
  seed: 42
  tick_interval: 500ms
  ambient_feed: false

journal:
  enabled: true
  path: /tmp/ox500.db

monitor:
  addr: 127.0.0.1:7500
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	config, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if config.Logging.Level != "debug" {
		t.Errorf("expected Level 'debug', got '%s'", config.Logging.Level)
	}
	if config.Session.Seed != 42 {
		t.Errorf("expected Seed 42, got %d", config.Session.Seed)
	}
	if config.Session.TickInterval != 500*time.Millisecond {
		t.Errorf("expected TickInterval 500ms, got %v", config.Session.TickInterval)
	}
	if config.Session.AmbientFeed {
		t.Error("expected AmbientFeed to be false")
	}
	if !config.Journal.Enabled || config.Journal.Path != "/tmp/ox500.db" {
		t.Errorf("unexpected journal config: %+v", config.Journal)
	}
	if config.Monitor.Addr != "127.0.0.1:7500" {
		t.Errorf("expected Addr '127.0.0.1:7500', got '%s'", config.Monitor.Addr)
	}
	// Unset sections keep their defaults.
	if config.Display.Width != 72 {
		t.Errorf("expected default Display.Width 72, got %d", config.Display.Width)
	}
}

func TestLoadFromFile_EnvExpansion(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
journal:
  path: ${OX500_TEST_DIR}/journal.db
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	t.Setenv("OX500_TEST_DIR", "/var/lib/ox500")

	config, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if config.Journal.Path != "/var/lib/ox500/journal.db" {
		t.Errorf("expected expanded path, got '%s'", config.Journal.Path)
	}
}

func TestLoadFromFile_Errors(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("session: [unclosed"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestLoad_HomeConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("OX500_SEED", "")

	if err := os.MkdirAll(filepath.Join(home, ".ox500"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(home, ".ox500", "config.yaml"), []byte("session:\n  seed: 9\n"), 0600); err != nil {
		t.Fatal(err)
	}

	config, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if config.Session.Seed != 9 {
		t.Errorf("expected Seed 9 from home config, got %d", config.Session.Seed)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("OX500_LOG_LEVEL", "trace")
	t.Setenv("OX500_SEED", "0x2a")
	t.Setenv("OX500_TICK_INTERVAL", "250ms")
	t.Setenv("OX500_AMBIENT_FEED", "0")
	t.Setenv("OX500_JOURNAL", "true")
	t.Setenv("OX500_MONITOR_ADDR", ":9000")
	t.Setenv("OX500_DISPLAY_WIDTH", "100")
	t.Setenv("NO_COLOR", "1")

	config := Default()
	applyEnvOverrides(config)

	if config.Logging.Level != "trace" {
		t.Errorf("expected Level 'trace', got '%s'", config.Logging.Level)
	}
	if config.Session.Seed != 42 {
		t.Errorf("expected Seed 42, got %d", config.Session.Seed)
	}
	if config.Session.TickInterval != 250*time.Millisecond {
		t.Errorf("expected TickInterval 250ms, got %v", config.Session.TickInterval)
	}
	if config.Session.AmbientFeed {
		t.Error("expected AmbientFeed to be false")
	}
	if !config.Journal.Enabled {
		t.Error("expected Journal.Enabled to be true")
	}
	if config.Monitor.Addr != ":9000" {
		t.Errorf("expected Addr ':9000', got '%s'", config.Monitor.Addr)
	}
	if config.Display.Width != 100 || config.Display.Color {
		t.Errorf("unexpected display config: %+v", config.Display)
	}
}

func TestEnvOverrides_IgnoresGarbage(t *testing.T) {
	t.Setenv("OX500_SEED", "not-a-number")
	t.Setenv("OX500_TICK_INTERVAL", "soon")

	config := Default()
	applyEnvOverrides(config)
	if config.Session.Seed != 0 || config.Session.TickInterval != time.Second {
		t.Errorf("garbage env values should be ignored, got %+v", config.Session)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *StationConfig)
	}{
		{"bad level", func(c *StationConfig) { c.Logging.Level = "loud" }},
		{"bad format", func(c *StationConfig) { c.Logging.Format = "xml" }},
		{"negative tick", func(c *StationConfig) { c.Session.TickInterval = -time.Second }},
		{"negative viewport", func(c *StationConfig) { c.Session.ViewportWidth = -1 }},
		{"negative width", func(c *StationConfig) { c.Display.Width = -1 }},
		{"journal without path", func(c *StationConfig) { c.Journal.Enabled = true; c.Journal.Path = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			tt.mutate(config)
			if err := config.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestGetSet(t *testing.T) {
	config := Default()

	if err := config.Set("session.seed", "1234"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if v, _ := config.Get("session.seed"); v != "1234" {
		t.Errorf("expected seed '1234', got '%s'", v)
	}
	if err := config.Set("session.tick_interval", "2s"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if v, _ := config.Get("session.tick_interval"); v != "2s" {
		t.Errorf("expected tick_interval '2s', got '%s'", v)
	}

	if _, err := config.Get("llm.provider"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("expected ErrUnknownKey, got %v", err)
	}
	if err := config.Set("nope", "x"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("expected ErrUnknownKey, got %v", err)
	}
	if err := config.Set("display.color", "maybe"); err == nil {
		t.Error("expected error for invalid boolean")
	}
	if err := config.Set("logging.level", "loud"); err == nil {
		t.Error("expected validation error from Set")
	}
}

func TestKeys(t *testing.T) {
	keys := Keys()
	if len(keys) != len(fields) {
		t.Fatalf("expected %d keys, got %d", len(fields), len(keys))
	}
	config := Default()
	for _, k := range keys {
		if _, err := config.Get(k); err != nil {
			t.Errorf("Get(%s): %v", k, err)
		}
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	config := Default()
	config.Session.Seed = 77
	config.Session.TickInterval = 750 * time.Millisecond

	if err := config.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if loaded.Session.Seed != 77 || loaded.Session.TickInterval != 750*time.Millisecond {
		t.Errorf("round trip lost values: %+v", loaded.Session)
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("OX500_TEST_SUB", "data")

	if got := ExpandPath("~/.ox500/journal.db"); got != filepath.Join(home, ".ox500", "journal.db") {
		t.Errorf("ExpandPath(~) = %s", got)
	}
	if got := ExpandPath("/srv/${OX500_TEST_SUB}/x.db"); got != "/srv/data/x.db" {
		t.Errorf("ExpandPath(${}) = %s", got)
	}
	if got := ExpandPath("relative/x.db"); got != "relative/x.db" {
		t.Errorf("ExpandPath(relative) = %s", got)
	}
}
