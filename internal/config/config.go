// Package config provides unified configuration loading for ox500.
// It supports loading from YAML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nvandessel/ox500/internal/constants"
)

// ErrUnknownKey is returned by Get and Set for keys that do not exist.
var ErrUnknownKey = errors.New("unknown configuration key")

// StationConfig contains all ox500 configuration settings.
type StationConfig struct {
	// Logging contains settings for operational and decision logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Session configures how a station session is seeded and clocked.
	Session SessionConfig `json:"session" yaml:"session"`

	Journal JournalConfig `json:"journal" yaml:"journal"`
	Monitor MonitorConfig `json:"monitor" yaml:"monitor"`
	Display DisplayConfig `json:"display" yaml:"display"`
}

// LoggingConfig configures ox500's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables decision logging to <dir>/decisions.jsonl.
	Level string `json:"level" yaml:"level"`

	// Format selects the console handler: "tint" (default) or "text".
	Format string `json:"format" yaml:"format"`

	// Dir is where decisions.jsonl is written. Supports ${VAR} and ~.
	Dir string `json:"dir" yaml:"dir"`
}

// SessionConfig configures a station session.
type SessionConfig struct {
	// Seed fixes the session. 0 derives one from the clock and viewport.
	Seed uint32 `json:"seed" yaml:"seed"`

	// ViewportWidth and Path stand in for the viewer's environment when
	// deriving a seed.
	ViewportWidth int    `json:"viewport_width" yaml:"viewport_width"`
	Path          string `json:"path" yaml:"path"`

	TickInterval time.Duration `json:"tick_interval" yaml:"tick_interval"`
	AmbientFeed  bool          `json:"ambient_feed" yaml:"ambient_feed"`
	Node         string        `json:"node" yaml:"node"`
}

// JournalConfig configures the sqlite run journal.
type JournalConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Path    string `json:"path" yaml:"path"`
}

// MonitorConfig configures the HTTP monitor.
type MonitorConfig struct {
	// Addr is the listen address. Port 0 lets the OS pick.
	Addr string `json:"addr" yaml:"addr"`
}

// DisplayConfig configures terminal rendering.
type DisplayConfig struct {
	Width int  `json:"width" yaml:"width"`
	Color bool `json:"color" yaml:"color"`
}

// Default returns a StationConfig with sensible defaults.
func Default() *StationConfig {
	return &StationConfig{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "tint",
			Dir:    "~/.ox500",
		},
		Session: SessionConfig{
			ViewportWidth: 80,
			Path:          "/",
			TickInterval:  constants.DefaultTickInterval,
			AmbientFeed:   true,
			Node:          "07",
		},
		Journal: JournalConfig{
			Enabled: false,
			Path:    "~/.ox500/journal.db",
		},
		Monitor: MonitorConfig{
			Addr: "127.0.0.1:0",
		},
		Display: DisplayConfig{
			Width: 72,
			Color: true,
		},
	}
}

// DefaultPath returns ~/.ox500/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".ox500", "config.yaml"), nil
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.ox500/config.yaml -> environment variables
func Load() (*StationConfig, error) {
	config := Default()

	if configPath, err := DefaultPath(); err == nil {
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	applyEnvOverrides(config)
	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*StationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	config.Logging.Dir = expandEnvVars(config.Logging.Dir)
	config.Journal.Path = expandEnvVars(config.Journal.Path)
	return config, nil
}

// Save writes the configuration as YAML, creating the directory if needed.
func (c *StationConfig) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Validate checks that the configuration is valid.
func (c *StationConfig) Validate() error {
	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}
	if c.Logging.Format != "" && c.Logging.Format != "tint" && c.Logging.Format != "text" {
		return fmt.Errorf("invalid log format: %s (valid: tint, text)", c.Logging.Format)
	}
	if c.Session.TickInterval < 0 {
		return fmt.Errorf("tick_interval must be non-negative, got %v", c.Session.TickInterval)
	}
	if c.Session.ViewportWidth < 0 {
		return fmt.Errorf("viewport_width must be non-negative, got %d", c.Session.ViewportWidth)
	}
	if c.Display.Width < 0 {
		return fmt.Errorf("display width must be non-negative, got %d", c.Display.Width)
	}
	if c.Journal.Enabled && c.Journal.Path == "" {
		return errors.New("journal.path is required when the journal is enabled")
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *StationConfig) {
	if v := os.Getenv("OX500_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("OX500_LOG_FORMAT"); v != "" {
		config.Logging.Format = v
	}
	if v := os.Getenv("OX500_LOG_DIR"); v != "" {
		config.Logging.Dir = v
	}

	if v := os.Getenv("OX500_SEED"); v != "" {
		if n, err := strconv.ParseUint(v, 0, 32); err == nil {
			config.Session.Seed = uint32(n)
		}
	}
	if v := os.Getenv("OX500_TICK_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.Session.TickInterval = d
		}
	}
	if v := os.Getenv("OX500_AMBIENT_FEED"); v != "" {
		config.Session.AmbientFeed = v == "true" || v == "1"
	}

	if v := os.Getenv("OX500_JOURNAL"); v != "" {
		config.Journal.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("OX500_JOURNAL_PATH"); v != "" {
		config.Journal.Path = v
	}

	if v := os.Getenv("OX500_MONITOR_ADDR"); v != "" {
		config.Monitor.Addr = v
	}

	if v := os.Getenv("OX500_DISPLAY_WIDTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Display.Width = n
		}
	}
	if v := os.Getenv("NO_COLOR"); v != "" {
		config.Display.Color = false
	}
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}

// ExpandPath resolves ${VAR} patterns and a leading ~ in a path.
func ExpandPath(p string) string {
	p = expandEnvVars(p)
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

// field binds a dotted key to a config value.
type field struct {
	get func(c *StationConfig) string
	set func(c *StationConfig, v string) error
}

func parseBool(v string) (bool, error) {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid boolean %q", v)
	}
	return b, nil
}

func parseInt(v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", v)
	}
	return n, nil
}

var fields = map[string]field{
	"logging.level": {
		get: func(c *StationConfig) string { return c.Logging.Level },
		set: func(c *StationConfig, v string) error { c.Logging.Level = v; return nil },
	},
	"logging.format": {
		get: func(c *StationConfig) string { return c.Logging.Format },
		set: func(c *StationConfig, v string) error { c.Logging.Format = v; return nil },
	},
	"logging.dir": {
		get: func(c *StationConfig) string { return c.Logging.Dir },
		set: func(c *StationConfig, v string) error { c.Logging.Dir = v; return nil },
	},
	"session.seed": {
		get: func(c *StationConfig) string { return strconv.FormatUint(uint64(c.Session.Seed), 10) },
		set: func(c *StationConfig, v string) error {
			n, err := strconv.ParseUint(v, 0, 32)
			if err != nil {
				return fmt.Errorf("invalid seed %q", v)
			}
			c.Session.Seed = uint32(n)
			return nil
		},
	},
	"session.viewport_width": {
		get: func(c *StationConfig) string { return strconv.Itoa(c.Session.ViewportWidth) },
		set: func(c *StationConfig, v string) (err error) {
			c.Session.ViewportWidth, err = parseInt(v)
			return err
		},
	},
	"session.path": {
		get: func(c *StationConfig) string { return c.Session.Path },
		set: func(c *StationConfig, v string) error { c.Session.Path = v; return nil },
	},
	"session.tick_interval": {
		get: func(c *StationConfig) string { return c.Session.TickInterval.String() },
		set: func(c *StationConfig, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid duration %q", v)
			}
			c.Session.TickInterval = d
			return nil
		},
	},
	"session.ambient_feed": {
		get: func(c *StationConfig) string { return strconv.FormatBool(c.Session.AmbientFeed) },
		set: func(c *StationConfig, v string) (err error) {
			c.Session.AmbientFeed, err = parseBool(v)
			return err
		},
	},
	"session.node": {
		get: func(c *StationConfig) string { return c.Session.Node },
		set: func(c *StationConfig, v string) error { c.Session.Node = v; return nil },
	},
	"journal.enabled": {
		get: func(c *StationConfig) string { return strconv.FormatBool(c.Journal.Enabled) },
		set: func(c *StationConfig, v string) (err error) {
			c.Journal.Enabled, err = parseBool(v)
			return err
		},
	},
	"journal.path": {
		get: func(c *StationConfig) string { return c.Journal.Path },
		set: func(c *StationConfig, v string) error { c.Journal.Path = v; return nil },
	},
	"monitor.addr": {
		get: func(c *StationConfig) string { return c.Monitor.Addr },
		set: func(c *StationConfig, v string) error { c.Monitor.Addr = v; return nil },
	},
	"display.width": {
		get: func(c *StationConfig) string { return strconv.Itoa(c.Display.Width) },
		set: func(c *StationConfig, v string) (err error) {
			c.Display.Width, err = parseInt(v)
			return err
		},
	},
	"display.color": {
		get: func(c *StationConfig) string { return strconv.FormatBool(c.Display.Color) },
		set: func(c *StationConfig, v string) (err error) {
			c.Display.Color, err = parseBool(v)
			return err
		},
	},
}

// Keys returns every settable key in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value of a dotted key such as "session.seed".
func (c *StationConfig) Get(key string) (string, error) {
	f, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return f.get(c), nil
}

// Set parses v into the dotted key and validates the result.
func (c *StationConfig) Set(key, v string) error {
	f, ok := fields[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if err := f.set(c, v); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return c.Validate()
}
