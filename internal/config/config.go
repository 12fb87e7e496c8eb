// Package config loads tock settings from defaults, an optional YAML file
// and TOCK_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full tock configuration.
type Config struct {
	StateFile   string `yaml:"state_file" mapstructure:"state_file"`
	DBFile      string `yaml:"db_file" mapstructure:"db_file"`
	PresetsFile string `yaml:"presets_file" mapstructure:"presets_file"`
	LogLevel    string `yaml:"log_level" mapstructure:"log_level"`

	Daemon DaemonConfig `yaml:"daemon" mapstructure:"daemon"`
	Notify NotifyConfig `yaml:"notify" mapstructure:"notify"`
}

// DaemonConfig controls the background fire loop.
type DaemonConfig struct {
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`
	Autostart    bool          `yaml:"autostart" mapstructure:"autostart"`
	LogFile      string        `yaml:"log_file" mapstructure:"log_file"`
}

// NotifyConfig controls fire notifications.
type NotifyConfig struct {
	// Command is run with the title and body appended, e.g. "notify-send".
	Command string `yaml:"command" mapstructure:"command"`
}

// Dir returns ~/.config/tock, or .tock when there is no user config dir.
func Dir() string {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return ".tock"
	}
	return filepath.Join(cfg, "tock")
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	dir := Dir()
	return &Config{
		StateFile:   filepath.Join(dir, "timers.json"),
		DBFile:      filepath.Join(dir, "tock.db"),
		PresetsFile: filepath.Join(dir, "presets.yaml"),
		LogLevel:    "warn",
		Daemon: DaemonConfig{
			PollInterval: time.Second,
			Autostart:    true,
			LogFile:      filepath.Join(dir, "daemon.log"),
		},
	}
}

// Load reads the config file at path (DefaultPath when empty) over the
// defaults, then applies TOCK_* environment overrides such as
// TOCK_STATE_FILE or TOCK_DAEMON_POLL_INTERVAL. A missing file is not an
// error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = DefaultPath()
	}

	v := viper.New()
	v.SetEnvPrefix("TOCK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, cfg)

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat config %s: %w", path, err)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Daemon.PollInterval <= 0 {
		cfg.Daemon.PollInterval = time.Second
	}
	return cfg, nil
}

// Viper only consults the environment for keys it already knows about.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("state_file", cfg.StateFile)
	v.SetDefault("db_file", cfg.DBFile)
	v.SetDefault("presets_file", cfg.PresetsFile)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("daemon.poll_interval", cfg.Daemon.PollInterval)
	v.SetDefault("daemon.autostart", cfg.Daemon.Autostart)
	v.SetDefault("daemon.log_file", cfg.Daemon.LogFile)
	v.SetDefault("notify.command", cfg.Notify.Command)
}

// Level parses LogLevel, falling back to warn.
func (c *Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelWarn
	}
	return l
}
