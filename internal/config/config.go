package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/runnerr0/hydrolog/internal/risk"
	"github.com/runnerr0/hydrolog/internal/units"
)

// Default config file path.
const DefaultConfigPath = "~/.config/hydrolog/config.yaml"

// Config holds all hydrolog configuration.
type Config struct {
	Tracking TrackingConfig `yaml:"tracking" toml:"tracking"`
	Risk     RiskConfig     `yaml:"risk" toml:"risk"`
	Storage  StorageConfig  `yaml:"storage" toml:"storage"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics" toml:"metrics"`
}

// TrackingConfig holds the hydration goal, display unit and calendar settings.
type TrackingConfig struct {
	DailyGoalML float64 `yaml:"daily_goal_ml" toml:"daily_goal_ml"`
	Unit        string  `yaml:"unit" toml:"unit"`
	Timezone    string  `yaml:"timezone" toml:"timezone"`
	HistoryDays int     `yaml:"history_days" toml:"history_days"`
}

// RiskConfig sets the rolling intake window and its pace thresholds.
type RiskConfig struct {
	WindowMinutes int     `yaml:"window_minutes" toml:"window_minutes"`
	LowML         float64 `yaml:"low_ml" toml:"low_ml"`
	HighML        float64 `yaml:"high_ml" toml:"high_ml"`
}

// StorageConfig locates the SQLite database.
type StorageConfig struct {
	Path              string `yaml:"path" toml:"path"`
	SQLiteFile        string `yaml:"sqlite_file" toml:"sqlite_file"`
	SQLiteJournalMode string `yaml:"sqlite_journal_mode" toml:"sqlite_journal_mode"`
}

// LoggingConfig controls slog output.
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
	File   string `yaml:"file" toml:"file"`
}

// MetricsConfig names the Prometheus textfile written on exit.
type MetricsConfig struct {
	Textfile string `yaml:"textfile" toml:"textfile"`
}

// Load reads a config file at path and merges it with defaults. Files ending
// in .toml are decoded as TOML, everything else as YAML.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the trackers cannot work with.
func (c *Config) Validate() error {
	if c.Tracking.DailyGoalML <= 0 {
		return fmt.Errorf("tracking.daily_goal_ml must be positive")
	}
	if c.Tracking.HistoryDays <= 0 {
		return fmt.Errorf("tracking.history_days must be positive")
	}
	if _, err := units.Parse(c.Tracking.Unit); err != nil {
		return fmt.Errorf("tracking.unit: %w", err)
	}
	if c.Risk.WindowMinutes <= 0 {
		return fmt.Errorf("risk.window_minutes must be positive")
	}
	if c.Risk.LowML <= 0 || c.Risk.HighML <= c.Risk.LowML {
		return fmt.Errorf("risk thresholds must satisfy 0 < low_ml < high_ml")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Thresholds returns the configured risk thresholds.
func (c *Config) Thresholds() risk.Thresholds {
	return risk.Thresholds{
		Window: time.Duration(c.Risk.WindowMinutes) * time.Minute,
		LowML:  c.Risk.LowML,
		HighML: c.Risk.HighML,
	}
}

// Location resolves the tracking timezone. Empty means the system zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Tracking.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Tracking.Timezone)
	if err != nil {
		return nil, fmt.Errorf("tracking.timezone: %w", err)
	}
	return loc, nil
}

// DBPath returns the expanded path of the SQLite database file.
func (c *Config) DBPath() (string, error) {
	dir, err := ExpandPath(c.Storage.Path)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, c.Storage.SQLiteFile), nil
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// LoadOrCreate loads the config from the default path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreate() (*Config, error) {
	path, err := ExpandPath(DefaultConfigPath)
	if err != nil {
		return nil, err
	}
	return LoadOrCreateAt(path)
}

// LoadOrCreateAt loads the config from the given path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreateAt(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()

		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating config directory: %w", err)
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("marshaling default config: %w", err)
		}

		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}

		return cfg, nil
	}

	return Load(path)
}
