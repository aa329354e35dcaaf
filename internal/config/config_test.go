package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/hydrolog/internal/units"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 2000.0, cfg.Tracking.DailyGoalML)
	assert.Equal(t, "ml", cfg.Tracking.Unit)
	assert.Empty(t, cfg.Tracking.Timezone)
	assert.Equal(t, 90, cfg.Tracking.HistoryDays)
	assert.Equal(t, 60, cfg.Risk.WindowMinutes)
	assert.Equal(t, 500.0, cfg.Risk.LowML)
	assert.Equal(t, 946.0, cfg.Risk.HighML)
	assert.Equal(t, "~/.local/share/hydrolog", cfg.Storage.Path)
	assert.Equal(t, "hydrolog.db", cfg.Storage.SQLiteFile)
	assert.Equal(t, "wal", cfg.Storage.SQLiteJournalMode)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Empty(t, cfg.Metrics.Textfile)
	assert.NoError(t, cfg.Validate())
}

func TestThresholdsFromConfig(t *testing.T) {
	cfg := DefaultConfig()
	th := cfg.Thresholds()

	assert.Equal(t, time.Hour, th.Window)
	assert.Equal(t, 500.0, th.LowML)
	assert.Equal(t, 946.0, th.HighML)
}

func TestLoadValidYAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	yamlContent := `
tracking:
  daily_goal_ml: 2500
  unit: "oz"
  timezone: "UTC"
risk:
  window_minutes: 45
logging:
  level: "debug"
`
	err := os.WriteFile(cfgPath, []byte(yamlContent), 0644)
	require.NoError(t, err)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	// Overridden values
	assert.Equal(t, 2500.0, cfg.Tracking.DailyGoalML)
	assert.Equal(t, "oz", cfg.Tracking.Unit)
	assert.Equal(t, "UTC", cfg.Tracking.Timezone)
	assert.Equal(t, 45, cfg.Risk.WindowMinutes)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Non-overridden values remain defaults
	assert.Equal(t, 90, cfg.Tracking.HistoryDays)
	assert.Equal(t, 946.0, cfg.Risk.HighML)
	assert.Equal(t, "hydrolog.db", cfg.Storage.SQLiteFile)
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")

	tomlContent := `
[tracking]
daily_goal_ml = 3000
unit = "cup"

[storage]
path = "/tmp/hydrolog-test"
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(tomlContent), 0644))

	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, 3000.0, cfg.Tracking.DailyGoalML)
	assert.Equal(t, "cup", cfg.Tracking.Unit)
	assert.Equal(t, "/tmp/hydrolog-test", cfg.Storage.Path)
	assert.Equal(t, 60, cfg.Risk.WindowMinutes)

	dbPath, err := cfg.DBPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/hydrolog-test/hydrolog.db", dbPath)
}

func TestLoadInvalidYAMLReturnsError(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	err := os.WriteFile(cfgPath, []byte(":::not valid yaml{{{"), 0644)
	require.NoError(t, err)

	_, err = Load(cfgPath)
	assert.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"zero goal":         "tracking:\n  daily_goal_ml: 0\n",
		"inverted risk":     "risk:\n  low_ml: 900\n  high_ml: 500\n",
		"unknown timezone":  "tracking:\n  timezone: \"Mars/Olympus\"\n",
		"zero history days": "tracking:\n  history_days: 0\n",
		"unknown unit":      "tracking:\n  unit: \"onces\"\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			cfgPath := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0644))
			_, err := Load(cfgPath)
			assert.Error(t, err)
		})
	}
}

func TestLoadNonExistentFileReturnsError(t *testing.T) {
	_, err := Load("/tmp/nonexistent_path_12345/config.yaml")
	assert.Error(t, err)
}

func TestLoadOrCreateCreatesDefaultsWhenMissing(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "sub", "deep", "config.yaml")

	cfg, err := LoadOrCreateAt(cfgPath)
	require.NoError(t, err)

	// Should return defaults
	assert.Equal(t, 2000.0, cfg.Tracking.DailyGoalML)
	assert.Equal(t, "ml", cfg.Tracking.Unit)

	// File should now exist on disk
	_, statErr := os.Stat(cfgPath)
	assert.NoError(t, statErr)

	// File should be valid YAML loadable again
	cfg2, err := Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, cfg.Tracking.HistoryDays, cfg2.Tracking.HistoryDays)
}

func TestLoadOrCreateLoadsExistingFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	yamlContent := `
tracking:
  history_days: 30
`
	err := os.WriteFile(cfgPath, []byte(yamlContent), 0644)
	require.NoError(t, err)

	cfg, err := LoadOrCreateAt(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Tracking.HistoryDays)
	// Other fields remain defaults
	assert.Equal(t, "ml", cfg.Tracking.Unit)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ExpandPath("~/data")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, home))

	got, err = ExpandPath("/abs/path")
	require.NoError(t, err)
	assert.Equal(t, "/abs/path", got)
}

func TestLocation(t *testing.T) {
	cfg := DefaultConfig()
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	cfg.Tracking.Timezone = "UTC"
	loc, err = cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestValidateUnit(t *testing.T) {
	for _, name := range []string{"ml", "l", "oz", "cup", "fluid ounces", "Liters"} {
		cfg := DefaultConfig()
		cfg.Tracking.Unit = name
		assert.NoError(t, cfg.Validate(), name)
	}

	cfg := DefaultConfig()
	cfg.Tracking.Unit = "onces"
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, units.ErrUnknownUnit)
	assert.Contains(t, err.Error(), "tracking.unit")
}
