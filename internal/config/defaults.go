package config

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Tracking: TrackingConfig{
			DailyGoalML: 2000,
			Unit:        "ml",
			Timezone:    "",
			HistoryDays: 90,
		},
		Risk: RiskConfig{
			WindowMinutes: 60,
			LowML:         500,
			HighML:        946,
		},
		Storage: StorageConfig{
			Path:              "~/.local/share/hydrolog",
			SQLiteFile:        "hydrolog.db",
			SQLiteJournalMode: "wal",
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
			File:   "",
		},
		Metrics: MetricsConfig{
			Textfile: "",
		},
	}
}
