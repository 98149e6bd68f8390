package config

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:        "",
			TimeoutSeconds: 30,
			Breaker: BreakerConfig{
				ConsecutiveFailures: 5,
				OpenTimeoutSeconds:  30,
			},
		},
		Storage: StorageConfig{
			Backend:    BackendSQLite,
			Path:       "~/.config/triage",
			SQLiteFile: "history.db",
			RedisAddr:  "localhost:6379",
			RedisDB:    0,
			Key:        "email-classifications-v2",
			LegacyKeys: []string{"email-classifications"},
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}
