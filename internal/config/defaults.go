package config

// Default returns the repository default configuration.
func Default() *Config {
	return &Config{
		Concurrency: 4,
		LogLevel:    "info",
		LogFormat:   "console",
		OutputDir:   "optimized",
		Journal: Journal{
			Enabled: true,
			Path:    "~/.local/share/pixelmill/journal.db",
		},
	}
}
