// Package config provides configuration management for the vidfetch TUI.
package config

import (
	"os"
	"time"
)

// Config holds the TUI configuration.
type Config struct {
	// Server is the base URL of the vidfetch server.
	Server string

	// SaveDir is where downloaded files are written.
	SaveDir string

	// Timeout bounds each request; downloads can take a while.
	Timeout time.Duration
}

// Load returns configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Server:  getEnv("VIDFETCH_SERVER", "http://localhost:5000"),
		SaveDir: getEnv("VIDFETCH_SAVE_DIR", "."),
		Timeout: getDuration("VIDFETCH_TIMEOUT", 15*time.Minute),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
