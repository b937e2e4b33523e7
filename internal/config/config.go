package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Scratch   ScratchConfig   `yaml:"scratch"`
	Extractor ExtractorConfig `yaml:"extractor"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host           string        `yaml:"host" envconfig:"SERVER_HOST"`
	Port           int           `yaml:"port" envconfig:"SERVER_PORT"`
	ReadTimeout    time.Duration `yaml:"read_timeout" envconfig:"SERVER_READ_TIMEOUT"`
	WriteTimeout   time.Duration `yaml:"write_timeout" envconfig:"SERVER_WRITE_TIMEOUT"`
	RequestTimeout time.Duration `yaml:"request_timeout" envconfig:"SERVER_REQUEST_TIMEOUT"`
}

// ScratchConfig controls where downloads are materialized and how long they live.
type ScratchConfig struct {
	TempPath string `yaml:"temp_path" envconfig:"SCRATCH_PATH"`
	// Retention is the age after which a download directory is reclaimed.
	// A negative value disables reclaiming entirely.
	Retention     time.Duration `yaml:"retention" envconfig:"SCRATCH_RETENTION"`
	SweepInterval time.Duration `yaml:"sweep_interval" envconfig:"SCRATCH_SWEEP_INTERVAL"`
	KeepFailed    bool          `yaml:"keep_failed" envconfig:"SCRATCH_KEEP_FAILED"`
}

// ExtractorConfig holds yt-dlp configuration.
type ExtractorConfig struct {
	Binary         string        `yaml:"binary" envconfig:"EXTRACTOR_BINARY"`
	Timeout        time.Duration `yaml:"timeout" envconfig:"EXTRACTOR_TIMEOUT"`
	VerifyFormatID bool          `yaml:"verify_format_id" envconfig:"EXTRACTOR_VERIFY_FORMAT_ID"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `yaml:"level" envconfig:"LOG_LEVEL"`
}

// Defaults applied to fields left unset by both the file and the environment.
const (
	DefaultHost           = "0.0.0.0"
	DefaultPort           = 5000
	DefaultReadTimeout    = 30 * time.Second
	DefaultWriteTimeout   = 15 * time.Minute
	DefaultRequestTimeout = 15 * time.Minute
	DefaultRetention      = time.Hour
	DefaultSweepInterval  = 10 * time.Minute
	DefaultBinary         = "yt-dlp"
	DefaultLogLevel       = "info"
)

// DotEnvFile is read from the working directory, if present, before the
// environment is processed. Variables already set in the environment win.
const DotEnvFile = ".env"

// Load reads configuration from file and environment variables.
// Environment variables override file values.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", DotEnvFile, err)
	}

	// Load from YAML file if provided
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// Override with environment variables
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// applyDefaults fills zero values. Defaults are not expressed as envconfig
// default tags because those would clobber values read from the file.
func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = DefaultReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}
	if c.Server.RequestTimeout == 0 {
		c.Server.RequestTimeout = DefaultRequestTimeout
	}
	if c.Scratch.TempPath == "" {
		c.Scratch.TempPath = defaultTempPath()
	}
	if c.Scratch.Retention == 0 {
		c.Scratch.Retention = DefaultRetention
	}
	if c.Scratch.SweepInterval == 0 {
		c.Scratch.SweepInterval = DefaultSweepInterval
	}
	if c.Extractor.Binary == "" {
		c.Extractor.Binary = DefaultBinary
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}

func defaultTempPath() string {
	return filepath.Join(os.TempDir(), "vidfetch")
}

// Validate checks that configuration values are usable.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Scratch.TempPath == "" {
		return fmt.Errorf("SCRATCH_PATH is required")
	}
	if c.Scratch.Retention >= 0 && c.Scratch.SweepInterval <= 0 {
		return fmt.Errorf("SCRATCH_SWEEP_INTERVAL must be positive when retention is enabled")
	}
	if c.Extractor.Binary == "" {
		return fmt.Errorf("EXTRACTOR_BINARY is required")
	}
	if c.Extractor.Timeout < 0 {
		return fmt.Errorf("EXTRACTOR_TIMEOUT cannot be negative")
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// Address returns the server address in host:port format.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RetentionEnabled reports whether old scratch directories are reclaimed.
func (c *ScratchConfig) RetentionEnabled() bool {
	return c.Retention >= 0
}

// SlogLevel converts the configured level name into a slog.Level.
func (c *LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL %q is invalid", c.Level)
	}
	return level, nil
}
