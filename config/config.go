// Package config provides configuration management for the warm-up tool.
// Application settings come from a YAML file with environment variable
// overrides; the warm-up campaign itself is described by a separate Document
// (see document.go).
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application settings
type Config struct {
	// Browser configuration
	Browser BrowserConfig `yaml:"browser"`

	// Warm-up document location and default campaign position
	Warmup WarmupConfig `yaml:"warmup"`

	// Storage configuration
	Storage StorageConfig `yaml:"storage"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging"`

	// Activity scheduling
	Schedule ScheduleConfig `yaml:"schedule"`
}

// BrowserConfig holds browser automation settings
type BrowserConfig struct {
	Headless       bool   `yaml:"headless"`
	UserDataDir    string `yaml:"user_data_dir"`
	SlowMotion     int    `yaml:"slow_motion_ms"`
	Timeout        int    `yaml:"timeout_seconds"`
	QueryTimeout   int    `yaml:"query_timeout_ms"`
	ViewportWidth  int    `yaml:"viewport_width"`
	ViewportHeight int    `yaml:"viewport_height"`
}

// WarmupConfig points at the campaign document
type WarmupConfig struct {
	DocumentPath string `yaml:"document_path"`
	Phase        int    `yaml:"phase"`
	Day          int    `yaml:"day"`
	Seed         int64  `yaml:"seed"`
	Resume       bool   `yaml:"resume"`
}

// StorageConfig holds data persistence settings
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	OutputFile string `yaml:"output_file"`
}

// ScheduleConfig holds activity scheduling settings
type ScheduleConfig struct {
	Enabled      bool   `yaml:"enabled"`
	StartHour    int    `yaml:"start_hour"`
	EndHour      int    `yaml:"end_hour"`
	WorkDaysOnly bool   `yaml:"work_days_only"`
	Timezone     string `yaml:"timezone"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Browser: BrowserConfig{
			Headless:       false,
			UserDataDir:    "./data/browser",
			SlowMotion:     0,
			Timeout:        30,
			QueryTimeout:   3000,
			ViewportWidth:  1366,
			ViewportHeight: 768,
		},
		Warmup: WarmupConfig{
			DocumentPath: "./warmup.yaml",
			Phase:        1,
			Day:          1,
			Resume:       true,
		},
		Storage: StorageConfig{
			DatabasePath: "./data/warmup.db",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			OutputFile: "./logs/warmup.log",
		},
		Schedule: ScheduleConfig{
			Enabled:      true,
			StartHour:    9,
			EndHour:      22,
			WorkDaysOnly: false,
			Timezone:     "Local",
		},
	}
}

// LoadConfig loads configuration from a YAML file and applies environment variable overrides
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			// File doesn't exist, use defaults
		} else {
			if err := yaml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	config.applyEnvOverrides()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration
func (c *Config) applyEnvOverrides() {
	if headless := os.Getenv("BROWSER_HEADLESS"); headless != "" {
		c.Browser.Headless = headless == "true" || headless == "1"
	}
	if userDataDir := os.Getenv("BROWSER_USER_DATA_DIR"); userDataDir != "" {
		c.Browser.UserDataDir = userDataDir
	}

	if doc := os.Getenv("WARMUP_DOCUMENT"); doc != "" {
		c.Warmup.DocumentPath = doc
	}
	if phase := os.Getenv("WARMUP_PHASE"); phase != "" {
		if val, err := strconv.Atoi(phase); err == nil {
			c.Warmup.Phase = val
		}
	}
	if day := os.Getenv("WARMUP_DAY"); day != "" {
		if val, err := strconv.Atoi(day); err == nil {
			c.Warmup.Day = val
		}
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		c.Logging.Format = logFormat
	}

	if dbPath := os.Getenv("DATABASE_PATH"); dbPath != "" {
		c.Storage.DatabasePath = dbPath
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Browser.Timeout <= 0 {
		return fmt.Errorf("timeout_seconds must be positive")
	}

	if c.Warmup.Phase < 1 {
		return fmt.Errorf("warmup phase must be at least 1")
	}
	if c.Warmup.Day < 1 {
		return fmt.Errorf("warmup day must be at least 1")
	}

	if c.Schedule.StartHour < 0 || c.Schedule.StartHour > 23 {
		return fmt.Errorf("start_hour must be between 0 and 23")
	}
	if c.Schedule.EndHour < 0 || c.Schedule.EndHour > 24 {
		return fmt.Errorf("end_hour must be between 0 and 24")
	}
	if c.Schedule.StartHour >= c.Schedule.EndHour {
		return fmt.Errorf("start_hour must be before end_hour")
	}
	if c.Schedule.Timezone != "" && c.Schedule.Timezone != "Local" {
		if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", c.Schedule.Timezone, err)
		}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	return nil
}

// GetTimeout returns the configured browser timeout as a time.Duration
func (c *Config) GetTimeout() time.Duration {
	return time.Duration(c.Browser.Timeout) * time.Second
}

// GetQueryTimeout returns how long a single element lookup may wait
func (c *Config) GetQueryTimeout() time.Duration {
	return time.Duration(c.Browser.QueryTimeout) * time.Millisecond
}

// Location returns the scheduler time zone
func (c *Config) Location() *time.Location {
	if c.Schedule.Timezone == "" || c.Schedule.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// SaveConfig saves the current configuration to a YAML file
func (c *Config) SaveConfig(configPath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
