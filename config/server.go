package config

import (
	"fmt"
	"strconv"
)

// ServerConfig defines the HTTP listener settings.
type ServerConfig struct {
	// Port the API listens on.
	Port string `json:"port"`
	// StaticDir is served at / when non-empty; absence of the directory is
	// non-fatal.
	StaticDir string `json:"static_dir"`
}

// SetDefaults applies sane defaults.
func (c *ServerConfig) SetDefaults() {
	if c.Port == "" {
		c.Port = "8080"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
}

// Validate checks mandatory fields.
func (c ServerConfig) Validate() error {
	if n, err := strconv.Atoi(c.Port); err != nil || n < 0 || n > 65535 {
		return fmt.Errorf("invalid port %q", c.Port)
	}
	return nil
}

// DataConfig locates the CSV source files.
type DataConfig struct {
	// Dir contains devices.csv and savings.csv.
	Dir string `json:"dir"`
}

// SetDefaults applies sane defaults.
func (c *DataConfig) SetDefaults() {
	if c.Dir == "" {
		c.Dir = "data"
	}
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	// Level is a zerolog level name: debug, info, warn, error.
	Level string `json:"level"`
}

// SetDefaults applies sane defaults.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
}

// Validate checks mandatory fields.
func (c LoggingConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("unknown log level %s", c.Level)
	}
}
