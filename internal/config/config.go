// Package config loads the settings of the web front end.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	propagate "github.com/fredc1/propagate-uncertainty-project"
)

// Config holds the server settings. Keys absent from a decoded file keep
// their defaults; keys present, even with zero values, replace them.
type Config struct {
	// Addr is the address to listen on.
	Addr string `yaml:"addr"`
	// MaxUploadBytes limits request bodies, including uploaded tables.
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
	// MaxVariables limits the number of distinct variables in an expression.
	MaxVariables int `yaml:"max_variables"`
	// MaxDepth limits how deeply an expression may nest.
	MaxDepth int `yaml:"max_depth"`
	// Precision is the working precision in bits. Below 53, evaluation is in
	// float64 throughout.
	Precision uint `yaml:"precision"`
	// SessionTTL is how long a submitted expression is remembered.
	SessionTTL time.Duration `yaml:"session_ttl"`
	// LogLevel is a zerolog level name.
	LogLevel string `yaml:"log_level"`
}

// Default returns the default settings.
func Default() Config {
	return Config{
		Addr:           "127.0.0.1:8080",
		MaxUploadBytes: 16 * 1000 * 1000,
		MaxVariables:   propagate.DefaultMaxVariables,
		MaxDepth:       propagate.DefaultMaxDepth,
		Precision:      propagate.DefaultPrec,
		SessionTTL:     time.Hour,
		LogLevel:       "info",
	}
}

// Load reads settings from a YAML file. An empty path gives the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML settings over the defaults.
func Parse(b []byte) (Config, error) {
	c := Default()
	if err := yaml.Unmarshal(b, &c); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate reports settings that cannot be used.
func (c Config) Validate() error {
	switch {
	case c.MaxUploadBytes < 0:
		return errors.New("config: max_upload_bytes must not be negative")
	case c.MaxVariables < 0:
		return errors.New("config: max_variables must not be negative")
	case c.MaxDepth <= 0:
		return errors.New("config: max_depth must be positive")
	case c.SessionTTL <= 0:
		return errors.New("config: session_ttl must be positive")
	case c.Addr == "":
		return errors.New("config: addr must not be empty")
	}
	return nil
}
