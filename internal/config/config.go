// Package config provides configuration loading and validation for the CLI and API server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jonathan/resume-review/internal/diff"
	"github.com/jonathan/resume-review/internal/reconcile"
)

// Config represents the configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or come from CLI flags
// and the environment.
type Config struct {
	// Server
	Port       int    `json:"port,omitempty"`        // HTTP listen port
	CORSOrigin string `json:"cors_origin,omitempty"` // Access-Control-Allow-Origin value

	// Storage
	DatabaseURL       string `json:"database_url,omitempty"`        // PostgreSQL connection URL
	RedisURL          string `json:"redis_url,omitempty"`           // Redis URL for in-flight review sessions
	SessionTTLMinutes int    `json:"session_ttl_minutes,omitempty"` // Lifetime of an unapplied review session

	// Matching heuristics
	BulletPrefixWords    int     `json:"bullet_prefix_words,omitempty"`    // Words compared when pairing rewritten bullets
	BulletMatchThreshold float64 `json:"bullet_match_threshold,omitempty"` // Minimum prefix score for a bullet rewrite (0.0-1.0)
	ProjectMoveThreshold float64 `json:"project_move_threshold,omitempty"` // Minimum score for an experience-to-project move (0.0-1.0)

	// Behavior
	Verbose bool `json:"verbose,omitempty"` // Print detailed debug information
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Port:                 8080,
		CORSOrigin:           "*",
		SessionTTLMinutes:    24 * 60,
		BulletPrefixWords:    reconcile.DefaultPrefixWords,
		BulletMatchThreshold: reconcile.DefaultBulletThreshold,
		ProjectMoveThreshold: reconcile.DefaultProjectMoveThreshold,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Zero values are allowed; they mean "use the default".
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.SessionTTLMinutes < 0 {
		return fmt.Errorf("config error: 'session_ttl_minutes' must be non-negative")
	}
	if c.BulletPrefixWords < 0 {
		return fmt.Errorf("config error: 'bullet_prefix_words' must be non-negative")
	}
	if c.BulletMatchThreshold < 0 || c.BulletMatchThreshold > 1 {
		return fmt.Errorf("config error: 'bullet_match_threshold' must be between 0 and 1")
	}
	if c.ProjectMoveThreshold < 0 || c.ProjectMoveThreshold > 1 {
		return fmt.Errorf("config error: 'project_move_threshold' must be between 0 and 1")
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.CORSOrigin == "" {
		result.CORSOrigin = defaults.CORSOrigin
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.RedisURL == "" {
		result.RedisURL = defaults.RedisURL
	}

	// Int fields: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.SessionTTLMinutes == 0 {
		result.SessionTTLMinutes = defaults.SessionTTLMinutes
	}
	if result.BulletPrefixWords == 0 {
		result.BulletPrefixWords = defaults.BulletPrefixWords
	}

	// Float fields
	if result.BulletMatchThreshold == 0 {
		result.BulletMatchThreshold = defaults.BulletMatchThreshold
	}
	if result.ProjectMoveThreshold == 0 {
		result.ProjectMoveThreshold = defaults.ProjectMoveThreshold
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// FromEnv overlays environment variables on c. Unset or malformed variables
// leave the existing value.
func (c Config) FromEnv() Config {
	c.Port = getenvInt("PORT", c.Port)
	c.CORSOrigin = getenv("REVIEW_CORS_ORIGIN", c.CORSOrigin)
	c.DatabaseURL = getenv("DATABASE_URL", c.DatabaseURL)
	c.RedisURL = getenv("REDIS_URL", c.RedisURL)
	c.SessionTTLMinutes = getenvInt("REVIEW_SESSION_TTL_MINUTES", c.SessionTTLMinutes)
	return c
}

// SessionTTL returns the session lifetime as a duration.
func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// MatchOptions returns the diff heuristics configured in c. Zero values fall
// back to the defaults.
func (c Config) MatchOptions() diff.Options {
	opts := diff.DefaultOptions()
	if c.BulletPrefixWords > 0 {
		opts.Bullets.PrefixWords = c.BulletPrefixWords
	}
	if c.BulletMatchThreshold > 0 {
		opts.Bullets.Threshold = c.BulletMatchThreshold
	}
	if c.ProjectMoveThreshold > 0 {
		opts.ProjectMoveThreshold = c.ProjectMoveThreshold
	}
	return opts
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
