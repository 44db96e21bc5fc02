// Package config loads and validates Olivetti configuration from YAML with
// environment overrides. Missing files fall back to defaults so the tool
// works out of the box.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all Olivetti configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// AI service configuration
	AI AIConfig `yaml:"ai"`

	// Input limits
	Limits LimitsConfig `yaml:"limits"`

	// Generation defaults
	Generation GenerationConfig `yaml:"generation"`

	// Rate limiting
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// Persistence
	Storage StorageConfig `yaml:"storage"`

	// Telemetry
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// AIConfig configures the model gateway.
type AIConfig struct {
	Model      string `yaml:"model"`
	APIKey     string `yaml:"api_key"`
	Timeout    string `yaml:"timeout"`
	MaxRetries int    `yaml:"max_retries"`
	MaxTokens  int    `yaml:"max_tokens"`
}

// LimitsConfig caps input sizes before they reach the gateway.
type LimitsConfig struct {
	MaxBriefChars int `yaml:"max_brief_chars"`
	MaxTaskChars  int `yaml:"max_task_chars"`
	MaxDraftChars int `yaml:"max_draft_chars"`
}

// GenerationConfig holds generation defaults.
type GenerationConfig struct {
	DefaultIntensity float64 `yaml:"default_intensity"`
}

// RateLimitConfig configures client-side rate limiting for AI calls.
type RateLimitConfig struct {
	Enabled        bool `yaml:"enabled"`
	CallsPerMinute int  `yaml:"calls_per_minute"`
}

// StorageConfig configures the persistence adapter.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// TelemetryConfig configures usage tracking.
type TelemetryConfig struct {
	Enabled   bool `yaml:"enabled"`
	MaxEvents int  `yaml:"max_events"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level     string `yaml:"level"` // debug, info, warn, error
	DebugMode bool   `yaml:"debug_mode"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "Olivetti",
		Version: "1.0.0",

		AI: AIConfig{
			Model:      "gemini-2.0-flash",
			Timeout:    "90s",
			MaxRetries: 3,
			MaxTokens:  4000,
		},

		Limits: LimitsConfig{
			MaxBriefChars: 100_000,
			MaxTaskChars:  10_000,
			MaxDraftChars: 100_000,
		},

		Generation: GenerationConfig{
			DefaultIntensity: 0.75,
		},

		RateLimit: RateLimitConfig{
			Enabled:        false,
			CallsPerMinute: 10,
		},

		Storage: StorageConfig{
			DatabasePath: filepath.Join(".olivetti", "olivetti.db"),
		},

		Telemetry: TelemetryConfig{
			Enabled:   false,
			MaxEvents: 1000,
		},

		Logging: LoggingConfig{
			Level:     "info",
			DebugMode: false,
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults if config file doesn't exist
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.AI.APIKey = key
	}
	if key := os.Getenv("OLIVETTI_API_KEY"); key != "" {
		c.AI.APIKey = key
	}
	if model := os.Getenv("OLIVETTI_MODEL"); model != "" {
		c.AI.Model = model
	}
	if path := os.Getenv("OLIVETTI_DB"); path != "" {
		c.Storage.DatabasePath = path
	}
	if os.Getenv("OLIVETTI_DEBUG") == "true" {
		c.Logging.DebugMode = true
		c.Logging.Level = "debug"
	}
}

// Validate checks that the configuration is usable for generation.
// Vault and brief operations work without an API key; Validate gates only
// the paths that call the model.
func (c *Config) Validate() error {
	if c.AI.APIKey == "" {
		return fmt.Errorf("no API key configured (set GEMINI_API_KEY or ai.api_key)")
	}
	if c.AI.MaxRetries < 1 {
		return fmt.Errorf("ai.max_retries must be at least 1, got %d", c.AI.MaxRetries)
	}
	if c.Generation.DefaultIntensity < 0 || c.Generation.DefaultIntensity > 1 {
		return fmt.Errorf("generation.default_intensity must be in [0,1], got %v", c.Generation.DefaultIntensity)
	}
	if c.Limits.MaxBriefChars <= 0 || c.Limits.MaxTaskChars <= 0 || c.Limits.MaxDraftChars <= 0 {
		return fmt.Errorf("limits must be positive")
	}
	return nil
}

// AITimeout returns the AI call timeout as a duration.
func (c *Config) AITimeout() time.Duration {
	d, err := time.ParseDuration(c.AI.Timeout)
	if err != nil {
		return 90 * time.Second
	}
	return d
}

// Summary returns a configuration summary for logging.
func (c *Config) Summary() string {
	return fmt.Sprintf("Olivetti Configuration:\n  Model: %s\n  Timeout: %s\n  Rate Limiting: %v\n  Telemetry: %v\n  Debug Mode: %v",
		c.AI.Model, c.AITimeout(), c.RateLimit.Enabled, c.Telemetry.Enabled, c.Logging.DebugMode)
}
