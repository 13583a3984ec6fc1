// Package config provides the unified configuration system for astropipe.
// It defines a single BaseConfig structure that all catalog sources use,
// organized into logical sections:
//   - Source: endpoint and query defaults for the remote catalog
//   - Timeouts: connection and request timeouts
//   - Reliability: retry and backoff policy for transient failures
//   - Observability: logging and metrics toggles
//
// Example usage:
//
//	cfg := config.NewBaseConfig("primary", "exoarchive")
//	cfg.Source.Endpoint = "https://exoplanetarchive.ipac.caltech.edu/TAP/sync"
//
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config

import (
	"fmt"
	"time"
)

// BaseConfig is the configuration structure shared by all catalog
// sources.
type BaseConfig struct {
	// Name identifies the source instance
	Name string `yaml:"name" json:"name"`
	// Type specifies the source type (e.g., "exoarchive")
	Type string `yaml:"type" json:"type"`
	// Version indicates the configuration version
	Version string `yaml:"version" json:"version"`

	// Source settings for the remote catalog service
	Source SourceConfig `yaml:"source" json:"source"`

	// Timeouts define connection and request timeout durations
	Timeouts TimeoutConfig `yaml:"timeouts" json:"timeouts"`

	// Reliability settings for retry and backoff
	Reliability ReliabilityConfig `yaml:"reliability" json:"reliability"`

	// Observability settings for logging and metrics
	Observability ObservabilityConfig `yaml:"observability" json:"observability"`
}

// SourceConfig contains remote catalog settings.
type SourceConfig struct {
	// Endpoint is the base URL of the catalog query service
	Endpoint string `yaml:"endpoint" json:"endpoint"`
	// MaxRows caps the number of rows requested per query (0 = service default)
	MaxRows int `yaml:"max_rows" json:"max_rows"`
	// AcceptGzip requests gzip-encoded responses
	AcceptGzip bool `yaml:"accept_gzip" json:"accept_gzip"`
}

// TimeoutConfig contains timeout settings. These prevent a blocking
// fetch from hanging indefinitely.
type TimeoutConfig struct {
	// Request timeout for a complete fetch round trip
	Request time.Duration `yaml:"request" json:"request"`
	// Connection timeout for establishing the HTTP connection
	Connection time.Duration `yaml:"connection" json:"connection"`
}

// ReliabilityConfig contains retry settings. Only transient connection
// errors are retried; schema and parse errors fail fast.
type ReliabilityConfig struct {
	// RetryAttempts sets maximum retry attempts for failed fetches
	RetryAttempts int `yaml:"retry_attempts" json:"retry_attempts"`
	// RetryDelay is the initial delay between retries
	RetryDelay time.Duration `yaml:"retry_delay" json:"retry_delay"`
	// RetryMultiplier increases delay exponentially
	RetryMultiplier float64 `yaml:"retry_multiplier" json:"retry_multiplier"`
	// MaxRetryDelay caps the maximum retry delay
	MaxRetryDelay time.Duration `yaml:"max_retry_delay" json:"max_retry_delay"`
}

// ObservabilityConfig contains logging and metrics settings.
type ObservabilityConfig struct {
	// LogLevel sets the log level (debug, info, warn, error)
	LogLevel string `yaml:"log_level" json:"log_level"`
	// EnableMetrics enables Prometheus metric collection
	EnableMetrics bool `yaml:"enable_metrics" json:"enable_metrics"`
}

// NewBaseConfig creates a BaseConfig with sensible defaults.
func NewBaseConfig(name, sourceType string) *BaseConfig {
	return &BaseConfig{
		Name:    name,
		Type:    sourceType,
		Version: "1.0",
		Source: SourceConfig{
			AcceptGzip: true,
		},
		Timeouts: TimeoutConfig{
			Request:    60 * time.Second,
			Connection: 10 * time.Second,
		},
		Reliability: ReliabilityConfig{
			RetryAttempts:   3,
			RetryDelay:      time.Second,
			RetryMultiplier: 2.0,
			MaxRetryDelay:   30 * time.Second,
		},
		Observability: ObservabilityConfig{
			LogLevel:      "info",
			EnableMetrics: true,
		},
	}
}

// Validate checks the configuration for consistency.
func (c *BaseConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	if c.Type == "" {
		return fmt.Errorf("type is required")
	}
	if c.Source.Endpoint == "" {
		return fmt.Errorf("source.endpoint is required")
	}
	if c.Source.MaxRows < 0 {
		return fmt.Errorf("source.max_rows must be >= 0")
	}
	if c.Timeouts.Request <= 0 {
		return fmt.Errorf("timeouts.request must be positive")
	}
	if c.Reliability.RetryAttempts < 0 {
		return fmt.Errorf("reliability.retry_attempts must be >= 0")
	}
	if c.Reliability.RetryAttempts > 0 && c.Reliability.RetryMultiplier < 1 {
		return fmt.Errorf("reliability.retry_multiplier must be >= 1")
	}
	return nil
}
