// Package config defines the configuration structures of the chemsem toolkit.
// Loading lives in loader.go and defaults in defaults.go; this file holds only
// plain data types and validation.
package config

import (
	"fmt"
	"strings"

	"github.com/JibranRasheed/NCDK-sub001/internal/infrastructure/monitoring/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// MetricsConfig controls the Prometheus registry.
type MetricsConfig struct {
	Enabled   bool              `mapstructure:"enabled"`
	Namespace string            `mapstructure:"namespace"`
	Runtime   bool              `mapstructure:"runtime"` // adds Go runtime and process collectors
	Labels    map[string]string `mapstructure:"labels"`  // constant labels on every series
}

// PerceptionConfig tunes 2D projection recognition.
type PerceptionConfig struct {
	Projections             []string `mapstructure:"projections"` // subset of "haworth" | "chair"
	CardinalityThresholdDeg float64  `mapstructure:"cardinality_threshold_deg"`
	MinRingSize             int      `mapstructure:"min_ring_size"`
	MaxRingSize             int      `mapstructure:"max_ring_size"`
}

// BatchConfig bounds concurrent batch adaptation.
type BatchConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure.
type Config struct {
	Log        logging.LogConfig `mapstructure:"log"`
	Metrics    MetricsConfig     `mapstructure:"metrics"`
	Perception PerceptionConfig  `mapstructure:"perception"`
	Batch      BatchConfig       `mapstructure:"batch"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config and
// returns the first error encountered.
func (c *Config) Validate() error {
	// Log
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	// Metrics
	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return fmt.Errorf("config: metrics.namespace is required when metrics are enabled")
	}

	// Perception
	seen := make(map[string]bool, len(c.Perception.Projections))
	for _, p := range c.Perception.Projections {
		switch p {
		case "haworth", "chair":
		default:
			return fmt.Errorf("config: perception.projections entry %q is invalid; expected haworth|chair", p)
		}
		if seen[p] {
			return fmt.Errorf("config: perception.projections lists %q twice", p)
		}
		seen[p] = true
	}
	if t := c.Perception.CardinalityThresholdDeg; t <= 0 || t >= 45 {
		return fmt.Errorf("config: perception.cardinality_threshold_deg %g is out of range (0, 45)", t)
	}
	if c.Perception.MinRingSize < 3 {
		return fmt.Errorf("config: perception.min_ring_size must be ≥ 3, got %d", c.Perception.MinRingSize)
	}
	if c.Perception.MaxRingSize < c.Perception.MinRingSize {
		return fmt.Errorf("config: perception.max_ring_size %d is below min_ring_size %d",
			c.Perception.MaxRingSize, c.Perception.MinRingSize)
	}

	// Batch
	if c.Batch.Concurrency < 1 {
		return fmt.Errorf("config: batch.concurrency must be ≥ 1, got %d", c.Batch.Concurrency)
	}

	return nil
}
