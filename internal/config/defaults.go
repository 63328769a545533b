package config

import "github.com/spf13/viper"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsNamespace = "chemsem"

	DefaultCardinalityThresholdDeg = 5.0
	DefaultMinRingSize             = 5
	DefaultMaxRingSize             = 7

	DefaultBatchConcurrency = 4
)

// DefaultProjections lists the projection conventions enabled by default.
var DefaultProjections = []string{"haworth", "chair"}

// ─────────────────────────────────────────────────────────────────────────────
// ApplyDefaults fills zero-value fields in cfg with well-known defaults.
// It must be called after unmarshalling raw config data and before Validate()
// so that optional-but-defaulted fields are never seen as missing.
// ─────────────────────────────────────────────────────────────────────────────

// ApplyDefaults fills every zero-value field in cfg with the default.  Fields
// that have already been set are left unchanged so that explicit
// configuration always wins.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}

	// ── Perception ────────────────────────────────────────────────────────────
	// An explicitly empty list disables every projection, so only nil is
	// defaulted.
	if cfg.Perception.Projections == nil {
		cfg.Perception.Projections = append([]string(nil), DefaultProjections...)
	}
	if cfg.Perception.CardinalityThresholdDeg == 0 {
		cfg.Perception.CardinalityThresholdDeg = DefaultCardinalityThresholdDeg
	}
	if cfg.Perception.MinRingSize == 0 {
		cfg.Perception.MinRingSize = DefaultMinRingSize
	}
	if cfg.Perception.MaxRingSize == 0 {
		cfg.Perception.MaxRingSize = DefaultMaxRingSize
	}

	// ── Batch ─────────────────────────────────────────────────────────────────
	if cfg.Batch.Concurrency == 0 {
		cfg.Batch.Concurrency = DefaultBatchConcurrency
	}
}

// registerKeys declares every key on v so that AutomaticEnv overrides reach
// Unmarshal even when the key is absent from the file.  Values are the
// defaults ApplyDefaults would fill.
func registerKeys(v *viper.Viper) {
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)
	v.SetDefault("log.output_paths", []string{"stderr"})
	v.SetDefault("log.error_output_paths", []string{"stderr"})
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.namespace", DefaultMetricsNamespace)
	v.SetDefault("metrics.runtime", false)
	v.SetDefault("perception.projections", DefaultProjections)
	v.SetDefault("perception.cardinality_threshold_deg", DefaultCardinalityThresholdDeg)
	v.SetDefault("perception.min_ring_size", DefaultMinRingSize)
	v.SetDefault("perception.max_ring_size", DefaultMaxRingSize)
	v.SetDefault("batch.concurrency", DefaultBatchConcurrency)
}
