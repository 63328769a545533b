package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JibranRasheed/NCDK-sub001/internal/config"
)

// validConfig returns a Config that passes Validate().
func validConfig() *config.Config {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	return cfg
}

func TestConfig_Validate_ValidConfig(t *testing.T) {
	t.Parallel()
	assert.NoError(t, validConfig().Validate())
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		mutate func(*config.Config)
		field  string
	}{
		{"log level", func(c *config.Config) { c.Log.Level = "trace" }, "log.level"},
		{"log format", func(c *config.Config) { c.Log.Format = "text" }, "log.format"},
		{"metrics namespace", func(c *config.Config) { c.Metrics.Enabled = true; c.Metrics.Namespace = "" }, "metrics.namespace"},
		{"unknown projection", func(c *config.Config) { c.Perception.Projections = []string{"boat"} }, "perception.projections"},
		{"duplicate projection", func(c *config.Config) { c.Perception.Projections = []string{"chair", "chair"} }, "perception.projections"},
		{"zero threshold", func(c *config.Config) { c.Perception.CardinalityThresholdDeg = -1 }, "cardinality_threshold_deg"},
		{"wide threshold", func(c *config.Config) { c.Perception.CardinalityThresholdDeg = 60 }, "cardinality_threshold_deg"},
		{"min ring", func(c *config.Config) { c.Perception.MinRingSize = 2 }, "min_ring_size"},
		{"ring bounds", func(c *config.Config) { c.Perception.MaxRingSize = 4 }, "max_ring_size"},
		{"concurrency", func(c *config.Config) { c.Batch.Concurrency = 0 }, "batch.concurrency"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestConfig_Validate_UppercaseLevel(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Log.Level = "DEBUG"
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate_NoProjections(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Perception.Projections = []string{}
	assert.NoError(t, cfg.Validate())
}
