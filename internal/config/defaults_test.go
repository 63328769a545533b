package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyDefaults_EmptyConfig(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, DefaultLogFormat, cfg.Log.Format)
	assert.Equal(t, DefaultMetricsNamespace, cfg.Metrics.Namespace)
	assert.Equal(t, DefaultProjections, cfg.Perception.Projections)
	assert.Equal(t, DefaultCardinalityThresholdDeg, cfg.Perception.CardinalityThresholdDeg)
	assert.Equal(t, DefaultMinRingSize, cfg.Perception.MinRingSize)
	assert.Equal(t, DefaultMaxRingSize, cfg.Perception.MaxRingSize)
	assert.Equal(t, DefaultBatchConcurrency, cfg.Batch.Concurrency)
}

func TestApplyDefaults_PreserveExistingValues(t *testing.T) {
	cfg := &Config{}
	cfg.Batch.Concurrency = 99
	cfg.Perception.Projections = []string{}
	ApplyDefaults(cfg)

	assert.Equal(t, 99, cfg.Batch.Concurrency)
	assert.Empty(t, cfg.Perception.Projections, "an explicit empty list disables projections")
}

func TestApplyDefaults_DoesNotAliasDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.Perception.Projections[0] = "boat"
	assert.Equal(t, "haworth", DefaultProjections[0])
}

func TestApplyDefaults_Nil(t *testing.T) {
	assert.NotPanics(t, func() { ApplyDefaults(nil) })
}
