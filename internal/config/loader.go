package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/JibranRasheed/NCDK-sub001/pkg/errors"
)

// envPrefix is the environment variable prefix used by all settings.
const envPrefix = "CHEMSEM"

// newViper builds a pre-configured Viper instance: YAML file type, CHEMSEM_
// env prefix, automatic env binding, and a key replacer that maps "." → "_"
// so that nested keys like "batch.concurrency" resolve to
// "CHEMSEM_BATCH_CONCURRENCY".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	registerKeys(v)
	return v
}

// Load reads the YAML file at configPath, merges any CHEMSEM_* environment
// variable overrides, applies defaults for unset fields, and validates the
// result.  Failures carry ErrCodeConfigInvalid.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, fmt.Sprintf("read config file %q", configPath))
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config from CHEMSEM_* environment variables alone.
//
// Environment variable naming convention:
//
//	CHEMSEM_<SECTION>_<FIELD>   e.g.  CHEMSEM_LOG_LEVEL, CHEMSEM_BATCH_CONCURRENCY
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

// unmarshalAndFinalize unmarshals viper state into a Config struct, applies
// defaults, and validates the result.
func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "unmarshal configuration")
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "validate configuration")
	}

	return cfg, nil
}

// Watch monitors configPath and invokes onChange with the re-parsed Config
// and the triggering file event whenever the file changes.  A change that
// fails to parse or validate is skipped.  Only the perception thresholds and
// log level are meant to be applied at runtime.
//
// Watch is non-blocking; viper owns the watcher goroutine.  The initial read
// error, if any, is returned.
func Watch(configPath string, onChange func(*Config, fsnotify.Event)) error {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigInvalid, fmt.Sprintf("read config file %q", configPath))
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			return
		}
		onChange(cfg, e)
	})
	v.WatchConfig()
	return nil
}

// MustLoad is a convenience wrapper around Load that panics on any error.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}
