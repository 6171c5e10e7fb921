// Package config loads stepflow settings from stepflow.yaml and STEPFLOW_*
// environment variables.
package config

import (
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. STEPFLOW_LOG_LEVEL.
const EnvPrefix = "STEPFLOW"

// Config holds the configuration for the CLI.
type Config struct {
	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"` // text or json
	} `mapstructure:"log"`
	Simulation struct {
		StepPause time.Duration `mapstructure:"step_pause"`
		MinDelay  time.Duration `mapstructure:"min_delay"`
		MaxDelay  time.Duration `mapstructure:"max_delay"`
		Seed      int64         `mapstructure:"seed"` // 0 draws a new seed per run
	} `mapstructure:"simulation"`
	Store struct {
		Dir string `mapstructure:"dir"`
	} `mapstructure:"store"`
}

// keys lists every setting so environment variables are picked up by Unmarshal.
var keys = []string{
	"log.level",
	"log.format",
	"simulation.step_pause",
	"simulation.min_delay",
	"simulation.max_delay",
	"simulation.seed",
	"store.dir",
}

// Default returns the built-in settings.
func Default() Config {
	var c Config
	c.Log.Level = "info"
	c.Log.Format = "text"
	c.Simulation.StepPause = 500 * time.Millisecond
	c.Simulation.MinDelay = 1000 * time.Millisecond
	c.Simulation.MaxDelay = 3000 * time.Millisecond
	c.Store.Dir = ".stepflow"
	return c
}

// New returns a viper instance set up to read stepflow.yaml from the working
// directory and STEPFLOW_* variables.
func New() *viper.Viper {
	v := viper.New()
	v.SetConfigName("stepflow")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, k := range keys {
		_ = v.BindEnv(k)
	}
	return v
}

// Load reads the config file (path, or stepflow.yaml when path is empty) and
// the environment, then merges the result over Default. A missing
// stepflow.yaml is not an error; a missing explicit path is.
func Load(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, errors.Wrap(err, "read config")
		}
	}

	var loaded Config
	if err := v.Unmarshal(&loaded); err != nil {
		return Config{}, errors.Wrap(err, "decode config")
	}

	cfg := Default()
	if err := mergo.Merge(&cfg, loaded, mergo.WithOverride); err != nil {
		return Config{}, errors.Wrap(err, "merge config")
	}
	return cfg, cfg.Validate()
}

// Validate checks value ranges.
func (c Config) Validate() error {
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return errors.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	if c.Simulation.MinDelay < 0 || c.Simulation.StepPause < 0 {
		return errors.New("simulation durations must not be negative")
	}
	if c.Simulation.MaxDelay < c.Simulation.MinDelay {
		return errors.Errorf("simulation.max_delay (%s) is below simulation.min_delay (%s)",
			c.Simulation.MaxDelay, c.Simulation.MinDelay)
	}
	return nil
}
