// Package config holds checker configuration: what to probe, where, and
// how aggressively. Values come from an optional YAML file overridden by
// CLI flags; timeout and retry tuning comes from environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the checker's runtime configuration.
type Config struct {
	// Namespace the probe pods and services are created in.
	Namespace string `yaml:"namespace"`

	// Image for the probe pods. Anything serving HTTP on port 80 works.
	Image string `yaml:"image"`

	// Kubeconfig path for out-of-cluster use; empty means in-cluster.
	Kubeconfig string `yaml:"kubeconfig"`

	// Interval between cycle starts in continuous mode.
	Interval time.Duration `yaml:"interval"`

	// MetricsAddr is the bind address of the metrics HTTP endpoint.
	MetricsAddr string `yaml:"metricsAddr"`

	// Once runs a single cycle and exits.
	Once bool `yaml:"once"`

	// Debug enables development logging.
	Debug bool `yaml:"debug"`

	// Tuning holds timeout, concurrency, and retry settings.
	Tuning Tuning `yaml:"-"`
}

// Default returns the configuration used when nothing is specified.
func Default() *Config {
	return &Config{
		Namespace:   "default",
		Image:       "nginx",
		Interval:    15 * time.Minute,
		MetricsAddr: ":8080",
		Tuning:      *LoadTuning(),
	}
}

// LoadFile reads a YAML config file over the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the checker cannot run with.
func (c *Config) Validate() error {
	if c.Namespace == "" {
		return fmt.Errorf("namespace must not be empty")
	}
	if c.Image == "" {
		return fmt.Errorf("image must not be empty")
	}
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %v", c.Interval)
	}
	if c.MetricsAddr == "" {
		return fmt.Errorf("metrics bind address must not be empty")
	}
	return nil
}
