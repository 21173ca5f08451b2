// Package config provides configuration loading for forward-slots: the
// forwarding manifests evaluated by the CLI and the API, and the settings of
// the API server itself.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/stacklok/forward-slots/internal/telemetry"
)

const (
	// EnvPrefix is the prefix of every environment variable read by forward-slots
	EnvPrefix = "FORWARD_SLOTS"

	// DefaultAddress is the address the API server listens on
	DefaultAddress = ":8080"
)

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path string
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks to prevent symlink attacks.
		// Note that this calls filepath.Clean internally.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		// Validate the path to prevent path traversal attacks
		if !filepath.IsAbs(realPath) {
			if !filepath.IsLocal(realPath) {
				return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
			}
		}

		cfg.path = realPath
		return nil
	}
}

// readFile applies the loader options and returns the file contents
func readFile(opts []Option) ([]byte, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	// Files are the only configuration source for now.
	if loaderCfg.path == "" {
		return nil, fmt.Errorf("path is required")
	}

	data, err := os.ReadFile(loaderCfg.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return data, nil
}

// Config represents the configuration of the API server
type Config struct {
	// Address is the listen address of the HTTP server
	// Defaults to ":8080" if not specified
	Address string `yaml:"address,omitempty"`

	// Manifest is an optional path or http(s) URL of the manifest served by
	// GET /api/v1/forward
	Manifest string `yaml:"manifest,omitempty"`

	// WatchManifest reloads a local manifest whenever its file changes
	WatchManifest bool `yaml:"watchManifest,omitempty"`

	// Telemetry configures OpenTelemetry tracing and metrics
	Telemetry *telemetry.Config `yaml:"telemetry,omitempty"`
}

// LoadConfig loads and parses the server configuration from a YAML file
func LoadConfig(opts ...Option) (*Config, error) {
	data, err := readFile(opts)
	if err != nil {
		return nil, err
	}
	return ParseConfig(data)
}

// ParseConfig parses and validates a YAML server configuration
func ParseConfig(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// GetAddress returns the listen address, using DefaultAddress if not specified
func (c *Config) GetAddress() string {
	if c == nil || c.Address == "" {
		return DefaultAddress
	}
	return c.Address
}

func (c *Config) validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	var errs []error
	if err := c.Telemetry.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("telemetry: %w", err))
	}
	return errors.Join(errs...)
}
