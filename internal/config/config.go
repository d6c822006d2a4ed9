// Package config provides configuration loading and management for the
// xRegistry query server.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/xregistry-dev/xregistry-server/internal/telemetry"
)

const (
	// SourceTypeFile is the type for entity data stored in local files
	SourceTypeFile = "file"

	// SourceTypeAPI is the type for entity data fetched from API endpoints
	SourceTypeAPI = "api"
)

// Option defines the interface for configuration loader options
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

// Config represents the root configuration structure
type Config struct {
	// Registries lists the entity collections this server exposes
	Registries []RegistryConfig `yaml:"registries"`

	// Engine holds the shared filter engine settings
	Engine EngineConfig `yaml:"engine,omitempty"`

	// Telemetry configures tracing and metrics export
	Telemetry *telemetry.Config `yaml:"telemetry,omitempty"`
}

// RegistryConfig defines a single registry data source configuration
type RegistryConfig struct {
	// Name is the identifier for this registry
	Name string `yaml:"name"`

	// Type-specific configurations (only one should be set)
	File *FileConfig `yaml:"file,omitempty"`
	API  *APIConfig  `yaml:"api,omitempty"`
}

// Type returns the source type implied by the set source block.
func (r *RegistryConfig) Type() string {
	switch {
	case r.File != nil:
		return SourceTypeFile
	case r.API != nil:
		return SourceTypeAPI
	default:
		return ""
	}
}

// FileConfig defines local file source settings
type FileConfig struct {
	// Path is the path to the entity collection JSON file
	Path string `yaml:"path"`
}

// APIConfig defines API source settings
type APIConfig struct {
	// Endpoint is the base API URL; the provider appends /entities and
	// /entities/{name}
	Endpoint string `yaml:"endpoint"`

	// Timeout bounds individual upstream requests, as a duration string
	// such as "10s"
	Timeout string `yaml:"timeout,omitempty"`
}

// GetTimeout returns the parsed request timeout, or zero when unset.
func (a *APIConfig) GetTimeout() time.Duration {
	d, _ := time.ParseDuration(a.Timeout)
	return d
}

// EngineConfig holds filter engine settings shared by all registries
type EngineConfig struct {
	// MaxMetadataFetches caps metadata enrichment per evaluation
	MaxMetadataFetches int `yaml:"maxMetadataFetches,omitempty"`

	// FetchConcurrency bounds parallel in-flight metadata fetches
	FetchConcurrency int `yaml:"fetchConcurrency,omitempty"`

	// IndexedAttributes is the attribute index allow-list
	IndexedAttributes []string `yaml:"indexedAttributes,omitempty"`

	// Cache configures the per-registry result cache
	Cache CacheConfig `yaml:"cache,omitempty"`
}

// CacheConfig configures the result cache
type CacheConfig struct {
	// Capacity bounds the number of memoized evaluations
	Capacity int `yaml:"capacity,omitempty"`

	// MaxAge is how long an entry is served before it counts as a miss,
	// as a duration string such as "5m"
	MaxAge string `yaml:"maxAge,omitempty"`

	// Dir enables disk persistence of cache entries when set. Each
	// registry gets its own subdirectory.
	Dir string `yaml:"dir,omitempty"`

	// SweepInterval is how often expired entries are purged, as a
	// duration string; empty disables the background sweep
	SweepInterval string `yaml:"sweepInterval,omitempty"`
}

// GetMaxAge returns the parsed entry max age, or zero when unset.
func (c *CacheConfig) GetMaxAge() time.Duration {
	d, _ := time.ParseDuration(c.MaxAge)
	return d
}

// GetSweepInterval returns the parsed sweep interval, or zero when unset.
func (c *CacheConfig) GetSweepInterval() time.Duration {
	d, _ := time.ParseDuration(c.SweepInterval)
	return d
}

// Load reads and validates configuration using the supplied options
func Load(opts ...Option) (*Config, error) {
	loader := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loader); err != nil {
			return nil, err
		}
	}
	if loader.path == "" {
		return nil, fmt.Errorf("configuration path is required")
	}

	data, err := os.ReadFile(loader.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	if len(c.Registries) == 0 {
		return fmt.Errorf("at least one registry must be configured")
	}

	seen := make(map[string]bool, len(c.Registries))
	for i := range c.Registries {
		reg := &c.Registries[i]
		if reg.Name == "" {
			return fmt.Errorf("registry %d: name is required", i)
		}
		if seen[reg.Name] {
			return fmt.Errorf("duplicate registry name: %s", reg.Name)
		}
		seen[reg.Name] = true

		if err := reg.validateSource(); err != nil {
			return fmt.Errorf("registry %s: %w", reg.Name, err)
		}
	}

	if err := c.Engine.validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}

	if c.Telemetry != nil {
		if err := c.Telemetry.Validate(); err != nil {
			return fmt.Errorf("telemetry: %w", err)
		}
	}
	return nil
}

func (e *EngineConfig) validate() error {
	if err := validateDuration("cache.maxAge", e.Cache.MaxAge); err != nil {
		return err
	}
	return validateDuration("cache.sweepInterval", e.Cache.SweepInterval)
}

func validateDuration(field, value string) error {
	if value == "" {
		return nil
	}
	if _, err := time.ParseDuration(value); err != nil {
		return fmt.Errorf("%s must be a valid duration (e.g., '30s', '5m'): %w", field, err)
	}
	return nil
}

func (r *RegistryConfig) validateSource() error {
	if r.File != nil && r.API != nil {
		return fmt.Errorf("only one source type may be set")
	}
	switch {
	case r.File != nil:
		if r.File.Path == "" {
			return fmt.Errorf("file path is required")
		}
	case r.API != nil:
		if r.API.Endpoint == "" {
			return fmt.Errorf("api endpoint is required")
		}
		u, err := url.Parse(r.API.Endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("api endpoint must be a valid http(s) URL: %s", r.API.Endpoint)
		}
		if err := validateDuration("api.timeout", r.API.Timeout); err != nil {
			return err
		}
	default:
		return fmt.Errorf("a file or api source is required")
	}
	return nil
}
