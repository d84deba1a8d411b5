package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig indicates the configuration failed validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Store backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// Config is the root configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Store    StoreConfig    `yaml:"store"`
	Cache    CacheConfig    `yaml:"cache"`
	Engine   EngineConfig   `yaml:"engine"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Commerce CommerceConfig `yaml:"commerce"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	// Addr is the listen address. Default: ":8470".
	Addr string `yaml:"addr"`

	// ReadTimeout bounds request header+body reads. Default: 10s.
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout bounds response writes. Default: 30s.
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// ShutdownTimeout bounds graceful shutdown. Default: 15s.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// UnmarshalYAML decodes duration fields from strings like "30s" while
// keeping values the document does not mention.
func (c *ServerConfig) UnmarshalYAML(value *yaml.Node) error {
	raw := struct {
		Addr            string `yaml:"addr"`
		ReadTimeout     string `yaml:"read_timeout"`
		WriteTimeout    string `yaml:"write_timeout"`
		ShutdownTimeout string `yaml:"shutdown_timeout"`
	}{
		Addr:            c.Addr,
		ReadTimeout:     c.ReadTimeout.String(),
		WriteTimeout:    c.WriteTimeout.String(),
		ShutdownTimeout: c.ShutdownTimeout.String(),
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	c.Addr = raw.Addr
	for _, f := range []struct {
		name string
		src  string
		dst  *time.Duration
	}{
		{"server.read_timeout", raw.ReadTimeout, &c.ReadTimeout},
		{"server.write_timeout", raw.WriteTimeout, &c.WriteTimeout},
		{"server.shutdown_timeout", raw.ShutdownTimeout, &c.ShutdownTimeout},
	} {
		d, err := time.ParseDuration(f.src)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = d
	}
	return nil
}

// StoreConfig selects and configures the template store backend.
type StoreConfig struct {
	// Backend is one of "memory", "sqlite", "file". Default: "memory".
	Backend string `yaml:"backend"`

	// Path is the database file (sqlite) or the template file/directory
	// (file). Required for those backends.
	Path string `yaml:"path"`

	// Watch enables hot reload of the file backend via fsnotify.
	Watch bool `yaml:"watch"`
}

// CacheConfig configures the optional Redis decision cache.
type CacheConfig struct {
	// Enabled turns the decision cache on.
	Enabled bool `yaml:"enabled"`

	// Addr is the Redis address, host:port. Default: "localhost:6379".
	Addr string `yaml:"addr"`

	// TTL is how long cached decisions stay valid. Default: 1m.
	TTL time.Duration `yaml:"ttl"`

	// FlushSchedule is a cron expression for scheduled cache flushes.
	// Empty disables scheduled flushing.
	FlushSchedule string `yaml:"flush_schedule"`
}

// UnmarshalYAML decodes the TTL from strings like "5m" while keeping
// values the document does not mention.
func (c *CacheConfig) UnmarshalYAML(value *yaml.Node) error {
	raw := struct {
		Enabled       bool   `yaml:"enabled"`
		Addr          string `yaml:"addr"`
		TTL           string `yaml:"ttl"`
		FlushSchedule string `yaml:"flush_schedule"`
	}{
		Enabled:       c.Enabled,
		Addr:          c.Addr,
		TTL:           c.TTL.String(),
		FlushSchedule: c.FlushSchedule,
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	ttl, err := time.ParseDuration(raw.TTL)
	if err != nil {
		return fmt.Errorf("cache.ttl: %w", err)
	}
	c.Enabled = raw.Enabled
	c.Addr = raw.Addr
	c.TTL = ttl
	c.FlushSchedule = raw.FlushSchedule
	return nil
}

// EngineConfig carries resolver limits.
type EngineConfig struct {
	// MaxTemplates caps templates considered per resolution pass.
	// Default: 500.
	MaxTemplates int `yaml:"max_templates"`

	// MaxConditionsPerTemplate caps conditions evaluated per template.
	// Default: 100.
	MaxConditionsPerTemplate int `yaml:"max_conditions_per_template"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	// Level is "debug", "info", "warn" or "error". Default: "info".
	Level string `yaml:"level"`

	// Format is "json" or "text". Default: "text".
	Format string `yaml:"format"`
}

// MetricsConfig configures Prometheus metric naming.
type MetricsConfig struct {
	// Enabled exposes /metrics. Default: true.
	Enabled bool `yaml:"enabled"`

	// Namespace prefixes all metric names. Default: "atrium".
	Namespace string `yaml:"namespace"`

	// Subsystem is the second name segment. Default: "resolver".
	Subsystem string `yaml:"subsystem"`
}

// CommerceConfig gates the storefront condition kinds.
type CommerceConfig struct {
	// Enabled registers the storefront predicates. Without it storefront
	// conditions fail closed.
	Enabled bool `yaml:"enabled"`
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory:
	case BackendSQLite, BackendFile:
		if c.Store.Path == "" {
			return fmt.Errorf("%w: store.path is required for the %s backend", ErrInvalidConfig, c.Store.Backend)
		}
	default:
		return fmt.Errorf("%w: unknown store backend %q", ErrInvalidConfig, c.Store.Backend)
	}
	if c.Store.Watch && c.Store.Backend != BackendFile {
		return fmt.Errorf("%w: store.watch requires the file backend", ErrInvalidConfig)
	}

	if c.Cache.Enabled {
		if c.Cache.Addr == "" {
			return fmt.Errorf("%w: cache.addr is required when the cache is enabled", ErrInvalidConfig)
		}
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("%w: cache.ttl must be positive", ErrInvalidConfig)
		}
		if c.Cache.FlushSchedule != "" {
			if _, err := cron.ParseStandard(c.Cache.FlushSchedule); err != nil {
				return fmt.Errorf("%w: invalid cache.flush_schedule: %v", ErrInvalidConfig, err)
			}
		}
	}

	if c.Engine.MaxTemplates <= 0 {
		return fmt.Errorf("%w: engine.max_templates must be positive", ErrInvalidConfig)
	}
	if c.Engine.MaxConditionsPerTemplate <= 0 {
		return fmt.Errorf("%w: engine.max_conditions_per_template must be positive", ErrInvalidConfig)
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr is required", ErrInvalidConfig)
	}
	return nil
}
