package config

import "time"

// Default returns the default configuration: in-memory store, no cache,
// text logging, metrics on.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8470",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Store: StoreConfig{
			Backend: BackendMemory,
		},
		Cache: CacheConfig{
			Addr: "localhost:6379",
			TTL:  time.Minute,
		},
		Engine: EngineConfig{
			MaxTemplates:             500,
			MaxConditionsPerTemplate: 100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "atrium",
			Subsystem: "resolver",
		},
	}
}
