package engine

import "fmt"

// Config contains configuration for the resolver.
type Config struct {
	// MaxTemplates caps how many templates a single resolution pass will
	// consider. Guards against a runaway repository.
	// Default: 500.
	MaxTemplates int

	// MaxConditionsPerTemplate caps how many conditions are evaluated per
	// template. Default: 100.
	MaxConditionsPerTemplate int
}

// DefaultConfig returns the default resolver configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxTemplates:             500,
		MaxConditionsPerTemplate: 100,
	}
}

// Validate validates the resolver configuration.
func (c *Config) Validate() error {
	if c.MaxTemplates <= 0 {
		return fmt.Errorf("%w: max templates must be positive", ErrInvalidConfig)
	}
	if c.MaxConditionsPerTemplate <= 0 {
		return fmt.Errorf("%w: max conditions per template must be positive", ErrInvalidConfig)
	}
	return nil
}

// WithMaxTemplates sets the per-pass template cap.
func (c *Config) WithMaxTemplates(n int) *Config {
	c.MaxTemplates = n
	return c
}

// WithMaxConditionsPerTemplate sets the per-template condition cap.
func (c *Config) WithMaxConditionsPerTemplate(n int) *Config {
	c.MaxConditionsPerTemplate = n
	return c
}
