// Package config defines the YAML configuration for the atrium server: the
// HTTP listener, the template store backend, the optional Redis decision
// cache, engine limits, logging, and metrics naming. Load reads a file,
// applies defaults, and validates; a missing file yields the defaults.
package config
