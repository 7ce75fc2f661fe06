// Package config provides configuration management for the leaprecord CLI.
//
// This package extends the shared configuration types from internal/config
// with CLI-specific fields and functionality. The shared types are re-exported
// here via type aliases for convenience.
package config

import (
	sharedcfg "github.com/leapstack-labs/leaprecord/internal/config"
)

// TargetConfig is an alias for the shared target configuration.
type TargetConfig = sharedcfg.TargetConfig

// RecordConfig is an alias for the shared record definition.
type RecordConfig = sharedcfg.RecordConfig

// Config holds all CLI configuration options.
type Config struct {
	Environment  string                   `koanf:"environment"`
	Verbose      bool                     `koanf:"verbose"`
	OutputFormat string                   `koanf:"output"`
	Target       *TargetConfig            `koanf:"target"`
	Records      map[string]*RecordConfig `koanf:"records"`
	Environments map[string]EnvConfig     `koanf:"environments"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
}

// EnvConfig holds environment-specific configuration overrides.
type EnvConfig struct {
	Target *TargetConfig `koanf:"target"`
}

// Project returns the shared view of the configuration.
func (c *Config) Project() *sharedcfg.ProjectConfig {
	return &sharedcfg.ProjectConfig{Target: c.Target, Records: c.Records}
}

// Default configuration values.
const (
	DefaultTargetType = "sqlite"
	DefaultEnv        = "dev"
	DefaultOutput     = "auto" // Auto-detect: TTY=text, non-TTY=markdown
)
