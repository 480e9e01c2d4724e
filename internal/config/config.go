// Package config provides configuration management for conform with layered precedence.
//
// Configuration sources are loaded in the following order (highest precedence first):
//  1. CLI flags (passed via LoadWithOverrides)
//  2. Environment variables (CONFORM_* prefix)
//  3. Project config (.conform/config.yaml)
//  4. Global config (~/.conform/config.yaml)
//  5. Built-in defaults
//
// Each higher level completely overrides the lower level for the same key.
//
// IMPORTANT: This package may import internal/constants and internal/errors,
// but MUST NOT import internal/domain or other internal packages.
package config

// Config is the root configuration structure for conform.
type Config struct {
	// Run controls how scenarios are driven.
	Run RunConfig `yaml:"run" mapstructure:"run"`

	// Report controls where and how reports are persisted.
	Report ReportConfig `yaml:"report" mapstructure:"report"`

	// Docs locates scenario documentation files.
	Docs DocsConfig `yaml:"docs" mapstructure:"docs"`

	// Log controls the rotating CLI log file.
	Log LogConfig `yaml:"log" mapstructure:"log"`
}

// RunConfig contains settings for a test run.
type RunConfig struct {
	// StopFast escalates Medium and High check failures outside cleanup to Critical.
	// Default: false
	StopFast bool `yaml:"stop_fast" mapstructure:"stop_fast"`

	// Parallelism is the number of scenarios driven concurrently.
	// Default: 1
	Parallelism int `yaml:"parallelism" mapstructure:"parallelism"`
}

// ReportConfig contains settings for report persistence.
type ReportConfig struct {
	// Dir is the directory reports are written below.
	// Default: "reports"
	Dir string `yaml:"dir" mapstructure:"dir"`

	// Format is "json" or "yaml".
	// Default: "json"
	Format string `yaml:"format" mapstructure:"format"`
}

// DocsConfig contains settings for scenario documentation.
type DocsConfig struct {
	// Dir is the directory scanned for documentation files.
	// Default: "scenarios"
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// LogConfig contains settings for the CLI log file rotation.
type LogConfig struct {
	MaxSizeMB  int `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int `yaml:"max_age_days" mapstructure:"max_age_days"`
}
