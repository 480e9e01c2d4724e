// Package constants provides centralized constant values used throughout conform.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

// Directory names and paths used by conform for organizing data.
const (
	// ConformHome is the hidden directory name where conform stores its global
	// configuration and logs. This directory is created in the user's home directory.
	ConformHome = ".conform"

	// ReportsDir is the default directory name where reports are written.
	ReportsDir = "reports"

	// LogsDir is the directory name where log files are stored.
	LogsDir = "logs"

	// DocsDir is the default directory scanned for scenario documentation.
	DocsDir = "scenarios"
)

// Environment configuration.
const (
	// EnvPrefix is the prefix for environment variable overrides (CONFORM_RUN_STOP_FAST, ...).
	EnvPrefix = "CONFORM"
)

// Run defaults.
const (
	// DefaultParallelism runs scenario instances one after another.
	DefaultParallelism = 1

	// MaxParallelism bounds the number of scenario instances driven concurrently.
	MaxParallelism = 64
)

// Log rotation defaults for the CLI log file.
const (
	DefaultLogMaxSizeMB  = 10
	DefaultLogMaxBackups = 5
	DefaultLogMaxAgeDays = 30
)

// Report formats.
const (
	// ReportFormatJSON writes reports as indented JSON.
	ReportFormatJSON = "json"

	// ReportFormatYAML writes reports as YAML.
	ReportFormatYAML = "yaml"
)

// ReportSchemaVersion is the current schema version for persisted reports.
// Increment this when making breaking changes to the report structure.
const ReportSchemaVersion = 1
