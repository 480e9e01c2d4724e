package config

import (
	"github.com/spf13/viper"

	"github.com/mrz1836/conform/internal/constants"
)

// DefaultConfig returns a new Config with default values.
// These defaults are the base layer that config files, environment
// variables and CLI flags override.
func DefaultConfig() *Config {
	return &Config{
		Run: RunConfig{
			StopFast:    false,
			Parallelism: constants.DefaultParallelism,
		},
		Report: ReportConfig{
			Dir:    constants.ReportsDir,
			Format: constants.ReportFormatJSON,
		},
		Docs: DocsConfig{
			Dir: constants.DocsDir,
		},
		Log: LogConfig{
			// Rotate at 10MB, keep 5 files for 30 days.
			MaxSizeMB:  constants.DefaultLogMaxSizeMB,
			MaxBackups: constants.DefaultLogMaxBackups,
			MaxAgeDays: constants.DefaultLogMaxAgeDays,
		},
	}
}

// setDefaults configures all default values on the Viper instance.
// Keys must match the mapstructure tag names exactly.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("run.stop_fast", d.Run.StopFast)
	v.SetDefault("run.parallelism", d.Run.Parallelism)

	v.SetDefault("report.dir", d.Report.Dir)
	v.SetDefault("report.format", d.Report.Format)

	v.SetDefault("docs.dir", d.Docs.Dir)

	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.max_age_days", d.Log.MaxAgeDays)
}
