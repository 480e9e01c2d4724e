package config

import (
	"strings"

	"github.com/mrz1836/conform/internal/constants"
	"github.com/mrz1836/conform/internal/errors"
)

// Validate checks the configuration for invalid values and returns the first
// failure found.
//
// Validation rules:
//   - run.parallelism must be between 1 and MaxParallelism
//   - report.format must be json or yaml
//   - report.dir and docs.dir must not be empty
//   - log rotation values must not be negative
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}
	if err := validateRunConfig(&cfg.Run); err != nil {
		return err
	}
	if err := validateReportConfig(&cfg.Report); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.Docs.Dir) == "" {
		return errors.Wrap(errors.ErrEmptyValue, "docs.dir must not be empty")
	}
	return validateLogConfig(&cfg.Log)
}

func validateRunConfig(cfg *RunConfig) error {
	if cfg.Parallelism < 1 || cfg.Parallelism > constants.MaxParallelism {
		return errors.Wrapf(errors.ErrValueOutOfRange,
			"run.parallelism must be between 1 and %d, got %d", constants.MaxParallelism, cfg.Parallelism)
	}
	return nil
}

func validateReportConfig(cfg *ReportConfig) error {
	switch cfg.Format {
	case constants.ReportFormatJSON, constants.ReportFormatYAML:
	default:
		return errors.Wrapf(errors.ErrInvalidReportFormat,
			"report.format must be %q or %q, got %q", constants.ReportFormatJSON, constants.ReportFormatYAML, cfg.Format)
	}
	if strings.TrimSpace(cfg.Dir) == "" {
		return errors.Wrap(errors.ErrEmptyValue, "report.dir must not be empty")
	}
	return nil
}

func validateLogConfig(cfg *LogConfig) error {
	if cfg.MaxSizeMB < 0 || cfg.MaxBackups < 0 || cfg.MaxAgeDays < 0 {
		return errors.Wrapf(errors.ErrValueOutOfRange,
			"log rotation values cannot be negative, got max_size_mb=%d max_backups=%d max_age_days=%d",
			cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	}
	return nil
}
