package constants

// Log file names.
const (
	// CLILogFileName is the name of the global CLI log file.
	// This file is located in ~/.conform/logs/conform.log
	CLILogFileName = "conform.log"
)

// Configuration file names.
const (
	// GlobalConfigName is the name of the global conform configuration file.
	// This file is located in the conform home directory.
	GlobalConfigName = "config.yaml"

	// ProjectConfigDir is the project-local directory holding config.yaml.
	ProjectConfigDir = ".conform"
)

// Report file names.
const (
	// ScenarioReportPrefix prefixes per-scenario report files.
	ScenarioReportPrefix = "scenario-"

	// RunReportFileName is the base name (without extension) of the run report.
	RunReportFileName = "run"
)
