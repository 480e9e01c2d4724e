package constants

import "strings"

// ScenarioPhase represents the lifecycle position of a scenario instance.
// Phase values use snake_case for JSON serialization compatibility.
type ScenarioPhase string

// Scenario phase constants define the valid states a scenario can be in.
// These follow the lifecycle enforced by the scenario engine:
//
//	Undefined → NotStarted
//	NotStarted → ReadyForTestCase
//	ReadyForTestCase → ReadyForTestStep, ReadyForCleanup
//	ReadyForTestStep → RunningTestStep, ReadyForTestCase, ReadyForCleanup
//	RunningTestStep → ReadyForTestStep, ReadyForCleanup
//	ReadyForCleanup → CleaningUp, Complete
//	CleaningUp → Complete
const (
	// PhaseUndefined is the zero phase before the documentation catalog is built.
	PhaseUndefined ScenarioPhase = "undefined"

	// PhaseNotStarted indicates the engine is constructed but the scenario has not begun.
	PhaseNotStarted ScenarioPhase = "not_started"

	// PhaseReadyForTestCase indicates the scenario is waiting for a test case to begin.
	PhaseReadyForTestCase ScenarioPhase = "ready_for_test_case"

	// PhaseReadyForTestStep indicates a test case is open and waiting for a step.
	PhaseReadyForTestStep ScenarioPhase = "ready_for_test_step"

	// PhaseRunningTestStep indicates a test step is open; queries and checks are accepted.
	PhaseRunningTestStep ScenarioPhase = "running_test_step"

	// PhaseReadyForCleanup indicates the case hierarchy is closed and cleanup may begin.
	PhaseReadyForCleanup ScenarioPhase = "ready_for_cleanup"

	// PhaseCleaningUp indicates the documented cleanup step is running.
	// Failures recorded in this phase are never escalated.
	PhaseCleaningUp ScenarioPhase = "cleaning_up"

	// PhaseComplete is the terminal phase; the report is final.
	PhaseComplete ScenarioPhase = "complete"
)

// String returns the string representation of the ScenarioPhase.
func (p ScenarioPhase) String() string {
	return string(p)
}

// Severity classifies a failed check and determines whether execution may continue.
type Severity string

// Severity constants, ordered from least to most severe.
const (
	// SeverityLow failures are informational and never affect success.
	SeverityLow Severity = "Low"

	// SeverityMedium failures mark the scenario unsuccessful but allow it to continue.
	SeverityMedium Severity = "Medium"

	// SeverityHigh failures stop the current scenario.
	SeverityHigh Severity = "High"

	// SeverityCritical failures stop the whole test run.
	SeverityCritical Severity = "Critical"
)

// String returns the string representation of the Severity.
func (s Severity) String() string {
	return string(s)
}

// IsValid reports whether s is one of the four documented severities.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	default:
		return false
	}
}

// ParseSeverity converts a case-insensitive severity name into a Severity.
// The second return value is false when the name is not a known severity.
func ParseSeverity(name string) (Severity, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "low":
		return SeverityLow, true
	case "medium":
		return SeverityMedium, true
	case "high":
		return SeverityHigh, true
	case "critical":
		return SeverityCritical, true
	default:
		return "", false
	}
}

// AllSeverities returns the severities in ascending order.
func AllSeverities() []Severity {
	return []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
}
