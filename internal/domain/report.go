package domain

import (
	"time"

	"github.com/mrz1836/conform/internal/constants"
)

// ScenarioReport is the root of the report tree for one scenario instance.
// The tree is append-only: entries are never removed or rewritten once added.
//
// Example JSON representation:
//
//	{
//	    "name": "Nominal planning",
//	    "scenario_type": "scenarios.astm.NominalPlanning",
//	    "documentation_url": "https://example.com/nominal_planning.md",
//	    "start_time": "2025-12-27T10:00:00Z",
//	    "end_time": "2025-12-27T10:05:00Z",
//	    "cases": [{"name": "Plan flight", "steps": [...]}],
//	    "successful": true
//	}
type ScenarioReport struct {
	Name             string            `json:"name" yaml:"name"`
	ScenarioType     string            `json:"scenario_type,omitempty" yaml:"scenario_type,omitempty"`
	DocumentationURL string            `json:"documentation_url,omitempty" yaml:"documentation_url,omitempty"`
	ResourceOrigins  map[string]string `json:"resource_origins,omitempty" yaml:"resource_origins,omitempty"`
	StartTime        time.Time         `json:"start_time" yaml:"start_time"`
	EndTime          *time.Time        `json:"end_time,omitempty" yaml:"end_time,omitempty"`

	// Notes is a flat key → note map. Colliding keys are stored as key_1, key_2, ...
	Notes map[string]Note `json:"notes,omitempty" yaml:"notes,omitempty"`

	Cases   []*CaseReport `json:"cases" yaml:"cases"`
	Cleanup *StepReport   `json:"cleanup,omitempty" yaml:"cleanup,omitempty"`

	// ExecutionError is set when the harness itself malfunctioned or the
	// scenario was aborted, as opposed to the system under test failing a check.
	ExecutionError *ErrorReport `json:"execution_error,omitempty" yaml:"execution_error,omitempty"`

	// Successful mirrors ComputeSuccessful at the time the report was handed out.
	Successful bool `json:"successful" yaml:"successful"`
}

// CaseReport records one executed test case.
type CaseReport struct {
	Name             string        `json:"name" yaml:"name"`
	DocumentationURL string        `json:"documentation_url,omitempty" yaml:"documentation_url,omitempty"`
	StartTime        time.Time     `json:"start_time" yaml:"start_time"`
	EndTime          *time.Time    `json:"end_time,omitempty" yaml:"end_time,omitempty"`
	Steps            []*StepReport `json:"steps" yaml:"steps"`
}

// StepReport records one executed test step or the cleanup step.
type StepReport struct {
	Name             string        `json:"name" yaml:"name"`
	DocumentationURL string        `json:"documentation_url,omitempty" yaml:"documentation_url,omitempty"`
	StartTime        time.Time     `json:"start_time" yaml:"start_time"`
	EndTime          *time.Time    `json:"end_time,omitempty" yaml:"end_time,omitempty"`
	PassedChecks     []PassedCheck `json:"passed_checks" yaml:"passed_checks"`
	FailedChecks     []FailedCheck `json:"failed_checks" yaml:"failed_checks"`
	Queries          []Query       `json:"queries,omitempty" yaml:"queries,omitempty"`
}

// PassedCheck records a check whose condition held.
type PassedCheck struct {
	Name         string    `json:"name" yaml:"name"`
	Timestamp    time.Time `json:"timestamp" yaml:"timestamp"`
	Participants []string  `json:"participants,omitempty" yaml:"participants,omitempty"`
	Requirements []string  `json:"requirements,omitempty" yaml:"requirements,omitempty"`
}

// FailedCheck records a check whose condition did not hold.
type FailedCheck struct {
	Name             string             `json:"name" yaml:"name"`
	DocumentationURL string             `json:"documentation_url,omitempty" yaml:"documentation_url,omitempty"`
	Timestamp        time.Time          `json:"timestamp" yaml:"timestamp"`
	Summary          string             `json:"summary" yaml:"summary"`
	Details          string             `json:"details,omitempty" yaml:"details,omitempty"`
	Requirements     []string           `json:"requirements,omitempty" yaml:"requirements,omitempty"`
	Severity         constants.Severity `json:"severity" yaml:"severity"`
	Participants     []string           `json:"participants,omitempty" yaml:"participants,omitempty"`
	QueryTimestamps  []time.Time        `json:"query_report_timestamps,omitempty" yaml:"query_report_timestamps,omitempty"`
	AdditionalData   map[string]any     `json:"additional_data,omitempty" yaml:"additional_data,omitempty"`
}

// Note is a free-form observation attached to the scenario.
type Note struct {
	Message   string    `json:"message" yaml:"message"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// ErrorReport captures an error that escaped scenario execution.
type ErrorReport struct {
	// Type is the Go type of the error, e.g. "*scenario.ScenarioCannotContinueError".
	Type       string    `json:"type" yaml:"type"`
	Message    string    `json:"message" yaml:"message"`
	Stacktrace string    `json:"stacktrace,omitempty" yaml:"stacktrace,omitempty"`
	Timestamp  time.Time `json:"timestamp" yaml:"timestamp"`
}

// ComputeSuccessful derives the verdict from the current tree. A report is
// successful when it has no execution error and no failed check other than
// Low severity exists in any case step or in cleanup.
func (r *ScenarioReport) ComputeSuccessful() bool {
	if r == nil || r.ExecutionError != nil {
		return false
	}
	for _, fc := range r.FailedChecks() {
		if fc.Severity != constants.SeverityLow {
			return false
		}
	}
	return true
}

// Steps returns every step report in execution order, cleanup last.
func (r *ScenarioReport) Steps() []*StepReport {
	if r == nil {
		return nil
	}
	var steps []*StepReport
	for _, c := range r.Cases {
		steps = append(steps, c.Steps...)
	}
	if r.Cleanup != nil {
		steps = append(steps, r.Cleanup)
	}
	return steps
}

// FailedChecks returns every failed check in the tree, cleanup last.
func (r *ScenarioReport) FailedChecks() []FailedCheck {
	var failed []FailedCheck
	for _, s := range r.Steps() {
		failed = append(failed, s.FailedChecks...)
	}
	return failed
}

// CheckCounts returns the number of passed and failed checks in the tree.
func (r *ScenarioReport) CheckCounts() (passed, failed int) {
	for _, s := range r.Steps() {
		passed += len(s.PassedChecks)
		failed += len(s.FailedChecks)
	}
	return passed, failed
}

// HasQueryAt reports whether the step already holds a query initiated at ts.
func (s *StepReport) HasQueryAt(ts time.Time) bool {
	for _, q := range s.Queries {
		if q.Timestamp().Equal(ts) {
			return true
		}
	}
	return false
}
