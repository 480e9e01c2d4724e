package domain

import "time"

// RunReport aggregates the scenario reports of one test run.
type RunReport struct {
	// SchemaVersion is the version of the persisted report format.
	SchemaVersion int `json:"schema_version" yaml:"schema_version"`

	// RunID uniquely identifies the run (UUID).
	RunID string `json:"run_id" yaml:"run_id"`

	StartTime time.Time  `json:"start_time" yaml:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty" yaml:"end_time,omitempty"`

	// StopFast records whether non-critical failures were escalated during the run.
	StopFast bool `json:"stop_fast" yaml:"stop_fast"`

	// Scenarios holds one report per scenario that was started, in submission order.
	Scenarios []*ScenarioReport `json:"scenarios" yaml:"scenarios"`

	// StoppedEarly is true when a critical failure, cancellation or an unrunnable
	// scenario prevented some scenarios from running.
	StoppedEarly bool `json:"stopped_early" yaml:"stopped_early"`

	Successful bool `json:"successful" yaml:"successful"`
}

// ComputeSuccessful reports whether every scenario succeeded and the run was not cut short.
func (r *RunReport) ComputeSuccessful() bool {
	if r == nil || r.StoppedEarly {
		return false
	}
	for _, s := range r.Scenarios {
		if !s.ComputeSuccessful() {
			return false
		}
	}
	return true
}
