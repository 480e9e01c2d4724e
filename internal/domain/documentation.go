// Package domain provides shared domain types for conform: the scenario
// documentation catalog consumed by the engine, the query records supplied by
// the HTTP layer, and the report tree the engine produces.
//
// This package follows strict import rules:
//   - CAN import: internal/constants, standard library
//   - MUST NOT import: any other internal packages
//
// All JSON and YAML field names use snake_case.
package domain

import "github.com/mrz1836/conform/internal/constants"

// ScenarioDocumentation enumerates everything a scenario is allowed to do:
// its ordered test cases, their steps, each step's checks and an optional
// cleanup step that sits outside the case hierarchy.
//
// Example YAML representation:
//
//	name: Nominal planning
//	url: https://example.com/scenarios/nominal_planning.md
//	cases:
//	  - name: Plan flight
//	    steps:
//	      - name: Inject flight
//	        checks:
//	          - name: Successful injection
//	            severity: High
//	            requirements: [astm.f3548.v21.SCD0035]
//	cleanup:
//	  name: Cleanup
//	  checks:
//	    - name: Successful deletion
//	      severity: Medium
type ScenarioDocumentation struct {
	// Name is the human-readable scenario name.
	Name string `json:"name" yaml:"name"`

	// URL points at the scenario's documentation source.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// Cases are the documented test cases, in execution order.
	Cases []CaseDocumentation `json:"cases" yaml:"cases"`

	// Cleanup is the optional cleanup step. When nil, the scenario must skip cleanup.
	Cleanup *StepDocumentation `json:"cleanup,omitempty" yaml:"cleanup,omitempty"`
}

// CaseDocumentation describes one documented test case.
type CaseDocumentation struct {
	Name  string              `json:"name" yaml:"name"`
	URL   string              `json:"url,omitempty" yaml:"url,omitempty"`
	Steps []StepDocumentation `json:"steps" yaml:"steps"`
}

// StepDocumentation describes one documented test step (or the cleanup step).
type StepDocumentation struct {
	Name   string               `json:"name" yaml:"name"`
	URL    string               `json:"url,omitempty" yaml:"url,omitempty"`
	Checks []CheckDocumentation `json:"checks,omitempty" yaml:"checks,omitempty"`
}

// CheckDocumentation describes one documented check.
type CheckDocumentation struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url,omitempty" yaml:"url,omitempty"`

	// Severity is empty when the documentation does not declare one. A check
	// without severity may pass, but recording a failure for it is a usage error.
	Severity constants.Severity `json:"severity,omitempty" yaml:"severity,omitempty"`

	// Requirements are traceability identifiers of the standard clauses this
	// check verifies.
	Requirements []string `json:"requirements,omitempty" yaml:"requirements,omitempty"`
}
