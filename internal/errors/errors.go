// Package errors provides centralized error handling for conform.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Usage errors. These indicate a bug in scenario-author code and are never retried.
var (
	// ErrInvalidPhase indicates a lifecycle operation was called while the scenario
	// was in a phase that does not accept it.
	ErrInvalidPhase = errors.New("invalid scenario phase")

	// ErrUnknownTestCase indicates begin_test_case named a case absent from the documentation.
	ErrUnknownTestCase = errors.New("test case not documented")

	// ErrDuplicateTestCase indicates a test case name was begun twice in one scenario run.
	ErrDuplicateTestCase = errors.New("test case already run")

	// ErrUnknownTestStep indicates begin_test_step named a step absent from the current case.
	ErrUnknownTestStep = errors.New("test step not documented")

	// ErrUnknownCheck indicates a check name absent from the current step or cleanup.
	ErrUnknownCheck = errors.New("check not documented")

	// ErrMissingSeverity indicates a failed check whose documentation carries no severity.
	ErrMissingSeverity = errors.New("check severity not documented")

	// ErrCleanupNotDocumented indicates begin_cleanup was called for a scenario
	// without a documented cleanup step.
	ErrCleanupNotDocumented = errors.New("cleanup not documented")

	// ErrCleanupDocumented indicates skip_cleanup was called for a scenario that
	// documents a cleanup step.
	ErrCleanupDocumented = errors.New("cleanup documented and may not be skipped")

	// ErrCheckAlreadyRecorded indicates a second outcome was recorded for one check.
	ErrCheckAlreadyRecorded = errors.New("check outcome already recorded")

	// ErrNilDocumentation indicates a scenario engine was constructed without documentation.
	ErrNilDocumentation = errors.New("scenario documentation is nil")
)

// Control-flow signals returned when a failed check forbids further execution.
var (
	// ErrScenarioCannotContinue indicates a High severity failure; only the current
	// scenario stops, and its cleanup should still be attempted.
	ErrScenarioCannotContinue = errors.New("scenario cannot continue")

	// ErrTestRunCannotContinue indicates a Critical severity failure; the whole
	// test run stops after the error is recorded.
	ErrTestRunCannotContinue = errors.New("test run cannot continue")

	// ErrScenarioIncomplete indicates a report was requested before the scenario
	// reached the complete phase.
	ErrScenarioIncomplete = errors.New("scenario did not reach completion")

	// ErrScenarioPanicked indicates scenario code panicked; the run-driver
	// converts the panic into an execution error.
	ErrScenarioPanicked = errors.New("scenario panicked")
)

// Documentation loading errors.
var (
	// ErrInvalidDocumentation indicates structurally invalid scenario documentation.
	ErrInvalidDocumentation = errors.New("invalid scenario documentation")

	// ErrDuplicateName indicates two documented entries share a name within one scope.
	ErrDuplicateName = errors.New("duplicate documented name")

	// ErrEmptyValue indicates that a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")
)

// Configuration and CLI errors.
var (
	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrValueOutOfRange indicates that a value is outside the allowed range.
	ErrValueOutOfRange = errors.New("value out of range")

	// ErrInvalidReportFormat indicates an unsupported report file format.
	ErrInvalidReportFormat = errors.New("invalid report format")

	// ErrInvalidOutputFormat indicates an invalid CLI output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrReportUnsuccessful indicates a report shown with --fail did not pass.
	ErrReportUnsuccessful = errors.New("report is unsuccessful")

	// ErrJSONErrorOutput indicates that an error has already been output as JSON.
	// Execute does not print it again.
	ErrJSONErrorOutput = errors.New("error output as JSON")
)
