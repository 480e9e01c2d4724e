package scenario

import (
	"fmt"

	"github.com/mrz1836/conform/internal/domain"
	conformerrors "github.com/mrz1836/conform/internal/errors"
)

// ScenarioCannotContinueError is returned by RecordFailed when a High severity
// check fails. The current scenario stops; the run-driver should still attempt
// its cleanup. It wraps ErrScenarioCannotContinue.
type ScenarioCannotContinueError struct {
	Check domain.FailedCheck
}

// Error implements error.
func (e *ScenarioCannotContinueError) Error() string {
	return fmt.Sprintf("%s: %s check %q failed: %s",
		conformerrors.ErrScenarioCannotContinue, e.Check.Severity, e.Check.Name, e.Check.Summary)
}

// Unwrap returns ErrScenarioCannotContinue so callers can use errors.Is.
func (e *ScenarioCannotContinueError) Unwrap() error {
	return conformerrors.ErrScenarioCannotContinue
}

// TestRunCannotContinueError is returned by RecordFailed when a Critical
// severity check fails, whether documented as Critical or escalated by
// stop-fast. The whole test run stops. It wraps ErrTestRunCannotContinue.
type TestRunCannotContinueError struct {
	Check domain.FailedCheck
}

// Error implements error.
func (e *TestRunCannotContinueError) Error() string {
	return fmt.Sprintf("%s: %s check %q failed: %s",
		conformerrors.ErrTestRunCannotContinue, e.Check.Severity, e.Check.Name, e.Check.Summary)
}

// Unwrap returns ErrTestRunCannotContinue so callers can use errors.Is.
func (e *TestRunCannotContinueError) Unwrap() error {
	return conformerrors.ErrTestRunCannotContinue
}
