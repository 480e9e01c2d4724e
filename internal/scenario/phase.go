// Package scenario implements the scenario execution engine: the runtime that
// drives one conformance scenario through Scenario → Case → Step → Check,
// turns check outcomes into control-flow decisions and assembles the report.
//
// This file implements the phase state machine. Every engine operation first
// asks the machine whether the current phase accepts it; the lookup table
// below is the single source of truth for legal ordering.
//
// Import rules:
//   - CAN import: internal/clock, internal/constants, internal/domain, internal/errors, std lib
//   - MUST NOT import: internal/runner, internal/report, internal/cli
package scenario

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mrz1836/conform/internal/constants"
	conformerrors "github.com/mrz1836/conform/internal/errors"
)

// Operation names a lifecycle call subject to phase validation.
type Operation string

// Operations accepted by the engine.
const (
	OpBeginTestScenario    Operation = "begin_test_scenario"
	OpBeginTestCase        Operation = "begin_test_case"
	OpBeginTestStep        Operation = "begin_test_step"
	OpEndTestStep          Operation = "end_test_step"
	OpEndTestCase          Operation = "end_test_case"
	OpEndTestScenario      Operation = "end_test_scenario"
	OpGoToCleanup          Operation = "go_to_cleanup"
	OpBeginCleanup         Operation = "begin_cleanup"
	OpSkipCleanup          Operation = "skip_cleanup"
	OpEndCleanup           Operation = "end_cleanup"
	OpEnsureCleanupEnded   Operation = "ensure_cleanup_ended"
	OpRecordNote           Operation = "record_note"
	OpRecordQuery          Operation = "record_query"
	OpCheck                Operation = "check"
	OpRecordExecutionError Operation = "record_execution_error"
)

// String returns the string representation of the Operation.
func (o Operation) String() string {
	return string(o)
}

// phaseRule lists the phases an operation is accepted in and the phase it
// moves to. An empty next leaves the phase unchanged.
type phaseRule struct {
	allowed []constants.ScenarioPhase
	next    constants.ScenarioPhase
}

// phaseRules is the engine's transition table:
//
//	begin_test_scenario: NotStarted → ReadyForTestCase
//	begin_test_case:     ReadyForTestCase → ReadyForTestStep
//	begin_test_step:     ReadyForTestStep → RunningTestStep
//	end_test_step:       RunningTestStep → ReadyForTestStep
//	end_test_case:       ReadyForTestStep → ReadyForTestCase
//	end_test_scenario:   ReadyForTestCase → ReadyForCleanup
//	go_to_cleanup:       ReadyForTestCase | ReadyForTestStep | RunningTestStep | ReadyForCleanup → ReadyForCleanup
//	begin_cleanup:       ReadyForCleanup → CleaningUp
//	skip_cleanup:        ReadyForCleanup → Complete
//	end_cleanup:         CleaningUp → Complete
//	ensure_cleanup_ended: CleaningUp | Complete → Complete
//
//nolint:gochecknoglobals // Read-only lookup table
var phaseRules = map[Operation]phaseRule{
	OpBeginTestScenario: {
		allowed: []constants.ScenarioPhase{constants.PhaseNotStarted},
		next:    constants.PhaseReadyForTestCase,
	},
	OpBeginTestCase: {
		allowed: []constants.ScenarioPhase{constants.PhaseReadyForTestCase},
		next:    constants.PhaseReadyForTestStep,
	},
	OpBeginTestStep: {
		allowed: []constants.ScenarioPhase{constants.PhaseReadyForTestStep},
		next:    constants.PhaseRunningTestStep,
	},
	OpEndTestStep: {
		allowed: []constants.ScenarioPhase{constants.PhaseRunningTestStep},
		next:    constants.PhaseReadyForTestStep,
	},
	OpEndTestCase: {
		allowed: []constants.ScenarioPhase{constants.PhaseReadyForTestStep},
		next:    constants.PhaseReadyForTestCase,
	},
	OpEndTestScenario: {
		allowed: []constants.ScenarioPhase{constants.PhaseReadyForTestCase},
		next:    constants.PhaseReadyForCleanup,
	},
	OpGoToCleanup: {
		allowed: []constants.ScenarioPhase{
			constants.PhaseReadyForTestCase,
			constants.PhaseReadyForTestStep,
			constants.PhaseRunningTestStep,
			constants.PhaseReadyForCleanup,
		},
		next: constants.PhaseReadyForCleanup,
	},
	OpBeginCleanup: {
		allowed: []constants.ScenarioPhase{constants.PhaseReadyForCleanup},
		next:    constants.PhaseCleaningUp,
	},
	OpSkipCleanup: {
		allowed: []constants.ScenarioPhase{constants.PhaseReadyForCleanup},
		next:    constants.PhaseComplete,
	},
	OpEndCleanup: {
		allowed: []constants.ScenarioPhase{constants.PhaseCleaningUp},
		next:    constants.PhaseComplete,
	},
	OpEnsureCleanupEnded: {
		allowed: []constants.ScenarioPhase{constants.PhaseCleaningUp, constants.PhaseComplete},
		next:    constants.PhaseComplete,
	},
	OpRecordNote: {
		allowed: []constants.ScenarioPhase{
			constants.PhaseNotStarted,
			constants.PhaseReadyForTestCase,
			constants.PhaseReadyForTestStep,
			constants.PhaseRunningTestStep,
			constants.PhaseReadyForCleanup,
			constants.PhaseCleaningUp,
		},
	},
	OpRecordQuery: {
		allowed: []constants.ScenarioPhase{constants.PhaseRunningTestStep, constants.PhaseCleaningUp},
	},
	OpCheck: {
		allowed: []constants.ScenarioPhase{constants.PhaseRunningTestStep, constants.PhaseCleaningUp},
	},
	OpRecordExecutionError: {
		allowed: []constants.ScenarioPhase{
			constants.PhaseNotStarted,
			constants.PhaseReadyForTestCase,
			constants.PhaseReadyForTestStep,
			constants.PhaseRunningTestStep,
			constants.PhaseReadyForCleanup,
			constants.PhaseCleaningUp,
		},
		next: constants.PhaseComplete,
	},
}

// AllowedPhases returns the phases in which op is accepted.
// Returns nil for unknown operations.
func AllowedPhases(op Operation) []constants.ScenarioPhase {
	rule, ok := phaseRules[op]
	if !ok {
		return nil
	}
	return slices.Clone(rule.allowed)
}

// StateError reports a lifecycle call made outside its acceptable phases.
// It wraps ErrInvalidPhase.
type StateError struct {
	Operation  Operation
	Actual     constants.ScenarioPhase
	Acceptable []constants.ScenarioPhase
}

// Error implements error.
func (e *StateError) Error() string {
	acceptable := make([]string, len(e.Acceptable))
	for i, p := range e.Acceptable {
		acceptable[i] = p.String()
	}
	return fmt.Sprintf("cannot %s in phase %s (acceptable: %s): %s",
		e.Operation, e.Actual, strings.Join(acceptable, ", "), conformerrors.ErrInvalidPhase)
}

// Unwrap returns ErrInvalidPhase so callers can use errors.Is.
func (e *StateError) Unwrap() error {
	return conformerrors.ErrInvalidPhase
}

// phaseMachine holds the single current phase of one scenario instance.
type phaseMachine struct {
	phase constants.ScenarioPhase
}

// expect validates that the current phase accepts op.
func (m *phaseMachine) expect(op Operation) error {
	rule, ok := phaseRules[op]
	if !ok || !slices.Contains(rule.allowed, m.phase) {
		return &StateError{Operation: op, Actual: m.phase, Acceptable: AllowedPhases(op)}
	}
	return nil
}

// advance applies op's target phase. Callers must have called expect first.
func (m *phaseMachine) advance(op Operation) {
	if next := phaseRules[op].next; next != "" {
		m.phase = next
	}
}
