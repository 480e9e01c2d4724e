package scenario

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/conform/internal/constants"
	conformerrors "github.com/mrz1836/conform/internal/errors"
)

//nolint:gochecknoglobals // Test fixture
var allPhases = []constants.ScenarioPhase{
	constants.PhaseUndefined,
	constants.PhaseNotStarted,
	constants.PhaseReadyForTestCase,
	constants.PhaseReadyForTestStep,
	constants.PhaseRunningTestStep,
	constants.PhaseReadyForCleanup,
	constants.PhaseCleaningUp,
	constants.PhaseComplete,
}

// invokers call each phase-validated operation with arguments that are valid
// whenever the phase is.
//
//nolint:gochecknoglobals // Test fixture
var invokers = map[Operation]func(s *Scenario) error{
	OpBeginTestScenario:  (*Scenario).BeginTestScenario,
	OpBeginTestCase:      func(s *Scenario) error { return s.BeginTestCase("A") },
	OpBeginTestStep:      func(s *Scenario) error { return s.BeginTestStep("S1") },
	OpEndTestStep:        (*Scenario).EndTestStep,
	OpEndTestCase:        (*Scenario).EndTestCase,
	OpEndTestScenario:    (*Scenario).EndTestScenario,
	OpGoToCleanup:        (*Scenario).GoToCleanup,
	OpBeginCleanup:       (*Scenario).BeginCleanup,
	OpSkipCleanup:        (*Scenario).SkipCleanup,
	OpEndCleanup:         (*Scenario).EndCleanup,
	OpEnsureCleanupEnded: (*Scenario).EnsureCleanupEnded,
	OpRecordNote:         func(s *Scenario) error { return s.RecordNote("k", "v") },
	OpRecordQuery:        func(s *Scenario) error { return s.RecordQuery(query(0, "https://uss.example.com")) },
	OpCheck: func(s *Scenario) error {
		_, err := s.Check("C1")
		return err
	},
	OpRecordExecutionError: func(s *Scenario) error { return s.RecordExecutionError(errors.New("boom")) },
}

func TestPhaseRules_MatchLifecycleTable(t *testing.T) {
	tests := []struct {
		op      Operation
		allowed []constants.ScenarioPhase
		next    constants.ScenarioPhase
	}{
		{OpBeginTestScenario, []constants.ScenarioPhase{constants.PhaseNotStarted}, constants.PhaseReadyForTestCase},
		{OpBeginTestCase, []constants.ScenarioPhase{constants.PhaseReadyForTestCase}, constants.PhaseReadyForTestStep},
		{OpBeginTestStep, []constants.ScenarioPhase{constants.PhaseReadyForTestStep}, constants.PhaseRunningTestStep},
		{OpEndTestStep, []constants.ScenarioPhase{constants.PhaseRunningTestStep}, constants.PhaseReadyForTestStep},
		{OpEndTestCase, []constants.ScenarioPhase{constants.PhaseReadyForTestStep}, constants.PhaseReadyForTestCase},
		{OpEndTestScenario, []constants.ScenarioPhase{constants.PhaseReadyForTestCase}, constants.PhaseReadyForCleanup},
		{OpBeginCleanup, []constants.ScenarioPhase{constants.PhaseReadyForCleanup}, constants.PhaseCleaningUp},
		{OpSkipCleanup, []constants.ScenarioPhase{constants.PhaseReadyForCleanup}, constants.PhaseComplete},
		{OpEndCleanup, []constants.ScenarioPhase{constants.PhaseCleaningUp}, constants.PhaseComplete},
		{OpRecordQuery, []constants.ScenarioPhase{constants.PhaseRunningTestStep, constants.PhaseCleaningUp}, ""},
		{OpCheck, []constants.ScenarioPhase{constants.PhaseRunningTestStep, constants.PhaseCleaningUp}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			assert.ElementsMatch(t, tt.allowed, AllowedPhases(tt.op))
			assert.Equal(t, tt.next, phaseRules[tt.op].next)
		})
	}

	assert.NotContains(t, AllowedPhases(OpRecordNote), constants.PhaseComplete)
	assert.NotContains(t, AllowedPhases(OpRecordNote), constants.PhaseUndefined)
	assert.Len(t, AllowedPhases(OpGoToCleanup), 4)
	assert.Nil(t, AllowedPhases(Operation("unknown")))
}

func TestAllowedPhases_ReturnsCopy(t *testing.T) {
	phases := AllowedPhases(OpCheck)
	phases[0] = constants.PhaseComplete

	assert.Equal(t, constants.PhaseRunningTestStep, AllowedPhases(OpCheck)[0])
}

// TestOperations_RejectedOutsideAllowedPhases exercises every operation in
// every phase it does not accept and verifies the state error contents.
func TestOperations_RejectedOutsideAllowedPhases(t *testing.T) {
	require.Len(t, invokers, len(phaseRules), "every operation needs an invoker")

	for op, invoke := range invokers {
		allowed := AllowedPhases(op)
		for _, phase := range allPhases {
			if slices.Contains(allowed, phase) {
				continue
			}
			t.Run(op.String()+"_in_"+phase.String(), func(t *testing.T) {
				s := newTestScenario(t, testDocumentationWithCleanup())
				s.phases.phase = phase

				err := invoke(s)

				require.ErrorIs(t, err, conformerrors.ErrInvalidPhase)
				var stateErr *StateError
				require.ErrorAs(t, err, &stateErr)
				assert.Equal(t, op, stateErr.Operation)
				assert.Equal(t, phase, stateErr.Actual)
				assert.Equal(t, allowed, stateErr.Acceptable)
				assert.Equal(t, phase, s.Phase(), "rejected call must not change the phase")
			})
		}
	}
}

func TestStateError_Message(t *testing.T) {
	err := &StateError{
		Operation:  OpCheck,
		Actual:     constants.PhaseReadyForTestCase,
		Acceptable: []constants.ScenarioPhase{constants.PhaseRunningTestStep, constants.PhaseCleaningUp},
	}

	assert.Equal(t,
		"cannot check in phase ready_for_test_case (acceptable: running_test_step, cleaning_up): invalid scenario phase",
		err.Error())
}

func TestPhaseMachine_FullLifecycle(t *testing.T) {
	s := newTestScenario(t, testDocumentationWithCleanup())
	assert.Equal(t, constants.PhaseNotStarted, s.Phase())

	steps := []struct {
		call     func() error
		expected constants.ScenarioPhase
	}{
		{s.BeginTestScenario, constants.PhaseReadyForTestCase},
		{func() error { return s.BeginTestCase("A") }, constants.PhaseReadyForTestStep},
		{func() error { return s.BeginTestStep("S1") }, constants.PhaseRunningTestStep},
		{s.EndTestStep, constants.PhaseReadyForTestStep},
		{func() error { return s.BeginTestStep("S2") }, constants.PhaseRunningTestStep},
		{s.EndTestStep, constants.PhaseReadyForTestStep},
		{s.EndTestCase, constants.PhaseReadyForTestCase},
		{s.EndTestScenario, constants.PhaseReadyForCleanup},
		{s.BeginCleanup, constants.PhaseCleaningUp},
		{s.EndCleanup, constants.PhaseComplete},
		{s.EnsureCleanupEnded, constants.PhaseComplete},
	}

	for i, step := range steps {
		require.NoError(t, step.call(), "step %d", i)
		assert.Equal(t, step.expected, s.Phase(), "step %d", i)
	}
}

func TestGoToCleanup_FromEachPhase(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, s *Scenario)
	}{
		{"ready_for_test_case", func(t *testing.T, s *Scenario) {
			require.NoError(t, s.BeginTestScenario())
		}},
		{"ready_for_test_step", func(t *testing.T, s *Scenario) {
			require.NoError(t, s.BeginTestScenario())
			require.NoError(t, s.BeginTestCase("A"))
		}},
		{"running_test_step", func(t *testing.T, s *Scenario) {
			startStep(t, s, "A", "S1")
		}},
		{"ready_for_cleanup", func(t *testing.T, s *Scenario) {
			require.NoError(t, s.BeginTestScenario())
			require.NoError(t, s.EndTestScenario())
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestScenario(t, testDocumentation())
			tt.setup(t, s)

			require.NoError(t, s.GoToCleanup())
			assert.Equal(t, constants.PhaseReadyForCleanup, s.Phase())

			report := s.report.ensure()
			assert.NotNil(t, report.EndTime, "scenario end time stamped")
			for _, c := range report.Cases {
				assert.NotNil(t, c.EndTime, "case %s end time stamped", c.Name)
				for _, st := range c.Steps {
					assert.NotNil(t, st.EndTime, "step %s end time stamped", st.Name)
				}
			}
		})
	}
}

func TestEnsureCleanupEnded(t *testing.T) {
	t.Run("ends running cleanup", func(t *testing.T) {
		s := newTestScenario(t, testDocumentationWithCleanup())
		require.NoError(t, s.BeginTestScenario())
		require.NoError(t, s.GoToCleanup())
		require.NoError(t, s.BeginCleanup())

		require.NoError(t, s.EnsureCleanupEnded())
		assert.Equal(t, constants.PhaseComplete, s.Phase())
		assert.NotNil(t, s.GetReport().Cleanup.EndTime)
	})

	t.Run("idempotent once complete", func(t *testing.T) {
		s := newTestScenario(t, testDocumentation())
		require.NoError(t, s.BeginTestScenario())
		require.NoError(t, s.EndTestScenario())
		require.NoError(t, s.SkipCleanup())

		require.NoError(t, s.EnsureCleanupEnded())
		require.NoError(t, s.EnsureCleanupEnded())
		assert.Equal(t, constants.PhaseComplete, s.Phase())
	})
}

func TestCleanupDocumentationRules(t *testing.T) {
	t.Run("begin cleanup without documented cleanup", func(t *testing.T) {
		s := newTestScenario(t, testDocumentation())
		require.NoError(t, s.BeginTestScenario())
		require.NoError(t, s.EndTestScenario())

		err := s.BeginCleanup()
		require.ErrorIs(t, err, conformerrors.ErrCleanupNotDocumented)
		assert.Equal(t, constants.PhaseReadyForCleanup, s.Phase())
	})

	t.Run("skip documented cleanup", func(t *testing.T) {
		s := newTestScenario(t, testDocumentationWithCleanup())
		require.NoError(t, s.BeginTestScenario())
		require.NoError(t, s.EndTestScenario())

		err := s.SkipCleanup()
		require.ErrorIs(t, err, conformerrors.ErrCleanupDocumented)
		assert.Equal(t, constants.PhaseReadyForCleanup, s.Phase())
	})
}
