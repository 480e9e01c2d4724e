package scenario

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/conform/internal/constants"
	"github.com/mrz1836/conform/internal/domain"
	conformerrors "github.com/mrz1836/conform/internal/errors"
)

func currentStepReport(s *Scenario) *domain.StepReport {
	return s.report.currentStep
}

func TestPendingCheck_CloseRecordsPassOnce(t *testing.T) {
	s := newTestScenario(t, testDocumentation())
	startStep(t, s, "A", "S1")

	func() {
		chk, err := s.Check("C1", "uss1", "uss2")
		require.NoError(t, err)
		defer func() { require.NoError(t, chk.Close()) }()
	}()

	step := currentStepReport(s)
	require.Len(t, step.PassedChecks, 1)
	passed := step.PassedChecks[0]
	assert.Equal(t, "C1", passed.Name)
	assert.Equal(t, []string{"uss1", "uss2"}, passed.Participants)
	assert.Equal(t, []string{"req.C1"}, passed.Requirements)
	assert.False(t, passed.Timestamp.IsZero())
	assert.Empty(t, step.FailedChecks)
}

func TestPendingCheck_CloseAfterOutcomeIsNoop(t *testing.T) {
	s := newTestScenario(t, testDocumentation())
	startStep(t, s, "A", "S1")

	chk, err := s.Check("C1")
	require.NoError(t, err)
	require.NoError(t, chk.RecordFailed("x"))
	require.NoError(t, chk.Close())
	require.NoError(t, chk.Close())

	step := currentStepReport(s)
	assert.Empty(t, step.PassedChecks)
	assert.Len(t, step.FailedChecks, 1)
}

func TestPendingCheck_SecondOutcomeRejected(t *testing.T) {
	s := newTestScenario(t, testDocumentation())
	startStep(t, s, "A", "S1")

	chk, err := s.Check("C1")
	require.NoError(t, err)
	require.NoError(t, chk.RecordPassed())

	require.ErrorIs(t, chk.RecordPassed(), conformerrors.ErrCheckAlreadyRecorded)
	require.ErrorIs(t, chk.RecordFailed("late"), conformerrors.ErrCheckAlreadyRecorded)
	require.ErrorIs(t, chk.Skip(), conformerrors.ErrCheckAlreadyRecorded)

	step := currentStepReport(s)
	assert.Len(t, step.PassedChecks, 1)
	assert.Empty(t, step.FailedChecks)
}

func TestPendingCheck_Skip(t *testing.T) {
	s := newTestScenario(t, testDocumentation())
	startStep(t, s, "A", "S1")

	chk, err := s.Check("C1")
	require.NoError(t, err)
	require.NoError(t, chk.Skip())
	require.NoError(t, chk.Close())

	assert.True(t, chk.Recorded())
	step := currentStepReport(s)
	assert.Empty(t, step.PassedChecks)
	assert.Empty(t, step.FailedChecks)
}

// TestRecordFailed_SeverityPolicy covers severity resolution, stop-fast
// escalation and the resulting control-flow signal.
func TestRecordFailed_SeverityPolicy(t *testing.T) {
	tests := []struct {
		name             string
		check            string
		stopFast         bool
		expectedSeverity constants.Severity
		expectedErr      error
		successful       bool
	}{
		{"low never aborts", "Low check", false, constants.SeverityLow, nil, true},
		{"low not escalated by stop fast", "Low check", true, constants.SeverityLow, nil, true},
		{"medium continues", "C1", false, constants.SeverityMedium, nil, false},
		{"high stops scenario", "High check", false, constants.SeverityHigh, conformerrors.ErrScenarioCannotContinue, false},
		{"critical stops run", "Critical check", false, constants.SeverityCritical, conformerrors.ErrTestRunCannotContinue, false},
		{"medium escalated by stop fast", "C1", true, constants.SeverityCritical, conformerrors.ErrTestRunCannotContinue, false},
		{"high escalated by stop fast", "High check", true, constants.SeverityCritical, conformerrors.ErrTestRunCannotContinue, false},
		{"critical with stop fast", "Critical check", true, constants.SeverityCritical, conformerrors.ErrTestRunCannotContinue, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestScenario(t, testDocumentation(), WithStopFast(tt.stopFast))
			startStep(t, s, "A", "S1")

			chk, err := s.Check(tt.check, "uss1")
			require.NoError(t, err)
			err = chk.RecordFailed("summary")

			if tt.expectedErr == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tt.expectedErr)
			}

			step := currentStepReport(s)
			require.Len(t, step.FailedChecks, 1)
			assert.Equal(t, tt.expectedSeverity, step.FailedChecks[0].Severity)
			assert.Equal(t, tt.successful, s.report.snapshot().Successful)
		})
	}
}

func TestRecordFailed_TypedAbortErrors(t *testing.T) {
	s := newTestScenario(t, testDocumentation())
	startStep(t, s, "A", "S1")

	chk, err := s.Check("High check", "uss1")
	require.NoError(t, err)
	err = chk.RecordFailed("no response")

	var abort *ScenarioCannotContinueError
	require.ErrorAs(t, err, &abort)
	assert.Equal(t, "High check", abort.Check.Name)
	assert.Equal(t, "https://example.com/test_scenario.md#high", abort.Check.DocumentationURL)
	assert.Equal(t, `scenario cannot continue: High check "High check" failed: no response`, err.Error())

	chk, err = s.Check("Critical check")
	require.NoError(t, err)
	err = chk.RecordFailed("corrupted state")

	var stop *TestRunCannotContinueError
	require.ErrorAs(t, err, &stop)
	assert.Equal(t, constants.SeverityCritical, stop.Check.Severity)
	assert.False(t, errors.Is(err, conformerrors.ErrScenarioCannotContinue))
}

func TestRecordFailed_CleanupNeverEscalates(t *testing.T) {
	tests := []struct {
		name             string
		check            string
		expectedSeverity constants.Severity
		expectedErr      error
	}{
		{"medium stays medium", "Cleanup medium", constants.SeverityMedium, nil},
		{"high stays high", "Cleanup high", constants.SeverityHigh, conformerrors.ErrScenarioCannotContinue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestScenario(t, testDocumentationWithCleanup(), WithStopFast(true))
			require.NoError(t, s.BeginTestScenario())
			require.NoError(t, s.GoToCleanup())
			require.NoError(t, s.BeginCleanup())

			chk, err := s.Check(tt.check)
			require.NoError(t, err)
			err = chk.RecordFailed("delete failed")
			if tt.expectedErr == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tt.expectedErr)
			}
			require.NoError(t, s.EndCleanup())

			report := s.GetReport()
			require.NotNil(t, report.Cleanup)
			require.Len(t, report.Cleanup.FailedChecks, 1)
			assert.Equal(t, tt.expectedSeverity, report.Cleanup.FailedChecks[0].Severity)
			assert.False(t, report.Successful)
		})
	}
}

func TestRecordFailed_MissingSeverity(t *testing.T) {
	s := newTestScenario(t, testDocumentation())
	startStep(t, s, "A", "S1")

	chk, err := s.Check("No severity")
	require.NoError(t, err)

	err = chk.RecordFailed("x")
	require.ErrorIs(t, err, conformerrors.ErrMissingSeverity)
	require.NoError(t, chk.Close())

	step := currentStepReport(s)
	assert.Empty(t, step.FailedChecks)
	assert.Empty(t, step.PassedChecks, "no pass is fabricated after a usage error")
}

func TestRecordFailed_MissingSeverityCanStillPass(t *testing.T) {
	s := newTestScenario(t, testDocumentation())
	startStep(t, s, "A", "S1")

	chk, err := s.Check("No severity")
	require.NoError(t, err)
	require.NoError(t, chk.Close())

	assert.Len(t, currentStepReport(s).PassedChecks, 1)
}

func TestRecordFailed_Options(t *testing.T) {
	s := newTestScenario(t, testDocumentation())
	startStep(t, s, "A", "S1")

	ts1 := testStart.Add(time.Minute)
	ts2 := testStart.Add(2 * time.Minute)

	chk, err := s.Check("C1", "uss1")
	require.NoError(t, err)
	require.NoError(t, chk.RecordFailed("bad status",
		WithDetailsf("expected %d, got %d", 200, 500),
		WithQueryTimestamps(ts1),
		WithQueryTimestamps(ts2),
		WithAdditionalData(map[string]any{"status": 500}),
		WithAdditionalData(nil),
	))

	fc := currentStepReport(s).FailedChecks[0]
	assert.Equal(t, "bad status", fc.Summary)
	assert.Equal(t, "expected 200, got 500", fc.Details)
	assert.Equal(t, []time.Time{ts1, ts2}, fc.QueryTimestamps)
	assert.Equal(t, map[string]any{"status": 500}, fc.AdditionalData)
	assert.Equal(t, []string{"req.C1"}, fc.Requirements)
	assert.Equal(t, []string{"uss1"}, fc.Participants)
}

func TestRecordFailed_ObserverSeesRowBeforeDecision(t *testing.T) {
	var observed []domain.FailedCheck
	var s *Scenario
	s = newTestScenario(t, testDocumentation(), WithOnFailedCheck(func(fc domain.FailedCheck) {
		// The row is already part of the step when the observer runs.
		assert.Len(t, s.report.currentStep.FailedChecks, len(observed)+1)
		observed = append(observed, fc)
	}))
	startStep(t, s, "A", "S1")

	chk, err := s.Check("C1")
	require.NoError(t, err)
	require.NoError(t, chk.RecordFailed("first"))

	chk, err = s.Check("High check")
	require.NoError(t, err)
	require.ErrorIs(t, chk.RecordFailed("second"), conformerrors.ErrScenarioCannotContinue)

	require.Len(t, observed, 2)
	assert.Equal(t, "first", observed[0].Summary)
	assert.Equal(t, constants.SeverityHigh, observed[1].Severity)
}

func TestCheck_UndocumentedNames(t *testing.T) {
	t.Run("rejected by default", func(t *testing.T) {
		s := newTestScenario(t, testDocumentation())
		startStep(t, s, "A", "S1")

		_, err := s.Check("Not documented")
		require.ErrorIs(t, err, conformerrors.ErrUnknownCheck)
	})

	t.Run("check from another step is rejected", func(t *testing.T) {
		s := newTestScenario(t, testDocumentation())
		startStep(t, s, "A", "S1")

		_, err := s.Check("C2")
		require.ErrorIs(t, err, conformerrors.ErrUnknownCheck)
	})

	t.Run("placeholder when allowed", func(t *testing.T) {
		s := newTestScenario(t, testDocumentation(), WithAllowUndocumentedChecks(true))
		startStep(t, s, "A", "S1")

		chk, err := s.Check("Not documented")
		require.NoError(t, err)
		assert.Equal(t, constants.SeverityMedium, chk.Documentation().Severity)
		require.NoError(t, chk.RecordFailed("x"))
		assert.Equal(t, constants.SeverityMedium, currentStepReport(s).FailedChecks[0].Severity)
	})

	t.Run("flag is per instance", func(t *testing.T) {
		permissive := newTestScenario(t, testDocumentation(), WithAllowUndocumentedChecks(true))
		strict := newTestScenario(t, testDocumentation())
		startStep(t, permissive, "A", "S1")
		startStep(t, strict, "A", "S1")

		_, err := permissive.Check("Not documented")
		require.NoError(t, err)
		_, err = strict.Check("Not documented")
		require.ErrorIs(t, err, conformerrors.ErrUnknownCheck)
	})
}

func TestRunCheck(t *testing.T) {
	t.Run("records pass when fn records nothing", func(t *testing.T) {
		s := newTestScenario(t, testDocumentation())
		startStep(t, s, "A", "S1")

		require.NoError(t, s.RunCheck("C1", []string{"uss1"}, func(*PendingCheck) error { return nil }))
		assert.Len(t, currentStepReport(s).PassedChecks, 1)
	})

	t.Run("returns abort from fn without extra pass", func(t *testing.T) {
		s := newTestScenario(t, testDocumentation())
		startStep(t, s, "A", "S1")

		err := s.RunCheck("High check", nil, func(c *PendingCheck) error {
			return c.RecordFailed("down")
		})
		require.ErrorIs(t, err, conformerrors.ErrScenarioCannotContinue)
		step := currentStepReport(s)
		assert.Empty(t, step.PassedChecks)
		assert.Len(t, step.FailedChecks, 1)
	})

	t.Run("no pass when fn fails before recording", func(t *testing.T) {
		s := newTestScenario(t, testDocumentation())
		startStep(t, s, "A", "S1")

		boom := errors.New("boom")
		err := s.RunCheck("C1", nil, func(*PendingCheck) error { return boom })
		require.ErrorIs(t, err, boom)
		assert.Empty(t, currentStepReport(s).PassedChecks)
	})

	t.Run("unknown check", func(t *testing.T) {
		s := newTestScenario(t, testDocumentation())
		startStep(t, s, "A", "S1")

		called := false
		err := s.RunCheck("nope", nil, func(*PendingCheck) error { called = true; return nil })
		require.ErrorIs(t, err, conformerrors.ErrUnknownCheck)
		assert.False(t, called)
	})
}
