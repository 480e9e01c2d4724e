package scenario

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mrz1836/conform/internal/constants"
	"github.com/mrz1836/conform/internal/domain"
	"github.com/mrz1836/conform/internal/testutil"
)

// testStart is the first timestamp handed out by test clocks.
var testStart = time.Date(2025, 12, 27, 10, 0, 0, 0, time.UTC) //nolint:gochecknoglobals // Test fixture

// testDocumentation returns a scenario with two cases and no cleanup.
func testDocumentation() *domain.ScenarioDocumentation {
	return &domain.ScenarioDocumentation{
		Name: "Test scenario",
		URL:  "https://example.com/test_scenario.md",
		Cases: []domain.CaseDocumentation{
			{
				Name: "A",
				URL:  "https://example.com/test_scenario.md#a",
				Steps: []domain.StepDocumentation{
					{
						Name: "S1",
						URL:  "https://example.com/test_scenario.md#s1",
						Checks: []domain.CheckDocumentation{
							{Name: "C1", Severity: constants.SeverityMedium, Requirements: []string{"req.C1"}},
							{Name: "Low check", Severity: constants.SeverityLow},
							{Name: "High check", Severity: constants.SeverityHigh, URL: "https://example.com/test_scenario.md#high"},
							{Name: "Critical check", Severity: constants.SeverityCritical},
							{Name: "No severity"},
						},
					},
					{
						Name:   "S2",
						Checks: []domain.CheckDocumentation{{Name: "C2", Severity: constants.SeverityMedium}},
					},
				},
			},
			{
				Name: "B",
				Steps: []domain.StepDocumentation{
					{Name: "S3", Checks: []domain.CheckDocumentation{{Name: "C3", Severity: constants.SeverityMedium}}},
				},
			},
		},
	}
}

// testDocumentationWithCleanup adds a documented cleanup step.
func testDocumentationWithCleanup() *domain.ScenarioDocumentation {
	doc := testDocumentation()
	doc.Cleanup = &domain.StepDocumentation{
		Name: "Cleanup",
		Checks: []domain.CheckDocumentation{
			{Name: "Cleanup medium", Severity: constants.SeverityMedium},
			{Name: "Cleanup high", Severity: constants.SeverityHigh},
		},
	}
	return doc
}

// newTestScenario builds an engine with a manual clock advancing one second per reading.
func newTestScenario(t *testing.T, doc *domain.ScenarioDocumentation, opts ...Option) *Scenario {
	t.Helper()
	all := append([]Option{WithClock(testutil.NewManualClock(testStart, time.Second))}, opts...)
	s, err := New(doc, all...)
	require.NoError(t, err)
	return s
}

// startStep drives s from NotStarted into the running step caseName/stepName.
func startStep(t *testing.T, s *Scenario, caseName, stepName string) {
	t.Helper()
	require.NoError(t, s.BeginTestScenario())
	require.NoError(t, s.BeginTestCase(caseName))
	require.NoError(t, s.BeginTestStep(stepName))
	require.Equal(t, constants.PhaseRunningTestStep, s.Phase())
}

// finishWithoutCleanup closes the running step, case and scenario and skips cleanup.
func finishWithoutCleanup(t *testing.T, s *Scenario) {
	t.Helper()
	require.NoError(t, s.EndTestStep())
	require.NoError(t, s.EndTestCase())
	require.NoError(t, s.EndTestScenario())
	require.NoError(t, s.SkipCleanup())
	require.Equal(t, constants.PhaseComplete, s.Phase())
}

// query returns a query initiated at testStart plus sec seconds.
func query(sec int, url string) domain.Query {
	return domain.Query{
		Request: domain.RequestDescription{
			Method:      "GET",
			URL:         url,
			InitiatedAt: testStart.Add(time.Duration(sec) * time.Second),
		},
		Response: domain.ResponseDescription{Code: 200},
	}
}
