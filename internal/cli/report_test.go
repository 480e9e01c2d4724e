package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/conform/internal/constants"
	"github.com/mrz1836/conform/internal/domain"
	conformerrors "github.com/mrz1836/conform/internal/errors"
	"github.com/mrz1836/conform/internal/report"
)

func sampleScenario(failed bool) *domain.ScenarioReport {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Second)
	step := &domain.StepReport{
		Name:         "Inject flight",
		StartTime:    start,
		EndTime:      &end,
		PassedChecks: []domain.PassedCheck{{Name: "Successful injection", Timestamp: start}},
		FailedChecks: []domain.FailedCheck{},
	}
	if failed {
		step.FailedChecks = append(step.FailedChecks, domain.FailedCheck{
			Name:      "Operational intent shared",
			Timestamp: start,
			Summary:   "intent missing from DSS",
			Severity:  constants.SeverityMedium,
		})
	}
	sr := &domain.ScenarioReport{
		Name:      "Nominal planning",
		StartTime: start,
		EndTime:   &end,
		Cases:     []*domain.CaseReport{{Name: "Plan flight", StartTime: start, EndTime: &end, Steps: []*domain.StepReport{step}}},
	}
	sr.Successful = sr.ComputeSuccessful()
	return sr
}

func writeScenarioReport(t *testing.T, sr *domain.ScenarioReport, format string) string {
	t.Helper()
	store, err := report.NewStore(t.TempDir(), format)
	require.NoError(t, err)
	path, err := store.WriteScenario(sr)
	require.NoError(t, err)
	return path
}

func TestRunReportShow_Text(t *testing.T) {
	path := writeScenarioReport(t, sampleScenario(true), constants.ReportFormatYAML)

	var buf bytes.Buffer
	require.NoError(t, runReportShow(context.Background(), &buf, OutputText, path, false))

	out := buf.String()
	assert.Contains(t, out, "Scenario: Nominal planning  FAIL")
	assert.Contains(t, out, "Checks: 1 passed, 1 failed")
	assert.Contains(t, out, "✗ [Medium] Operational intent shared: intent missing from DSS")
}

func TestRunReportShow_JSON(t *testing.T) {
	path := writeScenarioReport(t, sampleScenario(false), constants.ReportFormatYAML)

	var buf bytes.Buffer
	require.NoError(t, runReportShow(context.Background(), &buf, OutputJSON, path, true))

	var got domain.ScenarioReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "Nominal planning", got.Name)
	assert.True(t, got.Successful)
}

func TestRunReportShow_Run(t *testing.T) {
	store, err := report.NewStore(t.TempDir(), constants.ReportFormatJSON)
	require.NoError(t, err)
	sr := sampleScenario(false)
	run := &domain.RunReport{
		SchemaVersion: constants.ReportSchemaVersion,
		RunID:         "0b6c9f52-1d1e-4b43-9a53-2f0e4a1c7d10",
		StartTime:     sr.StartTime,
		EndTime:       sr.EndTime,
		Scenarios:     []*domain.ScenarioReport{sr},
	}
	run.Successful = run.ComputeSuccessful()
	path, err := store.WriteRun(run)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, runReportShow(context.Background(), &buf, OutputText, path, true))
	assert.Contains(t, buf.String(), "Run 0b6c9f52-1d1e-4b43-9a53-2f0e4a1c7d10  PASS")
	assert.Contains(t, buf.String(), "  Scenario: Nominal planning  PASS")
}

func TestRunReportShow_FailFlag(t *testing.T) {
	path := writeScenarioReport(t, sampleScenario(true), constants.ReportFormatJSON)

	require.NoError(t, runReportShow(context.Background(), &bytes.Buffer{}, OutputText, path, false))

	err := runReportShow(context.Background(), &bytes.Buffer{}, OutputText, path, true)
	require.ErrorIs(t, err, conformerrors.ErrReportUnsuccessful)
	assert.Equal(t, ExitError, ExitCodeForError(err))
}

func TestRunReportShow_Errors(t *testing.T) {
	dir := t.TempDir()

	err := runReportShow(context.Background(), &bytes.Buffer{}, OutputText, filepath.Join(dir, "missing.json"), false)
	require.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("[1, 2"), 0o600))
	err = runReportShow(context.Background(), &bytes.Buffer{}, OutputText, bad, false)
	require.ErrorIs(t, err, conformerrors.ErrInvalidReportFormat)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = runReportShow(ctx, &bytes.Buffer{}, OutputText, bad, false)
	require.ErrorIs(t, err, context.Canceled)
}

func TestReportShowCmd_RequiresOneArg(t *testing.T) {
	isolate(t)

	_, err := executeRoot(t, "report", "show")
	require.Error(t, err)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
}
