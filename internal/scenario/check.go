package scenario

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/mrz1836/conform/internal/constants"
	"github.com/mrz1836/conform/internal/domain"
	conformerrors "github.com/mrz1836/conform/internal/errors"
)

// FailOption adds optional detail to a failed check.
type FailOption func(*domain.FailedCheck)

// WithDetails attaches a longer explanation to the failed check.
func WithDetails(details string) FailOption {
	return func(fc *domain.FailedCheck) {
		fc.Details = details
	}
}

// WithDetailsf attaches a formatted explanation to the failed check.
func WithDetailsf(format string, args ...any) FailOption {
	return WithDetails(fmt.Sprintf(format, args...))
}

// WithQueryTimestamps references the queries that evidence the failure.
func WithQueryTimestamps(ts ...time.Time) FailOption {
	return func(fc *domain.FailedCheck) {
		fc.QueryTimestamps = append(fc.QueryTimestamps, ts...)
	}
}

// WithAdditionalData attaches structured data to the failed check.
func WithAdditionalData(data map[string]any) FailOption {
	return func(fc *domain.FailedCheck) {
		if len(data) == 0 {
			return
		}
		if fc.AdditionalData == nil {
			fc.AdditionalData = make(map[string]any, len(data))
		}
		maps.Copy(fc.AdditionalData, data)
	}
}

// PendingCheck is one in-flight check obtained from Scenario.Check. Exactly
// one outcome is recorded per check: callers record it explicitly with
// RecordPassed, RecordFailed or Skip, or defer Close to record a pass when
// no outcome was given.
//
//	chk, err := s.Check("Valid response", participant)
//	if err != nil {
//	    return err
//	}
//	defer chk.Close()
//	if resp.Code != http.StatusOK {
//	    return chk.RecordFailed("unexpected status", scenario.WithQueryTimestamps(q.Timestamp()))
//	}
type PendingCheck struct {
	s            *Scenario
	doc          domain.CheckDocumentation
	participants []string
	step         *domain.StepReport
	phase        constants.ScenarioPhase
	recorded     bool
}

// Name returns the documented check name.
func (c *PendingCheck) Name() string {
	return c.doc.Name
}

// Documentation returns the check's documentation.
func (c *PendingCheck) Documentation() domain.CheckDocumentation {
	return c.doc
}

// Recorded reports whether an outcome has been recorded.
func (c *PendingCheck) Recorded() bool {
	return c.recorded
}

func (c *PendingCheck) claim() error {
	if c.recorded {
		return fmt.Errorf("check %q: %w", c.doc.Name, conformerrors.ErrCheckAlreadyRecorded)
	}
	c.recorded = true
	return nil
}

// RecordPassed appends a passed check row to the step.
func (c *PendingCheck) RecordPassed() error {
	if err := c.claim(); err != nil {
		return err
	}
	c.step.PassedChecks = append(c.step.PassedChecks, domain.PassedCheck{
		Name:         c.doc.Name,
		Timestamp:    c.s.clock.Now(),
		Participants: slices.Clone(c.participants),
		Requirements: slices.Clone(c.doc.Requirements),
	})
	c.s.logger.Debug().
		Str("step", c.step.Name).
		Str("check", c.doc.Name).
		Msg("check passed")
	return nil
}

// Skip resolves the check without recording anything. Use it when the
// check's precondition could not be evaluated.
func (c *PendingCheck) Skip() error {
	if err := c.claim(); err != nil {
		return err
	}
	c.s.logger.Debug().
		Str("step", c.step.Name).
		Str("check", c.doc.Name).
		Msg("check skipped")
	return nil
}

// RecordFailed appends a failed check row and decides whether execution may
// continue. The severity comes from the check documentation; with stop-fast
// enabled any Medium or High failure outside cleanup is recorded as Critical.
//
// Returns nil for Low and Medium failures, *ScenarioCannotContinueError for
// High and *TestRunCannotContinueError for Critical. A check documented
// without severity returns ErrMissingSeverity and records nothing.
func (c *PendingCheck) RecordFailed(summary string, opts ...FailOption) error {
	if err := c.claim(); err != nil {
		return err
	}

	severity := c.doc.Severity
	if !severity.IsValid() {
		return fmt.Errorf("check %q in step %q: %w", c.doc.Name, c.step.Name, conformerrors.ErrMissingSeverity)
	}
	if c.s.stopFast &&
		severity != constants.SeverityCritical &&
		severity != constants.SeverityLow &&
		c.phase != constants.PhaseCleaningUp {
		severity = constants.SeverityCritical
	}

	fc := domain.FailedCheck{
		Name:             c.doc.Name,
		DocumentationURL: c.doc.URL,
		Timestamp:        c.s.clock.Now(),
		Summary:          summary,
		Requirements:     slices.Clone(c.doc.Requirements),
		Severity:         severity,
		Participants:     slices.Clone(c.participants),
	}
	for _, opt := range opts {
		opt(&fc)
	}
	c.step.FailedChecks = append(c.step.FailedChecks, fc)

	c.s.logger.Warn().
		Str("step", c.step.Name).
		Str("check", c.doc.Name).
		Str("severity", severity.String()).
		Str("documented_severity", c.doc.Severity.String()).
		Strs("participants", c.participants).
		Msg(summary)

	if c.s.onFailedCheck != nil {
		c.s.onFailedCheck(fc)
	}

	switch severity {
	case constants.SeverityHigh:
		return &ScenarioCannotContinueError{Check: fc}
	case constants.SeverityCritical:
		return &TestRunCannotContinueError{Check: fc}
	case constants.SeverityLow, constants.SeverityMedium:
		return nil
	default:
		return nil
	}
}

// Close records a pass if no outcome was recorded and is a no-op otherwise.
// It is meant to be deferred right after a successful Scenario.Check.
func (c *PendingCheck) Close() error {
	if c.recorded {
		return nil
	}
	return c.RecordPassed()
}
