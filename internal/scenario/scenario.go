package scenario

import (
	"errors"
	"fmt"
	"maps"
	"runtime/debug"

	"github.com/rs/zerolog"

	"github.com/mrz1836/conform/internal/clock"
	"github.com/mrz1836/conform/internal/constants"
	"github.com/mrz1836/conform/internal/domain"
	conformerrors "github.com/mrz1836/conform/internal/errors"
)

// FailedCheckObserver receives every failed check at the moment it is
// recorded, before the control-flow decision is returned.
type FailedCheckObserver func(domain.FailedCheck)

// Option configures a Scenario.
type Option func(*Scenario)

// WithStopFast escalates every Medium or High failure outside cleanup to Critical.
func WithStopFast(stopFast bool) Option {
	return func(s *Scenario) {
		s.stopFast = stopFast
	}
}

// WithAllowUndocumentedChecks substitutes a Medium-severity placeholder for
// checks missing from the documentation instead of failing. It exists to
// test the engine itself and is scoped to this instance only.
func WithAllowUndocumentedChecks(allow bool) Option {
	return func(s *Scenario) {
		s.allowUndocumented = allow
	}
}

// WithOnFailedCheck registers an observer for live failure reporting.
func WithOnFailedCheck(fn FailedCheckObserver) Option {
	return func(s *Scenario) {
		s.onFailedCheck = fn
	}
}

// WithClock sets the time source for report timestamps.
func WithClock(c clock.Clock) Option {
	return func(s *Scenario) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger sets the logger. The default discards all output.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Scenario) {
		s.logger = logger
	}
}

// WithScenarioType records the implementation type of the scenario in its report.
func WithScenarioType(scenarioType string) Option {
	return func(s *Scenario) {
		s.scenarioType = scenarioType
	}
}

// WithResourceOrigins records where each resource used by the scenario came from.
func WithResourceOrigins(origins map[string]string) Option {
	return func(s *Scenario) {
		s.resourceOrigins = maps.Clone(origins)
	}
}

// Scenario is the engine facade driven by scenario-author code. One instance
// runs one scenario from start to finish on a single goroutine; it performs
// no locking.
type Scenario struct {
	doc     *domain.ScenarioDocumentation
	catalog *catalog
	phases  phaseMachine
	report  *reportBuilder

	stopFast          bool
	allowUndocumented bool
	onFailedCheck     FailedCheckObserver
	clock             clock.Clock
	logger            zerolog.Logger
	scenarioType      string
	resourceOrigins   map[string]string

	currentCase *caseEntry
	currentStep *stepEntry
}

// New creates an engine for the scenario described by doc. The returned
// instance is in the NotStarted phase; no report exists until the first write.
func New(doc *domain.ScenarioDocumentation, opts ...Option) (*Scenario, error) {
	if doc == nil {
		return nil, conformerrors.ErrNilDocumentation
	}

	s := &Scenario{
		doc:    doc,
		phases: phaseMachine{phase: constants.PhaseUndefined},
		clock:  clock.RealClock{},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.logger = s.logger.With().Str("scenario", doc.Name).Logger()
	s.catalog = newCatalog(doc, s.allowUndocumented)
	s.report = &reportBuilder{
		clock:            s.clock,
		logger:           s.logger,
		name:             doc.Name,
		scenarioType:     s.scenarioType,
		documentationURL: doc.URL,
		resourceOrigins:  s.resourceOrigins,
	}
	s.phases.phase = constants.PhaseNotStarted
	return s, nil
}

// Phase returns the current lifecycle phase.
func (s *Scenario) Phase() constants.ScenarioPhase {
	return s.phases.phase
}

// Documentation returns the documentation the engine was built from.
func (s *Scenario) Documentation() *domain.ScenarioDocumentation {
	return s.doc
}

// HasCleanup reports whether the documentation declares a cleanup step.
func (s *Scenario) HasCleanup() bool {
	return s.catalog.cleanup != nil
}

// StopFast reports whether failures are escalated to Critical.
func (s *Scenario) StopFast() bool {
	return s.stopFast
}

// BeginTestScenario starts the scenario.
func (s *Scenario) BeginTestScenario() error {
	if err := s.phases.expect(OpBeginTestScenario); err != nil {
		return err
	}
	s.report.ensure()
	s.phases.advance(OpBeginTestScenario)
	s.logger.Debug().Msg("scenario started")
	return nil
}

// BeginTestCase opens the documented case name. Each case may run once.
func (s *Scenario) BeginTestCase(name string) error {
	if err := s.phases.expect(OpBeginTestCase); err != nil {
		return err
	}
	entry, err := s.catalog.testCase(name)
	if err != nil {
		return err
	}
	if s.report.hasCase(name) {
		return fmt.Errorf("test case %q: %w", name, conformerrors.ErrDuplicateTestCase)
	}

	s.report.openCase(entry.doc)
	s.currentCase = entry
	s.phases.advance(OpBeginTestCase)
	s.logger.Debug().Str("case", name).Msg("test case started")
	return nil
}

// BeginTestStep opens the documented step name of the current case.
func (s *Scenario) BeginTestStep(name string) error {
	if err := s.phases.expect(OpBeginTestStep); err != nil {
		return err
	}
	entry, err := s.currentCase.step(name)
	if err != nil {
		return err
	}

	s.report.openStep(entry.doc)
	s.currentStep = entry
	s.phases.advance(OpBeginTestStep)
	s.logger.Debug().Str("case", s.currentCase.doc.Name).Str("step", name).Msg("test step started")
	return nil
}

// EndTestStep closes the running step.
func (s *Scenario) EndTestStep() error {
	if err := s.phases.expect(OpEndTestStep); err != nil {
		return err
	}
	s.report.closeStep()
	s.currentStep = nil
	s.phases.advance(OpEndTestStep)
	return nil
}

// EndTestCase closes the current case.
func (s *Scenario) EndTestCase() error {
	if err := s.phases.expect(OpEndTestCase); err != nil {
		return err
	}
	s.report.closeCase()
	s.currentCase = nil
	s.phases.advance(OpEndTestCase)
	return nil
}

// EndTestScenario closes the case hierarchy; cleanup follows.
func (s *Scenario) EndTestScenario() error {
	if err := s.phases.expect(OpEndTestScenario); err != nil {
		return err
	}
	s.report.closeScenario()
	s.phases.advance(OpEndTestScenario)
	s.logger.Debug().Msg("scenario ended")
	return nil
}

// GoToCleanup closes whatever step, case and scenario are still open so that
// cleanup can begin. It is the escape hatch used after an early abort.
func (s *Scenario) GoToCleanup() error {
	if err := s.phases.expect(OpGoToCleanup); err != nil {
		return err
	}
	if s.phases.phase == constants.PhaseRunningTestStep {
		if err := s.EndTestStep(); err != nil {
			return err
		}
	}
	if s.phases.phase == constants.PhaseReadyForTestStep {
		if err := s.EndTestCase(); err != nil {
			return err
		}
	}
	if s.phases.phase == constants.PhaseReadyForTestCase {
		if err := s.EndTestScenario(); err != nil {
			return err
		}
	}
	s.phases.advance(OpGoToCleanup)
	return nil
}

// BeginCleanup opens the documented cleanup step.
func (s *Scenario) BeginCleanup() error {
	if err := s.phases.expect(OpBeginCleanup); err != nil {
		return err
	}
	if s.catalog.cleanup == nil {
		return fmt.Errorf("scenario %q: %w", s.doc.Name, conformerrors.ErrCleanupNotDocumented)
	}

	s.report.openCleanup(s.catalog.cleanup.doc)
	s.currentStep = s.catalog.cleanup
	s.phases.advance(OpBeginCleanup)
	s.logger.Debug().Msg("cleanup started")
	return nil
}

// SkipCleanup completes a scenario that documents no cleanup step.
func (s *Scenario) SkipCleanup() error {
	if err := s.phases.expect(OpSkipCleanup); err != nil {
		return err
	}
	if s.catalog.cleanup != nil {
		return fmt.Errorf("scenario %q: %w", s.doc.Name, conformerrors.ErrCleanupDocumented)
	}
	s.phases.advance(OpSkipCleanup)
	return nil
}

// EndCleanup closes the cleanup step and completes the scenario.
func (s *Scenario) EndCleanup() error {
	if err := s.phases.expect(OpEndCleanup); err != nil {
		return err
	}
	s.report.closeStep()
	s.currentStep = nil
	s.phases.advance(OpEndCleanup)
	s.logger.Debug().Msg("cleanup ended")
	return nil
}

// EnsureCleanupEnded ends cleanup if it is still running and is a no-op once
// the scenario is complete. Use it when an error may have escaped cleanup.
func (s *Scenario) EnsureCleanupEnded() error {
	if err := s.phases.expect(OpEnsureCleanupEnded); err != nil {
		return err
	}
	if s.phases.phase == constants.PhaseCleaningUp {
		return s.EndCleanup()
	}
	return nil
}

// RecordNote attaches a free-form note to the scenario report. A key that is
// already taken is stored as key_1, key_2, ... instead.
func (s *Scenario) RecordNote(key, message string) error {
	if err := s.phases.expect(OpRecordNote); err != nil {
		return err
	}
	used := s.report.addNote(key, message)
	s.logger.Info().Str("note", used).Msg(message)
	return nil
}

// RecordQuery attaches q to the running step or cleanup. A query whose
// request timestamp matches one already stored in that step is dropped.
func (s *Scenario) RecordQuery(q domain.Query) error {
	if err := s.phases.expect(OpRecordQuery); err != nil {
		return err
	}
	s.report.addQuery(q)
	return nil
}

// RecordQueries records each query in order.
func (s *Scenario) RecordQueries(qs ...domain.Query) error {
	if err := s.phases.expect(OpRecordQuery); err != nil {
		return err
	}
	for _, q := range qs {
		s.report.addQuery(q)
	}
	return nil
}

// Check opens the documented check name of the running step or cleanup.
// The participants are the systems under test the outcome pertains to.
func (s *Scenario) Check(name string, participants ...string) (*PendingCheck, error) {
	if err := s.phases.expect(OpCheck); err != nil {
		return nil, err
	}
	doc, err := s.catalog.check(s.currentStep, name)
	if err != nil {
		return nil, err
	}
	return &PendingCheck{
		s:            s,
		doc:          doc,
		participants: participants,
		step:         s.report.currentStep,
		phase:        s.phases.phase,
	}, nil
}

// RunCheck opens check name, runs fn and records a pass if fn returns nil
// without recording an outcome. When fn returns an error no pass is recorded
// and the error is returned unchanged.
func (s *Scenario) RunCheck(name string, participants []string, fn func(*PendingCheck) error) error {
	chk, err := s.Check(name, participants...)
	if err != nil {
		return err
	}
	if err := fn(chk); err != nil {
		chk.recorded = true
		return err
	}
	return chk.Close()
}

// RecordExecutionError captures err in the report and completes the scenario.
// It is used when an error escapes scenario-author code; the report then
// distinguishes a harness failure from the system under test failing a check.
func (s *Scenario) RecordExecutionError(err error) error {
	if phaseErr := s.phases.expect(OpRecordExecutionError); phaseErr != nil {
		return phaseErr
	}
	if err == nil {
		err = errors.New("unspecified execution error")
	}

	s.report.setExecutionError(&domain.ErrorReport{
		Type:       fmt.Sprintf("%T", err),
		Message:    err.Error(),
		Stacktrace: string(debug.Stack()),
		Timestamp:  s.clock.Now(),
	})
	s.report.currentStep = nil
	s.report.currentCase = nil
	s.currentStep = nil
	s.currentCase = nil
	s.phases.advance(OpRecordExecutionError)

	s.logger.Error().Err(err).Msg("execution error recorded")
	return nil
}

// GetReport returns the scenario report. It never fails: if the scenario has
// not reached Complete, an execution error describing the phase reached is
// recorded and the scenario is forced to Complete first.
func (s *Scenario) GetReport() *domain.ScenarioReport {
	if s.phases.phase != constants.PhaseComplete {
		incomplete := fmt.Errorf("%w: report requested in phase %s", conformerrors.ErrScenarioIncomplete, s.phases.phase)
		if err := s.RecordExecutionError(incomplete); err != nil {
			// Undefined is not accepted by record_execution_error.
			s.phases.phase = constants.PhaseComplete
		}
	}
	return s.report.snapshot()
}
