// Package runner drives scenario implementations through the engine: it
// builds one engine per scenario, applies the abort policy to the control-flow
// errors the engine returns and aggregates scenario reports into a run report.
package runner

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/rs/zerolog"

	"github.com/mrz1836/conform/internal/clock"
	"github.com/mrz1836/conform/internal/config"
	"github.com/mrz1836/conform/internal/constants"
	"github.com/mrz1836/conform/internal/domain"
	conformerrors "github.com/mrz1836/conform/internal/errors"
	"github.com/mrz1836/conform/internal/scenario"
)

// Scenario is a scenario implementation. Run drives the engine from
// begin_test_scenario through end_test_scenario; Cleanup drives it from
// ReadyForCleanup to Complete.
type Scenario interface {
	Documentation() *domain.ScenarioDocumentation
	Run(ctx context.Context, s *scenario.Scenario) error
	Cleanup(ctx context.Context, s *scenario.Scenario) error
}

// NoCleanup can be embedded by scenarios that document no cleanup step.
type NoCleanup struct{}

// Cleanup skips cleanup.
func (NoCleanup) Cleanup(_ context.Context, s *scenario.Scenario) error {
	return s.SkipCleanup()
}

// FailureObserver receives every failed check as it is recorded, with the
// name of the scenario that recorded it. It may be called concurrently when
// scenarios run in parallel.
type FailureObserver func(scenarioName string, fc domain.FailedCheck)

// Config holds run-wide settings for a Driver.
type Config struct {
	// StopFast escalates Medium and High failures outside cleanup to Critical.
	StopFast bool

	// Parallelism is the number of scenario instances run concurrently.
	// Values below 1 run sequentially.
	Parallelism int

	// Clock is the time source for reports. If nil, the real clock is used.
	Clock clock.Clock

	// FailureObserver is optional.
	FailureObserver FailureObserver
}

// ConfigFromSettings builds a driver Config from the run section of the
// loaded configuration.
func ConfigFromSettings(run config.RunConfig) Config {
	return Config{StopFast: run.StopFast, Parallelism: run.Parallelism}
}

// Driver runs scenarios.
type Driver struct {
	config Config
	logger zerolog.Logger
}

// NewDriver creates a Driver.
func NewDriver(cfg Config, logger zerolog.Logger) *Driver {
	if cfg.Clock == nil {
		cfg.Clock = clock.RealClock{}
	}
	if cfg.Parallelism < 1 {
		cfg.Parallelism = constants.DefaultParallelism
	}
	if cfg.Parallelism > constants.MaxParallelism {
		cfg.Parallelism = constants.MaxParallelism
	}
	return &Driver{config: cfg, logger: logger}
}

// RunScenario runs sc to completion and returns its report. The report is
// returned even when the scenario failed or errored. The returned error is
// non-nil only when a critical failure means the test run must stop; it
// wraps ErrTestRunCannotContinue.
func (d *Driver) RunScenario(ctx context.Context, sc Scenario) (*domain.ScenarioReport, error) {
	doc := sc.Documentation()
	if doc == nil {
		return nil, fmt.Errorf("%T: %w", sc, conformerrors.ErrNilDocumentation)
	}
	log := d.logger.With().Str("scenario", doc.Name).Logger()

	engine, err := scenario.New(doc,
		scenario.WithStopFast(d.config.StopFast),
		scenario.WithClock(d.config.Clock),
		scenario.WithLogger(d.logger),
		scenario.WithScenarioType(fmt.Sprintf("%T", sc)),
		scenario.WithOnFailedCheck(d.observer(doc.Name)),
	)
	if err != nil {
		return nil, err
	}

	log.Info().Msg("running scenario")
	runErr := invoke(ctx, engine, sc.Run)
	stopErr := d.afterRun(engine, runErr, log)

	if engine.Phase() == constants.PhaseReadyForCleanup {
		cleanupErr := invoke(ctx, engine, sc.Cleanup)
		if err := d.afterCleanup(engine, cleanupErr, log); err != nil && stopErr == nil {
			stopErr = err
		}
	}

	report := engine.GetReport()
	log.Info().
		Bool("successful", report.Successful).
		Bool("execution_error", report.ExecutionError != nil).
		Msg("scenario finished")
	return report, stopErr
}

// afterRun applies the abort policy to the outcome of Run and leaves the
// engine either in ReadyForCleanup or Complete.
func (d *Driver) afterRun(engine *scenario.Scenario, runErr error, log zerolog.Logger) error {
	var (
		abort *scenario.ScenarioCannotContinueError
		stop  *scenario.TestRunCannotContinueError
	)

	switch {
	case runErr == nil:
		if engine.Phase() != constants.PhaseReadyForCleanup {
			incomplete := fmt.Errorf("%w: run returned in phase %s", conformerrors.ErrScenarioIncomplete, engine.Phase())
			d.recordExecutionError(engine, incomplete, log)
		}
		return nil

	case errors.As(runErr, &abort):
		log.Warn().Str("check", abort.Check.Name).Msg("scenario stopped by high severity failure")
		d.toCleanup(engine, "scenario_stopped", runErr, log)
		return nil

	case errors.As(runErr, &stop):
		log.Error().Str("check", stop.Check.Name).Msg("test run stopped by critical failure")
		d.toCleanup(engine, "test_run_stopped", runErr, log)
		return runErr

	default:
		d.recordExecutionError(engine, runErr, log)
		return nil
	}
}

// afterCleanup makes sure the engine reaches Complete once Cleanup returns.
func (d *Driver) afterCleanup(engine *scenario.Scenario, cleanupErr error, log zerolog.Logger) error {
	var stopErr error
	if cleanupErr != nil {
		switch {
		case errors.Is(cleanupErr, conformerrors.ErrTestRunCannotContinue):
			stopErr = cleanupErr
			log.Error().Err(cleanupErr).Msg("critical failure during cleanup")
		case errors.Is(cleanupErr, conformerrors.ErrScenarioCannotContinue):
			log.Warn().Err(cleanupErr).Msg("cleanup stopped by high severity failure")
		default:
			d.recordExecutionError(engine, fmt.Errorf("cleanup: %w", cleanupErr), log)
			return stopErr
		}
	}

	switch engine.Phase() {
	case constants.PhaseCleaningUp, constants.PhaseComplete:
		if err := engine.EnsureCleanupEnded(); err != nil {
			d.recordExecutionError(engine, err, log)
		}
	default:
		incomplete := fmt.Errorf("%w: cleanup returned in phase %s", conformerrors.ErrScenarioIncomplete, engine.Phase())
		d.recordExecutionError(engine, incomplete, log)
	}
	return stopErr
}

// toCleanup moves an aborted scenario to ReadyForCleanup and notes why.
func (d *Driver) toCleanup(engine *scenario.Scenario, noteKey string, cause error, log zerolog.Logger) {
	if err := engine.GoToCleanup(); err != nil {
		d.recordExecutionError(engine, errors.Join(cause, err), log)
		return
	}
	if err := engine.RecordNote(noteKey, cause.Error()); err != nil {
		log.Debug().Err(err).Msg("could not record abort note")
	}
}

func (d *Driver) recordExecutionError(engine *scenario.Scenario, err error, log zerolog.Logger) {
	log.Error().Err(err).Str("phase", engine.Phase().String()).Msg("scenario execution error")
	if recErr := engine.RecordExecutionError(err); recErr != nil {
		log.Warn().Err(recErr).Msg("execution error not recorded")
	}
}

func (d *Driver) observer(scenarioName string) scenario.FailedCheckObserver {
	return func(fc domain.FailedCheck) {
		if d.config.FailureObserver != nil {
			d.config.FailureObserver(scenarioName, fc)
		}
	}
}

// invoke calls fn, converting a panic into an error wrapping ErrScenarioPanicked.
func invoke(ctx context.Context, engine *scenario.Scenario, fn func(context.Context, *scenario.Scenario) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v\n%s", conformerrors.ErrScenarioPanicked, r, debug.Stack())
		}
	}()
	return fn(ctx, engine)
}
