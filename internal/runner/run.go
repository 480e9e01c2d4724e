package runner

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/conform/internal/constants"
	"github.com/mrz1836/conform/internal/domain"
	conformerrors "github.com/mrz1836/conform/internal/errors"
)

// RunAll runs every scenario and aggregates the reports. Scenarios start in
// order, up to Parallelism at a time, each with its own engine. A critical
// failure cancels the scenarios that have not started yet and marks the run
// as stopped early; scenarios already running receive a cancelled context.
// A scenario that cannot be started also marks the run as stopped early.
func (d *Driver) RunAll(ctx context.Context, scenarios []Scenario) *domain.RunReport {
	run := &domain.RunReport{
		SchemaVersion: constants.ReportSchemaVersion,
		RunID:         uuid.NewString(),
		StartTime:     d.config.Clock.Now(),
		StopFast:      d.config.StopFast,
	}
	log := d.logger.With().Str("run_id", run.RunID).Logger()
	log.Info().
		Int("scenarios", len(scenarios)).
		Int("parallelism", d.config.Parallelism).
		Bool("stop_fast", d.config.StopFast).
		Msg("starting test run")

	reports := make([]*domain.ScenarioReport, len(scenarios))
	var (
		mu      sync.Mutex
		skipped int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.config.Parallelism)
	for i, sc := range scenarios {
		g.Go(func() error {
			if gctx.Err() != nil {
				mu.Lock()
				skipped++
				mu.Unlock()
				return nil
			}
			report, err := d.RunScenario(gctx, sc)
			reports[i] = report
			if err != nil && !errors.Is(err, conformerrors.ErrTestRunCannotContinue) {
				log.Error().Err(err).Int("index", i).Msg("scenario not run")
				mu.Lock()
				skipped++
				mu.Unlock()
				return nil
			}
			return err
		})
	}
	err := g.Wait()

	for _, r := range reports {
		if r != nil {
			run.Scenarios = append(run.Scenarios, r)
		}
	}
	if run.Scenarios == nil {
		run.Scenarios = []*domain.ScenarioReport{}
	}

	run.StoppedEarly = err != nil || skipped > 0
	end := d.config.Clock.Now()
	run.EndTime = &end
	run.Successful = run.ComputeSuccessful()

	log.Info().
		Bool("successful", run.Successful).
		Bool("stopped_early", run.StoppedEarly).
		Int("skipped", skipped).
		Msg("test run finished")
	return run
}
