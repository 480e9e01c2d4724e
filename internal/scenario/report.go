package scenario

import (
	"fmt"
	"maps"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/conform/internal/clock"
	"github.com/mrz1836/conform/internal/domain"
)

// reportBuilder owns the report tree of one scenario instance. The root is
// created on the first write; case and step nodes are appended as they
// begin and stamped with an end time when they close.
type reportBuilder struct {
	clock  clock.Clock
	logger zerolog.Logger

	name             string
	scenarioType     string
	documentationURL string
	resourceOrigins  map[string]string

	report      *domain.ScenarioReport
	currentCase *domain.CaseReport
	currentStep *domain.StepReport
}

// ensure returns the scenario report, creating it on first use.
func (b *reportBuilder) ensure() *domain.ScenarioReport {
	if b.report == nil {
		b.report = &domain.ScenarioReport{
			Name:             b.name,
			ScenarioType:     b.scenarioType,
			DocumentationURL: b.documentationURL,
			ResourceOrigins:  maps.Clone(b.resourceOrigins),
			StartTime:        b.clock.Now(),
			Cases:            []*domain.CaseReport{},
		}
	}
	return b.report
}

func (b *reportBuilder) now() *time.Time {
	t := b.clock.Now()
	return &t
}

// hasCase reports whether a case with this name was already begun.
func (b *reportBuilder) hasCase(name string) bool {
	if b.report == nil {
		return false
	}
	for _, c := range b.report.Cases {
		if c.Name == name {
			return true
		}
	}
	return false
}

func (b *reportBuilder) openCase(doc domain.CaseDocumentation) {
	r := b.ensure()
	b.currentCase = &domain.CaseReport{
		Name:             doc.Name,
		DocumentationURL: doc.URL,
		StartTime:        b.clock.Now(),
		Steps:            []*domain.StepReport{},
	}
	r.Cases = append(r.Cases, b.currentCase)
}

func (b *reportBuilder) closeCase() {
	if b.currentCase != nil {
		b.currentCase.EndTime = b.now()
	}
	b.currentCase = nil
}

func (b *reportBuilder) newStep(doc domain.StepDocumentation) *domain.StepReport {
	return &domain.StepReport{
		Name:             doc.Name,
		DocumentationURL: doc.URL,
		StartTime:        b.clock.Now(),
		PassedChecks:     []domain.PassedCheck{},
		FailedChecks:     []domain.FailedCheck{},
	}
}

func (b *reportBuilder) openStep(doc domain.StepDocumentation) *domain.StepReport {
	b.currentStep = b.newStep(doc)
	b.currentCase.Steps = append(b.currentCase.Steps, b.currentStep)
	return b.currentStep
}

func (b *reportBuilder) openCleanup(doc domain.StepDocumentation) *domain.StepReport {
	r := b.ensure()
	b.currentStep = b.newStep(doc)
	r.Cleanup = b.currentStep
	return b.currentStep
}

// closeStep ends the open step or cleanup.
func (b *reportBuilder) closeStep() {
	if b.currentStep != nil {
		b.currentStep.EndTime = b.now()
	}
	b.currentStep = nil
}

func (b *reportBuilder) closeScenario() {
	r := b.ensure()
	if r.EndTime == nil {
		r.EndTime = b.now()
	}
}

// addNote stores message under key, probing key_1, key_2, ... when key is
// taken. Existing notes are never overwritten. Returns the key used.
func (b *reportBuilder) addNote(key, message string) string {
	r := b.ensure()
	if r.Notes == nil {
		r.Notes = make(map[string]domain.Note)
	}
	used := key
	for i := 1; ; i++ {
		if _, taken := r.Notes[used]; !taken {
			break
		}
		used = fmt.Sprintf("%s_%d", key, i)
	}
	r.Notes[used] = domain.Note{Message: message, Timestamp: b.clock.Now()}
	return used
}

// addQuery appends q to the open step unless a query with the same request
// timestamp is already stored there. Returns false for dropped duplicates.
func (b *reportBuilder) addQuery(q domain.Query) bool {
	b.ensure()
	if b.currentStep.HasQueryAt(q.Timestamp()) {
		b.logger.Debug().
			Str("step", b.currentStep.Name).
			Str("method", q.Request.Method).
			Str("url", q.Request.URL).
			Time("initiated_at", q.Timestamp()).
			Msg("dropping query with duplicate request timestamp")
		return false
	}
	b.currentStep.Queries = append(b.currentStep.Queries, q)
	return true
}

func (b *reportBuilder) setExecutionError(er *domain.ErrorReport) {
	r := b.ensure()
	r.ExecutionError = er
	if r.EndTime == nil {
		r.EndTime = b.now()
	}
}

// snapshot refreshes the derived verdict and returns the report.
func (b *reportBuilder) snapshot() *domain.ScenarioReport {
	r := b.ensure()
	r.Successful = r.ComputeSuccessful()
	return r
}
