package scenario

import (
	"fmt"

	"github.com/mrz1836/conform/internal/constants"
	"github.com/mrz1836/conform/internal/domain"
	conformerrors "github.com/mrz1836/conform/internal/errors"
)

// UndocumentedCheckSeverity is assigned to checks substituted when undocumented
// checks are allowed.
const UndocumentedCheckSeverity = constants.SeverityMedium

// caseEntry is a documented test case with its steps indexed by name.
type caseEntry struct {
	doc   domain.CaseDocumentation
	steps map[string]*stepEntry
}

// stepEntry is a documented step (or cleanup) with its checks indexed by name.
type stepEntry struct {
	doc    domain.StepDocumentation
	checks map[string]domain.CheckDocumentation
}

// catalog resolves case, step and check names against the scenario
// documentation. It is built once and never modified.
type catalog struct {
	cases             map[string]*caseEntry
	cleanup           *stepEntry
	allowUndocumented bool
}

// newCatalog indexes doc. When a name repeats within one scope the first
// documented entry wins.
func newCatalog(doc *domain.ScenarioDocumentation, allowUndocumented bool) *catalog {
	c := &catalog{
		cases:             make(map[string]*caseEntry, len(doc.Cases)),
		allowUndocumented: allowUndocumented,
	}
	for _, cd := range doc.Cases {
		if _, exists := c.cases[cd.Name]; exists {
			continue
		}
		entry := &caseEntry{doc: cd, steps: make(map[string]*stepEntry, len(cd.Steps))}
		for _, sd := range cd.Steps {
			if _, exists := entry.steps[sd.Name]; !exists {
				entry.steps[sd.Name] = newStepEntry(sd)
			}
		}
		c.cases[cd.Name] = entry
	}
	if doc.Cleanup != nil {
		c.cleanup = newStepEntry(*doc.Cleanup)
	}
	return c
}

func newStepEntry(sd domain.StepDocumentation) *stepEntry {
	entry := &stepEntry{doc: sd, checks: make(map[string]domain.CheckDocumentation, len(sd.Checks))}
	for _, check := range sd.Checks {
		if _, exists := entry.checks[check.Name]; !exists {
			entry.checks[check.Name] = check
		}
	}
	return entry
}

// testCase resolves a documented case by name.
func (c *catalog) testCase(name string) (*caseEntry, error) {
	entry, ok := c.cases[name]
	if !ok {
		return nil, fmt.Errorf("test case %q: %w", name, conformerrors.ErrUnknownTestCase)
	}
	return entry, nil
}

// step resolves a documented step by name within the case.
func (e *caseEntry) step(name string) (*stepEntry, error) {
	entry, ok := e.steps[name]
	if !ok {
		return nil, fmt.Errorf("test step %q in case %q: %w", name, e.doc.Name, conformerrors.ErrUnknownTestStep)
	}
	return entry, nil
}

// check resolves a documented check by name within the step. When
// undocumented checks are allowed, unknown names yield a Medium-severity
// placeholder instead of an error.
func (c *catalog) check(step *stepEntry, name string) (domain.CheckDocumentation, error) {
	if doc, ok := step.checks[name]; ok {
		return doc, nil
	}
	if c.allowUndocumented {
		return domain.CheckDocumentation{Name: name, Severity: UndocumentedCheckSeverity}, nil
	}
	return domain.CheckDocumentation{}, fmt.Errorf("check %q in step %q: %w", name, step.doc.Name, conformerrors.ErrUnknownCheck)
}
