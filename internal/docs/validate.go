// Package docs loads scenario documentation from YAML or JSON files and
// validates its structure before an engine is built from it.
package docs

import (
	"fmt"
	"strings"

	"github.com/mrz1836/conform/internal/domain"
	conformerrors "github.com/mrz1836/conform/internal/errors"
)

// Validate checks that doc names every scenario, case, step and check, that
// names are unique within their scope and that every declared severity is
// known. It returns nil for valid documentation.
func Validate(doc *domain.ScenarioDocumentation) error {
	if doc == nil {
		return conformerrors.ErrNilDocumentation
	}
	if strings.TrimSpace(doc.Name) == "" {
		return fmt.Errorf("%w: scenario name is required", conformerrors.ErrInvalidDocumentation)
	}
	if len(doc.Cases) == 0 && doc.Cleanup == nil {
		return fmt.Errorf("%w: scenario %q documents no test cases", conformerrors.ErrInvalidDocumentation, doc.Name)
	}

	cases := make(map[string]struct{}, len(doc.Cases))
	for i, c := range doc.Cases {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("%w: case %d: name is required", conformerrors.ErrInvalidDocumentation, i)
		}
		if _, dup := cases[c.Name]; dup {
			return fmt.Errorf("%w: case %q", conformerrors.ErrDuplicateName, c.Name)
		}
		cases[c.Name] = struct{}{}

		steps := make(map[string]struct{}, len(c.Steps))
		for j := range c.Steps {
			step := &c.Steps[j]
			if err := validateStep(step); err != nil {
				return fmt.Errorf("case %q step %d: %w", c.Name, j, err)
			}
			if _, dup := steps[step.Name]; dup {
				return fmt.Errorf("case %q: %w: step %q", c.Name, conformerrors.ErrDuplicateName, step.Name)
			}
			steps[step.Name] = struct{}{}
		}
	}

	if doc.Cleanup != nil {
		if err := validateStep(doc.Cleanup); err != nil {
			return fmt.Errorf("cleanup: %w", err)
		}
	}
	return nil
}

func validateStep(step *domain.StepDocumentation) error {
	if strings.TrimSpace(step.Name) == "" {
		return fmt.Errorf("%w: step name is required", conformerrors.ErrInvalidDocumentation)
	}
	checks := make(map[string]struct{}, len(step.Checks))
	for k, check := range step.Checks {
		if strings.TrimSpace(check.Name) == "" {
			return fmt.Errorf("%w: step %q check %d: name is required", conformerrors.ErrInvalidDocumentation, step.Name, k)
		}
		if _, dup := checks[check.Name]; dup {
			return fmt.Errorf("step %q: %w: check %q", step.Name, conformerrors.ErrDuplicateName, check.Name)
		}
		checks[check.Name] = struct{}{}
		if check.Severity != "" && !check.Severity.IsValid() {
			return fmt.Errorf("%w: check %q: invalid severity %q", conformerrors.ErrInvalidDocumentation, check.Name, check.Severity)
		}
	}
	return nil
}
