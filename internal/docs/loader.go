package docs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mrz1836/conform/internal/constants"
	"github.com/mrz1836/conform/internal/domain"
	conformerrors "github.com/mrz1836/conform/internal/errors"
)

// FileScenario is the on-disk form of scenario documentation.
// Field names use both yaml and json tags for dual format support.
type FileScenario struct {
	Name    string     `yaml:"name" json:"name"`
	URL     string     `yaml:"url,omitempty" json:"url,omitempty"`
	Cases   []FileCase `yaml:"cases" json:"cases"`
	Cleanup *FileStep  `yaml:"cleanup,omitempty" json:"cleanup,omitempty"`
}

// FileCase is the on-disk form of a test case.
type FileCase struct {
	Name  string     `yaml:"name" json:"name"`
	URL   string     `yaml:"url,omitempty" json:"url,omitempty"`
	Steps []FileStep `yaml:"steps" json:"steps"`
}

// FileStep is the on-disk form of a test step or the cleanup step.
type FileStep struct {
	Name   string      `yaml:"name" json:"name"`
	URL    string      `yaml:"url,omitempty" json:"url,omitempty"`
	Checks []FileCheck `yaml:"checks,omitempty" json:"checks,omitempty"`
}

// FileCheck is the on-disk form of a check. Severity is matched
// case-insensitively and may be omitted.
type FileCheck struct {
	Name         string   `yaml:"name" json:"name"`
	URL          string   `yaml:"url,omitempty" json:"url,omitempty"`
	Severity     string   `yaml:"severity,omitempty" json:"severity,omitempty"`
	Requirements []string `yaml:"requirements,omitempty" json:"requirements,omitempty"`
}

// Loader loads scenario documentation from files.
type Loader struct {
	basePath string
}

// NewLoader creates a loader resolving relative paths against basePath
// (typically the configured docs directory).
func NewLoader(basePath string) *Loader {
	return &Loader{basePath: basePath}
}

// LoadFromFile loads and validates scenario documentation from a YAML or JSON
// file. The format is chosen by extension: .json is JSON, anything else YAML.
func (l *Loader) LoadFromFile(path string) (*domain.ScenarioDocumentation, error) {
	resolved := l.resolvePath(path)

	data, err := os.ReadFile(resolved) //nolint:gosec // Path comes from the command line or config
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: file not found: %s", conformerrors.ErrInvalidDocumentation, resolved)
		}
		return nil, fmt.Errorf("read documentation %s: %w", resolved, err)
	}

	doc, err := Parse(data, detectFormat(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", resolved, err)
	}
	return doc, nil
}

// LoadAll loads every path in order, failing on the first invalid file.
func (l *Loader) LoadAll(paths []string) ([]*domain.ScenarioDocumentation, error) {
	loaded := make([]*domain.ScenarioDocumentation, 0, len(paths))
	for _, p := range paths {
		doc, err := l.LoadFromFile(p)
		if err != nil {
			return nil, err
		}
		loaded = append(loaded, doc)
	}
	return loaded, nil
}

// LoadDir loads every documentation file Files finds in dir.
func (l *Loader) LoadDir(dir string) ([]*domain.ScenarioDocumentation, error) {
	paths, err := l.Files(dir)
	if err != nil {
		return nil, err
	}
	return l.LoadAll(paths)
}

// Files lists the .yaml, .yml and .json files directly inside dir, sorted by
// file name.
func (l *Loader) Files(dir string) ([]string, error) {
	resolved := l.resolvePath(dir)
	entries, err := os.ReadDir(resolved)
	if err != nil {
		return nil, fmt.Errorf("read documentation directory %s: %w", resolved, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml", ".json":
			paths = append(paths, filepath.Join(resolved, e.Name()))
		}
	}
	slices.Sort(paths)
	return paths, nil
}

// Parse decodes and validates scenario documentation. format is "json" or
// "yaml".
func Parse(data []byte, format string) (*domain.ScenarioDocumentation, error) {
	var file FileScenario
	if format == "json" {
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("%w: %w", conformerrors.ErrInvalidDocumentation, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("%w: %w", conformerrors.ErrInvalidDocumentation, err)
		}
	}

	doc, err := toDocumentation(&file)
	if err != nil {
		return nil, err
	}
	if err := Validate(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (l *Loader) resolvePath(path string) string {
	if filepath.IsAbs(path) || l.basePath == "" {
		return path
	}
	return filepath.Join(l.basePath, path)
}

func detectFormat(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return "json"
	}
	return "yaml"
}

func toDocumentation(f *FileScenario) (*domain.ScenarioDocumentation, error) {
	doc := &domain.ScenarioDocumentation{
		Name:  strings.TrimSpace(f.Name),
		URL:   f.URL,
		Cases: make([]domain.CaseDocumentation, 0, len(f.Cases)),
	}
	for i, fc := range f.Cases {
		c := domain.CaseDocumentation{
			Name:  strings.TrimSpace(fc.Name),
			URL:   fc.URL,
			Steps: make([]domain.StepDocumentation, 0, len(fc.Steps)),
		}
		for j := range fc.Steps {
			step, err := toStep(&fc.Steps[j])
			if err != nil {
				return nil, fmt.Errorf("case %d (%s) step %d: %w", i, fc.Name, j, err)
			}
			c.Steps = append(c.Steps, step)
		}
		doc.Cases = append(doc.Cases, c)
	}
	if f.Cleanup != nil {
		cleanup, err := toStep(f.Cleanup)
		if err != nil {
			return nil, fmt.Errorf("cleanup: %w", err)
		}
		doc.Cleanup = &cleanup
	}
	return doc, nil
}

func toStep(f *FileStep) (domain.StepDocumentation, error) {
	step := domain.StepDocumentation{
		Name: strings.TrimSpace(f.Name),
		URL:  f.URL,
	}
	for _, fc := range f.Checks {
		check := domain.CheckDocumentation{
			Name:         strings.TrimSpace(fc.Name),
			URL:          fc.URL,
			Requirements: fc.Requirements,
		}
		if strings.TrimSpace(fc.Severity) != "" {
			sev, ok := constants.ParseSeverity(fc.Severity)
			if !ok {
				return step, fmt.Errorf("%w: check %q: invalid severity %q: must be one of: %s",
					conformerrors.ErrInvalidDocumentation, fc.Name, fc.Severity, severityNames())
			}
			check.Severity = sev
		}
		step.Checks = append(step.Checks, check)
	}
	return step, nil
}

func severityNames() string {
	all := constants.AllSeverities()
	names := make([]string, len(all))
	for i, s := range all {
		names[i] = s.String()
	}
	return strings.Join(names, ", ")
}
