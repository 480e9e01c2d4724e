// Package report persists scenario and run reports as JSON or YAML and renders
// them as a terminal summary.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/conform/internal/constants"
	"github.com/mrz1836/conform/internal/domain"
	conformerrors "github.com/mrz1836/conform/internal/errors"
)

const (
	dirPerm  = 0o750
	filePerm = 0o600
)

// Document is a report file read from disk. Exactly one field is set.
type Document struct {
	Run      *domain.RunReport
	Scenario *domain.ScenarioReport
}

// Store writes reports below a directory in one format.
type Store struct {
	dir    string
	format string
}

// NewStore creates a store writing format ("json" or "yaml") files below dir.
func NewStore(dir, format string) (*Store, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("report directory: %w", conformerrors.ErrEmptyValue)
	}
	return &Store{dir: dir, format: format}, nil
}

// ValidateFormat returns ErrInvalidReportFormat unless format is json or yaml.
func ValidateFormat(format string) error {
	switch format {
	case constants.ReportFormatJSON, constants.ReportFormatYAML:
		return nil
	default:
		return fmt.Errorf("%w: %q", conformerrors.ErrInvalidReportFormat, format)
	}
}

// WriteRun writes the run report to <dir>/<run id>/run.<format> and returns
// the path written.
func (s *Store) WriteRun(r *domain.RunReport) (string, error) {
	runDir := filepath.Join(s.dir, r.RunID)
	if err := os.MkdirAll(runDir, dirPerm); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}
	path := filepath.Join(runDir, constants.RunReportFileName+"."+s.format)
	return path, s.write(path, r)
}

// WriteScenario writes a single scenario report to
// <dir>/scenario-<name>.<format> and returns the path written.
func (s *Store) WriteScenario(r *domain.ScenarioReport) (string, error) {
	if err := os.MkdirAll(s.dir, dirPerm); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}
	path := filepath.Join(s.dir, constants.ScenarioReportPrefix+Slug(r.Name)+"."+s.format)
	return path, s.write(path, r)
}

func (s *Store) write(path string, v any) error {
	data, err := Marshal(v, s.format)
	if err != nil {
		return err
	}
	return atomicWrite(path, data)
}

// Marshal encodes v as indented JSON or YAML.
func Marshal(v any, format string) ([]byte, error) {
	switch format {
	case constants.ReportFormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal report: %w", err)
		}
		return append(data, '\n'), nil
	case constants.ReportFormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return nil, fmt.Errorf("failed to marshal report: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to marshal report: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: %q", conformerrors.ErrInvalidReportFormat, format)
	}
}

// ReadFile reads a run or scenario report. The format follows the extension
// (.yaml and .yml are YAML, anything else JSON); a document carrying a run_id
// is a run report.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path comes from the command line
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}

	format := constants.ReportFormatJSON
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = constants.ReportFormatYAML
	}

	var probe struct {
		RunID string `json:"run_id" yaml:"run_id"`
	}
	if err := unmarshal(data, format, &probe); err != nil {
		return nil, err
	}

	if probe.RunID != "" {
		var run domain.RunReport
		if err := unmarshal(data, format, &run); err != nil {
			return nil, err
		}
		return &Document{Run: &run}, nil
	}
	var sr domain.ScenarioReport
	if err := unmarshal(data, format, &sr); err != nil {
		return nil, err
	}
	return &Document{Scenario: &sr}, nil
}

func unmarshal(data []byte, format string, v any) error {
	var err error
	if format == constants.ReportFormatYAML {
		err = yaml.Unmarshal(data, v)
	} else {
		err = json.Unmarshal(data, v)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", conformerrors.ErrInvalidReportFormat, err)
	}
	return nil
}

// Slug converts a scenario name into a file-name-safe lowercase token.
// Diacritics are folded away so "Déconfliction" becomes "deconfliction".
func Slug(name string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(folded)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "unnamed"
	}
	return slug
}

// atomicWrite writes data to path using write-then-rename.
func atomicWrite(path string, data []byte) error {
	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm) //#nosec G304 -- path is constructed internally
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync report: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close report: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename report: %w", err)
	}
	return nil
}
