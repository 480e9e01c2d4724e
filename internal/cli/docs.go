package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mrz1836/conform/internal/docs"
	"github.com/mrz1836/conform/internal/domain"
	"github.com/mrz1836/conform/internal/errors"
	"github.com/mrz1836/conform/internal/report"
)

func newDocsCmd(flags *GlobalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Work with scenario documentation",
	}
	cmd.AddCommand(newDocsValidateCmd(flags))
	return cmd
}

func newDocsValidateCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file...]",
		Short: "Validate scenario documentation files",
		Long: `Validate scenario documentation (YAML or JSON).

Every file is checked for a scenario name, at least one test case or a cleanup
step, unique case, step and check names, and valid check severities (Low,
Medium, High, Critical). Without arguments every documentation file in the
configured docs.dir is validated.

Examples:
  conform docs validate scenarios/nominal_planning.yaml
  conform docs validate                      # everything in docs.dir
  conform docs validate -o json a.yaml b.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDocsValidate(cmd.Context(), cmd.OutOrStdout(), flags.Output, args)
		},
	}
}

// docsResult is the outcome of validating one documentation file.
type docsResult struct {
	File     string `json:"file"`
	Valid    bool   `json:"valid"`
	Scenario string `json:"scenario,omitempty"`
	Cases    int    `json:"cases,omitempty"`
	Checks   int    `json:"checks,omitempty"`
	Cleanup  bool   `json:"cleanup,omitempty"`
	Error    string `json:"error,omitempty"`
}

func runDocsValidate(ctx context.Context, w io.Writer, format string, files []string) error {
	logger := GetLogger()

	loader := docs.NewLoader("")
	if len(files) == 0 {
		dir := configFrom(ctx).Docs.Dir
		found, err := loader.Files(dir)
		if err != nil {
			return err
		}
		if len(found) == 0 {
			return fmt.Errorf("%w: no documentation files in %s", errors.ErrInvalidDocumentation, dir)
		}
		files = found
	}

	results := make([]docsResult, 0, len(files))
	invalid := 0
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc, err := loader.LoadFromFile(file)
		if err != nil {
			invalid++
			logger.Debug().Err(err).Str("file", file).Msg("documentation invalid")
			results = append(results, docsResult{File: file, Error: err.Error()})
			continue
		}
		results = append(results, summarizeDocs(file, doc))
	}

	if format == OutputJSON {
		if err := writeJSON(w, results); err != nil {
			return err
		}
		if invalid > 0 {
			return errors.ErrJSONErrorOutput
		}
		return nil
	}

	styles := report.NewStyles(report.HasColorSupport(w))
	for _, r := range results {
		if r.Valid {
			_, _ = fmt.Fprintf(w, "%s %s: %s (%d cases, %d checks)\n",
				styles.Pass.Render("✓"), r.File, r.Scenario, r.Cases, r.Checks)
			continue
		}
		_, _ = fmt.Fprintf(w, "%s %s: %s\n", styles.Fail.Render("✗"), r.File, r.Error)
	}

	if invalid > 0 {
		return fmt.Errorf("%w: %d of %d files failed validation", errors.ErrInvalidDocumentation, invalid, len(files))
	}
	return nil
}

func summarizeDocs(file string, doc *domain.ScenarioDocumentation) docsResult {
	checks := 0
	for _, c := range doc.Cases {
		for _, s := range c.Steps {
			checks += len(s.Checks)
		}
	}
	if doc.Cleanup != nil {
		checks += len(doc.Cleanup.Checks)
	}
	return docsResult{
		File:     file,
		Valid:    true,
		Scenario: doc.Name,
		Cases:    len(doc.Cases),
		Checks:   checks,
		Cleanup:  doc.Cleanup != nil,
	}
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
