package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/mrz1836/conform/internal/errors"
	"github.com/mrz1836/conform/internal/report"
)

func newReportCmd(flags *GlobalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Inspect scenario and run reports",
	}
	cmd.AddCommand(newReportShowCmd(flags))
	return cmd
}

func newReportShowCmd(flags *GlobalFlags) *cobra.Command {
	var failOnUnsuccessful bool

	cmd := &cobra.Command{
		Use:   "show <file>",
		Short: "Summarize a scenario or run report",
		Long: `Summarize a JSON or YAML report written by conform.

Run reports list each scenario with its verdict, check counts, failed checks,
notes and execution error. With --output json the report is re-emitted as
normalized JSON.

Examples:
  conform report show reports/6f1c2a4e-.../run.json
  conform report show reports/scenario-nominal-planning.yaml --fail`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReportShow(cmd.Context(), cmd.OutOrStdout(), flags.Output, args[0], failOnUnsuccessful)
		},
	}

	cmd.Flags().BoolVar(&failOnUnsuccessful, "fail", false, "exit non-zero when the report is unsuccessful")
	return cmd
}

func runReportShow(ctx context.Context, w io.Writer, format, path string, failOnUnsuccessful bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	doc, err := report.ReadFile(path)
	if err != nil {
		return err
	}
	logger := GetLogger()
	logger.Debug().Str("file", path).Bool("run", doc.Run != nil).Msg("report loaded")

	if format == OutputJSON {
		var v any = doc.Scenario
		if doc.Run != nil {
			v = doc.Run
		}
		if err := writeJSON(w, v); err != nil {
			return err
		}
	} else {
		report.CheckNoColor(w)
		styles := report.NewStyles(report.HasColorSupport(w))
		if err := report.NewRenderer(w, styles, report.TerminalWidth(w)).Document(doc); err != nil {
			return err
		}
	}

	if failOnUnsuccessful && !documentSuccessful(doc) {
		return errors.ErrReportUnsuccessful
	}
	return nil
}

func documentSuccessful(doc *report.Document) bool {
	if doc.Run != nil {
		return doc.Run.Successful
	}
	return doc.Scenario.Successful
}
