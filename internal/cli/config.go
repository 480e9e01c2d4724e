package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/conform/internal/config"
)

func newConfigCmd(flags *GlobalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect conform configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Display the effective configuration",
		Long: `Display the effective configuration after merging, in order of precedence:
  - CONFORM_* environment variables
  - project .conform/config.yaml
  - global ~/.conform/config.yaml
  - built-in defaults

Examples:
  conform config show
  conform config show -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd.Context(), cmd.OutOrStdout(), flags.Output)
		},
	})
	return cmd
}

func runConfigShow(ctx context.Context, w io.Writer, format string) error {
	cfg := configFrom(ctx)
	if format == OutputJSON {
		return writeJSON(w, configView(cfg))
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = w.Write(out)
	return err
}

// configView mirrors the YAML keys so JSON output uses the same names.
func configView(cfg *config.Config) map[string]any {
	return map[string]any{
		"run": map[string]any{
			"stop_fast":   cfg.Run.StopFast,
			"parallelism": cfg.Run.Parallelism,
		},
		"report": map[string]any{
			"dir":    cfg.Report.Dir,
			"format": cfg.Report.Format,
		},
		"docs": map[string]any{
			"dir": cfg.Docs.Dir,
		},
		"log": map[string]any{
			"max_size_mb":  cfg.Log.MaxSizeMB,
			"max_backups":  cfg.Log.MaxBackups,
			"max_age_days": cfg.Log.MaxAgeDays,
		},
	}
}
