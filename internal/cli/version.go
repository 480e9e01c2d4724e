package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/mrz1836/conform/internal/constants"
)

func newVersionCmd(flags *GlobalFlags, info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVersion(cmd.OutOrStdout(), flags.Output, info)
		},
	}
}

type versionInfo struct {
	Version             string `json:"version"`
	Commit              string `json:"commit"`
	Date                string `json:"date"`
	GoVersion           string `json:"go_version"`
	ReportSchemaVersion int    `json:"report_schema_version"`
}

func runVersion(w io.Writer, format string, info BuildInfo) error {
	if format == OutputJSON {
		return writeJSON(w, versionInfo{
			Version:             orDefault(info.Version, "dev"),
			Commit:              orDefault(info.Commit, "none"),
			Date:                orDefault(info.Date, "unknown"),
			GoVersion:           runtime.Version(),
			ReportSchemaVersion: constants.ReportSchemaVersion,
		})
	}
	_, err := fmt.Fprintf(w, "conform %s\nreport schema v%d\n", formatVersion(info), constants.ReportSchemaVersion)
	return err
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
