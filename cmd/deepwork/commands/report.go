package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deepworkai/deepwork/internal/reporter"
)

// NewReportCommand creates the report command
func NewReportCommand() *cobra.Command {
	var format string
	reportCmd := &cobra.Command{
		Use:       "report [day|week|month]",
		Short:     "Summarize focus time per goal",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"day", "today", "week", "month"},
		RunE: func(cmd *cobra.Command, args []string) error {
			periodType := "day"
			if len(args) == 1 {
				periodType = args[0]
			}
			if format != "text" && format != "json" {
				return fmt.Errorf("invalid format %q (valid: text, json)", format)
			}

			cfg, closeLog, err := loadConfig()
			if err != nil {
				return err
			}
			defer closeLog()

			repo, closeDB, err := openRepository(cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			rep := reporter.New(cfg, repo)
			report, err := rep.GenerateReport(periodType)
			if err != nil {
				return fmt.Errorf("failed to generate report: %w", err)
			}

			out := cmd.OutOrStdout()
			if format == "json" {
				jsonStr, err := rep.FormatReportJSON(report)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, jsonStr)
				return nil
			}
			fmt.Fprintln(out, rep.FormatReportText(report))
			return nil
		},
	}
	reportCmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text or json")
	return reportCmd
}
