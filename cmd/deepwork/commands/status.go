package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deepworkai/deepwork/internal/lockfile"
	"github.com/deepworkai/deepwork/pkg/capture"
)

// NewStatusCommand creates the status command
func NewStatusCommand() *cobra.Command {
	var errorCount int
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether a session is running and recent errors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, closeLog, err := loadConfig()
			if err != nil {
				return err
			}
			defer closeLog()

			out := cmd.OutOrStdout()
			running, pid, err := lockfile.New(cfg.Lock.PIDFile).Holder()
			if err != nil {
				return fmt.Errorf("failed to check session lock: %w", err)
			}
			if running {
				fmt.Fprintf(out, "Status: Session running (PID: %d)\n", pid)
			} else {
				fmt.Fprintln(out, "Status: No session running")
			}
			fmt.Fprintf(out, "Classifier: %s\n", cfg.Classifier.URL)
			fmt.Fprintf(out, "Capture: %s (display server: %s)\n", cfg.Capture.Source, capture.DetectDisplayServer())

			repo, closeDB, err := openRepository(cfg)
			if err != nil {
				return err
			}
			defer closeDB()

			errs, err := repo.RecentErrors(errorCount)
			if err != nil {
				return err
			}
			if len(errs) == 0 {
				return nil
			}
			fmt.Fprintln(out, "\nRecent errors:")
			for _, e := range errs {
				fmt.Fprintf(out, "  %s  %-10s %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Source, e.ErrorMsg)
			}
			return nil
		},
	}
	statusCmd.Flags().IntVar(&errorCount, "errors", 5, "number of recent errors to show")
	return statusCmd
}
