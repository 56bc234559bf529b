package commands

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/deepworkai/deepwork/internal/reporter"
	"github.com/deepworkai/deepwork/pkg/utils"
)

// NewSessionsCommand creates the sessions command group
func NewSessionsCommand() *cobra.Command {
	sessionsCmd := &cobra.Command{
		Use:     "sessions",
		Aliases: []string{"session"},
		Short:   "Browse stored sessions",
	}

	var goalRef string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored sessions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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

			var goalID uint
			if goalRef != "" {
				goal, err := findGoal(repo, cfg.User.Name, goalRef)
				if err != nil {
					return err
				}
				goalID = goal.ID
			}

			sessions, err := repo.ListSessions(goalID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(sessions) == 0 {
				fmt.Fprintln(out, "No sessions recorded")
				return nil
			}
			fmt.Fprintf(out, "%4s  %-24s %4s  %-16s  %8s  %6s  %s\n", "ID", "Goal", "No", "Started", "Focus", "Focus%", "Status")
			for _, s := range sessions {
				fmt.Fprintf(out, "%4d  %-24s %4d  %-16s  %8s  %5d%%  %s\n",
					s.ID, s.ProjectName, s.SessionNo,
					s.StartTime.Local().Format("2006-01-02 15:04"),
					utils.FormatDuration(s.FocusTime), s.FocusPercentage, s.Status)
			}
			return nil
		},
	}
	listCmd.Flags().StringVarP(&goalRef, "goal", "g", "", "only sessions of this goal (ID or name)")

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a session with its focus log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
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

			session, err := repo.GetSession(id)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("session %d not found", id)
			}
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), reporter.FormatSessionText(session))
			return nil
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
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

			if err := repo.DeleteSession(id); errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("session %d not found", id)
			} else if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted session %d\n", id)
			return nil
		},
	}

	var yes bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all stored sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if !yes && !confirm(cmd.InOrStdin(), out, "This will delete all stored sessions. Are you sure?") {
				fmt.Fprintln(out, "Operation cancelled")
				return nil
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

			if err := repo.Clear(); err != nil {
				return fmt.Errorf("failed to clear sessions: %w", err)
			}
			fmt.Fprintln(out, "All sessions deleted")
			return nil
		},
	}
	clearCmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	sessionsCmd.AddCommand(listCmd, showCmd, deleteCmd, clearCmd)
	return sessionsCmd
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid session id %q", s)
	}
	return uint(id), nil
}
