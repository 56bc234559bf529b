package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/deepworkai/deepwork/internal/models"
)

// NewGoalsCommand creates the goals command group
func NewGoalsCommand() *cobra.Command {
	goalsCmd := &cobra.Command{
		Use:     "goals",
		Aliases: []string{"goal"},
		Short:   "Manage study goals",
	}

	var description, deadline string
	addCmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a goal",
		Args:  cobra.MinimumNArgs(1),
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

			project := &models.Project{
				Name:        strings.Join(args, " "),
				Description: description,
				CreatedBy:   cfg.User.Name,
			}
			if deadline != "" {
				d, err := time.ParseInLocation("2006-01-02", deadline, time.Local)
				if err != nil {
					return fmt.Errorf("invalid deadline %q, expected YYYY-MM-DD", deadline)
				}
				project.Deadline = &d
			}
			if err := repo.CreateProject(project); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created goal #%d: %s\n", project.ID, project.Name)
			return nil
		},
	}
	addCmd.Flags().StringVar(&description, "description", "", "goal description")
	addCmd.Flags().StringVar(&deadline, "deadline", "", "deadline as YYYY-MM-DD")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List your goals",
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

			projects, err := repo.ListProjects(cfg.User.Name)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(projects) == 0 {
				fmt.Fprintln(out, "No goals yet. Create one with: deepwork goals add <name>")
				return nil
			}
			fmt.Fprintf(out, "%4s  %-30s  %-10s  %s\n", "ID", "Goal", "Deadline", "Description")
			for _, p := range projects {
				deadline := "-"
				if p.Deadline != nil {
					deadline = p.Deadline.Format("2006-01-02")
				}
				fmt.Fprintf(out, "%4d  %-30s  %-10s  %s\n", p.ID, p.Name, deadline, p.Description)
			}
			return nil
		},
	}

	goalsCmd.AddCommand(addCmd, listCmd)
	return goalsCmd
}

type goalLister interface {
	ListProjects(owner string) ([]models.Project, error)
}

var errGoalNotFound = errors.New("goal not found")

// findGoal resolves ref as a goal ID or, failing that, a case-insensitive name
func findGoal(repo goalLister, owner, ref string) (*models.Project, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, errors.New("no goal selected, pass --goal or create one with: deepwork goals add <name>")
	}

	projects, err := repo.ListProjects(owner)
	if err != nil {
		return nil, err
	}
	if id, err := strconv.ParseUint(ref, 10, 64); err == nil {
		for i := range projects {
			if projects[i].ID == uint(id) {
				return &projects[i], nil
			}
		}
	}
	for i := range projects {
		if strings.EqualFold(projects[i].Name, ref) {
			return &projects[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", errGoalNotFound, ref)
}
