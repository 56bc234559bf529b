package commands

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deepworkai/deepwork/internal/config"
	"github.com/deepworkai/deepwork/internal/database"
)

var (
	configPath string
	dbPath     string

	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// SetVersion records build information for the version command
func SetVersion(v, c, d string) {
	version, commit, date = v, c, d
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "deepwork",
		Short: "Webcam-assisted focus sessions",
		Long: `deepwork runs timed study sessions against a goal. A webcam frame is
classified every second, summarized every 15 seconds, and escalating nudges
are raised when you drift. Finished sessions are stored for reports.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database file (default ~/.config/deepwork/deepwork.db)")

	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewStatusCommand())
	rootCmd.AddCommand(NewGoalsCommand())
	rootCmd.AddCommand(NewSessionsCommand())
	rootCmd.AddCommand(NewReportCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads configuration and points the standard logger at the
// configured log file. The returned func closes that file.
func loadConfig() (*config.Config, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	closeLog := func() {}
	if cfg.Log.File != "" {
		logFile, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		log.SetOutput(logFile)
		closeLog = func() { logFile.Close() }
	}
	return cfg, closeLog, nil
}

func openRepository(cfg *config.Config) (*database.Repository, func(), error) {
	db, err := database.Connect(cfg.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Initialize(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return database.NewRepository(db), func() { db.Close() }, nil
}

// confirm asks a yes/no question on in
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s (yes/no): ", question)
	response, _ := bufio.NewReader(in).ReadString('\n')
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "yes" || response == "y"
}
