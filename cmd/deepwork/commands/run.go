package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/deepworkai/deepwork/internal/classifier"
	"github.com/deepworkai/deepwork/internal/config"
	"github.com/deepworkai/deepwork/internal/database"
	"github.com/deepworkai/deepwork/internal/focus"
	"github.com/deepworkai/deepwork/internal/lockfile"
	"github.com/deepworkai/deepwork/internal/models"
	"github.com/deepworkai/deepwork/internal/notify"
	"github.com/deepworkai/deepwork/internal/reporter"
	"github.com/deepworkai/deepwork/internal/telemetry"
	"github.com/deepworkai/deepwork/internal/tracker"
	"github.com/deepworkai/deepwork/internal/tui"
	"github.com/deepworkai/deepwork/internal/web"
	"github.com/deepworkai/deepwork/pkg/capture"
)

type runOptions struct {
	goal         string
	study        int
	breakMinutes int
	total        int
	noNudges     bool
	nudgeType    string
	notes        string
	plain        bool
	withWeb      bool
	port         int
	overwrite    bool
}

// sessionRecorder exports finished sessions
type sessionRecorder interface {
	tracker.Recorder
	Close(ctx context.Context) error
}

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	opts := &runOptions{}
	runCmd := &cobra.Command{
		Use:   "run [goal]",
		Short: "Run a focus session",
		Long: `Run a focus session against a goal. The session alternates study and
break segments until the total duration is reached, you stop it, or it is
terminated for repeated phone use or absence.`,
		Example: `  deepwork run --goal Thesis --total 90
  deepwork run Thesis --total 45 --nudge-type text --web`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.goal = args[0]
			}
			return runSession(cmd, opts)
		},
	}

	runCmd.Flags().StringVarP(&opts.goal, "goal", "g", "", "goal ID or name")
	runCmd.Flags().IntVar(&opts.study, "study", 0, "study segment minutes (default from config)")
	runCmd.Flags().IntVar(&opts.breakMinutes, "break", 0, "break segment minutes (default from config)")
	runCmd.Flags().IntVarP(&opts.total, "total", "t", 0, "total session minutes (required)")
	runCmd.Flags().BoolVar(&opts.noNudges, "no-nudges", false, "start with nudges disabled")
	runCmd.Flags().StringVar(&opts.nudgeType, "nudge-type", "", "text or text_with_sound")
	runCmd.Flags().StringVar(&opts.notes, "notes", "", "notes stored with the session")
	runCmd.Flags().BoolVar(&opts.plain, "plain", false, "print nudges instead of the interactive screen")
	runCmd.Flags().BoolVar(&opts.withWeb, "web", false, "serve the dashboard and live session API")
	runCmd.Flags().IntVar(&opts.port, "port", 0, "web server port (default from config)")
	runCmd.Flags().BoolVar(&opts.overwrite, "overwrite", false, "replace an existing session with the same number")
	runCmd.MarkFlagRequired("total")

	return runCmd
}

func runSession(cmd *cobra.Command, opts *runOptions) error {
	cfg, closeLog, err := loadConfig()
	if err != nil {
		return err
	}
	defer closeLog()

	if err := applyRunFlags(cfg, opts); err != nil {
		return err
	}

	repo, closeDB, err := openRepository(cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	goal, err := findGoal(repo, cfg.User.Name, opts.goal)
	if err != nil {
		return err
	}
	sessionNo, err := repo.NextSessionNo(goal.ID)
	if err != nil {
		return err
	}

	plan, err := focus.NewPlan(focus.PlanConfig{
		ProjectID:          goal.ID,
		ProjectName:        goal.Name,
		SessionNo:          sessionNo,
		StudyMinutes:       cfg.Session.StudyMinutes,
		BreakMinutes:       cfg.Session.BreakMinutes,
		TotalMinutes:       opts.total,
		NudgeEnabled:       cfg.Session.NudgeEnabled,
		NudgeType:          focus.NudgeType(cfg.Session.NudgeType),
		FocusStreakWindows: cfg.Session.FocusStreakWindows,
	})
	if err != nil {
		return err
	}

	lock := lockfile.New(cfg.Lock.PIDFile)
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer lock.Release()

	source, err := capture.New(capture.Options{
		Source: cfg.Capture.Source,
		Dir:    cfg.Capture.Dir,
		URL:    cfg.Capture.URL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize frame capture: %w", err)
	}
	defer source.Close()
	log.Printf("Frame source: %s", source.Name())

	clf, err := classifier.NewClient(cfg.Classifier.URL, cfg.Classifier.Timeout)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var recorder sessionRecorder = telemetry.NoOpExporter{}
	if cfg.Telemetry.Enabled {
		exp, err := telemetry.NewExporter(ctx, cfg.Telemetry, version)
		if err != nil {
			log.Printf("Telemetry disabled: %v", err)
		} else {
			recorder = exp
		}
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := recorder.Close(shutdownCtx); err != nil {
			log.Printf("Error closing telemetry: %v", err)
		}
	}()

	var screen *tui.Notifier
	notifiers := notify.Multi{}
	if opts.plain {
		notifiers = append(notifiers, notify.NewConsole(cmd.OutOrStdout()))
	} else {
		screen = tui.NewNotifier()
		notifiers = append(notifiers, screen)
		if cfg.Log.File == "" {
			// The screen owns the terminal; sampler errors still reach the error log table
			log.SetOutput(io.Discard)
			defer log.SetOutput(os.Stderr)
		}
	}
	if cfg.Discord.Token != "" && cfg.Discord.ChannelID != "" {
		discord, err := notify.NewDiscord(cfg.Discord.Token, cfg.Discord.ChannelID)
		if err != nil {
			log.Printf("Discord nudges disabled: %v", err)
		} else {
			defer discord.Close()
			notifiers = append(notifiers, discord)
		}
	}

	svc := tracker.NewService(cfg, repo, source, clf)
	svc.SetRecorder(recorder)
	session := focus.NewSession(plan, focus.Options{Notifier: notifiers})

	if opts.withWeb {
		server := web.NewServer(cfg, repo, svc, opts.port)
		go func() {
			if err := server.Start(); err != nil {
				log.Printf("Web server error: %v", err)
			}
		}()
		fmt.Fprintf(cmd.OutOrStdout(), "Live dashboard: http://%s\n", server.GetAddress())
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			server.Shutdown(shutdownCtx)
		}()
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Starting %s session #%d: %d minutes, %d study segment(s)\n",
		goal.Name, sessionNo, opts.total, plan.StudyPeriods)

	sum, err := drive(ctx, svc, session, screen)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprint(out, reporter.FormatSessionText(models.NewStudySession(sum, opts.notes)))
	return saveSession(svc, sum, opts, cmd.InOrStdin(), out)
}

// drive runs the tracker loop, in front of the interactive screen when one
// is attached.
func drive(ctx context.Context, svc *tracker.Service, session *focus.Session, screen *tui.Notifier) (focus.Summary, error) {
	if screen == nil {
		return svc.Run(ctx, session)
	}

	type result struct {
		sum focus.Summary
		err error
	}
	done := make(chan result, 1)
	go func() {
		sum, err := svc.Run(ctx, session)
		done <- result{sum, err}
	}()

	if err := tui.Run(ctx, session, screen); err != nil {
		log.Printf("Screen error: %v", err)
	}
	session.Stop()
	r := <-done
	return r.sum, r.err
}

func saveSession(svc *tracker.Service, sum focus.Summary, opts *runOptions, in io.Reader, out io.Writer) error {
	stored, err := svc.Save(sum, opts.notes, opts.overwrite)
	if errors.Is(err, database.ErrSessionExists) {
		question := fmt.Sprintf("Session #%d for %s already exists. Overwrite?", sum.SessionNo, sum.ProjectName)
		if !confirm(in, out, question) {
			fmt.Fprintln(out, "Session not saved")
			return nil
		}
		stored, err = svc.Save(sum, opts.notes, true)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Saved session %d\n", stored.ID)
	return nil
}

func applyRunFlags(cfg *config.Config, opts *runOptions) error {
	if opts.total <= 0 {
		return errors.New("--total must be a positive number of minutes")
	}
	if opts.study > 0 {
		if err := cfg.SetStudyMinutes(opts.study); err != nil {
			return err
		}
	}
	if opts.breakMinutes > 0 {
		if err := cfg.SetBreakMinutes(opts.breakMinutes); err != nil {
			return err
		}
	}
	if opts.nudgeType != "" {
		if err := cfg.SetNudgeType(opts.nudgeType); err != nil {
			return err
		}
	}
	if opts.noNudges {
		cfg.Session.NudgeEnabled = false
	}
	if opts.port > 0 {
		if err := cfg.SetWebPort(opts.port); err != nil {
			return err
		}
	}
	if !opts.plain && !isatty.IsTerminal(os.Stdout.Fd()) {
		opts.plain = true
	}
	return nil
}
