package reporter

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/deepworkai/deepwork/internal/config"
	"github.com/deepworkai/deepwork/internal/models"
	"github.com/deepworkai/deepwork/pkg/utils"
)

// SessionStore is the read side of the repository the reporter needs
type SessionStore interface {
	ListSessionsBetween(since, until time.Time) ([]models.StudySession, error)
}

// Reporter handles report generation
type Reporter struct {
	config *config.Config
	repo   SessionStore
	now    func() time.Time
}

// New creates a new reporter
func New(cfg *config.Config, repo SessionStore) *Reporter {
	return &Reporter{
		config: cfg,
		repo:   repo,
		now:    time.Now,
	}
}

// GenerateReport generates a report for the specified period
func (r *Reporter) GenerateReport(periodType string) (*models.Report, error) {
	period, err := r.getPeriod(periodType)
	if err != nil {
		return nil, err
	}

	// Raw rows from the database - runtime does the aggregation
	sessions, err := r.repo.ListSessionsBetween(period.Start, period.End)
	if err != nil {
		return nil, fmt.Errorf("failed to get study sessions: %w", err)
	}

	report := Aggregate(sessions)
	report.Period = *period
	report.GeneratedAt = r.now()
	return report, nil
}

// Aggregate totals sessions overall and per goal
func Aggregate(sessions []models.StudySession) *models.Report {
	report := &models.Report{Goals: []models.GoalSummary{}}
	byGoal := make(map[uint]*models.GoalSummary)
	var order []uint
	goalPercent := make(map[uint]int)
	goalLevel := make(map[uint]int)
	percentSum := 0

	for _, s := range sessions {
		g, ok := byGoal[s.ProjectID]
		if !ok {
			g = &models.GoalSummary{ProjectID: s.ProjectID, ProjectName: s.ProjectName}
			byGoal[s.ProjectID] = g
			order = append(order, s.ProjectID)
		}

		g.SessionCount++
		g.FocusSeconds += s.FocusTime
		g.DistractedSeconds += s.DistractedTime
		g.Breakdown.Phone += int64(s.DistractionBreakdown.Phone)
		g.Breakdown.Absent += int64(s.DistractionBreakdown.Absent)
		g.Breakdown.Likely += int64(s.DistractionBreakdown.Likely)
		if s.Status == "rule_violation" {
			g.RuleViolations++
		}
		goalPercent[s.ProjectID] += s.FocusPercentage
		goalLevel[s.ProjectID] += s.AverageFocusLevel

		report.SessionCount++
		report.FocusSeconds += s.FocusTime
		report.DistractedSeconds += s.DistractedTime
		report.Breakdown.Phone += int64(s.DistractionBreakdown.Phone)
		report.Breakdown.Absent += int64(s.DistractionBreakdown.Absent)
		report.Breakdown.Likely += int64(s.DistractionBreakdown.Likely)
		percentSum += s.FocusPercentage
	}

	for _, id := range order {
		g := byGoal[id]
		g.FocusHours = float64(g.FocusSeconds) / 3600.0
		g.MeanFocusPercentage = float64(goalPercent[id]) / float64(g.SessionCount)
		g.MeanFocusLevel = float64(goalLevel[id]) / float64(g.SessionCount)
		if report.FocusSeconds > 0 {
			g.Percentage = float64(g.FocusSeconds) / float64(report.FocusSeconds) * 100.0
		}
		report.Goals = append(report.Goals, *g)
	}

	sort.SliceStable(report.Goals, func(i, j int) bool {
		return report.Goals[i].FocusSeconds > report.Goals[j].FocusSeconds
	})

	report.FocusHours = float64(report.FocusSeconds) / 3600.0
	if report.SessionCount > 0 {
		report.MeanFocusPercentage = float64(percentSum) / float64(report.SessionCount)
	}
	return report
}

// getPeriod calculates the time range for the report
func (r *Reporter) getPeriod(periodType string) (*models.ReportPeriod, error) {
	now := r.now()
	var start, end time.Time

	switch periodType {
	case "day", "today":
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		end = start.AddDate(0, 0, 1)

	case "week":
		// Start of week (Monday)
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7 // Sunday = 7
		}
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -(weekday - 1))
		end = start.AddDate(0, 0, 7)

	case "month":
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		end = start.AddDate(0, 1, 0)

	default:
		return nil, fmt.Errorf("invalid period type: %s (valid: day, week, month)", periodType)
	}

	return &models.ReportPeriod{
		Start: start,
		End:   end,
		Type:  periodType,
	}, nil
}

// FormatReportText formats the report as human-readable text
func (r *Reporter) FormatReportText(report *models.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Focus Report - %s\n", report.Period.Type)
	fmt.Fprintf(&b, "Period: %s to %s\n",
		report.Period.Start.Format("2006-01-02 15:04"),
		report.Period.End.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Sessions: %d  Focus: %s  Distracted: %s  Mean focus: %.0f%%\n",
		report.SessionCount,
		utils.FormatDuration(report.FocusSeconds),
		utils.FormatDuration(report.DistractedSeconds),
		report.MeanFocusPercentage)
	fmt.Fprintf(&b, "Distractions: phone %s, absent %s, likely %s\n\n",
		utils.FormatRoundedUnit(report.Breakdown.Phone),
		utils.FormatRoundedUnit(report.Breakdown.Absent),
		utils.FormatRoundedUnit(report.Breakdown.Likely))

	if len(report.Goals) == 0 {
		b.WriteString("No study sessions recorded for this period.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "%-30s %8s %10s %8s %8s %9s\n", "Goal", "Sessions", "Focus", "Focus%", "Level", "Share")
	b.WriteString(strings.Repeat("-", 80) + "\n")

	for _, g := range report.Goals {
		fmt.Fprintf(&b, "%-30s %8d %10s %7.0f%% %8.1f %8.1f%%\n",
			truncate(g.ProjectName, 30),
			g.SessionCount,
			utils.FormatDuration(g.FocusSeconds),
			g.MeanFocusPercentage,
			g.MeanFocusLevel,
			g.Percentage)
	}

	return b.String()
}

// FormatReportJSON formats the report as JSON
func (r *Reporter) FormatReportJSON(report *models.Report) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// FormatSessionText renders one stored session with its focus log
func FormatSessionText(s *models.StudySession) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s - session #%d (%s)\n", s.ProjectName, s.SessionNo, s.Status)
	fmt.Fprintf(&b, "Started: %s  Ended: %s\n",
		s.StartTime.Local().Format("2006-01-02 15:04:05"),
		s.EndTime.Local().Format("15:04:05"))
	if s.TerminationReason != "" {
		fmt.Fprintf(&b, "Reason: %s\n", s.TerminationReason)
	}
	fmt.Fprintf(&b, "Focus: %s  Distracted: %s  Focus%%: %d  Avg level: %d/10\n",
		utils.FormatDuration(s.FocusTime),
		utils.FormatDuration(s.DistractedTime),
		s.FocusPercentage,
		s.AverageFocusLevel)
	fmt.Fprintf(&b, "Distractions: phone %ds, absent %ds, likely %ds\n",
		s.DistractionBreakdown.Phone, s.DistractionBreakdown.Absent, s.DistractionBreakdown.Likely)
	if s.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", s.Notes)
	}
	if len(s.FocusTrend) > 0 {
		fmt.Fprintf(&b, "Trend: %s\n", trendLine(s.FocusTrend))
	}

	if len(s.FocusLog) > 0 {
		b.WriteString("\nWindow  Time      State       Reason                            Level\n")
		for _, e := range s.FocusLog {
			fmt.Fprintf(&b, "%6d  %s  %-10s  %-32s  %5d\n",
				e.WindowIndex, e.Timestamp.Local().Format("15:04:05"), e.State, truncate(e.Reason, 32), e.Level)
		}
	}

	if len(s.Interactions) > 0 {
		b.WriteString("\nNudges:\n")
		for _, i := range s.Interactions {
			fmt.Fprintf(&b, "  %s %-18s %s\n", i.Timestamp.Local().Format("15:04:05"), i.Type, i.Message)
		}
	}
	return b.String()
}

// trendLine draws the focus trend with one character per window
func trendLine(trend []int) string {
	var b strings.Builder
	for _, v := range trend {
		if v >= 50 {
			b.WriteByte('#')
		} else {
			b.WriteByte('.')
		}
	}
	return b.String()
}

// truncate truncates a string to the specified length
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
