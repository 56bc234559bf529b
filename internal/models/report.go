package models

import "time"

type ReportPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Type  string    `json:"type"` // "day", "week", "month"
}

// GoalSummary aggregates the sessions of one goal within a period.
type GoalSummary struct {
	ProjectID           uint            `json:"project_id"`
	ProjectName         string          `json:"project_name"`
	SessionCount        int             `json:"session_count"`
	FocusSeconds        int64           `json:"focus_seconds"`
	DistractedSeconds   int64           `json:"distracted_seconds"`
	FocusHours          float64         `json:"focus_hours"`
	MeanFocusPercentage float64         `json:"mean_focus_percentage"`
	MeanFocusLevel      float64         `json:"mean_focus_level"`
	Breakdown           BreakdownTotals `json:"distraction_breakdown"`
	RuleViolations      int             `json:"rule_violations"`
	Percentage          float64         `json:"percentage,omitempty"` // share of focus time in the period
}

// BreakdownTotals sums distracted seconds per category.
type BreakdownTotals struct {
	Phone  int64 `json:"phone"`
	Absent int64 `json:"absent"`
	Likely int64 `json:"likely"`
}

type Report struct {
	Period              ReportPeriod    `json:"period"`
	Goals               []GoalSummary   `json:"goals"`
	SessionCount        int             `json:"session_count"`
	FocusSeconds        int64           `json:"focus_seconds"`
	DistractedSeconds   int64           `json:"distracted_seconds"`
	FocusHours          float64         `json:"focus_hours"`
	MeanFocusPercentage float64         `json:"mean_focus_percentage"`
	Breakdown           BreakdownTotals `json:"distraction_breakdown"`
	GeneratedAt         time.Time       `json:"generated_at"`
}
