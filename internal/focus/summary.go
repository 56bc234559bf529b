package focus

import (
	"math"
	"time"
)

// Breakdown is distracted time per category, in seconds.
type Breakdown struct {
	Phone  int `json:"phone"`
	Absent int `json:"absent"`
	Likely int `json:"likely"`
}

// Summary is the immutable record built once when a session ends.
type Summary struct {
	SessionID         string          `json:"session_id"`
	ProjectID         uint            `json:"project_id"`
	ProjectName       string          `json:"project_name"`
	SessionNo         int             `json:"session_no"`
	StartTime         time.Time       `json:"start_time"`
	EndTime           time.Time       `json:"end_time"`
	FocusSeconds      int             `json:"total_focus_time"`
	DistractedSeconds int             `json:"total_distracted_time"`
	FocusPercentage   int             `json:"focus_percentage"`
	AverageFocusLevel int             `json:"average_focus_level"`
	Breakdown         Breakdown       `json:"distraction_breakdown"`
	FocusTrend        []int           `json:"focus_trend"`
	Interactions      []Interaction   `json:"nudge_interactions"`
	EndKind           EndKind         `json:"end_kind"`
	TerminationReason string          `json:"termination_reason"`
	Verdicts          []WindowVerdict `json:"focus_log"`
}

// LogStats are the aggregates that can be re-derived from a focus log alone.
type LogStats struct {
	Windows           int
	FocusedWindows    int
	FocusSeconds      int
	DistractedSeconds int
	FocusPercentage   int
	AverageFocusLevel int
	Breakdown         Breakdown
	FocusTrend        []int
}

// Aggregate derives session statistics from verdicts.
func Aggregate(verdicts []WindowVerdict) LogStats {
	stats := LogStats{
		Windows:    len(verdicts),
		FocusTrend: make([]int, 0, len(verdicts)),
	}

	levels := 0
	for _, v := range verdicts {
		levels += v.Level
		if v.Focused() {
			stats.FocusedWindows++
			stats.FocusTrend = append(stats.FocusTrend, 100)
			continue
		}
		stats.FocusTrend = append(stats.FocusTrend, 0)

		switch v.Reason {
		case VerdictPhone:
			stats.Breakdown.Phone += WindowSeconds
		case VerdictAbsent:
			stats.Breakdown.Absent += WindowSeconds
		case VerdictFaceNotVisible, VerdictPosture:
			stats.Breakdown.Likely += WindowSeconds
		}
	}

	stats.FocusSeconds = stats.FocusedWindows * WindowSeconds
	stats.DistractedSeconds = (stats.Windows - stats.FocusedWindows) * WindowSeconds
	if stats.Windows > 0 {
		stats.FocusPercentage = roundHalfUp(100 * float64(stats.FocusedWindows) / float64(stats.Windows))
		stats.AverageFocusLevel = roundHalfUp(float64(levels) / float64(stats.Windows))
	}
	return stats
}

// BuildSummary packages the running totals and the per-category log
// aggregates with the session metadata.
func BuildSummary(plan Plan, sessionID string, start, end time.Time, verdicts []WindowVerdict,
	tally Tally, interactions []Interaction, kind EndKind, reason string) Summary {
	stats := Aggregate(verdicts)

	return Summary{
		SessionID:         sessionID,
		ProjectID:         plan.ProjectID,
		ProjectName:       plan.ProjectName,
		SessionNo:         plan.SessionNo,
		StartTime:         start,
		EndTime:           end,
		FocusSeconds:      tally.FocusSeconds,
		DistractedSeconds: tally.DistractedSeconds,
		FocusPercentage:   tally.FocusPercentage(),
		AverageFocusLevel: tally.AverageFocusLevel(),
		Breakdown:         stats.Breakdown,
		FocusTrend:        stats.FocusTrend,
		Interactions:      append([]Interaction(nil), interactions...),
		EndKind:           kind,
		TerminationReason: reason,
		Verdicts:          append([]WindowVerdict(nil), verdicts...),
	}
}

// roundHalfUp rounds like Math.round for non-negative values.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
