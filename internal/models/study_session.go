package models

import (
	"time"

	"github.com/deepworkai/deepwork/internal/focus"
)

// StudySession is the persisted summary of one finished session.
// (project_id, session_no) is unique.
type StudySession struct {
	ID                   uint               `gorm:"primaryKey" json:"id"`
	RunID                string             `gorm:"not null;uniqueIndex" json:"run_id"`
	ProjectID            uint               `gorm:"not null;uniqueIndex:idx_project_session" json:"project_id"`
	ProjectName          string             `gorm:"not null" json:"project_name"`
	SessionNo            int                `gorm:"not null;uniqueIndex:idx_project_session" json:"session_no"`
	Status               string             `gorm:"not null;index" json:"status"`
	StartTime            time.Time          `gorm:"not null;index" json:"start_time"`
	EndTime              time.Time          `gorm:"not null" json:"end_time"`
	FocusTime            int64              `gorm:"not null;default:0" json:"focus_time"`      // seconds
	DistractedTime       int64              `gorm:"not null;default:0" json:"distracted_time"` // seconds
	DistractionBreakdown focus.Breakdown    `gorm:"serializer:json" json:"distraction_breakdown"`
	FocusPercentage      int                `gorm:"not null;default:0" json:"focus_percentage"`
	AverageFocusLevel    int                `gorm:"not null;default:0" json:"average_focus_level"`
	FocusTrend           []int              `gorm:"serializer:json" json:"focus_trend"`
	TerminationReason    string             `json:"termination_reason"`
	Notes                string             `json:"notes"`
	FocusLog             []FocusLogEntry    `gorm:"constraint:OnDelete:CASCADE" json:"focus_log,omitempty"`
	Interactions         []NudgeInteraction `gorm:"constraint:OnDelete:CASCADE" json:"nudge_interactions,omitempty"`
	CreatedAt            time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
}

// FocusLogEntry is one 15 second window verdict of a stored session.
type FocusLogEntry struct {
	ID                       uint      `gorm:"primaryKey" json:"-"`
	StudySessionID           uint      `gorm:"not null;index" json:"-"`
	WindowIndex              int       `gorm:"not null" json:"index"`
	Timestamp                time.Time `gorm:"not null" json:"timestamp"`
	State                    string    `gorm:"not null" json:"state"`
	Reason                   string    `json:"reason,omitempty"`
	Level                    int       `gorm:"not null;default:0" json:"level"`
	FaceNotVisibleTransition bool      `gorm:"not null;default:false" json:"face_not_visible_transition,omitempty"`
}

// NudgeInteraction records a nudge shown to the user or a nudge control change.
type NudgeInteraction struct {
	ID             uint      `gorm:"primaryKey" json:"-"`
	StudySessionID uint      `gorm:"not null;index" json:"-"`
	Type           string    `gorm:"not null;index" json:"type"`
	Message        string    `json:"message,omitempty"`
	NudgeType      string    `json:"nudge_type,omitempty"`
	Timestamp      time.Time `gorm:"not null" json:"timestamp"`
}

// NewStudySession converts a finished session summary into its stored form.
func NewStudySession(sum focus.Summary, notes string) *StudySession {
	s := &StudySession{
		RunID:                sum.SessionID,
		ProjectID:            sum.ProjectID,
		ProjectName:          sum.ProjectName,
		SessionNo:            sum.SessionNo,
		Status:               string(sum.EndKind),
		StartTime:            sum.StartTime,
		EndTime:              sum.EndTime,
		FocusTime:            int64(sum.FocusSeconds),
		DistractedTime:       int64(sum.DistractedSeconds),
		DistractionBreakdown: sum.Breakdown,
		FocusPercentage:      sum.FocusPercentage,
		AverageFocusLevel:    sum.AverageFocusLevel,
		FocusTrend:           append([]int{}, sum.FocusTrend...),
		TerminationReason:    sum.TerminationReason,
		Notes:                notes,
	}

	s.FocusLog = make([]FocusLogEntry, 0, len(sum.Verdicts))
	for _, v := range sum.Verdicts {
		s.FocusLog = append(s.FocusLog, FocusLogEntry{
			WindowIndex:              v.Index,
			Timestamp:                v.Timestamp,
			State:                    string(v.State),
			Reason:                   string(v.Reason),
			Level:                    v.Level,
			FaceNotVisibleTransition: v.FaceNotVisibleTransition,
		})
	}

	s.Interactions = make([]NudgeInteraction, 0, len(sum.Interactions))
	for _, i := range sum.Interactions {
		s.Interactions = append(s.Interactions, NudgeInteraction{
			Type:      i.Type,
			Message:   i.Message,
			NudgeType: string(i.NudgeType),
			Timestamp: i.Timestamp,
		})
	}
	return s
}

// TotalSeconds is the accounted session time.
func (s *StudySession) TotalSeconds() int64 {
	return s.FocusTime + s.DistractedTime
}
