package focus

import (
	"errors"
	"fmt"
)

// Default segment lengths in minutes.
const (
	DefaultStudyMinutes = 45
	DefaultBreakMinutes = 15
)

// ErrInvalidPlan is returned when a session cannot be started.
var ErrInvalidPlan = errors.New("invalid session plan")

// PlanConfig holds the inputs chosen at session start.
type PlanConfig struct {
	ProjectID    uint
	ProjectName  string
	SessionNo    int
	StudyMinutes int
	BreakMinutes int
	TotalMinutes int
	NudgeEnabled bool
	NudgeType    NudgeType
	// FocusStreakWindows is the number of focused windows before a positive
	// nudge. Zero uses DefaultFocusStreakWindows.
	FocusStreakWindows int
}

// Plan is a validated session schedule.
type Plan struct {
	PlanConfig
	Segments     int
	StudyPeriods int
}

// NewPlan validates cfg and computes the segment layout.
func NewPlan(cfg PlanConfig) (Plan, error) {
	if cfg.StudyMinutes == 0 {
		cfg.StudyMinutes = DefaultStudyMinutes
	}
	if cfg.BreakMinutes == 0 {
		cfg.BreakMinutes = DefaultBreakMinutes
	}
	if cfg.NudgeType == "" {
		cfg.NudgeType = NudgeTextWithSound
	}

	switch {
	case cfg.ProjectID == 0:
		return Plan{}, fmt.Errorf("%w: no goal selected", ErrInvalidPlan)
	case cfg.SessionNo < 1:
		return Plan{}, fmt.Errorf("%w: session number must be positive", ErrInvalidPlan)
	case cfg.StudyMinutes < 0 || cfg.BreakMinutes < 0:
		return Plan{}, fmt.Errorf("%w: segment lengths must be positive", ErrInvalidPlan)
	case !cfg.NudgeType.Valid():
		return Plan{}, fmt.Errorf("%w: unknown nudge type %q", ErrInvalidPlan, cfg.NudgeType)
	}

	segments := cfg.TotalMinutes / (cfg.StudyMinutes + cfg.BreakMinutes)
	if segments < 1 {
		return Plan{}, fmt.Errorf("%w: %d minutes is shorter than one %d/%d segment",
			ErrInvalidPlan, cfg.TotalMinutes, cfg.StudyMinutes, cfg.BreakMinutes)
	}

	return Plan{
		PlanConfig:   cfg,
		Segments:     segments,
		StudyPeriods: 2*segments - 1,
	}, nil
}

// StudySeconds returns the length of one study phase.
func (p Plan) StudySeconds() int {
	return p.StudyMinutes * 60
}

// BreakSeconds returns the length of one break phase.
func (p Plan) BreakSeconds() int {
	return p.BreakMinutes * 60
}

// Phase is the scheduler's current phase.
type Phase string

const (
	PhaseStudying Phase = "studying"
	PhaseOnBreak  Phase = "on_break"
	PhaseEnded    Phase = "ended"
)

// EndKind is why a session ended.
type EndKind string

const (
	EndCompleted     EndKind = "completed"
	EndManualStop    EndKind = "manual_stop"
	EndRuleViolation EndKind = "rule_violation"
)

// Termination reasons for non-violation endings.
const (
	ReasonCompleted  = "Session completed"
	ReasonManualStop = "Manual stop"
)

// TimerState is the mutable scheduler state.
type TimerState struct {
	PhaseIndex          int  `json:"phase_index"`
	IsBreakTime         bool `json:"is_break_time"`
	CurrentStudySegment int  `json:"current_study_segment"`
	TimeRemaining       int  `json:"time_remaining_seconds"`
	IsPaused            bool `json:"is_paused"`
	Ended               bool `json:"ended"`
}

// Phase derives the phase from the timer state.
func (t TimerState) Phase() Phase {
	switch {
	case t.Ended:
		return PhaseEnded
	case t.IsBreakTime:
		return PhaseOnBreak
	default:
		return PhaseStudying
	}
}

// Step reports what happened during one scheduler second.
type Step struct {
	Ticked     bool
	Boundary   bool
	EnterBreak bool
	EnterStudy bool
	Completed  bool
}

// Scheduler alternates study and break phases over a plan.
type Scheduler struct {
	plan  Plan
	state TimerState
}

// NewScheduler starts a scheduler in the first study phase.
func NewScheduler(plan Plan) *Scheduler {
	return &Scheduler{
		plan: plan,
		state: TimerState{
			CurrentStudySegment: 1,
			TimeRemaining:       plan.StudySeconds(),
		},
	}
}

// State returns a copy of the timer state.
func (s *Scheduler) State() TimerState {
	return s.state
}

// SetPaused suspends or resumes ticking. It has no effect once ended.
func (s *Scheduler) SetPaused(paused bool) {
	if s.state.Ended {
		return
	}
	s.state.IsPaused = paused
}

// End marks the scheduler terminal.
func (s *Scheduler) End() {
	s.state.Ended = true
	s.state.IsPaused = false
}

// Advance moves the timer forward one second.
func (s *Scheduler) Advance() Step {
	if s.state.Ended || s.state.IsPaused {
		return Step{}
	}

	s.state.TimeRemaining--
	step := Step{
		Ticked:   true,
		Boundary: s.state.TimeRemaining%WindowSeconds == 0,
	}
	if s.state.TimeRemaining > 0 {
		return step
	}

	last := s.state.PhaseIndex >= s.plan.StudyPeriods-1
	switch {
	case s.state.IsBreakTime:
		s.state.IsBreakTime = false
		s.state.CurrentStudySegment++
		s.state.PhaseIndex++
		s.state.TimeRemaining = s.plan.StudySeconds()
		step.EnterStudy = true
	case !last:
		s.state.IsBreakTime = true
		s.state.PhaseIndex++
		s.state.TimeRemaining = s.plan.BreakSeconds()
		step.EnterBreak = true
	default:
		step.Completed = true
	}
	return step
}
