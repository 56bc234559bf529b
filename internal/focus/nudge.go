package focus

import (
	"time"

	"github.com/google/uuid"
)

// Streak thresholds, counted in consecutive windows.
const (
	phoneWarnStreak      = 1
	phoneFinalStreak     = 2
	phoneTerminateStreak = 3

	absentMinuteStreak    = 3
	absentFinalStreak     = 5
	absentTerminateStreak = 7

	faceNotVisibleWarnStreak = 2

	// DefaultFocusStreakWindows is 20 minutes of continuous focus.
	DefaultFocusStreakWindows = 20 * 60 / WindowSeconds
)

// Termination reasons for rule violations.
const (
	ReasonPhoneViolation  = "Phone use for 1 minute"
	ReasonAbsentViolation = "Absent for 2 minutes"
)

const (
	msgPhoneDetected     = "You may be using your phone. Please stop it. DeepWork doesn't allow phone use during the study/work segment."
	msgPhoneFinalWarning = "You have used your phone for 45 seconds. Please remove it, or the session terminates in the next 15 seconds."
	msgPhoneTerminated   = "Session terminated due to 1 minute of phone use."
	msgAbsentDetected    = "You seem to be absent."
	msgAbsentMinute      = "You have been absent for 1 minute. Please come back."
	msgAbsentFinal       = "You have been absent for so long. Please come back else session will terminate."
	msgAbsentTerminated  = "Session terminated due to 2 minutes of absence."
	msgFaceNotVisible    = "Your face has not been visible for 45 seconds. Please ensure your face is visible, or it will be treated as absence in the next 15 seconds."
	msgPositive          = "That's great, you've maintained 20 minutes of deep focus. Keep it up!"
)

// StreakState is a snapshot of the escalator's counters.
type StreakState struct {
	PhoneCount          int  `json:"phone_count"`
	AbsenceCount        int  `json:"absence_count"`
	FaceNotVisibleCount int  `json:"face_not_visible_count"`
	FocusedCount        int  `json:"focused_count"`
	NudgeDisabled       bool `json:"nudge_disabled"`
	AbsentMode          bool `json:"absent_mode"` // mirrors the summarizer's latch
}

// Outcome is what the escalator produced for one verdict.
type Outcome struct {
	Nudge       *NudgeEvent
	Termination *TerminationEvent
}

// Escalator turns focus log entries into nudges and rule-violation terminations.
type Escalator struct {
	streak     StreakState
	nudgeType  NudgeType
	onBreak    bool
	terminated bool
	lastIndex  int

	focusThreshold int
	lastNudge      *NudgeEvent
	interactions   []Interaction
	now            func() time.Time
}

// NewEscalator creates an escalator. A focusThreshold <= 0 uses
// DefaultFocusStreakWindows.
func NewEscalator(enabled bool, nudgeType NudgeType, focusThreshold int, now func() time.Time) *Escalator {
	if focusThreshold <= 0 {
		focusThreshold = DefaultFocusStreakWindows
	}
	if !nudgeType.Valid() {
		nudgeType = NudgeTextWithSound
	}
	if now == nil {
		now = time.Now
	}
	return &Escalator{
		streak:         StreakState{NudgeDisabled: !enabled},
		nudgeType:      nudgeType,
		focusThreshold: focusThreshold,
		now:            now,
	}
}

// State returns a snapshot of the streak counters.
func (e *Escalator) State() StreakState {
	return e.streak
}

// NudgeType returns the current delivery type.
func (e *Escalator) NudgeType() NudgeType {
	return e.nudgeType
}

// Enabled reports whether nudges are currently enabled.
func (e *Escalator) Enabled() bool {
	return !e.streak.NudgeDisabled
}

// Interactions returns a copy of the nudge interaction log.
func (e *Escalator) Interactions() []Interaction {
	return append([]Interaction(nil), e.interactions...)
}

// LastNudge returns the most recently emitted nudge.
func (e *Escalator) LastNudge() *NudgeEvent {
	return e.lastNudge
}

// SetBreak suspends or resumes streak tracking.
func (e *Escalator) SetBreak(onBreak bool) {
	e.onBreak = onBreak
}

// Disable suppresses nudges for the rest of the session.
func (e *Escalator) Disable() {
	if e.streak.NudgeDisabled {
		return
	}
	e.streak.NudgeDisabled = true
	e.record(Interaction{Type: InteractionDisabled})
}

// Enable re-enables nudges and clears all streaks.
func (e *Escalator) Enable() {
	if !e.streak.NudgeDisabled {
		return
	}
	e.streak = StreakState{AbsentMode: e.streak.AbsentMode}
	e.record(Interaction{Type: InteractionEnabled})
}

// SetNudgeType changes how subsequent nudges are delivered.
func (e *Escalator) SetNudgeType(t NudgeType) {
	if !t.Valid() || t == e.nudgeType {
		return
	}
	e.nudgeType = t
	e.record(Interaction{Type: InteractionTypeChanged, NudgeType: t})
}

// Dismiss records that the user dismissed the last nudge.
func (e *Escalator) Dismiss() {
	if e.lastNudge == nil {
		return
	}
	kind := InteractionDismissed
	if e.lastNudge.Positive {
		kind = InteractionDismissedPositive
	}
	e.record(Interaction{Type: kind, Message: e.lastNudge.Message})
}

// Observe updates the streaks for a newly appended verdict. Verdicts at or
// before the last observed log index are ignored.
func (e *Escalator) Observe(v WindowVerdict) Outcome {
	if e.terminated || v.Index <= e.lastIndex {
		return Outcome{}
	}
	e.lastIndex = v.Index

	if e.onBreak || e.streak.NudgeDisabled {
		return Outcome{}
	}

	s := &e.streak
	s.AbsentMode = v.AbsentMode
	switch {
	case v.State == StateFocused:
		s.FocusedCount++
		s.PhoneCount, s.AbsenceCount, s.FaceNotVisibleCount = 0, 0, 0
		if s.FocusedCount >= e.focusThreshold {
			s.FocusedCount = 0
			return Outcome{Nudge: e.emit(NudgePositive, msgPositive, true)}
		}

	case v.Reason == VerdictPhone:
		s.PhoneCount++
		s.AbsenceCount, s.FaceNotVisibleCount, s.FocusedCount = 0, 0, 0
		switch s.PhoneCount {
		case phoneWarnStreak:
			return Outcome{Nudge: e.emit(NudgePhoneDetected, msgPhoneDetected, false)}
		case phoneFinalStreak:
			return Outcome{Nudge: e.emit(NudgePhoneFinalWarning, msgPhoneFinalWarning, false)}
		case phoneTerminateStreak:
			return e.terminate(ReasonPhoneViolation, msgPhoneTerminated)
		}

	case v.Reason == VerdictAbsent:
		s.AbsenceCount++
		s.PhoneCount, s.FaceNotVisibleCount, s.FocusedCount = 0, 0, 0
		switch {
		case s.AbsenceCount == absentTerminateStreak:
			return e.terminate(ReasonAbsentViolation, msgAbsentTerminated)
		case s.AbsenceCount == absentFinalStreak:
			return Outcome{Nudge: e.emit(NudgeAbsentFinal, msgAbsentFinal, false)}
		case s.AbsenceCount == absentMinuteStreak:
			return Outcome{Nudge: e.emit(NudgeAbsentMinute, msgAbsentMinute, false)}
		case v.FaceNotVisibleTransition:
			return Outcome{Nudge: e.emit(NudgeAbsentDetected, msgAbsentDetected, false)}
		}

	case v.Reason == VerdictFaceNotVisible:
		// Keeps an absence streak alive without extending it.
		s.PhoneCount, s.FocusedCount = 0, 0
		if s.AbsentMode {
			break
		}
		s.FaceNotVisibleCount++
		if s.FaceNotVisibleCount == faceNotVisibleWarnStreak {
			return Outcome{Nudge: e.emit(NudgeFaceNotVisible, msgFaceNotVisible, false)}
		}

	default:
		s.PhoneCount, s.AbsenceCount, s.FaceNotVisibleCount, s.FocusedCount = 0, 0, 0, 0
	}

	return Outcome{}
}

func (e *Escalator) emit(kind NudgeKind, message string, positive bool) *NudgeEvent {
	ev := &NudgeEvent{
		ID:        uuid.New().String(),
		Kind:      kind,
		Message:   message,
		Positive:  positive,
		Sound:     e.nudgeType == NudgeTextWithSound,
		Timestamp: e.now(),
	}
	e.lastNudge = ev

	shown := InteractionShown
	if positive {
		shown = InteractionShownPositive
	}
	e.record(Interaction{Type: shown, Message: message, Timestamp: ev.Timestamp})
	return ev
}

func (e *Escalator) terminate(reason, message string) Outcome {
	e.terminated = true
	now := e.now()
	nudge := &NudgeEvent{
		ID:        uuid.New().String(),
		Kind:      NudgeTerminated,
		Message:   message,
		Sound:     true,
		Timestamp: now,
	}
	e.lastNudge = nudge
	return Outcome{
		Nudge: nudge,
		Termination: &TerminationEvent{
			Kind:      EndRuleViolation,
			Reason:    reason,
			Message:   message,
			Timestamp: now,
		},
	}
}

func (e *Escalator) record(i Interaction) {
	if i.Timestamp.IsZero() {
		i.Timestamp = e.now()
	}
	e.interactions = append(e.interactions, i)
}
