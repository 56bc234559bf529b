package focus

// Status is a point-in-time view of a running session.
type Status struct {
	SessionID         string         `json:"session_id"`
	ProjectName       string         `json:"project_name"`
	SessionNo         int            `json:"session_no"`
	Phase             Phase          `json:"phase"`
	Timer             TimerState     `json:"timer"`
	StudyPeriods      int            `json:"study_periods"`
	LiveState         State          `json:"live_state,omitempty"`
	LiveReason        string         `json:"live_reason,omitempty"`
	LiveLevel         int            `json:"live_level"`
	OverrideMessage   string         `json:"override_message,omitempty"`
	Latest            *WindowVerdict `json:"latest,omitempty"`
	Windows           int            `json:"windows"`
	FocusSeconds      int            `json:"focus_seconds"`
	DistractedSeconds int            `json:"distracted_seconds"`
	NudgesEnabled     bool           `json:"nudges_enabled"`
	NudgeType         NudgeType      `json:"nudge_type"`
	Streaks           StreakState    `json:"streaks"`
	LastNudge         *NudgeEvent    `json:"last_nudge,omitempty"`
	Message           string         `json:"message"`
}

// Status returns a snapshot of the session.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	timer := s.scheduler.State()
	focused, distracted := s.summarizer.Seconds()
	st := Status{
		SessionID:         s.id,
		ProjectName:       s.plan.ProjectName,
		SessionNo:         s.plan.SessionNo,
		Phase:             timer.Phase(),
		Timer:             timer,
		StudyPeriods:      s.plan.StudyPeriods,
		LiveState:         s.liveState,
		LiveReason:        s.liveReason,
		LiveLevel:         s.liveLevel,
		OverrideMessage:   s.liveOverride,
		Windows:           s.log.Len(),
		FocusSeconds:      focused,
		DistractedSeconds: distracted,
		NudgesEnabled:     s.escalator.Enabled(),
		NudgeType:         s.escalator.NudgeType(),
		Streaks:           s.escalator.State(),
	}
	if last, ok := s.log.Last(); ok {
		last.Details = nil
		st.Latest = &last
	}
	if n := s.escalator.LastNudge(); n != nil {
		nudge := *n
		st.LastNudge = &nudge
	}
	st.Message = DisplayMessage(s.log.Tail(4))
	return st
}

// DisplayMessage describes the most recent verdict for the user.
func DisplayMessage(recent []WindowVerdict) string {
	if len(recent) == 0 {
		return "Waiting for focus status..."
	}
	latest := recent[len(recent)-1]
	switch {
	case latest.Focused():
		return "You're maintaining great focus, keep it up!"
	case latest.Reason == VerdictAbsent && len(recent) >= 4 && allFaceOrAbsent(recent):
		return "Likely distracted: your face may not be in frame. Please adjust the camera!"
	case latest.Reason == VerdictAbsent:
		return "Strictly distracted: you seem to be absent. Please return."
	case latest.Reason == VerdictPhone:
		return "Strictly distracted: phone detected. Kindly put it aside to focus."
	case latest.Reason == VerdictFaceNotVisible:
		return "Likely distracted: your face may not be in frame. Please adjust the camera!"
	case latest.Reason == VerdictPosture:
		return "Likely distracted: you seem drowsy, looking away, or have bad posture. Adjust to refocus!"
	default:
		return "Please ensure you're in the right posture!"
	}
}

func allFaceOrAbsent(verdicts []WindowVerdict) bool {
	for _, v := range verdicts {
		if v.Reason != VerdictFaceNotVisible && v.Reason != VerdictAbsent {
			return false
		}
	}
	return true
}
