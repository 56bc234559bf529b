package focus

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSessionEnded is returned when mutating a session that has ended.
var ErrSessionEnded = errors.New("session has ended")

// Options configures a Session.
type Options struct {
	Notifier Notifier
	Now      func() time.Time
}

// Session runs the focus state machine for one study session. It is driven
// one second at a time by Tick and is safe for use from multiple goroutines.
type Session struct {
	mu sync.Mutex

	id        string
	plan      Plan
	startedAt time.Time

	log        *Log
	scheduler  *Scheduler
	summarizer *Summarizer
	escalator  *Escalator
	notifier   Notifier
	now        func() time.Time

	liveState    State
	liveReason   string
	liveLevel    int
	liveOverride string

	summary *Summary
	done    chan struct{}
}

// NewSession starts a session in its first study phase.
func NewSession(plan Plan, opts Options) *Session {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = NopNotifier{}
	}

	l := NewLog()
	s := &Session{
		id:         uuid.New().String(),
		plan:       plan,
		startedAt:  now(),
		log:        l,
		scheduler:  NewScheduler(plan),
		summarizer: NewSummarizer(l, now),
		escalator:  NewEscalator(plan.NudgeEnabled, plan.NudgeType, plan.FocusStreakWindows, now),
		notifier:   notifier,
		now:        now,
		done:       make(chan struct{}),
	}

	log.Printf("session %s started: goal %q #%d, %d segment(s), %d period(s), %d/%d minutes",
		s.id, plan.ProjectName, plan.SessionNo, plan.Segments, plan.StudyPeriods, plan.StudyMinutes, plan.BreakMinutes)
	return s
}

// ID returns the unique run identifier.
func (s *Session) ID() string {
	return s.id
}

// Plan returns the session plan.
func (s *Session) Plan() Plan {
	return s.plan
}

// Log returns the session's focus log.
func (s *Session) Log() *Log {
	return s.log
}

// Done is closed once the session has ended.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Sampling reports whether frames should be captured this second.
func (s *Session) Sampling() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.scheduler.State()
	return !st.Ended && !st.IsPaused && !st.IsBreakTime
}

// Ingest adds one classified frame to the current window. Frames arriving
// during a break are dropped.
func (s *Session) Ingest(sample FrameSample) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.scheduler.State()
	if st.Ended {
		return ErrSessionEnded
	}
	s.liveState = sample.State
	s.liveReason = sample.Reason
	s.liveLevel = sample.Level
	if st.IsBreakTime {
		return nil
	}
	s.summarizer.Add(sample)
	return nil
}

// SetOverrideMessage records the latest classifier override message.
func (s *Session) SetOverrideMessage(msg string) {
	s.mu.Lock()
	s.liveOverride = msg
	s.mu.Unlock()
}

// Tick advances the session by one second.
func (s *Session) Tick() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.summary != nil {
		return ErrSessionEnded
	}

	step := s.scheduler.Advance()
	if !step.Ticked {
		return nil
	}

	if step.Boundary {
		if verdict, ok := s.summarizer.Summarize(); ok {
			out := s.escalator.Observe(verdict)
			if out.Nudge != nil {
				s.notifier.Nudge(*out.Nudge)
			}
			if out.Termination != nil {
				s.end(out.Termination.Kind, out.Termination.Reason, out.Termination.Message)
				return nil
			}
		}
	}

	switch {
	case step.EnterBreak:
		s.escalator.SetBreak(true)
		log.Printf("session %s: break started", s.id)
	case step.EnterStudy:
		s.escalator.SetBreak(false)
		log.Printf("session %s: study segment %d started", s.id, s.scheduler.State().CurrentStudySegment)
	case step.Completed:
		s.end(EndCompleted, ReasonCompleted, "")
	}
	return nil
}

// Pause suspends ticking without resetting the timer or the current window.
func (s *Session) Pause() error {
	return s.setPaused(true)
}

// Resume continues a paused session.
func (s *Session) Resume() error {
	return s.setPaused(false)
}

// TogglePause flips the paused state and returns the new value.
func (s *Session) TogglePause() (bool, error) {
	s.mu.Lock()
	paused := !s.scheduler.State().IsPaused
	s.mu.Unlock()
	return paused, s.setPaused(paused)
}

func (s *Session) setPaused(paused bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.summary != nil {
		return ErrSessionEnded
	}
	s.scheduler.SetPaused(paused)
	log.Printf("session %s: paused=%v", s.id, paused)
	return nil
}

// Stop ends the session manually. Calling Stop on an ended session returns
// ErrSessionEnded.
func (s *Session) Stop() (Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.summary != nil {
		return *s.summary, ErrSessionEnded
	}
	s.end(EndManualStop, ReasonManualStop, "")
	return *s.summary, nil
}

// Summary returns the final summary once the session has ended.
func (s *Session) Summary() (Summary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.summary == nil {
		return Summary{}, false
	}
	return *s.summary, true
}

// DisableNudges suppresses nudges for the rest of the session.
func (s *Session) DisableNudges() error {
	return s.withEscalator(func(e *Escalator) { e.Disable() })
}

// EnableNudges re-enables nudges and clears all streaks.
func (s *Session) EnableNudges() error {
	return s.withEscalator(func(e *Escalator) { e.Enable() })
}

// DismissNudge records that the user dismissed the last nudge.
func (s *Session) DismissNudge() error {
	return s.withEscalator(func(e *Escalator) { e.Dismiss() })
}

// SetNudgeType changes how subsequent nudges are delivered.
func (s *Session) SetNudgeType(t NudgeType) error {
	return s.withEscalator(func(e *Escalator) { e.SetNudgeType(t) })
}

func (s *Session) withEscalator(fn func(*Escalator)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.summary != nil {
		return ErrSessionEnded
	}
	fn(s.escalator)
	return nil
}

// end flushes the partial window, builds the summary and notifies. It runs
// at most once; the caller holds s.mu.
func (s *Session) end(kind EndKind, reason, message string) {
	if s.summary != nil {
		return
	}

	s.summarizer.Summarize()
	s.scheduler.End()

	endTime := s.now()
	summary := BuildSummary(s.plan, s.id, s.startedAt, endTime, s.log.Entries(),
		s.summarizer.Tally(), s.escalator.Interactions(), kind, reason)
	s.summary = &summary

	log.Printf("session %s ended: %s (%s), focus %ds, distracted %ds, %d windows",
		s.id, kind, reason, summary.FocusSeconds, summary.DistractedSeconds, len(summary.Verdicts))

	s.notifier.Terminated(TerminationEvent{
		Kind:      kind,
		Reason:    reason,
		Message:   message,
		Timestamp: endTime,
	})
	close(s.done)
}
