package focus

import (
	"log"
	"time"
)

// Vote thresholds for a single window.
const (
	phoneVotes          = 3
	absentVotes         = 4
	faceNotVisibleVotes = 6
	likelyVotes         = 8

	// faceNotVisibleWindows is how many prior FaceNotVisible windows convert
	// a further FaceNotVisible window into absence.
	faceNotVisibleWindows = 3
)

// Representative focus levels per verdict.
const (
	levelFocused        = 10
	levelFaceNotVisible = 7
	levelPosture        = 6
	levelPhone          = 2
	levelAbsent         = 0
)

// WindowCounts are the per-category vote counts of one window.
type WindowCounts struct {
	Focused        int
	Phone          int
	Absent         int
	FaceNotVisible int
	Likely         int
}

// CountWindow tallies the categories of the given samples.
// Samples synthesized during a classifier outage count as absence.
func CountWindow(samples []FrameSample) WindowCounts {
	var c WindowCounts
	for _, s := range samples {
		if s.State == StateFocused {
			c.Focused++
		}
		switch s.Category {
		case CategoryPhone:
			c.Phone++
		case CategoryAbsent, CategoryInactiveModel:
			c.Absent++
		case CategoryFaceNotVisible:
			c.FaceNotVisible++
		case CategoryLikelyDistracted:
			c.Likely++
		}
	}
	return c
}

// Summarizer buffers frame samples and reduces each window to one verdict.
type Summarizer struct {
	log    *Log
	buffer []FrameSample
	now    func() time.Time

	absentMode bool

	consecutiveFocused        int
	consecutiveLowFocus       int
	consecutiveFaceNotVisible int

	tally Tally
}

// Tally holds the running totals kept as each window is summarized.
type Tally struct {
	Windows           int
	FocusedWindows    int
	FocusSeconds      int
	DistractedSeconds int
	LevelTotal        int
}

// FocusPercentage is the rounded share of focused windows.
func (t Tally) FocusPercentage() int {
	if t.Windows == 0 {
		return 0
	}
	return roundHalfUp(100 * float64(t.FocusedWindows) / float64(t.Windows))
}

// AverageFocusLevel is the rounded mean verdict level.
func (t Tally) AverageFocusLevel() int {
	if t.Windows == 0 {
		return 0
	}
	return roundHalfUp(float64(t.LevelTotal) / float64(t.Windows))
}

// NewSummarizer creates a summarizer appending to the given log.
func NewSummarizer(l *Log, now func() time.Time) *Summarizer {
	if now == nil {
		now = time.Now
	}
	return &Summarizer{
		log:    l,
		buffer: make([]FrameSample, 0, WindowSize),
		now:    now,
	}
}

// Add appends a sample to the rolling buffer, evicting the oldest sample
// once the buffer is over capacity.
func (s *Summarizer) Add(sample FrameSample) {
	s.buffer = append(s.buffer, sample)
	if len(s.buffer) > WindowSize {
		s.buffer = append(s.buffer[:0], s.buffer[len(s.buffer)-WindowSize:]...)
	}
}

// Pending returns the number of buffered samples.
func (s *Summarizer) Pending() int {
	return len(s.buffer)
}

// AbsentMode reports whether the absence latch is set.
func (s *Summarizer) AbsentMode() bool {
	return s.absentMode
}

// Seconds returns the accumulated focused and distracted seconds.
func (s *Summarizer) Seconds() (focused, distracted int) {
	return s.tally.FocusSeconds, s.tally.DistractedSeconds
}

// Tally returns the running totals.
func (s *Summarizer) Tally() Tally {
	return s.tally
}

// Summarize reduces the buffered samples to one verdict, appends it to the
// log and clears the buffer. It reports false when the buffer is empty.
func (s *Summarizer) Summarize() (WindowVerdict, bool) {
	if len(s.buffer) == 0 {
		return WindowVerdict{}, false
	}

	counts := CountWindow(s.buffer)
	verdict := WindowVerdict{
		Timestamp: s.now(),
		State:     StateFocused,
		Level:     levelFocused,
		Details:   s.buffer,
	}

	switch {
	case counts.Phone >= phoneVotes:
		verdict.State = StateDistracted
		verdict.Reason = VerdictPhone
		verdict.Level = levelPhone
		s.consecutiveFaceNotVisible = 0

	case (s.absentMode && !recovered(counts, len(s.buffer))) || s.faceNotVisibleExpired(counts) || counts.Absent >= absentVotes:
		verdict.State = StateDistracted
		verdict.Reason = VerdictAbsent
		verdict.Level = levelAbsent
		if !s.absentMode && s.faceNotVisibleExpired(counts) {
			verdict.FaceNotVisibleTransition = true
			s.absentMode = true
		}
		s.consecutiveFaceNotVisible = 0

	case !s.absentMode && counts.FaceNotVisible >= faceNotVisibleVotes:
		verdict.State = StateDistracted
		verdict.Reason = VerdictFaceNotVisible
		verdict.Level = levelFaceNotVisible
		s.consecutiveFaceNotVisible++

	case counts.Likely >= likelyVotes:
		verdict.State = StateDistracted
		verdict.Reason = VerdictPosture
		verdict.Level = levelPosture
		s.consecutiveFaceNotVisible = 0
		s.absentMode = false

	default:
		s.consecutiveFaceNotVisible = 0
		s.absentMode = false
	}
	verdict.AbsentMode = s.absentMode

	s.tally.Windows++
	s.tally.LevelTotal += verdict.Level
	if verdict.Focused() {
		s.consecutiveFocused++
		s.consecutiveLowFocus = 0
		s.tally.FocusedWindows++
		s.tally.FocusSeconds += WindowSeconds
	} else {
		s.consecutiveFocused = 0
		s.consecutiveLowFocus++
		s.tally.DistractedSeconds += WindowSeconds
	}

	stored := s.log.Append(verdict)
	s.buffer = make([]FrameSample, 0, WindowSize)

	log.Printf("window %d: %s %s (focused %d/%d, phone %d, absent %d, face %d, likely %d, absent mode %v)",
		stored.Index, stored.State, stored.Reason, counts.Focused, len(stored.Details),
		counts.Phone, counts.Absent, counts.FaceNotVisible, counts.Likely, s.absentMode)

	return stored, true
}

// recovered reports whether a latched window shows the user back at the
// desk: fewer than six face-not-visible frames, and either a focused majority
// or enough posture frames to resolve on its own. Only a recovered window may
// clear the absence latch, so a latched window is Absent, Focused or Posture.
func recovered(counts WindowCounts, samples int) bool {
	if counts.FaceNotVisible >= faceNotVisibleVotes {
		return false
	}
	return counts.Focused > samples/2 || counts.Likely >= likelyVotes
}

// faceNotVisibleExpired reports whether this window's FaceNotVisible votes
// follow three logged FaceNotVisible windows.
func (s *Summarizer) faceNotVisibleExpired(counts WindowCounts) bool {
	if counts.FaceNotVisible < faceNotVisibleVotes {
		return false
	}
	prior := s.log.Tail(faceNotVisibleWindows)
	if len(prior) < faceNotVisibleWindows {
		return false
	}
	for _, v := range prior {
		if v.Reason != VerdictFaceNotVisible {
			return false
		}
	}
	return true
}
