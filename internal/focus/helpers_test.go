package focus

import "time"

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.t = c.t.Add(time.Millisecond)
	return c.t
}

func frames(n int, state State, cat Category) []FrameSample {
	reason := string(cat)
	if cat == CategoryFaceNotVisible {
		reason = RawReasonFaceNotVisible
	}
	out := make([]FrameSample, n)
	for i := range out {
		out[i] = FrameSample{State: state, Category: cat, Reason: reason, Level: 5}
	}
	return out
}

func focusedFrames(n int) []FrameSample {
	return frames(n, StateFocused, CategoryNone)
}

func mix(parts ...[]FrameSample) []FrameSample {
	var out []FrameSample
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// summarizeWindow feeds samples into s and summarizes them.
func summarizeWindow(s *Summarizer, samples []FrameSample) WindowVerdict {
	for _, f := range samples {
		s.Add(f)
	}
	v, _ := s.Summarize()
	return v
}
