package focus

import "testing"

type verdictFeed struct {
	e     *Escalator
	index int
}

func (f *verdictFeed) observe(state State, reason VerdictReason, transition bool) Outcome {
	f.index++
	return f.e.Observe(WindowVerdict{
		Index:                    f.index,
		State:                    state,
		Reason:                   reason,
		FaceNotVisibleTransition: transition,
	})
}

func (f *verdictFeed) focused() Outcome { return f.observe(StateFocused, VerdictNone, false) }
func (f *verdictFeed) phone() Outcome   { return f.observe(StateDistracted, VerdictPhone, false) }
func (f *verdictFeed) absent() Outcome  { return f.observe(StateDistracted, VerdictAbsent, false) }
func (f *verdictFeed) face() Outcome    { return f.observe(StateDistracted, VerdictFaceNotVisible, false) }
func (f *verdictFeed) posture() Outcome { return f.observe(StateDistracted, VerdictPosture, false) }

func newFeed(threshold int) *verdictFeed {
	return &verdictFeed{e: NewEscalator(true, NudgeTextWithSound, threshold, newFakeClock().Now)}
}

func TestPhoneEscalation(t *testing.T) {
	f := newFeed(0)

	out := f.phone()
	if out.Nudge == nil || out.Nudge.Kind != NudgePhoneDetected {
		t.Fatalf("first phone window nudge = %+v, want %s", out.Nudge, NudgePhoneDetected)
	}
	if out.Termination != nil {
		t.Fatal("first phone window terminated the session")
	}

	out = f.phone()
	if out.Nudge == nil || out.Nudge.Kind != NudgePhoneFinalWarning {
		t.Fatalf("second phone window nudge = %+v, want %s", out.Nudge, NudgePhoneFinalWarning)
	}
	if out.Termination != nil {
		t.Fatal("second phone window terminated the session")
	}

	out = f.phone()
	if out.Termination == nil {
		t.Fatal("third phone window did not terminate")
	}
	if out.Termination.Reason != "Phone use for 1 minute" {
		t.Errorf("termination reason = %q", out.Termination.Reason)
	}
	if out.Termination.Kind != EndRuleViolation {
		t.Errorf("termination kind = %s, want %s", out.Termination.Kind, EndRuleViolation)
	}

	if out := f.phone(); out.Nudge != nil || out.Termination != nil {
		t.Error("escalator produced output after termination")
	}
}

func TestPhoneStreakResets(t *testing.T) {
	tests := []struct {
		name  string
		reset func(*verdictFeed) Outcome
	}{
		{"absent", (*verdictFeed).absent},
		{"face not visible", (*verdictFeed).face},
		{"posture", (*verdictFeed).posture},
		{"focused", (*verdictFeed).focused},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFeed(0)
			f.phone()
			f.phone()
			tt.reset(f)
			if got := f.e.State().PhoneCount; got != 0 {
				t.Fatalf("PhoneCount = %d after %s, want 0", got, tt.name)
			}
			out := f.phone()
			if out.Termination != nil {
				t.Error("phone streak survived a reset")
			}
			if out.Nudge == nil || out.Nudge.Kind != NudgePhoneDetected {
				t.Errorf("nudge after reset = %+v, want %s", out.Nudge, NudgePhoneDetected)
			}
		})
	}
}

func TestAbsenceEscalation(t *testing.T) {
	f := newFeed(0)

	out := f.observe(StateDistracted, VerdictAbsent, true)
	if out.Nudge == nil || out.Nudge.Kind != NudgeAbsentDetected {
		t.Fatalf("transition nudge = %+v, want %s", out.Nudge, NudgeAbsentDetected)
	}

	want := map[int]NudgeKind{
		3: NudgeAbsentMinute,
		5: NudgeAbsentFinal,
	}
	for streak := 2; streak <= 6; streak++ {
		out := f.absent()
		if out.Termination != nil {
			t.Fatalf("terminated at absence streak %d", streak)
		}
		kind, ok := want[streak]
		switch {
		case ok && (out.Nudge == nil || out.Nudge.Kind != kind):
			t.Errorf("streak %d nudge = %+v, want %s", streak, out.Nudge, kind)
		case !ok && out.Nudge != nil:
			t.Errorf("streak %d unexpected nudge %s", streak, out.Nudge.Kind)
		}
	}

	out = f.absent()
	if out.Termination == nil || out.Termination.Reason != "Absent for 2 minutes" {
		t.Fatalf("seventh absent window termination = %+v", out.Termination)
	}
}

func TestAbsenceWithoutTransitionSkipsFirstWarning(t *testing.T) {
	f := newFeed(0)
	if out := f.absent(); out.Nudge != nil {
		t.Errorf("plain absent window nudge = %s, want none", out.Nudge.Kind)
	}
	f.absent()
	if got := f.e.State().AbsenceCount; got != 2 {
		t.Errorf("AbsenceCount = %d, want 2", got)
	}
}

func TestFaceNotVisibleKeepsAbsenceStreakAlive(t *testing.T) {
	f := newFeed(0)
	f.absent()
	if out := f.face(); out.Nudge != nil {
		t.Errorf("first face window after absence nudge = %s, want none", out.Nudge.Kind)
	}
	out := f.face()
	if out.Nudge == nil || out.Nudge.Kind != NudgeFaceNotVisible {
		t.Fatalf("second face window nudge = %+v, want %s", out.Nudge, NudgeFaceNotVisible)
	}

	st := f.e.State()
	if st.AbsenceCount != 1 {
		t.Errorf("AbsenceCount = %d, want 1", st.AbsenceCount)
	}
	if st.FaceNotVisibleCount != 2 {
		t.Errorf("FaceNotVisibleCount = %d, want 2", st.FaceNotVisibleCount)
	}
	if st.AbsentMode {
		t.Error("AbsentMode set without a latched verdict")
	}

	f.absent()
	if got := f.e.State().AbsenceCount; got != 2 {
		t.Errorf("AbsenceCount = %d after another absent window, want 2", got)
	}
}

func TestFaceNotVisibleInLatchedWindowIsNotCounted(t *testing.T) {
	f := newFeed(0)
	f.index++
	f.e.Observe(WindowVerdict{Index: f.index, State: StateDistracted, Reason: VerdictAbsent, FaceNotVisibleTransition: true, AbsentMode: true})
	f.index++
	f.e.Observe(WindowVerdict{Index: f.index, State: StateDistracted, Reason: VerdictFaceNotVisible, AbsentMode: true})

	st := f.e.State()
	if !st.AbsentMode {
		t.Error("AbsentMode should mirror the latched verdict")
	}
	if st.AbsenceCount != 1 || st.FaceNotVisibleCount != 0 {
		t.Errorf("streaks = absence %d, face %d, want 1, 0", st.AbsenceCount, st.FaceNotVisibleCount)
	}
}

func TestTransitionWarnsAfterEarlierAbsence(t *testing.T) {
	f := newFeed(0)
	f.absent()
	f.face()
	f.face()
	f.face()
	f.index++
	out := f.e.Observe(WindowVerdict{Index: f.index, State: StateDistracted, Reason: VerdictAbsent, FaceNotVisibleTransition: true, AbsentMode: true})
	if out.Nudge == nil || out.Nudge.Kind != NudgeAbsentDetected {
		t.Fatalf("transition nudge = %+v, want %s", out.Nudge, NudgeAbsentDetected)
	}
	if got := f.e.State().AbsenceCount; got != 2 {
		t.Errorf("AbsenceCount = %d, want 2", got)
	}
}

func TestPhoneBreaksAbsenceBeforeFaceNotVisible(t *testing.T) {
	f := newFeed(0)
	f.absent()
	f.phone()
	f.face()
	st := f.e.State()
	if st.AbsenceCount != 0 || st.FaceNotVisibleCount != 1 || st.AbsentMode {
		t.Errorf("streaks = %+v, want absence 0, face 1, no absent mode", st)
	}
}

func TestAbsenceStreakResets(t *testing.T) {
	f := newFeed(0)
	f.absent()
	f.absent()
	f.posture()
	if got := f.e.State().AbsenceCount; got != 0 {
		t.Errorf("AbsenceCount = %d after posture, want 0", got)
	}
	f.absent()
	f.phone()
	if got := f.e.State().AbsenceCount; got != 0 {
		t.Errorf("AbsenceCount = %d after phone, want 0", got)
	}
}

func TestFaceNotVisibleWarning(t *testing.T) {
	f := newFeed(0)
	if out := f.face(); out.Nudge != nil {
		t.Errorf("first face window nudge = %s, want none", out.Nudge.Kind)
	}
	out := f.face()
	if out.Nudge == nil || out.Nudge.Kind != NudgeFaceNotVisible {
		t.Fatalf("second face window nudge = %+v, want %s", out.Nudge, NudgeFaceNotVisible)
	}
	f.focused()
	if got := f.e.State().FaceNotVisibleCount; got != 0 {
		t.Errorf("FaceNotVisibleCount = %d after focus, want 0", got)
	}
}

func TestPositiveNudgeRetriggers(t *testing.T) {
	f := newFeed(4)
	for round := 0; round < 2; round++ {
		for i := 1; i <= 3; i++ {
			if out := f.focused(); out.Nudge != nil {
				t.Fatalf("round %d: nudge after %d focused windows", round, i)
			}
		}
		out := f.focused()
		if out.Nudge == nil || out.Nudge.Kind != NudgePositive || !out.Nudge.Positive {
			t.Fatalf("round %d: nudge = %+v, want positive", round, out.Nudge)
		}
		if got := f.e.State().FocusedCount; got != 0 {
			t.Errorf("FocusedCount = %d after positive nudge, want 0", got)
		}
	}
}

func TestDefaultFocusThreshold(t *testing.T) {
	if DefaultFocusStreakWindows != 80 {
		t.Errorf("DefaultFocusStreakWindows = %d, want 80", DefaultFocusStreakWindows)
	}
	f := newFeed(0)
	for i := 1; i < 80; i++ {
		if out := f.focused(); out.Nudge != nil {
			t.Fatalf("nudge after %d focused windows", i)
		}
	}
	if out := f.focused(); out.Nudge == nil {
		t.Error("no positive nudge after 80 focused windows")
	}
}

func TestDisableSuppressesAndEnableResets(t *testing.T) {
	f := newFeed(0)
	f.phone()
	f.phone()
	f.e.Disable()

	for i := 0; i < 5; i++ {
		if out := f.phone(); out.Nudge != nil || out.Termination != nil {
			t.Fatalf("disabled escalator emitted output: %+v", out)
		}
	}
	if got := f.e.State().PhoneCount; got != 2 {
		t.Errorf("PhoneCount = %d while disabled, want unchanged 2", got)
	}

	f.e.Enable()
	st := f.e.State()
	if st.PhoneCount != 0 || st.AbsenceCount != 0 || st.FaceNotVisibleCount != 0 || st.FocusedCount != 0 {
		t.Errorf("streaks after Enable = %+v, want all zero", st)
	}
	if st.NudgeDisabled {
		t.Error("NudgeDisabled still set after Enable")
	}
	out := f.phone()
	if out.Nudge == nil || out.Nudge.Kind != NudgePhoneDetected {
		t.Errorf("first nudge after Enable = %+v, want %s", out.Nudge, NudgePhoneDetected)
	}

	types := []string{}
	for _, i := range f.e.Interactions() {
		types = append(types, i.Type)
	}
	want := []string{InteractionShown, InteractionShown, InteractionDisabled, InteractionEnabled, InteractionShown}
	if len(types) != len(want) {
		t.Fatalf("interactions = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("interaction %d = %s, want %s", i, types[i], want[i])
		}
	}
}

func TestBreakSuspendsStreaks(t *testing.T) {
	f := newFeed(0)
	f.phone()
	f.e.SetBreak(true)
	f.phone()
	f.phone()
	if got := f.e.State().PhoneCount; got != 1 {
		t.Errorf("PhoneCount = %d during break, want 1", got)
	}
	f.e.SetBreak(false)
	out := f.phone()
	if out.Nudge == nil || out.Nudge.Kind != NudgePhoneFinalWarning {
		t.Errorf("nudge after break = %+v, want %s", out.Nudge, NudgePhoneFinalWarning)
	}
}

func TestRepeatedObservationIsNoop(t *testing.T) {
	e := NewEscalator(true, NudgeText, 0, nil)
	v := WindowVerdict{Index: 1, State: StateDistracted, Reason: VerdictPhone}
	first := e.Observe(v)
	if first.Nudge == nil {
		t.Fatal("first observation produced no nudge")
	}
	if first.Nudge.Sound {
		t.Error("text-only nudge carries sound")
	}
	for i := 0; i < 3; i++ {
		if out := e.Observe(v); out.Nudge != nil || out.Termination != nil {
			t.Fatal("repeated observation produced output")
		}
	}
	if got := e.State().PhoneCount; got != 1 {
		t.Errorf("PhoneCount = %d, want 1", got)
	}
}

func TestDismissRecordsLastNudge(t *testing.T) {
	f := newFeed(1)
	f.e.Dismiss()
	if len(f.e.Interactions()) != 0 {
		t.Fatal("Dismiss without a nudge recorded an interaction")
	}
	f.focused()
	f.e.Dismiss()
	got := f.e.Interactions()
	if len(got) != 2 || got[1].Type != InteractionDismissedPositive {
		t.Errorf("interactions = %+v, want shown_positive then dismissed_positive", got)
	}

	f.e.SetNudgeType(NudgeText)
	got = f.e.Interactions()
	if last := got[len(got)-1]; last.Type != InteractionTypeChanged || last.NudgeType != NudgeText {
		t.Errorf("last interaction = %+v, want type_changed to text", last)
	}
}
