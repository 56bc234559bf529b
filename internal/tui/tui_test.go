package tui

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/deepworkai/deepwork/internal/focus"
)

func newTestModel(t *testing.T) (model, *focus.Session, *Notifier) {
	t.Helper()
	plan, err := focus.NewPlan(focus.PlanConfig{
		ProjectID:    1,
		ProjectName:  "Thesis",
		SessionNo:    1,
		StudyMinutes: 45,
		BreakMinutes: 15,
		TotalMinutes: 45,
		NudgeEnabled: true,
		NudgeType:    focus.NudgeText,
	})
	if err != nil {
		t.Fatalf("NewPlan() error: %v", err)
	}
	n := NewNotifier()
	session := focus.NewSession(plan, focus.Options{Notifier: n})
	return newModel(session, n.events), session, n
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m model, s string) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(key(s))
	return next.(model), cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestInitialView(t *testing.T) {
	m, _, _ := newTestModel(t)

	view := m.View()
	for _, want := range []string{"Thesis - session #1", "45:00", "segment 1 of 1", "Waiting for focus status...", "Nudges on (text)"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestKeys(t *testing.T) {
	m, session, _ := newTestModel(t)

	m, _ = press(t, m, "p")
	if !session.Status().Timer.IsPaused {
		t.Error("p did not pause the session")
	}
	if !strings.Contains(m.View(), "(paused)") {
		t.Error("view does not show the paused state")
	}
	m, _ = press(t, m, "p")
	if session.Status().Timer.IsPaused {
		t.Error("second p did not resume the session")
	}

	m, _ = press(t, m, "d")
	if session.Status().NudgesEnabled {
		t.Error("d did not disable nudges")
	}
	if !strings.Contains(m.View(), "Nudges off") {
		t.Error("view does not show nudges off")
	}
	m, _ = press(t, m, "d")
	if !session.Status().NudgesEnabled {
		t.Error("second d did not enable nudges")
	}

	m, _ = press(t, m, "t")
	if got := session.Status().NudgeType; got != focus.NudgeTextWithSound {
		t.Errorf("NudgeType = %q, want %q", got, focus.NudgeTextWithSound)
	}

	m, cmd := press(t, m, "z")
	if cmd != nil || m.err != nil {
		t.Error("unbound key should be ignored")
	}

	m, cmd = press(t, m, "q")
	if !isQuit(cmd) {
		t.Error("q did not quit")
	}
	sum, ok := session.Summary()
	if !ok || sum.EndKind != focus.EndManualStop {
		t.Errorf("session not stopped manually: %+v", sum)
	}

	m, _ = press(t, m, "p")
	if m.err == nil {
		t.Error("pausing an ended session should report an error")
	}
}

func TestNudgesAreCapped(t *testing.T) {
	m, _, _ := newTestModel(t)

	for i := 1; i <= 6; i++ {
		next, cmd := m.Update(nudgeMsg(focus.NudgeEvent{
			Kind:      focus.NudgeAbsentDetected,
			Message:   fmt.Sprintf("nudge %d", i),
			Timestamp: time.Date(2026, 3, 2, 9, 0, i, 0, time.UTC),
		}))
		m = next.(model)
		if cmd == nil {
			t.Fatal("nudge should keep listening for events")
		}
	}

	if len(m.nudges) != maxNudges {
		t.Fatalf("kept %d nudges, want %d", len(m.nudges), maxNudges)
	}
	view := m.View()
	if strings.Contains(view, "nudge 2") || !strings.Contains(view, "nudge 6") {
		t.Errorf("view should show the latest nudges:\n%s", view)
	}

	m, _ = press(t, m, "x")
	if len(m.nudges) != 0 {
		t.Error("x did not clear the nudges")
	}
}

func TestEndedQuits(t *testing.T) {
	m, _, _ := newTestModel(t)

	next, cmd := m.Update(endedMsg(focus.TerminationEvent{
		Kind:   focus.EndRuleViolation,
		Reason: "Session terminated due to phone use",
	}))
	m = next.(model)
	if !isQuit(cmd) {
		t.Error("ended session did not quit")
	}
	if !strings.Contains(m.View(), "Session ended: Session terminated due to phone use") {
		t.Errorf("view missing termination:\n%s", m.View())
	}
}

func TestNotifierQueuesEvents(t *testing.T) {
	n := NewNotifier()
	n.Nudge(focus.NudgeEvent{Kind: focus.NudgePositive, Message: "Great focus"})
	n.Terminated(focus.TerminationEvent{Kind: focus.EndCompleted})

	if msg, ok := waitForEvent(n.events)().(nudgeMsg); !ok || msg.Message != "Great focus" {
		t.Errorf("first event = %#v, want the nudge", msg)
	}
	if _, ok := waitForEvent(n.events)().(endedMsg); !ok {
		t.Error("second event is not the termination")
	}
}
