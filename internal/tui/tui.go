package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/deepworkai/deepwork/internal/focus"
	"github.com/deepworkai/deepwork/pkg/utils"
)

const (
	refreshInterval = 250 * time.Millisecond
	maxNudges       = 4
)

// Controller is the part of a session the screen reads and drives.
// *focus.Session satisfies it.
type Controller interface {
	Status() focus.Status
	TogglePause() (bool, error)
	Stop() (focus.Summary, error)
	DismissNudge() error
	EnableNudges() error
	DisableNudges() error
	SetNudgeType(focus.NudgeType) error
}

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	clockStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).Padding(1, 2)
	breakStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")).Padding(1, 2)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	focusedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	positiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	endedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("63")).Padding(0, 1)
)

type model struct {
	ctrl   Controller
	events <-chan tea.Msg

	status focus.Status
	nudges []focus.NudgeEvent
	ended  *focus.TerminationEvent
	err    error
}

func newModel(ctrl Controller, events <-chan tea.Msg) model {
	return model{
		ctrl:   ctrl,
		events: events,
		status: ctrl.Status(),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(tickCmd(refreshInterval), waitForEvent(m.events))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.status = m.ctrl.Status()
		return m, tickCmd(refreshInterval)

	case nudgeMsg:
		m.nudges = append(m.nudges, focus.NudgeEvent(msg))
		if len(m.nudges) > maxNudges {
			m.nudges = m.nudges[len(m.nudges)-maxNudges:]
		}
		return m, waitForEvent(m.events)

	case endedMsg:
		ended := focus.TerminationEvent(msg)
		m.ended = &ended
		m.status = m.ctrl.Status()
		return m, tea.Quit

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var err error
	switch msg.String() {
	case "ctrl+c", "q", "s":
		_, err = m.ctrl.Stop()
		if err == nil || errors.Is(err, focus.ErrSessionEnded) {
			m.status = m.ctrl.Status()
			return m, tea.Quit
		}
	case "p", " ":
		_, err = m.ctrl.TogglePause()
	case "x":
		err = m.ctrl.DismissNudge()
		if err == nil {
			m.nudges = nil
		}
	case "d":
		if m.status.NudgesEnabled {
			err = m.ctrl.DisableNudges()
		} else {
			err = m.ctrl.EnableNudges()
		}
	case "t":
		next := focus.NudgeTextWithSound
		if m.status.NudgeType == focus.NudgeTextWithSound {
			next = focus.NudgeText
		}
		err = m.ctrl.SetNudgeType(next)
	default:
		return m, nil
	}
	m.err = err
	m.status = m.ctrl.Status()
	return m, nil
}

func (m model) View() string {
	st := m.status
	var s strings.Builder

	s.WriteString(headerStyle.Render(fmt.Sprintf("%s - session #%d", st.ProjectName, st.SessionNo)) + "\n")

	phase := fmt.Sprintf("Studying, segment %d of %d", st.Timer.CurrentStudySegment, st.StudyPeriods)
	clock := clockStyle
	if st.Timer.IsBreakTime {
		phase = "Break time"
		clock = breakStyle
	}
	if st.Timer.IsPaused {
		phase += " (paused)"
	}
	s.WriteString(clock.Render(utils.Clock(st.Timer.TimeRemaining)) + "\n")
	s.WriteString(mutedStyle.Render(phase) + "\n\n")

	if st.LiveState != "" {
		live := string(st.LiveState)
		if st.LiveReason != "" {
			live += " (" + st.LiveReason + ")"
		}
		style := warnStyle
		if st.LiveState == focus.StateFocused {
			style = focusedStyle
		}
		s.WriteString(fmt.Sprintf("Now: %s  level %d\n", style.Render(live), st.LiveLevel))
	}
	s.WriteString(st.Message + "\n")
	if st.OverrideMessage != "" {
		s.WriteString(warnStyle.Render(st.OverrideMessage) + "\n")
	}

	for _, n := range m.nudges {
		style := warnStyle
		if n.Positive {
			style = positiveStyle
		}
		s.WriteString(mutedStyle.Render(n.Timestamp.Format("15:04:05")) + " " + style.Render(n.Message) + "\n")
	}

	s.WriteString(fmt.Sprintf("\nFocused %s  Distracted %s  Windows %d\n",
		utils.Clock(st.FocusSeconds), utils.Clock(st.DistractedSeconds), st.Windows))

	nudges := "on"
	if !st.NudgesEnabled {
		nudges = "off"
	}
	s.WriteString(mutedStyle.Render(fmt.Sprintf("Nudges %s (%s)", nudges, st.NudgeType)) + "\n")

	if m.err != nil {
		s.WriteString(warnStyle.Render("Error: "+m.err.Error()) + "\n")
	}

	if m.ended != nil {
		s.WriteString("\n" + endedStyle.Render("Session ended: "+m.ended.Reason) + "\n")
		if m.ended.Message != "" {
			s.WriteString(m.ended.Message + "\n")
		}
		return s.String()
	}

	s.WriteString("\n" + mutedStyle.Render("p pause  x dismiss  d nudges  t sound  s stop  q quit") + "\n")
	return s.String()
}

// Run shows the session screen until the session ends or the user stops it.
func Run(ctx context.Context, ctrl Controller, notifier *Notifier) error {
	p := tea.NewProgram(newModel(ctrl, notifier.events), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
