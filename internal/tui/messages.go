package tui

import (
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/deepworkai/deepwork/internal/focus"
)

type (
	// tickMsg refreshes the status snapshot
	tickMsg time.Time

	// nudgeMsg carries a nudge raised by the session
	nudgeMsg focus.NudgeEvent

	// endedMsg is sent once when the session ends
	endedMsg focus.TerminationEvent
)

// Notifier forwards session events to the running program. Events are
// queued on a channel because the session emits them while holding its lock.
type Notifier struct {
	events chan tea.Msg
}

func NewNotifier() *Notifier {
	return &Notifier{events: make(chan tea.Msg, 64)}
}

func (n *Notifier) Nudge(e focus.NudgeEvent) {
	n.send(nudgeMsg(e))
}

func (n *Notifier) Terminated(e focus.TerminationEvent) {
	n.send(endedMsg(e))
}

func (n *Notifier) send(msg tea.Msg) {
	select {
	case n.events <- msg:
	default:
		log.Printf("tui: event queue full, dropping %T", msg)
	}
}

// waitForEvent delivers the next queued session event
func waitForEvent(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-events
	}
}

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
