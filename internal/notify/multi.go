package notify

import "github.com/deepworkai/deepwork/internal/focus"

// Multi fans events out to every notifier in order.
type Multi []focus.Notifier

func (m Multi) Nudge(e focus.NudgeEvent) {
	for _, n := range m {
		n.Nudge(e)
	}
}

func (m Multi) Terminated(e focus.TerminationEvent) {
	for _, n := range m {
		n.Terminated(e)
	}
}
