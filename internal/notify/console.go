package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/deepworkai/deepwork/internal/focus"
)

var (
	warningStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	positiveStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	endStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("63")).Padding(0, 1)
	violationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("160")).Padding(0, 1)
	timeStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Console prints nudges to a terminal. Nudges with sound ring the bell.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) Nudge(e focus.NudgeEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	style := warningStyle
	if e.Positive {
		style = positiveStyle
	}
	bell := ""
	if e.Sound {
		bell = "\a"
	}
	fmt.Fprintf(c.out, "%s%s %s\n", bell, timeStyle.Render(e.Timestamp.Format("15:04:05")), style.Render(e.Message))
}

func (c *Console) Terminated(e focus.TerminationEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	style := endStyle
	if e.Kind == focus.EndRuleViolation {
		style = violationStyle
	}
	fmt.Fprintf(c.out, "%s %s\n", timeStyle.Render(e.Timestamp.Format("15:04:05")), style.Render("Session ended: "+e.Reason))
	if e.Message != "" {
		fmt.Fprintln(c.out, e.Message)
	}
}
