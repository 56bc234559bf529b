package notify

import (
	"fmt"
	"log"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/deepworkai/deepwork/internal/focus"
)

// messageSender is the part of discordgo.Session used to post messages.
type messageSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Discord posts nudges to a channel so they reach a phone when the user has
// walked away from the desk. Messages are sent from a background goroutine;
// Nudge and Terminated never block.
type Discord struct {
	sender    messageSender
	channelID string
	queue     chan string
	wg        sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewDiscord creates a bot-token notifier for channelID.
func NewDiscord(token, channelID string) (*Discord, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}
	return newDiscord(session, channelID), nil
}

func newDiscord(sender messageSender, channelID string) *Discord {
	d := &Discord{
		sender:    sender,
		channelID: channelID,
		queue:     make(chan string, 32),
	}
	d.wg.Add(1)
	go d.sendLoop()
	return d
}

func (d *Discord) Nudge(e focus.NudgeEvent) {
	prefix := "Focus nudge"
	if e.Positive {
		prefix = "Nice work"
	}
	d.enqueue(fmt.Sprintf("**%s:** %s", prefix, e.Message))
}

func (d *Discord) Terminated(e focus.TerminationEvent) {
	msg := fmt.Sprintf("**Session ended:** %s", e.Reason)
	if e.Message != "" {
		msg += "\n" + e.Message
	}
	d.enqueue(msg)
}

// Close flushes queued messages and stops the sender.
func (d *Discord) Close() error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	d.wg.Wait()
	return nil
}

func (d *Discord) enqueue(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	select {
	case d.queue <- msg:
	default:
		log.Printf("[discord-notify] queue full, dropping message")
	}
}

func (d *Discord) sendLoop() {
	defer d.wg.Done()
	for msg := range d.queue {
		if _, err := d.sender.ChannelMessageSend(d.channelID, msg); err != nil {
			log.Printf("[discord-notify] Failed to send message: %v", err)
		}
	}
}
