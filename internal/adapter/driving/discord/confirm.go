package discord

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
)

// DefaultConfirmTimeout is how long a confirmation prompt waits for a click.
const DefaultConfirmTimeout = 15 * time.Second

const (
	confirmPrefix = "confirm:"
	cancelPrefix  = "cancel:"
)

// clickResult classifies a button press.
type clickResult int

const (
	clickUnknown  clickResult = iota // No prompt is waiting for this id.
	clickNotOwner                    // Someone other than the invoking user clicked.
	clickAccepted                    // The click was handed to the waiting prompt.
)

// decision is the answer delivered to a waiting prompt.
type decision struct {
	confirmed   bool
	interaction *discordgo.Interaction
}

type pendingPrompt struct {
	userID string
	answer chan decision
}

// confirmations tracks open two-button prompts. Each prompt accepts exactly
// one click from the user who opened it.
type confirmations struct {
	mu      sync.Mutex
	pending map[string]*pendingPrompt
	timeout time.Duration
}

func newConfirmations(timeout time.Duration) *confirmations {
	if timeout <= 0 {
		timeout = DefaultConfirmTimeout
	}
	return &confirmations{
		pending: make(map[string]*pendingPrompt),
		timeout: timeout,
	}
}

// open registers a prompt for userID and returns its id.
func (c *confirmations) open(userID string) string {
	id := uuid.NewString()

	c.mu.Lock()
	c.pending[id] = &pendingPrompt{userID: userID, answer: make(chan decision, 1)}
	c.mu.Unlock()

	return id
}

// wait blocks until the prompt is answered, the timeout passes, or ctx is
// done. ok is false when no answer arrived. The prompt is closed on return.
func (c *confirmations) wait(ctx context.Context, id string) (decision, bool) {
	c.mu.Lock()
	p, found := c.pending[id]
	c.mu.Unlock()
	if !found {
		return decision{}, false
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case d := <-p.answer:
		return d, true
	case <-timer.C:
	case <-ctx.Done():
	}

	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()

	// A click may have landed between the timeout and the delete.
	select {
	case d := <-p.answer:
		return d, true
	default:
		return decision{}, false
	}
}

// click routes a button press identified by customID.
func (c *confirmations) click(customID, userID string, i *discordgo.Interaction) clickResult {
	var (
		id        string
		confirmed bool
	)
	switch {
	case strings.HasPrefix(customID, confirmPrefix):
		id, confirmed = strings.TrimPrefix(customID, confirmPrefix), true
	case strings.HasPrefix(customID, cancelPrefix):
		id = strings.TrimPrefix(customID, cancelPrefix)
	default:
		return clickUnknown
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.pending[id]
	if !ok {
		return clickUnknown
	}
	if p.userID != userID {
		return clickNotOwner
	}

	delete(c.pending, id)
	p.answer <- decision{confirmed: confirmed, interaction: i}
	return clickAccepted
}

// buttons returns the confirm and cancel row for prompt id.
func buttons(id, confirmLabel string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: confirmLabel, Style: discordgo.SuccessButton, CustomID: confirmPrefix + id},
			discordgo.Button{Label: "❌ Cancelar", Style: discordgo.DangerButton, CustomID: cancelPrefix + id},
		}},
	}
}
