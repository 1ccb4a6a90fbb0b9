package consequence

import (
	"fmt"

	"github.com/chronicle-rpg/chronicle/internal/state"
)

// applySendMessage queues an out-of-band message for delivery. Handlers never
// talk to the message bus directly; the update phase drains the queue and
// broadcasts with the right visibility once the batch has been applied.
func applySendMessage(c Consequence, gs *state.GameState) (string, error) {
	content := c.MessageContent
	if content == "" {
		if s, ok := asString(c.Value); ok {
			content = s
		}
	}
	if content == "" {
		return "", fmt.Errorf("SEND_MESSAGE has no content")
	}
	gs.PendingMessages = append(gs.PendingMessages, state.PendingMessage{
		Content:   content,
		Recipient: c.MessageRecipient,
	})
	if c.MessageRecipient != "" {
		return fmt.Sprintf("message queued for %s", c.MessageRecipient), nil
	}
	return "message queued for all participants", nil
}
