package orchestration

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/voxlabs/jarvis-core/core/responses"
)

// ErrActiveTurnAlreadySet is returned when a new turn is requested while
// another one is still live. At most one turn can be active.
var ErrActiveTurnAlreadySet = errors.New("active turn already set")

// conversation holds finished turns for the lifetime of the process. Nothing
// is persisted; history exists only to be fed back to the remote endpoint as
// context for subsequent turns.
type conversation struct {
	mu sync.RWMutex

	turns      []Turn
	activeTurn *activeTurn
}

// beginTurn registers the single live turn.
func (c *conversation) beginTurn(transcript string) (*activeTurn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.activeTurn != nil {
		return nil, ErrActiveTurnAlreadySet
	}

	c.activeTurn = newActiveTurn(transcript)
	return c.activeTurn, nil
}

func (c *conversation) active() *activeTurn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.activeTurn
}

// detachActiveTurn removes the live turn so a new one is admissible
// immediately, without waiting for the old turn's pipeline to wind down. The
// detached turn's record is still appended through finaliseTurn once its
// in-flight stream read completes.
func (c *conversation) detachActiveTurn() *activeTurn {
	c.mu.Lock()
	defer c.mu.Unlock()

	turn := c.activeTurn
	c.activeTurn = nil
	return turn
}

// finaliseTurn moves the live turn into stored history. Finalising a turn
// that is no longer active only appends the record.
func (c *conversation) finaliseTurn(turn Turn) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.turns = append(c.turns, turn)
	if c.activeTurn != nil && c.activeTurn.ID == turn.ID {
		c.activeTurn = nil
	}
}

// appendModelNotice stores a model-only entry, such as the apology produced
// when a response stream fails.
func (c *conversation) appendModelNotice(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.turns = append(c.turns, Turn{ID: uuid.NewString(), Response: text})
}

// History flattens stored turns into the message list sent to the remote
// endpoint. Entries with empty text are omitted.
func (c *conversation) History() []responses.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()

	messages := make([]responses.Message, 0, len(c.turns)*2)
	for _, turn := range c.turns {
		if turn.Transcript != "" {
			messages = append(messages, responses.Message{Role: responses.RoleUser, Text: turn.Transcript})
		}
		if turn.Response != "" {
			messages = append(messages, responses.Message{Role: responses.RoleModel, Text: turn.Response})
		}
	}
	return messages
}

// Snapshot returns a deep point-in-time copy of the stored turns.
func (c *conversation) Snapshot() []Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var turns []Turn
	if err := copier.CopyWithOption(&turns, &c.turns, copier.Option{DeepCopy: true}); err != nil {
		logger.Warn("failed to deep-copy conversation history", "error", err)
		turns = append([]Turn(nil), c.turns...)
	}
	return turns
}
