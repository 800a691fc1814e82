package orchestration

import (
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/voxlabs/jarvis-core/core/responses"
)

// Turn is the record of one user-utterance/assistant-response cycle.
type Turn struct {
	ID          string
	Transcript  string
	Response    string
	Sources     []responses.GroundingChunk
	Interrupted bool
}

// activeTurn is the single live turn. Its Response and Sources are written by
// the turn pipeline only; everything else reads the finalised copy.
type activeTurn struct {
	Turn

	interrupted atomic.Bool
}

func newActiveTurn(transcript string) *activeTurn {
	return &activeTurn{Turn: Turn{ID: uuid.NewString(), Transcript: transcript}}
}

// Interrupt marks the turn so no further stream output is turned into
// observable effects. An in-flight stream read completes and is discarded.
func (t *activeTurn) Interrupt() {
	if t == nil {
		return
	}
	t.interrupted.Store(true)
}

func (t *activeTurn) IsInterrupted() bool {
	return t != nil && t.interrupted.Load()
}

// Finalised returns the immutable record of the turn.
func (t *activeTurn) Finalised() Turn {
	turn := t.Turn
	turn.Interrupted = t.interrupted.Load()
	return turn
}
