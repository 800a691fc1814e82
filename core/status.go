package orchestration

import (
	"sync"
	"sync/atomic"
)

// Status is the externally visible orchestrator state.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusListening Status = "listening"
	StatusThinking  Status = "thinking"
	StatusSpeaking  Status = "speaking"
)

// statusTracker derives Status from three independent device signals instead
// of storing it directly. An open response stream takes precedence over
// active playback, and playback over capture, so the displayed state can
// never contradict what the devices are doing.
type statusTracker struct {
	capturing        atomic.Bool
	playing          atomic.Bool
	awaitingResponse atomic.Bool

	mu       sync.Mutex
	last     Status
	onChange func(Status)
}

func newStatusTracker() *statusTracker {
	return &statusTracker{
		last:     StatusIdle,
		onChange: func(Status) {},
	}
}

func (s *statusTracker) SetOnChange(onChange func(Status)) {
	if s == nil || onChange == nil {
		return
	}

	s.mu.Lock()
	s.onChange = onChange
	s.mu.Unlock()
}

func (s *statusTracker) Current() Status {
	switch {
	case s.awaitingResponse.Load():
		return StatusThinking
	case s.playing.Load():
		return StatusSpeaking
	case s.capturing.Load():
		return StatusListening
	}
	return StatusIdle
}

func (s *statusTracker) SetCapturing(capturing bool) {
	s.capturing.Store(capturing)
	s.publish()
}

func (s *statusTracker) SetPlaying(playing bool) {
	s.playing.Store(playing)
	s.publish()
}

func (s *statusTracker) SetAwaitingResponse(awaiting bool) {
	s.awaitingResponse.Store(awaiting)
	s.publish()
}

func (s *statusTracker) publish() {
	s.mu.Lock()
	current := s.Current()
	if current == s.last {
		s.mu.Unlock()
		return
	}
	s.last = current
	onChange := s.onChange
	s.mu.Unlock()

	onChange(current)
}
