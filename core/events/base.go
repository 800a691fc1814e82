package events

import "time"

// Kind discriminates event types without reflection.
type Kind string

// Event is the common surface of everything that can travel through the
// runtime loop's queue.
type Event interface {
	Kind() Kind
	Timestamp() time.Time
}

// Base carries the fields shared by all events. Embed it and construct it
// with NewBase.
type Base struct {
	kind      Kind
	timestamp time.Time
}

func NewBase(kind Kind) Base {
	return Base{kind: kind, timestamp: time.Now()}
}

func (b Base) Kind() Kind {
	return b.kind
}

func (b Base) Timestamp() time.Time {
	return b.timestamp
}
