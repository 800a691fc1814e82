package events

import "fmt"

const (
	KindPlaybackStarted  Kind = "playback.started"
	KindPlaybackFinished Kind = "playback.finished"
	KindPlaybackFailed   Kind = "playback.failed"
)

type PlaybackStartedEvent struct {
	Base

	utteranceID string
}

func NewPlaybackStartedEvent(utteranceID string) PlaybackStartedEvent {
	return PlaybackStartedEvent{Base: NewBase(KindPlaybackStarted), utteranceID: utteranceID}
}

func (e PlaybackStartedEvent) UtteranceID() string {
	return e.utteranceID
}

func (e PlaybackStartedEvent) String() string {
	return fmt.Sprintf("playback started (%s)", e.utteranceID)
}

type PlaybackFinishedEvent struct {
	Base

	utteranceID string
}

func NewPlaybackFinishedEvent(utteranceID string) PlaybackFinishedEvent {
	return PlaybackFinishedEvent{Base: NewBase(KindPlaybackFinished), utteranceID: utteranceID}
}

func (e PlaybackFinishedEvent) UtteranceID() string {
	return e.utteranceID
}

func (e PlaybackFinishedEvent) String() string {
	return fmt.Sprintf("playback finished (%s)", e.utteranceID)
}

type PlaybackFailedEvent struct {
	Base

	utteranceID string
	code        string
}

func NewPlaybackFailedEvent(utteranceID string, code string) PlaybackFailedEvent {
	return PlaybackFailedEvent{Base: NewBase(KindPlaybackFailed), utteranceID: utteranceID, code: code}
}

func (e PlaybackFailedEvent) UtteranceID() string {
	return e.utteranceID
}

// Code is the device-reported failure code. "interrupted" is raised when
// playback is force-stopped.
func (e PlaybackFailedEvent) Code() string {
	return e.code
}

func (e PlaybackFailedEvent) String() string {
	return fmt.Sprintf("playback failed (%s: %s)", e.utteranceID, e.code)
}
