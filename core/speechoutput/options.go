// Package speechoutput defines the contract of a speech-output device: an
// exclusive text-to-audio collaborator that renders one utterance at a time
// and reports its lifecycle through callbacks.
package speechoutput

// ErrorCodeInterrupted is reported for an utterance whose playback was
// force-stopped rather than played to completion.
const ErrorCodeInterrupted = "interrupted"

type SpeakOptions struct {
	PlaybackStartedCallback func()
	PlaybackEndedCallback   func()
	ErrorCallback           func(code string)
}

type SpeakOption func(*SpeakOptions)

func WithPlaybackStartedCallback(callback func()) SpeakOption {
	return func(o *SpeakOptions) {
		o.PlaybackStartedCallback = callback
	}
}

func WithPlaybackEndedCallback(callback func()) SpeakOption {
	return func(o *SpeakOptions) {
		o.PlaybackEndedCallback = callback
	}
}

func WithErrorCallback(callback func(code string)) SpeakOption {
	return func(o *SpeakOptions) {
		o.ErrorCallback = callback
	}
}
