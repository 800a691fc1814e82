package orchestration

import (
	"context"

	"github.com/voxlabs/jarvis-core/core/responses"
	"github.com/voxlabs/jarvis-core/core/speechcapture"
	"github.com/voxlabs/jarvis-core/core/speechoutput"
)

// ResponseClient opens a response stream for one turn against the remote
// endpoint.
type ResponseClient interface {
	StreamResponse(message string, history []responses.Message) responses.Stream
}

// SpeechCapture is the process-wide exclusive capture device. A capture
// cycle is single-shot: one final transcript (at most) per Start/Stop pair.
type SpeechCapture interface {
	Start(ctx context.Context, opts ...speechcapture.CaptureOption) error
	Stop() error
}

// SpeechOutput is the process-wide exclusive speech-output device.
type SpeechOutput interface {
	Speak(ctx context.Context, text string, opts ...speechoutput.SpeakOption) error
	StopAll()
}

type OrchestratorOption func(*Orchestrator)

func WithResponseClient(client ResponseClient) OrchestratorOption {
	return func(o *Orchestrator) {
		o.responseClient = client
	}
}

func WithSpeechCapture(client SpeechCapture) OrchestratorOption {
	return func(o *Orchestrator) {
		o.speechCapture.set(client)
	}
}

func WithSpeechOutput(client SpeechOutput) OrchestratorOption {
	return func(o *Orchestrator) {
		o.speechOutput = client
	}
}

// WithLocale overrides the recognition language handed to the capture
// device.
func WithLocale(locale string) OrchestratorOption {
	return func(o *Orchestrator) {
		if locale != "" {
			o.locale = locale
		}
	}
}

type OrchestrateOptions struct {
	statusChangedCallback  func(status Status)
	transcriptionCallback  func(transcript string)
	responseCallback       func(response string)
	responseEndedCallback  func()
	sourcesUpdatedCallback func(sources []responses.GroundingChunk)
	cancellationCallback   func()
	errorCallback          func(message string)
}

type OrchestrateOption func(*OrchestrateOptions)

func WithStatusChangedCallback(callback func(status Status)) OrchestrateOption {
	return func(o *OrchestrateOptions) {
		o.statusChangedCallback = callback
	}
}

func WithTranscriptionCallback(callback func(transcript string)) OrchestrateOption {
	return func(o *OrchestrateOptions) {
		o.transcriptionCallback = callback
	}
}

// WithResponseCallback registers a callback invoked with each incremental
// piece of response text as it arrives.
func WithResponseCallback(callback func(response string)) OrchestrateOption {
	return func(o *OrchestrateOptions) {
		o.responseCallback = callback
	}
}

func WithResponseEndedCallback(callback func()) OrchestrateOption {
	return func(o *OrchestrateOptions) {
		o.responseEndedCallback = callback
	}
}

// WithSourcesUpdatedCallback registers a callback invoked with the full
// deduplicated source list every time it changes.
func WithSourcesUpdatedCallback(callback func(sources []responses.GroundingChunk)) OrchestrateOption {
	return func(o *OrchestrateOptions) {
		o.sourcesUpdatedCallback = callback
	}
}

func WithCancellationCallback(callback func()) OrchestrateOption {
	return func(o *OrchestrateOptions) {
		o.cancellationCallback = callback
	}
}

// WithErrorCallback registers a callback for banner-level error messages,
// e.g. a failed response stream.
func WithErrorCallback(callback func(message string)) OrchestrateOption {
	return func(o *OrchestrateOptions) {
		o.errorCallback = callback
	}
}
