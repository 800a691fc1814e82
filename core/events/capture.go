package events

import "fmt"

const (
	KindCaptureStarted Kind = "capture.started"
	KindCaptureEnded   Kind = "capture.ended"
	KindCaptureFailed  Kind = "capture.failed"

	// KindTranscriptionReceived carries the single final transcript of a
	// capture cycle.
	KindTranscriptionReceived Kind = "capture.transcript_final"
)

type CaptureStartedEvent struct {
	Base
}

func NewCaptureStartedEvent() CaptureStartedEvent {
	return CaptureStartedEvent{Base: NewBase(KindCaptureStarted)}
}

func (e CaptureStartedEvent) String() string {
	return "capture started"
}

type CaptureEndedEvent struct {
	Base
}

func NewCaptureEndedEvent() CaptureEndedEvent {
	return CaptureEndedEvent{Base: NewBase(KindCaptureEnded)}
}

func (e CaptureEndedEvent) String() string {
	return "capture ended"
}

type CaptureFailedEvent struct {
	Base

	code string
}

func NewCaptureFailedEvent(code string) CaptureFailedEvent {
	return CaptureFailedEvent{Base: NewBase(KindCaptureFailed), code: code}
}

// Code is the device-reported error code, e.g. "no-speech" or "network".
func (e CaptureFailedEvent) Code() string {
	return e.code
}

func (e CaptureFailedEvent) String() string {
	return fmt.Sprintf("capture failed (%s)", e.code)
}

type TranscriptionEvent struct {
	Base

	transcript string
}

func NewTranscriptionEvent(transcript string) TranscriptionEvent {
	return TranscriptionEvent{Base: NewBase(KindTranscriptionReceived), transcript: transcript}
}

func (e TranscriptionEvent) Transcript() string {
	return e.transcript
}

func (e TranscriptionEvent) String() string {
	return fmt.Sprintf("transcription received (%q)", e.transcript)
}
