package events

import (
	"testing"
	"time"
)

func TestEventsCarryTheirKind(t *testing.T) {
	cases := []struct {
		event    Event
		expected Kind
	}{
		{NewInteractionTriggeredEvent(), KindInteractionTriggered},
		{NewCaptureStartedEvent(), KindCaptureStarted},
		{NewCaptureEndedEvent(), KindCaptureEnded},
		{NewCaptureFailedEvent("network"), KindCaptureFailed},
		{NewTranscriptionEvent("Olá"), KindTranscriptionReceived},
		{NewPlaybackStartedEvent("u-1"), KindPlaybackStarted},
		{NewPlaybackFinishedEvent("u-1"), KindPlaybackFinished},
		{NewPlaybackFailedEvent("u-1", "interrupted"), KindPlaybackFailed},
	}

	for _, c := range cases {
		if got := c.event.Kind(); got != c.expected {
			t.Errorf("expected kind %q, got %q", c.expected, got)
		}
		if c.event.Timestamp().IsZero() || time.Since(c.event.Timestamp()) > time.Minute {
			t.Errorf("expected a fresh timestamp on %q", c.expected)
		}
	}
}

func TestEventPayloadAccessors(t *testing.T) {
	if got := NewTranscriptionEvent("Que horas são").Transcript(); got != "Que horas são" {
		t.Errorf("unexpected transcript %q", got)
	}
	if got := NewCaptureFailedEvent("no-speech").Code(); got != "no-speech" {
		t.Errorf("unexpected capture failure code %q", got)
	}

	failed := NewPlaybackFailedEvent("u-7", "interrupted")
	if failed.UtteranceID() != "u-7" || failed.Code() != "interrupted" {
		t.Errorf("unexpected playback failure payload %q %q", failed.UtteranceID(), failed.Code())
	}
}
