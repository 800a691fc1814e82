package orchestration

import (
	"context"
	"fmt"
	"strings"

	"github.com/voxlabs/jarvis-core/core/events"
	"github.com/voxlabs/jarvis-core/core/responses"
	"go.opentelemetry.io/otel/trace"
)

const kindTurnFinished events.Kind = "turn_state.finished"

// turnFinishedEvent is posted by the pipeline goroutine when a turn's stream
// has been fully consumed, failed, or been abandoned after an interrupt.
type turnFinishedEvent struct {
	events.Base

	turn Turn
	err  error
}

func newTurnFinishedEvent(turn Turn, err error) turnFinishedEvent {
	return turnFinishedEvent{Base: events.NewBase(kindTurnFinished), turn: turn, err: err}
}

func (e turnFinishedEvent) String() string {
	return fmt.Sprintf("turn finished (%s)", e.turn.ID)
}

// handleEvent is the runtime loop's dispatch. It runs on the single consumer
// goroutine, so per-event handling must not block on device or network I/O.
func (o *Orchestrator) handleEvent(ctx context.Context, event events.Event) {
	switch event := event.(type) {
	case events.InteractionTriggeredEvent:
		o.handleInteraction(ctx)

	case events.CaptureStartedEvent:
		o.status.SetCapturing(true)

	case events.CaptureEndedEvent:
		o.status.SetCapturing(false)

	case events.CaptureFailedEvent:
		// Capture errors never produce an utterance; capture just winds down.
		logger.Warn("speech capture error", "code", event.Code())
		if err := o.speechCapture.Release(); err != nil {
			logger.Warn("failed to release capture device", "error", err)
		}
		o.status.SetCapturing(false)

	case events.TranscriptionEvent:
		o.handleTranscription(ctx, event.Transcript())

	case events.PlaybackStartedEvent:
		// Playback progress is tracked by the queue; nothing to do here.

	case events.PlaybackFinishedEvent:
		o.speechQueue.OnPlaybackFinished(event.UtteranceID())

	case events.PlaybackFailedEvent:
		o.speechQueue.OnPlaybackError(event.UtteranceID(), event.Code())

	case turnFinishedEvent:
		o.finishTurn(event)

	default:
		span := trace.SpanFromContext(ctx)
		span.RecordError(fmt.Errorf("skipped event of unknown type: %T", event))
	}
}

func (o *Orchestrator) handleInteraction(ctx context.Context) {
	switch o.status.Current() {
	case StatusThinking, StatusSpeaking:
		o.interruptActiveOutput()

	case StatusListening:
		if err := o.speechCapture.Release(); err != nil {
			logger.Warn("failed to stop speech capture", "error", err)
		}

	default:
		if err := o.speechCapture.Request(ctx, o.captureOptions()...); err != nil {
			logger.Warn("failed to start speech capture", "error", err)
		}
	}
}

func (o *Orchestrator) handleTranscription(ctx context.Context, transcript string) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return
	}

	// Capture is wound down before the response stream is opened; the two
	// devices are never active at the same time.
	if err := o.speechCapture.Release(); err != nil {
		logger.Warn("failed to release capture device", "error", err)
	}
	o.status.SetCapturing(false)

	if o.orchestrateOptions.transcriptionCallback != nil {
		o.orchestrateOptions.transcriptionCallback(transcript)
	}

	turn, err := o.conversation.beginTurn(transcript)
	if err != nil {
		logger.Warn("dropping transcript while a turn is live", "transcript", transcript)
		return
	}

	history := o.conversation.History()
	o.status.SetAwaitingResponse(true)

	pipeline := newTurnPipeline(o.responseClient, o.speechQueue, o.status, &o.orchestrateOptions)
	go func() {
		finalTurn, runErr := runPipelineSafely(o.baseContext, pipeline, turn, history)
		o.loop.Ingest(newTurnFinishedEvent(finalTurn, runErr))
	}()
}

// runPipelineSafely shields the runtime loop from a panicking pipeline; the
// turn is finalised either way.
func runPipelineSafely(ctx context.Context, pipeline *turnPipeline, turn *activeTurn, history []responses.Message) (finalTurn Turn, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			finalTurn = turn.Finalised()
			err = fmt.Errorf("turn pipeline panicked: %v", recovered)
		}
	}()

	return pipeline.Run(ctx, turn, history)
}

func (o *Orchestrator) finishTurn(event turnFinishedEvent) {
	o.conversation.finaliseTurn(event.turn)

	if event.err != nil && !event.turn.Interrupted {
		// Transport-class failure: recovered locally with a fixed spoken
		// apology and a banner-level error message. The turn itself is over.
		o.conversation.appendModelNotice(apologyText)
		o.speechQueue.Enqueue(apologyText)
		if o.orchestrateOptions.errorCallback != nil {
			o.orchestrateOptions.errorCallback(errorBannerPrefix + event.err.Error())
		}
	}

	if o.orchestrateOptions.responseEndedCallback != nil {
		o.orchestrateOptions.responseEndedCallback()
	}
}
