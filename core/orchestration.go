package orchestration

import (
	"context"
	"log"
	"sync"

	"github.com/voxlabs/jarvis-core/core/events"
	"github.com/voxlabs/jarvis-core/core/speechcapture"
)

// Orchestrator coordinates speech capture, the remote response stream and
// speech output into at most one conversational turn at a time.
type Orchestrator struct {
	conversation conversation
	status       *statusTracker
	loop         *runtimeLoop
	speechQueue  *speechQueue

	responseClient ResponseClient
	speechCapture  speechCaptureFacade
	speechOutput   SpeechOutput

	locale string

	orchestrateOptions OrchestrateOptions
	baseContext        context.Context

	closeOnce sync.Once
}

func NewOrchestrator(opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		status:      newStatusTracker(),
		loop:        newRuntimeLoop(),
		locale:      defaultLocale,
		baseContext: context.Background(),
	}

	for _, opt := range opts {
		opt(o)
	}

	o.speechQueue = newSpeechQueue(o.speechOutput, speechQueueCallbacks{
		onPlayingChanged: func(playing bool) {
			o.status.SetPlaying(playing)
		},
		onDevicePlaybackStarted: func(utteranceID string) {
			o.loop.Ingest(events.NewPlaybackStartedEvent(utteranceID))
		},
		onDevicePlaybackFinished: func(utteranceID string) {
			o.loop.Ingest(events.NewPlaybackFinishedEvent(utteranceID))
		},
		onDevicePlaybackFailed: func(utteranceID string, code string) {
			o.loop.Ingest(events.NewPlaybackFailedEvent(utteranceID, code))
		},
	})

	return o
}

// Orchestrate starts the runtime loop and registers per-run callbacks.
//
// Contract: call Orchestrate at most once per orchestrator instance. The
// orchestrator runs until ctx is cancelled or Close is called.
func (o *Orchestrator) Orchestrate(ctx context.Context, opts ...OrchestrateOption) {
	if !o.loop.CanIngest() {
		log.Println("Warning: orchestrator already closed, ignoring Orchestrate call")
		return
	}

	o.orchestrateOptions = OrchestrateOptions{}
	for _, opt := range opts {
		opt(&o.orchestrateOptions)
	}

	o.baseContext = ctx
	o.speechQueue.configure(ctx)
	o.status.SetOnChange(func(status Status) {
		if o.orchestrateOptions.statusChangedCallback != nil {
			o.orchestrateOptions.statusChangedCallback(status)
		}
	})

	if started := o.loop.Start(ctx, o.handleEvent); started {
		go func() {
			<-ctx.Done()
			o.Close()
		}()
	}
}

// Close stops the runtime loop and tears down any live turn. Safe to call
// multiple times.
func (o *Orchestrator) Close() {
	o.closeOnce.Do(func() {
		o.conversation.detachActiveTurn().Interrupt()
		o.speechQueue.Flush()
		if err := o.speechCapture.Release(); err != nil {
			log.Printf("Warning: %v on close\n", err)
		}

		o.loop.Stop()
		o.loop.AwaitDone()
	})
}

// Trigger registers the user's single interaction gesture. Depending on the
// state when it is processed it starts capture, stops capture, or interrupts
// the current turn.
func (o *Orchestrator) Trigger() bool {
	return o.loop.Ingest(events.NewInteractionTriggeredEvent())
}

// SendTranscript injects a final transcript directly, bypassing the capture
// device. Useful for typed input and tests.
func (o *Orchestrator) SendTranscript(transcript string) bool {
	return o.loop.Ingest(events.NewTranscriptionEvent(transcript))
}

// CancelTurn interrupts the current turn immediately: queued speech is
// flushed, the status drops, and remaining stream output is discarded.
func (o *Orchestrator) CancelTurn() {
	o.interruptActiveOutput()
}

// Status returns the current derived state.
func (o *Orchestrator) Status() Status {
	return o.status.Current()
}

// Conversation returns a deep copy of the finished turns so far.
func (o *Orchestrator) Conversation() []Turn {
	return o.conversation.Snapshot()
}

// StartListening acquires the capture device. It is rejected as a no-op when
// the orchestrator is not idle, since capture and output are exclusive.
func (o *Orchestrator) StartListening() error {
	if o.status.Current() != StatusIdle {
		return nil
	}
	return o.speechCapture.Request(o.baseContext, o.captureOptions()...)
}

// StopListening releases the capture device.
func (o *Orchestrator) StopListening() error {
	return o.speechCapture.Release()
}

// interruptActiveOutput stops all observable output of the current turn: the
// interrupt marker is set, the turn is detached so the next transcript can
// begin a new one, queued utterances are flushed and the status drops
// immediately. An in-flight stream read is not aborted; its result is
// discarded when the pipeline notices the marker.
func (o *Orchestrator) interruptActiveOutput() {
	o.conversation.detachActiveTurn().Interrupt()
	o.speechQueue.Flush()
	o.status.SetAwaitingResponse(false)

	if o.orchestrateOptions.cancellationCallback != nil {
		o.orchestrateOptions.cancellationCallback()
	}
}

func (o *Orchestrator) captureOptions() []speechcapture.CaptureOption {
	return []speechcapture.CaptureOption{
		speechcapture.WithLocale(o.locale),
		speechcapture.WithCaptureStartedCallback(func() {
			o.loop.Ingest(events.NewCaptureStartedEvent())
		}),
		speechcapture.WithCaptureEndedCallback(func() {
			o.loop.Ingest(events.NewCaptureEndedEvent())
		}),
		speechcapture.WithResultCallback(func(transcript string) {
			o.loop.Ingest(events.NewTranscriptionEvent(transcript))
		}),
		speechcapture.WithErrorCallback(func(code string) {
			o.loop.Ingest(events.NewCaptureFailedEvent(code))
		}),
	}
}
