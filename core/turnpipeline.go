package orchestration

import (
	"context"
	"fmt"
	"slices"

	"github.com/voxlabs/jarvis-core/core/responses"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// turnPipeline consumes one response stream and turns it into accumulated
// response text, speakable utterances and a deduplicated source list.
type turnPipeline struct {
	client    ResponseClient
	queue     *speechQueue
	status    *statusTracker
	segmenter *sentenceSegmenter
	callbacks *OrchestrateOptions
}

func newTurnPipeline(client ResponseClient, queue *speechQueue, status *statusTracker, callbacks *OrchestrateOptions) *turnPipeline {
	return &turnPipeline{
		client:    client,
		queue:     queue,
		status:    status,
		segmenter: newSentenceSegmenter(),
		callbacks: callbacks,
	}
}

// Run drives the turn until the stream ends, fails, or the turn is
// interrupted. It always returns the finalised turn record; the error is
// non-nil only for transport-class failures on a turn the user did not
// interrupt.
func (p *turnPipeline) Run(ctx context.Context, turn *activeTurn, history []responses.Message) (Turn, error) {
	ctx, span := tracer.Start(ctx, "process turn")
	defer span.End()
	span.SetAttributes(attribute.String("turn.id", turn.ID))

	if p.client == nil {
		// No response client configured; the turn completes empty.
		p.status.SetAwaitingResponse(false)
		return turn.Finalised(), nil
	}

	var streamErr error
	stream := p.client.StreamResponse(turn.Transcript, history)

chunkLoop:
	for chunk, err := range stream.Chunks(ctx) {
		// The interrupt marker is checked between reads. A read already in
		// progress completes normally and its result is discarded here.
		if turn.IsInterrupted() {
			break chunkLoop
		}
		if err != nil {
			streamErr = err
			break chunkLoop
		}

		switch chunk := chunk.(type) {
		case responses.ContentChunk:
			text := chunk.Content()
			turn.Response += text
			if p.callbacks.responseCallback != nil {
				p.callbacks.responseCallback(text)
			}
			for _, sentence := range p.segmenter.Push(text) {
				p.queue.EnqueueUnless(turn.IsInterrupted, sentence)
			}

		case responses.SourcesChunk:
			turn.Sources = mergeSources(turn.Sources, chunk.Sources())
			if p.callbacks.sourcesUpdatedCallback != nil {
				p.callbacks.sourcesUpdatedCallback(slices.Clone(turn.Sources))
			}
		}
	}

	p.status.SetAwaitingResponse(false)

	if turn.IsInterrupted() {
		// Queued speech was already flushed by the interrupt; the residual
		// segmenter buffer is dropped with it.
		span.AddEvent("turn interrupted")
		return turn.Finalised(), nil
	}

	if streamErr != nil {
		err := fmt.Errorf("response stream failed: %w", streamErr)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return turn.Finalised(), err
	}

	if residue := p.segmenter.Flush(); residue != "" {
		p.queue.EnqueueUnless(turn.IsInterrupted, residue)
	}

	span.SetAttributes(
		attribute.Int("turn.response_length", len(turn.Response)),
		attribute.Int("turn.sources", len(turn.Sources)),
	)
	return turn.Finalised(), nil
}
