package orchestration

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/voxlabs/jarvis-core/core/events"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const runtimeEventQueueCapacity = 32

type queuedEvent struct {
	event    events.Event
	queuedAt time.Time
}

// runtimeLoop is the single consumer that serializes device callbacks, user
// interactions and stream lifecycle notifications into one control flow. All
// turn-state decisions happen on this loop; producers only enqueue.
type runtimeLoop struct {
	queue   chan queuedEvent
	closeCh chan struct{}
	done    chan struct{}

	startOnce sync.Once
	endOnce   sync.Once

	started atomic.Bool
}

func newRuntimeLoop() *runtimeLoop {
	return &runtimeLoop{
		queue:   make(chan queuedEvent, runtimeEventQueueCapacity),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func (loop *runtimeLoop) CanIngest() bool {
	if loop == nil {
		return false
	}

	select {
	case <-loop.closeCh:
		return false
	default:
		return true
	}
}

func (loop *runtimeLoop) Start(baseCtx context.Context, handle func(context.Context, events.Event)) (started bool) {
	if loop == nil || handle == nil || !loop.CanIngest() {
		return false
	}

	loop.startOnce.Do(func() {
		if !loop.CanIngest() {
			return
		}

		started = true
		loop.started.Store(true)
		go func() {
			defer close(loop.done)

			for {
				select {
				case <-loop.closeCh:
					return
				case queuedEvent := <-loop.queue:
					if !loop.CanIngest() {
						return
					}
					loop.processQueuedEvent(baseCtx, queuedEvent, handle)
				}
			}
		}()
	})

	return started
}

func (loop *runtimeLoop) Stop() {
	if loop == nil {
		return
	}

	loop.endOnce.Do(func() { close(loop.closeCh) })
}

func (loop *runtimeLoop) AwaitDone() {
	if loop == nil {
		return
	}

	if loop.started.Load() {
		<-loop.done
	}
}

// Ingest enqueues an event for the consumer goroutine. It reports false once
// the loop has been stopped.
func (loop *runtimeLoop) Ingest(event events.Event) bool {
	if loop == nil || !loop.CanIngest() {
		return false
	}

	queueItem := queuedEvent{event: event, queuedAt: time.Now()}
	select {
	case <-loop.closeCh:
		return false
	case loop.queue <- queueItem:
		return true
	}
}

func (loop *runtimeLoop) processQueuedEvent(
	baseCtx context.Context,
	queuedEvent queuedEvent,
	handle func(context.Context, events.Event),
) {
	ctx, span := tracer.Start(baseCtx, "process event")
	defer span.End()

	queuedTime := time.Since(queuedEvent.queuedAt).Seconds()
	span.AddEvent("taken out of queue", trace.WithAttributes(attribute.Float64("event.queued_time", queuedTime)))
	span.SetAttributes(
		attribute.String("event.kind", string(queuedEvent.event.Kind())),
		attribute.Float64("event.queued_time", queuedTime),
	)

	handle(ctx, queuedEvent.event)
}
