package orchestration

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/voxlabs/jarvis-core/core/speechoutput"
)

// utterance is one sentence-sized unit handed to the speech-output device.
type utterance struct {
	id   string
	seq  uint64
	text string
}

// speechQueueCallbacks route queue activity back to the orchestrator. The
// device lifecycle hooks are expected to re-enter the queue through the
// runtime loop, never synchronously.
type speechQueueCallbacks struct {
	onPlayingChanged func(playing bool)

	onDevicePlaybackStarted  func(utteranceID string)
	onDevicePlaybackFinished func(utteranceID string)
	onDevicePlaybackFailed   func(utteranceID string, code string)
}

func (c *speechQueueCallbacks) defaults() *speechQueueCallbacks {
	c.onPlayingChanged = func(bool) {}
	c.onDevicePlaybackStarted = func(string) {}
	c.onDevicePlaybackFinished = func(string) {}
	c.onDevicePlaybackFailed = func(string, string) {}
	return c
}

func (c *speechQueueCallbacks) with(callbacks speechQueueCallbacks) *speechQueueCallbacks {
	if callbacks.onPlayingChanged != nil {
		c.onPlayingChanged = callbacks.onPlayingChanged
	}
	if callbacks.onDevicePlaybackStarted != nil {
		c.onDevicePlaybackStarted = callbacks.onDevicePlaybackStarted
	}
	if callbacks.onDevicePlaybackFinished != nil {
		c.onDevicePlaybackFinished = callbacks.onDevicePlaybackFinished
	}
	if callbacks.onDevicePlaybackFailed != nil {
		c.onDevicePlaybackFailed = callbacks.onDevicePlaybackFailed
	}
	return c
}

// speechQueue serializes utterances onto the exclusive speech-output device.
// Exactly one utterance is rendered at a time, in the order they were
// enqueued; sequence numbers are assigned at enqueue time and never reused.
type speechQueue struct {
	mu sync.Mutex

	output  SpeechOutput
	baseCtx context.Context

	queue    []utterance
	nextSeq  uint64
	playing  bool
	current  *utterance
	flushing bool

	callbacks speechQueueCallbacks
}

func newSpeechQueue(output SpeechOutput, callbacks speechQueueCallbacks) *speechQueue {
	return &speechQueue{
		output:    output,
		baseCtx:   context.Background(),
		callbacks: *(new(speechQueueCallbacks).defaults().with(callbacks)),
	}
}

func (q *speechQueue) configure(ctx context.Context) {
	q.mu.Lock()
	q.baseCtx = ctx
	q.mu.Unlock()
}

// Enqueue appends an utterance and starts playback immediately when the
// device is idle. Blank utterances are dropped.
func (q *speechQueue) Enqueue(text string) {
	q.enqueue(text, nil)
}

// EnqueueUnless appends the utterance unless cancelled reports true once the
// queue lock is held. The check is ordered against a concurrent Flush, so an
// utterance whose producer was interrupted can never land after the flush
// that was meant to silence it.
func (q *speechQueue) EnqueueUnless(cancelled func() bool, text string) {
	q.enqueue(text, cancelled)
}

func (q *speechQueue) enqueue(text string, cancelled func() bool) {
	if strings.TrimSpace(text) == "" {
		return
	}

	q.mu.Lock()
	if cancelled != nil && cancelled() {
		q.mu.Unlock()
		return
	}
	q.queue = append(q.queue, utterance{id: uuid.NewString(), seq: q.nextSeq, text: text})
	q.nextSeq++
	q.flushing = false
	q.mu.Unlock()

	q.kick()
}

// kick hands the head of the queue to the device whenever the device is
// idle. The mutex is released before the device or any callback is touched.
func (q *speechQueue) kick() {
	q.mu.Lock()
	if q.current != nil {
		q.mu.Unlock()
		return
	}

	if len(q.queue) == 0 {
		wasPlaying := q.playing
		q.playing = false
		q.mu.Unlock()
		if wasPlaying {
			q.callbacks.onPlayingChanged(false)
		}
		return
	}

	next := q.queue[0]
	q.queue = q.queue[1:]
	q.current = &next
	wasPlaying := q.playing
	q.playing = true
	ctx := q.baseCtx
	output := q.output
	q.mu.Unlock()

	if !wasPlaying {
		q.callbacks.onPlayingChanged(true)
	}

	if output == nil {
		// Without an output device the utterance completes immediately so the
		// turn keeps progressing.
		q.OnPlaybackFinished(next.id)
		return
	}

	err := output.Speak(ctx, next.text,
		speechoutput.WithPlaybackStartedCallback(func() {
			q.callbacks.onDevicePlaybackStarted(next.id)
		}),
		speechoutput.WithPlaybackEndedCallback(func() {
			q.callbacks.onDevicePlaybackFinished(next.id)
		}),
		speechoutput.WithErrorCallback(func(code string) {
			q.callbacks.onDevicePlaybackFailed(next.id, code)
		}),
	)
	if err != nil {
		q.callbacks.onDevicePlaybackFailed(next.id, err.Error())
	}
}

// OnPlaybackFinished advances the queue after the device reports natural
// completion of the current utterance. Reports for utterances that are no
// longer current are ignored.
func (q *speechQueue) OnPlaybackFinished(utteranceID string) {
	q.mu.Lock()
	if q.current == nil || q.current.id != utteranceID {
		q.mu.Unlock()
		return
	}
	q.current = nil
	q.mu.Unlock()

	q.kick()
}

// OnPlaybackError treats a device failure like completion so the queue keeps
// draining. The error raised by a flush-forced stop is suppressed entirely;
// it is a consequence of an intentional action, not a failure.
func (q *speechQueue) OnPlaybackError(utteranceID string, code string) {
	q.mu.Lock()
	if q.current == nil || q.current.id != utteranceID {
		suppress := q.flushing
		q.flushing = false
		q.mu.Unlock()
		if !suppress {
			logger.Warn("playback error for inactive utterance", "code", code)
		}
		return
	}
	q.current = nil
	q.mu.Unlock()

	logger.Warn("speech playback error", "code", code)
	q.kick()
}

// Flush drops every queued utterance and requests an immediate stop of any
// in-progress playback. The queue reports not-playing without waiting for the
// device to confirm the stop.
func (q *speechQueue) Flush() {
	q.mu.Lock()
	q.queue = nil
	if q.current != nil {
		q.flushing = true
		q.current = nil
	}
	wasPlaying := q.playing
	q.playing = false
	output := q.output
	q.mu.Unlock()

	if output != nil {
		output.StopAll()
	}
	if wasPlaying {
		q.callbacks.onPlayingChanged(false)
	}
}

// Pending reports how many utterances wait behind the one being rendered.
func (q *speechQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queue)
}

func (q *speechQueue) IsPlaying() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.playing
}
