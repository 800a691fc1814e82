package orchestration

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/voxlabs/jarvis-core/core/speechoutput"
)

// fakeOutputDevice records spoken text and lets tests drive utterance
// completion through the captured callbacks.
type fakeOutputDevice struct {
	mu      sync.Mutex
	spoken  []string
	pending []speechoutput.SpeakOptions

	stopAllCalls atomic.Int32
}

func (f *fakeOutputDevice) Speak(_ context.Context, text string, opts ...speechoutput.SpeakOption) error {
	options := speechoutput.SpeakOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.spoken = append(f.spoken, text)
	f.pending = append(f.pending, options)
	return nil
}

func (f *fakeOutputDevice) StopAll() {
	f.stopAllCalls.Add(1)
}

func (f *fakeOutputDevice) finishOldest() speechoutput.SpeakOptions {
	f.mu.Lock()
	options := f.pending[0]
	f.pending = f.pending[1:]
	f.mu.Unlock()
	return options
}

func (f *fakeOutputDevice) spokenTexts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.spoken...)
}

// newTestQueue wires the queue's device hooks straight back into the queue,
// standing in for the runtime loop.
func newTestQueue(output SpeechOutput) (*speechQueue, *atomic.Int32) {
	playingChanges := &atomic.Int32{}
	var queue *speechQueue
	queue = newSpeechQueue(output, speechQueueCallbacks{
		onPlayingChanged: func(bool) { playingChanges.Add(1) },
		onDevicePlaybackFinished: func(utteranceID string) {
			queue.OnPlaybackFinished(utteranceID)
		},
		onDevicePlaybackFailed: func(utteranceID string, code string) {
			queue.OnPlaybackError(utteranceID, code)
		},
	})
	return queue, playingChanges
}

func TestSpeechQueuePlaysUtterancesInOrder(t *testing.T) {
	output := &fakeOutputDevice{}
	queue, _ := newTestQueue(output)

	queue.Enqueue("Primeira.")
	queue.Enqueue("Segunda.")
	queue.Enqueue("Terceira.")

	if got := output.spokenTexts(); len(got) != 1 || got[0] != "Primeira." {
		t.Fatalf("expected only the head to be playing, got %v", got)
	}
	if pending := queue.Pending(); pending != 2 {
		t.Fatalf("expected 2 pending utterances, got %d", pending)
	}

	options := output.finishOldest()
	options.PlaybackEndedCallback()
	options = output.finishOldest()
	options.PlaybackEndedCallback()
	options = output.finishOldest()
	options.PlaybackEndedCallback()

	expected := []string{"Primeira.", "Segunda.", "Terceira."}
	got := output.spokenTexts()
	if len(got) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Fatalf("expected %v, got %v", expected, got)
		}
	}

	if queue.IsPlaying() {
		t.Fatal("expected queue to be idle after draining")
	}
}

func TestSpeechQueueDropsBlankUtterances(t *testing.T) {
	output := &fakeOutputDevice{}
	queue, _ := newTestQueue(output)

	queue.Enqueue("   ")
	queue.Enqueue("")

	if got := output.spokenTexts(); len(got) != 0 {
		t.Fatalf("expected nothing spoken, got %v", got)
	}
	if queue.IsPlaying() {
		t.Fatal("expected queue to stay idle")
	}
}

func TestSpeechQueueTreatsPlaybackErrorAsCompletion(t *testing.T) {
	output := &fakeOutputDevice{}
	queue, _ := newTestQueue(output)

	queue.Enqueue("Primeira.")
	queue.Enqueue("Segunda.")

	options := output.finishOldest()
	options.ErrorCallback("synthesis-failed")

	if got := output.spokenTexts(); len(got) != 2 || got[1] != "Segunda." {
		t.Fatalf("expected queue to keep draining after error, got %v", got)
	}
}

func TestSpeechQueueFlushEmptiesImmediatelyAndStopsDevice(t *testing.T) {
	output := &fakeOutputDevice{}
	queue, _ := newTestQueue(output)

	queue.Enqueue("Primeira.")
	queue.Enqueue("Segunda.")
	queue.Flush()

	if pending := queue.Pending(); pending != 0 {
		t.Fatalf("expected empty queue after flush, got %d pending", pending)
	}
	if queue.IsPlaying() {
		t.Fatal("expected queue to report not playing immediately after flush")
	}
	if calls := output.stopAllCalls.Load(); calls != 1 {
		t.Fatalf("expected one StopAll call, got %d", calls)
	}

	// The forced stop surfaces as a device error for the flushed utterance;
	// it must be swallowed and must not restart playback.
	options := output.finishOldest()
	options.ErrorCallback(speechoutput.ErrorCodeInterrupted)

	if got := output.spokenTexts(); len(got) != 1 {
		t.Fatalf("expected no further playback after flush, got %v", got)
	}
}

func TestSpeechQueueEnqueueUnlessHonoursCancellationUnderLock(t *testing.T) {
	output := &fakeOutputDevice{}
	queue, _ := newTestQueue(output)

	cancelled := false
	queue.EnqueueUnless(func() bool { return cancelled }, "Primeira.")

	// A producer that checked its cancellation state before the flush must
	// not be able to restart playback afterwards.
	queue.Flush()
	cancelled = true
	queue.EnqueueUnless(func() bool { return cancelled }, "Segunda.")

	if got := output.spokenTexts(); len(got) != 1 || got[0] != "Primeira." {
		t.Fatalf("expected no playback after cancellation, got %v", got)
	}
	if pending := queue.Pending(); pending != 0 {
		t.Fatalf("expected empty queue, got %d pending", pending)
	}
	if queue.IsPlaying() {
		t.Fatal("expected queue to stay stopped after cancellation")
	}
}

func TestSpeechQueueWithoutDeviceCompletesImmediately(t *testing.T) {
	queue, _ := newTestQueue(nil)

	queue.Enqueue("Primeira.")
	queue.Enqueue("Segunda.")

	if queue.IsPlaying() {
		t.Fatal("expected queue to drain synchronously without a device")
	}
	if pending := queue.Pending(); pending != 0 {
		t.Fatalf("expected empty queue, got %d pending", pending)
	}
}
