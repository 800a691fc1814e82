package miniaudio

import (
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/voxlabs/jarvis-core/core/audio"
)

// playbackClient wraps a miniaudio playback device fed from an in-memory
// buffer. Positional marks fire their callback once all audio buffered
// before them has been handed to the device.
type playbackClient struct {
	audioContext *malgo.AllocatedContext
	device       *malgo.Device
	config       malgo.DeviceConfig

	buffered []byte
	marks    []playbackMark

	mu       sync.Mutex
	bufferMu sync.Mutex
}

type playbackMark struct {
	name     string
	position int
	callback func(string)
}

func (c *playbackClient) Init(audioContext *malgo.AllocatedContext) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sampleRate := uint32(audio.DefaultSampleRate)
	channels := 1
	format := malgo.FormatS16

	c.config = malgo.DefaultDeviceConfig(malgo.Playback)
	c.config.SampleRate = sampleRate
	c.config.Playback.Format = format
	c.config.Playback.Channels = uint32(channels)
	c.config.Alsa.NoMMap = 1
	c.config.PeriodSizeInFrames = sampleRate / 10 // ~100ms of audio
	c.config.Periods = 4

	c.audioContext = audioContext

	var err error
	if c.device, err = malgo.InitDevice(
		c.audioContext.Context,
		c.config,
		malgo.DeviceCallbacks{Data: c.feedDevice()},
	); err != nil {
		return fmt.Errorf("failed to initialize playback device: %w", err)
	}

	return nil
}

func (c *playbackClient) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device == nil {
		return fmt.Errorf("device not initialized")
	} else if c.device.IsStarted() {
		return nil
	}

	if err := c.device.Start(); err != nil {
		return fmt.Errorf("failed to start playback device: %w", err)
	}

	return nil
}

func (c *playbackClient) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device == nil {
		return fmt.Errorf("device not initialized")
	}

	if err := c.device.Stop(); err != nil {
		return fmt.Errorf("failed to stop playback device: %w", err)
	}

	c.ClearBuffer()
	return nil
}

func (c *playbackClient) SendAudio(audio []byte) error {
	if c.device == nil {
		return fmt.Errorf("device not initialized")
	} else if !c.device.IsStarted() {
		return fmt.Errorf("device not started")
	}

	c.bufferMu.Lock()
	defer c.bufferMu.Unlock()
	c.buffered = append(c.buffered, audio...)
	return nil
}

// ClearBuffer drops buffered audio and pending marks without firing them.
func (c *playbackClient) ClearBuffer() {
	c.bufferMu.Lock()
	defer c.bufferMu.Unlock()
	c.buffered = nil
	c.marks = nil
}

// Mark registers a callback to fire once everything buffered so far has been
// handed to the device.
func (c *playbackClient) Mark(mark string, callback func(string)) error {
	c.bufferMu.Lock()
	defer c.bufferMu.Unlock()
	c.marks = append(c.marks, playbackMark{
		name:     mark,
		position: len(c.buffered),
		callback: callback,
	})
	return nil
}

// AwaitMark blocks until all audio buffered so far has been handed to the
// device.
func (c *playbackClient) AwaitMark() error {
	wg := sync.WaitGroup{}
	wg.Add(1)
	if err := c.Mark("", func(string) { wg.Done() }); err != nil {
		return err
	}
	wg.Wait()
	return nil
}

func (c *playbackClient) Uninit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device != nil {
		c.device.Uninit()
		c.device = nil
	}

	return nil
}

func (c *playbackClient) feedDevice() malgo.DataProc {
	return func(pOutput, _ []byte, _ uint32) {
		c.bufferMu.Lock()
		n := copy(pOutput, c.buffered)
		if n >= len(c.buffered) {
			c.buffered = nil
		} else {
			c.buffered = c.buffered[n:]
		}
		passed := c.passedMarks(n)
		c.bufferMu.Unlock()

		if len(passed) > 0 {
			go func() {
				for _, mark := range passed {
					mark.callback(mark.name)
				}
			}()
		}
	}
}

// passedMarks shifts mark positions by the number of consumed bytes and
// returns the marks whose position has been reached. Caller holds bufferMu.
func (c *playbackClient) passedMarks(consumed int) []playbackMark {
	var passed []playbackMark
	remaining := c.marks[:0]
	for _, mark := range c.marks {
		if mark.position <= consumed {
			passed = append(passed, mark)
			continue
		}
		mark.position -= consumed
		remaining = append(remaining, mark)
	}
	c.marks = remaining
	return passed
}
