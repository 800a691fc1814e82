// Package portaudio provides an alternative microphone capture backend for
// systems where miniaudio is unavailable.
package portaudio

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/voxlabs/jarvis-core/core/audio"
)

// Client reads 16kHz mono linear16 frames from the default input device in a
// blocking loop and forwards them to a listener callback.
type Client struct {
	bufferSize int
	stream     *portaudio.Stream
	in         []int16

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewClient(bufferSize int) (*Client, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	in := make([]int16, bufferSize)
	stream, err := portaudio.OpenDefaultStream(1, 0, audio.DefaultSampleRate, bufferSize, in)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("failed to open portaudio stream: %w", err)
	}

	return &Client{
		bufferSize: bufferSize,
		stream:     stream,
		in:         in,
	}, nil
}

// StartCapture starts the blocking read loop in a background goroutine and
// returns. Frames are delivered until StopCapture is called or ctx ends.
func (c *Client) StartCapture(ctx context.Context, onAudio func(audio []byte)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return nil
	}

	if err := c.stream.Start(); err != nil {
		return fmt.Errorf("failed to start portaudio stream: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.cancel = cancel
	c.done = done

	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if err := c.stream.Read(); err != nil {
					logger.Warn("failed to read from portaudio stream", "error", err)
					continue
				}

				audioBuffer := bytes.Buffer{}
				if err := binary.Write(&audioBuffer, binary.LittleEndian, c.in); err != nil {
					logger.Warn("failed to encode captured frames", "error", err)
					continue
				}
				onAudio(audioBuffer.Bytes())
			}
		}
	}()

	return nil
}

func (c *Client) StopCapture() error {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done

	if err := c.stream.Stop(); err != nil {
		return fmt.Errorf("failed to stop portaudio stream: %w", err)
	}
	return nil
}

func (c *Client) EncodingInfo() audio.EncodingInfo {
	return audio.EncodingInfo{
		SampleRate: audio.DefaultSampleRate,
		Format:     audio.EncodingLinear16,
	}
}

func (c *Client) Close() {
	_ = c.StopCapture()
	_ = c.stream.Close()
	_ = portaudio.Terminate()
}
