// Package deepgram implements the speech-output device contract on top of
// deepgram's speak websocket, rendering synthesized audio through a local
// playback backend.
package deepgram

import (
	"sync"

	"github.com/voxlabs/jarvis-core/core/audio"
)

// Voice selects the synthesis voice model.
type Voice string

const (
	VoiceThalia    Voice = "aura-2-thalia-en"
	VoiceAndromeda Voice = "aura-2-andromeda-en"
	VoiceOrion     Voice = "aura-2-orion-en"

	defaultVoice = VoiceThalia
)

// AudioSink is the playback backend consuming synthesized audio. Marks fire
// once everything buffered before them has been handed to the device, which
// is how utterance completion is detected.
type AudioSink interface {
	SendAudio(audio []byte) error
	Mark(mark string, callback func(string)) error
	ClearBuffer()
	EncodingInfo() audio.EncodingInfo
}

// Client renders one utterance at a time. Each Speak opens its own stream;
// StopAll cancels whatever is in flight.
type Client struct {
	voice Voice
	sink  AudioSink

	mu      sync.Mutex
	current *utteranceRequest
}

type ClientOption func(*Client)

func WithVoice(voice Voice) ClientOption {
	return func(c *Client) {
		if voice != "" {
			c.voice = voice
		}
	}
}

func NewClient(sink AudioSink, opts ...ClientOption) *Client {
	client := &Client{voice: defaultVoice, sink: sink}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

func (c *Client) setCurrent(req *utteranceRequest) {
	c.mu.Lock()
	c.current = req
	c.mu.Unlock()
}

func (c *Client) takeCurrent() *utteranceRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	req := c.current
	c.current = nil
	return req
}

func (c *Client) clearCurrent(req *utteranceRequest) {
	c.mu.Lock()
	if c.current == req {
		c.current = nil
	}
	c.mu.Unlock()
}
