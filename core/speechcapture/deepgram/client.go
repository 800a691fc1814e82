// Package deepgram implements the speech-capture device contract on top of
// deepgram's live-transcription websocket, fed by a local audio backend.
package deepgram

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/voxlabs/jarvis-core/core/audio"
)

// AudioSource is the microphone backend feeding raw frames into the
// transcription stream.
type AudioSource interface {
	StartCapture(ctx context.Context, onAudio func(audio []byte)) error
	StopCapture() error
	EncodingInfo() audio.EncodingInfo
}

// Client is a single-shot capture device: each Start opens one deepgram
// stream, produces at most one final transcript, and winds itself down.
type Client struct {
	source AudioSource

	connMu    sync.Mutex
	conn      *websocket.Conn
	lastMsgTs time.Time

	cycleMu sync.Mutex
	cycle   *captureCycle
}

func NewClient(source AudioSource) *Client {
	return &Client{source: source}
}

func (c *Client) activeCycle() *captureCycle {
	c.cycleMu.Lock()
	defer c.cycleMu.Unlock()
	return c.cycle
}
