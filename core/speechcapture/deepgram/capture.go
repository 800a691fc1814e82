package deepgram

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	api "github.com/deepgram/deepgram-go-sdk/pkg/api/listen/v1/websocket/interfaces"
	"github.com/gorilla/websocket"
	"github.com/voxlabs/jarvis-core/core/speechcapture"
	"github.com/voxlabs/jarvis-core/internal/utils"
)

// captureCycle tracks the state of one Start/Stop pair. The device is
// single-shot: the cycle ends itself after delivering a final transcript.
type captureCycle struct {
	options speechcapture.CaptureOptions

	accumulatedTranscript string
	unendedSegment        bool

	endOnce sync.Once
	cancel  context.CancelFunc
}

// Start opens the transcription stream and begins forwarding microphone
// audio. Starting while a cycle is already running is an error; the caller
// serializes access to the device.
func (c *Client) Start(ctx context.Context, opts ...speechcapture.CaptureOption) error {
	options := speechcapture.CaptureOptions{Locale: "en-US"}
	for _, opt := range opts {
		opt(&options)
	}

	encoding, err := convertEncoding(c.source.EncodingInfo())
	if err != nil {
		return fmt.Errorf("invalid encoding: %w", err)
	}

	c.cycleMu.Lock()
	if c.cycle != nil {
		c.cycleMu.Unlock()
		return fmt.Errorf("capture cycle already running")
	}

	conn, err := connectWebsocket(connectionOptions{
		sampleRate: encoding.SampleRate,
		encoding:   encoding.Format.Name(),
		language:   options.Locale,
	})
	if err != nil {
		c.cycleMu.Unlock()
		return fmt.Errorf("failed to open websocket: %w", err)
	}

	cycleCtx, cancel := context.WithCancel(ctx)
	cycle := &captureCycle{options: options, cancel: cancel}
	c.cycle = cycle
	c.cycleMu.Unlock()

	c.connMu.Lock()
	c.conn = conn
	c.lastMsgTs = time.Now()
	c.connMu.Unlock()

	go c.readAndProcessMessages(cycleCtx, conn, cycle)
	go c.generateKeepAlive(cycleCtx)

	if err := c.source.StartCapture(cycleCtx, func(audio []byte) {
		if err := c.sendAudio(audio); err != nil {
			log.Println("Failed to forward captured audio", "error", err)
		}
	}); err != nil {
		c.endCycle(cycle, "audio-capture")
		return fmt.Errorf("failed to start audio capture: %w", err)
	}

	if options.CaptureStartedCallback != nil {
		options.CaptureStartedCallback()
	}
	return nil
}

// Stop winds down the running cycle, if any. Any transcript already
// accumulated is still delivered through the result callback.
func (c *Client) Stop() error {
	cycle := c.activeCycle()
	if cycle == nil {
		return nil
	}

	c.endCycle(cycle, "")
	return nil
}

// endCycle stops the microphone, asks deepgram to flush the stream and fires
// the end-of-cycle callbacks exactly once. An empty errorCode means a normal
// wind-down.
func (c *Client) endCycle(cycle *captureCycle, errorCode string) {
	cycle.endOnce.Do(func() {
		if err := c.source.StopCapture(); err != nil {
			log.Println("Failed to stop audio capture", "error", err)
		}

		c.connMu.Lock()
		if c.conn != nil {
			if err := c.conn.WriteJSON(struct {
				Type string `json:"type"`
			}{Type: string(api.TypeCloseStreamResponse)}); err != nil {
				log.Println("Failed to close deepgram stream", "error", err)
			}
		}
		c.connMu.Unlock()

		cycle.cancel()

		c.cycleMu.Lock()
		if c.cycle == cycle {
			c.cycle = nil
		}
		c.cycleMu.Unlock()

		transcript := strings.TrimSpace(cycle.accumulatedTranscript)
		if errorCode != "" {
			if cycle.options.ErrorCallback != nil {
				cycle.options.ErrorCallback(errorCode)
			}
		} else if transcript != "" && cycle.options.ResultCallback != nil {
			cycle.options.ResultCallback(transcript)
		}

		if cycle.options.CaptureEndedCallback != nil {
			cycle.options.CaptureEndedCallback()
		}
	})
}

type connectionOptions struct {
	sampleRate int
	encoding   string
	language   string
}

func connectWebsocket(options connectionOptions) (*websocket.Conn, error) {
	apiKey, ok := os.LookupEnv("DEEPGRAM_API_KEY")
	if !ok {
		return nil, fmt.Errorf("deepgram api key not found")
	}

	listenUrl, _ := url.Parse("wss://api.deepgram.com/v1/listen")
	queryParams := listenUrl.Query()
	queryParams.Set("encoding", options.encoding)
	queryParams.Set("sample_rate", strconv.Itoa(options.sampleRate))
	queryParams.Set("channels", "1")
	queryParams.Set("model", "nova-3")
	queryParams.Set("language", options.language)
	queryParams.Set("smart_format", "true")
	queryParams.Set("utterance_end_ms", "1000")
	queryParams.Set("interim_results", "true")
	queryParams.Set("endpointing", "300")
	queryParams.Set("vad_events", "true")

	listenUrl.RawQuery = queryParams.Encode()
	conn, _, err := websocket.DefaultDialer.Dial(listenUrl.String(),
		http.Header{"Authorization": {"Token " + apiKey}})
	if err != nil {
		return nil, fmt.Errorf("failed to open socket connection to deepgram: %w", err)
	}

	return conn, nil
}

func (c *Client) sendAudio(audio []byte) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("connection closed")
	}

	c.lastMsgTs = time.Now()
	if err := c.conn.WriteMessage(websocket.BinaryMessage, audio); err != nil {
		return fmt.Errorf("failed to write to deepgram client: %w", err)
	}
	return nil
}

func (c *Client) sendKeepAlive() {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return
	}
	if err := c.conn.WriteJSON(struct {
		Type string `json:"type"`
	}{Type: "KeepAlive"}); err != nil {
		log.Println("Failed to write to deepgram client", "error", err)
	}
}

func (c *Client) readAndProcessMessages(ctx context.Context, conn *websocket.Conn, cycle *captureCycle) {
	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			if err.Error() != "websocket: close 1000 (normal)" {
				log.Println("Failed to read deepgram websocket message", "error", err)
				c.endCycle(cycle, "network")
			} else {
				c.endCycle(cycle, "")
			}

			c.connMu.Lock()
			c.conn = nil
			c.connMu.Unlock()
			conn.Close()
			return
		}

		if msgType != websocket.BinaryMessage {
			c.processMessage(ctx, msg, cycle)
		}
	}
}

func (c *Client) processMessage(_ context.Context, msg []byte, cycle *captureCycle) {
	var parsedMsg struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(msg, &parsedMsg); err != nil {
		log.Println("Failed to unmarshal deepgram message", "error", err)
		return
	}

	switch api.TypeResponse(parsedMsg.Type) {
	case api.TypeMessageResponse:
		var msgResp api.MessageResponse
		if err := json.Unmarshal(msg, &msgResp); err != nil {
			log.Println("Failed to unmarshal deepgram message", "error", err)
			return
		}

		if msgResp.IsFinal && len(msgResp.Channel.Alternatives) > 0 {
			transcript := strings.TrimSpace(msgResp.Channel.Alternatives[0].Transcript)
			if len(transcript) > 0 {
				cycle.accumulatedTranscript += " " + transcript
			}
		}
		if msgResp.IsFinal && msgResp.SpeechFinal {
			c.endCycle(cycle, "")
		}

	case api.TypeUtteranceEndResponse:
		var msgResp api.UtteranceEndResponse
		if err := json.Unmarshal(msg, &msgResp); err != nil {
			log.Println("Failed to unmarshal deepgram message", "error", err)
			return
		}

		if cycle.unendedSegment {
			c.endCycle(cycle, "")
		}

	case api.TypeSpeechStartedResponse:
		var msgResp api.SpeechStartedResponse
		if err := json.Unmarshal(msg, &msgResp); err != nil {
			log.Println("Failed to unmarshal deepgram message", "error", err)
			return
		}

		cycle.unendedSegment = true
	}
}

// generateKeepAlive keeps the deepgram connection open while the microphone
// is quiet. Deepgram closes streams that go silent for too long.
func (c *Client) generateKeepAlive(ctx context.Context) {
	const checkInterval = time.Second
	ticker := time.NewTicker(checkInterval)
	defer ticker.Stop()

	var lastKeepAliveTime *time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.connMu.Lock()
			idle := time.Since(c.lastMsgTs) > checkInterval
			c.connMu.Unlock()

			if !idle {
				lastKeepAliveTime = nil
				continue
			}

			if lastKeepAliveTime == nil || time.Since(*lastKeepAliveTime) >= 5*time.Second {
				lastKeepAliveTime = utils.Ptr(time.Now())
				c.sendKeepAlive()
			}
		}
	}
}
