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
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"github.com/voxlabs/jarvis-core/core/speechoutput"
)

// utteranceRequest is the in-flight rendering of a single utterance.
type utteranceRequest struct {
	conn   *websocket.Conn
	connMu sync.Mutex

	sink    AudioSink
	options speechoutput.SpeakOptions

	cancelled atomic.Bool
	started   atomic.Bool
}

// Speak opens a synthesis stream for the utterance and returns once the text
// has been submitted. Lifecycle is reported through the callbacks: playback
// started on first audio, playback ended once the sink has drained.
func (c *Client) Speak(ctx context.Context, text string, opts ...speechoutput.SpeakOption) error {
	options := speechoutput.SpeakOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	conn, err := connectWebsocket(c.voice, c.sink)
	if err != nil {
		return fmt.Errorf("failed to open websocket: %w", err)
	}

	req := &utteranceRequest{conn: conn, sink: c.sink, options: options}
	c.setCurrent(req)

	go req.processIncomingMessages(func() { c.clearCurrent(req) })

	if err := req.sendMessage(speakMsg(text)); err != nil {
		c.clearCurrent(req)
		conn.Close()
		return fmt.Errorf("failed to send utterance text: %w", err)
	}
	if err := req.sendMessage(flushMsg); err != nil {
		c.clearCurrent(req)
		conn.Close()
		return fmt.Errorf("failed to flush utterance: %w", err)
	}

	return nil
}

// StopAll cancels the in-flight utterance and drops any synthesized audio
// still waiting in the sink. The cancelled utterance reports an interrupted
// error through its callback.
func (c *Client) StopAll() {
	req := c.takeCurrent()
	c.sink.ClearBuffer()

	if req == nil {
		return
	}

	req.cancelled.Store(true)
	_ = req.sendMessage(clearMsg)
	_ = req.sendMessage(closeMsg)
	req.closeConn()

	if req.options.ErrorCallback != nil {
		req.options.ErrorCallback(speechoutput.ErrorCodeInterrupted)
	}
}

func connectWebsocket(voice Voice, sink AudioSink) (*websocket.Conn, error) {
	apiKey, ok := os.LookupEnv("DEEPGRAM_API_KEY")
	if !ok {
		return nil, fmt.Errorf("deepgram api key not found")
	}

	encodingInfo := sink.EncodingInfo()
	urlValues := url.Values{}
	urlValues.Set("encoding", encodingInfo.Format.Name())
	urlValues.Set("sample_rate", strconv.Itoa(encodingInfo.SampleRate))
	urlValues.Set("model", string(voice))
	urlValues.Set("container", "none")

	conn, _, err := websocket.DefaultDialer.Dial(
		(&url.URL{
			Scheme: "wss",
			Host:   "api.deepgram.com", Path: "/v1/speak",
			RawQuery: urlValues.Encode(),
		}).String(),
		http.Header{"Authorization": {"token " + apiKey}})
	if err != nil {
		return nil, fmt.Errorf("failed to open socket connection to deepgram: %w", err)
	}

	return conn, nil
}

func (r *utteranceRequest) processIncomingMessages(onDone func()) {
	defer onDone()

	for {
		msgType, msg, err := r.conn.ReadMessage()
		if err != nil {
			if r.cancelled.Load() {
				return
			}
			if err.Error() != "websocket: close 1000 (normal)" {
				log.Printf("Websocket read error: %v", err)
				if r.options.ErrorCallback != nil {
					r.options.ErrorCallback("network")
				}
			}
			return
		}

		switch msgType {
		case websocket.BinaryMessage:
			if len(msg) == 0 {
				continue
			}
			if r.started.CompareAndSwap(false, true) && r.options.PlaybackStartedCallback != nil {
				r.options.PlaybackStartedCallback()
			}
			if err := r.sink.SendAudio(msg); err != nil {
				log.Printf("Failed to buffer synthesized audio: %v", err)
			}

		case websocket.TextMessage:
			var parsedMsg struct {
				Type string `json:"type"`
			}
			if err := json.Unmarshal(msg, &parsedMsg); err != nil {
				continue
			}

			if parsedMsg.Type == "Flushed" {
				// All audio for the utterance has been synthesized; completion
				// is reported once the sink has played it out.
				if err := r.sink.Mark("utterance-end", func(string) {
					if r.cancelled.Load() {
						return
					}
					if r.options.PlaybackEndedCallback != nil {
						r.options.PlaybackEndedCallback()
					}
				}); err != nil {
					log.Printf("Failed to mark utterance end: %v", err)
				}

				_ = r.sendMessage(closeMsg)
				r.closeConn()
				return
			}
		}
	}
}

type websocketMessage struct {
	Type string `json:"type"`
}

var (
	speakMsg = func(text string) struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} {
		return struct {
			Type string `json:"type"`
			Text string `json:"text"`
		}{Type: "Speak", Text: text}
	}
	flushMsg = websocketMessage{Type: "Flush"}
	clearMsg = websocketMessage{Type: "Clear"}
	closeMsg = websocketMessage{Type: "Close"}
)

func (r *utteranceRequest) sendMessage(msg any) error {
	r.connMu.Lock()
	defer r.connMu.Unlock()

	if r.conn == nil {
		return fmt.Errorf("websocket connection closed")
	}
	if err := r.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to write to websocket: %w", err)
	}
	return nil
}

func (r *utteranceRequest) closeConn() {
	r.connMu.Lock()
	defer r.connMu.Unlock()

	if r.conn != nil {
		_ = r.conn.Close()
	}
}
