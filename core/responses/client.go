package responses

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Client streams turn responses from a remote endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

type ClientOption func(*Client)

// WithHTTPClient replaces the default instrumented HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(endpoint string, opts ...ClientOption) *Client {
	client := &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithSpanNameFormatter(func(operation string, request *http.Request) string {
					return operation + " " + request.URL.Path
				}),
			),
		},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

type streamRequest struct {
	Message string    `json:"message"`
	History []Message `json:"history"`
}

// StreamResponse prepares a streaming request for one turn. The request is
// not sent until the returned stream's Chunks sequence is iterated.
func (c *Client) StreamResponse(message string, history []Message) Stream {
	return &httpStream{client: c, message: message, history: history}
}

type httpStream struct {
	client  *Client
	message string
	history []Message
}

func (s *httpStream) Chunks(ctx context.Context) iter.Seq2[Chunk, error] {
	return func(yield func(Chunk, error) bool) {
		ctx, span := tracer.Start(ctx, "stream response")
		defer span.End()

		body, err := json.Marshal(streamRequest{Message: s.message, History: s.history})
		if err != nil {
			err = fmt.Errorf("failed to marshal stream request: %w", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			yield(nil, err)
			return
		}

		request, err := http.NewRequestWithContext(ctx, http.MethodPost, s.client.endpoint, bytes.NewBuffer(body))
		if err != nil {
			err = fmt.Errorf("failed to create stream request: %w", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			yield(nil, err)
			return
		}
		request.Header.Set("Content-Type", "application/json")
		span.SetAttributes(attribute.String("request.url", request.URL.String()))

		requestSent := time.Now()
		response, err := s.client.httpClient.Do(request)
		if err != nil {
			err = fmt.Errorf("failed to send stream request: %w", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			yield(nil, err)
			return
		}
		defer response.Body.Close()

		span.SetAttributes(attribute.Int("response.status_code", response.StatusCode))
		if response.StatusCode != http.StatusOK {
			errorBody, readErr := io.ReadAll(response.Body)
			if readErr != nil {
				span.RecordError(fmt.Errorf("failed to read error response body: %w", readErr))
			}
			err := fmt.Errorf("non-OK HTTP status: %s: %s", response.Status, strings.TrimSpace(string(errorBody)))
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			yield(nil, err)
			return
		}

		receivedFirstChunk := false
		for chunk, err := range NewDecoder(response.Body).Chunks() {
			if !receivedFirstChunk {
				receivedFirstChunk = true
				span.AddEvent("received first chunk")
				span.SetAttributes(attribute.Float64("response.request_to_first_chunk_time", time.Since(requestSent).Seconds()))
			}

			if !yield(chunk, err) {
				return
			}
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return
			}
		}
	}
}
