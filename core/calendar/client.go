// Package calendar fetches the user's upcoming events so they can be folded
// into conversation context. It is a thin I/O wrapper over the Google
// Calendar REST API.
package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const defaultBaseURL = "https://www.googleapis.com/calendar/v3"

// EventTime is either a timed start/end (DateTime) or an all-day date.
type EventTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
}

type Event struct {
	ID      string    `json:"id"`
	Summary string    `json:"summary"`
	Start   EventTime `json:"start"`
	End     EventTime `json:"end"`
}

type eventList struct {
	Items []Event `json:"items"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type ClientOption func(*Client)

func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(opts ...ClientOption) *Client {
	client := &Client{
		baseURL: defaultBaseURL,
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

// UpcomingEvents returns up to maxResults events from the primary calendar,
// ordered by start time, beginning now.
func (c *Client) UpcomingEvents(ctx context.Context, accessToken string, maxResults int) ([]Event, error) {
	ctx, span := tracer.Start(ctx, "fetch upcoming events")
	defer span.End()

	if maxResults <= 0 {
		maxResults = 10
	}

	queryParams := url.Values{}
	queryParams.Set("timeMin", time.Now().Format(time.RFC3339))
	queryParams.Set("maxResults", strconv.Itoa(maxResults))
	queryParams.Set("singleEvents", "true")
	queryParams.Set("orderBy", "startTime")

	request, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/calendars/primary/events?"+queryParams.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar request: %w", err)
	}
	request.Header.Set("Authorization", "Bearer "+accessToken)

	response, err := c.httpClient.Do(request)
	if err != nil {
		err = fmt.Errorf("failed to fetch calendar events: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer response.Body.Close()

	span.SetAttributes(attribute.Int("response.status_code", response.StatusCode))
	if response.StatusCode != http.StatusOK {
		errorBody, _ := io.ReadAll(response.Body)
		err := fmt.Errorf("non-OK HTTP status: %s: %s", response.Status, strings.TrimSpace(string(errorBody)))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var list eventList
	if err := json.NewDecoder(response.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("failed to decode calendar events: %w", err)
	}

	span.SetAttributes(attribute.Int("response.events", len(list.Items)))
	return list.Items, nil
}
