package calendar

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestUpcomingEventsRequestShape(t *testing.T) {
	var request *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		request = r.Clone(r.Context())
		w.Write([]byte(`{"items": []}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	before := time.Now()
	if _, err := client.UpcomingEvents(t.Context(), "token-123", 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if request.URL.Path != "/calendars/primary/events" {
		t.Fatalf("unexpected path %q", request.URL.Path)
	}
	if auth := request.Header.Get("Authorization"); auth != "Bearer token-123" {
		t.Fatalf("unexpected authorization header %q", auth)
	}

	query := request.URL.Query()
	if got := query.Get("maxResults"); got != "5" {
		t.Fatalf("unexpected maxResults %q", got)
	}
	if got := query.Get("singleEvents"); got != "true" {
		t.Fatalf("unexpected singleEvents %q", got)
	}
	if got := query.Get("orderBy"); got != "startTime" {
		t.Fatalf("unexpected orderBy %q", got)
	}
	timeMin, err := time.Parse(time.RFC3339, query.Get("timeMin"))
	if err != nil {
		t.Fatalf("timeMin is not RFC3339: %v", err)
	}
	if timeMin.Before(before.Add(-time.Minute)) || timeMin.After(time.Now().Add(time.Minute)) {
		t.Fatalf("timeMin %v is not around now", timeMin)
	}
}

func TestUpcomingEventsParsesTimedAndAllDayEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items": [
			{"id": "1", "summary": "Reunião", "start": {"dateTime": "2026-08-28T15:00:00-03:00"}, "end": {"dateTime": "2026-08-28T16:00:00-03:00"}},
			{"id": "2", "summary": "Feriado", "start": {"date": "2026-09-07"}, "end": {"date": "2026-09-08"}}
		]}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	events, err := client.UpcomingEvents(t.Context(), "token", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Summary != "Reunião" || events[0].Start.DateTime == "" {
		t.Fatalf("unexpected timed event %+v", events[0])
	}
	if events[1].Summary != "Feriado" || events[1].Start.Date != "2026-09-07" {
		t.Fatalf("unexpected all-day event %+v", events[1])
	}
}

func TestUpcomingEventsDefaultsMaxResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("maxResults"); got != "10" {
			t.Errorf("expected default maxResults 10, got %q", got)
		}
		w.Write([]byte(`{"items": []}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	if _, err := client.UpcomingEvents(t.Context(), "token", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUpcomingEventsSurfacesNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	_, err := client.UpcomingEvents(t.Context(), "expired", 10)
	if err == nil {
		t.Fatal("expected an error for the non-OK response")
	}
	if !strings.Contains(err.Error(), "401") || !strings.Contains(err.Error(), "invalid credentials") {
		t.Fatalf("expected status and body in error, got %v", err)
	}
}
