package responses

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClientStreamsDecodedChunks(t *testing.T) {
	var received streamRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if contentType := r.Header.Get("Content-Type"); contentType != "application/json" {
			t.Errorf("expected application/json, got %q", contentType)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}

		w.Write([]byte("data: {\"text\": \"Boa \"}\n\n"))
		w.Write([]byte("data: {\"text\": \"tarde.\"}\n\n"))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	stream := client.StreamResponse("Olá", []Message{{Role: RoleUser, Text: "antes"}})

	var texts []string
	for chunk, err := range stream.Chunks(t.Context()) {
		if err != nil {
			t.Fatalf("unexpected stream error: %v", err)
		}
		texts = append(texts, contentOf(t, chunk))
	}

	if len(texts) != 2 || texts[0] != "Boa " || texts[1] != "tarde." {
		t.Fatalf("unexpected chunks %v", texts)
	}
	if received.Message != "Olá" {
		t.Fatalf("unexpected message %q", received.Message)
	}
	if len(received.History) != 1 || received.History[0].Text != "antes" {
		t.Fatalf("unexpected history %v", received.History)
	}
}

func TestClientDoesNotSendUntilIterated(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.StreamResponse("Olá", nil)

	if requests != 0 {
		t.Fatalf("expected no request before iteration, got %d", requests)
	}
}

func TestClientSurfacesNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	stream := client.StreamResponse("Olá", nil)

	var finalErr error
	for chunk, err := range stream.Chunks(t.Context()) {
		if err != nil {
			finalErr = err
			continue
		}
		t.Fatalf("expected no chunks, got %v", chunk)
	}

	if finalErr == nil {
		t.Fatal("expected an error for the non-OK response")
	}
	if !strings.Contains(finalErr.Error(), "502") || !strings.Contains(finalErr.Error(), "upstream exploded") {
		t.Fatalf("expected status and body in error, got %v", finalErr)
	}
}
