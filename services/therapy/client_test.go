package therapy

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRunTurn(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody turnRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"assistant_text": "Take a slow breath with me.",
			"emotion":        "calm",
			"extra":          map[string]interface{}{"confidence": 0.9},
		})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, APIKey: "secret-key"})
	result, err := client.RunTurn(context.Background(), "anxiety", "sess-1", "I can't sleep")
	if err != nil {
		t.Fatalf("run turn: %v", err)
	}

	if gotPath != "/v1/turn" {
		t.Fatalf("expected POST to /v1/turn, got %q", gotPath)
	}
	if gotAuth != "Bearer secret-key" {
		t.Fatalf("expected bearer auth header, got %q", gotAuth)
	}
	if gotBody.Issue != "anxiety" || gotBody.SessionID != "sess-1" || gotBody.UserMessage != "I can't sleep" {
		t.Fatalf("unexpected request payload: %+v", gotBody)
	}

	if result.AssistantText != "Take a slow breath with me." {
		t.Fatalf("unexpected assistant text %q", result.AssistantText)
	}
	if result.Emotion != "calm" {
		t.Fatalf("unexpected emotion %q", result.Emotion)
	}
	if result.Extra["confidence"] != 0.9 {
		t.Fatalf("unexpected extra payload: %+v", result.Extra)
	}
}

func TestRunTurnNoAPIKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "" {
			t.Errorf("expected no auth header, got %q", auth)
		}
		json.NewEncoder(w).Encode(map[string]string{"assistant_text": "hello"})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	if _, err := client.RunTurn(context.Background(), "", "sess-1", "hi"); err != nil {
		t.Fatalf("run turn: %v", err)
	}
}

func TestRunTurnServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	_, err := client.RunTurn(context.Background(), "anxiety", "sess-1", "hi")
	if err == nil {
		t.Fatal("expected error on non-200 status")
	}
	if !strings.Contains(err.Error(), "503") || !strings.Contains(err.Error(), "model overloaded") {
		t.Fatalf("expected status and body excerpt in error, got %v", err)
	}
}

func TestRunTurnMissingFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"assistant_text":"hello"}`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	result, err := client.RunTurn(context.Background(), "anxiety", "sess-1", "hi")
	if err != nil {
		t.Fatalf("run turn: %v", err)
	}
	if result.Emotion != "" || result.Extra != nil {
		t.Fatalf("expected zero values for omitted fields, got %+v", result)
	}
}

func TestRunTurnContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(Config{BaseURL: server.URL})
	if _, err := client.RunTurn(ctx, "anxiety", "sess-1", "hi"); err == nil {
		t.Fatal("expected error when context is cancelled")
	}
}
