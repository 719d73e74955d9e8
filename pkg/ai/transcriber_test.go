package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/pkg/config"
)

// fakeProvider emulates the transcription API: submits are accepted with a
// queued status and status reads report the job as still processing.
type fakeProvider struct {
	submits     atomic.Int64
	statusReads atomic.Int64
	lastSubmit  atomic.Value // submit request body
}

func (p *fakeProvider) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/transcript"):
			p.submits.Add(1)
			var body map[string]interface{}
			json.NewDecoder(r.Body).Decode(&body)
			p.lastSubmit.Store(body)
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"id": "tx_123", "status": "queued"})
		case r.Method == http.MethodGet:
			p.statusReads.Add(1)
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"id": "tx_123", "status": "processing"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func newTestTranscriber(t *testing.T, provider *fakeProvider, webhookBase string) Transcriber {
	t.Helper()

	srv := httptest.NewServer(provider.handler())
	t.Cleanup(srv.Close)

	return NewTranscriber(&config.AssemblyAIConfig{
		APIKey:         "test-key",
		BaseURL:        srv.URL,
		WebhookBaseURL: webhookBase,
		Language:       "pt",
	})
}

func TestSubmitFromURL_ReturnsWithoutWaiting(t *testing.T) {
	provider := &fakeProvider{}
	tr := newTestTranscriber(t, provider, "")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	id, err := tr.SubmitFromURL(ctx, "https://example.com/reuniao.mp3")
	if err != nil {
		t.Fatalf("SubmitFromURL: %v", err)
	}
	if id != "tx_123" {
		t.Fatalf("expected provider id tx_123, got %q", id)
	}

	// A submit must not poll the job to completion: a long recording would
	// otherwise hold the worker until the provider finishes.
	if got := provider.statusReads.Load(); got != 0 {
		t.Fatalf("submit polled job status %d times", got)
	}
	if provider.submits.Load() != 1 {
		t.Fatalf("expected exactly one submit, got %d", provider.submits.Load())
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("submit took %s, expected an immediate return", elapsed)
	}
}

func TestSubmitFromURL_SetsWebhookAndLanguage(t *testing.T) {
	provider := &fakeProvider{}
	tr := newTestTranscriber(t, provider, "https://api.w1.example")

	if _, err := tr.SubmitFromURL(context.Background(), "https://example.com/reuniao.mp3"); err != nil {
		t.Fatalf("SubmitFromURL: %v", err)
	}

	body, _ := provider.lastSubmit.Load().(map[string]interface{})
	if body == nil {
		t.Fatal("provider received no submit body")
	}
	if got := body["webhook_url"]; got != "https://api.w1.example/v1/webhooks/transcription" {
		t.Fatalf("unexpected webhook_url: %v", got)
	}
	if got := body["language_code"]; got != "pt" {
		t.Fatalf("unexpected language_code: %v", got)
	}
	if got := body["audio_url"]; got != "https://example.com/reuniao.mp3" {
		t.Fatalf("unexpected audio_url: %v", got)
	}
}

func TestGetTranscript_MapsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"id":     "tx_123",
			"status": "completed",
			"text":   "ata da reunião",
		})
	}))
	defer srv.Close()

	tr := NewTranscriber(&config.AssemblyAIConfig{
		APIKey:   "test-key",
		BaseURL:  srv.URL,
		Language: "pt",
	})

	result, err := tr.GetTranscript(context.Background(), "tx_123")
	if err != nil {
		t.Fatalf("GetTranscript: %v", err)
	}
	if result.Status != "completed" {
		t.Fatalf("unexpected status %q", result.Status)
	}
	if result.Text != "ata da reunião" {
		t.Fatalf("unexpected text %q", result.Text)
	}
}
