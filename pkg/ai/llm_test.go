package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/pkg/config"
)

func TestLLMComplete_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST got %s", r.Method)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Fatalf("unexpected authorization header %q", r.Header.Get("Authorization"))
		}
		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		if len(req.Messages) != 2 {
			t.Fatalf("expected 2 messages got %d", len(req.Messages))
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": `{"resumo_executivo":"ok"}`}},
			},
		})
	}))
	defer ts.Close()

	client := NewLLMClient(&config.LLMConfig{
		APIKey:  "test-key",
		BaseURL: ts.URL,
		Model:   "llama-3.1-70b-versatile",
	})

	content, err := client.Complete(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if content != `{"resumo_executivo":"ok"}` {
		t.Fatalf("unexpected content %q", content)
	}
}

func TestLLMComplete_ErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	client := NewLLMClient(&config.LLMConfig{APIKey: "k", BaseURL: ts.URL})
	if _, err := client.Complete(context.Background(), "s", "u"); err == nil {
		t.Fatal("expected error for 429 response")
	}
}
