package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/teampop/popcommerce/internal/config"
	"github.com/teampop/popcommerce/internal/domain"
)

func TestGeminiGenerate(t *testing.T) {
	var gotReq geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/gemini-2.5-flash:generateContent") {
			t.Errorf("path = %s", r.URL.Path)
		}
		if key := r.Header.Get("x-goog-api-key"); key != "test-key" {
			t.Errorf("api key header = %q", key)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates": [{"content": {"parts": [{"text": "hello shopper"}]}}]}`))
	}))
	defer srv.Close()

	client := NewGeminiClient(&config.GeminiConfig{
		Model:       "gemini-2.5-flash",
		APIKey:      "test-key",
		BaseURL:     srv.URL,
		Temperature: 0.3,
	})

	history := []domain.ChatMessage{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
		{Role: "user", Content: "any red shoes?"},
	}
	out, err := client.Generate(context.Background(), "be helpful", history)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if out != "hello shopper" {
		t.Errorf("output = %q", out)
	}

	// System prompt travels on the dedicated instruction channel
	if gotReq.SystemInstruction == nil || gotReq.SystemInstruction.Parts[0].Text != "be helpful" {
		t.Errorf("system_instruction = %+v", gotReq.SystemInstruction)
	}

	// Non-user roles map to "model"; the latest query stays last
	if len(gotReq.Contents) != 3 {
		t.Fatalf("contents = %d turns, want 3", len(gotReq.Contents))
	}
	wantRoles := []string{"user", "model", "user"}
	for i, want := range wantRoles {
		if gotReq.Contents[i].Role != want {
			t.Errorf("contents[%d].role = %q, want %q", i, gotReq.Contents[i].Role, want)
		}
	}
	if gotReq.Contents[2].Parts[0].Text != "any red shoes?" {
		t.Errorf("last turn = %q, want the latest query", gotReq.Contents[2].Parts[0].Text)
	}

	if temp, _ := gotReq.GenerationConfig["temperature"].(float64); temp != 0.3 {
		t.Errorf("temperature = %v, want 0.3", gotReq.GenerationConfig["temperature"])
	}
}

func TestGeminiGenerateNoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates": []}`))
	}))
	defer srv.Close()

	client := NewGeminiClient(&config.GeminiConfig{Model: "gemini-2.5-flash", BaseURL: srv.URL})

	if _, err := client.Generate(context.Background(), "sys", []domain.ChatMessage{{Role: "user", Content: "q"}}); err == nil {
		t.Error("Generate with no candidates returned nil error")
	}
}

func TestGeminiGenerateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error": {"code": 429, "message": "quota exceeded"}}`))
	}))
	defer srv.Close()

	client := NewGeminiClient(&config.GeminiConfig{Model: "gemini-2.5-flash", BaseURL: srv.URL})

	_, err := client.Generate(context.Background(), "sys", []domain.ChatMessage{{Role: "user", Content: "q"}})
	if err == nil {
		t.Fatal("Generate with API error returned nil error")
	}
	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("error = %v, want provider message surfaced", err)
	}
}
