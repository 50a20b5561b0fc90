package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/teampop/popcommerce/internal/config"
)

func TestSiteExtractorSuccess(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/extract" {
			t.Errorf("path = %s, want /v1/extract", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("authorization = %q", auth)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": true, "data": {"products": [
			{"title": "Red Runner", "price": "$59", "description": "Bright.", "url": "https://example.com/red"},
			{"title": "No URL product", "price": "$1"}
		]}}`))
	}))
	defer srv.Close()

	ext := NewSiteExtractor(&config.ExtractionConfig{BaseURL: srv.URL, APIKey: "test-key"})

	products, err := ext.Extract(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("got %d products, want 1 (URL-less entry dropped)", len(products))
	}
	if products[0].Title != "Red Runner" {
		t.Errorf("title = %q", products[0].Title)
	}

	urls, _ := gotBody["urls"].([]interface{})
	if len(urls) != 1 || urls[0] != "https://example.com" {
		t.Errorf("request urls = %v", gotBody["urls"])
	}
	if prompt, _ := gotBody["prompt"].(string); prompt == "" {
		t.Error("request carries no extraction prompt")
	}
}

func TestSiteExtractorZeroProducts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": true, "data": {"products": []}}`))
	}))
	defer srv.Close()

	ext := NewSiteExtractor(&config.ExtractionConfig{BaseURL: srv.URL})

	_, err := ext.Extract(context.Background(), "https://example.com")
	if !errors.Is(err, ErrNoProducts) {
		t.Errorf("error = %v, want ErrNoProducts in chain", err)
	}
	var extErr *ExtractionError
	if !errors.As(err, &extErr) {
		t.Fatalf("error type = %T, want *ExtractionError", err)
	}
	if extErr.Domain != "https://example.com" {
		t.Errorf("error domain = %q", extErr.Domain)
	}
}

func TestSiteExtractorAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	}))
	defer srv.Close()

	ext := NewSiteExtractor(&config.ExtractionConfig{BaseURL: srv.URL})

	_, err := ext.Extract(context.Background(), "https://example.com")
	if err == nil {
		t.Fatal("Extract with failing API returned nil error")
	}
	var extErr *ExtractionError
	if !errors.As(err, &extErr) {
		t.Fatalf("error type = %T, want *ExtractionError", err)
	}
}
