package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"data-catalog/backend/internal/catalog"
	pkgerrors "data-catalog/backend/pkg/errors"
)

func newEmbeddingsServer(t *testing.T, vector []float32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"object": "list",
			"data": []map[string]interface{}{
				{"object": "embedding", "index": 0, "embedding": vector},
			},
			"model": "test-model",
		})
	}))
}

func TestEmbed(t *testing.T) {
	server := newEmbeddingsServer(t, []float32{0.1, 0.2, 0.3})
	defer server.Close()

	svc := NewService(server.URL, "test-key", "test-model")
	vector, err := svc.Embed(context.Background(), "some text")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(vector) != 3 {
		t.Fatalf("Expected 3 dimensions, got %d", len(vector))
	}
	if vector[0] != 0.1 || vector[2] != 0.3 {
		t.Errorf("Unexpected vector: %v", vector)
	}
}

func TestEmbed_RetriesTransientFailure(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests == 1 {
			http.Error(w, `{"error": {"message": "upstream overloaded"}}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"object": "list",
			"data": []map[string]interface{}{
				{"object": "embedding", "index": 0, "embedding": []float32{0.5, 0.6}},
			},
			"model": "test-model",
		})
	}))
	defer server.Close()

	svc := NewService(server.URL, "test-key", "test-model")
	start := time.Now()
	vector, err := svc.Embed(context.Background(), "some text")
	elapsed := time.Since(start)
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(vector) != 2 || vector[0] != 0.5 {
		t.Errorf("Unexpected vector: %v", vector)
	}
	if requests != 2 {
		t.Errorf("Expected 2 requests, got %d", requests)
	}
	if elapsed < baseBackoff {
		t.Errorf("Expected at least %v of backoff before the retry, took %v", baseBackoff, elapsed)
	}
}

func TestEmbed_EmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"object": "list",
			"data":   []interface{}{},
			"model":  "test-model",
		})
	}))
	defer server.Close()

	svc := NewService(server.URL, "test-key", "test-model")
	_, err := svc.Embed(context.Background(), "some text")
	if err == nil {
		t.Fatal("Expected error for empty embeddings response")
	}
	if !pkgerrors.IsErrorType(err, pkgerrors.ErrorTypeEmbedding) {
		t.Errorf("Expected embedding error, got %v", err)
	}
	var embErr *pkgerrors.ErrEmbeddingFailed
	if !errors.As(err, &embErr) {
		t.Fatalf("Expected *ErrEmbeddingFailed, got %T", err)
	}
	if embErr.Attempts != 1 {
		t.Errorf("Expected 1 attempt, got %d", embErr.Attempts)
	}
}

func TestForEntity(t *testing.T) {
	var gotInput string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input []string `json:"input"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.Input) > 0 {
			gotInput = req.Input[0]
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"object": "list",
			"data": []map[string]interface{}{
				{"object": "embedding", "index": 0, "embedding": []float32{1}},
			},
			"model": "test-model",
		})
	}))
	defer server.Close()

	svc := NewService(server.URL, "test-key", "test-model")
	bo := &catalog.BusinessObject{
		Entity: catalog.Entity{Name: "Invoice", Description: "A bill"},
	}
	if _, err := svc.ForEntity(context.Background(), bo); err != nil {
		t.Fatalf("ForEntity failed: %v", err)
	}
	if gotInput != bo.EmbeddingText() {
		t.Errorf("Expected input %q, got %q", bo.EmbeddingText(), gotInput)
	}
}

func TestForEntity_Nil(t *testing.T) {
	svc := NewService("http://localhost:1", "test-key", "test-model")
	_, err := svc.ForEntity(context.Background(), nil)
	if err == nil {
		t.Fatal("Expected error for nil entity")
	}
	if !pkgerrors.IsErrorType(err, pkgerrors.ErrorTypeEmbedding) {
		t.Errorf("Expected embedding error, got %v", err)
	}
}
