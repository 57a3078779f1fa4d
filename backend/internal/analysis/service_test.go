package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"data-catalog/backend/internal/catalog"
	"data-catalog/backend/internal/search"
	pkgerrors "data-catalog/backend/pkg/errors"
)

type stubSearcher struct{}

func (stubSearcher) SearchByText(ctx context.Context, query string, kinds []string, opts search.Options) (map[catalog.Kind][]catalog.SearchResult, error) {
	return map[catalog.Kind][]catalog.SearchResult{
		catalog.KindBusinessObject: {{ID: "BO-1", Name: "Invoice", Similarity: 0.92}},
		catalog.KindDataElement:    {},
		catalog.KindDomain:         {},
		catalog.KindRule:           {},
	}, nil
}

func (stubSearcher) FindRelated(ctx context.Context, kind, id string) (map[string][]catalog.EntityRef, error) {
	return map[string][]catalog.EntityRef{
		"data_elements": {{ID: "DE-1", Name: "Amount"}},
	}, nil
}

type stubCatalog struct {
	rule *catalog.Rule
}

func (s stubCatalog) EntityRefByKind(ctx context.Context, kind catalog.Kind, id string) (*catalog.EntityRef, error) {
	if id == "BO-1" {
		return &catalog.EntityRef{ID: id, Name: "Invoice"}, nil
	}
	return nil, nil
}

func (s stubCatalog) GetRule(ctx context.Context, id string) (*catalog.Rule, error) {
	if s.rule != nil && s.rule.ID == id {
		return s.rule, nil
	}
	return nil, pkgerrors.NewEntityNotFound("rule", id)
}

// newCompletionServer serves an OpenAI-compatible chat completions endpoint
// that numbers its responses.
func newCompletionServer(t *testing.T) *httptest.Server {
	t.Helper()
	calls := 0
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "chatcmpl-test",
			"object": "chat.completion",
			"model":  "test-model",
			"choices": []map[string]interface{}{
				{
					"index":         0,
					"finish_reason": "stop",
					"message": map[string]interface{}{
						"role":    "assistant",
						"content": fmt.Sprintf("analysis output %d", calls),
					},
				},
			},
		})
	}))
}

func TestAnalyzeSearch_Pipeline(t *testing.T) {
	server := newCompletionServer(t)
	defer server.Close()

	client := NewClient(server.URL, "test-key", "test-model")
	svc := NewService(client, stubSearcher{}, stubCatalog{})

	result, err := svc.AnalyzeSearch(context.Background(), "invoices", nil)
	if err != nil {
		t.Fatalf("AnalyzeSearch failed: %v", err)
	}
	if result.Operation != "search_analysis" {
		t.Errorf("Unexpected operation: %s", result.Operation)
	}
	if len(result.Steps) != 2 {
		t.Fatalf("Expected 2 pipeline steps, got %d", len(result.Steps))
	}
	if result.Steps[0].Role != "Data Explorer" || result.Steps[1].Role != "Business Analyst" {
		t.Errorf("Unexpected step order: %s, %s", result.Steps[0].Role, result.Steps[1].Role)
	}
	if result.Conclusion() != "analysis output 2" {
		t.Errorf("Expected conclusion from last step, got %q", result.Conclusion())
	}
}

func TestAnalyzeEntity_Pipeline(t *testing.T) {
	server := newCompletionServer(t)
	defer server.Close()

	client := NewClient(server.URL, "test-key", "test-model")
	svc := NewService(client, stubSearcher{}, stubCatalog{})

	result, err := svc.AnalyzeEntity(context.Background(), "business_object", "BO-1")
	if err != nil {
		t.Fatalf("AnalyzeEntity failed: %v", err)
	}
	if len(result.Steps) != 3 {
		t.Fatalf("Expected 3 pipeline steps, got %d", len(result.Steps))
	}
}

func TestAnalyzeEntity_NotFound(t *testing.T) {
	server := newCompletionServer(t)
	defer server.Close()

	client := NewClient(server.URL, "test-key", "test-model")
	svc := NewService(client, stubSearcher{}, stubCatalog{})

	_, err := svc.AnalyzeEntity(context.Background(), "business_object", "BO-404")
	if err == nil {
		t.Fatal("Expected error for missing entity")
	}
	if !pkgerrors.IsErrorType(err, pkgerrors.ErrorTypeNotFound) {
		t.Errorf("Expected not-found error, got %v", err)
	}
}

func TestAnalyzeEntity_InvalidKind(t *testing.T) {
	server := newCompletionServer(t)
	defer server.Close()

	client := NewClient(server.URL, "test-key", "test-model")
	svc := NewService(client, stubSearcher{}, stubCatalog{})

	_, err := svc.AnalyzeEntity(context.Background(), "widget", "x")
	if err == nil {
		t.Fatal("Expected error for invalid kind")
	}
	if !pkgerrors.IsErrorType(err, pkgerrors.ErrorTypeValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestAnalyzeRule_Pipeline(t *testing.T) {
	server := newCompletionServer(t)
	defer server.Close()

	client := NewClient(server.URL, "test-key", "test-model")
	rule := &catalog.Rule{
		Entity:          catalog.Entity{ID: "R-1", Name: "Amount Positive"},
		Category:        catalog.RuleCategoryValidation,
		ObligationLevel: catalog.ObligationMandatory,
	}
	svc := NewService(client, stubSearcher{}, stubCatalog{rule: rule})

	result, err := svc.AnalyzeRule(context.Background(), "R-1")
	if err != nil {
		t.Fatalf("AnalyzeRule failed: %v", err)
	}
	if result.Operation != "rule_analysis" {
		t.Errorf("Unexpected operation: %s", result.Operation)
	}
	if len(result.Steps) != 3 {
		t.Fatalf("Expected 3 pipeline steps, got %d", len(result.Steps))
	}
}

func TestAnalysisUnavailableWithoutClient(t *testing.T) {
	svc := NewService(nil, stubSearcher{}, stubCatalog{})

	if svc.Available() {
		t.Error("Expected Available to be false without a client")
	}
	if _, err := svc.AnalyzeSearch(context.Background(), "q", nil); err != pkgerrors.ErrAnalysisUnavailable {
		t.Errorf("Expected ErrAnalysisUnavailable, got %v", err)
	}
	if _, err := svc.AnalyzeEntity(context.Background(), "rule", "R-1"); err != pkgerrors.ErrAnalysisUnavailable {
		t.Errorf("Expected ErrAnalysisUnavailable, got %v", err)
	}
	if _, err := svc.AnalyzeRule(context.Background(), "R-1"); err != pkgerrors.ErrAnalysisUnavailable {
		t.Errorf("Expected ErrAnalysisUnavailable, got %v", err)
	}
}

func TestConclusion_Empty(t *testing.T) {
	result := &Result{}
	if result.Conclusion() != "" {
		t.Errorf("Expected empty conclusion, got %q", result.Conclusion())
	}
}
