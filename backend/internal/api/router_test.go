package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"data-catalog/backend/internal/analysis"
	"data-catalog/backend/internal/catalog"
	"data-catalog/backend/internal/search"
	pkgerrors "data-catalog/backend/pkg/errors"
)

type stubSearcher struct {
	results map[catalog.Kind][]catalog.SearchResult
	related map[string][]catalog.EntityRef
	err     error

	gotQuery string
	gotKinds []string
	gotOpts  search.Options
}

func (s *stubSearcher) SearchByText(ctx context.Context, query string, kinds []string, opts search.Options) (map[catalog.Kind][]catalog.SearchResult, error) {
	s.gotQuery = query
	s.gotKinds = kinds
	s.gotOpts = opts
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

func (s *stubSearcher) FindRelated(ctx context.Context, kind, id string) (map[string][]catalog.EntityRef, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.related, nil
}

type stubAnalyzer struct {
	result *analysis.Result
	err    error
}

func (s *stubAnalyzer) Available() bool { return s.err == nil }

func (s *stubAnalyzer) AnalyzeSearch(ctx context.Context, query string, kinds []string) (*analysis.Result, error) {
	return s.result, s.err
}

func (s *stubAnalyzer) AnalyzeEntity(ctx context.Context, kind, id string) (*analysis.Result, error) {
	return s.result, s.err
}

func (s *stubAnalyzer) AnalyzeRule(ctx context.Context, id string) (*analysis.Result, error) {
	return s.result, s.err
}

func newTestRouter(searcher SearchService, analyzer AnalysisService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	server := NewServer(nil, nil, searcher, analyzer)
	return server.Router(false)
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(&stubSearcher{}, &stubAnalyzer{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "healthy", response["status"])
}

func TestSimilaritySearch(t *testing.T) {
	searcher := &stubSearcher{
		results: map[catalog.Kind][]catalog.SearchResult{
			catalog.KindBusinessObject: {{ID: "BO-1", Name: "Invoice", Similarity: 0.91}},
			catalog.KindDataElement:    {},
			catalog.KindDomain:         {},
			catalog.KindRule:           {},
		},
	}
	router := newTestRouter(searcher, &stubAnalyzer{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/search/similarity?query=invoices&types=business_object,rule&limit=3&threshold=0.6", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "invoices", searcher.gotQuery)
	assert.Equal(t, []string{"business_object", "rule"}, searcher.gotKinds)
	assert.Equal(t, 3, searcher.gotOpts.TopK)
	assert.Equal(t, 0.6, searcher.gotOpts.Threshold)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "invoices", response["query"])
	hits, ok := response["business_objects"].([]interface{})
	assert.True(t, ok)
	assert.Len(t, hits, 1)
	assert.Contains(t, response, "rules")
}

func TestSimilaritySearch_MissingQuery(t *testing.T) {
	router := newTestRouter(&stubSearcher{}, &stubAnalyzer{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/search/similarity", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSimilaritySearch_InvalidLimit(t *testing.T) {
	router := newTestRouter(&stubSearcher{}, &stubAnalyzer{})

	for _, limit := range []string{"0", "21", "abc", "-1"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/search/similarity?query=x&limit="+limit, nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, "limit=%s", limit)
	}
}

func TestSimilaritySearch_InvalidThreshold(t *testing.T) {
	router := newTestRouter(&stubSearcher{}, &stubAnalyzer{})

	for _, threshold := range []string{"-0.1", "1.1", "abc"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/search/similarity?query=x&threshold="+threshold, nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, "threshold=%s", threshold)
	}
}

func TestSimilaritySearch_InvalidKind(t *testing.T) {
	searcher := &stubSearcher{err: pkgerrors.NewInvalidEntityKind("widget")}
	router := newTestRouter(searcher, &stubAnalyzer{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/search/similarity?query=x&types=widget", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSimilaritySearch_SearchFailure(t *testing.T) {
	searcher := &stubSearcher{err: pkgerrors.NewSearchFailed("x", nil)}
	router := newTestRouter(searcher, &stubAnalyzer{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/search/similarity?query=x", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRelatedEndpoint(t *testing.T) {
	searcher := &stubSearcher{
		related: map[string][]catalog.EntityRef{
			"data_elements": {{ID: "DE-1", Name: "Amount"}},
			"domains":       {{ID: "DOM-1", Name: "Finance"}},
		},
	}
	router := newTestRouter(searcher, &stubAnalyzer{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/search/related/business_object/BO-1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "business_object", response["entity_type"])
	assert.Equal(t, "BO-1", response["entity_id"])
	assert.Contains(t, response, "related")
}

func TestAnalyzeSearch_InvalidRequest(t *testing.T) {
	router := newTestRouter(&stubSearcher{}, &stubAnalyzer{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/analysis/search", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyzeSearch_Unavailable(t *testing.T) {
	analyzer := &stubAnalyzer{err: pkgerrors.ErrAnalysisUnavailable}
	router := newTestRouter(&stubSearcher{}, analyzer)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/analysis/search", bytes.NewBufferString(`{"query":"invoices"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAnalyzeRule(t *testing.T) {
	analyzer := &stubAnalyzer{
		result: &analysis.Result{
			Operation: "analyze_rule",
			Model:     "test-model",
			Steps: []analysis.Step{
				{Role: "Business Analyst", Task: "interpret", Output: "The rule guards invoice totals."},
			},
		},
	}
	router := newTestRouter(&stubSearcher{}, analyzer)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/analysis/rule/R-1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response analysis.Result
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "analyze_rule", response.Operation)
	assert.Len(t, response.Steps, 1)
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(&stubSearcher{}, &stubAnalyzer{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("OPTIONS", "/api/v1/search/similarity", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
