package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"data-catalog/backend/internal/catalog"
)

// stubRepo overrides just the methods a test exercises; calls to anything
// else panic through the embedded nil interface.
type stubRepo struct {
	CatalogRepository

	createdBO *catalog.BusinessObject
	existing  *catalog.BusinessObject
	updatedBO *catalog.BusinessObject
}

func (r *stubRepo) CreateBusinessObject(ctx context.Context, bo *catalog.BusinessObject) error {
	r.createdBO = bo
	return nil
}

func (r *stubRepo) GetBusinessObject(ctx context.Context, id string) (*catalog.BusinessObject, error) {
	return r.existing, nil
}

func (r *stubRepo) UpdateBusinessObject(ctx context.Context, bo *catalog.BusinessObject) error {
	r.updatedBO = bo
	return nil
}

type stubEmbedder struct {
	vector []float32
	err    error
}

func (e *stubEmbedder) ForEntity(ctx context.Context, entity catalog.Embeddable) ([]float32, error) {
	return e.vector, e.err
}

func newCatalogRouter(repo CatalogRepository, embedder EntityEmbedder) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewServer(repo, embedder, &stubSearcher{}, &stubAnalyzer{}).Router(false)
}

func TestCreateBusinessObject_EmbedderFailureStillPersists(t *testing.T) {
	repo := &stubRepo{}
	embedder := &stubEmbedder{err: errors.New("embeddings API down")}
	router := newCatalogRouter(repo, embedder)

	body, _ := json.Marshal(map[string]interface{}{
		"name":        "Invoice",
		"description": "A customer bill",
		"domain":      "Finance",
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/business-objects", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, repo.createdBO)
	assert.Equal(t, "Invoice", repo.createdBO.Name)
	assert.Nil(t, repo.createdBO.Embedding)
}

func TestCreateBusinessObject_StoresEmbedding(t *testing.T) {
	repo := &stubRepo{}
	embedder := &stubEmbedder{vector: []float32{0.1, 0.2}}
	router := newCatalogRouter(repo, embedder)

	body, _ := json.Marshal(map[string]interface{}{"name": "Invoice"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/business-objects", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, repo.createdBO)
	assert.Equal(t, []float32{0.1, 0.2}, repo.createdBO.Embedding)
}

func TestUpdateBusinessObject_EmbedderFailureStillPersists(t *testing.T) {
	created := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	repo := &stubRepo{
		existing: &catalog.BusinessObject{
			Entity: catalog.Entity{
				ID:        "BO-TEST1234",
				Name:      "Invoice",
				CreatedAt: created,
			},
			Embedding: []float32{0.9},
		},
	}
	embedder := &stubEmbedder{err: errors.New("embeddings API down")}
	router := newCatalogRouter(repo, embedder)

	body, _ := json.Marshal(map[string]interface{}{"name": "Invoice v2"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/api/v1/business-objects/BO-TEST1234", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, repo.updatedBO)
	assert.Equal(t, "Invoice v2", repo.updatedBO.Name)
	assert.Equal(t, created, repo.updatedBO.CreatedAt)
	// The repository keeps the stored vector when none is supplied.
	assert.Nil(t, repo.updatedBO.Embedding)
}

func TestCreateBusinessObject_MissingName(t *testing.T) {
	repo := &stubRepo{}
	router := newCatalogRouter(repo, nil)

	body, _ := json.Marshal(map[string]interface{}{"description": "no name"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/business-objects", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, repo.createdBO)
}
