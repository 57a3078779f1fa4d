package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"data-catalog/backend/internal/analysis"
	"data-catalog/backend/internal/catalog"
	"data-catalog/backend/internal/embedding"
	"data-catalog/backend/internal/graph"
	"data-catalog/backend/internal/search"
	pkgerrors "data-catalog/backend/pkg/errors"
	"data-catalog/backend/pkg/logger"
)

// CatalogRepository is the persistence surface the handlers consume,
// satisfied by *graph.Repository.
type CatalogRepository interface {
	CreateBusinessObject(ctx context.Context, bo *catalog.BusinessObject) error
	GetBusinessObject(ctx context.Context, id string) (*catalog.BusinessObject, error)
	UpdateBusinessObject(ctx context.Context, bo *catalog.BusinessObject) error
	DeleteBusinessObject(ctx context.Context, id string) error
	ListBusinessObjects(ctx context.Context, limit, offset int) ([]catalog.BusinessObject, error)
	BusinessObjectsForDomain(ctx context.Context, domainID string) ([]catalog.BusinessObject, error)
	LinkBusinessObjectToDomain(ctx context.Context, objectID, domainID string) error

	CreateDataElement(ctx context.Context, de *catalog.DataElement) error
	GetDataElement(ctx context.Context, id string) (*catalog.DataElement, error)
	UpdateDataElement(ctx context.Context, de *catalog.DataElement) error
	DeleteDataElement(ctx context.Context, id string) error
	ListDataElements(ctx context.Context, limit, offset int) ([]catalog.DataElement, error)
	DataElementsForBusinessObject(ctx context.Context, objectID string) ([]catalog.DataElement, error)
	LinkDataElementToBusinessObject(ctx context.Context, elementID, objectID string) error

	CreateDomain(ctx context.Context, d *catalog.Domain) error
	GetDomain(ctx context.Context, id string) (*catalog.Domain, error)
	UpdateDomain(ctx context.Context, d *catalog.Domain) error
	DeleteDomain(ctx context.Context, id string) error
	ListDomains(ctx context.Context, limit, offset int) ([]catalog.Domain, error)

	CreateRule(ctx context.Context, ru *catalog.Rule) error
	GetRule(ctx context.Context, id string) (*catalog.Rule, error)
	UpdateRule(ctx context.Context, ru *catalog.Rule) error
	DeleteRule(ctx context.Context, id string) error
	ListRules(ctx context.Context, limit, offset int) ([]catalog.Rule, error)
	LinkRuleToDataElement(ctx context.Context, ruleID, elementID string) error
	LinkRuleToDomain(ctx context.Context, ruleID, domainID string) error
}

var _ CatalogRepository = (*graph.Repository)(nil)

// EntityEmbedder produces vectors for entity text projections, satisfied
// by *embedding.Service.
type EntityEmbedder interface {
	ForEntity(ctx context.Context, entity catalog.Embeddable) ([]float32, error)
}

var _ EntityEmbedder = (*embedding.Service)(nil)

// SearchService is the search surface the handlers consume.
type SearchService interface {
	SearchByText(ctx context.Context, query string, kinds []string, opts search.Options) (map[catalog.Kind][]catalog.SearchResult, error)
	FindRelated(ctx context.Context, kind, id string) (map[string][]catalog.EntityRef, error)
}

// AnalysisService is the analysis surface the handlers consume.
type AnalysisService interface {
	Available() bool
	AnalyzeSearch(ctx context.Context, query string, kinds []string) (*analysis.Result, error)
	AnalyzeEntity(ctx context.Context, kind, id string) (*analysis.Result, error)
	AnalyzeRule(ctx context.Context, id string) (*analysis.Result, error)
}

// Server holds the handler dependencies. The embedder may be nil, in which
// case entities are persisted without embeddings.
type Server struct {
	repo     CatalogRepository
	embedder EntityEmbedder
	searcher SearchService
	analyzer AnalysisService
	logger   *zap.Logger
}

// NewServer creates the API server handlers.
func NewServer(repo CatalogRepository, embedder EntityEmbedder, searcher SearchService, analyzer AnalysisService) *Server {
	return &Server{
		repo:     repo,
		embedder: embedder,
		searcher: searcher,
		analyzer: analyzer,
		logger:   logger.Get(),
	}
}

// Router builds the gin engine with all catalog routes mounted under
// /api/v1.
func (s *Server) Router(production bool) *gin.Engine {
	if production {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(requestLogger(s.logger))
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	api := router.Group("/api/v1")
	{
		bo := api.Group("/business-objects")
		{
			bo.POST("", s.createBusinessObject)
			bo.GET("", s.listBusinessObjects)
			bo.GET("/:id", s.getBusinessObject)
			bo.PUT("/:id", s.updateBusinessObject)
			bo.DELETE("/:id", s.deleteBusinessObject)
			bo.GET("/domain/:domainID", s.businessObjectsByDomain)
			bo.POST("/:id/link-domain/:domainID", s.linkBusinessObjectToDomain)
		}

		de := api.Group("/data-elements")
		{
			de.POST("", s.createDataElement)
			de.GET("", s.listDataElements)
			de.GET("/:id", s.getDataElement)
			de.PUT("/:id", s.updateDataElement)
			de.DELETE("/:id", s.deleteDataElement)
			de.GET("/business-object/:objectID", s.dataElementsByBusinessObject)
			de.POST("/:id/link-business-object/:objectID", s.linkDataElementToBusinessObject)
		}

		dom := api.Group("/domains")
		{
			dom.POST("", s.createDomain)
			dom.GET("", s.listDomains)
			dom.GET("/:id", s.getDomain)
			dom.PUT("/:id", s.updateDomain)
			dom.DELETE("/:id", s.deleteDomain)
		}

		ru := api.Group("/rules")
		{
			ru.POST("", s.createRule)
			ru.GET("", s.listRules)
			ru.GET("/:id", s.getRule)
			ru.PUT("/:id", s.updateRule)
			ru.DELETE("/:id", s.deleteRule)
			ru.POST("/:id/link-data-element/:elementID", s.linkRuleToDataElement)
			ru.POST("/:id/link-domain/:domainID", s.linkRuleToDomain)
		}

		sr := api.Group("/search")
		{
			sr.GET("/similarity", s.searchSimilarity)
			sr.GET("/related/:kind/:id", s.searchRelated)
		}

		an := api.Group("/analysis")
		{
			an.POST("/search", s.analyzeSearch)
			an.POST("/entity/:kind/:id", s.analyzeEntity)
			an.POST("/rule/:id", s.analyzeRule)
		}
	}

	return router
}

// respondError maps the error taxonomy onto HTTP status codes.
func (s *Server) respondError(c *gin.Context, err error) {
	switch {
	case pkgerrors.IsErrorType(err, pkgerrors.ErrorTypeValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case pkgerrors.IsErrorType(err, pkgerrors.ErrorTypeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case err == pkgerrors.ErrAnalysisUnavailable:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		s.logger.Error("Request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// requestLogger logs each request with latency and status.
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
