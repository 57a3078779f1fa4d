package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"data-catalog/backend/internal/catalog"
	"data-catalog/backend/internal/search"
	pkgerrors "data-catalog/backend/pkg/errors"
)

// pluralKey maps an entity kind to its response key.
var pluralKey = map[catalog.Kind]string{
	catalog.KindBusinessObject: "business_objects",
	catalog.KindDataElement:    "data_elements",
	catalog.KindDomain:         "domains",
	catalog.KindRule:           "rules",
}

func (s *Server) searchSimilarity(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		s.respondError(c, pkgerrors.NewValidationFailed("query", "must not be empty"))
		return
	}

	opts := search.Options{TopK: 0, Threshold: -1}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 20 {
			s.respondError(c, pkgerrors.NewValidationFailed("limit", "must be an integer between 1 and 20"))
			return
		}
		opts.TopK = limit
	}
	if raw := c.Query("threshold"); raw != "" {
		threshold, err := strconv.ParseFloat(raw, 64)
		if err != nil || threshold < 0 || threshold > 1 {
			s.respondError(c, pkgerrors.NewValidationFailed("threshold", "must be a number between 0.0 and 1.0"))
			return
		}
		opts.Threshold = threshold
	}

	results, err := s.searcher.SearchByText(c.Request.Context(), query, queryKinds(c), opts)
	if err != nil {
		s.respondError(c, err)
		return
	}

	response := gin.H{"query": query}
	for kind, hits := range results {
		response[pluralKey[kind]] = hits
	}
	c.JSON(http.StatusOK, response)
}

func (s *Server) searchRelated(c *gin.Context) {
	kind := c.Param("kind")
	id := c.Param("id")

	related, err := s.searcher.FindRelated(c.Request.Context(), kind, id)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entity_type": kind,
		"entity_id":   id,
		"related":     related,
	})
}
