package api

import (
	"context"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"data-catalog/backend/internal/catalog"
)

const (
	defaultPageLimit = 100
	maxPageLimit     = 500
)

// embedText computes the embedding for an entity projection. Failures are
// logged and swallowed so writes succeed without a vector.
func (s *Server) embedText(ctx context.Context, entity catalog.Embeddable, id string) []float32 {
	if s.embedder == nil {
		return nil
	}
	vector, err := s.embedder.ForEntity(ctx, entity)
	if err != nil {
		s.logger.Warn("Embedding generation failed, storing entity without vector",
			zap.String("id", id),
			zap.Error(err),
		)
		return nil
	}
	return vector
}

// pagination reads skip/limit query params with sane bounds.
func pagination(c *gin.Context) (skip, limit int) {
	skip, _ = strconv.Atoi(c.DefaultQuery("skip", "0"))
	if skip < 0 {
		skip = 0
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageLimit)))
	if limit < 1 || limit > maxPageLimit {
		limit = defaultPageLimit
	}
	return skip, limit
}

// queryKinds collects entity kinds from repeated "types" params, splitting
// comma separated values. An empty result means all kinds.
func queryKinds(c *gin.Context) []string {
	var kinds []string
	for _, raw := range c.QueryArray("types") {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				kinds = append(kinds, part)
			}
		}
	}
	return kinds
}
