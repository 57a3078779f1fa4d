package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	pkgerrors "data-catalog/backend/pkg/errors"
)

type analyzeSearchRequest struct {
	Query string   `json:"query" binding:"required"`
	Types []string `json:"types"`
}

func (s *Server) analyzeSearch(c *gin.Context) {
	var req analyzeSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, pkgerrors.NewValidationFailed("body", err.Error()))
		return
	}

	result, err := s.analyzer.AnalyzeSearch(c.Request.Context(), req.Query, req.Types)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) analyzeEntity(c *gin.Context) {
	result, err := s.analyzer.AnalyzeEntity(c.Request.Context(), c.Param("kind"), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) analyzeRule(c *gin.Context) {
	result, err := s.analyzer.AnalyzeRule(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
