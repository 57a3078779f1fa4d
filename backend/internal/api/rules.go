package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"data-catalog/backend/internal/catalog"
	pkgerrors "data-catalog/backend/pkg/errors"
)

func validateRule(ru *catalog.Rule) error {
	if ru.Name == "" {
		return pkgerrors.NewValidationFailed("name", "must not be empty")
	}
	if ru.Category == "" {
		return pkgerrors.NewValidationFailed("category", "must not be empty")
	}
	if ru.ObligationLevel == "" {
		return pkgerrors.NewValidationFailed("obligation_level", "must not be empty")
	}
	return nil
}

func (s *Server) createRule(c *gin.Context) {
	var ru catalog.Rule
	if err := c.ShouldBindJSON(&ru); err != nil {
		s.respondError(c, pkgerrors.NewValidationFailed("body", err.Error()))
		return
	}
	if err := validateRule(&ru); err != nil {
		s.respondError(c, err)
		return
	}

	now := time.Now().UTC()
	ru.ID = catalog.NewID(catalog.KindRule)
	ru.CreatedAt = now
	ru.UpdatedAt = now
	ru.Embedding = s.embedText(c.Request.Context(), &ru, ru.ID)

	if err := s.repo.CreateRule(c.Request.Context(), &ru); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ru)
}

func (s *Server) getRule(c *gin.Context) {
	ru, err := s.repo.GetRule(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ru)
}

func (s *Server) updateRule(c *gin.Context) {
	id := c.Param("id")
	existing, err := s.repo.GetRule(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}

	var ru catalog.Rule
	if err := c.ShouldBindJSON(&ru); err != nil {
		s.respondError(c, pkgerrors.NewValidationFailed("body", err.Error()))
		return
	}
	if err := validateRule(&ru); err != nil {
		s.respondError(c, err)
		return
	}

	ru.ID = id
	ru.CreatedAt = existing.CreatedAt
	ru.UpdatedAt = time.Now().UTC()
	ru.Embedding = s.embedText(c.Request.Context(), &ru, id)

	if err := s.repo.UpdateRule(c.Request.Context(), &ru); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ru)
}

func (s *Server) deleteRule(c *gin.Context) {
	if err := s.repo.DeleteRule(c.Request.Context(), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listRules(c *gin.Context) {
	skip, limit := pagination(c)
	rules, err := s.repo.ListRules(c.Request.Context(), limit, skip)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rules)
}

func (s *Server) linkRuleToDataElement(c *gin.Context) {
	ruleID := c.Param("id")
	elementID := c.Param("elementID")
	if err := s.repo.LinkRuleToDataElement(c.Request.Context(), ruleID, elementID); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rule_id": ruleID, "data_element_id": elementID, "relationship": "GOVERNS"})
}

func (s *Server) linkRuleToDomain(c *gin.Context) {
	ruleID := c.Param("id")
	domainID := c.Param("domainID")
	if err := s.repo.LinkRuleToDomain(c.Request.Context(), ruleID, domainID); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rule_id": ruleID, "domain_id": domainID, "relationship": "ENFORCES"})
}
