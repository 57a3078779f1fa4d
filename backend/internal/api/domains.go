package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"data-catalog/backend/internal/catalog"
	pkgerrors "data-catalog/backend/pkg/errors"
)

func validateDomain(d *catalog.Domain) error {
	if d.Name == "" {
		return pkgerrors.NewValidationFailed("name", "must not be empty")
	}
	if d.Owner == "" {
		return pkgerrors.NewValidationFailed("owner", "must not be empty")
	}
	return nil
}

func (s *Server) createDomain(c *gin.Context) {
	var d catalog.Domain
	if err := c.ShouldBindJSON(&d); err != nil {
		s.respondError(c, pkgerrors.NewValidationFailed("body", err.Error()))
		return
	}
	if err := validateDomain(&d); err != nil {
		s.respondError(c, err)
		return
	}

	now := time.Now().UTC()
	d.ID = catalog.NewID(catalog.KindDomain)
	d.CreatedAt = now
	d.UpdatedAt = now
	d.Embedding = s.embedText(c.Request.Context(), &d, d.ID)

	if err := s.repo.CreateDomain(c.Request.Context(), &d); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (s *Server) getDomain(c *gin.Context) {
	d, err := s.repo.GetDomain(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (s *Server) updateDomain(c *gin.Context) {
	id := c.Param("id")
	existing, err := s.repo.GetDomain(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}

	var d catalog.Domain
	if err := c.ShouldBindJSON(&d); err != nil {
		s.respondError(c, pkgerrors.NewValidationFailed("body", err.Error()))
		return
	}
	if err := validateDomain(&d); err != nil {
		s.respondError(c, err)
		return
	}

	d.ID = id
	d.CreatedAt = existing.CreatedAt
	d.UpdatedAt = time.Now().UTC()
	d.Embedding = s.embedText(c.Request.Context(), &d, id)

	if err := s.repo.UpdateDomain(c.Request.Context(), &d); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (s *Server) deleteDomain(c *gin.Context) {
	if err := s.repo.DeleteDomain(c.Request.Context(), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listDomains(c *gin.Context) {
	skip, limit := pagination(c)
	domains, err := s.repo.ListDomains(c.Request.Context(), limit, skip)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, domains)
}
