package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"data-catalog/backend/internal/catalog"
	pkgerrors "data-catalog/backend/pkg/errors"
)

func (s *Server) createBusinessObject(c *gin.Context) {
	var bo catalog.BusinessObject
	if err := c.ShouldBindJSON(&bo); err != nil {
		s.respondError(c, pkgerrors.NewValidationFailed("body", err.Error()))
		return
	}
	if bo.Name == "" {
		s.respondError(c, pkgerrors.NewValidationFailed("name", "must not be empty"))
		return
	}

	now := time.Now().UTC()
	bo.ID = catalog.NewID(catalog.KindBusinessObject)
	bo.CreatedAt = now
	bo.UpdatedAt = now
	bo.Embedding = s.embedText(c.Request.Context(), &bo, bo.ID)

	if err := s.repo.CreateBusinessObject(c.Request.Context(), &bo); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bo)
}

func (s *Server) getBusinessObject(c *gin.Context) {
	bo, err := s.repo.GetBusinessObject(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bo)
}

func (s *Server) updateBusinessObject(c *gin.Context) {
	id := c.Param("id")
	existing, err := s.repo.GetBusinessObject(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}

	var bo catalog.BusinessObject
	if err := c.ShouldBindJSON(&bo); err != nil {
		s.respondError(c, pkgerrors.NewValidationFailed("body", err.Error()))
		return
	}
	if bo.Name == "" {
		s.respondError(c, pkgerrors.NewValidationFailed("name", "must not be empty"))
		return
	}

	bo.ID = id
	bo.CreatedAt = existing.CreatedAt
	bo.UpdatedAt = time.Now().UTC()
	// A failed regeneration keeps the stored vector: the repository only
	// writes the embedding property when one is present.
	bo.Embedding = s.embedText(c.Request.Context(), &bo, id)

	if err := s.repo.UpdateBusinessObject(c.Request.Context(), &bo); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bo)
}

func (s *Server) deleteBusinessObject(c *gin.Context) {
	if err := s.repo.DeleteBusinessObject(c.Request.Context(), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listBusinessObjects(c *gin.Context) {
	skip, limit := pagination(c)
	objects, err := s.repo.ListBusinessObjects(c.Request.Context(), limit, skip)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, objects)
}

func (s *Server) businessObjectsByDomain(c *gin.Context) {
	objects, err := s.repo.BusinessObjectsForDomain(c.Request.Context(), c.Param("domainID"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, objects)
}

func (s *Server) linkBusinessObjectToDomain(c *gin.Context) {
	objectID := c.Param("id")
	domainID := c.Param("domainID")
	if err := s.repo.LinkBusinessObjectToDomain(c.Request.Context(), objectID, domainID); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"business_object_id": objectID, "domain_id": domainID, "relationship": "BELONGS_TO"})
}
