package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"data-catalog/backend/internal/catalog"
	pkgerrors "data-catalog/backend/pkg/errors"
)

func validateDataElement(de *catalog.DataElement) error {
	if de.Name == "" {
		return pkgerrors.NewValidationFailed("name", "must not be empty")
	}
	if de.TechnicalName == "" {
		return pkgerrors.NewValidationFailed("technical_name", "must not be empty")
	}
	if de.DataType == "" {
		return pkgerrors.NewValidationFailed("data_type", "must not be empty")
	}
	return nil
}

func (s *Server) createDataElement(c *gin.Context) {
	var de catalog.DataElement
	if err := c.ShouldBindJSON(&de); err != nil {
		s.respondError(c, pkgerrors.NewValidationFailed("body", err.Error()))
		return
	}
	if err := validateDataElement(&de); err != nil {
		s.respondError(c, err)
		return
	}

	now := time.Now().UTC()
	de.ID = catalog.NewID(catalog.KindDataElement)
	de.CreatedAt = now
	de.UpdatedAt = now
	de.Embedding = s.embedText(c.Request.Context(), &de, de.ID)

	if err := s.repo.CreateDataElement(c.Request.Context(), &de); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, de)
}

func (s *Server) getDataElement(c *gin.Context) {
	de, err := s.repo.GetDataElement(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, de)
}

func (s *Server) updateDataElement(c *gin.Context) {
	id := c.Param("id")
	existing, err := s.repo.GetDataElement(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}

	var de catalog.DataElement
	if err := c.ShouldBindJSON(&de); err != nil {
		s.respondError(c, pkgerrors.NewValidationFailed("body", err.Error()))
		return
	}
	if err := validateDataElement(&de); err != nil {
		s.respondError(c, err)
		return
	}

	de.ID = id
	de.CreatedAt = existing.CreatedAt
	de.UpdatedAt = time.Now().UTC()
	de.Embedding = s.embedText(c.Request.Context(), &de, id)

	if err := s.repo.UpdateDataElement(c.Request.Context(), &de); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, de)
}

func (s *Server) deleteDataElement(c *gin.Context) {
	if err := s.repo.DeleteDataElement(c.Request.Context(), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listDataElements(c *gin.Context) {
	skip, limit := pagination(c)
	elements, err := s.repo.ListDataElements(c.Request.Context(), limit, skip)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, elements)
}

func (s *Server) dataElementsByBusinessObject(c *gin.Context) {
	elements, err := s.repo.DataElementsForBusinessObject(c.Request.Context(), c.Param("objectID"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, elements)
}

func (s *Server) linkDataElementToBusinessObject(c *gin.Context) {
	elementID := c.Param("id")
	objectID := c.Param("objectID")
	if err := s.repo.LinkDataElementToBusinessObject(c.Request.Context(), elementID, objectID); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data_element_id": elementID, "business_object_id": objectID, "relationship": "CONTAINS"})
}
