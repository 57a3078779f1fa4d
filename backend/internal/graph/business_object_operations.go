package graph

import (
	"context"

	"go.uber.org/zap"

	"data-catalog/backend/internal/catalog"
	pkgerrors "data-catalog/backend/pkg/errors"
)

// ============================================================================
// Business Object Operations
// ============================================================================

func businessObjectParams(bo *catalog.BusinessObject) map[string]interface{} {
	return map[string]interface{}{
		"id":          bo.ID,
		"name":        bo.Name,
		"description": bo.Description,
		"domain":      bo.Domain,
		"steward":     bo.Steward,
		"criticality": bo.Criticality,
		"createdAt":   bo.CreatedAt,
		"updatedAt":   bo.UpdatedAt,
	}
}

func businessObjectFromProps(props map[string]interface{}) *catalog.BusinessObject {
	return &catalog.BusinessObject{
		Entity: catalog.Entity{
			ID:          propString(props, "id"),
			Name:        propString(props, "name"),
			Description: propString(props, "description"),
			CreatedAt:   propTime(props, "created_at"),
			UpdatedAt:   propTime(props, "updated_at"),
		},
		Domain:      propString(props, "domain"),
		Steward:     propString(props, "steward"),
		Criticality: propInt(props, "criticality"),
		Embedding:   propVector(props, "embedding"),
	}
}

// CreateBusinessObject persists a new business object node. The embedding is
// written in the same statement when present.
func (r *Repository) CreateBusinessObject(ctx context.Context, bo *catalog.BusinessObject) error {
	session := r.writeSession(ctx)
	defer session.Close(ctx)

	query := `
		CREATE (bo:BusinessObject {
			id: $id,
			name: $name,
			description: $description,
			domain: $domain,
			steward: $steward,
			criticality: $criticality,
			created_at: $createdAt,
			updated_at: $updatedAt
		})
		RETURN bo.id as id
	`
	params := businessObjectParams(bo)
	if len(bo.Embedding) > 0 {
		query = `
			CREATE (bo:BusinessObject {
				id: $id,
				name: $name,
				description: $description,
				domain: $domain,
				steward: $steward,
				criticality: $criticality,
				created_at: $createdAt,
				updated_at: $updatedAt,
				embedding: $embedding
			})
			RETURN bo.id as id
		`
		params["embedding"] = vectorParam(bo.Embedding)
	}

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return pkgerrors.NewRepositoryQueryFailed("create business object", err)
	}
	if _, err = result.Single(ctx); err != nil {
		return pkgerrors.NewRepositoryQueryFailed("create business object", err)
	}

	r.logger.Info("Business object created", zap.String("id", bo.ID))
	return nil
}

// GetBusinessObject retrieves a business object by id.
func (r *Repository) GetBusinessObject(ctx context.Context, id string) (*catalog.BusinessObject, error) {
	var bo *catalog.BusinessObject

	err := r.withReadRetry(ctx, "get business object", func() error {
		session := r.readSession(ctx)
		defer session.Close(ctx)

		result, err := session.Run(ctx,
			`MATCH (bo:BusinessObject {id: $id}) RETURN bo`,
			map[string]interface{}{"id": id})
		if err != nil {
			return err
		}

		bo = nil
		if result.Next(ctx) {
			if node, ok := nodeFromRecord(result.Record(), "bo"); ok {
				bo = businessObjectFromProps(node.Props)
			}
		}
		return result.Err()
	})
	if err != nil {
		return nil, err
	}
	if bo == nil {
		return nil, pkgerrors.NewEntityNotFound("business object", id)
	}
	return bo, nil
}

// UpdateBusinessObject replaces the mutable fields of an existing node. The
// embedding property is only overwritten when a fresh vector is supplied, so
// a failed regeneration keeps the previous one.
func (r *Repository) UpdateBusinessObject(ctx context.Context, bo *catalog.BusinessObject) error {
	session := r.writeSession(ctx)
	defer session.Close(ctx)

	query := `
		MATCH (bo:BusinessObject {id: $id})
		SET bo.name = $name,
		    bo.description = $description,
		    bo.domain = $domain,
		    bo.steward = $steward,
		    bo.criticality = $criticality,
		    bo.updated_at = $updatedAt
		RETURN bo.id as id
	`
	params := businessObjectParams(bo)
	if len(bo.Embedding) > 0 {
		query = `
			MATCH (bo:BusinessObject {id: $id})
			SET bo.name = $name,
			    bo.description = $description,
			    bo.domain = $domain,
			    bo.steward = $steward,
			    bo.criticality = $criticality,
			    bo.updated_at = $updatedAt,
			    bo.embedding = $embedding
			RETURN bo.id as id
		`
		params["embedding"] = vectorParam(bo.Embedding)
	}

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return pkgerrors.NewRepositoryQueryFailed("update business object", err)
	}
	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return pkgerrors.NewRepositoryQueryFailed("update business object", err)
		}
		return pkgerrors.NewEntityNotFound("business object", bo.ID)
	}

	r.logger.Info("Business object updated", zap.String("id", bo.ID))
	return nil
}

// DeleteBusinessObject removes a business object and detaches all its edges.
func (r *Repository) DeleteBusinessObject(ctx context.Context, id string) error {
	if _, err := r.GetBusinessObject(ctx, id); err != nil {
		return err
	}

	session := r.writeSession(ctx)
	defer session.Close(ctx)

	_, err := session.Run(ctx,
		`MATCH (bo:BusinessObject {id: $id}) DETACH DELETE bo`,
		map[string]interface{}{"id": id})
	if err != nil {
		return pkgerrors.NewRepositoryQueryFailed("delete business object", err)
	}

	r.logger.Info("Business object deleted", zap.String("id", id))
	return nil
}

// ListBusinessObjects returns business objects ordered by name.
func (r *Repository) ListBusinessObjects(ctx context.Context, limit, offset int) ([]catalog.BusinessObject, error) {
	var objects []catalog.BusinessObject

	err := r.withReadRetry(ctx, "list business objects", func() error {
		session := r.readSession(ctx)
		defer session.Close(ctx)

		result, err := session.Run(ctx, `
			MATCH (bo:BusinessObject)
			RETURN bo
			ORDER BY bo.name
			SKIP $offset
			LIMIT $limit
		`, map[string]interface{}{"offset": offset, "limit": limit})
		if err != nil {
			return err
		}

		objects = objects[:0]
		for result.Next(ctx) {
			if node, ok := nodeFromRecord(result.Record(), "bo"); ok {
				objects = append(objects, *businessObjectFromProps(node.Props))
			}
		}
		return result.Err()
	})
	if err != nil {
		return nil, err
	}
	return objects, nil
}

// BusinessObjectsWithEmbeddings returns the (id, name, embedding) candidate
// projection for every business object that carries an embedding.
func (r *Repository) BusinessObjectsWithEmbeddings(ctx context.Context) ([]catalog.EmbeddingCandidate, error) {
	return r.candidates(ctx, "business object candidates", `
		MATCH (bo:BusinessObject)
		WHERE bo.embedding IS NOT NULL
		RETURN bo.id as id, bo.name as name, bo.embedding as embedding
	`)
}

// LinkBusinessObjectToDomain creates a BELONGS_TO edge. MERGE keeps the
// operation idempotent under retry.
func (r *Repository) LinkBusinessObjectToDomain(ctx context.Context, objectID, domainID string) error {
	err := r.mergeLink(ctx, "link business object to domain", `
		MATCH (bo:BusinessObject {id: $objectID})
		MATCH (d:Domain {id: $domainID})
		MERGE (bo)-[:BELONGS_TO]->(d)
		RETURN bo.id as id
	`, map[string]interface{}{"objectID": objectID, "domainID": domainID})
	if err == errNoMatch {
		return pkgerrors.NewEntityNotFound("business object or domain", objectID+"/"+domainID)
	}
	if err != nil {
		return pkgerrors.NewRepositoryQueryFailed("link business object to domain", err)
	}

	r.logger.Info("Business object linked to domain",
		zap.String("object_id", objectID),
		zap.String("domain_id", domainID),
	)
	return nil
}

// BusinessObjectsForDomain returns the full business objects that belong to
// a domain.
func (r *Repository) BusinessObjectsForDomain(ctx context.Context, domainID string) ([]catalog.BusinessObject, error) {
	var objects []catalog.BusinessObject

	err := r.withReadRetry(ctx, "business objects for domain", func() error {
		session := r.readSession(ctx)
		defer session.Close(ctx)

		result, err := session.Run(ctx, `
			MATCH (bo:BusinessObject)-[:BELONGS_TO]->(d:Domain {id: $domainID})
			RETURN bo
			ORDER BY bo.name
		`, map[string]interface{}{"domainID": domainID})
		if err != nil {
			return err
		}

		objects = objects[:0]
		for result.Next(ctx) {
			if node, ok := nodeFromRecord(result.Record(), "bo"); ok {
				objects = append(objects, *businessObjectFromProps(node.Props))
			}
		}
		return result.Err()
	})
	if err != nil {
		return nil, err
	}
	return objects, nil
}

// BusinessObjectRefsForDomain returns (id, name) references for the business
// objects belonging to a domain.
func (r *Repository) BusinessObjectRefsForDomain(ctx context.Context, domainID string) ([]catalog.EntityRef, error) {
	return r.refs(ctx, "business object refs for domain", `
		MATCH (bo:BusinessObject)-[:BELONGS_TO]->(d:Domain {id: $domainID})
		RETURN bo.id as id, bo.name as name
		ORDER BY bo.name
	`, map[string]interface{}{"domainID": domainID})
}

// BusinessObjectRefForDataElement returns the business object containing a
// data element, or nil when the element is not contained anywhere.
func (r *Repository) BusinessObjectRefForDataElement(ctx context.Context, elementID string) (*catalog.EntityRef, error) {
	return r.refSingle(ctx, "business object ref for data element", `
		MATCH (bo:BusinessObject)-[:CONTAINS]->(de:DataElement {id: $elementID})
		RETURN bo.id as id, bo.name as name
	`, map[string]interface{}{"elementID": elementID})
}
