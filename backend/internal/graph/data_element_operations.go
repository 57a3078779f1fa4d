package graph

import (
	"context"

	"go.uber.org/zap"

	"data-catalog/backend/internal/catalog"
	pkgerrors "data-catalog/backend/pkg/errors"
)

// ============================================================================
// Data Element Operations
// ============================================================================

func dataElementParams(de *catalog.DataElement) map[string]interface{} {
	return map[string]interface{}{
		"id":               de.ID,
		"name":             de.Name,
		"description":      de.Description,
		"technicalName":    de.TechnicalName,
		"dataType":         string(de.DataType),
		"format":           de.Format,
		"domain":           de.Domain,
		"sensitivityLevel": string(de.SensitivityLevel),
		"createdAt":        de.CreatedAt,
		"updatedAt":        de.UpdatedAt,
	}
}

func dataElementFromProps(props map[string]interface{}) *catalog.DataElement {
	return &catalog.DataElement{
		Entity: catalog.Entity{
			ID:          propString(props, "id"),
			Name:        propString(props, "name"),
			Description: propString(props, "description"),
			CreatedAt:   propTime(props, "created_at"),
			UpdatedAt:   propTime(props, "updated_at"),
		},
		TechnicalName:    propString(props, "technical_name"),
		DataType:         catalog.DataType(propString(props, "data_type")),
		Format:           propString(props, "format"),
		Domain:           propString(props, "domain"),
		SensitivityLevel: catalog.SensitivityLevel(propString(props, "sensitivity_level")),
		Embedding:        propVector(props, "embedding"),
	}
}

// CreateDataElement persists a new data element node.
func (r *Repository) CreateDataElement(ctx context.Context, de *catalog.DataElement) error {
	session := r.writeSession(ctx)
	defer session.Close(ctx)

	query := `
		CREATE (de:DataElement {
			id: $id,
			name: $name,
			description: $description,
			technical_name: $technicalName,
			data_type: $dataType,
			format: $format,
			domain: $domain,
			sensitivity_level: $sensitivityLevel,
			created_at: $createdAt,
			updated_at: $updatedAt
		})
		RETURN de.id as id
	`
	params := dataElementParams(de)
	if len(de.Embedding) > 0 {
		query = `
			CREATE (de:DataElement {
				id: $id,
				name: $name,
				description: $description,
				technical_name: $technicalName,
				data_type: $dataType,
				format: $format,
				domain: $domain,
				sensitivity_level: $sensitivityLevel,
				created_at: $createdAt,
				updated_at: $updatedAt,
				embedding: $embedding
			})
			RETURN de.id as id
		`
		params["embedding"] = vectorParam(de.Embedding)
	}

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return pkgerrors.NewRepositoryQueryFailed("create data element", err)
	}
	if _, err = result.Single(ctx); err != nil {
		return pkgerrors.NewRepositoryQueryFailed("create data element", err)
	}

	r.logger.Info("Data element created", zap.String("id", de.ID))
	return nil
}

// GetDataElement retrieves a data element by id.
func (r *Repository) GetDataElement(ctx context.Context, id string) (*catalog.DataElement, error) {
	var de *catalog.DataElement

	err := r.withReadRetry(ctx, "get data element", func() error {
		session := r.readSession(ctx)
		defer session.Close(ctx)

		result, err := session.Run(ctx,
			`MATCH (de:DataElement {id: $id}) RETURN de`,
			map[string]interface{}{"id": id})
		if err != nil {
			return err
		}

		de = nil
		if result.Next(ctx) {
			if node, ok := nodeFromRecord(result.Record(), "de"); ok {
				de = dataElementFromProps(node.Props)
			}
		}
		return result.Err()
	})
	if err != nil {
		return nil, err
	}
	if de == nil {
		return nil, pkgerrors.NewEntityNotFound("data element", id)
	}
	return de, nil
}

// UpdateDataElement replaces the mutable fields; embedding only when fresh.
func (r *Repository) UpdateDataElement(ctx context.Context, de *catalog.DataElement) error {
	session := r.writeSession(ctx)
	defer session.Close(ctx)

	query := `
		MATCH (de:DataElement {id: $id})
		SET de.name = $name,
		    de.description = $description,
		    de.technical_name = $technicalName,
		    de.data_type = $dataType,
		    de.format = $format,
		    de.domain = $domain,
		    de.sensitivity_level = $sensitivityLevel,
		    de.updated_at = $updatedAt
		RETURN de.id as id
	`
	params := dataElementParams(de)
	if len(de.Embedding) > 0 {
		query = `
			MATCH (de:DataElement {id: $id})
			SET de.name = $name,
			    de.description = $description,
			    de.technical_name = $technicalName,
			    de.data_type = $dataType,
			    de.format = $format,
			    de.domain = $domain,
			    de.sensitivity_level = $sensitivityLevel,
			    de.updated_at = $updatedAt,
			    de.embedding = $embedding
			RETURN de.id as id
		`
		params["embedding"] = vectorParam(de.Embedding)
	}

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return pkgerrors.NewRepositoryQueryFailed("update data element", err)
	}
	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return pkgerrors.NewRepositoryQueryFailed("update data element", err)
		}
		return pkgerrors.NewEntityNotFound("data element", de.ID)
	}

	r.logger.Info("Data element updated", zap.String("id", de.ID))
	return nil
}

// DeleteDataElement removes a data element and detaches all its edges.
func (r *Repository) DeleteDataElement(ctx context.Context, id string) error {
	if _, err := r.GetDataElement(ctx, id); err != nil {
		return err
	}

	session := r.writeSession(ctx)
	defer session.Close(ctx)

	_, err := session.Run(ctx,
		`MATCH (de:DataElement {id: $id}) DETACH DELETE de`,
		map[string]interface{}{"id": id})
	if err != nil {
		return pkgerrors.NewRepositoryQueryFailed("delete data element", err)
	}

	r.logger.Info("Data element deleted", zap.String("id", id))
	return nil
}

// ListDataElements returns data elements ordered by name.
func (r *Repository) ListDataElements(ctx context.Context, limit, offset int) ([]catalog.DataElement, error) {
	var elements []catalog.DataElement

	err := r.withReadRetry(ctx, "list data elements", func() error {
		session := r.readSession(ctx)
		defer session.Close(ctx)

		result, err := session.Run(ctx, `
			MATCH (de:DataElement)
			RETURN de
			ORDER BY de.name
			SKIP $offset
			LIMIT $limit
		`, map[string]interface{}{"offset": offset, "limit": limit})
		if err != nil {
			return err
		}

		elements = elements[:0]
		for result.Next(ctx) {
			if node, ok := nodeFromRecord(result.Record(), "de"); ok {
				elements = append(elements, *dataElementFromProps(node.Props))
			}
		}
		return result.Err()
	})
	if err != nil {
		return nil, err
	}
	return elements, nil
}

// DataElementsWithEmbeddings returns the candidate projection for every data
// element carrying an embedding.
func (r *Repository) DataElementsWithEmbeddings(ctx context.Context) ([]catalog.EmbeddingCandidate, error) {
	return r.candidates(ctx, "data element candidates", `
		MATCH (de:DataElement)
		WHERE de.embedding IS NOT NULL
		RETURN de.id as id, de.name as name, de.embedding as embedding
	`)
}

// LinkDataElementToBusinessObject creates a CONTAINS edge from the business
// object to the data element.
func (r *Repository) LinkDataElementToBusinessObject(ctx context.Context, elementID, objectID string) error {
	err := r.mergeLink(ctx, "link data element to business object", `
		MATCH (bo:BusinessObject {id: $objectID})
		MATCH (de:DataElement {id: $elementID})
		MERGE (bo)-[:CONTAINS]->(de)
		RETURN de.id as id
	`, map[string]interface{}{"objectID": objectID, "elementID": elementID})
	if err == errNoMatch {
		return pkgerrors.NewEntityNotFound("data element or business object", elementID+"/"+objectID)
	}
	if err != nil {
		return pkgerrors.NewRepositoryQueryFailed("link data element to business object", err)
	}

	r.logger.Info("Data element linked to business object",
		zap.String("element_id", elementID),
		zap.String("object_id", objectID),
	)
	return nil
}

// DataElementsForBusinessObject returns the full data elements contained in
// a business object.
func (r *Repository) DataElementsForBusinessObject(ctx context.Context, objectID string) ([]catalog.DataElement, error) {
	var elements []catalog.DataElement

	err := r.withReadRetry(ctx, "data elements for business object", func() error {
		session := r.readSession(ctx)
		defer session.Close(ctx)

		result, err := session.Run(ctx, `
			MATCH (bo:BusinessObject {id: $objectID})-[:CONTAINS]->(de:DataElement)
			RETURN de
			ORDER BY de.name
		`, map[string]interface{}{"objectID": objectID})
		if err != nil {
			return err
		}

		elements = elements[:0]
		for result.Next(ctx) {
			if node, ok := nodeFromRecord(result.Record(), "de"); ok {
				elements = append(elements, *dataElementFromProps(node.Props))
			}
		}
		return result.Err()
	})
	if err != nil {
		return nil, err
	}
	return elements, nil
}

// DataElementRefsForBusinessObject returns (id, name) references for the
// elements contained in a business object.
func (r *Repository) DataElementRefsForBusinessObject(ctx context.Context, objectID string) ([]catalog.EntityRef, error) {
	return r.refs(ctx, "data element refs for business object", `
		MATCH (bo:BusinessObject {id: $objectID})-[:CONTAINS]->(de:DataElement)
		RETURN de.id as id, de.name as name
		ORDER BY de.name
	`, map[string]interface{}{"objectID": objectID})
}

// DataElementRefsForRule returns (id, name) references for the elements a
// rule governs.
func (r *Repository) DataElementRefsForRule(ctx context.Context, ruleID string) ([]catalog.EntityRef, error) {
	return r.refs(ctx, "data element refs for rule", `
		MATCH (ru:Rule {id: $ruleID})-[:GOVERNS]->(de:DataElement)
		RETURN de.id as id, de.name as name
		ORDER BY de.name
	`, map[string]interface{}{"ruleID": ruleID})
}
