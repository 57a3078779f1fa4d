package graph

import (
	"context"

	"go.uber.org/zap"

	"data-catalog/backend/internal/catalog"
	pkgerrors "data-catalog/backend/pkg/errors"
)

// ============================================================================
// Domain Operations
// ============================================================================

func domainParams(d *catalog.Domain) map[string]interface{} {
	return map[string]interface{}{
		"id":                       d.ID,
		"name":                     d.Name,
		"description":              d.Description,
		"owner":                    d.Owner,
		"steward":                  d.Steward,
		"parentDomainID":           d.ParentDomainID,
		"maturityLevel":            string(d.MaturityLevel),
		"strategicPriority":        d.StrategicPriority,
		"dataClassificationPolicy": d.DataClassificationPolicy,
		"createdAt":                d.CreatedAt,
		"updatedAt":                d.UpdatedAt,
	}
}

func domainFromProps(props map[string]interface{}) *catalog.Domain {
	return &catalog.Domain{
		Entity: catalog.Entity{
			ID:          propString(props, "id"),
			Name:        propString(props, "name"),
			Description: propString(props, "description"),
			CreatedAt:   propTime(props, "created_at"),
			UpdatedAt:   propTime(props, "updated_at"),
		},
		Owner:                    propString(props, "owner"),
		Steward:                  propString(props, "steward"),
		ParentDomainID:           propString(props, "parent_domain_id"),
		MaturityLevel:            catalog.MaturityLevel(propString(props, "maturity_level")),
		StrategicPriority:        propInt(props, "strategic_priority"),
		DataClassificationPolicy: propString(props, "data_classification_policy"),
		Embedding:                propVector(props, "embedding"),
	}
}

// CreateDomain persists a new domain node.
func (r *Repository) CreateDomain(ctx context.Context, d *catalog.Domain) error {
	session := r.writeSession(ctx)
	defer session.Close(ctx)

	query := `
		CREATE (d:Domain {
			id: $id,
			name: $name,
			description: $description,
			owner: $owner,
			steward: $steward,
			parent_domain_id: $parentDomainID,
			maturity_level: $maturityLevel,
			strategic_priority: $strategicPriority,
			data_classification_policy: $dataClassificationPolicy,
			created_at: $createdAt,
			updated_at: $updatedAt
		})
		RETURN d.id as id
	`
	params := domainParams(d)
	if len(d.Embedding) > 0 {
		query = `
			CREATE (d:Domain {
				id: $id,
				name: $name,
				description: $description,
				owner: $owner,
				steward: $steward,
				parent_domain_id: $parentDomainID,
				maturity_level: $maturityLevel,
				strategic_priority: $strategicPriority,
				data_classification_policy: $dataClassificationPolicy,
				created_at: $createdAt,
				updated_at: $updatedAt,
				embedding: $embedding
			})
			RETURN d.id as id
		`
		params["embedding"] = vectorParam(d.Embedding)
	}

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return pkgerrors.NewRepositoryQueryFailed("create domain", err)
	}
	if _, err = result.Single(ctx); err != nil {
		return pkgerrors.NewRepositoryQueryFailed("create domain", err)
	}

	r.logger.Info("Domain created", zap.String("id", d.ID))
	return nil
}

// GetDomain retrieves a domain by id.
func (r *Repository) GetDomain(ctx context.Context, id string) (*catalog.Domain, error) {
	var d *catalog.Domain

	err := r.withReadRetry(ctx, "get domain", func() error {
		session := r.readSession(ctx)
		defer session.Close(ctx)

		result, err := session.Run(ctx,
			`MATCH (d:Domain {id: $id}) RETURN d`,
			map[string]interface{}{"id": id})
		if err != nil {
			return err
		}

		d = nil
		if result.Next(ctx) {
			if node, ok := nodeFromRecord(result.Record(), "d"); ok {
				d = domainFromProps(node.Props)
			}
		}
		return result.Err()
	})
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, pkgerrors.NewEntityNotFound("domain", id)
	}
	return d, nil
}

// UpdateDomain replaces the mutable fields; embedding only when fresh.
func (r *Repository) UpdateDomain(ctx context.Context, d *catalog.Domain) error {
	session := r.writeSession(ctx)
	defer session.Close(ctx)

	query := `
		MATCH (d:Domain {id: $id})
		SET d.name = $name,
		    d.description = $description,
		    d.owner = $owner,
		    d.steward = $steward,
		    d.parent_domain_id = $parentDomainID,
		    d.maturity_level = $maturityLevel,
		    d.strategic_priority = $strategicPriority,
		    d.data_classification_policy = $dataClassificationPolicy,
		    d.updated_at = $updatedAt
		RETURN d.id as id
	`
	params := domainParams(d)
	if len(d.Embedding) > 0 {
		query = `
			MATCH (d:Domain {id: $id})
			SET d.name = $name,
			    d.description = $description,
			    d.owner = $owner,
			    d.steward = $steward,
			    d.parent_domain_id = $parentDomainID,
			    d.maturity_level = $maturityLevel,
			    d.strategic_priority = $strategicPriority,
			    d.data_classification_policy = $dataClassificationPolicy,
			    d.updated_at = $updatedAt,
			    d.embedding = $embedding
			RETURN d.id as id
		`
		params["embedding"] = vectorParam(d.Embedding)
	}

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return pkgerrors.NewRepositoryQueryFailed("update domain", err)
	}
	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return pkgerrors.NewRepositoryQueryFailed("update domain", err)
		}
		return pkgerrors.NewEntityNotFound("domain", d.ID)
	}

	r.logger.Info("Domain updated", zap.String("id", d.ID))
	return nil
}

// DeleteDomain removes a domain and detaches all its edges.
func (r *Repository) DeleteDomain(ctx context.Context, id string) error {
	if _, err := r.GetDomain(ctx, id); err != nil {
		return err
	}

	session := r.writeSession(ctx)
	defer session.Close(ctx)

	_, err := session.Run(ctx,
		`MATCH (d:Domain {id: $id}) DETACH DELETE d`,
		map[string]interface{}{"id": id})
	if err != nil {
		return pkgerrors.NewRepositoryQueryFailed("delete domain", err)
	}

	r.logger.Info("Domain deleted", zap.String("id", id))
	return nil
}

// ListDomains returns domains ordered by name.
func (r *Repository) ListDomains(ctx context.Context, limit, offset int) ([]catalog.Domain, error) {
	var domains []catalog.Domain

	err := r.withReadRetry(ctx, "list domains", func() error {
		session := r.readSession(ctx)
		defer session.Close(ctx)

		result, err := session.Run(ctx, `
			MATCH (d:Domain)
			RETURN d
			ORDER BY d.name
			SKIP $offset
			LIMIT $limit
		`, map[string]interface{}{"offset": offset, "limit": limit})
		if err != nil {
			return err
		}

		domains = domains[:0]
		for result.Next(ctx) {
			if node, ok := nodeFromRecord(result.Record(), "d"); ok {
				domains = append(domains, *domainFromProps(node.Props))
			}
		}
		return result.Err()
	})
	if err != nil {
		return nil, err
	}
	return domains, nil
}

// DomainsWithEmbeddings returns the candidate projection for every domain
// carrying an embedding.
func (r *Repository) DomainsWithEmbeddings(ctx context.Context) ([]catalog.EmbeddingCandidate, error) {
	return r.candidates(ctx, "domain candidates", `
		MATCH (d:Domain)
		WHERE d.embedding IS NOT NULL
		RETURN d.id as id, d.name as name, d.embedding as embedding
	`)
}

// DomainRefForBusinessObject returns the domain a business object belongs
// to, or nil when it is unassigned.
func (r *Repository) DomainRefForBusinessObject(ctx context.Context, objectID string) (*catalog.EntityRef, error) {
	return r.refSingle(ctx, "domain ref for business object", `
		MATCH (bo:BusinessObject {id: $objectID})-[:BELONGS_TO]->(d:Domain)
		RETURN d.id as id, d.name as name
	`, map[string]interface{}{"objectID": objectID})
}

// DomainRefsForRule returns (id, name) references for the domains that
// enforce a rule.
func (r *Repository) DomainRefsForRule(ctx context.Context, ruleID string) ([]catalog.EntityRef, error) {
	return r.refs(ctx, "domain refs for rule", `
		MATCH (d:Domain)-[:ENFORCES]->(ru:Rule {id: $ruleID})
		RETURN d.id as id, d.name as name
		ORDER BY d.name
	`, map[string]interface{}{"ruleID": ruleID})
}
