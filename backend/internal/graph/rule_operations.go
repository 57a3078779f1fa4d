package graph

import (
	"context"

	"go.uber.org/zap"

	"data-catalog/backend/internal/catalog"
	pkgerrors "data-catalog/backend/pkg/errors"
)

// ============================================================================
// Rule Operations
// ============================================================================

func ruleParams(ru *catalog.Rule) map[string]interface{} {
	return map[string]interface{}{
		"id":              ru.ID,
		"name":            ru.Name,
		"description":     ru.Description,
		"category":        string(ru.Category),
		"obligationLevel": string(ru.ObligationLevel),
		"dataElements":    stringSliceParam(ru.DataElements),
		"conditions":      stringSliceParam(ru.Conditions),
		"actions":         stringSliceParam(ru.Actions),
		"exceptions":      stringSliceParam(ru.Exceptions),
		"thresholds":      float64SliceParam(ru.Thresholds),
		"validationLogic": ru.ValidationLogic,
		"sourceReference": ru.SourceReference,
		"effectiveDate":   ru.EffectiveDate,
		"relatedRules":    stringSliceParam(ru.RelatedRules),
		"createdAt":       ru.CreatedAt,
		"updatedAt":       ru.UpdatedAt,
	}
}

func ruleFromProps(props map[string]interface{}) *catalog.Rule {
	return &catalog.Rule{
		Entity: catalog.Entity{
			ID:          propString(props, "id"),
			Name:        propString(props, "name"),
			Description: propString(props, "description"),
			CreatedAt:   propTime(props, "created_at"),
			UpdatedAt:   propTime(props, "updated_at"),
		},
		Category:        catalog.RuleCategory(propString(props, "category")),
		ObligationLevel: catalog.ObligationLevel(propString(props, "obligation_level")),
		DataElements:    propStringSlice(props, "data_elements"),
		Conditions:      propStringSlice(props, "conditions"),
		Actions:         propStringSlice(props, "actions"),
		Exceptions:      propStringSlice(props, "exceptions"),
		Thresholds:      propFloat64Slice(props, "thresholds"),
		ValidationLogic: propString(props, "validation_logic"),
		SourceReference: propString(props, "source_reference"),
		EffectiveDate:   propString(props, "effective_date"),
		RelatedRules:    propStringSlice(props, "related_rules"),
		Embedding:       propVector(props, "embedding"),
	}
}

// CreateRule persists a new rule node.
func (r *Repository) CreateRule(ctx context.Context, ru *catalog.Rule) error {
	session := r.writeSession(ctx)
	defer session.Close(ctx)

	query := `
		CREATE (ru:Rule {
			id: $id,
			name: $name,
			description: $description,
			category: $category,
			obligation_level: $obligationLevel,
			data_elements: $dataElements,
			conditions: $conditions,
			actions: $actions,
			exceptions: $exceptions,
			thresholds: $thresholds,
			validation_logic: $validationLogic,
			source_reference: $sourceReference,
			effective_date: $effectiveDate,
			related_rules: $relatedRules,
			created_at: $createdAt,
			updated_at: $updatedAt
		})
		RETURN ru.id as id
	`
	params := ruleParams(ru)
	if len(ru.Embedding) > 0 {
		query = `
			CREATE (ru:Rule {
				id: $id,
				name: $name,
				description: $description,
				category: $category,
				obligation_level: $obligationLevel,
				data_elements: $dataElements,
				conditions: $conditions,
				actions: $actions,
				exceptions: $exceptions,
				thresholds: $thresholds,
				validation_logic: $validationLogic,
				source_reference: $sourceReference,
				effective_date: $effectiveDate,
				related_rules: $relatedRules,
				created_at: $createdAt,
				updated_at: $updatedAt,
				embedding: $embedding
			})
			RETURN ru.id as id
		`
		params["embedding"] = vectorParam(ru.Embedding)
	}

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return pkgerrors.NewRepositoryQueryFailed("create rule", err)
	}
	if _, err = result.Single(ctx); err != nil {
		return pkgerrors.NewRepositoryQueryFailed("create rule", err)
	}

	r.logger.Info("Rule created", zap.String("id", ru.ID))
	return nil
}

// GetRule retrieves a rule by id.
func (r *Repository) GetRule(ctx context.Context, id string) (*catalog.Rule, error) {
	var ru *catalog.Rule

	err := r.withReadRetry(ctx, "get rule", func() error {
		session := r.readSession(ctx)
		defer session.Close(ctx)

		result, err := session.Run(ctx,
			`MATCH (ru:Rule {id: $id}) RETURN ru`,
			map[string]interface{}{"id": id})
		if err != nil {
			return err
		}

		ru = nil
		if result.Next(ctx) {
			if node, ok := nodeFromRecord(result.Record(), "ru"); ok {
				ru = ruleFromProps(node.Props)
			}
		}
		return result.Err()
	})
	if err != nil {
		return nil, err
	}
	if ru == nil {
		return nil, pkgerrors.NewEntityNotFound("rule", id)
	}
	return ru, nil
}

// UpdateRule replaces the mutable fields; embedding only when fresh.
func (r *Repository) UpdateRule(ctx context.Context, ru *catalog.Rule) error {
	session := r.writeSession(ctx)
	defer session.Close(ctx)

	query := `
		MATCH (ru:Rule {id: $id})
		SET ru.name = $name,
		    ru.description = $description,
		    ru.category = $category,
		    ru.obligation_level = $obligationLevel,
		    ru.data_elements = $dataElements,
		    ru.conditions = $conditions,
		    ru.actions = $actions,
		    ru.exceptions = $exceptions,
		    ru.thresholds = $thresholds,
		    ru.validation_logic = $validationLogic,
		    ru.source_reference = $sourceReference,
		    ru.effective_date = $effectiveDate,
		    ru.related_rules = $relatedRules,
		    ru.updated_at = $updatedAt
		RETURN ru.id as id
	`
	params := ruleParams(ru)
	if len(ru.Embedding) > 0 {
		query = `
			MATCH (ru:Rule {id: $id})
			SET ru.name = $name,
			    ru.description = $description,
			    ru.category = $category,
			    ru.obligation_level = $obligationLevel,
			    ru.data_elements = $dataElements,
			    ru.conditions = $conditions,
			    ru.actions = $actions,
			    ru.exceptions = $exceptions,
			    ru.thresholds = $thresholds,
			    ru.validation_logic = $validationLogic,
			    ru.source_reference = $sourceReference,
			    ru.effective_date = $effectiveDate,
			    ru.related_rules = $relatedRules,
			    ru.updated_at = $updatedAt,
			    ru.embedding = $embedding
			RETURN ru.id as id
		`
		params["embedding"] = vectorParam(ru.Embedding)
	}

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return pkgerrors.NewRepositoryQueryFailed("update rule", err)
	}
	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return pkgerrors.NewRepositoryQueryFailed("update rule", err)
		}
		return pkgerrors.NewEntityNotFound("rule", ru.ID)
	}

	r.logger.Info("Rule updated", zap.String("id", ru.ID))
	return nil
}

// DeleteRule removes a rule and detaches all its edges. Other rules may
// still reference the deleted id in related_rules; those dangling ids are
// legal and are skipped during related-entity resolution.
func (r *Repository) DeleteRule(ctx context.Context, id string) error {
	if _, err := r.GetRule(ctx, id); err != nil {
		return err
	}

	session := r.writeSession(ctx)
	defer session.Close(ctx)

	_, err := session.Run(ctx,
		`MATCH (ru:Rule {id: $id}) DETACH DELETE ru`,
		map[string]interface{}{"id": id})
	if err != nil {
		return pkgerrors.NewRepositoryQueryFailed("delete rule", err)
	}

	r.logger.Info("Rule deleted", zap.String("id", id))
	return nil
}

// ListRules returns rules ordered by name.
func (r *Repository) ListRules(ctx context.Context, limit, offset int) ([]catalog.Rule, error) {
	var rules []catalog.Rule

	err := r.withReadRetry(ctx, "list rules", func() error {
		session := r.readSession(ctx)
		defer session.Close(ctx)

		result, err := session.Run(ctx, `
			MATCH (ru:Rule)
			RETURN ru
			ORDER BY ru.name
			SKIP $offset
			LIMIT $limit
		`, map[string]interface{}{"offset": offset, "limit": limit})
		if err != nil {
			return err
		}

		rules = rules[:0]
		for result.Next(ctx) {
			if node, ok := nodeFromRecord(result.Record(), "ru"); ok {
				rules = append(rules, *ruleFromProps(node.Props))
			}
		}
		return result.Err()
	})
	if err != nil {
		return nil, err
	}
	return rules, nil
}

// RulesWithEmbeddings returns the candidate projection for every rule
// carrying an embedding.
func (r *Repository) RulesWithEmbeddings(ctx context.Context) ([]catalog.EmbeddingCandidate, error) {
	return r.candidates(ctx, "rule candidates", `
		MATCH (ru:Rule)
		WHERE ru.embedding IS NOT NULL
		RETURN ru.id as id, ru.name as name, ru.embedding as embedding
	`)
}

// LinkRuleToDataElement creates a GOVERNS edge.
func (r *Repository) LinkRuleToDataElement(ctx context.Context, ruleID, elementID string) error {
	err := r.mergeLink(ctx, "link rule to data element", `
		MATCH (ru:Rule {id: $ruleID})
		MATCH (de:DataElement {id: $elementID})
		MERGE (ru)-[:GOVERNS]->(de)
		RETURN ru.id as id
	`, map[string]interface{}{"ruleID": ruleID, "elementID": elementID})
	if err == errNoMatch {
		return pkgerrors.NewEntityNotFound("rule or data element", ruleID+"/"+elementID)
	}
	if err != nil {
		return pkgerrors.NewRepositoryQueryFailed("link rule to data element", err)
	}

	r.logger.Info("Rule linked to data element",
		zap.String("rule_id", ruleID),
		zap.String("element_id", elementID),
	)
	return nil
}

// LinkRuleToDomain creates an ENFORCES edge from the domain to the rule.
func (r *Repository) LinkRuleToDomain(ctx context.Context, ruleID, domainID string) error {
	err := r.mergeLink(ctx, "link rule to domain", `
		MATCH (ru:Rule {id: $ruleID})
		MATCH (d:Domain {id: $domainID})
		MERGE (d)-[:ENFORCES]->(ru)
		RETURN ru.id as id
	`, map[string]interface{}{"ruleID": ruleID, "domainID": domainID})
	if err == errNoMatch {
		return pkgerrors.NewEntityNotFound("rule or domain", ruleID+"/"+domainID)
	}
	if err != nil {
		return pkgerrors.NewRepositoryQueryFailed("link rule to domain", err)
	}

	r.logger.Info("Rule linked to domain",
		zap.String("rule_id", ruleID),
		zap.String("domain_id", domainID),
	)
	return nil
}

// RuleRefsForDataElement returns (id, name) references for the rules that
// govern a data element.
func (r *Repository) RuleRefsForDataElement(ctx context.Context, elementID string) ([]catalog.EntityRef, error) {
	return r.refs(ctx, "rule refs for data element", `
		MATCH (ru:Rule)-[:GOVERNS]->(de:DataElement {id: $elementID})
		RETURN ru.id as id, ru.name as name
		ORDER BY ru.name
	`, map[string]interface{}{"elementID": elementID})
}

// RuleRefsForDomain returns (id, name) references for the rules a domain
// enforces.
func (r *Repository) RuleRefsForDomain(ctx context.Context, domainID string) ([]catalog.EntityRef, error) {
	return r.refs(ctx, "rule refs for domain", `
		MATCH (d:Domain {id: $domainID})-[:ENFORCES]->(ru:Rule)
		RETURN ru.id as id, ru.name as name
		ORDER BY ru.name
	`, map[string]interface{}{"domainID": domainID})
}

// RuleRef resolves a rule id to an (id, name) reference.
// Returns nil without error when the rule does not exist.
func (r *Repository) RuleRef(ctx context.Context, id string) (*catalog.EntityRef, error) {
	return r.refSingle(ctx, "rule ref", `
		MATCH (ru:Rule {id: $id})
		RETURN ru.id as id, ru.name as name
	`, map[string]interface{}{"id": id})
}
