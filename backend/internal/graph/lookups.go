package graph

import (
	"context"

	"data-catalog/backend/internal/catalog"
)

// Shared read helpers for the candidate and relationship lookups. Every
// query here returns either (id, name, embedding) rows or (id, name) rows.

// candidates executes a read returning embedding candidates for ranking.
func (r *Repository) candidates(ctx context.Context, operation, query string) ([]catalog.EmbeddingCandidate, error) {
	var items []catalog.EmbeddingCandidate

	err := r.withReadRetry(ctx, operation, func() error {
		session := r.readSession(ctx)
		defer session.Close(ctx)

		result, err := session.Run(ctx, query, nil)
		if err != nil {
			return err
		}

		items = items[:0]
		for result.Next(ctx) {
			record := result.Record()
			id, _ := record.Get("id")
			name, _ := record.Get("name")
			emb, _ := record.Get("embedding")

			candidate := catalog.EmbeddingCandidate{}
			if s, ok := id.(string); ok {
				candidate.ID = s
			}
			if s, ok := name.(string); ok {
				candidate.Name = s
			}
			if raw, ok := emb.([]interface{}); ok {
				candidate.Embedding = make([]float32, 0, len(raw))
				for _, v := range raw {
					if f, ok := v.(float64); ok {
						candidate.Embedding = append(candidate.Embedding, float32(f))
					}
				}
			}
			items = append(items, candidate)
		}
		return result.Err()
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// refs executes a read returning entity references for a traversal.
func (r *Repository) refs(ctx context.Context, operation, query string, params map[string]interface{}) ([]catalog.EntityRef, error) {
	var items []catalog.EntityRef

	err := r.withReadRetry(ctx, operation, func() error {
		session := r.readSession(ctx)
		defer session.Close(ctx)

		result, err := session.Run(ctx, query, params)
		if err != nil {
			return err
		}

		items = items[:0]
		for result.Next(ctx) {
			record := result.Record()
			ref := catalog.EntityRef{}
			if id, ok := record.Get("id"); ok {
				if s, ok := id.(string); ok {
					ref.ID = s
				}
			}
			if name, ok := record.Get("name"); ok {
				if s, ok := name.(string); ok {
					ref.Name = s
				}
			}
			items = append(items, ref)
		}
		return result.Err()
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// refSingle executes a read returning at most one entity reference.
// Returns nil without error when the traversal has no match.
func (r *Repository) refSingle(ctx context.Context, operation, query string, params map[string]interface{}) (*catalog.EntityRef, error) {
	items, err := r.refs(ctx, operation, query, params)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

// mergeLink executes an idempotent MERGE between two existing nodes.
func (r *Repository) mergeLink(ctx context.Context, operation, query string, params map[string]interface{}) error {
	session := r.writeSession(ctx)
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return err
	}
	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return err
		}
		// MERGE returned nothing: one of the endpoints does not exist
		return errNoMatch
	}
	return nil
}

// EntityRefByKind resolves any entity id to an (id, name) reference.
// Returns nil without error when no such entity exists.
func (r *Repository) EntityRefByKind(ctx context.Context, kind catalog.Kind, id string) (*catalog.EntityRef, error) {
	var query string
	switch kind {
	case catalog.KindBusinessObject:
		query = `MATCH (n:BusinessObject {id: $id}) RETURN n.id as id, n.name as name`
	case catalog.KindDataElement:
		query = `MATCH (n:DataElement {id: $id}) RETURN n.id as id, n.name as name`
	case catalog.KindDomain:
		query = `MATCH (n:Domain {id: $id}) RETURN n.id as id, n.name as name`
	case catalog.KindRule:
		query = `MATCH (n:Rule {id: $id}) RETURN n.id as id, n.name as name`
	default:
		return nil, nil
	}
	return r.refSingle(ctx, "entity ref by kind", query, map[string]interface{}{"id": id})
}

type noMatchError struct{}

func (noMatchError) Error() string { return "no matching nodes" }

var errNoMatch = noMatchError{}
