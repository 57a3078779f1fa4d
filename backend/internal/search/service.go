package search

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"data-catalog/backend/internal/catalog"
	"data-catalog/backend/internal/embedding"
	pkgerrors "data-catalog/backend/pkg/errors"
	"data-catalog/backend/pkg/logger"
)

// Repository supplies embedding candidates per kind and the graph
// relationship lookups the related-entity traversals need.
type Repository interface {
	BusinessObjectsWithEmbeddings(ctx context.Context) ([]catalog.EmbeddingCandidate, error)
	DataElementsWithEmbeddings(ctx context.Context) ([]catalog.EmbeddingCandidate, error)
	DomainsWithEmbeddings(ctx context.Context) ([]catalog.EmbeddingCandidate, error)
	RulesWithEmbeddings(ctx context.Context) ([]catalog.EmbeddingCandidate, error)

	DataElementRefsForBusinessObject(ctx context.Context, objectID string) ([]catalog.EntityRef, error)
	DomainRefForBusinessObject(ctx context.Context, objectID string) (*catalog.EntityRef, error)
	BusinessObjectRefForDataElement(ctx context.Context, elementID string) (*catalog.EntityRef, error)
	RuleRefsForDataElement(ctx context.Context, elementID string) ([]catalog.EntityRef, error)
	BusinessObjectRefsForDomain(ctx context.Context, domainID string) ([]catalog.EntityRef, error)
	RuleRefsForDomain(ctx context.Context, domainID string) ([]catalog.EntityRef, error)
	DataElementRefsForRule(ctx context.Context, ruleID string) ([]catalog.EntityRef, error)
	DomainRefsForRule(ctx context.Context, ruleID string) ([]catalog.EntityRef, error)
	GetRule(ctx context.Context, id string) (*catalog.Rule, error)
	RuleRef(ctx context.Context, id string) (*catalog.EntityRef, error)
}

// Embedder generates the query embedding.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// errNoEmbedder is returned when similarity search runs without an
// embedding model configured.
var errNoEmbedder = pkgerrors.NewBaseError(pkgerrors.ErrorTypeEmbedding, "embedding model not configured", nil)

// Service coordinates embedding generation and candidate ranking across
// entity kinds and resolves direct relationship queries.
type Service struct {
	repo      Repository
	embedder  Embedder
	topK      int
	threshold float64
	logger    *zap.Logger
}

// NewService creates a search service with the given ranking defaults.
func NewService(repo Repository, embedder Embedder, topK int, threshold float64) *Service {
	if topK < 1 {
		topK = 5
	}
	return &Service{
		repo:      repo,
		embedder:  embedder,
		topK:      topK,
		threshold: threshold,
		logger:    logger.Get(),
	}
}

// Options override the service ranking defaults for a single search.
type Options struct {
	TopK      int     // <1 means use the service default
	Threshold float64 // <0 means use the service default
}

// SearchByText searches the requested kinds by text similarity. Kinds
// defaults to all four when empty. The query embedding is generated once;
// an embedding failure fails the whole search. Any repository failure also
// aborts the search: there is no per-kind isolation. Every requested kind
// appears in the result, with an empty slice when nothing matched.
func (s *Service) SearchByText(ctx context.Context, query string, kinds []string, opts Options) (map[catalog.Kind][]catalog.SearchResult, error) {
	requested, err := resolveKinds(kinds)
	if err != nil {
		return nil, err
	}
	if s.embedder == nil {
		return nil, pkgerrors.NewSearchFailed(query, errNoEmbedder)
	}

	topK := s.topK
	if opts.TopK >= 1 {
		topK = opts.TopK
	}
	threshold := s.threshold
	if opts.Threshold >= 0 {
		threshold = opts.Threshold
	}

	queryVector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	ranked := make([][]catalog.SearchResult, len(requested))
	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range requested {
		i, kind := i, kind
		g.Go(func() error {
			candidates, err := s.candidatesForKind(gctx, kind)
			if err != nil {
				return err
			}
			ranked[i] = embedding.RankSimilar(queryVector, candidates, topK, threshold)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("Search failed", zap.String("query", query), zap.Error(err))
		return nil, pkgerrors.NewSearchFailed(query, err)
	}

	results := make(map[catalog.Kind][]catalog.SearchResult, len(requested))
	for i, kind := range requested {
		if ranked[i] == nil {
			ranked[i] = []catalog.SearchResult{}
		}
		results[kind] = ranked[i]
	}

	s.logger.Debug("Search completed",
		zap.String("query", query),
		zap.Int("kinds", len(requested)),
	)
	return results, nil
}

func (s *Service) candidatesForKind(ctx context.Context, kind catalog.Kind) ([]catalog.EmbeddingCandidate, error) {
	switch kind {
	case catalog.KindBusinessObject:
		return s.repo.BusinessObjectsWithEmbeddings(ctx)
	case catalog.KindDataElement:
		return s.repo.DataElementsWithEmbeddings(ctx)
	case catalog.KindDomain:
		return s.repo.DomainsWithEmbeddings(ctx)
	case catalog.KindRule:
		return s.repo.RulesWithEmbeddings(ctx)
	}
	return nil, pkgerrors.NewInvalidEntityKind(string(kind))
}

// resolveKinds validates the requested kinds, defaulting to all four.
func resolveKinds(kinds []string) ([]catalog.Kind, error) {
	if len(kinds) == 0 {
		return catalog.Kinds(), nil
	}
	resolved := make([]catalog.Kind, 0, len(kinds))
	for _, raw := range kinds {
		kind, err := catalog.ParseKind(raw)
		if err != nil {
			return nil, pkgerrors.NewInvalidEntityKind(raw)
		}
		resolved = append(resolved, kind)
	}
	return resolved, nil
}

// Relation category keys in FindRelated results.
const (
	RelationBusinessObjects = "business_objects"
	RelationDataElements    = "data_elements"
	RelationDomains         = "domains"
	RelationRules           = "rules"
	RelationRelatedRules    = "related_rules"
)

// FindRelated resolves the entities connected to the given entity through
// its kind-specific relationships. No embeddings are involved. An empty
// category is valid; a rule's related_rules ids that fail to resolve are
// skipped silently.
func (s *Service) FindRelated(ctx context.Context, kind, id string) (map[string][]catalog.EntityRef, error) {
	resolved, err := catalog.ParseKind(kind)
	if err != nil {
		return nil, pkgerrors.NewInvalidEntityKind(kind)
	}

	results := make(map[string][]catalog.EntityRef)

	switch resolved {
	case catalog.KindBusinessObject:
		elements, err := s.repo.DataElementRefsForBusinessObject(ctx, id)
		if err != nil {
			return nil, pkgerrors.NewRelatedLookupFailed(kind, id, err)
		}
		results[RelationDataElements] = elements

		domain, err := s.repo.DomainRefForBusinessObject(ctx, id)
		if err != nil {
			return nil, pkgerrors.NewRelatedLookupFailed(kind, id, err)
		}
		if domain != nil {
			results[RelationDomains] = []catalog.EntityRef{*domain}
		}

	case catalog.KindDataElement:
		object, err := s.repo.BusinessObjectRefForDataElement(ctx, id)
		if err != nil {
			return nil, pkgerrors.NewRelatedLookupFailed(kind, id, err)
		}
		if object != nil {
			results[RelationBusinessObjects] = []catalog.EntityRef{*object}
		}

		rules, err := s.repo.RuleRefsForDataElement(ctx, id)
		if err != nil {
			return nil, pkgerrors.NewRelatedLookupFailed(kind, id, err)
		}
		results[RelationRules] = rules

	case catalog.KindDomain:
		objects, err := s.repo.BusinessObjectRefsForDomain(ctx, id)
		if err != nil {
			return nil, pkgerrors.NewRelatedLookupFailed(kind, id, err)
		}
		results[RelationBusinessObjects] = objects

		rules, err := s.repo.RuleRefsForDomain(ctx, id)
		if err != nil {
			return nil, pkgerrors.NewRelatedLookupFailed(kind, id, err)
		}
		results[RelationRules] = rules

	case catalog.KindRule:
		elements, err := s.repo.DataElementRefsForRule(ctx, id)
		if err != nil {
			return nil, pkgerrors.NewRelatedLookupFailed(kind, id, err)
		}
		results[RelationDataElements] = elements

		domains, err := s.repo.DomainRefsForRule(ctx, id)
		if err != nil {
			return nil, pkgerrors.NewRelatedLookupFailed(kind, id, err)
		}
		results[RelationDomains] = domains

		rule, err := s.repo.GetRule(ctx, id)
		if err != nil {
			if pkgerrors.IsErrorType(err, pkgerrors.ErrorTypeNotFound) {
				return nil, err
			}
			return nil, pkgerrors.NewRelatedLookupFailed(kind, id, err)
		}
		if len(rule.RelatedRules) > 0 {
			related := make([]catalog.EntityRef, 0, len(rule.RelatedRules))
			for _, relatedID := range rule.RelatedRules {
				ref, err := s.repo.RuleRef(ctx, relatedID)
				if err != nil || ref == nil {
					// Dangling ids are legal: skip, don't fail
					s.logger.Debug("Skipping unresolvable related rule",
						zap.String("rule_id", id),
						zap.String("related_id", relatedID),
					)
					continue
				}
				related = append(related, *ref)
			}
			results[RelationRelatedRules] = related
		}
	}

	return results, nil
}
