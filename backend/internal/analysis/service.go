package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"data-catalog/backend/internal/catalog"
	"data-catalog/backend/internal/search"
	pkgerrors "data-catalog/backend/pkg/errors"
	"data-catalog/backend/pkg/logger"
)

// Searcher is the slice of the search service the analysis pipelines use.
type Searcher interface {
	SearchByText(ctx context.Context, query string, kinds []string, opts search.Options) (map[catalog.Kind][]catalog.SearchResult, error)
	FindRelated(ctx context.Context, kind, id string) (map[string][]catalog.EntityRef, error)
}

// Catalog resolves entities for prompt context.
type Catalog interface {
	EntityRefByKind(ctx context.Context, kind catalog.Kind, id string) (*catalog.EntityRef, error)
	GetRule(ctx context.Context, id string) (*catalog.Rule, error)
}

// Step is a single role-prompted pass in a pipeline.
type Step struct {
	Role   string `json:"role"`
	Task   string `json:"task"`
	Output string `json:"output"`
}

// Result is the outcome of an analysis pipeline: the steps in execution
// order, with the last step's output as the overall conclusion.
type Result struct {
	Operation string `json:"operation"`
	Model     string `json:"model"`
	Steps     []Step `json:"steps"`
}

// Conclusion returns the final step's output.
func (r *Result) Conclusion() string {
	if len(r.Steps) == 0 {
		return ""
	}
	return r.Steps[len(r.Steps)-1].Output
}

// Service runs sequential role-prompted analysis pipelines over catalog
// data: each step sees the outputs of the steps before it.
type Service struct {
	client   *Client
	searcher Searcher
	catalog  Catalog
	logger   *zap.Logger
}

// NewService creates the analysis service. A nil client disables the layer:
// every operation then fails with ErrAnalysisUnavailable.
func NewService(client *Client, searcher Searcher, cat Catalog) *Service {
	return &Service{
		client:   client,
		searcher: searcher,
		catalog:  cat,
		logger:   logger.Get(),
	}
}

// Available reports whether an LLM is configured.
func (s *Service) Available() bool {
	return s.client != nil
}

type pipelineStep struct {
	role     string
	roleName string
	task     string
}

func (s *Service) runPipeline(ctx context.Context, operation string, steps []pipelineStep) (*Result, error) {
	if s.client == nil {
		return nil, pkgerrors.ErrAnalysisUnavailable
	}

	result := &Result{Operation: operation, Model: s.client.Model()}
	var priorOutputs strings.Builder

	for _, step := range steps {
		task := step.task
		if priorOutputs.Len() > 0 {
			task = fmt.Sprintf("%s\n\nFindings from earlier analysis steps:\n%s", step.task, priorOutputs.String())
		}

		output, err := s.client.Complete(ctx, step.role, task)
		if err != nil {
			s.logger.Error("Analysis step failed",
				zap.String("operation", operation),
				zap.String("role", step.roleName),
				zap.Error(err),
			)
			return nil, err
		}

		result.Steps = append(result.Steps, Step{
			Role:   step.roleName,
			Task:   step.task,
			Output: output,
		})
		fmt.Fprintf(&priorOutputs, "--- %s ---\n%s\n", step.roleName, output)
	}

	s.logger.Info("Analysis pipeline completed",
		zap.String("operation", operation),
		zap.Int("steps", len(result.Steps)),
	)
	return result, nil
}

// AnalyzeSearch performs the similarity search, then has the explorer and
// the analyst interpret the hits.
func (s *Service) AnalyzeSearch(ctx context.Context, query string, kinds []string) (*Result, error) {
	if s.client == nil {
		return nil, pkgerrors.ErrAnalysisUnavailable
	}

	hits, err := s.searcher.SearchByText(ctx, query, kinds, search.Options{TopK: 0, Threshold: -1})
	if err != nil {
		return nil, err
	}
	hitsJSON, _ := json.MarshalIndent(hits, "", "  ")

	kindsLabel := "all entity types"
	if len(kinds) > 0 {
		kindsLabel = strings.Join(kinds, ", ")
	}

	steps := []pipelineStep{
		{
			role:     roleDataExplorer,
			roleName: "Data Explorer",
			task: fmt.Sprintf(`A similarity search for '%s' across %s returned these matches:

%s

1. Explain why each match is relevant to the query.
2. Identify the most important matches and their significance.
3. Summarize the overall findings.
Your output should be a comprehensive analysis, not just a list of matches.`, query, kindsLabel, hitsJSON),
		},
		{
			role:     roleBusinessAnalyst,
			roleName: "Business Analyst",
			task: fmt.Sprintf(`Based on the search results for '%s', provide business context and
implications for the most relevant matches: their business significance,
potential use cases, and any governance or compliance considerations.`, query),
		},
	}

	return s.runPipeline(ctx, "search_analysis", steps)
}

// AnalyzeEntity runs relationship analysis, quality assessment, and
// metadata enhancement for a catalog entity.
func (s *Service) AnalyzeEntity(ctx context.Context, kind, id string) (*Result, error) {
	if s.client == nil {
		return nil, pkgerrors.ErrAnalysisUnavailable
	}

	resolved, err := catalog.ParseKind(kind)
	if err != nil {
		return nil, pkgerrors.NewInvalidEntityKind(kind)
	}

	ref, err := s.catalog.EntityRefByKind(ctx, resolved, id)
	if err != nil {
		return nil, pkgerrors.NewRelatedLookupFailed(kind, id, err)
	}
	if ref == nil {
		return nil, pkgerrors.NewEntityNotFound(kind, id)
	}

	related, err := s.searcher.FindRelated(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	relatedJSON, _ := json.MarshalIndent(related, "", "  ")

	label := fmt.Sprintf("%s '%s' (ID: %s)", kindLabel(resolved), ref.Name, id)

	steps := []pipelineStep{
		{
			role:     roleDataExplorer,
			roleName: "Data Explorer",
			task: fmt.Sprintf(`Analyze the relationships of %s. Its directly related entities are:

%s

Describe the nature of each relationship, how this entity fits into the
wider data landscape, and any gaps in its connections.`, label, relatedJSON),
		},
		{
			role:     roleDataSteward,
			roleName: "Data Steward",
			task: fmt.Sprintf(`Assess the data quality and governance posture of %s: documentation
completeness, adherence to standards, and any quality risks. Suggest
concrete improvements.`, label),
		},
		{
			role:     roleMetadataExpert,
			roleName: "Metadata Expert",
			task: fmt.Sprintf(`Propose metadata enhancements for %s: a sharper description, better
classifications, and tags that would improve its discoverability.`, label),
		},
	}

	return s.runPipeline(ctx, "entity_analysis", steps)
}

// AnalyzeRule runs rule interpretation, data-scope, and governance passes
// for a rule.
func (s *Service) AnalyzeRule(ctx context.Context, id string) (*Result, error) {
	if s.client == nil {
		return nil, pkgerrors.ErrAnalysisUnavailable
	}

	rule, err := s.catalog.GetRule(ctx, id)
	if err != nil {
		return nil, err
	}
	ruleJSON, _ := json.MarshalIndent(rule, "", "  ")

	label := fmt.Sprintf("Rule '%s' (ID: %s)", rule.Name, id)

	steps := []pipelineStep{
		{
			role:     roleBusinessAnalyst,
			roleName: "Business Analyst",
			task: fmt.Sprintf(`Interpret %s:

%s

Explain what the rule requires in business terms, the rationale behind it,
and the consequences of violating it.`, label, ruleJSON),
		},
		{
			role:     roleDataExplorer,
			roleName: "Data Explorer",
			task: fmt.Sprintf(`Analyze the data scope and impact of %s: which data elements and business
objects it affects, its coverage across domains, whether its scope is
appropriate, and how violations could be monitored.`, label),
		},
		{
			role:     roleDataSteward,
			roleName: "Data Steward",
			task: fmt.Sprintf(`Assess the governance of %s: enforcement across systems, documentation
clarity, governance gaps, and recommendations for better rule management.`, label),
		},
	}

	return s.runPipeline(ctx, "rule_analysis", steps)
}

func kindLabel(kind catalog.Kind) string {
	switch kind {
	case catalog.KindBusinessObject:
		return "Business Object"
	case catalog.KindDataElement:
		return "Data Element"
	case catalog.KindDomain:
		return "Domain"
	case catalog.KindRule:
		return "Rule"
	}
	return string(kind)
}
