package embedding

import (
	"context"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"data-catalog/backend/internal/catalog"
	pkgerrors "data-catalog/backend/pkg/errors"
	"data-catalog/backend/pkg/logger"
)

const (
	maxAttempts = 3
	baseBackoff = 1 * time.Second
	maxBackoff  = 10 * time.Second
)

// Embedder turns text into a fixed-length vector. Implementations must be
// safe for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Service generates embeddings via an OpenAI-compatible embeddings API.
// The model is fixed at construction and shared process-wide.
type Service struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewService creates an embedding service against an OpenAI-compatible API.
func NewService(baseURL, apiKey, model string) *Service {
	// Local OpenAI-compatible services accept any key
	if apiKey == "" {
		apiKey = "dummy-key"
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &Service{
		client: openai.NewClientWithConfig(config),
		model:  model,
		logger: logger.Get(),
	}
}

// Model returns the configured embedding model identifier.
func (s *Service) Model() string {
	return s.model
}

// Embed generates an embedding vector for the given text. Transient failures
// are retried up to 3 attempts with exponential backoff (base 1s, cap 10s)
// before the error is surfaced as an embedding error.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	req := openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(s.model),
	}

	var resp openai.EmbeddingResponse
	var err error
	attempts := 0
	for attempt := 0; attempt < maxAttempts; attempt++ {
		attempts = attempt + 1
		if attempt > 0 {
			backoff := baseBackoff << (attempt - 1)
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			s.logger.Warn("Retrying embedding request",
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", backoff),
			)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, pkgerrors.NewEmbeddingFailed(s.model, attempt, ctx.Err())
			}
		}

		resp, err = s.client.CreateEmbeddings(ctx, req)
		if err == nil {
			break
		}

		s.logger.Error("Embedding request failed",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
			zap.String("model", s.model),
		)
	}

	if err != nil {
		return nil, pkgerrors.NewEmbeddingFailed(s.model, attempts, err)
	}
	if len(resp.Data) == 0 {
		return nil, pkgerrors.NewEmbeddingFailed(s.model, attempts, errNoData)
	}

	vector := resp.Data[0].Embedding
	s.logger.Debug("Embedding generated",
		zap.String("model", s.model),
		zap.Int("dimensions", len(vector)),
	)
	return vector, nil
}

// ForEntity generates an embedding from an entity's text projection. Kinds
// that cannot be embedded simply do not implement catalog.Embeddable, so
// support is checked at compile time rather than by runtime inspection.
func (s *Service) ForEntity(ctx context.Context, entity catalog.Embeddable) ([]float32, error) {
	if entity == nil {
		return nil, pkgerrors.NewEmbeddingUnsupported("nil")
	}
	return s.Embed(ctx, entity.EmbeddingText())
}

type noDataError struct{}

func (noDataError) Error() string { return "embeddings response contained no data" }

var errNoData = noDataError{}
