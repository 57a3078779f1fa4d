package analysis

import (
	"context"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	pkgerrors "data-catalog/backend/pkg/errors"
	"data-catalog/backend/pkg/logger"
)

// Client wraps an OpenAI-compatible chat completion API for the analysis
// pipelines. A single client is shared process-wide.
type Client struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewClient creates a chat completion client.
func NewClient(baseURL, apiKey, model string) *Client {
	if apiKey == "" {
		apiKey = "dummy-key"
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  model,
		logger: logger.Get(),
	}
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// Complete runs one chat completion with a role prompt and a task prompt.
// Transient failures are retried with linear backoff before giving up.
func (c *Client) Complete(ctx context.Context, rolePrompt, taskPrompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: rolePrompt},
			{Role: openai.ChatMessageRoleUser, Content: taskPrompt},
		},
		Temperature: 0.7,
	}

	var resp openai.ChatCompletionResponse
	var err error
	maxRetries := 3
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * time.Second
			c.logger.Warn("Retrying analysis completion",
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", backoff),
			)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", pkgerrors.NewAnalysisFailed("completion", c.model, ctx.Err())
			}
		}

		resp, err = c.client.CreateChatCompletion(ctx, req)
		if err == nil {
			break
		}

		c.logger.Error("Analysis completion failed",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
			zap.String("model", c.model),
		)
	}

	if err != nil {
		return "", pkgerrors.NewAnalysisFailed("completion", c.model, err)
	}
	if len(resp.Choices) == 0 {
		return "", pkgerrors.NewAnalysisFailed("completion", c.model, errEmptyResponse)
	}

	return resp.Choices[0].Message.Content, nil
}

type emptyResponseError struct{}

func (emptyResponseError) Error() string { return "no choices in completion response" }

var errEmptyResponse = emptyResponseError{}
