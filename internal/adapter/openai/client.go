package openai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"go.uber.org/zap"
)

// Config holds the upstream connection settings.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string // empty selects the public endpoint
	Timeout time.Duration
}

// Client generates text through the Responses API.
type Client struct {
	client openai.Client
	model  string
	log    *zap.Logger
}

// NewClient creates a Client. Requests are never retried.
func NewClient(cfg Config, log *zap.Logger) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	return &Client{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
		log:    log,
	}
}

// Generate sends prompt and returns the aggregated output text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()

	resp, err := c.client.Responses.New(ctx, responses.ResponseNewParams{
		Model: shared.ResponsesModel(c.model),
		Input: responses.ResponseNewParamsInputUnion{OfString: openai.String(prompt)},
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			c.log.Warn("openai request rejected",
				zap.Int("status", apiErr.StatusCode),
				zap.String("model", c.model),
			)
		}
		return "", fmt.Errorf("create response: %w", err)
	}

	c.log.Debug("openai response received",
		zap.String("model", c.model),
		zap.Duration("elapsed", time.Since(start)),
	)
	return resp.OutputText(), nil
}
