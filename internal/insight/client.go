package insight

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/smart-calc-suite/pkg/constants"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Config holds the runtime parameters of the insight client.
type Config struct {
	// APIKey is the service credential. An empty key is a valid state in
	// which the client answers with a fixed message and never goes online.
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Generator sends one prompt to a model and returns its text.
type Generator interface {
	GenerateText(ctx context.Context, model, prompt string) (string, error)
}

// Client is the Collaborator backed by a text-generation model.
type Client struct {
	cfg       Config
	generator Generator
	logger    *zap.Logger
}

var _ Collaborator = (*Client)(nil)

// NewClient builds a Client talking to the Gemini API. No connection is
// attempted when cfg.APIKey is empty.
func NewClient(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return NewClientWithGenerator(cfg, nil, logger), nil
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create insight client: %w", err)
	}
	return NewClientWithGenerator(cfg, &geminiGenerator{client: gc}, logger), nil
}

// NewClientWithGenerator builds a Client on top of an arbitrary Generator.
func NewClientWithGenerator(cfg Config, generator Generator, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Model == "" {
		cfg.Model = constants.DefaultInsightModel
	}
	return &Client{cfg: cfg, generator: generator, logger: logger}
}

// Insight asks the model for a one-sentence comment on req. A single attempt
// is made.
func (c *Client) Insight(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		c.logger.Debug("insight requested without credential",
			zap.String("op", "insight.Insight"),
			zap.String("context", req.Context),
		)
		return constants.InsightMissingKeyMessage, nil
	}
	if c.generator == nil {
		return "", errors.New("insight generator not configured")
	}

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := c.generator.GenerateText(ctx, c.cfg.Model, BuildPrompt(req))
	if err != nil {
		return "", fmt.Errorf("failed to generate insight: %w", err)
	}

	c.logger.Debug("insight generated",
		zap.String("op", "insight.Insight"),
		zap.String("context", req.Context),
		zap.String("model", c.cfg.Model),
		zap.Duration("duration", time.Since(start)),
	)

	text = strings.TrimSpace(text)
	if text == "" {
		return constants.InsightEmptyMessage, nil
	}
	return text, nil
}

type geminiGenerator struct {
	client *genai.Client
}

func (g *geminiGenerator) GenerateText(ctx context.Context, model, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", nil
	}

	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil {
		return "", nil
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	return b.String(), nil
}
