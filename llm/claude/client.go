package claude

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/finsight"
)

// Client is a reasoning oracle backed by Anthropic's Claude models.
type Client struct {
	// client is the underlying Claude client.
	client *anthropic.Client

	// defaultModel is the model to use for message generation.
	// It can be overridden using WithModel option.
	defaultModel string

	// maxTokens limits the length of the generated answer.
	maxTokens int64

	// temperature controls randomness. Default is 0 for reproducible
	// planning.
	temperature float64
}

var _ finsight.LLMClient = &Client{}

const (
	DefaultMaxTokens = 4096
)

// Option is a function that configures a Client.
type Option func(*Client)

// WithModel sets the default model for message generation.
func WithModel(modelName string) Option {
	return func(c *Client) {
		c.defaultModel = modelName
	}
}

// WithMaxTokens sets the maximum number of tokens to generate.
func WithMaxTokens(maxTokens int64) Option {
	return func(c *Client) {
		c.maxTokens = maxTokens
	}
}

// WithTemperature overrides the sampling temperature.
func WithTemperature(temperature float64) Option {
	return func(c *Client) {
		c.temperature = temperature
	}
}

// New creates a new client for the Claude API.
func New(apiKey string, options ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, goerr.New("API key is required")
	}

	c := &Client{
		defaultModel: anthropic.ModelClaude3_5SonnetLatest,
		maxTokens:    DefaultMaxTokens,
	}
	for _, opt := range options {
		opt(c)
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	c.client = &client

	return c, nil
}

// GenerateText implements finsight.LLMClient. Claude has no structured
// response mode for plain message generation, so JSON output is requested
// through an appended prompt instruction.
func (c *Client) GenerateText(ctx context.Context, prompt string, options ...finsight.GenerateOption) (string, error) {
	cfg := finsight.NewGenerateConfig(options...)

	if cfg.ContentType() == finsight.ContentTypeJSON {
		prompt += "\n\nRespond with a single JSON object and nothing else."
	}

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       c.defaultModel,
		MaxTokens:   c.maxTokens,
		Temperature: anthropic.Float(c.temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to create message", goerr.V("model", c.defaultModel))
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	if sb.Len() == 0 {
		return "", goerr.New("no text in response", goerr.V("model", c.defaultModel))
	}

	return sb.String(), nil
}
