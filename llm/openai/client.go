package openai

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/sashabaranov/go-openai"

	"github.com/m-mizutani/finsight"
)

var (
	// promptScope is the logging scope for outgoing prompts
	promptScope = ctxlog.NewScope("openai_prompt", ctxlog.EnabledBy("FINSIGHT_LOGGING_OPENAI_PROMPT"))

	// responseScope is the logging scope for model responses
	responseScope = ctxlog.NewScope("openai_response", ctxlog.EnabledBy("FINSIGHT_LOGGING_OPENAI_RESPONSE"))
)

// Client is a reasoning oracle backed by an OpenAI-compatible chat API.
// Pointing it at OpenRouter via WithBaseURL gives access to many models
// through the same wire format.
type Client struct {
	// client is the underlying OpenAI client.
	client *openai.Client

	// defaultModel is the model to use for chat completions.
	// It can be overridden using WithModel option.
	defaultModel string

	// baseURL is the custom base URL for the API.
	// If empty, the default OpenAI endpoints are used.
	baseURL string

	// temperature controls randomness. Planning and entity extraction
	// need deterministic output, so the default is 0.
	temperature float32
}

var _ finsight.LLMClient = &Client{}

const (
	DefaultModel = "gpt-4o-mini"

	// OpenRouterBaseURL is the OpenAI-compatible endpoint of OpenRouter.
	OpenRouterBaseURL = "https://openrouter.ai/api/v1"
)

// Option is a function that configures a Client.
type Option func(*Client)

// WithModel sets the default model to use for chat completions.
func WithModel(modelName string) Option {
	return func(c *Client) {
		c.defaultModel = modelName
	}
}

// WithBaseURL sets a custom base URL, e.g. [OpenRouterBaseURL].
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithTemperature overrides the sampling temperature. Values above 0 make
// planning non-reproducible; use with care.
func WithTemperature(temperature float32) Option {
	return func(c *Client) {
		c.temperature = temperature
	}
}

// New creates a new client. An API key is required.
func New(apiKey string, options ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, goerr.New("API key is required")
	}

	c := &Client{
		defaultModel: DefaultModel,
	}
	for _, opt := range options {
		opt(c)
	}

	config := openai.DefaultConfig(apiKey)
	if c.baseURL != "" {
		config.BaseURL = c.baseURL
	}
	c.client = openai.NewClientWithConfig(config)

	return c, nil
}

// GenerateText implements finsight.LLMClient.
func (c *Client) GenerateText(ctx context.Context, prompt string, options ...finsight.GenerateOption) (string, error) {
	cfg := finsight.NewGenerateConfig(options...)

	req := openai.ChatCompletionRequest{
		Model:       c.defaultModel,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if cfg.ContentType() == finsight.ContentTypeJSON {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	ctxlog.From(ctx, promptScope).Debug("sending chat completion", "model", c.defaultModel, "prompt", prompt)

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create chat completion", goerr.V("model", c.defaultModel))
	}

	if len(resp.Choices) == 0 {
		return "", goerr.New("no response choices returned", goerr.V("model", c.defaultModel))
	}

	content := resp.Choices[0].Message.Content
	ctxlog.From(ctx, responseScope).Debug("received chat completion", "content", content)

	return content, nil
}
