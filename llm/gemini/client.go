package gemini

import (
	"context"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/option"

	"github.com/m-mizutani/finsight"
)

// Client is a reasoning oracle backed by the Gemini API.
type Client struct {
	// client is the underlying Gemini client.
	client *genai.Client

	// defaultModel is the model to use for content generation.
	// It can be overridden using WithModel option.
	defaultModel string

	// temperature controls randomness. Default is 0 for reproducible
	// planning.
	temperature float32
}

var _ finsight.LLMClient = &Client{}

const (
	DefaultModel = "gemini-1.5-flash"
)

// Option is a function that configures a Client.
type Option func(*Client)

// WithModel sets the default model for content generation.
func WithModel(modelName string) Option {
	return func(c *Client) {
		c.defaultModel = modelName
	}
}

// WithTemperature overrides the sampling temperature.
func WithTemperature(temperature float32) Option {
	return func(c *Client) {
		c.temperature = temperature
	}
}

// New creates a new client for the Gemini API.
func New(ctx context.Context, apiKey string, options ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, goerr.New("API key is required")
	}

	c := &Client{
		defaultModel: DefaultModel,
	}
	for _, opt := range options {
		opt(c)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Gemini client")
	}
	c.client = client

	return c, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// GenerateText implements finsight.LLMClient.
func (c *Client) GenerateText(ctx context.Context, prompt string, options ...finsight.GenerateOption) (string, error) {
	cfg := finsight.NewGenerateConfig(options...)

	model := c.client.GenerativeModel(c.defaultModel)
	model.SetTemperature(c.temperature)
	if cfg.ContentType() == finsight.ContentTypeJSON {
		model.ResponseMIMEType = "application/json"
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate content", goerr.V("model", c.defaultModel))
	}

	text := firstText(resp)
	if text == "" {
		return "", goerr.New("no text in response", goerr.V("model", c.defaultModel))
	}

	return text, nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var sb strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
		if sb.Len() > 0 {
			break
		}
	}
	return sb.String()
}
