package finsight

import "context"

// ContentType is the type of content requested from the reasoning oracle.
type ContentType string

const (
	// ContentTypeText is the content type for plain text.
	ContentTypeText ContentType = "text"

	// ContentTypeJSON is the content type for JSON. Providers that
	// support a structured response mode enable it; others fall back to
	// prompt instruction.
	ContentTypeJSON ContentType = "application/json"
)

// GenerateConfig is the resolved configuration for one generation call.
type GenerateConfig struct {
	contentType ContentType
}

// NewGenerateConfig resolves generation options with defaults applied.
// Provider implementations call this to interpret the options they were
// handed.
func NewGenerateConfig(options ...GenerateOption) GenerateConfig {
	cfg := GenerateConfig{contentType: ContentTypeText}
	for _, opt := range options {
		opt(&cfg)
	}
	return cfg
}

// ContentType returns the requested content type.
func (c GenerateConfig) ContentType() ContentType {
	return c.contentType
}

// GenerateOption configures a single generation call.
type GenerateOption func(*GenerateConfig)

// WithContentType requests the given content type for the generated
// output.
func WithContentType(contentType ContentType) GenerateOption {
	return func(c *GenerateConfig) {
		c.contentType = contentType
	}
}

// LLMClient is the narrow interface to the reasoning oracle. The core
// consumes it opaquely: planning and synthesis exchange only prompt and
// response text, so oracle implementations can be swapped without touching
// the controller. Implementations live under llm/.
//
// The core imposes no timeout of its own; a slow generation blocks the run
// until the provider's transport gives up.
type LLMClient interface {
	GenerateText(ctx context.Context, prompt string, options ...GenerateOption) (string, error)
}
