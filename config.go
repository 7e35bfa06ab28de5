package finsight

// Config carries the credentials the collaborators need. It is populated
// by the caller (the CLI reads environment and .env files); the core never
// performs hidden environment lookups.
type Config struct {
	// LLMAPIKey authenticates against the reasoning oracle provider.
	LLMAPIKey string

	// LLMModel optionally overrides the provider's default model.
	LLMModel string

	// FinancialAPIKey authenticates against the financial data
	// providers. Some vendors accept a rate-limited demo key; passing
	// one is the caller's explicit decision, not an ambient default.
	FinancialAPIKey string
}

// Validate checks the configuration eagerly, before any collaborator is
// constructed or any external call is made. A missing key fails fast with
// zero side effects.
func (c *Config) Validate() error {
	if c.LLMAPIKey == "" {
		return NewError(ErrorKindConfig, "LLM API key is not set").
			WithSuggestion("Set OPENROUTER_API_KEY (or the provider-specific key) in the environment or a .env file.").
			WithCause(ErrInvalidConfig)
	}
	if c.FinancialAPIKey == "" {
		return NewError(ErrorKindConfig, "financial data API key is not set").
			WithSuggestion("Set ALPHA_VANTAGE_API_KEY in the environment or a .env file.").
			WithCause(ErrInvalidConfig)
	}
	return nil
}
