package fmp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/finsight"
)

const (
	defaultBaseURL = "https://financialmodelingprep.com/api/v3"
	defaultTimeout = 10 * time.Second
)

// Client fetches income statements from the Financial Modeling Prep API.
// It implements finsight.Capability and is typically configured after
// Alpha Vantage in the router's fallback order.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

var _ finsight.Capability = &Client{}

// Option is a function that configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint. Mainly for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New creates a Financial Modeling Prep capability.
func New(apiKey string, options ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, goerr.New("financial modeling prep API key is required")
	}

	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range options {
		opt(c)
	}

	return c, nil
}

// Name implements finsight.Capability.
func (c *Client) Name() string {
	return "financial_modeling_prep"
}

// Fetch retrieves the income statements for the ticker as a sequence of
// report mappings.
func (c *Client) Fetch(ctx context.Context, ticker string) (any, error) {
	endpoint := c.baseURL + "/income-statement/" + url.PathEscape(ticker) + "?apikey=" + url.QueryEscape(c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build request", goerr.V("ticker", ticker))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "request failed", goerr.V("ticker", ticker))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, goerr.New("unexpected response status",
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(body)),
			goerr.V("ticker", ticker))
	}

	var reports []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&reports); err != nil {
		return nil, goerr.Wrap(err, "failed to decode response", goerr.V("ticker", ticker))
	}

	return reports, nil
}
