package alphavantage

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/finsight"
)

const (
	defaultBaseURL = "https://www.alphavantage.co/query"
	defaultTimeout = 10 * time.Second
)

// Client fetches income statements from the Alpha Vantage API. It
// implements finsight.Capability.
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

// WithHTTPClient overrides the HTTP client, e.g. to change the transport
// timeout. The default client times out after 10 seconds.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New creates an Alpha Vantage capability. The API key is required; the
// vendor's "demo" key is accepted but rate limited and may return dummy
// data.
func New(apiKey string, options ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, goerr.New("alpha vantage API key is required")
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
	return "alpha_vantage"
}

// incomeStatementResponse mirrors the vendor payload. Alpha Vantage
// reports throttling and bad symbols inside a 200 response body, so those
// fields are part of the schema.
type incomeStatementResponse struct {
	Symbol        string           `json:"symbol"`
	AnnualReports []map[string]any `json:"annualReports"`
	Note          string           `json:"Note"`
	Information   string           `json:"Information"`
	ErrorMessage  string           `json:"Error Message"`
}

// Fetch retrieves the annual income statements for the ticker. The
// returned payload is the sequence of annual report mappings; the router
// treats an empty sequence as a rejection.
func (c *Client) Fetch(ctx context.Context, ticker string) (any, error) {
	query := url.Values{}
	query.Set("function", "INCOME_STATEMENT")
	query.Set("symbol", ticker)
	query.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build request", goerr.V("ticker", ticker))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "request failed", goerr.V("ticker", ticker))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("unexpected response status",
			goerr.V("status", resp.StatusCode), goerr.V("ticker", ticker))
	}

	var body incomeStatementResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, goerr.Wrap(err, "failed to decode response", goerr.V("ticker", ticker))
	}

	if body.ErrorMessage != "" {
		return nil, goerr.New("api error", goerr.V("message", body.ErrorMessage), goerr.V("ticker", ticker))
	}
	if body.Note != "" {
		return nil, goerr.New("rate limited", goerr.V("note", body.Note))
	}
	if body.Information != "" {
		return nil, goerr.New("api notice", goerr.V("information", body.Information))
	}

	return body.AnnualReports, nil
}
