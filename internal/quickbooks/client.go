package quickbooks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
)

const (
	// SandboxBaseURL serves sandbox companies.
	SandboxBaseURL = "https://sandbox-quickbooks.api.intuit.com"
	// ProductionBaseURL serves live companies.
	ProductionBaseURL = "https://quickbooks.api.intuit.com"

	// DefaultMinorVersion is the API minor version requested unless overridden.
	DefaultMinorVersion = "75"
	// MaxPageSize is the largest MAXRESULTS the query endpoint accepts.
	MaxPageSize = 1000

	defaultTimeout = 30 * time.Second
)

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	baseURL       string
	baseTransport http.RoundTripper
	timeout       time.Duration
	minorVersion  string
	requestID     string
}

// WithBaseURL sets the API host. Defaults to SandboxBaseURL.
func WithBaseURL(baseURL string) Option {
	return func(c *clientConfig) {
		c.baseURL = baseURL
	}
}

// WithTransport sets the base transport below the authorizing transport.
// If not provided, http.DefaultTransport is used.
func WithTransport(transport http.RoundTripper) Option {
	return func(c *clientConfig) {
		c.baseTransport = transport
	}
}

// WithTimeout bounds every request including reading the response body.
func WithTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) {
		c.timeout = timeout
	}
}

// WithMinorVersion sets the minorversion query parameter. Empty omits it.
func WithMinorVersion(version string) Option {
	return func(c *clientConfig) {
		c.minorVersion = version
	}
}

// WithRequestID sends id as Request-Id header to correlate calls with Intuit support logs.
func WithRequestID(id string) Option {
	return func(c *clientConfig) {
		c.requestID = id
	}
}

// Client issues read requests for a single company (realm).
type Client struct {
	baseURL      *url.URL
	companyID    string
	httpClient   *http.Client
	minorVersion string
}

// New creates a Client for companyID whose requests are authorized by ts.
func New(companyID string, ts oauth2.TokenSource, opts ...Option) (*Client, error) {
	if companyID == "" {
		return nil, fmt.Errorf("company id cannot be empty")
	}
	if ts == nil {
		return nil, fmt.Errorf("missing token source")
	}

	cfg := &clientConfig{
		baseURL:       SandboxBaseURL,
		baseTransport: http.DefaultTransport,
		timeout:       defaultTimeout,
		minorVersion:  DefaultMinorVersion,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	baseURL, err := url.Parse(cfg.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host required", cfg.baseURL)
	}

	return &Client{
		baseURL:   baseURL,
		companyID: companyID,
		httpClient: &http.Client{
			Timeout: cfg.timeout,
			Transport: &oauth2.Transport{
				Source: ts,
				Base: &apiTransport{
					Base:      cfg.baseTransport,
					RequestID: cfg.requestID,
				},
			},
		},
		minorVersion: cfg.minorVersion,
	}, nil
}

// CompanyID returns the realm this client talks to.
func (c *Client) CompanyID() string {
	return c.companyID
}

// get issues GET /v3/company/{companyID}/{path...} and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, query url.Values, out any, path ...string) error {
	u := c.baseURL.JoinPath(append([]string{"v3", "company", c.companyID}, path...)...)
	if query == nil {
		query = url.Values{}
	}
	if c.minorVersion != "" {
		query.Set("minorversion", c.minorVersion)
	}
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Cancellation is the caller's decision, not a network failure
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return ctxErr
		}
		return &TransportError{Method: req.Method, URL: u.Redacted(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newStatusError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", u.Path, err)
	}
	return nil
}
