package tokensource

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// RefresherOption configures a Refresher.
type RefresherOption func(*refresherConfig)

// refresherConfig holds configuration for NewRefresher.
type refresherConfig struct {
	baseTransport http.RoundTripper
	timeout       time.Duration
}

// WithTransport sets a custom base transport for token refresh requests.
// If not provided, http.DefaultTransport is used.
func WithTransport(transport http.RoundTripper) RefresherOption {
	return func(c *refresherConfig) {
		c.baseTransport = transport
	}
}

// WithTimeout bounds a single refresh request. Defaults to 30 seconds.
func WithTimeout(timeout time.Duration) RefresherOption {
	return func(c *refresherConfig) {
		c.timeout = timeout
	}
}

// Refresher performs refresh-token grants for a confidential client.
type Refresher struct {
	config     *oauth2.Config
	httpClient *http.Client
}

// NewRefresher creates a Refresher for the given client credentials and endpoint.
func NewRefresher(clientID, clientSecret string, endpoint oauth2.Endpoint, opts ...RefresherOption) (*Refresher, error) {
	if clientID == "" {
		return nil, fmt.Errorf("oauth client id cannot be empty")
	}
	if clientSecret == "" {
		return nil, fmt.Errorf("oauth client secret cannot be empty")
	}
	if endpoint.TokenURL == "" {
		return nil, fmt.Errorf("token URL cannot be empty")
	}

	cfg := &refresherConfig{
		baseTransport: http.DefaultTransport,
		timeout:       30 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &Refresher{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Scopes:       scopes,
			Endpoint:     endpoint,
		},
		httpClient: &http.Client{
			Timeout:   cfg.timeout,
			Transport: cfg.baseTransport,
		},
	}, nil
}

// Refresh exchanges refreshToken for a new token. When the server omits a refresh token
// in its answer the returned token carries the one that was sent.
// HTTP-level rejections are returned as *oauth2.RetrieveError.
func (r *Refresher) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("refresh token cannot be empty")
	}

	// oauth2 package injects custom HTTP clients via context (oauth2.HTTPClient key)
	ctx = context.WithValue(ctx, oauth2.HTTPClient, r.httpClient)

	// An empty access token forces the token source to refresh on first use
	ts := r.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})

	token, err := ts.Token()
	if err != nil {
		return nil, fmt.Errorf("refreshing access token: %w", err)
	}

	if token.RefreshToken == "" {
		token.RefreshToken = refreshToken
	}
	return token, nil
}
