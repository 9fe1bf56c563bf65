package app

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/florianilch/qbtools/internal/configstore"
	"github.com/florianilch/qbtools/internal/quickbooks"
)

type stubAPI struct {
	cred     configstore.Credential
	probeErr error
	probes   int
}

func (s *stubAPI) CompanyInfo(context.Context) (*quickbooks.CompanyInfo, error) {
	s.probes++
	if s.probeErr != nil {
		return nil, s.probeErr
	}
	return &quickbooks.CompanyInfo{CompanyName: "Acme"}, nil
}

func (s *stubAPI) Read(context.Context, string, string) (any, error) {
	return map[string]any{}, nil
}

func (s *stubAPI) QueryAll(context.Context, string, string, int) ([]any, error) {
	return []any{}, nil
}

// harness records every collaborator call made during one Authorize.
type harness struct {
	probeErr  error
	clients   []*stubAPI
	token     *oauth2.Token
	refreshErr error
	refreshes []string
	saves     []configstore.Config
	saveErr   error
}

func (h *harness) newClient(_ string, cred configstore.Credential) (API, error) {
	client := &stubAPI{cred: cred}
	// Only the first client sees the scripted probe failure
	if len(h.clients) == 0 {
		client.probeErr = h.probeErr
	}
	h.clients = append(h.clients, client)
	return client, nil
}

func (h *harness) Refresh(_ context.Context, refreshToken string) (*oauth2.Token, error) {
	h.refreshes = append(h.refreshes, refreshToken)
	return h.token, h.refreshErr
}

func (h *harness) Save(_ context.Context, cfg *configstore.Config) error {
	saved := *cfg
	if cfg.Credential != nil {
		cred := *cfg.Credential
		saved.Credential = &cred
	}
	h.saves = append(h.saves, saved)
	return h.saveErr
}

func (h *harness) BasePath() string {
	return "cfg"
}

func (h *harness) authorize(t *testing.T, cfg *configstore.Config) (API, error) {
	t.Helper()
	b, err := NewBootstrapper(h.newClient, h, h, WithQuiet(true))
	require.NoError(t, err)
	return b.Authorize(context.Background(), cfg)
}

func storedConfig() *configstore.Config {
	return &configstore.Config{
		CompanyID: "42",
		Credential: &configstore.Credential{
			AccessToken:  "a",
			RefreshToken: "r",
			TokenType:    "bearer",
		},
	}
}

func unauthorized() error {
	return &quickbooks.StatusError{StatusCode: http.StatusUnauthorized, Method: http.MethodGet, URL: "https://qb.test"}
}

func TestAuthorizeProbeSuccess(t *testing.T) {
	h := &harness{}

	client, err := h.authorize(t, storedConfig())
	require.NoError(t, err)

	require.Len(t, h.clients, 1)
	assert.Same(t, h.clients[0], client)
	assert.Equal(t, 1, h.clients[0].probes)
	assert.Empty(t, h.refreshes)
	assert.Empty(t, h.saves)
}

func TestAuthorizeMissingCredentialIsFatalBeforeNetwork(t *testing.T) {
	cases := []struct {
		name    string
		cfg     *configstore.Config
		wantErr error
	}{
		{"no credential", &configstore.Config{CompanyID: "42"}, ErrMissingCredential},
		{"empty refresh token", &configstore.Config{
			CompanyID:  "42",
			Credential: &configstore.Credential{AccessToken: "a", TokenType: "bearer"},
		}, ErrMissingRefreshToken},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := &harness{}

			_, err := h.authorize(t, tc.cfg)

			require.ErrorIs(t, err, tc.wantErr)
			assert.Equal(t, ExitConfig, ExitCode(err))
			assert.Contains(t, Guidance(err), "EXAMPLE CONFIG (cfg.json):")
			assert.Empty(t, h.clients, "no client is built, so no probe happens")
			assert.Empty(t, h.refreshes)
		})
	}
}

func TestAuthorizeUnauthorizedRefreshesExactlyOnce(t *testing.T) {
	h := &harness{
		probeErr: unauthorized(),
		token:    &oauth2.Token{AccessToken: "a2", RefreshToken: "r", TokenType: "bearer"},
	}
	cfg := storedConfig()

	client, err := h.authorize(t, cfg)
	require.NoError(t, err)

	assert.Equal(t, []string{"r"}, h.refreshes)
	require.Len(t, h.saves, 1)
	assert.Equal(t, "42", h.saves[0].CompanyID)
	assert.Equal(t, "a2", h.saves[0].Credential.AccessToken)
	assert.Equal(t, "a2", cfg.Credential.AccessToken)

	require.Len(t, h.clients, 2, "client is rebuilt with the new access token")
	assert.Same(t, h.clients[1], client)
	assert.Equal(t, "a2", h.clients[1].cred.AccessToken)
	assert.Zero(t, h.clients[1].probes, "no second probe after refresh")
}

func TestAuthorizeIdenticalRefreshSkipsSave(t *testing.T) {
	h := &harness{
		probeErr: unauthorized(),
		token:    &oauth2.Token{AccessToken: "a", RefreshToken: "r", TokenType: "bearer"},
	}

	_, err := h.authorize(t, storedConfig())
	require.NoError(t, err)

	assert.Len(t, h.refreshes, 1)
	assert.Empty(t, h.saves)
}

func TestAuthorizeRefreshKeepsOmittedFields(t *testing.T) {
	h := &harness{
		probeErr: unauthorized(),
		token:    &oauth2.Token{AccessToken: "a2"},
	}

	_, err := h.authorize(t, storedConfig())
	require.NoError(t, err)

	require.Len(t, h.saves, 1)
	assert.Equal(t, configstore.Credential{AccessToken: "a2", RefreshToken: "r", TokenType: "bearer"},
		*h.saves[0].Credential)
}

func TestAuthorizeRefreshFailure(t *testing.T) {
	h := &harness{
		probeErr:  unauthorized(),
		refreshErr: &oauth2.RetrieveError{ErrorCode: "invalid_grant"},
	}

	_, err := h.authorize(t, storedConfig())

	var refreshErr *RefreshError
	require.ErrorAs(t, err, &refreshErr)
	assert.Equal(t, ExitFailure, ExitCode(err))
	assert.Contains(t, Guidance(err), "cfg.{json,toml,yaml,yml}")
	assert.Len(t, h.refreshes, 1)
	assert.Empty(t, h.saves)
}

func TestAuthorizeSaveFailure(t *testing.T) {
	h := &harness{
		probeErr: unauthorized(),
		token:    &oauth2.Token{AccessToken: "a2", RefreshToken: "r2"},
		saveErr:  errors.New("disk full"),
	}

	_, err := h.authorize(t, storedConfig())
	assert.ErrorContains(t, err, "disk full")
}

func TestAuthorizeOtherStatusIsNotRetried(t *testing.T) {
	h := &harness{
		probeErr: &quickbooks.StatusError{StatusCode: http.StatusForbidden, Method: http.MethodGet, URL: "https://qb.test"},
	}

	_, err := h.authorize(t, storedConfig())

	var statusErr *quickbooks.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Contains(t, err.Error(), "Forbidden")
	assert.Equal(t, ExitFailure, ExitCode(err))
	assert.Empty(t, h.refreshes)
	assert.Len(t, h.clients, 1)
}

func TestAuthorizeTransportErrorBypassesRefresh(t *testing.T) {
	h := &harness{
		probeErr: &quickbooks.TransportError{Method: http.MethodGet, URL: "https://qb.test", Err: errors.New("connection refused")},
	}

	_, err := h.authorize(t, storedConfig())

	var transportErr *quickbooks.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, ExitTransport, ExitCode(err))
	assert.Empty(t, h.refreshes)
}

func TestNewBootstrapperValidation(t *testing.T) {
	h := &harness{}

	_, err := NewBootstrapper(nil, h, h)
	assert.Error(t, err)
	_, err = NewBootstrapper(h.newClient, nil, h)
	assert.Error(t, err)
	_, err = NewBootstrapper(h.newClient, h, nil)
	assert.Error(t, err)
}
