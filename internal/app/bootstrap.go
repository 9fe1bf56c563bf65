package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/oauth2"

	"github.com/florianilch/qbtools/internal/configstore"
	"github.com/florianilch/qbtools/internal/quickbooks"
)

// API is the part of the QuickBooks client that commands use.
type API interface {
	CompanyInfo(ctx context.Context) (*quickbooks.CompanyInfo, error)
	Read(ctx context.Context, entity, id string) (any, error)
	QueryAll(ctx context.Context, entity, where string, pageSize int) ([]any, error)
}

// Compile-time check to ensure the QuickBooks client implements API
var _ API = (*quickbooks.Client)(nil)

// ClientFactory builds an API client authorized with cred.
type ClientFactory func(companyID string, cred configstore.Credential) (API, error)

// Refresher exchanges a refresh token for a new token.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

// RefreshFunc adapts a function to the Refresher interface.
type RefreshFunc func(ctx context.Context, refreshToken string) (*oauth2.Token, error)

// Refresh calls f(ctx, refreshToken).
func (f RefreshFunc) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	return f(ctx, refreshToken)
}

// ConfigSaver persists a refreshed credential.
type ConfigSaver interface {
	Save(ctx context.Context, cfg *configstore.Config) error
	BasePath() string
}

// BootstrapOption configures a Bootstrapper.
type BootstrapOption func(*Bootstrapper)

// WithQuiet suppresses the company banner after a successful probe.
func WithQuiet(quiet bool) BootstrapOption {
	return func(b *Bootstrapper) {
		b.quiet = quiet
	}
}

// Bootstrapper turns a loaded config into an authorized API client, refreshing the
// credential at most once when the server rejects it.
type Bootstrapper struct {
	newClient ClientFactory
	refresher Refresher
	saver     ConfigSaver
	quiet     bool
}

// NewBootstrapper creates a Bootstrapper. The refresher is only used after a 401.
func NewBootstrapper(newClient ClientFactory, refresher Refresher, saver ConfigSaver, opts ...BootstrapOption) (*Bootstrapper, error) {
	if newClient == nil {
		return nil, fmt.Errorf("missing client factory")
	}
	if refresher == nil {
		return nil, fmt.Errorf("missing refresher")
	}
	if saver == nil {
		return nil, fmt.Errorf("missing config saver")
	}

	b := &Bootstrapper{
		newClient: newClient,
		refresher: refresher,
		saver:     saver,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Authorize probes the API with cfg's credential and returns a usable client.
//
// On 401 the refresh token is exchanged once; cfg.Credential is updated and saved only
// if the new credential differs. The rebuilt client is returned without probing again.
// Transport failures and other statuses are returned as is.
func (b *Bootstrapper) Authorize(ctx context.Context, cfg *configstore.Config) (API, error) {
	if cfg.Credential == nil {
		return nil, &GuidedError{Err: ErrMissingCredential, Guidance: exampleGuidance(b.saver.BasePath())}
	}
	if cfg.Credential.RefreshToken == "" {
		return nil, &GuidedError{Err: ErrMissingRefreshToken, Guidance: exampleGuidance(b.saver.BasePath())}
	}

	current := *cfg.Credential

	client, err := b.newClient(cfg.CompanyID, current)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	info, err := client.CompanyInfo(ctx)
	if err == nil {
		b.report(ctx, cfg.CompanyID, info)
		return client, nil
	}

	var statusErr *quickbooks.StatusError
	if !errors.As(err, &statusErr) || !statusErr.Unauthorized() {
		return nil, err
	}

	slog.InfoContext(ctx, "access token rejected, refreshing", "company_id", cfg.CompanyID)

	token, err := b.refresher.Refresh(ctx, current.RefreshToken)
	if err != nil {
		return nil, &GuidedError{
			Err: &RefreshError{Err: err},
			Guidance: "The refresh token was not accepted. Obtain a new one and put it into one of " +
				configstore.Candidates(b.saver.BasePath()),
		}
	}

	refreshed := credentialFromToken(token, current)
	if refreshed != current {
		cfg.Credential = &refreshed
		if err := b.saver.Save(ctx, cfg); err != nil {
			return nil, fmt.Errorf("failed to save refreshed credential: %w", err)
		}
		slog.InfoContext(ctx, "credential refreshed and saved",
			"refresh_token_rotated", refreshed.RefreshToken != current.RefreshToken)
	} else {
		slog.DebugContext(ctx, "refresh returned the stored credential")
	}

	client, err = b.newClient(cfg.CompanyID, refreshed)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

func (b *Bootstrapper) report(ctx context.Context, companyID string, info *quickbooks.CompanyInfo) {
	if b.quiet {
		return
	}
	slog.InfoContext(ctx, "authorized",
		"company_id", companyID,
		"company_name", info.CompanyName,
		"legal_name", info.LegalName,
		"address", info.CompanyAddr.String(),
	)
}

// credentialFromToken keeps the previous refresh token and type when the server omits them.
func credentialFromToken(token *oauth2.Token, previous configstore.Credential) configstore.Credential {
	cred := configstore.Credential{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
	}
	if cred.RefreshToken == "" {
		cred.RefreshToken = previous.RefreshToken
	}
	if cred.TokenType == "" {
		cred.TokenType = previous.TokenType
	}
	return cred
}

// exampleGuidance renders a valid placeholder config for the default file of base.
func exampleGuidance(base string) string {
	example, err := configstore.ExampleJSON()
	if err != nil {
		return "Expected one of " + configstore.Candidates(base)
	}
	return fmt.Sprintf("EXAMPLE CONFIG (%s.json):\n%s", base, example)
}
