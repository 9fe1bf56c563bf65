package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/florianilch/qbtools/internal/configstore"
	"github.com/florianilch/qbtools/internal/format"
	"github.com/florianilch/qbtools/internal/output"
	"github.com/florianilch/qbtools/internal/quickbooks"
	"github.com/florianilch/qbtools/internal/secretstore"
	"github.com/florianilch/qbtools/internal/tokensource"
)

// Entities that can be exported or fetched, keyed by their QuickBooks entity name.
const (
	EntityCustomer = "Customer"
	EntityItem     = "Item"
)

// Destination describes where and how a result is written.
type Destination struct {
	// Path is the output file; empty means standard output.
	Path   string
	Format format.Tag
	Pretty bool
}

// Option configures an App.
type Option func(*App)

// WithStdout sets the writer used for results without a destination path.
func WithStdout(w io.Writer) Option {
	return func(a *App) {
		a.stdout = w
	}
}

// WithTransport sets the base HTTP transport for API and token requests.
func WithTransport(transport http.RoundTripper) Option {
	return func(a *App) {
		a.transport = transport
	}
}

// WithRunID overrides the generated run id.
func WithRunID(id string) Option {
	return func(a *App) {
		a.runID = id
	}
}

// App wires settings, the credential file and the QuickBooks client for one invocation.
type App struct {
	cfg       *Config
	store     *configstore.Store
	secrets   secretstore.Store
	output    *output.Serializer
	stdout    io.Writer
	transport http.RoundTripper
	runID     string
}

// New creates a new App instance. No I/O is performed.
func New(cfg *Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	store, err := configstore.NewStore(cfg.Credentials.BasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create config store: %w", err)
	}

	secrets, err := cfg.OAuth.NewSecretStore()
	if err != nil {
		return nil, fmt.Errorf("failed to create secret store: %w", err)
	}

	a := &App{
		cfg:       cfg,
		store:     store,
		secrets:   secrets,
		stdout:    os.Stdout,
		transport: http.DefaultTransport,
		runID:     uuid.NewString(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.output = output.New(a.stdout)

	return a, nil
}

// RunID identifies this invocation in logs and API requests.
func (a *App) RunID() string {
	return a.runID
}

// ConfigLocation resolves the credential file currently in use.
func (a *App) ConfigLocation() configstore.Location {
	return a.store.Location()
}

// ConfigCandidates lists every credential file path that is considered.
func (a *App) ConfigCandidates() string {
	return a.store.Candidates()
}

// WriteExample writes the placeholder credential config.
func (a *App) WriteExample(dest Destination) error {
	return a.output.Write(configstore.OnDisk(configstore.Example()), dest.Path, dest.Format, dest.Pretty)
}

// SetClientSecret persists the OAuth client secret in the configured storage.
func (a *App) SetClientSecret(ctx context.Context, secret string) error {
	if err := a.secrets.Write(ctx, secret); err != nil {
		return fmt.Errorf("failed to store client secret in %s storage: %w", a.cfg.OAuth.SecretStorage, err)
	}
	slog.InfoContext(ctx, "client secret stored", "storage", string(a.cfg.OAuth.SecretStorage))
	return nil
}

// LoadCredentials reads the credential file. A missing file is seeded with the
// placeholder config; both that case and malformed content come back with guidance.
func (a *App) LoadCredentials(ctx context.Context) (*configstore.Config, error) {
	cfg, err := a.store.Load(ctx)
	if err == nil {
		return cfg, nil
	}

	guidance := exampleGuidance(a.store.BasePath())

	var malformed *configstore.MalformedError
	switch {
	case errors.Is(err, configstore.ErrNotFound):
		slog.ErrorContext(ctx, "config file not found", "candidates", a.store.Candidates())
		if saveErr := a.store.Save(ctx, configstore.Example()); saveErr != nil {
			slog.ErrorContext(ctx, "failed to write example config", "error", saveErr)
		} else {
			slog.InfoContext(ctx, "example config written", "path", a.store.Location().Path)
		}
		return nil, &GuidedError{Err: err, Guidance: guidance}
	case errors.As(err, &malformed):
		return nil, &GuidedError{Err: err, Guidance: guidance}
	default:
		return nil, err
	}
}

// Connect loads the credential file and returns an authorized client.
func (a *App) Connect(ctx context.Context) (API, error) {
	cfg, err := a.LoadCredentials(ctx)
	if err != nil {
		return nil, err
	}

	bootstrapper, err := NewBootstrapper(a.newClient, RefreshFunc(a.refresh), a.store, WithQuiet(a.cfg.Quiet))
	if err != nil {
		return nil, err
	}

	return bootstrapper.Authorize(ctx, cfg)
}

// Export writes every entity matching where.
func (a *App) Export(ctx context.Context, entity, where string, dest Destination) error {
	client, err := a.Connect(ctx)
	if err != nil {
		return err
	}

	entities, err := client.QueryAll(ctx, entity, where, a.cfg.API.PageSize)
	if err != nil {
		return fmt.Errorf("failed to export %s: %w", entity, err)
	}

	a.logCount(ctx, entity, len(entities))

	return a.output.Write(entities, dest.Path, dest.Format, dest.Pretty)
}

// Get writes a single entity.
func (a *App) Get(ctx context.Context, entity, id string, dest Destination) error {
	client, err := a.Connect(ctx)
	if err != nil {
		return err
	}

	value, err := client.Read(ctx, entity, id)
	if err != nil {
		return fmt.Errorf("failed to read %s %s: %w", entity, id, err)
	}

	return a.output.Write(value, dest.Path, dest.Format, dest.Pretty)
}

// CompanyInfo writes the company profile of the authorized realm.
func (a *App) CompanyInfo(ctx context.Context, dest Destination) error {
	client, err := a.Connect(ctx)
	if err != nil {
		return err
	}

	info, err := client.CompanyInfo(ctx)
	if err != nil {
		return fmt.Errorf("failed to read company info: %w", err)
	}

	return a.output.Write(info, dest.Path, dest.Format, dest.Pretty)
}

func (a *App) logCount(ctx context.Context, entity string, count int) {
	level := slog.LevelDebug
	if a.cfg.Verbose {
		level = slog.LevelInfo
	}
	slog.Log(ctx, level, "export finished", "entity", entity, "count", count)
}

func (a *App) newClient(companyID string, cred configstore.Credential) (API, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: cred.AccessToken,
		TokenType:   cred.TokenType,
	})

	return quickbooks.New(companyID, ts,
		quickbooks.WithBaseURL(a.cfg.API.BaseURL),
		quickbooks.WithMinorVersion(a.cfg.API.MinorVersion),
		quickbooks.WithTimeout(a.cfg.API.Timeout),
		quickbooks.WithTransport(a.transport),
		quickbooks.WithRequestID(a.runID),
	)
}

// refresh resolves the client secret only when a refresh is actually needed.
func (a *App) refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	secret, err := a.secrets.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading oauth client secret: %w", err)
	}

	endpoint := tokensource.Endpoint
	endpoint.TokenURL = a.cfg.OAuth.TokenURL

	refresher, err := tokensource.NewRefresher(a.cfg.OAuth.ClientID, secret, endpoint,
		tokensource.WithTransport(a.transport),
		tokensource.WithTimeout(a.cfg.API.Timeout),
	)
	if err != nil {
		return nil, err
	}

	return refresher.Refresh(ctx, refreshToken)
}
