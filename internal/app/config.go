package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/user"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/florianilch/qbtools/internal/quickbooks"
	"github.com/florianilch/qbtools/internal/secretstore"
	"github.com/florianilch/qbtools/internal/tokensource"
)

// LogFormat represents the logging output format.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
	LogFormatOTel LogFormat = "otel"
)

// Environment selects the QuickBooks API host.
type Environment string

const (
	EnvironmentSandbox    Environment = "sandbox"
	EnvironmentProduction Environment = "production"
)

// SecretStorageType represents where the OAuth client secret is kept.
type SecretStorageType string

const (
	// SecretStorageConfig reads oauth.client_secret from the settings themselves.
	SecretStorageConfig  SecretStorageType = "config"
	SecretStorageFile    SecretStorageType = "file"
	SecretStorageEnv     SecretStorageType = "env"
	SecretStorageKeyring SecretStorageType = "keyring"
)

// Default configuration values
const (
	DefaultConfigLogFormat     = LogFormatText
	DefaultConfigBasePath      = "qb-api-cfg"
	DefaultConfigEnvironment   = EnvironmentSandbox
	DefaultConfigMinorVersion  = quickbooks.DefaultMinorVersion
	DefaultConfigTimeout       = 30 * time.Second
	DefaultConfigPageSize      = quickbooks.MaxPageSize
	DefaultConfigSecretStorage = SecretStorageConfig
)

// DefaultConfigTokenURL is the Intuit bearer token endpoint.
var DefaultConfigTokenURL = tokensource.Endpoint.TokenURL

// CredentialsConfig locates the credential file.
type CredentialsConfig struct {
	// BasePath is the credential file path without extension.
	BasePath string `json:"base_path" validate:"required"`
}

// APIConfig holds QuickBooks API settings.
type APIConfig struct {
	Environment  Environment   `json:"environment" validate:"required,oneof=sandbox production"`
	BaseURL      string        `json:"base_url" validate:"required,url"`
	MinorVersion string        `json:"minor_version"`
	Timeout      time.Duration `json:"timeout" validate:"gt=0"`
	PageSize     int           `json:"page_size" validate:"min=1,max=1000"`
}

// OAuthConfig describes the OAuth client used for refreshing the credential.
type OAuthConfig struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	TokenURL     string `json:"token_url" validate:"required,url"`

	// Storage configuration - where the client secret comes from
	SecretStorage SecretStorageType `json:"secret_storage" validate:"required,oneof=config file env keyring"`

	// Storage-specific settings (mutually exclusive based on SecretStorage)
	SecretFile   string `json:"secret_file,omitempty"`    // For file storage: path to secret file
	SecretEnvKey string `json:"secret_env_key,omitempty"` // For env storage: environment variable name
	KeyringUser  string `json:"keyring_user,omitempty"`   // For keyring storage: user identifier
}

// NewSecretStore creates the secret store selected by SecretStorage.
func (o *OAuthConfig) NewSecretStore() (secretstore.Store, error) {
	switch o.SecretStorage {
	case SecretStorageConfig:
		return settingsSecret(o.ClientSecret), nil
	case SecretStorageFile:
		return secretstore.NewFileStore(o.SecretFile)
	case SecretStorageEnv:
		return secretstore.NewEnvStore(o.SecretEnvKey)
	case SecretStorageKeyring:
		return secretstore.NewKeyringStore(secretstore.KeyringService, o.KeyringUser)
	default:
		return nil, fmt.Errorf("unsupported secret storage type: %s", o.SecretStorage)
	}
}

// settingsSecret serves oauth.client_secret from the loaded settings.
type settingsSecret string

// Compile-time check to ensure settingsSecret implements secretstore.Store
var _ secretstore.Store = settingsSecret("")

func (s settingsSecret) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s == "" {
		return "", errors.New("oauth.client_secret is not set")
	}
	return string(s), nil
}

func (s settingsSecret) Write(ctx context.Context, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fmt.Errorf("%w: edit oauth.client_secret in the settings file or choose another oauth.secret_storage",
		secretstore.ErrReadOnly)
}

// Config holds the application's settings. The credential file is separate.
type Config struct {
	// LogLevel for logging output (defaults to Info if unset).
	LogLevel  slog.Level `json:"log_level"`
	LogFormat LogFormat  `json:"log_format" validate:"oneof=text json otel"`
	// Quiet suppresses the company banner.
	Quiet bool `json:"quiet"`
	// Verbose logs result counts at info level.
	Verbose     bool              `json:"verbose"`
	Credentials CredentialsConfig `json:"credentials"`
	API         APIConfig         `json:"api"`
	OAuth       OAuthConfig       `json:"oauth"`
}

// Default creates a new Config with default values applied.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	return cfg, nil
}

// ApplyDefaults fills unset config fields with sensible defaults.
func (c *Config) ApplyDefaults() error {
	if c.LogFormat == "" {
		c.LogFormat = DefaultConfigLogFormat
	}
	if c.Credentials.BasePath == "" {
		c.Credentials.BasePath = DefaultConfigBasePath
	}
	if c.API.Environment == "" {
		c.API.Environment = DefaultConfigEnvironment
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = quickbooks.SandboxBaseURL
		if c.API.Environment == EnvironmentProduction {
			c.API.BaseURL = quickbooks.ProductionBaseURL
		}
	}
	if c.API.MinorVersion == "" {
		c.API.MinorVersion = DefaultConfigMinorVersion
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultConfigTimeout
	}
	if c.API.PageSize == 0 {
		c.API.PageSize = DefaultConfigPageSize
	}
	if c.OAuth.TokenURL == "" {
		c.OAuth.TokenURL = DefaultConfigTokenURL
	}
	if c.OAuth.SecretStorage == "" {
		c.OAuth.SecretStorage = DefaultConfigSecretStorage
	}

	// Dynamic defaults based on storage type
	switch c.OAuth.SecretStorage {
	case SecretStorageFile:
		if c.OAuth.SecretFile == "" {
			configDir, err := os.UserConfigDir()
			if err != nil {
				return fmt.Errorf("oauth.secret_file required (auto-detect failed: %w)", err)
			}
			c.OAuth.SecretFile = filepath.Join(configDir, "qbtools", "client-secret")
		}
	case SecretStorageKeyring:
		if c.OAuth.KeyringUser == "" {
			currentUser, err := user.Current()
			if err != nil {
				return fmt.Errorf("oauth.keyring_user required (auto-detect failed: %w)", err)
			}
			c.OAuth.KeyringUser = currentUser.Username
		}
	case SecretStorageConfig, SecretStorageEnv:
		// client_secret or secret_env_key must be explicitly configured (no sensible default)
	}

	return nil
}

// Validate validates the configuration using struct tags and enum values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	switch c.OAuth.SecretStorage {
	case SecretStorageFile:
		if c.OAuth.SecretFile == "" {
			return errors.New("oauth.secret_file required for file storage")
		}
	case SecretStorageEnv:
		if c.OAuth.SecretEnvKey == "" {
			return errors.New("oauth.secret_env_key required for env storage")
		}
	case SecretStorageKeyring:
		if c.OAuth.KeyringUser == "" {
			return errors.New("oauth.keyring_user required for keyring storage")
		}
	}

	return nil
}
