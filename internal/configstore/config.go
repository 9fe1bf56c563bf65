package configstore

import "github.com/florianilch/qbtools/internal/format"

// Credential is the OAuth2 token pair stored in the config file.
type Credential struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
}

// Config is the content of the credential file.
type Config struct {
	CompanyID string
	// Credential is nil when the file carries none of the token keys.
	Credential *Credential
}

// fileConfig is the on-disk shape with the credential flattened into the top level.
// Pointers tell absent keys apart from empty values.
type fileConfig struct {
	CompanyID    string  `json:"company_id" toml:"company_id" yaml:"company_id"`
	AccessToken  *string `json:"access_token,omitempty" toml:"access_token,omitempty" yaml:"access_token,omitempty"`
	RefreshToken *string `json:"refresh_token,omitempty" toml:"refresh_token,omitempty" yaml:"refresh_token,omitempty"`
	TokenType    *string `json:"token_type,omitempty" toml:"token_type,omitempty" yaml:"token_type,omitempty"`
}

func (fc *fileConfig) toConfig() *Config {
	cfg := &Config{CompanyID: fc.CompanyID}
	if fc.AccessToken == nil && fc.RefreshToken == nil && fc.TokenType == nil {
		return cfg
	}

	cfg.Credential = &Credential{
		AccessToken:  deref(fc.AccessToken),
		RefreshToken: deref(fc.RefreshToken),
		TokenType:    deref(fc.TokenType),
	}
	return cfg
}

func fromConfig(cfg *Config) *fileConfig {
	fc := &fileConfig{CompanyID: cfg.CompanyID}
	if c := cfg.Credential; c != nil {
		fc.AccessToken = &c.AccessToken
		fc.RefreshToken = &c.RefreshToken
		fc.TokenType = &c.TokenType
	}
	return fc
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// OnDisk returns cfg in the on-disk schema, ready for format.Serialize.
func OnDisk(cfg *Config) any {
	return fromConfig(cfg)
}

// Encode serializes cfg in the on-disk schema. JSON is always pretty-printed.
func Encode(cfg *Config, tag format.Tag) ([]byte, error) {
	return format.Serialize(fromConfig(cfg), tag, true)
}

// Decode parses the on-disk schema. Errors are *format.DecodeError.
func Decode(data []byte, tag format.Tag) (*Config, error) {
	var fc fileConfig
	if err := format.Deserialize(data, tag, &fc); err != nil {
		return nil, err
	}
	return fc.toConfig(), nil
}

// placeholder values are obviously invalid and only show operators the expected shape
const (
	placeholderCompanyID = "0000000000000000000"
	placeholderToken     = "XX00000000000Xxx0XXXXX0xxxxXXX0X0XXXxXxXxXXXxXxXxx"
	placeholderTokenType = "bearer"
)

// Example returns a placeholder config to seed a missing file or to print as guidance.
func Example() *Config {
	return &Config{
		CompanyID: placeholderCompanyID,
		Credential: &Credential{
			AccessToken:  placeholderToken,
			RefreshToken: placeholderToken,
			TokenType:    placeholderTokenType,
		},
	}
}

// ExampleJSON renders Example as pretty JSON.
func ExampleJSON() (string, error) {
	data, err := Encode(Example(), format.JSON)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
