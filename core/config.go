package core

import (
	"fmt"
	"strings"
)

// DefaultBaseURL is the production API origin used when no override is set.
const DefaultBaseURL = "https://api.crmhub.io"

const (
	DefaultTimeoutMS  = 30000
	DefaultMaxRetries = 3
)

type CredentialConfig struct {
	APIKey     string `koanf:"api_key" mapstructure:"api_key"`
	OAuthToken string `koanf:"oauth_token" mapstructure:"oauth_token"`
}

// Bearer returns the credential used for the Authorization header.
func (c CredentialConfig) Bearer() string {
	if token := strings.TrimSpace(c.OAuthToken); token != "" {
		return token
	}
	return strings.TrimSpace(c.APIKey)
}

type Config struct {
	BaseURL    string           `koanf:"base_url" mapstructure:"base_url"`
	Credential CredentialConfig `koanf:"credential" mapstructure:"credential"`
	TimeoutMS  int              `koanf:"timeout_ms" mapstructure:"timeout_ms"`
	MaxRetries int              `koanf:"max_retries" mapstructure:"max_retries"`
}

func DefaultConfig() Config {
	return Config{
		BaseURL:    DefaultBaseURL,
		TimeoutMS:  DefaultTimeoutMS,
		MaxRetries: DefaultMaxRetries,
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return fmt.Errorf("core: base_url is required")
	}
	apiKey := strings.TrimSpace(c.Credential.APIKey)
	oauthToken := strings.TrimSpace(c.Credential.OAuthToken)
	if apiKey == "" && oauthToken == "" {
		return fmt.Errorf("core: credential requires an api_key or oauth_token")
	}
	if apiKey != "" && oauthToken != "" {
		return fmt.Errorf("core: credential accepts either api_key or oauth_token, not both")
	}
	if c.TimeoutMS <= 0 {
		return fmt.Errorf("core: timeout_ms must be positive")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("core: max_retries cannot be negative")
	}
	return nil
}
