package client

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/ameliadesk/internal/config"
)

// DefaultUserAgent identifies the service to the booking API.
const DefaultUserAgent = "ameliadesk/1.0"

// AuthFromConfig picks the auth strategy named by cfg.AuthScheme.
func AuthFromConfig(cfg config.APIConfig) (Authenticator, error) {
	switch strings.ToLower(cfg.AuthScheme) {
	case config.AuthHeader, "":
		return APIKey(cfg.KeyHeader, cfg.APIKey), nil
	case config.AuthBearer:
		return Bearer(cfg.Token), nil
	case config.AuthBasic:
		return Basic(cfg.Username, cfg.Password), nil
	}
	return nil, fmt.Errorf("unknown auth scheme %q", cfg.AuthScheme)
}

// NewFromConfig builds a client from configuration, applying the resource
// profile when one is configured.
func NewFromConfig(cfg config.APIConfig) (*Client, error) {
	auth, err := AuthFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	resources := DefaultResources()
	if cfg.ProfilePath != "" {
		profile, err := config.LoadProfile(cfg.ProfilePath)
		if err != nil {
			return nil, err
		}
		if resources, err = ApplyProfile(resources, profile); err != nil {
			return nil, err
		}
	}

	return New(Options{
		BaseURL:   cfg.BaseURL,
		Auth:      auth,
		Timeout:   cfg.Timeout,
		UserAgent: DefaultUserAgent,
		Resources: resources,
	}), nil
}
