package config

import "strings"

type OAuthConfig interface {
	GetClientID() string
	GetClientSecret() string
	GetRedirectURL() string
	GetScopes() []string
}

type OAuth struct {
	ClientID     string   `env:"GOOGLE_CLIENT_ID"`
	ClientSecret string   `env:"GOOGLE_CLIENT_SECRET"`
	RedirectURL  string   `env:"GOOGLE_REDIRECT_URL"`
	Scopes       []string `env:"GOOGLE_SCOPES" envSeparator:","`
}

var _ OAuthConfig = OAuth{}

func (o OAuth) GetClientID() string {
	return o.ClientID
}

func (o OAuth) GetClientSecret() string {
	return o.ClientSecret
}

func (o OAuth) GetRedirectURL() string {
	return o.RedirectURL
}

func (o OAuth) GetScopes() []string {
	return o.Scopes
}

// GetRedirectURL on the composed config falls back to the base URL plus the
// callback path when no explicit redirect URL is configured.
func (c mainConfig) GetRedirectURL() string {
	if c.OAuth.RedirectURL != "" {
		return c.OAuth.RedirectURL
	}
	return strings.TrimSuffix(c.GetBaseURL(), "/") + "/auth/callback"
}
