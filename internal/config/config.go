package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

type Config interface {
	EnvConfig
	CorsConfig
	OAuthConfig
	GuardConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetBaseURL() string
	GetDataFolder() string
	GetStorageBackend() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	OAuth
	Guards
}

// New parses the process environment into a Config
func New() (Config, error) {
	c := mainConfig{}
	if err := env.Parse(&c); err != nil {
		return nil, errors.Wrap(err, "[config.New] failed to parse environment")
	}
	return c, nil
}
