// Package config loads service configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Config holds every tunable of the service.
type Config struct {
	Server ServerConfig
	Store  StoreConfig
	Auth   AuthConfig
	Github GithubConfig
}

type ServerConfig struct {
	Addr string `env:"SERVER_ADDR,default=:5000"`
}

type StoreConfig struct {
	// DSN is the sqlite connection string. file::memory:?cache=shared
	// runs fully in memory.
	DSN string `env:"STORE_DSN,default=file:devlink.db?cache=shared"`
}

type AuthConfig struct {
	SigningKey      string `env:"AUTH_SIGNING_KEY,required"`
	SigningMethod   string `env:"AUTH_SIGNING_METHOD,default=HS256"`
	ContextKey      string `env:"AUTH_CONTEXT_KEY,default=user"`
	TokenExpiration int    `env:"AUTH_TOKEN_EXPIRATION,default=100"`
	TokenLookup     string `env:"AUTH_TOKEN_LOOKUP,default=header:x-auth-token"`
	Issuer          string `env:"AUTH_ISSUER,default=devlink"`
}

type GithubConfig struct {
	Token string `env:"GITHUB_TOKEN"`
}

// Load reads .env when present, then decodes the environment. A missing
// .env file is not an error, the environment alone may be complete.
func Load(filenames ...string) (*Config, error) {
	_ = godotenv.Load(filenames...)

	cfg := &Config{}
	if err := envdecode.StrictDecode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode environment: %w", err)
	}

	return cfg, nil
}

// GetSigningKey implements the auth configuration contract.
func (c *Config) GetSigningKey() string {
	return c.Auth.SigningKey
}

func (c *Config) GetSigningMethod() string {
	return c.Auth.SigningMethod
}

func (c *Config) GetContextKey() string {
	return c.Auth.ContextKey
}

// GetTokenExpiration returns the token lifetime in hours.
func (c *Config) GetTokenExpiration() int {
	return c.Auth.TokenExpiration
}

func (c *Config) GetTokenLookup() string {
	return c.Auth.TokenLookup
}

func (c *Config) GetIssuer() string {
	return c.Auth.Issuer
}
