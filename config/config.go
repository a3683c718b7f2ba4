// Package config loads client configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// CredentialsConfig holds the Fyers API credential pieces.
// The SDK consumes the composite "clientID:accessToken" form.
type CredentialsConfig struct {
	ClientID    string `envconfig:"FYERS_CLIENT_ID"`
	AccessToken string `envconfig:"FYERS_ACCESS_TOKEN"`
}

// CompositeToken joins the credential pieces into the form the sockets and
// REST API expect
func (c CredentialsConfig) CompositeToken() string {
	if strings.Contains(c.AccessToken, ":") {
		return c.AccessToken
	}
	return c.ClientID + ":" + c.AccessToken
}

// Validate checks that both credential pieces are present
func (c CredentialsConfig) Validate() error {
	if c.ClientID == "" && !strings.Contains(c.AccessToken, ":") {
		return fmt.Errorf("FYERS_CLIENT_ID is required")
	}
	if c.AccessToken == "" {
		return fmt.Errorf("FYERS_ACCESS_TOKEN is required")
	}
	return nil
}

// FeedConfig holds data socket knobs
type FeedConfig struct {
	Symbols      []string      `envconfig:"FEED_SYMBOLS"`
	PollInterval time.Duration `envconfig:"FEED_POLL_INTERVAL" default:"500ms"`
}

// LogConfig controls log output
type LogConfig struct {
	Level   string `envconfig:"LOG_LEVEL" default:"info"`
	Console bool   `envconfig:"LOG_CONSOLE" default:"true"`
}

// Config is the full environment configuration for example binaries
type Config struct {
	Credentials CredentialsConfig
	Feed        FeedConfig
	Log         LogConfig
}

// Load fills the given struct from environment variables
func Load[T any](prefix string) (T, error) {
	var cfg T
	err := envconfig.Process(prefix, &cfg)
	return cfg, err
}
