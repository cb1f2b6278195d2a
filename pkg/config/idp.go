package config

import (
	"fmt"
	"time"
)

// IdPConfig configures token verification against an identity provider.
// When disabled, the boundary skips authentication entirely (local runs, tests).
type IdPConfig struct {
	Enabled     bool          `koanf:"enabled"`
	JwksURL     string        `koanf:"jwksurl"`
	Issuer      string        `koanf:"issuer"`
	ClientID    string        `koanf:"clientid"`
	MinInterval time.Duration `koanf:"mininterval"`
}

func (c *IdPConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.JwksURL == "" {
		return fmt.Errorf("IdP is enabled but JWKS URL is not configured")
	}
	if c.Issuer == "" {
		return fmt.Errorf("IdP is enabled but issuer is not configured")
	}
	if c.MinInterval <= 0 {
		return fmt.Errorf("IdP JWKS refresh interval must be greater than 0")
	}
	return nil
}
