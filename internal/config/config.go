// Package config holds the catalog service configuration.
package config

import (
	"fmt"
	"strings"

	"github.com/abgdnv/storecatalog/internal/auth"
	"github.com/abgdnv/storecatalog/pkg/config"
	"github.com/abgdnv/storecatalog/pkg/config/configloader"
	"github.com/shopspring/decimal"
)

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	HTTPServer config.HTTPConfig     `koanf:"server"`
	Database   config.DatabaseConfig `koanf:"database"`
	Log        config.LogConfig      `koanf:"log"`
	PProf      config.PProfConfig    `koanf:"pprof"`
	Shutdown   config.ShutdownConfig `koanf:"shutdown"`
	CORS       config.CORSConfig     `koanf:"cors"`
	NATS       config.NATSConfig     `koanf:"nats"`
	Auth       AuthConfig            `koanf:"auth"`
	Seed       SeedConfig            `koanf:"seed"`
}

// AuthConfig configures Basic authentication and the accounts created at startup.
type AuthConfig struct {
	Realm    string     `koanf:"realm"`
	HashCost int        `koanf:"hashCost"`
	Users    []SeedUser `koanf:"users"`
}

type SeedUser struct {
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	Role     string `koanf:"role"`
}

// SeedConfig lists sample products inserted at startup when their code is absent.
type SeedConfig struct {
	Products []SeedProduct `koanf:"products"`
}

type SeedProduct struct {
	ProductCode string `koanf:"productCode"`
	Name        string `koanf:"name"`
	Description string `koanf:"description"`
	Price       string `koanf:"price"`
	Msrp        string `koanf:"msrp"`
	Stock       *int64 `koanf:"stock"`
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.HTTPServer.String())
	b.WriteString(c.Database.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Shutdown.String())
	b.WriteString(c.CORS.String())
	b.WriteString(c.NATS.String())

	b.WriteString("\n--- Auth ---\n")
	b.WriteString(fmt.Sprintf("  realm: %s\n", c.Auth.Realm))
	b.WriteString(fmt.Sprintf("  hashCost: %d\n", c.Auth.HashCost))
	for _, u := range c.Auth.Users {
		b.WriteString(fmt.Sprintf("  user: %s (%s) password: ****\n", u.Username, u.Role))
	}

	b.WriteString("\n--- Seed ---\n")
	b.WriteString(fmt.Sprintf("  products: %d\n", len(c.Seed.Products)))
	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	if err := c.HTTPServer.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.PProf.Validate(); err != nil {
		return err
	}
	if err := c.Shutdown.Validate(); err != nil {
		return err
	}
	if err := c.CORS.Validate(); err != nil {
		return err
	}
	if err := c.NATS.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	return c.Seed.Validate()
}

func (c *AuthConfig) Validate() error {
	if strings.TrimSpace(c.Realm) == "" {
		return fmt.Errorf("auth realm is not configured")
	}
	for _, u := range c.Users {
		if strings.TrimSpace(u.Username) == "" || u.Password == "" {
			return fmt.Errorf("auth seed user needs a username and a password")
		}
		if _, err := auth.ParseRole(u.Role); err != nil {
			return fmt.Errorf("auth seed user %s: %w", u.Username, err)
		}
	}
	return nil
}

func (c *SeedConfig) Validate() error {
	for _, p := range c.Products {
		if strings.TrimSpace(p.ProductCode) == "" || strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("seed product needs a productCode and a name")
		}
		price, err := decimal.NewFromString(p.Price)
		if err != nil || !price.IsPositive() {
			return fmt.Errorf("seed product %s: price must be a positive decimal, got %q", p.ProductCode, p.Price)
		}
		if p.Msrp != "" {
			msrp, err := decimal.NewFromString(p.Msrp)
			if err != nil || !msrp.IsPositive() {
				return fmt.Errorf("seed product %s: msrp must be a positive decimal, got %q", p.ProductCode, p.Msrp)
			}
		}
		if p.Stock != nil && *p.Stock < 0 {
			return fmt.Errorf("seed product %s: stock must not be negative", p.ProductCode)
		}
	}
	return nil
}
