package config

import (
	"fmt"
	"strings"
)

type CORSConfig struct {
	AllowedOrigin string `koanf:"allowedOrigin"`
}

// String returns a string representation of the CORS configuration.
func (c *CORSConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- CORS ---\n")
	b.WriteString(fmt.Sprintf("  allowedOrigin: %s\n", c.AllowedOrigin))
	return b.String()
}

func (c *CORSConfig) Validate() error {
	if c.AllowedOrigin == "" {
		return fmt.Errorf("cors allowed origin is not configured")
	}
	if !strings.HasPrefix(c.AllowedOrigin, "http://") && !strings.HasPrefix(c.AllowedOrigin, "https://") {
		return fmt.Errorf("cors allowed origin must be an http(s) origin: %s", c.AllowedOrigin)
	}
	return nil
}
