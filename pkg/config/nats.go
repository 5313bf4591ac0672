package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// NATSConfig describes the connection used to publish low stock alerts.
// Url may list several servers separated by commas.
type NATSConfig struct {
	Enabled bool          `koanf:"enabled"`
	Url     string        `koanf:"url"`
	Name    string        `koanf:"name"`
	Timeout time.Duration `koanf:"timeout"`
}

func (c *NATSConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- NATS ---\n")
	b.WriteString(fmt.Sprintf("  enabled: %t\n", c.Enabled))
	b.WriteString(fmt.Sprintf("  url: %s\n", c.Url))
	b.WriteString(fmt.Sprintf("  name: %s\n", c.Name))
	b.WriteString(fmt.Sprintf("  timeout: %s\n", c.Timeout))
	return b.String()
}

func (c *NATSConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Url == "" {
		return fmt.Errorf("nats is enabled but nats.url is empty")
	}
	for _, server := range strings.Split(c.Url, ",") {
		u, err := url.Parse(strings.TrimSpace(server))
		if err != nil {
			return fmt.Errorf("invalid nats server %q: %w", server, err)
		}
		switch u.Scheme {
		case "nats", "tls", "ws", "wss":
		default:
			return fmt.Errorf("invalid nats server %q: unsupported scheme %q", server, u.Scheme)
		}
		if u.Host == "" {
			return fmt.Errorf("invalid nats server %q: missing host", server)
		}
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("nats.timeout must be positive, got %s", c.Timeout)
	}
	return nil
}
