package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/abgdnv/stockguard/pkg/config"
	"github.com/abgdnv/stockguard/pkg/config/configloader"
)

const (
	EnvPrefix         = "STOCKGUARD_"
	DefaultConfigFile = "config.yaml"
	DefaultEnvFile    = ".env"

	BackendCSV    = "csv"
	BackendMemory = "memory"
)

var _ configloader.Validator = (*Config)(nil)

type InventoryConfig struct {
	File     string `koanf:"file"`
	Backend  string `koanf:"backend"`
	LowLimit int    `koanf:"lowlimit"`
}

func (c *InventoryConfig) Validate() error {
	switch c.Backend {
	case BackendCSV:
		if c.File == "" {
			return fmt.Errorf("inventory file is not configured")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("invalid inventory backend %q, expected %q or %q", c.Backend, BackendCSV, BackendMemory)
	}
	if c.LowLimit <= 0 {
		return fmt.Errorf("inventory low limit must be positive, got %d", c.LowLimit)
	}
	return nil
}

type RendererConfig struct {
	Enabled bool `koanf:"enabled"`
}

type ReportConfig struct {
	Dir string         `koanf:"dir"`
	PDF RendererConfig `koanf:"pdf"`
	CSV RendererConfig `koanf:"csv"`
}

func (c *ReportConfig) Validate() error {
	if c.Dir == "" && (c.PDF.Enabled || c.CSV.Enabled) {
		return fmt.Errorf("report directory is not configured")
	}
	return nil
}

// ShutdownConfig bounds how long the server waits for in-flight requests on exit.
type ShutdownConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

func (c *ShutdownConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

type SessionConfig struct {
	Secret string        `koanf:"secret"`
	Issuer string        `koanf:"issuer"`
	TTL    time.Duration `koanf:"ttl"`
}

type AuthConfig struct {
	// Users maps a user name to a bcrypt hash.
	Users   map[string]string `koanf:"users"`
	Session SessionConfig     `koanf:"session"`
}

// Validate checks the user list and session timing. The session secret is only
// needed by the HTTP server and is checked when the session issuer is created.
func (c *AuthConfig) Validate() error {
	if len(c.Users) == 0 {
		return fmt.Errorf("no users configured, add one under auth.users")
	}
	if c.Session.Issuer == "" {
		return fmt.Errorf("session issuer is not configured")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", c.Session.TTL)
	}
	return nil
}

// UserNames returns the configured user names in sorted order.
func (c *AuthConfig) UserNames() []string {
	names := make([]string, 0, len(c.Users))
	for name := range c.Users {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

type Config struct {
	Inventory  InventoryConfig    `koanf:"inventory"`
	Report     ReportConfig       `koanf:"report"`
	Auth       AuthConfig         `koanf:"auth"`
	Log        config.LogConfig   `koanf:"log"`
	HTTPServer config.HTTPConfig  `koanf:"server"`
	PProf      config.PProfConfig `koanf:"pprof"`
	Shutdown   ShutdownConfig     `koanf:"shutdown"`
	NATS       config.NATSConfig  `koanf:"nats"`
}

// Defaults returns the values applied before config.yaml and the environment.
func Defaults() map[string]any {
	return map[string]any{
		"inventory.file":            "inventory.csv",
		"inventory.backend":         BackendCSV,
		"inventory.lowlimit":        10,
		"report.dir":                "reports",
		"report.pdf.enabled":        true,
		"report.csv.enabled":        true,
		"auth.session.issuer":       "stockguard",
		"auth.session.ttl":          8 * time.Hour,
		"log.level":                 "info",
		"log.format":                config.LogFormatJSON,
		"server.port":               8080,
		"server.maxheaderbytes":     1 << 20,
		"server.timeout.read":       5 * time.Second,
		"server.timeout.write":      10 * time.Second,
		"server.timeout.idle":       60 * time.Second,
		"server.timeout.readheader": 2 * time.Second,
		"pprof.enabled":             false,
		"pprof.addr":                "localhost:6060",
		"shutdown.timeout":          10 * time.Second,
		"nats.enabled":              false,
		"nats.url":                  "nats://localhost:4222",
		"nats.name":                 "stockguard",
		"nats.timeout":              5 * time.Second,
	}
}

// Load reads the configuration from defaults, configFile, envFile and STOCKGUARD_ variables.
func Load(configFile, envFile string) (*Config, error) {
	return configloader.Load[*Config](configloader.Options{
		EnvPrefix:  EnvPrefix,
		ConfigFile: configFile,
		EnvFile:    envFile,
		Defaults:   Defaults(),
	})
}

func (c *Config) String() string {
	var b strings.Builder

	b.WriteString("\n--- Inventory ---\n")
	b.WriteString(fmt.Sprintf("  inventory.backend: %s\n", c.Inventory.Backend))
	b.WriteString(fmt.Sprintf("  inventory.file: %s\n", c.Inventory.File))
	b.WriteString(fmt.Sprintf("  inventory.lowlimit: %d\n", c.Inventory.LowLimit))

	b.WriteString("\n--- Reports ---\n")
	b.WriteString(fmt.Sprintf("  report.dir: %s\n", c.Report.Dir))
	b.WriteString(fmt.Sprintf("  report.pdf.enabled: %t\n", c.Report.PDF.Enabled))
	b.WriteString(fmt.Sprintf("  report.csv.enabled: %t\n", c.Report.CSV.Enabled))

	b.WriteString("\n--- Auth ---\n")
	b.WriteString(fmt.Sprintf("  auth.users: %s\n", strings.Join(c.Auth.UserNames(), ", ")))
	b.WriteString(fmt.Sprintf("  auth.session.secret: %s\n", maskSecret(c.Auth.Session.Secret)))
	b.WriteString(fmt.Sprintf("  auth.session.issuer: %s\n", c.Auth.Session.Issuer))
	b.WriteString(fmt.Sprintf("  auth.session.ttl: %s\n", c.Auth.Session.TTL))

	b.WriteString(c.Log.String())
	b.WriteString(c.HTTPServer.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.NATS.String())
	b.WriteString("\n--- Shutdown ---\n")
	b.WriteString(fmt.Sprintf("  shutdown.timeout: %s\n", c.Shutdown.Timeout))
	return b.String()
}

func maskSecret(secret string) string {
	if secret == "" {
		return "<not configured>"
	}
	return "****"
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	validators := []configloader.Validator{
		&c.Inventory,
		&c.Report,
		&c.Auth,
		&c.Log,
		&c.HTTPServer,
		&c.PProf,
		&c.Shutdown,
		&c.NATS,
	}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}
