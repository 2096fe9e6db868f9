// Package config defines the dashboard's configuration document. The file
// ships encrypted at rest (see pkg/sealed and cmd/sealcfg); this package
// only deals with the decrypted YAML. The parsed Config is constructed once
// at startup and passed explicitly to whatever needs it; there is no
// package-level config state.
package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v2"
)

type Config struct {
	RT        RTConfig               `yaml:"rt"`
	Dashboard DashboardConfig        `yaml:"dashboard"`
	Reports   map[string]ReportQuery `yaml:"reports"`
}

// RTConfig holds the credentials for the upstream Request Tracker instance.
// Secret is the API password; it lives only in process memory once the
// sealed file has been opened.
type RTConfig struct {
	BaseURL  string `yaml:"base_url"`
	Username string `yaml:"username"`
	Secret   string `yaml:"secret"`
}

type DashboardConfig struct {
	Listen string `yaml:"listen"`
	// PasswordHash is the bcrypt hash of the dashboard login password.
	PasswordHash string `yaml:"password_hash"`
	// SessionSecret signs the session JWT cookie.
	SessionSecret string `yaml:"session_secret"`
}

// ReportQuery is one report section's RT search: a TicketSQL query plus the
// comma-separated fields the section needs.
type ReportQuery struct {
	Query  string `yaml:"query"`
	Fields string `yaml:"fields"`
}

// Parse unmarshals and validates a decrypted config document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	// The RT client joins paths onto the base URL directly.
	if !strings.HasSuffix(cfg.RT.BaseURL, "/") {
		cfg.RT.BaseURL += "/"
	}
	if cfg.Dashboard.Listen == "" {
		cfg.Dashboard.Listen = ":3000"
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.RT.BaseURL == "" {
		return fmt.Errorf("rt.base_url is required")
	}
	if c.RT.Username == "" {
		return fmt.Errorf("rt.username is required")
	}
	if c.RT.Secret == "" {
		return fmt.Errorf("rt.secret is required")
	}
	if c.Dashboard.PasswordHash == "" {
		return fmt.Errorf("dashboard.password_hash is required")
	}
	if c.Dashboard.SessionSecret == "" {
		return fmt.Errorf("dashboard.session_secret is required")
	}
	if len(c.Reports) == 0 {
		return fmt.Errorf("at least one report section is required")
	}
	for name, report := range c.Reports {
		if report.Query == "" {
			return fmt.Errorf("reports.%s.query is required", name)
		}
		if report.Fields == "" {
			return fmt.Errorf("reports.%s.fields is required", name)
		}
	}
	return nil
}

// Report looks up a report section by name.
func (c *Config) Report(name string) (ReportQuery, error) {
	report, ok := c.Reports[name]
	if !ok {
		return ReportQuery{}, fmt.Errorf("no report section %q in config", name)
	}
	return report, nil
}
