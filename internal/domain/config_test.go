package domain

import (
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.Fakturoid.ApplicationName = "MoneyCollector"
	cfg.Fakturoid.Email = "jan.novak@example.com"
	cfg.Fakturoid.Account = "novak"
	cfg.Fakturoid.ClientID = "id"
	cfg.Fakturoid.ClientSecret = "secret"
	cfg.Email.SMTPUser = "jan.novak@example.com"
	cfg.Email.SMTPPassword = "pw"
	cfg.Email.SMTPServer = "smtp.example.com"
	cfg.Email.SMTPPort = 465
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Fakturoid.BaseURL != DefaultBaseURL {
		t.Fatalf("expected default base url, got %q", cfg.Fakturoid.BaseURL)
	}
	if cfg.Defaults.Due != 14 {
		t.Fatalf("expected due 14, got %d", cfg.Defaults.Due)
	}
	if !strings.Contains(cfg.Email.Subject, "{{number}}") {
		t.Fatalf("expected number placeholder in subject, got %q", cfg.Email.Subject)
	}
	if len(cfg.Defaults.UnitNames) != 4 {
		t.Fatalf("expected 4 unit names, got %v", cfg.Defaults.UnitNames)
	}
}

func TestValidate_OK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Rejects(t *testing.T) {
	cases := map[string]func(*Config){
		"bad email":        func(c *Config) { c.Fakturoid.Email = "not-an-email" },
		"dotted local end": func(c *Config) { c.Fakturoid.Email = "jan.@example.com" },
		"missing account":  func(c *Config) { c.Fakturoid.Account = "" },
		"missing secret":   func(c *Config) { c.Fakturoid.ClientSecret = "" },
		"empty app name":   func(c *Config) { c.Fakturoid.ApplicationName = " - " },
		"long app name":    func(c *Config) { c.Fakturoid.ApplicationName = strings.Repeat("a", 41) },
		"port zero":        func(c *Config) { c.Email.SMTPPort = 0 },
		"port too big":     func(c *Config) { c.Email.SMTPPort = 70000 },
		"no smtp server":   func(c *Config) { c.Email.SMTPServer = "" },
		"due too long":     func(c *Config) { c.Defaults.Due = 45 },
	}
	for name, mutate := range cases {
		cfg := validConfig()
		mutate(&cfg)
		err := cfg.Validate()
		if err == nil {
			t.Errorf("%s: expected validation error", name)
			continue
		}
		if !IsKind(err, KindInvalidConfig) {
			t.Errorf("%s: expected KindInvalidConfig, got %v", name, err)
		}
	}
}

func TestApplicationNameAt40CharsIsValid(t *testing.T) {
	cfg := validConfig()
	cfg.Fakturoid.ApplicationName = strings.Repeat("a", 40)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCopyToDefaultsToSMTPUser(t *testing.T) {
	e := EmailConfig{SMTPUser: "me@example.com"}
	if e.CopyTo() != "me@example.com" {
		t.Fatalf("expected smtp user, got %q", e.CopyTo())
	}
	e.CC = " books@example.com "
	if e.CopyTo() != "books@example.com" {
		t.Fatalf("expected cc, got %q", e.CopyTo())
	}
}

func TestUserAgent(t *testing.T) {
	f := FakturoidConfig{ApplicationName: "MoneyCollector", Email: "me@example.com"}
	if got := f.UserAgent(); got != "MoneyCollector (me@example.com)" {
		t.Fatalf("unexpected user agent %q", got)
	}
}
