package domain

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	DefaultBaseURL         = "https://app.fakturoid.cz/api/v3"
	DefaultSubjectTemplate = "Faktura č. MM{{number}}"
	DefaultBodyTemplate    = "Hezký den,\n\nVystavil jsem pro Vás fakturu.\n\nDíky!\n\n{{full_name}}"
	DefaultItemDescription = "Softwarové inženýrství v rámci projektu: "
	DefaultDue             = 14

	MaxApplicationNameLen = 40
)

// Config represents the collector configuration loaded from config.ini.
type Config struct {
	Fakturoid FakturoidConfig
	Email     EmailConfig
	Defaults  DefaultsConfig
}

type FakturoidConfig struct {
	ApplicationName string
	Email           string
	Account         string
	ClientID        string
	ClientSecret    string
	BaseURL         string
}

// UserAgent is the identification string the invoicing API requires on every call.
func (c FakturoidConfig) UserAgent() string {
	return c.ApplicationName + " (" + c.Email + ")"
}

type EmailConfig struct {
	SMTPUser     string
	SMTPPassword string
	SMTPServer   string
	SMTPPort     int

	Subject string
	Body    string
	// CC receives a copy of every invoice mail. Empty means the SMTP user.
	CC string
}

type DefaultsConfig struct {
	Due             int
	UnitNames       []string
	ItemDescription string
}

// DefaultConfig provides sane defaults if config.ini is partially missing.
func DefaultConfig() Config {
	return Config{
		Fakturoid: FakturoidConfig{
			BaseURL: DefaultBaseURL,
		},
		Email: EmailConfig{
			Subject: DefaultSubjectTemplate,
			Body:    DefaultBodyTemplate,
		},
		Defaults: DefaultsConfig{
			Due:             DefaultDue,
			UnitNames:       []string{"hod", "MD", "měsíc", "kus"},
			ItemDescription: DefaultItemDescription,
		},
	}
}

// CopyTo returns the address that receives the invoice copy.
func (c EmailConfig) CopyTo() string {
	if strings.TrimSpace(c.CC) != "" {
		return strings.TrimSpace(c.CC)
	}
	return c.SMTPUser
}

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9]+(?:\.[A-Za-z0-9]+)*@[^@\s]+\.[^@\s]+$`)

// EmailRule validates addresses the same way the setup wizard does.
var EmailRule = validation.Match(emailPattern).Error("invalid email address")

// PortRule accepts TCP ports.
var PortRule = validation.Min(1).Error("enter a valid port number (1-65535)")

// ApplicationNameRule checks the CamelCase form of an application name.
var ApplicationNameRule = validation.By(func(value any) error {
	s, _ := value.(string)
	name := ToCamelCase(s)
	if name == "" {
		return validation.NewError("collector.config.application_name_empty", "application name cannot be empty")
	}
	if len(name) > MaxApplicationNameLen {
		return validation.NewError("collector.config.application_name_length", "maximum length of application name is 40 characters")
	}
	return nil
})

// Validate checks that the configuration can talk to both the API and the SMTP server.
func (c Config) Validate() error {
	f := c.Fakturoid
	if err := validation.ValidateStruct(&f,
		validation.Field(&f.Email, validation.Required, EmailRule),
		validation.Field(&f.Account, validation.Required),
		validation.Field(&f.ApplicationName, ApplicationNameRule),
		validation.Field(&f.ClientID, validation.Required),
		validation.Field(&f.ClientSecret, validation.Required),
		validation.Field(&f.BaseURL, validation.Required),
	); err != nil {
		return &OpError{Op: "config.validate.fakturoid", Kind: KindInvalidConfig, Err: err}
	}

	e := c.Email
	if err := validation.ValidateStruct(&e,
		validation.Field(&e.SMTPUser, validation.Required),
		validation.Field(&e.SMTPPassword, validation.Required),
		validation.Field(&e.SMTPServer, validation.Required),
		validation.Field(&e.SMTPPort, validation.Required, PortRule, validation.Max(65535).Error("enter a valid port number (1-65535)")),
		validation.Field(&e.Subject, validation.Required),
		validation.Field(&e.Body, validation.Required),
	); err != nil {
		return &OpError{Op: "config.validate.email", Kind: KindInvalidConfig, Err: err}
	}

	d := c.Defaults
	if err := validation.ValidateStruct(&d,
		validation.Field(&d.Due, validation.Min(1), validation.Max(MaxDue)),
	); err != nil {
		return &OpError{Op: "config.validate.defaults", Kind: KindInvalidConfig, Err: err}
	}
	return nil
}
