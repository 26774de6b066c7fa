package usecase

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/michalnik/money-collector/internal/domain"
	"github.com/michalnik/money-collector/internal/ports"
)

// SetupConfig is the first-run wizard that writes the config file.
type SetupConfig struct {
	store  ports.ConfigStore
	prompt ports.Prompter
}

func NewSetupConfig(store ports.ConfigStore, prompt ports.Prompter) *SetupConfig {
	return &SetupConfig{store: store, prompt: prompt}
}

// Execute asks for credentials and saves them. Answers already present in
// base are offered as defaults, except secrets.
func (uc *SetupConfig) Execute(base domain.Config) (domain.Config, error) {
	cfg := base
	f := &cfg.Fakturoid
	e := &cfg.Email

	questions := []struct {
		prompt ports.TextPrompt
		dst    *string
	}{
		{ports.TextPrompt{Message: "Enter your Fakturoid email:", Default: f.Email, Validate: rule(validation.Required, domain.EmailRule)}, &f.Email},
		{ports.TextPrompt{Message: "Enter your Fakturoid account name:", Default: f.Account, Validate: rule(validation.Required)}, &f.Account},
		{ports.TextPrompt{
			Message:  "Enter your Fakturoid application name:",
			Default:  f.ApplicationName,
			Validate: rule(domain.ApplicationNameRule),
			Filter:   domain.ToCamelCase,
		}, &f.ApplicationName},
		{ports.TextPrompt{Message: "Enter your Fakturoid client ID:", Default: f.ClientID, Validate: rule(validation.Required)}, &f.ClientID},
		{ports.TextPrompt{Message: "Enter your Fakturoid client secret:", Secret: true, Validate: rule(validation.Required)}, &f.ClientSecret},
		{ports.TextPrompt{Message: "Enter your email SMTP user:", Default: e.SMTPUser, Validate: rule(validation.Required)}, &e.SMTPUser},
		{ports.TextPrompt{Message: "Enter your email SMTP password:", Secret: true, Validate: rule(validation.Required)}, &e.SMTPPassword},
		{ports.TextPrompt{Message: "Enter your email SMTP server:", Default: e.SMTPServer, Validate: rule(validation.Required)}, &e.SMTPServer},
	}

	for _, q := range questions {
		answer, err := uc.prompt.Text(q.prompt)
		if err != nil {
			return base, err
		}
		*q.dst = strings.TrimSpace(answer)
	}

	portDefault := ""
	if e.SMTPPort > 0 {
		portDefault = strconv.Itoa(e.SMTPPort)
	}
	port, err := uc.prompt.Text(ports.TextPrompt{
		Message:  "Enter your email SMTP server port:",
		Default:  portDefault,
		Validate: ValidatePort,
	})
	if err != nil {
		return base, err
	}
	e.SMTPPort, err = strconv.Atoi(strings.TrimSpace(port))
	if err != nil {
		return base, &domain.OpError{
			Op:   "setup.smtp_port",
			Kind: domain.KindInvalidInput,
			Err:  fmt.Errorf("smtp port %q: %w", port, domain.ErrInvalidInput),
		}
	}

	if err := cfg.Validate(); err != nil {
		return base, err
	}
	if err := uc.store.Save(cfg); err != nil {
		return base, err
	}
	uc.prompt.Say("Configuration saved to %s", uc.store.Path())
	return cfg, nil
}

// ValidatePort accepts 1..65535.
func ValidatePort(answer string) error {
	n, err := strconv.Atoi(strings.TrimSpace(answer))
	if err != nil || n < 1 || n > 65535 {
		return errors.New("enter a valid port number (1-65535)")
	}
	return nil
}

func rule(rules ...validation.Rule) ports.Validator {
	return func(answer string) error {
		return validation.Validate(strings.TrimSpace(answer), rules...)
	}
}
