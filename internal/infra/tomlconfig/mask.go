package tomlconfig

import "github.com/michalnik/money-collector/internal/domain"

const maskValue = "********"

// Masked returns a copy of cfg with credentials replaced, for display.
func Masked(cfg domain.Config) domain.Config {
	out := cfg
	out.Defaults.UnitNames = append([]string(nil), cfg.Defaults.UnitNames...)
	if out.Fakturoid.ClientSecret != "" {
		out.Fakturoid.ClientSecret = maskValue
	}
	if out.Email.SMTPPassword != "" {
		out.Email.SMTPPassword = maskValue
	}
	return out
}
