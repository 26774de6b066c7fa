// Package money formats amounts for people.
package money

import (
	"strings"

	"github.com/dustin/go-humanize"
)

// Format renders 1234.5 as "1 234,50 Kč". Unknown currencies keep their code.
func Format(amount float64, currency string) string {
	return humanize.FormatFloat("# ###,##", amount) + " " + Symbol(currency)
}

// Symbol maps a currency code to the symbol shown in prompts and mails.
func Symbol(currency string) string {
	switch strings.ToUpper(strings.TrimSpace(currency)) {
	case "", "CZK":
		return "Kč"
	case "EUR":
		return "€"
	case "USD":
		return "$"
	default:
		return strings.ToUpper(strings.TrimSpace(currency))
	}
}
