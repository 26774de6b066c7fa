package tui

import (
	"errors"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/michalnik/money-collector/internal/domain"
)

var reLine = regexp.MustCompile(`(?i)\bline\s+(\d+)\b`)

// UserMessage maps an error to a short line for the terminal. Details stay in the log.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, domain.ErrNoClients) {
		return "You have no clients to invoice."
	}

	var oe *domain.OpError
	if !errors.As(err, &oe) {
		return "Unexpected error (see logs)"
	}

	switch oe.Kind {
	case domain.KindCancelled:
		return "Cancelled"

	case domain.KindNotFound:
		if strings.HasPrefix(oe.Op, "fakturoid.") {
			return "Not found in Fakturoid"
		}
		if oe.Path != "" {
			return "File not found: " + oe.Path
		}
		if oe.Err != nil {
			return "Not found: " + innermost(oe.Err)
		}
		return "Not found"

	case domain.KindAuth:
		if strings.HasPrefix(oe.Op, "smtpmail.") {
			return "SMTP server rejected the login (check smtp_user and smtp_password)"
		}
		return "Fakturoid rejected the credentials (check client_id and client_secret)"

	case domain.KindRateLimited:
		return "Fakturoid rate limit reached, try again in a minute"

	case domain.KindMissingVar:
		v := extractMissingVarName(err.Error())
		if v == "" {
			return "Missing placeholder in mail template"
		}
		return "Missing placeholder " + v + " in mail template"

	case domain.KindInvalidConfig:
		base := "config"
		if strings.TrimSpace(oe.Path) != "" {
			base = filepath.Base(oe.Path)
		}
		if line := extractLine(err.Error()); line != "" {
			return "Invalid config at " + base + " line " + line
		}
		if oe.Err != nil {
			return "Invalid config: " + innermost(oe.Err)
		}
		return "Invalid config"

	case domain.KindInvalidInput:
		if oe.Err != nil {
			return "Invalid input: " + innermost(oe.Err)
		}
		return "Invalid input"

	case domain.KindRemote:
		var apiErr *domain.APIError
		if errors.As(err, &apiErr) && apiErr.Body != "" {
			return "Fakturoid request failed: " + clampString(apiErr.Body, 200)
		}
		return "Remote request failed (see logs)"

	default:
		return "Unexpected error (see logs)"
	}
}

// innermost returns the message of the deepest wrapped OpError's cause.
func innermost(err error) string {
	for {
		var oe *domain.OpError
		if !errors.As(err, &oe) || oe.Err == nil {
			return err.Error()
		}
		err = oe.Err
	}
}

func extractLine(s string) string {
	m := reLine.FindStringSubmatch(s)
	if len(m) == 2 {
		return m[1]
	}
	return ""
}

func extractMissingVarName(s string) string {
	ls := strings.ToLower(s)
	for _, marker := range []string{"missing variable:", "missing variable "} {
		i := strings.LastIndex(ls, marker)
		if i < 0 {
			continue
		}
		fields := strings.Fields(strings.TrimSpace(s[i+len(marker):]))
		if len(fields) == 0 {
			return ""
		}
		return strings.Trim(fields[0], " .,:;\"'")
	}
	return ""
}
