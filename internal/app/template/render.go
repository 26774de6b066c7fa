// Package template fills {{name}} placeholders in mail subjects and bodies.
package template

import (
	"fmt"
	"strings"

	"github.com/michalnik/money-collector/internal/domain"
)

// Render replaces {{name}} placeholders with vars values.
// It returns an error if a variable is missing or a placeholder is malformed.
func Render(input string, vars domain.Vars) (string, error) {
	if input == "" {
		return "", nil
	}

	var out strings.Builder
	rest := input
	for {
		start := strings.Index(rest, "{{")
		if start == -1 {
			out.WriteString(rest)
			return out.String(), nil
		}

		out.WriteString(rest[:start])
		rest = rest[start+2:]

		end := strings.Index(rest, "}}")
		if end == -1 {
			return "", &domain.OpError{
				Op:   "template.render",
				Kind: domain.KindInvalidConfig,
				Err:  fmt.Errorf("unclosed placeholder: %w", domain.ErrInvalidConfig),
			}
		}

		key := strings.TrimSpace(rest[:end])
		if key == "" {
			return "", &domain.OpError{
				Op:   "template.render",
				Kind: domain.KindInvalidConfig,
				Err:  fmt.Errorf("empty placeholder: %w", domain.ErrInvalidConfig),
			}
		}

		value, ok := domain.Get(vars, key)
		if !ok {
			return "", &domain.OpError{
				Op:   "template.render",
				Kind: domain.KindMissingVar,
				Err:  fmt.Errorf("%w %q", domain.ErrMissingVar, key),
			}
		}

		out.WriteString(value)
		rest = rest[end+2:]
	}
}

// Placeholders lists the names used in input, in order of first appearance.
// Malformed placeholders are skipped.
func Placeholders(input string) []string {
	var names []string
	seen := map[string]bool{}

	rest := input
	for {
		start := strings.Index(rest, "{{")
		if start == -1 {
			return names
		}
		rest = rest[start+2:]
		end := strings.Index(rest, "}}")
		if end == -1 {
			return names
		}
		key := strings.TrimSpace(rest[:end])
		rest = rest[end+2:]
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, key)
	}
}
