package domain

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// ToCamelCase turns free text into the application name format the API accepts,
// e.g. "my app-name" -> "MyAppName".
func ToCamelCase(text string) string {
	parts := nonAlnum.Split(strings.TrimSpace(text), -1)

	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(strings.ToLower(p[1:]))
	}
	return b.String()
}
