package config

import (
	"net/url"
	"regexp"
)

// keywordPassword matches password=... in a libpq keyword/value DSN.
var keywordPassword = regexp.MustCompile(`(?i)(\bpassword\s*=\s*)('(?:[^'\\]|\\.)*'|\S+)`)

// RedactURL hides the password in a PostgreSQL connection string so it can
// be printed or logged. URLs get "xxxxx" in place of the password;
// keyword/value DSNs get password=xxxxx. Strings without a password are
// returned unchanged.
func RedactURL(raw string) string {
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err == nil && u.Scheme != "" {
		return u.Redacted()
	}

	return keywordPassword.ReplaceAllString(raw, "${1}xxxxx")
}
