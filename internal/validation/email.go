// Package validation holds input checks for operator-facing endpoints.
package validation

import (
	"net/mail"
	"strings"
)

// IsValidEmail reports whether the input is a bare RFC 5322 address with a
// dotted domain. Identity mappings key on plain lowercase addresses, so
// display names ("Alice <alice@acme.dev>") and bare hostnames
// (user@localhost) are rejected even though both parse.
func IsValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" || len(email) > 254 {
		return false
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}

	_, domain, ok := strings.Cut(addr.Address, "@")
	if !ok {
		return false
	}
	// Require a TLD. The parser accepts single-label domains, but no
	// mapping ever points at one.
	if !strings.Contains(strings.Trim(domain, "."), ".") {
		return false
	}
	return true
}
