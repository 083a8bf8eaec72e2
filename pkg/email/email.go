// Package email holds address normalization and syntax checking shared by the
// signature validator and the reminder flow.
package email

import (
	"net/mail"
	"strings"
)

// Normalize trims surrounding whitespace and lower-cases the address. A nil-ish
// input stays an empty string; callers never see a "null" email after this.
func Normalize(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// Valid reports whether the address is a syntactically valid single mailbox.
// Display names ("Jane <jane@x.com>") are rejected: signers submit bare
// addresses.
func Valid(address string) bool {
	if address == "" {
		return false
	}
	parsed, err := mail.ParseAddress(address)
	if err != nil {
		return false
	}
	return parsed.Address == address
}
