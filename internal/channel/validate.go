package channel

import (
	"net/mail"
	"regexp"
)

// phonePattern is the international E.164 shape: leading +, country code,
// 8 to 15 digits total.
var phonePattern = regexp.MustCompile(`^\+[1-9]\d{7,14}$`)

// ValidPhone reports whether the address is an E.164 phone number.
// Malformed numbers are a local validation failure and never reach the
// provider.
func ValidPhone(address string) bool {
	return phonePattern.MatchString(address)
}

// ValidEmail reports whether the address parses as a single bare email
// address.
func ValidEmail(address string) bool {
	if address == "" {
		return false
	}
	parsed, err := mail.ParseAddress(address)
	return err == nil && parsed.Address == address
}
