// Package email derives human-readable fallbacks from email addresses.
package email

import (
	"strings"
	"unicode"
)

// DeriveDisplayName builds a display name from the local part of an email
// address, splitting on common separators and capitalizing each part.
// "ahmed.raza@example.com" becomes "Ahmed Raza". Used when a guardian login
// is requested without a name.
func DeriveDisplayName(email string) string {
	localPart := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		localPart = email[:at]
	}

	parts := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})
	if len(parts) == 0 {
		return "Guardian"
	}

	for i, p := range parts {
		parts[i] = capitalize(p)
	}
	return strings.Join(parts, " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
