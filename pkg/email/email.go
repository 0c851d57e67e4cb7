// Package email derives human-readable names from mail addresses.
package email

import (
	"strings"
	"unicode"
)

// LocalPart returns the part of address before the last '@', or address
// itself when it has none.
func LocalPart(address string) string {
	if at := strings.LastIndexByte(address, '@'); at > 0 {
		return address[:at]
	}
	return address
}

// DisplayName turns "jane.doe+news@example.com" into "Jane Doe". Only the
// first and last name-like segments are kept. It returns "" when the local
// part has no usable segment.
func DisplayName(address string) string {
	local := LocalPart(address)
	// a "+tag" suffix is a mailbox filter, not a name
	if plus := strings.IndexByte(local, '+'); plus > 0 {
		local = local[:plus]
	}
	parts := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return capitalize(parts[0])
	default:
		return capitalize(parts[0]) + " " + capitalize(parts[len(parts)-1])
	}
}

func capitalize(s string) string {
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
