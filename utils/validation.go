package utils

import (
	"regexp"
	"strings"
)

// basicEmailPattern matches something@something.something without whitespace
var basicEmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsBasicEmail reports whether s looks like an email address
func IsBasicEmail(s string) bool {
	return basicEmailPattern.MatchString(s)
}

// NormalizeEmail trims and lower-cases an address
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
