package models

import (
	"regexp"
	"strings"
)

var addressRE = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// IsValidAddress reports whether s is a well-formed Ethereum address
// (0x followed by 40 hex digits).
func IsValidAddress(s string) bool {
	return addressRE.MatchString(s)
}

// NormalizeAddress lowercases an address for storage and lookups.
// Addresses are persisted lowercase; the admin gate compares raw input.
func NormalizeAddress(s string) string {
	return strings.ToLower(s)
}

// MaskAddress shortens an address for human-readable messages: 0x1234…cdef.
func MaskAddress(s string) string {
	if len(s) < 12 {
		return s
	}
	return s[:6] + "…" + s[len(s)-4:]
}
