package utils

import "strings"

// NormalizeAddress validates a hex wallet address ("0x" followed by 40
// hex digits) and returns its lowercase canonical form.  The ledger
// stores and compares only canonical addresses, so case differences in
// client input never produce duplicate identities.
func NormalizeAddress(addr string) (string, bool) {
	a := strings.TrimSpace(addr)
	if len(a) != 42 {
		return "", false
	}
	if a[0] != '0' || (a[1] != 'x' && a[1] != 'X') {
		return "", false
	}
	for i := 2; i < len(a); i++ {
		c := a[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return "", false
		}
	}
	return strings.ToLower(a), true
}

// IsHexAddress reports whether addr is a well-formed hex wallet address.
func IsHexAddress(addr string) bool {
	_, ok := NormalizeAddress(addr)
	return ok
}
