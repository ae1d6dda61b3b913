package sanitizer

import (
	"regexp"
	"strings"
)

var reAddress = regexp.MustCompile(`^0x[0-9a-f]{40}$`)

// NormalizeAddress lowercases an account address so that checksummed and
// plain spellings compare equal.
func NormalizeAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

func SameAddress(a, b string) bool {
	return NormalizeAddress(a) == NormalizeAddress(b)
}

func IsAddress(addr string) bool {
	return reAddress.MatchString(NormalizeAddress(addr))
}
