package subdomains

import (
	"strings"

	"golang.org/x/net/publicsuffix"
)

// IsPublicSuffix reports whether domain is itself a public suffix such as
// "com" or "co.uk". Querying one returns every registrable domain below it.
func IsPublicSuffix(domain string) bool {
	d := strings.ToLower(strings.TrimSuffix(domain, "."))
	if d == "" {
		return false
	}
	suffix, _ := publicsuffix.PublicSuffix(d)
	return suffix == d
}
