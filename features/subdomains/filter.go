// Package subdomains validates candidate hostnames against a queried domain
// and deduplicates them.
package subdomains

import (
	"regexp"
)

// labelPattern is one or more DNS-ish labels, each followed by a literal dot.
const labelPattern = `(?:[a-zA-Z0-9-]+\.)+`

// Filter accepts hostnames that are strict subdomains of one domain.
type Filter struct {
	domain  string
	pattern *regexp.Regexp
}

// NewFilter compiles the matcher for domain. The domain is matched literally
// and case-insensitively at the end of the hostname.
func NewFilter(domain string) *Filter {
	return &Filter{
		domain:  domain,
		pattern: regexp.MustCompile(`(?i)^` + labelPattern + regexp.QuoteMeta(domain) + `$`),
	}
}

func (f *Filter) Domain() string {
	return f.domain
}

// Match reports whether host is a subdomain of the filter's domain.
// The bare domain and wildcard names such as *.example.com never match.
func (f *Filter) Match(host string) bool {
	return f.pattern.MatchString(host)
}

// Apply keeps the matching hosts in their original order.
func (f *Filter) Apply(hosts []string) []string {
	filtered := make([]string, 0, len(hosts))
	for _, host := range hosts {
		if f.Match(host) {
			filtered = append(filtered, host)
		}
	}
	return filtered
}

// FilterSubdomains is shorthand for NewFilter(domain).Apply(hosts).
func FilterSubdomains(hosts []string, domain string) []string {
	return NewFilter(domain).Apply(hosts)
}
