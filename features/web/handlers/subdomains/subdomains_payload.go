package subdomains

import (
	"crtsubs/features/enumerator"
	"crtsubs/features/store"
)

type LookupPayload struct {
	Domain     string   `json:"domain"`
	Count      int      `json:"count"`
	Subdomains []string `json:"subdomains"`
	Error      string   `json:"error,omitempty"`
}

func NewLookupPayload(result *enumerator.Result) *LookupPayload {
	p := &LookupPayload{
		Domain:     result.Domain,
		Count:      len(result.Subdomains),
		Subdomains: result.Subdomains,
	}
	if result.Err != nil {
		p.Error = result.Err.Error()
	}
	return p
}

type StoredPayload struct {
	Domain     string            `json:"domain"`
	Count      int               `json:"count"`
	Subdomains []store.Subdomain `json:"subdomains"`
}
