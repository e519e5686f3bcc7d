// Package store persists the subdomains seen for each watched domain.
package store

import (
	"context"
	"errors"
	"time"
)

var (
	ErrRecord  = errors.New("failed to record subdomains")
	ErrQuery   = errors.New("failed to query subdomains")
	ErrNoStore = errors.New("store not initialized")
)

// Subdomain is one stored hostname of a domain.
type Subdomain struct {
	Domain    string    `json:"domain"`
	Hostname  string    `json:"hostname"`
	RunID     string    `json:"run_id"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
}

// SubdomainRepository defines the storage operations used by watch mode and the API.
type SubdomainRepository interface {
	// Record upserts hostnames for domain and returns the ones stored for the first time.
	Record(ctx context.Context, domain string, hostnames []string, runID string) ([]string, error)
	GetSubdomains(ctx context.Context, domain string) ([]Subdomain, error)
	GetHostnames(ctx context.Context, domain string) ([]string, error)
	Exists(ctx context.Context, domain, hostname string) (bool, error)
	IterateHostnames(ctx context.Context, fn func(domain, hostname string) error) error
	Count(ctx context.Context) (int, error)
}
