// Package crtsh queries the crt.sh certificate transparency search service.
package crtsh

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"

	"crtsubs/features/certificates"
	"crtsubs/features/providers/base"
	"crtsubs/features/subdomains"
	"crtsubs/internal/collector"
	"crtsubs/internal/config"

	"github.com/gocolly/colly/v2"
	"github.com/rs/zerolog/log"
)

const ProviderName = "CRTSH"

// Provider turns a domain into the raw hostnames found in matching certificates.
type Provider struct {
	*base.BaseProvider
	endpoint *url.URL
}

// NewCrtshProvider creates a provider for the endpoint in settings.
func NewCrtshProvider(settings *config.CrtshConfig, collyClient *colly.Collector) (*Provider, error) {
	endpoint, err := url.Parse(settings.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid crt.sh endpoint %q: %w", settings.Endpoint, err)
	}

	return &Provider{
		BaseProvider: base.NewBaseProvider(ProviderName, settings.Endpoint, settings, collyClient),
		endpoint:     endpoint,
	}, nil
}

// Name satisfies the enumerator's source interface.
func (p *Provider) Name() string {
	return p.GetName()
}

// QueryURL returns <endpoint>?q=<domain>&output=json.
func (p *Provider) QueryURL(domain string) (string, error) {
	if domain == "" {
		return "", fmt.Errorf("%w: empty domain", base.ErrInvalidFormat)
	}

	u := *p.endpoint
	q := u.Query()
	q.Set("q", domain)
	q.Set("output", "json")
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// Parse decodes a JSON array of certificate records and returns the unique
// hostnames they carry, in first-seen order.
func (p *Provider) Parse(data io.Reader) ([]string, error) {
	records, err := certificates.DecodeRecords(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", base.ErrParsingData, err)
	}

	seen := subdomains.NewSet()
	for _, record := range records {
		seen.AddAll(record.Hostnames())
	}

	log.Debug().
		Str("provider", p.Name()).
		Int("records", len(records)).
		Int("hostnames", seen.Len()).
		Msg("Parsed certificate records")

	return seen.Values(), nil
}

// Hostnames fetches and parses the records for domain. Errors are returned to
// the caller; deciding whether they are fatal is up to it.
func (p *Provider) Hostnames(ctx context.Context, domain string) ([]string, error) {
	target, err := p.QueryURL(domain)
	if err != nil {
		return nil, err
	}

	body, cached, err := p.FetchCached(ctx, target)
	if err != nil {
		return nil, err
	}

	hosts, err := p.Parse(bytes.NewReader(body))
	if err != nil {
		if p.Responses != nil {
			if invErr := p.Responses.Invalidate(target); invErr != nil {
				log.Warn().Err(invErr).Str("url", target).Msg("Failed to drop unparsable cached response")
			}
		}
		return nil, err
	}

	log.Debug().
		Str("domain", domain).
		Bool("cached", cached).
		Int("hostnames", len(hosts)).
		Msg("Hostnames fetched")

	if mc, _ := collector.GetMetricsCollector(); mc != nil {
		mc.IncrementHostnamesFetched(p.Name(), len(hosts))
	}

	return hosts, nil
}
