// Package enumerator runs fetch, filter and dedupe for one or many domains.
package enumerator

import (
	"context"
	"errors"
	"strings"
	"time"

	"crtsubs/features/subdomains"
	"crtsubs/internal/collector"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// HostnameSource returns the raw candidate hostnames known for a domain.
type HostnameSource interface {
	Name() string
	Hostnames(ctx context.Context, domain string) ([]string, error)
}

// Result is the outcome of one domain lookup. Err records a swallowed fetch
// or parse failure, in which case Subdomains is empty.
type Result struct {
	Domain     string
	RunID      string
	ProcessID  string
	Candidates int
	Subdomains []string
	Duration   time.Duration
	Err        error
}

func (r *Result) Failed() bool {
	return r.Err != nil
}

type Enumerator struct {
	source      HostnameSource
	limiter     *rate.Limiter
	concurrency int
}

type Option func(*Enumerator)

// WithRateLimit spaces requests at least interval apart. Zero disables pacing.
func WithRateLimit(interval time.Duration) Option {
	return func(e *Enumerator) {
		if interval <= 0 {
			e.limiter = nil
			return
		}
		e.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
}

// WithConcurrency sets how many lookups may be in flight during Run.
func WithConcurrency(n int) Option {
	return func(e *Enumerator) {
		if n < 1 {
			n = 1
		}
		e.concurrency = n
	}
}

func New(source HostnameSource, opts ...Option) *Enumerator {
	e := &Enumerator{
		source:      source,
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Enumerator) SourceName() string {
	return e.source.Name()
}

// Lookup fetches the hostnames for domain and keeps the valid subdomains.
// It never fails: errors are logged and carried on the result.
func (e *Enumerator) Lookup(ctx context.Context, domain string) *Result {
	domain = strings.TrimSpace(domain)
	startedAt := time.Now()
	result := &Result{
		Domain:     domain,
		ProcessID:  uuid.New().String(),
		Subdomains: []string{},
	}
	name := e.source.Name()

	lookupLogger := log.With().
		Str("process_id", result.ProcessID).
		Str("source", name).
		Str("domain", domain).
		Logger()

	mc, _ := collector.GetMetricsCollector()
	if mc != nil {
		mc.SetLookupRunning(name)
	}

	if subdomains.IsPublicSuffix(domain) {
		lookupLogger.Warn().Msg("Domain is a public suffix, every registrable domain below it will match")
	}

	if err := e.wait(ctx); err != nil {
		return e.fail(result, startedAt, err, mc, lookupLogger)
	}

	hosts, err := e.source.Hostnames(ctx, domain)
	if err != nil {
		return e.fail(result, startedAt, err, mc, lookupLogger)
	}

	result.Candidates = len(hosts)
	result.Subdomains = subdomains.NewSet(subdomains.FilterSubdomains(hosts, domain)...).Values()
	result.Duration = time.Since(startedAt)

	if mc != nil {
		mc.SetLookupSuccess(name, result.Duration)
		mc.IncrementSubdomainsAccepted(name, len(result.Subdomains))
	}

	lookupLogger.Debug().
		Int("candidates", result.Candidates).
		Int("subdomains", len(result.Subdomains)).
		Dur("duration", result.Duration).
		Msg("Lookup finished")

	return result
}

func (e *Enumerator) fail(result *Result, startedAt time.Time, err error, mc *collector.MetricsCollector, logger zerolog.Logger) *Result {
	result.Err = err
	result.Duration = time.Since(startedAt)

	if mc != nil {
		mc.SetLookupFailed(e.source.Name(), err, result.Duration)
	}

	logger.Error().Err(err).Dur("duration", result.Duration).Msg("Error fetching data, treating as no subdomains")
	return result
}

func (e *Enumerator) wait(ctx context.Context) error {
	if e.limiter == nil {
		return ctx.Err()
	}
	return e.limiter.Wait(ctx)
}

// IsCanceled reports whether err came from the caller's context.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
