package enumerator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"crtsubs/features/subdomains"

	"github.com/alitto/pond/v2"
	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
)

// Sink receives each domain's result as soon as it is available, in input order.
type Sink interface {
	Write(result *Result) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(result *Result) error

func (f SinkFunc) Write(result *Result) error {
	return f(result)
}

// Batch collects the results of one Run.
type Batch struct {
	RunID     string
	Results   []*Result
	StartedAt time.Time
	Duration  time.Duration
	unique    *subdomains.Set
}

// Unique returns every subdomain found across the batch exactly once, in first-seen order.
func (b *Batch) Unique() []string {
	if b.unique == nil {
		return []string{}
	}
	return b.unique.Values()
}

// All returns the concatenation of the per-domain results, duplicates included.
func (b *Batch) All() []string {
	var all []string
	for _, r := range b.Results {
		all = append(all, r.Subdomains...)
	}
	return all
}

func (b *Batch) Failed() int {
	failed := 0
	for _, r := range b.Results {
		if r.Failed() {
			failed++
		}
	}
	return failed
}

// CleanDomains trims every entry and drops blank ones.
func CleanDomains(domains []string) []string {
	cleaned := make([]string, 0, len(domains))
	for _, d := range domains {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		cleaned = append(cleaned, d)
	}
	return cleaned
}

// Run looks up every domain and hands each result to sink before consuming the
// next one. At most concurrency lookups are in flight; a new one is submitted
// only after the oldest result has been written. A failed lookup does not stop
// the batch; a sink error or a canceled context does, and no further requests
// are sent.
func (e *Enumerator) Run(ctx context.Context, domains []string, sink Sink) (*Batch, error) {
	domains = CleanDomains(domains)
	batch := &Batch{
		RunID:     xid.New().String(),
		Results:   make([]*Result, 0, len(domains)),
		StartedAt: time.Now(),
		unique:    subdomains.NewSet(),
	}

	runLogger := log.With().
		Str("run_id", batch.RunID).
		Str("source", e.source.Name()).
		Logger()

	runLogger.Info().
		Int("domains", len(domains)).
		Int("concurrency", e.concurrency).
		Msg("Starting batch")

	runCtx, cancel := context.WithCancel(ctx)
	pool := pond.NewResultPool[*Result](e.concurrency, pond.WithContext(runCtx))
	defer pool.StopAndWait()
	defer cancel()

	submit := func(domain string) pond.Result[*Result] {
		return pool.Submit(func() *Result {
			runLogger.Info().Str("domain", domain).Msgf("Fetching subdomains for %s...", domain)
			return e.Lookup(runCtx, domain)
		})
	}

	pending := make([]pond.Result[*Result], len(domains))
	next := 0
	for ; next < len(domains) && next < e.concurrency; next++ {
		pending[next] = submit(domains[next])
	}

	for i := range domains {
		result, err := pending[i].Wait()
		pending[i] = nil
		if err != nil {
			batch.Duration = time.Since(batch.StartedAt)
			return batch, fmt.Errorf("lookup of %s did not complete: %w", domains[i], err)
		}

		// an interrupted lookup is not an empty result, keep it away from the sink
		if ctx.Err() != nil && IsCanceled(result.Err) {
			batch.Duration = time.Since(batch.StartedAt)
			return batch, fmt.Errorf("lookup of %s interrupted: %w", domains[i], ctx.Err())
		}

		result.RunID = batch.RunID
		batch.Results = append(batch.Results, result)
		batch.unique.AddAll(result.Subdomains)

		if sink != nil {
			if err := sink.Write(result); err != nil {
				batch.Duration = time.Since(batch.StartedAt)
				return batch, fmt.Errorf("failed to write results for %s: %w", result.Domain, err)
			}
		}

		if next < len(domains) {
			pending[next] = submit(domains[next])
			next++
		}
	}

	batch.Duration = time.Since(batch.StartedAt)
	runLogger.Info().
		Int("domains", len(batch.Results)).
		Int("failed", batch.Failed()).
		Int("unique_subdomains", batch.unique.Len()).
		Dur("duration", batch.Duration).
		Msg("Batch finished")

	return batch, nil
}
