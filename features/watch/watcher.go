// Package watch re-enumerates a fixed set of domains and reports hostnames
// that were never seen before.
package watch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crtsubs/features/cache"
	"crtsubs/features/enumerator"
	"crtsubs/features/store"
	"crtsubs/internal/collector"

	"github.com/rs/zerolog/log"
)

var ErrNoDomains = errors.New("no domains to watch")

// Notifier is told about the new hostnames of each domain after a pass.
type Notifier interface {
	NewHostnames(domain string, hosts []string) error
}

// Notifiers fans out to every notifier in order, stopping at the first error.
type Notifiers []Notifier

func (ns Notifiers) NewHostnames(domain string, hosts []string) error {
	for _, n := range ns {
		if err := n.NewHostnames(domain, hosts); err != nil {
			return err
		}
	}
	return nil
}

// DomainReport is the outcome of one domain within a pass.
type DomainReport struct {
	Domain   string   `json:"domain"`
	Seen     int      `json:"seen"`
	New      []string `json:"new"`
	Failed   bool     `json:"failed"`
	ErrorMsg string   `json:"error,omitempty"`
}

// Report is the outcome of one watch pass.
type Report struct {
	RunID    string          `json:"run_id"`
	Domains  []*DomainReport `json:"domains"`
	Duration time.Duration   `json:"duration"`
	DryRun   bool            `json:"dry_run"`
}

// NewCount returns the number of new hostnames across all domains.
func (r *Report) NewCount() int {
	n := 0
	for _, d := range r.Domains {
		n += len(d.New)
	}
	return n
}

type Watcher struct {
	enum     *enumerator.Enumerator
	repo     store.SubdomainRepository
	known    *cache.KnownHosts
	notifier Notifier
	domains  []string
	dryRun   bool
}

type Option func(*Watcher)

// WithNotifier sets who hears about new hostnames.
func WithNotifier(n Notifier) Option {
	return func(w *Watcher) {
		w.notifier = n
	}
}

// WithKnownHosts sets a prebuilt filter instead of building one from the store.
func WithKnownHosts(k *cache.KnownHosts) Option {
	return func(w *Watcher) {
		w.known = k
	}
}

// WithDryRun reports new hostnames without writing them to the store.
func WithDryRun(state bool) Option {
	return func(w *Watcher) {
		w.dryRun = state
	}
}

func New(enum *enumerator.Enumerator, repo store.SubdomainRepository, domains []string, opts ...Option) (*Watcher, error) {
	domains = enumerator.CleanDomains(domains)
	if len(domains) == 0 {
		return nil, ErrNoDomains
	}

	w := &Watcher{
		enum:    enum,
		repo:    repo,
		domains: domains,
	}
	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

func (w *Watcher) Name() string {
	return "watch_" + w.enum.SourceName()
}

func (w *Watcher) Domains() []string {
	return append([]string(nil), w.domains...)
}

// Prepare builds the known-host filter from the store if none was given.
func (w *Watcher) Prepare(ctx context.Context) error {
	if w.known != nil {
		return nil
	}

	expected, err := w.repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to size known-host filter: %w", err)
	}

	known, err := cache.BuildKnownHosts(ctx, w.repo, expected*2)
	if err != nil {
		return fmt.Errorf("failed to build known-host filter: %w", err)
	}
	w.known = known

	log.Info().Int("known_hostnames", known.Len()).Msg("Known-host filter ready")
	return nil
}

// RunOnce enumerates every watched domain, stores the results and notifies
// about hostnames seen for the first time. A failed lookup is reported and
// leaves the stored hostnames of that domain untouched.
func (w *Watcher) RunOnce(ctx context.Context) (*Report, error) {
	if err := w.Prepare(ctx); err != nil {
		return nil, err
	}

	report := &Report{DryRun: w.dryRun}

	sink := enumerator.SinkFunc(func(result *enumerator.Result) error {
		dr, err := w.handle(ctx, result)
		if err != nil {
			return err
		}
		report.Domains = append(report.Domains, dr)
		return nil
	})

	batch, err := w.enum.Run(ctx, w.domains, sink)
	if batch != nil {
		report.RunID = batch.RunID
		report.Duration = batch.Duration
	}
	if err != nil {
		return report, err
	}

	if mc, _ := collector.GetMetricsCollector(); mc != nil {
		mc.IncrementNewHostnames(w.enum.SourceName(), report.NewCount())
	}

	log.Info().
		Str("run_id", report.RunID).
		Int("domains", len(report.Domains)).
		Int("new_hostnames", report.NewCount()).
		Bool("dry_run", w.dryRun).
		Dur("duration", report.Duration).
		Msg("Watch pass finished")

	return report, nil
}

func (w *Watcher) handle(ctx context.Context, result *enumerator.Result) (*DomainReport, error) {
	dr := &DomainReport{
		Domain: result.Domain,
		Seen:   len(result.Subdomains),
		New:    []string{},
	}

	if result.Failed() {
		dr.Failed = true
		dr.ErrorMsg = result.Err.Error()
		return dr, nil
	}

	fresh, err := w.Diff(ctx, result.Domain, result.Subdomains)
	if err != nil {
		return nil, err
	}

	if !w.dryRun {
		fresh, err = w.repo.Record(ctx, result.Domain, result.Subdomains, result.RunID)
		if err != nil {
			return nil, err
		}
		for _, h := range fresh {
			w.known.Add(result.Domain, h)
		}
	}
	dr.New = fresh

	if w.notifier != nil && len(fresh) > 0 {
		if err := w.notifier.NewHostnames(result.Domain, fresh); err != nil {
			return nil, fmt.Errorf("failed to report new hostnames for %s: %w", result.Domain, err)
		}
	}

	return dr, nil
}

// Diff returns the hostnames of domain that are not in the store. The filter
// answers definite negatives; possible positives are confirmed in the store.
func (w *Watcher) Diff(ctx context.Context, domain string, hosts []string) ([]string, error) {
	fresh := []string{}
	for _, h := range hosts {
		if w.known != nil && !w.known.MaybeKnown(domain, h) {
			fresh = append(fresh, h)
			continue
		}

		exists, err := w.repo.Exists(ctx, domain, h)
		if err != nil {
			return nil, err
		}
		if !exists {
			fresh = append(fresh, h)
		}
	}
	return fresh, nil
}

// Execute runs one pass; it lets the scheduler drive a Watcher.
func (w *Watcher) Execute(ctx context.Context) error {
	_, err := w.RunOnce(ctx)
	return err
}
