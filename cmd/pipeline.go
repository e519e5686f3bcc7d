package cmd

import (
	"context"
	"errors"
	"fmt"

	"crtsubs/features/cache"
	"crtsubs/features/enumerator"
	"crtsubs/features/providers/crtsh"
	"crtsubs/internal/collector"
	"crtsubs/internal/colly"
	"crtsubs/internal/config"

	"github.com/rs/zerolog/log"
)

var ErrNoConfig = errors.New("configuration is not loaded")

// loadConfig returns the process config with this invocation's flags applied.
func loadConfig(overrides ...func(*config.Config)) (*config.Config, error) {
	cfg := config.GetConfig()
	if cfg == nil {
		return nil, ErrNoConfig
	}

	for _, o := range overrides {
		o(cfg)
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildEnumerator wires the crt.sh provider, the optional response cache and
// the metrics collector into an Enumerator. The returned func releases the cache.
func buildEnumerator(ctx context.Context, cfg *config.Config) (*enumerator.Enumerator, func(), error) {
	cc, err := colly.InitCollyClient()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize http client: %w", err)
	}

	provider, err := crtsh.NewCrtshProvider(&cfg.Crtsh, cc)
	if err != nil {
		return nil, nil, err
	}

	rc, err := cache.InitializeCache(ctx, &cfg.Cache)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize response cache: %w", err)
	}
	if rc != nil {
		provider.SetCache(rc)
	}

	collector.NewMetricsCollector([]string{provider.Name()})

	enum := enumerator.New(provider,
		enumerator.WithConcurrency(cfg.Collector.Concurrency),
		enumerator.WithRateLimit(cfg.Crtsh.RateLimit),
	)

	release := func() {
		if err := cache.CloseCache(); err != nil {
			log.Error().Err(err).Msg("Failed to close response cache")
		}
	}

	return enum, release, nil
}
