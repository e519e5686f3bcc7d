package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"crtsubs/features/cache/badger_provider"
	"crtsubs/features/cache/cache_errors"
	"crtsubs/internal/config"

	"github.com/rs/zerolog/log"
	"github.com/zeebo/xxh3"
)

const responseKeyPrefix = "crtsh:response:"

var (
	instance *ResponseCache
	mu       sync.Mutex
)

// ResponseCache keeps raw search responses so repeated lookups of the same
// query inside the TTL do not hit the network.
type ResponseCache struct {
	provider *badger_provider.BadgerProvider
	ttl      time.Duration
}

// NewResponseCache opens a Badger backed cache according to settings.
func NewResponseCache(ctx context.Context, settings *config.CacheSettings) (*ResponseCache, error) {
	provider := badger_provider.NewBadgerProvider(settings.BadgerPath, settings.InMemory)
	if err := provider.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("failed to open response cache: %w", err)
	}

	return &ResponseCache{provider: provider, ttl: settings.TTL}, nil
}

// InitializeCache opens the process wide response cache once. It returns nil
// without error when caching is disabled.
func InitializeCache(ctx context.Context, settings *config.CacheSettings) (*ResponseCache, error) {
	mu.Lock()
	defer mu.Unlock()

	if !settings.Enabled {
		return nil, nil
	}
	if instance != nil {
		return instance, nil
	}

	rc, err := NewResponseCache(ctx, settings)
	if err != nil {
		return nil, err
	}
	instance = rc

	entries, err := rc.Entries(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to count cached responses")
	}

	log.Info().
		Int("entries", entries).
		Bool("in_memory", settings.InMemory).
		Str("path", settings.BadgerPath).
		Dur("ttl", settings.TTL).
		Msg("Response cache initialized")

	return instance, nil
}

// CloseCache closes the process wide cache if it was opened.
func CloseCache() error {
	mu.Lock()
	defer mu.Unlock()

	if instance == nil {
		return nil
	}
	err := instance.Close()
	instance = nil
	return err
}

// ResponseKey derives the cache key for a query URL.
func ResponseKey(queryURL string) string {
	return fmt.Sprintf("%s%016x", responseKeyPrefix, xxh3.HashString(queryURL))
}

// GetOrFetch returns the cached body for queryURL, or calls fetch and stores
// its result. The boolean reports a cache hit. Fetch errors are never cached.
func (c *ResponseCache) GetOrFetch(queryURL string, fetch func() ([]byte, error)) ([]byte, bool, error) {
	key := ResponseKey(queryURL)

	body, err := c.provider.Get(key)
	if err == nil {
		log.Debug().Str("url", queryURL).Str("key", key).Int("bytes", len(body)).Msg("Using cached response")
		return body, true, nil
	}
	if !errors.Is(err, cache_errors.ErrKeyNotFound) {
		log.Warn().Err(err).Str("key", key).Msg("Cached response unreadable, fetching from source")
	}

	body, err = fetch()
	if err != nil {
		return nil, false, err
	}

	if err := c.provider.Set(key, body, c.ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to cache response")
	}

	return body, false, nil
}

// Invalidate drops the cached body for queryURL.
func (c *ResponseCache) Invalidate(queryURL string) error {
	return c.provider.Delete(ResponseKey(queryURL))
}

// Entries counts the live cached responses.
func (c *ResponseCache) Entries(ctx context.Context) (int, error) {
	n := 0
	err := c.provider.Iterate(ctx, func(key string) error {
		if strings.HasPrefix(key, responseKeyPrefix) {
			n++
		}
		return nil
	})
	return n, err
}

func (c *ResponseCache) Close() error {
	return c.provider.Close()
}
