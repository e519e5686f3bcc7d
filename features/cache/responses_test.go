package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"crtsubs/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *ResponseCache {
	t.Helper()
	rc, err := NewResponseCache(context.Background(), &config.CacheSettings{
		Enabled:  true,
		InMemory: true,
		TTL:      time.Hour,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rc.Close() })
	return rc
}

func TestResponseKey(t *testing.T) {
	a := ResponseKey("https://crt.sh/?output=json&q=example.com")
	b := ResponseKey("https://crt.sh/?output=json&q=example.org")

	assert.NotEqual(t, a, b)
	assert.Equal(t, a, ResponseKey("https://crt.sh/?output=json&q=example.com"))
	assert.Len(t, a, len(responseKeyPrefix)+16)
}

func TestGetOrFetchCachesBody(t *testing.T) {
	rc := newTestCache(t)
	calls := 0
	fetch := func() ([]byte, error) {
		calls++
		return []byte(`[]`), nil
	}

	body, hit, err := rc.GetOrFetch("u", fetch)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, []byte(`[]`), body)

	body, hit, err = rc.GetOrFetch("u", fetch)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []byte(`[]`), body)
	assert.Equal(t, 1, calls)

	n, err := rc.Entries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestResponsesSurviveReopen(t *testing.T) {
	settings := &config.CacheSettings{
		Enabled:    true,
		BadgerPath: t.TempDir(),
		TTL:        time.Hour,
	}

	rc, err := NewResponseCache(context.Background(), settings)
	require.NoError(t, err)
	_, hit, err := rc.GetOrFetch("u", func() ([]byte, error) { return []byte(`[]`), nil })
	require.NoError(t, err)
	assert.False(t, hit)
	require.NoError(t, rc.Close())

	rc, err = NewResponseCache(context.Background(), settings)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rc.Close() })

	body, hit, err := rc.GetOrFetch("u", func() ([]byte, error) {
		return nil, errors.New("should be served from disk")
	})
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []byte(`[]`), body)
}

func TestGetOrFetchDoesNotCacheErrors(t *testing.T) {
	rc := newTestCache(t)
	boom := errors.New("boom")
	calls := 0

	for i := 0; i < 2; i++ {
		_, hit, err := rc.GetOrFetch("u", func() ([]byte, error) {
			calls++
			return nil, boom
		})
		assert.ErrorIs(t, err, boom)
		assert.False(t, hit)
	}
	assert.Equal(t, 2, calls)
}

func TestInvalidate(t *testing.T) {
	rc := newTestCache(t)
	calls := 0
	fetch := func() ([]byte, error) {
		calls++
		return []byte(`[]`), nil
	}

	_, _, err := rc.GetOrFetch("u", fetch)
	require.NoError(t, err)
	require.NoError(t, rc.Invalidate("u"))

	_, hit, err := rc.GetOrFetch("u", fetch)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, calls)
}

func TestInitializeCacheDisabled(t *testing.T) {
	rc, err := InitializeCache(context.Background(), &config.CacheSettings{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, rc)
	assert.NoError(t, CloseCache())
}

func TestInitializeCacheSingleton(t *testing.T) {
	settings := &config.CacheSettings{Enabled: true, InMemory: true, TTL: time.Minute}

	first, err := InitializeCache(context.Background(), settings)
	require.NoError(t, err)
	second, err := InitializeCache(context.Background(), settings)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.NoError(t, CloseCache())
}
