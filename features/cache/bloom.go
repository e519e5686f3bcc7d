package cache

import (
	"context"
	"errors"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/rs/zerolog/log"
)

const (
	minBloomCapacity  = 1000
	bloomFalsePosRate = 0.01
)

var ErrBloomFilterNotInitialized = errors.New("bloom filter not initialized")

// HostLister streams every known domain/hostname pair to fn.
type HostLister interface {
	IterateHostnames(ctx context.Context, fn func(domain, hostname string) error) error
}

// KnownHosts is a probabilistic set of domain/hostname pairs already on
// record. A negative Test is definite, a positive one must be confirmed.
type KnownHosts struct {
	mu     sync.RWMutex
	filter *bloom.BloomFilter
	added  int
}

// NewKnownHosts sizes the filter for expected entries.
func NewKnownHosts(expected int) *KnownHosts {
	if expected < minBloomCapacity {
		expected = minBloomCapacity
	}

	bf := bloom.NewWithEstimates(uint(expected), bloomFalsePosRate)
	log.Debug().
		Int("expected", expected).
		Uint("bloom_capacity", bf.Cap()).
		Uint("hash_functions", bf.K()).
		Msg("Created bloom filter")

	return &KnownHosts{filter: bf}
}

// BuildKnownHosts creates a filter and fills it from lister.
func BuildKnownHosts(ctx context.Context, lister HostLister, expected int) (*KnownHosts, error) {
	kh := NewKnownHosts(expected)
	if err := kh.Populate(ctx, lister); err != nil {
		return nil, err
	}
	return kh, nil
}

// Populate adds every pair yielded by lister.
func (k *KnownHosts) Populate(ctx context.Context, lister HostLister) error {
	if k == nil || k.filter == nil {
		return ErrBloomFilterNotInitialized
	}

	count := 0
	err := lister.IterateHostnames(ctx, func(domain, hostname string) error {
		k.Add(domain, hostname)
		count++
		if count%100000 == 0 {
			log.Info().Int("keys_added", count).Msg("Building bloom filter - progress")
		}
		return nil
	})

	k.mu.RLock()
	fpRate := bloom.EstimateFalsePositiveRate(uint(k.added), k.filter.Cap(), k.filter.K())
	k.mu.RUnlock()

	log.Debug().
		Int("total_keys_added", count).
		Float64("false_positive_rate", fpRate).
		Msg("Completed building bloom filter from store")

	return err
}

func (k *KnownHosts) Add(domain, hostname string) {
	k.mu.Lock()
	k.filter.Add(knownHostKey(domain, hostname))
	k.added++
	k.mu.Unlock()
}

// MaybeKnown reports whether the pair might have been added.
func (k *KnownHosts) MaybeKnown(domain, hostname string) bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.filter.Test(knownHostKey(domain, hostname))
}

func (k *KnownHosts) Len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.added
}

func knownHostKey(domain, hostname string) []byte {
	return []byte(domain + "\x00" + hostname)
}
