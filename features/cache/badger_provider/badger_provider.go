package badger_provider

import (
	"context"
	"errors"
	"sync"
	"time"

	"crtsubs/features/cache/cache_errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog/log"
)

// BadgerProvider is a small key/value cache on top of Badger with per-entry TTLs.
type BadgerProvider struct {
	db          *badger.DB
	path        string
	inMemory    bool
	mu          sync.RWMutex
	initialized bool
}

// NewBadgerProvider creates a provider for the given directory. An empty path
// or inMemory=true keeps everything in memory.
func NewBadgerProvider(path string, inMemory bool) *BadgerProvider {
	return &BadgerProvider{
		path:     path,
		inMemory: inMemory || path == "",
	}
}

// Initialize opens the Badger instance.
func (p *BadgerProvider) Initialize(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}

	path := p.path
	if p.inMemory {
		path = ""
	}

	opts := badger.DefaultOptions(path).
		WithInMemory(p.inMemory).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to open Badger database")
		return err
	}

	p.db = db
	p.initialized = true
	log.Debug().Bool("in_memory", p.inMemory).Str("path", path).Msg("Badger initialized successfully")

	return nil
}

// Close releases Badger resources
func (p *BadgerProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.db != nil {
		err := p.db.Close()
		p.db = nil
		p.initialized = false
		return err
	}
	return nil
}

// Get returns a copy of the value stored under key.
func (p *BadgerProvider) Get(key string) ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.initialized {
		return nil, cache_errors.ErrCacheNotInitialized
	}

	var value []byte
	err := p.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return cache_errors.ErrKeyNotFound
			}
			return err
		}

		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	return value, nil
}

// Set stores value under key. A zero ttl keeps the entry until it is deleted.
func (p *BadgerProvider) Set(key string, value []byte, ttl time.Duration) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.initialized {
		return cache_errors.ErrCacheNotInitialized
	}
	if len(value) == 0 {
		return cache_errors.ErrEmptyValue
	}

	return p.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), value)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
}

// Delete removes a key from the cache
func (p *BadgerProvider) Delete(key string) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.initialized {
		return cache_errors.ErrCacheNotInitialized
	}

	return p.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// Iterate calls fn for every live key until fn returns an error or ctx is done.
func (p *BadgerProvider) Iterate(ctx context.Context, fn func(key string) error) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.initialized {
		return cache_errors.ErrCacheNotInitialized
	}

	return p.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(string(it.Item().Key())); err != nil {
				return err
			}
		}
		return nil
	})
}
