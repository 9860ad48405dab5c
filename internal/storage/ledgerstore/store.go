// Package ledgerstore persists account store state behind the transaction
// engine's view interface. Records live in a key-value backend under a
// state prefix, fronted by an LRU read cache.
package ledgerstore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mitgajera/Token2022-Hook-AMM/internal/core/keylet"
	"github.com/mitgajera/Token2022-Hook-AMM/internal/storage/keyValueDb"
	"github.com/mitgajera/Token2022-Hook-AMM/internal/storage/keyValueDb/bbolt"
	"github.com/mitgajera/Token2022-Hook-AMM/internal/storage/keyValueDb/pebble"
)

// DefaultCacheSize bounds the read cache entry count.
const DefaultCacheSize = 16384

var statePrefix = []byte("s/")

// Store is the durable LedgerView implementation. Writes go straight
// through to the backend; the cache only ever holds committed data.
type Store struct {
	db    keyValueDb.DB
	cache *lru.Cache[[32]byte, []byte]

	// mu serializes writers. The engine already applies transactions one
	// at a time, but the RPC surface reads concurrently.
	mu sync.RWMutex
}

// Open creates the named backend at path and returns the store together
// with the manager that owns the backend's lifetime.
func Open(backend, path string, cacheSize int) (*Store, keyValueDb.Manager, error) {
	var manager keyValueDb.Manager
	switch backend {
	case "pebble":
		manager = pebble.NewManager(path)
	case "bbolt":
		manager = bbolt.NewManager(path)
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", backend)
	}

	db, err := manager.OpenDB("ledger")
	if err != nil {
		return nil, nil, err
	}

	store, err := New(db, cacheSize)
	if err != nil {
		_ = manager.Close()
		return nil, nil, err
	}
	return store, manager, nil
}

// New creates a store over an already open database.
func New(db keyValueDb.DB, cacheSize int) (*Store, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[[32]byte, []byte](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, cache: cache}, nil
}

func stateKey(key [32]byte) []byte {
	out := make([]byte, 0, len(statePrefix)+32)
	out = append(out, statePrefix...)
	return append(out, key[:]...)
}

// Read reads a state entry, returning nil data when absent.
func (s *Store) Read(k keylet.Keylet) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if data, ok := s.cache.Get(k.Key); ok {
		return append([]byte(nil), data...), nil
	}

	data, err := s.db.Read(context.Background(), stateKey(k.Key))
	if err != nil {
		if errors.Is(err, keyValueDb.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	s.cache.Add(k.Key, append([]byte(nil), data...))
	return data, nil
}

// Exists checks if an entry exists.
func (s *Store) Exists(k keylet.Keylet) (bool, error) {
	data, err := s.Read(k)
	if err != nil {
		return false, err
	}
	return data != nil, nil
}

// Insert adds a new entry. Fails when the entry already exists.
func (s *Store) Insert(k keylet.Keylet, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.existsLocked(k.Key)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("entry %x already exists", k.Key)
	}
	return s.writeLocked(k.Key, data)
}

// Update modifies an existing entry.
func (s *Store) Update(k keylet.Keylet, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.existsLocked(k.Key)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("entry %x not found", k.Key)
	}
	return s.writeLocked(k.Key, data)
}

// Erase removes an entry.
func (s *Store) Erase(k keylet.Keylet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.existsLocked(k.Key)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("entry %x not found", k.Key)
	}

	if err := s.db.Delete(context.Background(), stateKey(k.Key)); err != nil {
		return err
	}
	s.cache.Remove(k.Key)
	return nil
}

// ForEach iterates over all state entries in key order.
func (s *Store) ForEach(fn func(key [32]byte, data []byte) bool) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// The prefix is two bytes, so the exclusive upper bound is the
	// prefix with its last byte incremented.
	end := []byte{statePrefix[0], statePrefix[1] + 1}
	iter, err := s.db.Iterator(context.Background(), statePrefix, end)
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.Next() {
		raw := iter.Key()
		if len(raw) != len(statePrefix)+32 {
			continue
		}
		var key [32]byte
		copy(key[:], raw[len(statePrefix):])
		if !fn(key, iter.Value()) {
			break
		}
	}
	return iter.Error()
}

// CacheLen reports the current read cache population, for server stats.
func (s *Store) CacheLen() int {
	return s.cache.Len()
}

func (s *Store) existsLocked(key [32]byte) (bool, error) {
	if _, ok := s.cache.Get(key); ok {
		return true, nil
	}
	_, err := s.db.Read(context.Background(), stateKey(key))
	if err != nil {
		if errors.Is(err, keyValueDb.ErrKeyNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Store) writeLocked(key [32]byte, data []byte) error {
	if err := s.db.Write(context.Background(), stateKey(key), data); err != nil {
		return err
	}
	s.cache.Add(key, append([]byte(nil), data...))
	return nil
}
