package bbolt

import (
	"fmt"
	"path/filepath"
	"sync"

	"go.etcd.io/bbolt"

	"github.com/mitgajera/Token2022-Hook-AMM/internal/storage/keyValueDb"
)

// Manager keeps every named database as a bucket in a single bbolt file.
type Manager struct {
	db      *bbolt.DB
	path    string
	buckets map[string]bool
	mu      sync.Mutex
}

func NewManager(path string) *Manager {
	return &Manager{
		path:    path,
		buckets: make(map[string]bool),
	}
}

func (m *Manager) OpenDB(name string) (keyValueDb.DB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db == nil {
		db, err := bbolt.Open(filepath.Join(m.path, "store.bolt"), 0o600, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to open bolt file: %w", err)
		}
		m.db = db
	}

	if !m.buckets[name] {
		err := m.db.Update(func(tx *bbolt.Tx) error {
			_, err := tx.CreateBucketIfNotExists([]byte(name))
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", name, err)
		}
		m.buckets[name] = true
	}

	return NewDB(m.db, []byte(name)), nil
}

func (m *Manager) CloseDB(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.buckets[name] {
		return fmt.Errorf("database %s not found", name)
	}
	// Buckets share one file; the handle stays open until Close.
	delete(m.buckets, name)
	return nil
}

func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db == nil {
		return nil
	}
	err := m.db.Close()
	m.db = nil
	m.buckets = make(map[string]bool)
	return err
}
