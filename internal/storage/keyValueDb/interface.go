package keyValueDb

import (
	"context"
)

// DB is the contract every key-value backend implements. The ledger store
// sits on top of this and never touches a backend directly.
type DB interface {
	Read(ctx context.Context, key []byte) ([]byte, error)
	Write(ctx context.Context, key []byte, value []byte) error
	Delete(ctx context.Context, key []byte) error

	// Batch applies all operations atomically.
	Batch(ctx context.Context, ops []BatchOperation) error

	// Iterator traverses keys in [start, end]. A nil start begins at the
	// first key; a nil end never stops.
	Iterator(ctx context.Context, start, end []byte) (Iterator, error)
}

// Iterator walks keyValueDb entries in key order.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Error() error
	Close() error
}

// BatchOperation is a single put or delete inside a Batch call.
type BatchOperation struct {
	Type  BatchOpType
	Key   []byte
	Value []byte
}

type BatchOpType int

const (
	BatchPut BatchOpType = iota
	BatchDelete
)

// Manager owns the lifecycle of named databases for one backend.
type Manager interface {
	// OpenDB opens or creates the database with the given name. Opening
	// the same name twice returns a handle to the same database.
	OpenDB(name string) (DB, error)

	// CloseDB closes one database.
	CloseDB(name string) error

	// Close closes every open database.
	Close() error
}
