package tx

import (
	"github.com/mitgajera/Token2022-Hook-AMM/internal/core/keylet"
)

// LedgerView provides read/write access to account store state. The store
// guarantees atomic read-modify-write within one transaction; the engine
// never sees a partially applied view.
type LedgerView interface {
	// Read reads an entry. Returns nil data when the entry does not exist.
	Read(k keylet.Keylet) ([]byte, error)

	// Exists checks if an entry exists.
	Exists(k keylet.Keylet) (bool, error)

	// Insert adds a new entry. Fails when the entry already exists.
	Insert(k keylet.Keylet, data []byte) error

	// Update modifies an existing entry.
	Update(k keylet.Keylet, data []byte) error

	// Erase removes an entry.
	Erase(k keylet.Keylet) error

	// ForEach iterates over all state entries. If fn returns false,
	// iteration stops early.
	ForEach(fn func(key [32]byte, data []byte) bool) error
}
