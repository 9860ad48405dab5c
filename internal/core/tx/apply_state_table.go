package tx

import (
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/mitgajera/Token2022-Hook-AMM/internal/core/keylet"
)

// Action represents the type of modification to a state entry.
type Action int

const (
	// ActionCache means the entry was read but not modified.
	ActionCache Action = iota
	// ActionInsert means a new entry was created.
	ActionInsert
	// ActionModify means an existing entry was modified.
	ActionModify
	// ActionErase means an entry was deleted.
	ActionErase
)

// TrackedEntry represents a state entry being tracked for changes.
type TrackedEntry struct {
	Space    uint16
	Action   Action
	Original []byte // Original state (nil for inserts)
	Current  []byte // Current state
}

// ApplyStateTable wraps a LedgerView and buffers all modifications. A
// transaction's writes only reach the base view through Apply, which the
// engine calls solely on success; every failure path therefore leaves the
// store byte-identical to its pre-transaction state.
type ApplyStateTable struct {
	base  LedgerView
	items map[[32]byte]*TrackedEntry
}

// NewApplyStateTable creates a new ApplyStateTable over the given base view.
func NewApplyStateTable(base LedgerView) *ApplyStateTable {
	return &ApplyStateTable{
		base:  base,
		items: make(map[[32]byte]*TrackedEntry),
	}
}

// Read reads a state entry, tracking it as cached.
func (t *ApplyStateTable) Read(k keylet.Keylet) ([]byte, error) {
	if entry, exists := t.items[k.Key]; exists {
		if entry.Action == ActionErase {
			return nil, nil
		}
		return entry.Current, nil
	}

	data, err := t.base.Read(k)
	if err != nil {
		return nil, err
	}

	if data != nil {
		t.items[k.Key] = &TrackedEntry{
			Space:    k.Space,
			Action:   ActionCache,
			Original: data,
			Current:  data,
		}
	}

	return data, nil
}

// Exists checks if an entry exists.
func (t *ApplyStateTable) Exists(k keylet.Keylet) (bool, error) {
	if entry, exists := t.items[k.Key]; exists {
		return entry.Action != ActionErase, nil
	}
	return t.base.Exists(k)
}

// Insert adds a new entry.
func (t *ApplyStateTable) Insert(k keylet.Keylet, data []byte) error {
	if entry, exists := t.items[k.Key]; exists {
		if entry.Action != ActionErase {
			return fmt.Errorf("entry already exists")
		}
		// Re-inserting a deleted entry becomes a modify
		entry.Action = ActionModify
		entry.Current = data
		return nil
	}

	exists, err := t.base.Exists(k)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("entry already exists")
	}

	t.items[k.Key] = &TrackedEntry{
		Space:    k.Space,
		Action:   ActionInsert,
		Original: nil,
		Current:  data,
	}

	return nil
}

// Update modifies an existing entry.
func (t *ApplyStateTable) Update(k keylet.Keylet, data []byte) error {
	if entry, exists := t.items[k.Key]; exists {
		if entry.Action == ActionErase {
			return fmt.Errorf("entry not found (deleted)")
		}
		if entry.Action == ActionCache {
			entry.Action = ActionModify
		}
		// An insert stays an insert with new data
		entry.Current = data
		return nil
	}

	original, err := t.base.Read(k)
	if err != nil {
		return err
	}
	if original == nil {
		return fmt.Errorf("entry not found")
	}

	t.items[k.Key] = &TrackedEntry{
		Space:    k.Space,
		Action:   ActionModify,
		Original: original,
		Current:  data,
	}

	return nil
}

// Erase removes an entry.
func (t *ApplyStateTable) Erase(k keylet.Keylet) error {
	if entry, exists := t.items[k.Key]; exists {
		if entry.Action == ActionErase {
			return fmt.Errorf("entry already deleted")
		}
		if entry.Action == ActionInsert {
			// Inserting then deleting = no change
			delete(t.items, k.Key)
			return nil
		}
		entry.Action = ActionErase
		return nil
	}

	original, err := t.base.Read(k)
	if err != nil {
		return err
	}
	if original == nil {
		return fmt.Errorf("entry not found")
	}

	t.items[k.Key] = &TrackedEntry{
		Space:    k.Space,
		Action:   ActionErase,
		Original: original,
		Current:  original,
	}

	return nil
}

// ForEach iterates over the base view's state entries.
func (t *ApplyStateTable) ForEach(fn func(key [32]byte, data []byte) bool) error {
	return t.base.ForEach(fn)
}

// Apply commits all buffered changes to the base view and returns the
// generated metadata.
func (t *ApplyStateTable) Apply() (*Metadata, error) {
	meta := &Metadata{AffectedNodes: make([]AffectedNode, 0, len(t.items))}

	// Deterministic commit order: sorted by key.
	keys := make([][32]byte, 0, len(t.items))
	for key := range t.items {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return hex.EncodeToString(keys[i][:]) < hex.EncodeToString(keys[j][:])
	})

	for _, key := range keys {
		entry := t.items[key]
		k := keylet.Keylet{Space: entry.Space, Key: key}

		switch entry.Action {
		case ActionCache:
			continue
		case ActionInsert:
			if err := t.base.Insert(k, entry.Current); err != nil {
				return nil, fmt.Errorf("commit insert: %w", err)
			}
			meta.AffectedNodes = append(meta.AffectedNodes, AffectedNode{
				NodeType: "CreatedNode",
				Space:    entry.Space,
				Key:      hex.EncodeToString(key[:]),
			})
		case ActionModify:
			if err := t.base.Update(k, entry.Current); err != nil {
				return nil, fmt.Errorf("commit update: %w", err)
			}
			meta.AffectedNodes = append(meta.AffectedNodes, AffectedNode{
				NodeType: "ModifiedNode",
				Space:    entry.Space,
				Key:      hex.EncodeToString(key[:]),
			})
		case ActionErase:
			if err := t.base.Erase(k); err != nil {
				return nil, fmt.Errorf("commit erase: %w", err)
			}
			meta.AffectedNodes = append(meta.AffectedNodes, AffectedNode{
				NodeType: "DeletedNode",
				Space:    entry.Space,
				Key:      hex.EncodeToString(key[:]),
			})
		}
	}

	return meta, nil
}
