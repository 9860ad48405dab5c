package tx

import (
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mitgajera/Token2022-Hook-AMM/internal/core/keylet"
	"github.com/mitgajera/Token2022-Hook-AMM/internal/core/state"
)

// memView is an in-memory LedgerView for engine tests.
type memView struct {
	entries map[[32]byte][]byte
}

func newMemView() *memView {
	return &memView{entries: make(map[[32]byte][]byte)}
}

func (v *memView) Read(k keylet.Keylet) ([]byte, error) {
	data, ok := v.entries[k.Key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (v *memView) Exists(k keylet.Keylet) (bool, error) {
	_, ok := v.entries[k.Key]
	return ok, nil
}

func (v *memView) Insert(k keylet.Keylet, data []byte) error {
	if _, ok := v.entries[k.Key]; ok {
		return fmt.Errorf("entry %x already exists", k.Key)
	}
	v.entries[k.Key] = append([]byte(nil), data...)
	return nil
}

func (v *memView) Update(k keylet.Keylet, data []byte) error {
	if _, ok := v.entries[k.Key]; !ok {
		return fmt.Errorf("entry %x not found", k.Key)
	}
	v.entries[k.Key] = append([]byte(nil), data...)
	return nil
}

func (v *memView) Erase(k keylet.Keylet) error {
	if _, ok := v.entries[k.Key]; !ok {
		return fmt.Errorf("entry %x not found", k.Key)
	}
	delete(v.entries, k.Key)
	return nil
}

func (v *memView) ForEach(fn func(key [32]byte, data []byte) bool) error {
	keys := make([][32]byte, 0, len(v.entries))
	for k := range v.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		for b := 0; b < 32; b++ {
			if keys[i][b] != keys[j][b] {
				return keys[i][b] < keys[j][b]
			}
		}
		return false
	})
	for _, k := range keys {
		if !fn(k, v.entries[k]) {
			break
		}
	}
	return nil
}

// snapshot copies the view's contents for before/after comparisons.
func (v *memView) snapshot() map[[32]byte][]byte {
	out := make(map[[32]byte][]byte, len(v.entries))
	for k, data := range v.entries {
		out[k] = append([]byte(nil), data...)
	}
	return out
}

func addr(b byte) Address {
	var a Address
	a[31] = b
	return a
}

// testClock is a settable clock for day-rollover scenarios.
type testClock struct {
	now int64
}

func (c *testClock) Now() int64 { return c.now }

func newTestEngine(t *testing.T, view *memView, clock *testClock) *Engine {
	t.Helper()
	return NewEngine(view, EngineConfig{Clock: clock.Now})
}

// fundNative seeds a native currency account directly into the view.
func fundNative(t *testing.T, view *memView, owner Address, balance uint64) {
	t.Helper()
	data, err := state.SerializeAccount(&state.Account{Balance: balance})
	require.NoError(t, err)
	k := keylet.Account(owner.Bytes())
	if _, ok := view.entries[k.Key]; ok {
		require.NoError(t, view.Update(k, data))
	} else {
		require.NoError(t, view.Insert(k, data))
	}
}

func nativeOf(t *testing.T, view *memView, owner Address) uint64 {
	t.Helper()
	data, err := view.Read(keylet.Account(owner.Bytes()))
	require.NoError(t, err)
	if data == nil {
		return 0
	}
	account, err := state.ParseAccount(data)
	require.NoError(t, err)
	return account.Balance
}

func tokenOf(t *testing.T, view *memView, owner Address, mint [32]byte) uint64 {
	t.Helper()
	data, err := view.Read(keylet.Token(owner.Bytes(), mint))
	require.NoError(t, err)
	if data == nil {
		return 0
	}
	holding, err := state.ParseTokenAccount(data)
	require.NoError(t, err)
	return holding.Balance
}

func applyOK(t *testing.T, engine *Engine, txn Transaction) {
	t.Helper()
	res := engine.Apply(txn)
	require.Equal(t, ResultSuccess, res.Result, "unexpected result: %s", res.Message)
	require.True(t, res.Applied)
}

func applyFail(t *testing.T, engine *Engine, txn Transaction, want Result) {
	t.Helper()
	res := engine.Apply(txn)
	require.Equal(t, want, res.Result, "unexpected result: %s", res.Message)
	require.False(t, res.Applied)
}

// createMint issues a mint owned by authority and returns its key.
func createMint(t *testing.T, engine *Engine, authority Address, hookGated bool) [32]byte {
	t.Helper()
	seed := addr(0xee)
	applyOK(t, engine, NewMintCreate(authority, seed, 6, hookGated))
	return keylet.Mint(authority.Bytes(), seed.Bytes()).Key
}
