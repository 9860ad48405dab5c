package state

import (
	"encoding/binary"
	"fmt"
)

// Mint is a fungible token mint. Supply tracks total issued units; for a
// pool's LP mint the supply is the outstanding liquidity-share total.
// HookGated mints route every transfer through the hook validator.
type Mint struct {
	Supply    uint64
	Decimals  uint8
	HookGated bool
	Authority [32]byte
	Bump      uint8
}

// TokenAccount holds one owner's balance of one mint.
type TokenAccount struct {
	Mint    [32]byte
	Owner   [32]byte
	Balance uint64
}

// Account is a native currency account.
type Account struct {
	Balance uint64
}

// ParseMint parses a mint entry from binary data.
func ParseMint(data []byte) (*Mint, error) {
	if len(data) < mintSize {
		return nil, fmt.Errorf("mint data too short: %d bytes", len(data))
	}

	m := &Mint{}
	offset := 0

	m.Supply = binary.BigEndian.Uint64(data[offset : offset+8])
	offset += 8
	m.Decimals = data[offset]
	offset++
	m.HookGated = data[offset] != 0
	offset++
	copy(m.Authority[:], data[offset:offset+32])
	offset += 32
	m.Bump = data[offset]

	return m, nil
}

// SerializeMint serializes a mint entry to binary.
func SerializeMint(m *Mint) ([]byte, error) {
	data := make([]byte, mintSize)
	offset := 0

	binary.BigEndian.PutUint64(data[offset:offset+8], m.Supply)
	offset += 8
	data[offset] = m.Decimals
	offset++
	if m.HookGated {
		data[offset] = 1
	}
	offset++
	copy(data[offset:offset+32], m.Authority[:])
	offset += 32
	data[offset] = m.Bump

	return data, nil
}

// ParseTokenAccount parses a token holding account from binary data.
func ParseTokenAccount(data []byte) (*TokenAccount, error) {
	if len(data) < tokenSize {
		return nil, fmt.Errorf("token account data too short: %d bytes", len(data))
	}

	a := &TokenAccount{}
	offset := 0

	copy(a.Mint[:], data[offset:offset+32])
	offset += 32
	copy(a.Owner[:], data[offset:offset+32])
	offset += 32
	a.Balance = binary.BigEndian.Uint64(data[offset : offset+8])

	return a, nil
}

// SerializeTokenAccount serializes a token holding account to binary.
func SerializeTokenAccount(a *TokenAccount) ([]byte, error) {
	data := make([]byte, tokenSize)
	offset := 0

	copy(data[offset:offset+32], a.Mint[:])
	offset += 32
	copy(data[offset:offset+32], a.Owner[:])
	offset += 32
	binary.BigEndian.PutUint64(data[offset:offset+8], a.Balance)

	return data, nil
}

// ParseAccount parses a native currency account from binary data.
func ParseAccount(data []byte) (*Account, error) {
	if len(data) < accountSize {
		return nil, fmt.Errorf("account data too short: %d bytes", len(data))
	}
	return &Account{Balance: binary.BigEndian.Uint64(data[:8])}, nil
}

// SerializeAccount serializes a native currency account to binary.
func SerializeAccount(a *Account) ([]byte, error) {
	data := make([]byte, accountSize)
	binary.BigEndian.PutUint64(data[:8], a.Balance)
	return data, nil
}
