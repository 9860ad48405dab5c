// Package state defines the persisted record layouts of the pool engine and
// the transfer-hook validator. Records use fixed-width big-endian encoding;
// field order is part of the wire contract and must not change.
package state

import (
	"encoding/binary"
	"fmt"
)

// Pool sizes, fixed layouts.
const (
	poolSize    = 32 + 32 + 32 + 32 + 8 + 8 + 1 + 1
	mintSize    = 8 + 1 + 1 + 32 + 1
	tokenSize   = 32 + 32 + 8
	accountSize = 8
)

// Pool is the root record of a liquidity pool. The vaults are exclusively
// owned by the pool's derived signing authority; only pool operations may
// move funds out of them.
type Pool struct {
	TokenMint      [32]byte
	TokenVault     [32]byte
	CurrencyVault  [32]byte
	LPMint         [32]byte
	FeeNumerator   uint64
	FeeDenominator uint64
	IsActive       bool
	Bump           uint8
}

// ParsePool parses a pool root entry from binary data.
func ParsePool(data []byte) (*Pool, error) {
	if len(data) < poolSize {
		return nil, fmt.Errorf("pool data too short: %d bytes", len(data))
	}

	p := &Pool{}
	offset := 0

	copy(p.TokenMint[:], data[offset:offset+32])
	offset += 32
	copy(p.TokenVault[:], data[offset:offset+32])
	offset += 32
	copy(p.CurrencyVault[:], data[offset:offset+32])
	offset += 32
	copy(p.LPMint[:], data[offset:offset+32])
	offset += 32

	p.FeeNumerator = binary.BigEndian.Uint64(data[offset : offset+8])
	offset += 8
	p.FeeDenominator = binary.BigEndian.Uint64(data[offset : offset+8])
	offset += 8

	p.IsActive = data[offset] != 0
	offset++
	p.Bump = data[offset]

	return p, nil
}

// SerializePool serializes a pool root entry to binary.
func SerializePool(p *Pool) ([]byte, error) {
	if p.FeeDenominator == 0 {
		return nil, fmt.Errorf("pool fee denominator cannot be zero")
	}

	data := make([]byte, poolSize)
	offset := 0

	copy(data[offset:offset+32], p.TokenMint[:])
	offset += 32
	copy(data[offset:offset+32], p.TokenVault[:])
	offset += 32
	copy(data[offset:offset+32], p.CurrencyVault[:])
	offset += 32
	copy(data[offset:offset+32], p.LPMint[:])
	offset += 32

	binary.BigEndian.PutUint64(data[offset:offset+8], p.FeeNumerator)
	offset += 8
	binary.BigEndian.PutUint64(data[offset:offset+8], p.FeeDenominator)
	offset += 8

	if p.IsActive {
		data[offset] = 1
	}
	offset++
	data[offset] = p.Bump

	return data, nil
}
