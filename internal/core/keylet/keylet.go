package keylet

import (
	"encoding/binary"

	crypto "github.com/mitgajera/Token2022-Hook-AMM/internal/crypto/common"
)

// Space identifiers for keylet generation. Each persisted record kind lives
// in its own namespace so keys for different kinds can never collide.
const (
	SpacePool          uint16 = 'p' // Pool root
	SpaceTokenVault    uint16 = 'v' // Pool token reserve
	SpaceCurrencyVault uint16 = 'c' // Pool currency reserve
	SpaceLPMint        uint16 = 'l' // Liquidity share mint
	SpaceMint          uint16 = 'm' // Fungible token mint
	SpaceToken         uint16 = 't' // Token holding account
	SpaceAccount       uint16 = 'a' // Native currency account
	SpaceSettings      uint16 = 's' // Hook settings (singleton)
	SpaceKyc           uint16 = 'k' // KYC record
	SpaceLimits        uint16 = 'L' // Per-mint transfer limits
	SpaceUsage         uint16 = 'u' // Per-(user,mint) usage counters
)

// Keylet represents an addressable location in the account store. It combines
// a namespace identifier with a 256-bit key and the derivation bump that
// produced it. The bump is persisted inside the owning record so signing
// authorities can be re-derived without a search.
type Keylet struct {
	Space uint16
	Key   [32]byte
	Bump  uint8
}

// indexHash computes a keylet key by hashing the space, the seed components
// and the bump byte.
func indexHash(space uint16, bump uint8, seeds ...[]byte) [32]byte {
	spaceBytes := make([]byte, 2)
	binary.BigEndian.PutUint16(spaceBytes, space)

	inputs := make([][]byte, 0, len(seeds)+2)
	inputs = append(inputs, spaceBytes)
	inputs = append(inputs, seeds...)
	inputs = append(inputs, []byte{bump})

	return crypto.Sha512Half(inputs...)
}

// canonicalBump is the first candidate in the 255..0 bump search order.
// The account store imposes no curve constraint on addresses, so the first
// candidate is always accepted; the bump still travels with every keylet so
// record layouts stay compatible with runtimes that reject some candidates.
const canonicalBump uint8 = 255

// Derive maps (space, seeds) to a keylet at the canonical bump.
func Derive(space uint16, seeds ...[]byte) Keylet {
	return WithBump(space, canonicalBump, seeds...)
}

// WithBump re-derives the keylet for a persisted bump.
func WithBump(space uint16, bump uint8, seeds ...[]byte) Keylet {
	return Keylet{
		Space: space,
		Key:   indexHash(space, bump, seeds...),
		Bump:  bump,
	}
}

// Pool returns the keylet for a pool root entry.
func Pool(tokenMint [32]byte) Keylet {
	return Derive(SpacePool, tokenMint[:])
}

// TokenVault returns the keylet for a pool's token reserve account.
func TokenVault(pool, tokenMint [32]byte) Keylet {
	return Derive(SpaceTokenVault, pool[:], tokenMint[:])
}

// CurrencyVault returns the keylet for a pool's native currency reserve.
func CurrencyVault(pool [32]byte) Keylet {
	return Derive(SpaceCurrencyVault, pool[:])
}

// LPMint returns the keylet for a pool's liquidity share mint.
func LPMint(pool [32]byte) Keylet {
	return Derive(SpaceLPMint, pool[:])
}

// Mint returns the keylet for a fungible token mint created by authority
// under a caller-chosen seed.
func Mint(authority, seed [32]byte) Keylet {
	return Derive(SpaceMint, authority[:], seed[:])
}

// Token returns the keylet for owner's holding account of mint.
func Token(owner, mint [32]byte) Keylet {
	return Derive(SpaceToken, owner[:], mint[:])
}

// Account returns the keylet for a native currency account.
func Account(owner [32]byte) Keylet {
	return Derive(SpaceAccount, owner[:])
}

// Settings returns the keylet for the singleton hook settings entry.
func Settings() Keylet {
	return Derive(SpaceSettings)
}

// Kyc returns the keylet for a user's KYC record.
func Kyc(user [32]byte) Keylet {
	return Derive(SpaceKyc, user[:])
}

// Limits returns the keylet for a mint's transfer limit configuration.
func Limits(mint [32]byte) Keylet {
	return Derive(SpaceLimits, mint[:])
}

// Usage returns the keylet for the (user, mint) usage counters.
func Usage(user, mint [32]byte) Keylet {
	return Derive(SpaceUsage, user[:], mint[:])
}
