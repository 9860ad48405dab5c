package state

import (
	"encoding/binary"
	"fmt"
)

// KYC status values.
const (
	KycRevoked  uint8 = 0
	KycApproved uint8 = 1
)

const (
	settingsSize = 32 + 1 + 8 + 8 + 1
	kycSize      = 32 + 1 + 8 + 8 + 1
	limitsSize   = 32 + 8 + 8 + 1 + 8 + 1
	usageSize    = 32 + 32 + 8 + 8 + 8 + 1
)

// Settings is the hook validator's singleton configuration record. The
// authority is the sole identity permitted to manage KYC, limits and the
// settings record itself.
type Settings struct {
	Authority [32]byte
	IsActive  bool
	CreatedAt int64
	UpdatedAt int64
	Bump      uint8
}

// KycRecord is a user's approval state, consulted on every hook-gated
// transfer. Records are never physically deleted; revocation stamps
// RevokedAt and flips Status.
type KycRecord struct {
	User      [32]byte
	Status    uint8
	CreatedAt int64
	RevokedAt int64
	Bump      uint8
}

// MintLimits configures per-transfer and per-day caps for one mint.
// A zero limit field means that cap is not configured.
type MintLimits struct {
	Mint             [32]byte
	DailyLimit       uint64
	TransactionLimit uint64
	IsActive         bool
	UpdatedAt        int64
	Bump             uint8
}

// UserUsage tracks one user's consumption of one mint's daily allowance.
// DailyUsed resets to the triggering transfer amount when the day index
// advances past LastResetDay.
type UserUsage struct {
	User            [32]byte
	Mint            [32]byte
	DailyUsed       uint64
	LastResetDay    uint64
	LastTransaction int64
	Bump            uint8
}

// ParseSettings parses the settings entry from binary data.
func ParseSettings(data []byte) (*Settings, error) {
	if len(data) < settingsSize {
		return nil, fmt.Errorf("settings data too short: %d bytes", len(data))
	}

	s := &Settings{}
	offset := 0

	copy(s.Authority[:], data[offset:offset+32])
	offset += 32
	s.IsActive = data[offset] != 0
	offset++
	s.CreatedAt = int64(binary.BigEndian.Uint64(data[offset : offset+8]))
	offset += 8
	s.UpdatedAt = int64(binary.BigEndian.Uint64(data[offset : offset+8]))
	offset += 8
	s.Bump = data[offset]

	return s, nil
}

// SerializeSettings serializes the settings entry to binary.
func SerializeSettings(s *Settings) ([]byte, error) {
	data := make([]byte, settingsSize)
	offset := 0

	copy(data[offset:offset+32], s.Authority[:])
	offset += 32
	if s.IsActive {
		data[offset] = 1
	}
	offset++
	binary.BigEndian.PutUint64(data[offset:offset+8], uint64(s.CreatedAt))
	offset += 8
	binary.BigEndian.PutUint64(data[offset:offset+8], uint64(s.UpdatedAt))
	offset += 8
	data[offset] = s.Bump

	return data, nil
}

// ParseKycRecord parses a KYC entry from binary data.
func ParseKycRecord(data []byte) (*KycRecord, error) {
	if len(data) < kycSize {
		return nil, fmt.Errorf("kyc data too short: %d bytes", len(data))
	}

	k := &KycRecord{}
	offset := 0

	copy(k.User[:], data[offset:offset+32])
	offset += 32
	k.Status = data[offset]
	offset++
	k.CreatedAt = int64(binary.BigEndian.Uint64(data[offset : offset+8]))
	offset += 8
	k.RevokedAt = int64(binary.BigEndian.Uint64(data[offset : offset+8]))
	offset += 8
	k.Bump = data[offset]

	return k, nil
}

// SerializeKycRecord serializes a KYC entry to binary.
func SerializeKycRecord(k *KycRecord) ([]byte, error) {
	data := make([]byte, kycSize)
	offset := 0

	copy(data[offset:offset+32], k.User[:])
	offset += 32
	data[offset] = k.Status
	offset++
	binary.BigEndian.PutUint64(data[offset:offset+8], uint64(k.CreatedAt))
	offset += 8
	binary.BigEndian.PutUint64(data[offset:offset+8], uint64(k.RevokedAt))
	offset += 8
	data[offset] = k.Bump

	return data, nil
}

// ParseMintLimits parses a transfer-limit entry from binary data.
func ParseMintLimits(data []byte) (*MintLimits, error) {
	if len(data) < limitsSize {
		return nil, fmt.Errorf("limits data too short: %d bytes", len(data))
	}

	l := &MintLimits{}
	offset := 0

	copy(l.Mint[:], data[offset:offset+32])
	offset += 32
	l.DailyLimit = binary.BigEndian.Uint64(data[offset : offset+8])
	offset += 8
	l.TransactionLimit = binary.BigEndian.Uint64(data[offset : offset+8])
	offset += 8
	l.IsActive = data[offset] != 0
	offset++
	l.UpdatedAt = int64(binary.BigEndian.Uint64(data[offset : offset+8]))
	offset += 8
	l.Bump = data[offset]

	return l, nil
}

// SerializeMintLimits serializes a transfer-limit entry to binary.
func SerializeMintLimits(l *MintLimits) ([]byte, error) {
	data := make([]byte, limitsSize)
	offset := 0

	copy(data[offset:offset+32], l.Mint[:])
	offset += 32
	binary.BigEndian.PutUint64(data[offset:offset+8], l.DailyLimit)
	offset += 8
	binary.BigEndian.PutUint64(data[offset:offset+8], l.TransactionLimit)
	offset += 8
	if l.IsActive {
		data[offset] = 1
	}
	offset++
	binary.BigEndian.PutUint64(data[offset:offset+8], uint64(l.UpdatedAt))
	offset += 8
	data[offset] = l.Bump

	return data, nil
}

// ParseUserUsage parses a usage entry from binary data.
func ParseUserUsage(data []byte) (*UserUsage, error) {
	if len(data) < usageSize {
		return nil, fmt.Errorf("usage data too short: %d bytes", len(data))
	}

	u := &UserUsage{}
	offset := 0

	copy(u.User[:], data[offset:offset+32])
	offset += 32
	copy(u.Mint[:], data[offset:offset+32])
	offset += 32
	u.DailyUsed = binary.BigEndian.Uint64(data[offset : offset+8])
	offset += 8
	u.LastResetDay = binary.BigEndian.Uint64(data[offset : offset+8])
	offset += 8
	u.LastTransaction = int64(binary.BigEndian.Uint64(data[offset : offset+8]))
	offset += 8
	u.Bump = data[offset]

	return u, nil
}

// SerializeUserUsage serializes a usage entry to binary.
func SerializeUserUsage(u *UserUsage) ([]byte, error) {
	data := make([]byte, usageSize)
	offset := 0

	copy(data[offset:offset+32], u.User[:])
	offset += 32
	copy(data[offset:offset+32], u.Mint[:])
	offset += 32
	binary.BigEndian.PutUint64(data[offset:offset+8], u.DailyUsed)
	offset += 8
	binary.BigEndian.PutUint64(data[offset:offset+8], u.LastResetDay)
	offset += 8
	binary.BigEndian.PutUint64(data[offset:offset+8], uint64(u.LastTransaction))
	offset += 8
	data[offset] = u.Bump

	return data, nil
}
