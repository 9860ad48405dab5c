package state

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPoolRoundTrip(t *testing.T) {
	p := &Pool{
		FeeNumerator:   3,
		FeeDenominator: 1000,
		IsActive:       true,
		Bump:           254,
	}
	p.TokenMint[0] = 0xAA
	p.TokenVault[31] = 0xBB

	data, err := SerializePool(p)
	require.NoError(t, err)
	require.Len(t, data, poolSize, "pool layout width is part of the wire contract")

	got, err := ParsePool(data)
	require.NoError(t, err)
	require.Equal(t, p, got)
}

func TestSerializePoolRejectsZeroFeeDenominator(t *testing.T) {
	_, err := SerializePool(&Pool{})
	require.Error(t, err)
}

func TestParsePoolShortData(t *testing.T) {
	_, err := ParsePool(make([]byte, poolSize-1))
	require.Error(t, err)
}

func TestKycRecordRevocationFields(t *testing.T) {
	k := &KycRecord{Status: KycApproved, CreatedAt: 1700000000, Bump: 255}
	k.User[5] = 9

	data, err := SerializeKycRecord(k)
	require.NoError(t, err)

	got, err := ParseKycRecord(data)
	require.NoError(t, err)
	require.Equal(t, KycApproved, got.Status)
	require.Zero(t, got.RevokedAt, "approved records carry no revocation stamp")

	got.Status = KycRevoked
	got.RevokedAt = 1700086400
	data, err = SerializeKycRecord(got)
	require.NoError(t, err)

	again, err := ParseKycRecord(data)
	require.NoError(t, err)
	require.Equal(t, got, again)
}

func TestUserUsageRoundTrip(t *testing.T) {
	u := &UserUsage{DailyUsed: 1234, LastResetDay: 20000, LastTransaction: 1728000000, Bump: 255}
	u.User[0], u.Mint[0] = 1, 2

	data, err := SerializeUserUsage(u)
	require.NoError(t, err)

	got, err := ParseUserUsage(data)
	require.NoError(t, err)
	require.Equal(t, u, got)
}
