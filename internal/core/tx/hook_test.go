package tx

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mitgajera/Token2022-Hook-AMM/internal/core/keylet"
	"github.com/mitgajera/Token2022-Hook-AMM/internal/core/safemath"
	"github.com/mitgajera/Token2022-Hook-AMM/internal/core/state"
)

// hookFixture sets up an engine with initialized settings, a hook-gated
// mint and two funded users, sender holding tokens.
type hookFixture struct {
	engine *Engine
	view   *memView
	clock  *testClock
	admin  Address
	sender Address
	dest   Address
	mint   Address
}

func newHookFixture(t *testing.T) *hookFixture {
	t.Helper()

	view := newMemView()
	clock := &testClock{now: 1_700_000_000}
	engine := newTestEngine(t, view, clock)

	admin := addr(1)
	sender := addr(2)
	dest := addr(3)
	fundNative(t, view, admin, 1000)
	fundNative(t, view, sender, 1000)
	fundNative(t, view, dest, 1000)

	applyOK(t, engine, NewHookInitialize(admin))

	mintKey := createMint(t, engine, admin, true)
	mint := AddressFromBytes(mintKey)
	applyOK(t, engine, NewTokenMintTo(admin, mint, sender, 1_000_000))

	return &hookFixture{
		engine: engine,
		view:   view,
		clock:  clock,
		admin:  admin,
		sender: sender,
		dest:   dest,
		mint:   mint,
	}
}

func (f *hookFixture) approve(t *testing.T, user Address) {
	t.Helper()
	applyOK(t, f.engine, NewKycCreate(f.admin, user))
}

func (f *hookFixture) kycRecord(t *testing.T, user Address) *state.KycRecord {
	t.Helper()
	data, err := f.view.Read(keylet.Kyc(user.Bytes()))
	require.NoError(t, err)
	require.NotNil(t, data)
	record, err := state.ParseKycRecord(data)
	require.NoError(t, err)
	return record
}

func (f *hookFixture) usage(t *testing.T, user Address) *state.UserUsage {
	t.Helper()
	data, err := f.view.Read(keylet.Usage(user.Bytes(), f.mint.Bytes()))
	require.NoError(t, err)
	if data == nil {
		return nil
	}
	usage, err := state.ParseUserUsage(data)
	require.NoError(t, err)
	return usage
}

func TestHookInitializeOnce(t *testing.T) {
	f := newHookFixture(t)
	applyFail(t, f.engine, NewHookInitialize(f.admin), ResultAlreadyExists)
	applyFail(t, f.engine, NewHookInitialize(addr(8)), ResultAlreadyExists)
}

func TestKycCreateRequiresSettings(t *testing.T) {
	view := newMemView()
	engine := newTestEngine(t, view, &testClock{now: 1})
	applyFail(t, engine, NewKycCreate(addr(1), addr(2)), ResultNotFound)
}

func TestKycAdminOperationsRequireAuthority(t *testing.T) {
	f := newHookFixture(t)
	intruder := addr(66)

	applyFail(t, f.engine, NewKycCreate(intruder, f.sender), ResultUnauthorized)
	applyFail(t, f.engine, NewKycRevoke(intruder, f.sender), ResultUnauthorized)
	applyFail(t, f.engine, NewLimitsSet(intruder, f.mint, 100, 10), ResultUnauthorized)
	applyFail(t, f.engine, NewAuthorityUpdate(intruder, intruder), ResultUnauthorized)
}

func TestTransferRequiresKyc(t *testing.T) {
	f := newHookFixture(t)

	before := f.view.snapshot()
	applyFail(t, f.engine, NewTokenTransfer(f.sender, f.mint, f.dest, 100), ResultKycRequired)
	require.Equal(t, before, f.view.snapshot())

	f.approve(t, f.sender)
	applyOK(t, f.engine, NewTokenTransfer(f.sender, f.mint, f.dest, 100))
	require.Equal(t, uint64(100), tokenOf(t, f.view, f.dest, f.mint.Bytes()))
}

func TestKycRevokeBlocksAndReapproveRestores(t *testing.T) {
	f := newHookFixture(t)
	f.approve(t, f.sender)
	applyOK(t, f.engine, NewTokenTransfer(f.sender, f.mint, f.dest, 100))

	f.clock.now += 60
	applyOK(t, f.engine, NewKycRevoke(f.admin, f.sender))

	record := f.kycRecord(t, f.sender)
	require.Equal(t, state.KycRevoked, record.Status)
	require.Equal(t, f.clock.now, record.RevokedAt)

	applyFail(t, f.engine, NewTokenTransfer(f.sender, f.mint, f.dest, 100), ResultKycRequired)

	// Revoking twice is a parameter error, not a state change.
	applyFail(t, f.engine, NewKycRevoke(f.admin, f.sender), ResultInvalidParameters)

	// Re-approval reuses the record and clears the revocation.
	f.clock.now += 60
	f.approve(t, f.sender)
	record = f.kycRecord(t, f.sender)
	require.Equal(t, state.KycApproved, record.Status)
	require.Equal(t, f.clock.now, record.CreatedAt)
	require.Zero(t, record.RevokedAt)

	applyOK(t, f.engine, NewTokenTransfer(f.sender, f.mint, f.dest, 100))
}

func TestKycCreateAlreadyApproved(t *testing.T) {
	f := newHookFixture(t)
	f.approve(t, f.sender)
	applyFail(t, f.engine, NewKycCreate(f.admin, f.sender), ResultAlreadyExists)
}

func TestTransactionLimitRejectionLeavesUsageUntouched(t *testing.T) {
	f := newHookFixture(t)
	f.approve(t, f.sender)
	applyOK(t, f.engine, NewLimitsSet(f.admin, f.mint, 10_000, 500))

	applyOK(t, f.engine, NewTokenTransfer(f.sender, f.mint, f.dest, 300))
	require.Equal(t, uint64(300), f.usage(t, f.sender).DailyUsed)

	before := f.view.snapshot()
	applyFail(t, f.engine, NewTokenTransfer(f.sender, f.mint, f.dest, 501), ResultTransactionLimitExceeded)
	require.Equal(t, before, f.view.snapshot())

	// At the limit is allowed; the cap is exclusive above, inclusive at.
	applyOK(t, f.engine, NewTokenTransfer(f.sender, f.mint, f.dest, 500))
	require.Equal(t, uint64(800), f.usage(t, f.sender).DailyUsed)
}

func TestDailyLimitAccumulates(t *testing.T) {
	f := newHookFixture(t)
	f.approve(t, f.sender)
	applyOK(t, f.engine, NewLimitsSet(f.admin, f.mint, 1000, 0))

	applyOK(t, f.engine, NewTokenTransfer(f.sender, f.mint, f.dest, 600))
	applyOK(t, f.engine, NewTokenTransfer(f.sender, f.mint, f.dest, 400))

	before := f.view.snapshot()
	applyFail(t, f.engine, NewTokenTransfer(f.sender, f.mint, f.dest, 1), ResultDailyLimitExceeded)
	require.Equal(t, before, f.view.snapshot())
}

func TestDailyUsageResetsOnNewDay(t *testing.T) {
	f := newHookFixture(t)
	f.approve(t, f.sender)
	applyOK(t, f.engine, NewLimitsSet(f.admin, f.mint, 1000, 0))

	applyOK(t, f.engine, NewTokenTransfer(f.sender, f.mint, f.dest, 1000))
	applyFail(t, f.engine, NewTokenTransfer(f.sender, f.mint, f.dest, 1), ResultDailyLimitExceeded)

	// The first transfer of the next day resets the counter to its own
	// amount, not to zero.
	f.clock.now += safemath.SecondsPerDay
	applyOK(t, f.engine, NewTokenTransfer(f.sender, f.mint, f.dest, 700))

	usage := f.usage(t, f.sender)
	require.Equal(t, uint64(700), usage.DailyUsed)
	require.Equal(t, safemath.DayIndex(f.clock.now, safemath.SecondsPerDay), usage.LastResetDay)
	require.Equal(t, f.clock.now, usage.LastTransaction)

	applyFail(t, f.engine, NewTokenTransfer(f.sender, f.mint, f.dest, 301), ResultDailyLimitExceeded)
	applyOK(t, f.engine, NewTokenTransfer(f.sender, f.mint, f.dest, 300))
}

func TestDailyLimitAtDayBoundary(t *testing.T) {
	f := newHookFixture(t)
	f.approve(t, f.sender)
	applyOK(t, f.engine, NewLimitsSet(f.admin, f.mint, 1000, 0))

	boundary := (f.clock.now/safemath.SecondsPerDay + 1) * safemath.SecondsPerDay

	f.clock.now = boundary - 1
	applyOK(t, f.engine, NewTokenTransfer(f.sender, f.mint, f.dest, 1000))
	applyFail(t, f.engine, NewTokenTransfer(f.sender, f.mint, f.dest, 1), ResultDailyLimitExceeded)

	// One second later the bucket index changes and the full limit is
	// available again.
	f.clock.now = boundary
	applyOK(t, f.engine, NewTokenTransfer(f.sender, f.mint, f.dest, 1000))
	require.Equal(t, uint64(1000), f.usage(t, f.sender).DailyUsed)
}

func TestInactiveLimitsDefaultAllow(t *testing.T) {
	f := newHookFixture(t)
	f.approve(t, f.sender)

	limits := NewLimitsSet(f.admin, f.mint, 10, 5)
	limits.Active = false
	applyOK(t, f.engine, limits)

	// Inactive limits do not constrain, but usage is still tracked.
	applyOK(t, f.engine, NewTokenTransfer(f.sender, f.mint, f.dest, 50_000))
	require.Equal(t, uint64(50_000), f.usage(t, f.sender).DailyUsed)
}

func TestLimitsSetValidation(t *testing.T) {
	f := newHookFixture(t)
	applyFail(t, f.engine, NewLimitsSet(f.admin, f.mint, 100, 200), ResultInvalidParameters)
}

func TestAuthorityUpdateTransfersControl(t *testing.T) {
	f := newHookFixture(t)
	successor := addr(20)

	f.clock.now += 60
	applyOK(t, f.engine, NewAuthorityUpdate(f.admin, successor))

	applyFail(t, f.engine, NewKycCreate(f.admin, f.sender), ResultUnauthorized)
	applyOK(t, f.engine, NewKycCreate(successor, f.sender))

	settings, result := loadSettings(f.view)
	require.Equal(t, ResultSuccess, result)
	require.Equal(t, successor.Bytes(), settings.Authority)
	require.Equal(t, f.clock.now, settings.UpdatedAt)
}

// A gated swap that fails validation mid-apply must leave the pool, the
// vaults and the caller untouched.
func TestGatedSwapRejectionIsAtomic(t *testing.T) {
	view := newMemView()
	clock := &testClock{now: 1_700_000_000}
	engine := newTestEngine(t, view, clock)

	admin := addr(1)
	trader := addr(2)
	fundNative(t, view, admin, 1000)
	fundNative(t, view, trader, 10_000_000)

	applyOK(t, engine, NewHookInitialize(admin))
	applyOK(t, engine, NewKycCreate(admin, admin))

	mintKey := createMint(t, engine, admin, true)
	mint := AddressFromBytes(mintKey)
	applyOK(t, engine, NewTokenMintTo(admin, mint, admin, 10_000_000))

	applyOK(t, engine, NewPoolCreate(admin, mint, 3, 1000))
	applyOK(t, engine, NewLiquidityAdd(admin, mint, 1_000_000, 1_000_000, 0))

	// The trader pays currency in, then fails KYC on the token leg out.
	// The currency debit staged before the rejection must not survive.
	before := view.snapshot()
	res := engine.Apply(NewSwap(trader, mint, 10_000, 0, SwapCurrencyToToken))
	require.Equal(t, ResultKycRequired, res.Result)
	require.False(t, res.Applied)
	require.Equal(t, before, view.snapshot())
}

// Usage accumulation near the counter ceiling must fail closed, before any
// balance moves.
func TestDailyUsageOverflowRejectsTransfer(t *testing.T) {
	view := newMemView()
	clock := &testClock{now: 1_700_000_000}
	engine := newTestEngine(t, view, clock)

	admin := addr(1)
	sender := addr(2)
	dest := addr(3)
	fundNative(t, view, admin, 1000)
	fundNative(t, view, sender, 1000)

	applyOK(t, engine, NewHookInitialize(admin))
	applyOK(t, engine, NewKycCreate(admin, sender))

	mintKey := createMint(t, engine, admin, true)
	mint := AddressFromBytes(mintKey)
	applyOK(t, engine, NewTokenMintTo(admin, mint, sender, math.MaxUint64))

	// No limits are set, so the full supply moves and the usage counter
	// saturates the uint64 range.
	applyOK(t, engine, NewTokenTransfer(sender, mint, dest, math.MaxUint64))

	before := view.snapshot()
	applyFail(t, engine, NewTokenTransfer(sender, mint, dest, 1), ResultArithmeticOverflow)
	require.Equal(t, before, view.snapshot())
}

func TestAppliedTransactionReportsMetadata(t *testing.T) {
	f := newHookFixture(t)
	f.approve(t, f.sender)

	res := f.engine.Apply(NewTokenTransfer(f.sender, f.mint, f.dest, 100))
	require.Equal(t, ResultSuccess, res.Result)
	require.NotNil(t, res.Metadata)

	var created, modified int
	for _, node := range res.Metadata.AffectedNodes {
		switch node.NodeType {
		case "CreatedNode":
			created++
		case "ModifiedNode":
			modified++
		}
	}
	// Destination holding and usage record are new; sender holding changed.
	require.Equal(t, 2, created)
	require.GreaterOrEqual(t, modified, 1)
}
