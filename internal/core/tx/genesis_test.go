package tx

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mitgajera/Token2022-Hook-AMM/internal/core/keylet"
)

func TestSeedGenesisFundsAccounts(t *testing.T) {
	view := newMemView()

	alice := addr(1)
	bob := addr(2)
	require.NoError(t, SeedGenesis(view, []GenesisAccount{
		{Account: alice, Balance: 5_000_000},
		{Account: bob, Balance: 1_000},
	}))

	require.Equal(t, uint64(5_000_000), nativeOf(t, view, alice))
	require.Equal(t, uint64(1_000), nativeOf(t, view, bob))

	// Reseeding an initialized store leaves live balances alone.
	require.NoError(t, SeedGenesis(view, []GenesisAccount{
		{Account: alice, Balance: 42},
	}))
	require.Equal(t, uint64(5_000_000), nativeOf(t, view, alice))
}

func TestSeedGenesisRejectsBadAccounts(t *testing.T) {
	view := newMemView()

	require.Error(t, SeedGenesis(view, []GenesisAccount{{Balance: 1}}))
	require.Error(t, SeedGenesis(view, []GenesisAccount{{Account: addr(1)}}))
}

// An unfunded store accepts admin and issuance operations, but every value
// operation dead-ends until a native account exists.
func TestFreshStoreRequiresGenesisFunding(t *testing.T) {
	view := newMemView()
	clock := &testClock{now: 1_700_000_000}
	engine := newTestEngine(t, view, clock)

	issuer := addr(1)
	applyOK(t, engine, NewHookInitialize(issuer))
	mintKey := createMint(t, engine, issuer, false)
	mint := AddressFromBytes(mintKey)
	applyOK(t, engine, NewTokenMintTo(issuer, mint, issuer, 1_000_000))

	applyFail(t, engine, NewPoolCreate(issuer, mint, 3, 1000), ResultNotFound)
	applyFail(t, engine, NewTokenTransfer(issuer, mint, addr(2), 10), ResultNotFound)
	applyFail(t, engine, NewSwap(issuer, mint, 10, 0, SwapTokenToCurrency), ResultNotFound)

	exists, err := view.Exists(keylet.Account(issuer.Bytes()))
	require.NoError(t, err)
	require.False(t, exists, "no native account may appear without genesis funding")

	require.NoError(t, SeedGenesis(view, []GenesisAccount{{Account: issuer, Balance: 2_000_000}}))
	applyOK(t, engine, NewPoolCreate(issuer, mint, 3, 1000))
}

// The full pool lifecycle is reachable from an empty store through genesis
// funding and registered transactions alone.
func TestGenesisFundedEndToEnd(t *testing.T) {
	view := newMemView()
	clock := &testClock{now: 1_700_000_000}
	engine := newTestEngine(t, view, clock)

	provider := addr(1)
	trader := addr(2)
	require.NoError(t, SeedGenesis(view, []GenesisAccount{
		{Account: provider, Balance: 10_000_000},
		{Account: trader, Balance: 100_000},
	}))

	mintKey := createMint(t, engine, provider, false)
	mint := AddressFromBytes(mintKey)
	applyOK(t, engine, NewTokenMintTo(provider, mint, provider, 5_000_000))

	applyOK(t, engine, NewPoolCreate(provider, mint, 3, 1000))
	applyOK(t, engine, NewLiquidityAdd(provider, mint, 1_000_000, 1_000_000, 0))

	applyOK(t, engine, NewSwap(trader, mint, 10_000, 9_000, SwapCurrencyToToken))
	require.Equal(t, uint64(90_000), nativeOf(t, view, trader))
	require.Equal(t, uint64(9872), tokenOf(t, view, trader, mintKey))

	applyOK(t, engine, NewLiquidityRemove(provider, mint, 250_000, 0, 0))
}
