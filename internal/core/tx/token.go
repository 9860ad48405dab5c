package tx

import (
	"github.com/mitgajera/Token2022-Hook-AMM/internal/core/keylet"
	"github.com/mitgajera/Token2022-Hook-AMM/internal/core/safemath"
	"github.com/mitgajera/Token2022-Hook-AMM/internal/core/state"
)

// Token and native balance plumbing shared by the pool engine and the token
// operations. User balances live in SpaceToken/SpaceAccount records; pool
// reserves live in SpaceTokenVault/SpaceCurrencyVault records that no
// user-facing operation can address, which is what makes the vaults
// exclusively pool-controlled.

// loadMint reads and parses a mint record.
func loadMint(view LedgerView, mintKey [32]byte) (*state.Mint, Result) {
	data, err := view.Read(keylet.Keylet{Space: keylet.SpaceMint, Key: mintKey})
	if err != nil {
		return nil, ResultInternal
	}
	if data == nil {
		return nil, ResultNotFound
	}
	mint, perr := state.ParseMint(data)
	if perr != nil {
		return nil, ResultInternal
	}
	return mint, ResultSuccess
}

// storeMint writes back a mint record.
func storeMint(view LedgerView, mintKey [32]byte, mint *state.Mint) Result {
	data, err := state.SerializeMint(mint)
	if err != nil {
		return ResultInternal
	}
	if err := view.Update(keylet.Keylet{Space: keylet.SpaceMint, Key: mintKey}, data); err != nil {
		return ResultInternal
	}
	return ResultSuccess
}

// creditUserToken adds amount to owner's holding of mint, creating the
// holding account lazily on first credit.
func creditUserToken(view LedgerView, owner, mintKey [32]byte, amount uint64) Result {
	k := keylet.Token(owner, mintKey)
	data, err := view.Read(k)
	if err != nil {
		return ResultInternal
	}

	if data == nil {
		account := &state.TokenAccount{Mint: mintKey, Owner: owner, Balance: amount}
		raw, serr := state.SerializeTokenAccount(account)
		if serr != nil {
			return ResultInternal
		}
		if err := view.Insert(k, raw); err != nil {
			return ResultInternal
		}
		return ResultSuccess
	}

	account, perr := state.ParseTokenAccount(data)
	if perr != nil {
		return ResultInternal
	}
	balance, ok := safemath.Add(account.Balance, amount)
	if !ok {
		return ResultArithmeticOverflow
	}
	account.Balance = balance

	raw, serr := state.SerializeTokenAccount(account)
	if serr != nil {
		return ResultInternal
	}
	if err := view.Update(k, raw); err != nil {
		return ResultInternal
	}
	return ResultSuccess
}

// debitUserToken removes amount from owner's holding of mint.
func debitUserToken(view LedgerView, owner, mintKey [32]byte, amount uint64) Result {
	k := keylet.Token(owner, mintKey)
	data, err := view.Read(k)
	if err != nil {
		return ResultInternal
	}
	if data == nil {
		return ResultInsufficientFunds
	}

	account, perr := state.ParseTokenAccount(data)
	if perr != nil {
		return ResultInternal
	}
	balance, ok := safemath.Sub(account.Balance, amount)
	if !ok {
		return ResultInsufficientFunds
	}
	account.Balance = balance

	raw, serr := state.SerializeTokenAccount(account)
	if serr != nil {
		return ResultInternal
	}
	if err := view.Update(k, raw); err != nil {
		return ResultInternal
	}
	return ResultSuccess
}

// userTokenBalance reads owner's balance of mint; a missing holding account
// reads as zero.
func userTokenBalance(view LedgerView, owner, mintKey [32]byte) (uint64, Result) {
	data, err := view.Read(keylet.Token(owner, mintKey))
	if err != nil {
		return 0, ResultInternal
	}
	if data == nil {
		return 0, ResultSuccess
	}
	account, perr := state.ParseTokenAccount(data)
	if perr != nil {
		return 0, ResultInternal
	}
	return account.Balance, ResultSuccess
}

// adjustVaultToken applies a checked delta to a pool's token reserve record.
func adjustVaultToken(view LedgerView, vaultKey [32]byte, delta uint64, credit bool) Result {
	k := keylet.Keylet{Space: keylet.SpaceTokenVault, Key: vaultKey}
	data, err := view.Read(k)
	if err != nil {
		return ResultInternal
	}
	if data == nil {
		return ResultNotFound
	}

	vault, perr := state.ParseTokenAccount(data)
	if perr != nil {
		return ResultInternal
	}

	var balance uint64
	var ok bool
	if credit {
		balance, ok = safemath.Add(vault.Balance, delta)
		if !ok {
			return ResultArithmeticOverflow
		}
	} else {
		balance, ok = safemath.Sub(vault.Balance, delta)
		if !ok {
			return ResultInsufficientFunds
		}
	}
	vault.Balance = balance

	raw, serr := state.SerializeTokenAccount(vault)
	if serr != nil {
		return ResultInternal
	}
	if err := view.Update(k, raw); err != nil {
		return ResultInternal
	}
	return ResultSuccess
}

// adjustNative applies a checked delta to a native account in the given
// space (SpaceAccount for users, SpaceCurrencyVault for pool reserves).
// User accounts are created lazily on first credit.
func adjustNative(view LedgerView, space uint16, key [32]byte, delta uint64, credit bool) Result {
	k := keylet.Keylet{Space: space, Key: key}
	data, err := view.Read(k)
	if err != nil {
		return ResultInternal
	}

	if data == nil {
		if !credit {
			return ResultInsufficientFunds
		}
		if space != keylet.SpaceAccount {
			// Vault records are created by PoolCreate, never lazily.
			return ResultNotFound
		}
		raw, serr := state.SerializeAccount(&state.Account{Balance: delta})
		if serr != nil {
			return ResultInternal
		}
		if err := view.Insert(k, raw); err != nil {
			return ResultInternal
		}
		return ResultSuccess
	}

	account, perr := state.ParseAccount(data)
	if perr != nil {
		return ResultInternal
	}

	var balance uint64
	var ok bool
	if credit {
		balance, ok = safemath.Add(account.Balance, delta)
		if !ok {
			return ResultArithmeticOverflow
		}
	} else {
		balance, ok = safemath.Sub(account.Balance, delta)
		if !ok {
			return ResultInsufficientFunds
		}
	}
	account.Balance = balance

	raw, serr := state.SerializeAccount(account)
	if serr != nil {
		return ResultInternal
	}
	if err := view.Update(k, raw); err != nil {
		return ResultInternal
	}
	return ResultSuccess
}

// nativeBalance reads a native account balance; missing accounts read as zero.
func nativeBalance(view LedgerView, space uint16, key [32]byte) (uint64, Result) {
	data, err := view.Read(keylet.Keylet{Space: space, Key: key})
	if err != nil {
		return 0, ResultInternal
	}
	if data == nil {
		return 0, ResultSuccess
	}
	account, perr := state.ParseAccount(data)
	if perr != nil {
		return 0, ResultInternal
	}
	return account.Balance, ResultSuccess
}

// hookedTokenMove moves amount of mint between a user holding and a pool
// vault (or another user). Hook-gated mints run the transfer validator
// first; a non-success result aborts the enclosing transaction before any
// balance moves.
func hookedTokenMove(ctx *ApplyContext, user [32]byte, mintKey [32]byte, amount uint64, move func() Result) Result {
	mint, result := loadMint(ctx.View, mintKey)
	if !result.IsSuccess() {
		return result
	}

	if mint.HookGated {
		if result := validateTransfer(ctx, user, mintKey, amount); !result.IsSuccess() {
			return result
		}
	}

	return move()
}

// mintSupplyAdjust mints or burns units of a mint, keeping supply and the
// target holding in step. Used for LP share issuance and token issuance.
func mintSupplyAdjust(view LedgerView, mintKey [32]byte, owner [32]byte, amount uint64, issue bool) Result {
	mint, result := loadMint(view, mintKey)
	if !result.IsSuccess() {
		return result
	}

	if issue {
		supply, ok := safemath.Add(mint.Supply, amount)
		if !ok {
			return ResultArithmeticOverflow
		}
		mint.Supply = supply
		if result := creditUserToken(view, owner, mintKey, amount); !result.IsSuccess() {
			return result
		}
	} else {
		supply, ok := safemath.Sub(mint.Supply, amount)
		if !ok {
			return ResultInsufficientLp
		}
		mint.Supply = supply
		if result := debitUserToken(view, owner, mintKey, amount); !result.IsSuccess() {
			return result
		}
	}

	return storeMint(view, mintKey, mint)
}
