package tx

import (
	"github.com/mitgajera/Token2022-Hook-AMM/internal/core/keylet"
	"github.com/mitgajera/Token2022-Hook-AMM/internal/core/safemath"
	"github.com/mitgajera/Token2022-Hook-AMM/internal/core/state"
)

// loadPool reads the pool root for a token mint.
func loadPool(view LedgerView, tokenMint [32]byte) (*state.Pool, keylet.Keylet, Result) {
	k := keylet.Pool(tokenMint)
	data, err := view.Read(k)
	if err != nil {
		return nil, k, ResultInternal
	}
	if data == nil {
		return nil, k, ResultNotFound
	}
	pool, perr := state.ParsePool(data)
	if perr != nil {
		return nil, k, ResultInternal
	}
	return pool, k, ResultSuccess
}

// poolReserves reads both vault balances and the outstanding LP supply.
func poolReserves(view LedgerView, pool *state.Pool) (tokenReserve, currencyReserve, lpSupply uint64, result Result) {
	vaultData, err := view.Read(keylet.Keylet{Space: keylet.SpaceTokenVault, Key: pool.TokenVault})
	if err != nil || vaultData == nil {
		return 0, 0, 0, ResultInternal
	}
	vault, perr := state.ParseTokenAccount(vaultData)
	if perr != nil {
		return 0, 0, 0, ResultInternal
	}

	currencyReserve, result = nativeBalance(view, keylet.SpaceCurrencyVault, pool.CurrencyVault)
	if !result.IsSuccess() {
		return 0, 0, 0, result
	}

	lpMint, result := loadMint(view, pool.LPMint)
	if !result.IsSuccess() {
		return 0, 0, 0, ResultInternal
	}

	return vault.Balance, currencyReserve, lpMint.Supply, ResultSuccess
}

// Apply creates the pool root, both vault records and the LP mint. All four
// records derive from the pool key, so a second creation for the same token
// mint collides on the pool probe.
func (p *PoolCreate) Apply(ctx *ApplyContext) Result {
	tokenMint := p.TokenMint.Bytes()

	mint, result := loadMint(ctx.View, tokenMint)
	if !result.IsSuccess() {
		return result
	}

	poolKey := keylet.Pool(tokenMint)
	exists, err := ctx.View.Exists(poolKey)
	if err != nil {
		return ResultInternal
	}
	if exists {
		return ResultAlreadyExists
	}

	tokenVaultKey := keylet.TokenVault(poolKey.Key, tokenMint)
	currencyVaultKey := keylet.CurrencyVault(poolKey.Key)
	lpMintKey := keylet.LPMint(poolKey.Key)

	pool := &state.Pool{
		TokenMint:      tokenMint,
		TokenVault:     tokenVaultKey.Key,
		CurrencyVault:  currencyVaultKey.Key,
		LPMint:         lpMintKey.Key,
		FeeNumerator:   p.FeeNumerator,
		FeeDenominator: p.FeeDenominator,
		IsActive:       true,
		Bump:           poolKey.Bump,
	}
	poolData, serr := state.SerializePool(pool)
	if serr != nil {
		return ResultInternal
	}
	if err := ctx.View.Insert(poolKey, poolData); err != nil {
		return ResultInternal
	}

	vault := &state.TokenAccount{Mint: tokenMint, Owner: poolKey.Key}
	vaultData, serr := state.SerializeTokenAccount(vault)
	if serr != nil {
		return ResultInternal
	}
	if err := ctx.View.Insert(tokenVaultKey, vaultData); err != nil {
		return ResultInternal
	}

	currencyData, serr := state.SerializeAccount(&state.Account{})
	if serr != nil {
		return ResultInternal
	}
	if err := ctx.View.Insert(currencyVaultKey, currencyData); err != nil {
		return ResultInternal
	}

	lpMint := &state.Mint{
		Decimals:  mint.Decimals,
		Authority: poolKey.Key,
		Bump:      lpMintKey.Bump,
	}
	lpData, serr := state.SerializeMint(lpMint)
	if serr != nil {
		return ResultInternal
	}
	if err := ctx.View.Insert(lpMintKey, lpData); err != nil {
		return ResultInternal
	}

	return ResultSuccess
}

// Apply deposits both assets and mints liquidity shares. The first deposit
// seeds the share scale one-to-one with the token amount; later deposits
// must match the reserve ratio exactly or they would shift the price for
// every existing holder.
func (l *LiquidityAdd) Apply(ctx *ApplyContext) Result {
	pool, _, result := loadPool(ctx.View, l.TokenMint.Bytes())
	if !result.IsSuccess() {
		return result
	}
	if !pool.IsActive {
		return ResultPoolInactive
	}

	tokenReserve, currencyReserve, lpSupply, result := poolReserves(ctx.View, pool)
	if !result.IsSuccess() {
		return result
	}

	var lpMinted uint64
	if lpSupply == 0 {
		lpMinted = l.TokenAmount
	} else {
		requiredCurrency, ok := safemath.MulDivCeil(l.TokenAmount, currencyReserve, tokenReserve)
		if !ok {
			return ResultArithmeticOverflow
		}
		if l.CurrencyAmount != requiredCurrency {
			return ResultInvalidParameters
		}
		lpMinted, ok = safemath.MulDiv(l.TokenAmount, lpSupply, tokenReserve)
		if !ok {
			return ResultArithmeticOverflow
		}
	}

	if lpMinted < l.MinLPOut {
		return ResultSlippageExceeded
	}
	if lpMinted == 0 {
		return ResultZeroAmount
	}

	caller := ctx.Caller.Bytes()
	tokenMint := l.TokenMint.Bytes()

	// Token leg: user holding into the vault, through the hook when gated.
	result = hookedTokenMove(ctx, caller, tokenMint, l.TokenAmount, func() Result {
		if r := debitUserToken(ctx.View, caller, tokenMint, l.TokenAmount); !r.IsSuccess() {
			return r
		}
		return adjustVaultToken(ctx.View, pool.TokenVault, l.TokenAmount, true)
	})
	if !result.IsSuccess() {
		return result
	}

	// Currency leg.
	if r := adjustNative(ctx.View, keylet.SpaceAccount, caller, l.CurrencyAmount, false); !r.IsSuccess() {
		return r
	}
	if r := adjustNative(ctx.View, keylet.SpaceCurrencyVault, pool.CurrencyVault, l.CurrencyAmount, true); !r.IsSuccess() {
		return r
	}

	return mintSupplyAdjust(ctx.View, pool.LPMint, caller, lpMinted, true)
}

// Apply burns liquidity shares and pays out both reserves proportionally,
// flooring in the pool's favor.
func (l *LiquidityRemove) Apply(ctx *ApplyContext) Result {
	pool, _, result := loadPool(ctx.View, l.TokenMint.Bytes())
	if !result.IsSuccess() {
		return result
	}
	if !pool.IsActive {
		return ResultPoolInactive
	}

	tokenReserve, currencyReserve, lpSupply, result := poolReserves(ctx.View, pool)
	if !result.IsSuccess() {
		return result
	}
	if lpSupply == 0 {
		return ResultInsufficientLp
	}

	caller := ctx.Caller.Bytes()
	held, result := userTokenBalance(ctx.View, caller, pool.LPMint)
	if !result.IsSuccess() {
		return result
	}
	if held < l.LPAmount {
		return ResultInsufficientLp
	}

	tokenOut, ok := safemath.MulDiv(l.LPAmount, tokenReserve, lpSupply)
	if !ok {
		return ResultArithmeticOverflow
	}
	currencyOut, ok := safemath.MulDiv(l.LPAmount, currencyReserve, lpSupply)
	if !ok {
		return ResultArithmeticOverflow
	}

	if tokenOut < l.MinTokenOut || currencyOut < l.MinCurrencyOut {
		return ResultSlippageExceeded
	}

	if r := mintSupplyAdjust(ctx.View, pool.LPMint, caller, l.LPAmount, false); !r.IsSuccess() {
		return r
	}

	tokenMint := l.TokenMint.Bytes()
	result = hookedTokenMove(ctx, caller, tokenMint, tokenOut, func() Result {
		if r := adjustVaultToken(ctx.View, pool.TokenVault, tokenOut, false); !r.IsSuccess() {
			return r
		}
		return creditUserToken(ctx.View, caller, tokenMint, tokenOut)
	})
	if !result.IsSuccess() {
		return result
	}

	if r := adjustNative(ctx.View, keylet.SpaceCurrencyVault, pool.CurrencyVault, currencyOut, false); !r.IsSuccess() {
		return r
	}
	return adjustNative(ctx.View, keylet.SpaceAccount, caller, currencyOut, true)
}

// QuoteSwap computes the constant-product output for a fee-bearing swap
// without touching state. The serving surface uses it for dry-run quotes.
func QuoteSwap(amountIn, inputReserve, outputReserve, feeNum, feeDen uint64) (uint64, Result) {
	return swapQuote(amountIn, inputReserve, outputReserve, feeNum, feeDen)
}

// swapQuote computes the constant-product output for a fee-bearing swap.
// All divisions truncate toward zero, which systematically favors the pool.
func swapQuote(amountIn, inputReserve, outputReserve, feeNum, feeDen uint64) (uint64, Result) {
	if inputReserve == 0 || outputReserve == 0 {
		return 0, ResultInsufficientFunds
	}

	afterFee, ok := safemath.MulDiv(amountIn, feeDen-feeNum, feeDen)
	if !ok {
		return 0, ResultArithmeticOverflow
	}

	denominator, ok := safemath.Add(inputReserve, afterFee)
	if !ok {
		return 0, ResultArithmeticOverflow
	}

	amountOut, ok := safemath.MulDiv(outputReserve, afterFee, denominator)
	if !ok {
		return 0, ResultArithmeticOverflow
	}
	return amountOut, ResultSuccess
}

// Apply executes a constant-product swap. The hook validator runs inside the
// token leg, so a rejection aborts the whole swap before any balance moves.
func (s *Swap) Apply(ctx *ApplyContext) Result {
	pool, _, result := loadPool(ctx.View, s.TokenMint.Bytes())
	if !result.IsSuccess() {
		return result
	}
	if !pool.IsActive {
		return ResultPoolInactive
	}

	tokenReserve, currencyReserve, _, result := poolReserves(ctx.View, pool)
	if !result.IsSuccess() {
		return result
	}

	var inputReserve, outputReserve uint64
	if s.Direction == SwapTokenToCurrency {
		inputReserve, outputReserve = tokenReserve, currencyReserve
	} else {
		inputReserve, outputReserve = currencyReserve, tokenReserve
	}

	amountOut, result := swapQuote(s.AmountIn, inputReserve, outputReserve, pool.FeeNumerator, pool.FeeDenominator)
	if !result.IsSuccess() {
		return result
	}
	if amountOut < s.MinAmountOut {
		return ResultSlippageExceeded
	}

	caller := ctx.Caller.Bytes()
	tokenMint := s.TokenMint.Bytes()

	if s.Direction == SwapTokenToCurrency {
		result = hookedTokenMove(ctx, caller, tokenMint, s.AmountIn, func() Result {
			if r := debitUserToken(ctx.View, caller, tokenMint, s.AmountIn); !r.IsSuccess() {
				return r
			}
			return adjustVaultToken(ctx.View, pool.TokenVault, s.AmountIn, true)
		})
		if !result.IsSuccess() {
			return result
		}

		if r := adjustNative(ctx.View, keylet.SpaceCurrencyVault, pool.CurrencyVault, amountOut, false); !r.IsSuccess() {
			return r
		}
		return adjustNative(ctx.View, keylet.SpaceAccount, caller, amountOut, true)
	}

	if r := adjustNative(ctx.View, keylet.SpaceAccount, caller, s.AmountIn, false); !r.IsSuccess() {
		return r
	}
	if r := adjustNative(ctx.View, keylet.SpaceCurrencyVault, pool.CurrencyVault, s.AmountIn, true); !r.IsSuccess() {
		return r
	}

	return hookedTokenMove(ctx, caller, tokenMint, amountOut, func() Result {
		if r := adjustVaultToken(ctx.View, pool.TokenVault, amountOut, false); !r.IsSuccess() {
			return r
		}
		return creditUserToken(ctx.View, caller, tokenMint, amountOut)
	})
}

// Apply flips the pool's active flag. Gated on the hook settings authority:
// the deployment has a single administrative identity for both subsystems.
func (p *PoolSetActive) Apply(ctx *ApplyContext) Result {
	settings, result := loadSettings(ctx.View)
	if !result.IsSuccess() {
		return result
	}
	if settings.Authority != ctx.Caller.Bytes() {
		return ResultUnauthorized
	}

	pool, poolKey, result := loadPool(ctx.View, p.TokenMint.Bytes())
	if !result.IsSuccess() {
		return result
	}

	pool.IsActive = p.Active
	data, serr := state.SerializePool(pool)
	if serr != nil {
		return ResultInternal
	}
	if err := ctx.View.Update(poolKey, data); err != nil {
		return ResultInternal
	}
	return ResultSuccess
}
