package tx

import (
	"errors"
	"fmt"
)

// SwapDirection selects which vault is the swap input.
type SwapDirection string

const (
	// SwapTokenToCurrency sells the pool's token for native currency.
	SwapTokenToCurrency SwapDirection = "tokenToCurrency"
	// SwapCurrencyToToken buys the pool's token with native currency.
	SwapCurrencyToToken SwapDirection = "currencyToToken"
)

func init() {
	Register(TypePoolCreate, func() Transaction { return &PoolCreate{} })
	Register(TypeLiquidityAdd, func() Transaction { return &LiquidityAdd{} })
	Register(TypeLiquidityRemove, func() Transaction { return &LiquidityRemove{} })
	Register(TypeSwap, func() Transaction { return &Swap{} })
	Register(TypePoolSetActive, func() Transaction { return &PoolSetActive{} })
}

// PoolCreate initializes the constant-product pool for a token mint. One
// pool exists per mint, paired against the native currency; the derivation
// collision probe is what enforces uniqueness.
type PoolCreate struct {
	BaseTx

	TokenMint      Address `json:"tokenMint"`
	FeeNumerator   uint64  `json:"feeNumerator"`
	FeeDenominator uint64  `json:"feeDenominator"`
}

// NewPoolCreate creates a PoolCreate transaction.
func NewPoolCreate(account, tokenMint Address, feeNum, feeDen uint64) *PoolCreate {
	return &PoolCreate{
		BaseTx:         NewBaseTx(account),
		TokenMint:      tokenMint,
		FeeNumerator:   feeNum,
		FeeDenominator: feeDen,
	}
}

// TxType returns the transaction type.
func (p *PoolCreate) TxType() Type { return TypePoolCreate }

// Validate validates the PoolCreate transaction.
func (p *PoolCreate) Validate() error {
	if err := p.BaseTx.Validate(); err != nil {
		return err
	}
	if p.TokenMint.IsZero() {
		return errors.New("invalidParameters: tokenMint is required")
	}
	if p.FeeDenominator == 0 {
		return errors.New("invalidParameters: feeDenominator cannot be zero")
	}
	if p.FeeNumerator >= p.FeeDenominator {
		return fmt.Errorf("invalidParameters: fee %d/%d is not below one",
			p.FeeNumerator, p.FeeDenominator)
	}
	return nil
}

// LiquidityAdd deposits token and currency into a pool in reserve ratio and
// mints liquidity shares to the caller.
type LiquidityAdd struct {
	BaseTx

	TokenMint      Address `json:"tokenMint"`
	TokenAmount    uint64  `json:"tokenAmount"`
	CurrencyAmount uint64  `json:"currencyAmount"`
	MinLPOut       uint64  `json:"minLpOut"`
}

// NewLiquidityAdd creates a LiquidityAdd transaction.
func NewLiquidityAdd(account, tokenMint Address, tokenAmount, currencyAmount, minLPOut uint64) *LiquidityAdd {
	return &LiquidityAdd{
		BaseTx:         NewBaseTx(account),
		TokenMint:      tokenMint,
		TokenAmount:    tokenAmount,
		CurrencyAmount: currencyAmount,
		MinLPOut:       minLPOut,
	}
}

// TxType returns the transaction type.
func (l *LiquidityAdd) TxType() Type { return TypeLiquidityAdd }

// Validate validates the LiquidityAdd transaction.
func (l *LiquidityAdd) Validate() error {
	if err := l.BaseTx.Validate(); err != nil {
		return err
	}
	if l.TokenMint.IsZero() {
		return errors.New("invalidParameters: tokenMint is required")
	}
	if l.TokenAmount == 0 || l.CurrencyAmount == 0 {
		return errors.New("zeroAmount: deposit amounts must be positive")
	}
	return nil
}

// LiquidityRemove burns liquidity shares and pays out both reserves
// proportionally.
type LiquidityRemove struct {
	BaseTx

	TokenMint      Address `json:"tokenMint"`
	LPAmount       uint64  `json:"lpAmount"`
	MinTokenOut    uint64  `json:"minTokenOut"`
	MinCurrencyOut uint64  `json:"minCurrencyOut"`
}

// NewLiquidityRemove creates a LiquidityRemove transaction.
func NewLiquidityRemove(account, tokenMint Address, lpAmount, minTokenOut, minCurrencyOut uint64) *LiquidityRemove {
	return &LiquidityRemove{
		BaseTx:         NewBaseTx(account),
		TokenMint:      tokenMint,
		LPAmount:       lpAmount,
		MinTokenOut:    minTokenOut,
		MinCurrencyOut: minCurrencyOut,
	}
}

// TxType returns the transaction type.
func (l *LiquidityRemove) TxType() Type { return TypeLiquidityRemove }

// Validate validates the LiquidityRemove transaction.
func (l *LiquidityRemove) Validate() error {
	if err := l.BaseTx.Validate(); err != nil {
		return err
	}
	if l.TokenMint.IsZero() {
		return errors.New("invalidParameters: tokenMint is required")
	}
	if l.LPAmount == 0 {
		return errors.New("zeroAmount: lpAmount must be positive")
	}
	return nil
}

// Swap trades against the pool's reserves with constant-product pricing. The
// fee stays in the input vault, which is what grows the reserve product over
// time.
type Swap struct {
	BaseTx

	TokenMint    Address       `json:"tokenMint"`
	AmountIn     uint64        `json:"amountIn"`
	MinAmountOut uint64        `json:"minAmountOut"`
	Direction    SwapDirection `json:"direction"`
}

// NewSwap creates a Swap transaction.
func NewSwap(account, tokenMint Address, amountIn, minAmountOut uint64, direction SwapDirection) *Swap {
	return &Swap{
		BaseTx:       NewBaseTx(account),
		TokenMint:    tokenMint,
		AmountIn:     amountIn,
		MinAmountOut: minAmountOut,
		Direction:    direction,
	}
}

// TxType returns the transaction type.
func (s *Swap) TxType() Type { return TypeSwap }

// Validate validates the Swap transaction.
func (s *Swap) Validate() error {
	if err := s.BaseTx.Validate(); err != nil {
		return err
	}
	if s.TokenMint.IsZero() {
		return errors.New("invalidParameters: tokenMint is required")
	}
	if s.AmountIn == 0 {
		return errors.New("zeroAmount: amountIn must be positive")
	}
	if s.Direction != SwapTokenToCurrency && s.Direction != SwapCurrencyToToken {
		return fmt.Errorf("invalidParameters: unknown swap direction %q", s.Direction)
	}
	return nil
}

// PoolSetActive is the authority-gated emergency stop. An inactive pool
// rejects every liquidity and swap operation until reactivated.
type PoolSetActive struct {
	BaseTx

	TokenMint Address `json:"tokenMint"`
	Active    bool    `json:"active"`
}

// NewPoolSetActive creates a PoolSetActive transaction.
func NewPoolSetActive(account, tokenMint Address, active bool) *PoolSetActive {
	return &PoolSetActive{
		BaseTx:    NewBaseTx(account),
		TokenMint: tokenMint,
		Active:    active,
	}
}

// TxType returns the transaction type.
func (p *PoolSetActive) TxType() Type { return TypePoolSetActive }

// Validate validates the PoolSetActive transaction.
func (p *PoolSetActive) Validate() error {
	if err := p.BaseTx.Validate(); err != nil {
		return err
	}
	if p.TokenMint.IsZero() {
		return errors.New("invalidParameters: tokenMint is required")
	}
	return nil
}
