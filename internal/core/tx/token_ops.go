package tx

import (
	"errors"

	"github.com/mitgajera/Token2022-Hook-AMM/internal/core/keylet"
	"github.com/mitgajera/Token2022-Hook-AMM/internal/core/state"
)

func init() {
	Register(TypeMintCreate, func() Transaction { return &MintCreate{} })
	Register(TypeTokenMintTo, func() Transaction { return &TokenMintTo{} })
	Register(TypeTokenTransfer, func() Transaction { return &TokenTransfer{} })
}

// MintCreate creates a fungible token mint controlled by the caller. The
// mint key is derived from the caller and a caller-chosen seed, so one
// authority can issue any number of distinct mints.
type MintCreate struct {
	BaseTx

	Seed      Address `json:"seed"`
	Decimals  uint8   `json:"decimals"`
	HookGated bool    `json:"hookGated"`
}

// NewMintCreate creates a MintCreate transaction.
func NewMintCreate(account, seed Address, decimals uint8, hookGated bool) *MintCreate {
	return &MintCreate{
		BaseTx:    NewBaseTx(account),
		Seed:      seed,
		Decimals:  decimals,
		HookGated: hookGated,
	}
}

// TxType returns the transaction type.
func (m *MintCreate) TxType() Type { return TypeMintCreate }

// Validate validates the MintCreate transaction.
func (m *MintCreate) Validate() error {
	if err := m.BaseTx.Validate(); err != nil {
		return err
	}
	if m.Decimals > 18 {
		return errors.New("invalidParameters: decimals above 18")
	}
	return nil
}

// Apply creates the mint record.
func (m *MintCreate) Apply(ctx *ApplyContext) Result {
	k := keylet.Mint(ctx.Caller.Bytes(), m.Seed.Bytes())
	exists, err := ctx.View.Exists(k)
	if err != nil {
		return ResultInternal
	}
	if exists {
		return ResultAlreadyExists
	}

	mint := &state.Mint{
		Decimals:  m.Decimals,
		HookGated: m.HookGated,
		Authority: ctx.Caller.Bytes(),
		Bump:      k.Bump,
	}
	data, serr := state.SerializeMint(mint)
	if serr != nil {
		return ResultInternal
	}
	if err := ctx.View.Insert(k, data); err != nil {
		return ResultInternal
	}
	return ResultSuccess
}

// TokenMintTo issues new units of a mint to a destination holding. Only the
// mint authority may issue; issuance is not a transfer, so hook-gated mints
// do not run the validator here.
type TokenMintTo struct {
	BaseTx

	Mint   Address `json:"mint"`
	Dest   Address `json:"dest"`
	Amount uint64  `json:"amount"`
}

// NewTokenMintTo creates a TokenMintTo transaction.
func NewTokenMintTo(account, mint, dest Address, amount uint64) *TokenMintTo {
	return &TokenMintTo{
		BaseTx: NewBaseTx(account),
		Mint:   mint,
		Dest:   dest,
		Amount: amount,
	}
}

// TxType returns the transaction type.
func (t *TokenMintTo) TxType() Type { return TypeTokenMintTo }

// Validate validates the TokenMintTo transaction.
func (t *TokenMintTo) Validate() error {
	if err := t.BaseTx.Validate(); err != nil {
		return err
	}
	if t.Mint.IsZero() {
		return errors.New("invalidParameters: mint is required")
	}
	if t.Dest.IsZero() {
		return errors.New("invalidParameters: dest is required")
	}
	if t.Amount == 0 {
		return errors.New("zeroAmount: amount must be positive")
	}
	return nil
}

// Apply issues Amount units of Mint to Dest.
func (t *TokenMintTo) Apply(ctx *ApplyContext) Result {
	mint, result := loadMint(ctx.View, t.Mint.Bytes())
	if !result.IsSuccess() {
		return result
	}
	if mint.Authority != ctx.Caller.Bytes() {
		return ResultUnauthorized
	}
	return mintSupplyAdjust(ctx.View, t.Mint.Bytes(), t.Dest.Bytes(), t.Amount, true)
}

// TokenTransfer moves units of a mint between two user holdings. This is
// the operation a hook-gated mint guards: the sender is the user the
// validator checks.
type TokenTransfer struct {
	BaseTx

	Mint   Address `json:"mint"`
	Dest   Address `json:"dest"`
	Amount uint64  `json:"amount"`
}

// NewTokenTransfer creates a TokenTransfer transaction.
func NewTokenTransfer(account, mint, dest Address, amount uint64) *TokenTransfer {
	return &TokenTransfer{
		BaseTx: NewBaseTx(account),
		Mint:   mint,
		Dest:   dest,
		Amount: amount,
	}
}

// TxType returns the transaction type.
func (t *TokenTransfer) TxType() Type { return TypeTokenTransfer }

// Validate validates the TokenTransfer transaction.
func (t *TokenTransfer) Validate() error {
	if err := t.BaseTx.Validate(); err != nil {
		return err
	}
	if t.Mint.IsZero() {
		return errors.New("invalidParameters: mint is required")
	}
	if t.Dest.IsZero() {
		return errors.New("invalidParameters: dest is required")
	}
	if t.Dest == t.Account {
		return errors.New("invalidParameters: dest equals sender")
	}
	if t.Amount == 0 {
		return errors.New("zeroAmount: amount must be positive")
	}
	return nil
}

// Apply moves Amount units of Mint from the caller to Dest.
func (t *TokenTransfer) Apply(ctx *ApplyContext) Result {
	caller := ctx.Caller.Bytes()
	mintKey := t.Mint.Bytes()

	return hookedTokenMove(ctx, caller, mintKey, t.Amount, func() Result {
		if r := debitUserToken(ctx.View, caller, mintKey, t.Amount); !r.IsSuccess() {
			return r
		}
		return creditUserToken(ctx.View, t.Dest.Bytes(), mintKey, t.Amount)
	})
}
