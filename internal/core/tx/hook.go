package tx

import (
	"errors"
)

func init() {
	Register(TypeHookInitialize, func() Transaction { return &HookInitialize{} })
	Register(TypeKycCreate, func() Transaction { return &KycCreate{} })
	Register(TypeKycRevoke, func() Transaction { return &KycRevoke{} })
	Register(TypeLimitsSet, func() Transaction { return &LimitsSet{} })
	Register(TypeAuthorityUpdate, func() Transaction { return &AuthorityUpdate{} })
}

// HookInitialize creates the singleton settings record with the caller as
// authority. Runs once per deployment.
type HookInitialize struct {
	BaseTx
}

// NewHookInitialize creates a HookInitialize transaction.
func NewHookInitialize(account Address) *HookInitialize {
	return &HookInitialize{BaseTx: NewBaseTx(account)}
}

// TxType returns the transaction type.
func (h *HookInitialize) TxType() Type { return TypeHookInitialize }

// Validate validates the HookInitialize transaction.
func (h *HookInitialize) Validate() error {
	return h.BaseTx.Validate()
}

// KycCreate approves a user. On a record that was revoked, the approval is
// re-issued in place: status flips back to approved, the revocation stamp is
// cleared and createdAt is restamped. An already approved user fails with
// alreadyExists.
type KycCreate struct {
	BaseTx

	User Address `json:"user"`
}

// NewKycCreate creates a KycCreate transaction.
func NewKycCreate(account, user Address) *KycCreate {
	return &KycCreate{BaseTx: NewBaseTx(account), User: user}
}

// TxType returns the transaction type.
func (k *KycCreate) TxType() Type { return TypeKycCreate }

// Validate validates the KycCreate transaction.
func (k *KycCreate) Validate() error {
	if err := k.BaseTx.Validate(); err != nil {
		return err
	}
	if k.User.IsZero() {
		return errors.New("invalidParameters: user is required")
	}
	return nil
}

// KycRevoke revokes a user's approval. The record is kept with the
// revocation timestamp; it is never physically deleted.
type KycRevoke struct {
	BaseTx

	User Address `json:"user"`
}

// NewKycRevoke creates a KycRevoke transaction.
func NewKycRevoke(account, user Address) *KycRevoke {
	return &KycRevoke{BaseTx: NewBaseTx(account), User: user}
}

// TxType returns the transaction type.
func (k *KycRevoke) TxType() Type { return TypeKycRevoke }

// Validate validates the KycRevoke transaction.
func (k *KycRevoke) Validate() error {
	if err := k.BaseTx.Validate(); err != nil {
		return err
	}
	if k.User.IsZero() {
		return errors.New("invalidParameters: user is required")
	}
	return nil
}

// LimitsSet creates or updates the transfer-limit configuration for a mint.
// A zero limit leaves that cap unconfigured.
type LimitsSet struct {
	BaseTx

	Mint             Address `json:"mint"`
	DailyLimit       uint64  `json:"dailyLimit"`
	TransactionLimit uint64  `json:"transactionLimit"`
	Active           bool    `json:"active"`
}

// NewLimitsSet creates a LimitsSet transaction.
func NewLimitsSet(account, mint Address, dailyLimit, transactionLimit uint64) *LimitsSet {
	return &LimitsSet{
		BaseTx:           NewBaseTx(account),
		Mint:             mint,
		DailyLimit:       dailyLimit,
		TransactionLimit: transactionLimit,
		Active:           true,
	}
}

// TxType returns the transaction type.
func (l *LimitsSet) TxType() Type { return TypeLimitsSet }

// Validate validates the LimitsSet transaction. A per-transaction limit
// above the daily limit could never be satisfied on a fresh day, so it is
// rejected at set time.
func (l *LimitsSet) Validate() error {
	if err := l.BaseTx.Validate(); err != nil {
		return err
	}
	if l.Mint.IsZero() {
		return errors.New("invalidParameters: mint is required")
	}
	if l.DailyLimit != 0 && l.TransactionLimit > l.DailyLimit {
		return errors.New("invalidParameters: transactionLimit exceeds dailyLimit")
	}
	return nil
}

// AuthorityUpdate transfers administrative control to a new identity.
type AuthorityUpdate struct {
	BaseTx

	NewAuthority Address `json:"newAuthority"`
}

// NewAuthorityUpdate creates an AuthorityUpdate transaction.
func NewAuthorityUpdate(account, newAuthority Address) *AuthorityUpdate {
	return &AuthorityUpdate{BaseTx: NewBaseTx(account), NewAuthority: newAuthority}
}

// TxType returns the transaction type.
func (a *AuthorityUpdate) TxType() Type { return TypeAuthorityUpdate }

// Validate validates the AuthorityUpdate transaction.
func (a *AuthorityUpdate) Validate() error {
	if err := a.BaseTx.Validate(); err != nil {
		return err
	}
	if a.NewAuthority.IsZero() {
		return errors.New("invalidParameters: newAuthority is required")
	}
	return nil
}
