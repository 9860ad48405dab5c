package tx

import (
	"encoding/hex"
	"fmt"
	"sort"
)

// Type identifies a transaction kind. The operation surface is a closed
// enumeration: every operation has a fixed, strongly typed parameter struct,
// so a caller can never pass the wrong record shape to an operation.
type Type string

const (
	TypePoolCreate      Type = "PoolCreate"
	TypeLiquidityAdd    Type = "LiquidityAdd"
	TypeLiquidityRemove Type = "LiquidityRemove"
	TypeSwap            Type = "Swap"
	TypePoolSetActive   Type = "PoolSetActive"

	TypeHookInitialize  Type = "HookInitialize"
	TypeKycCreate       Type = "KycCreate"
	TypeKycRevoke       Type = "KycRevoke"
	TypeLimitsSet       Type = "LimitsSet"
	TypeAuthorityUpdate Type = "AuthorityUpdate"

	TypeMintCreate    Type = "MintCreate"
	TypeTokenMintTo   Type = "TokenMintTo"
	TypeTokenTransfer Type = "TokenTransfer"
)

// Address is a 32-byte account store address. It marshals as lowercase hex
// so transactions round-trip through the JSON-RPC surface.
type Address [32]byte

// Bytes returns the raw array for keylet derivation and record fields.
func (a Address) Bytes() [32]byte {
	return [32]byte(a)
}

// IsZero reports whether the address is all zeroes.
func (a Address) IsZero() bool {
	return a == Address{}
}

// String implements fmt.Stringer.
func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(a[:])), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	raw, err := hex.DecodeString(string(text))
	if err != nil {
		return fmt.Errorf("invalid address %q: %w", text, err)
	}
	if len(raw) != 32 {
		return fmt.Errorf("invalid address length %d, want 32", len(raw))
	}
	copy(a[:], raw)
	return nil
}

// AddressFromBytes converts a raw record field back into an Address.
func AddressFromBytes(raw [32]byte) Address {
	return Address(raw)
}

// Common holds the fields shared by every transaction.
type Common struct {
	// Account is the caller's identity; authority checks and balance
	// movements are resolved against it.
	Account Address `json:"account"`
}

// Transaction is the contract every operation implements.
type Transaction interface {
	// TxType returns the transaction type tag.
	TxType() Type

	// GetCommon returns the shared fields.
	GetCommon() *Common

	// Validate performs stateless parameter validation (preflight).
	Validate() error

	// Apply executes the operation against the apply context's view.
	Apply(ctx *ApplyContext) Result
}

// BaseTx provides the Common plumbing for concrete transaction types.
type BaseTx struct {
	Common
}

// NewBaseTx creates the shared transaction base for the given caller.
func NewBaseTx(account Address) BaseTx {
	return BaseTx{Common: Common{Account: account}}
}

// GetCommon returns the shared fields.
func (b *BaseTx) GetCommon() *Common {
	return &b.Common
}

// Validate checks fields common to all transactions.
func (b *BaseTx) Validate() error {
	if b.Account.IsZero() {
		return fmt.Errorf("%s: account is required", ResultInvalidParameters)
	}
	return nil
}

// registry maps transaction types to factories, so the RPC surface can
// construct a typed transaction from its wire name.
var registry = map[Type]func() Transaction{}

// Register adds a transaction factory. Called from init functions.
func Register(t Type, factory func() Transaction) {
	if _, dup := registry[t]; dup {
		panic(fmt.Sprintf("tx: duplicate registration for %q", t))
	}
	registry[t] = factory
}

// New constructs an empty transaction of the given type.
func New(t Type) (Transaction, error) {
	factory, ok := registry[t]
	if !ok {
		return nil, fmt.Errorf("unknown transaction type %q", t)
	}
	return factory(), nil
}

// RegisteredTypes returns the sorted list of known transaction types.
func RegisteredTypes() []Type {
	types := make([]Type, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
