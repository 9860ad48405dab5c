package tx

import (
	"strings"
	"time"

	"github.com/mitgajera/Token2022-Hook-AMM/internal/core/keylet"
	"github.com/mitgajera/Token2022-Hook-AMM/internal/core/safemath"
)

// Engine processes transactions against the account store. It performs no
// internal locking: the surrounding runtime serializes conflicting
// transactions, and the engine relies on whole-transaction atomicity.
type Engine struct {
	view   LedgerView
	config EngineConfig
}

// EngineConfig holds configuration for the transaction engine.
type EngineConfig struct {
	// Clock supplies the transaction timestamp. Defaults to time.Now().Unix.
	Clock func() int64

	// SecondsPerDay is the usage window width. Defaults to safemath.SecondsPerDay.
	SecondsPerDay int64
}

// ApplyContext carries the per-transaction state handed to Apply methods.
// All writes go through View (an ApplyStateTable); nothing reaches the base
// view unless the whole transaction succeeds.
type ApplyContext struct {
	View   LedgerView
	Caller Address
	Now    int64
	Config EngineConfig
}

// ApplyResult contains the result of applying a transaction.
type ApplyResult struct {
	// Result is the transaction result code.
	Result Result

	// Applied indicates if the transaction reached the store.
	Applied bool

	// Metadata lists the entries the transaction touched.
	Metadata *Metadata

	// Message is a human-readable result message.
	Message string
}

// Metadata tracks changes made by a transaction.
type Metadata struct {
	AffectedNodes []AffectedNode `json:"affectedNodes"`
}

// AffectedNode records one created, modified or deleted entry.
type AffectedNode struct {
	NodeType string `json:"nodeType"`
	Space    uint16 `json:"space"`
	Key      string `json:"key"`
}

// NewEngine creates a new transaction engine.
func NewEngine(view LedgerView, config EngineConfig) *Engine {
	if config.Clock == nil {
		config.Clock = func() int64 { return time.Now().Unix() }
	}
	if config.SecondsPerDay <= 0 {
		config.SecondsPerDay = safemath.SecondsPerDay
	}
	return &Engine{view: view, config: config}
}

// Apply processes a transaction: preflight (stateless validation), preclaim
// (caller account existence), then doApply against a buffered state table
// that is committed only on success.
func (e *Engine) Apply(txn Transaction) ApplyResult {
	if result := e.preflight(txn); !result.IsSuccess() {
		return ApplyResult{Result: result, Message: result.Message()}
	}

	if result := e.preclaim(txn); !result.IsSuccess() {
		return ApplyResult{Result: result, Message: result.Message()}
	}

	table := NewApplyStateTable(e.view)
	ctx := &ApplyContext{
		View:   table,
		Caller: txn.GetCommon().Account,
		Now:    e.config.Clock(),
		Config: e.config,
	}

	result := txn.Apply(ctx)
	if !result.IsSuccess() {
		// The table is discarded; the base view never saw the writes.
		return ApplyResult{Result: result, Message: result.Message()}
	}

	metadata, err := table.Apply()
	if err != nil {
		return ApplyResult{Result: ResultInternal, Message: err.Error()}
	}

	return ApplyResult{
		Result:   ResultSuccess,
		Applied:  true,
		Metadata: metadata,
		Message:  ResultSuccess.Message(),
	}
}

// preflight performs stateless validation on the transaction.
func (e *Engine) preflight(txn Transaction) Result {
	if txn.TxType() == "" {
		return ResultInvalidParameters
	}
	if err := txn.Validate(); err != nil {
		return parseValidationError(err)
	}
	return ResultSuccess
}

// preclaim validates the transaction against current store state. Admin and
// issuance operations never touch the caller's native balance, so they skip
// the account-existence probe; TokenMintTo in particular resolves its
// authority against the mint record, which lets a mint authority issue
// supply before holding any native currency.
func (e *Engine) preclaim(txn Transaction) Result {
	switch txn.TxType() {
	case TypeHookInitialize, TypeMintCreate, TypeTokenMintTo, TypeKycCreate,
		TypeKycRevoke, TypeLimitsSet, TypeAuthorityUpdate, TypePoolSetActive:
		return ResultSuccess
	}

	account := txn.GetCommon().Account
	exists, err := e.view.Exists(keylet.Account(account.Bytes()))
	if err != nil {
		return ResultInternal
	}
	if !exists {
		return ResultNotFound
	}
	return ResultSuccess
}

// parseValidationError extracts a result code from a validation error. A
// Validate implementation prefixes its message with the code name, e.g.
// "invalidParameters: account is required".
func parseValidationError(err error) Result {
	msg := err.Error()
	for code, name := range resultNames {
		if code == ResultSuccess {
			continue
		}
		if strings.HasPrefix(msg, name) {
			rest := msg[len(name):]
			if rest == "" || rest[0] == ':' || rest[0] == ' ' {
				return code
			}
		}
	}
	return ResultInvalidParameters
}
