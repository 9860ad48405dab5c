package rpc

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mitgajera/Token2022-Hook-AMM/internal/core/keylet"
	"github.com/mitgajera/Token2022-Hook-AMM/internal/core/safemath"
	"github.com/mitgajera/Token2022-Hook-AMM/internal/core/state"
	"github.com/mitgajera/Token2022-Hook-AMM/internal/core/tx"
	common "github.com/mitgajera/Token2022-Hook-AMM/internal/crypto/common"
	"github.com/mitgajera/Token2022-Hook-AMM/internal/storage/historydb"
	"github.com/mitgajera/Token2022-Hook-AMM/internal/storage/ledgerstore"
)

// Service implements the RPC methods over the transaction engine and the
// stores. Submissions are serialized; reads run concurrently.
type Service struct {
	engine  *tx.Engine
	store   *ledgerstore.Store
	history *historydb.DB
	pub     *Publisher
	logger  *zap.Logger
	clock   func() int64
	started time.Time

	// submitMu serializes Apply calls; the engine itself does no locking.
	submitMu sync.Mutex
}

// NewService wires the serving surface. history and pub may be nil when the
// corresponding features are disabled.
func NewService(engine *tx.Engine, store *ledgerstore.Store, history *historydb.DB, pub *Publisher, logger *zap.Logger) *Service {
	return &Service{
		engine:  engine,
		store:   store,
		history: history,
		pub:     pub,
		logger:  logger,
		clock:   func() int64 { return time.Now().Unix() },
		started: time.Now(),
	}
}

// RegisterMethods installs every service method on the registry.
func (s *Service) RegisterMethods(registry *MethodRegistry) {
	registry.Register("submit", s.Submit)
	registry.Register("pool_info", s.PoolInfo)
	registry.Register("pool_quote", s.PoolQuote)
	registry.Register("kyc_status", s.KycStatus)
	registry.Register("limits_info", s.LimitsInfo)
	registry.Register("usage_info", s.UsageInfo)
	registry.Register("account_info", s.AccountInfo)
	registry.Register("account_tx", s.AccountTx)
	registry.Register("server_info", s.ServerInfo)
	registry.Register("ping", s.Ping)
}

type submitParams struct {
	TxType string          `json:"tx_type"`
	Tx     json.RawMessage `json:"tx"`
}

// Submit parses, applies and records one transaction.
func (s *Service) Submit(ctx context.Context, params json.RawMessage) (any, *RpcError) {
	var p submitParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, errInvalidParams("Invalid submit params: " + err.Error())
	}
	if p.TxType == "" || len(p.Tx) == 0 {
		return nil, errInvalidParams("tx_type and tx are required")
	}

	txn, err := tx.New(tx.Type(p.TxType))
	if err != nil {
		return nil, errInvalidParams(err.Error())
	}
	if err := json.Unmarshal(p.Tx, txn); err != nil {
		return nil, errInvalidParams("Invalid transaction fields: " + err.Error())
	}

	hash := common.Sha512Half([]byte(p.TxType), p.Tx)

	s.submitMu.Lock()
	res := s.engine.Apply(txn)
	s.submitMu.Unlock()

	s.logger.Info("transaction processed",
		zap.String("type", p.TxType),
		zap.String("result", res.Result.String()),
		zap.Bool("applied", res.Applied))

	if s.history != nil {
		info := &historydb.TransactionInfo{
			Hash:      hash,
			Account:   txn.GetCommon().Account.Bytes(),
			TxType:    p.TxType,
			Result:    res.Result.String(),
			Applied:   res.Applied,
			RawTxn:    append([]byte(nil), p.Tx...),
			AppliedAt: s.clock(),
		}
		if res.Metadata != nil {
			if meta, merr := json.Marshal(res.Metadata); merr == nil {
				info.TxnMeta = meta
			}
		}
		if _, herr := s.history.Record(ctx, info); herr != nil {
			s.logger.Error("failed to record transaction", zap.Error(herr))
		}
	}

	if s.pub != nil && res.Applied {
		s.pub.PublishTransaction(&TransactionEvent{
			Hash:     hex.EncodeToString(hash[:]),
			TxType:   p.TxType,
			Account:  txn.GetCommon().Account.String(),
			Result:   res.Result.String(),
			Tx:       p.Tx,
			Metadata: res.Metadata,
		})
	}

	return map[string]any{
		"engine_result":         res.Result.String(),
		"engine_result_code":    int(res.Result),
		"engine_result_message": res.Message,
		"applied":               res.Applied,
		"tx_hash":               hex.EncodeToString(hash[:]),
		"metadata":              res.Metadata,
	}, nil
}

type poolParams struct {
	TokenMint tx.Address `json:"token_mint"`
}

func (s *Service) readPool(tokenMint tx.Address) (*state.Pool, uint64, uint64, uint64, *RpcError) {
	data, err := s.store.Read(keylet.Pool(tokenMint.Bytes()))
	if err != nil {
		return nil, 0, 0, 0, errInternal(err.Error())
	}
	if data == nil {
		return nil, 0, 0, 0, errNotFound("no pool for token mint")
	}
	pool, perr := state.ParsePool(data)
	if perr != nil {
		return nil, 0, 0, 0, errInternal(perr.Error())
	}

	vaultData, err := s.store.Read(keylet.Keylet{Space: keylet.SpaceTokenVault, Key: pool.TokenVault})
	if err != nil || vaultData == nil {
		return nil, 0, 0, 0, errInternal("token vault unreadable")
	}
	vault, perr := state.ParseTokenAccount(vaultData)
	if perr != nil {
		return nil, 0, 0, 0, errInternal(perr.Error())
	}

	currencyData, err := s.store.Read(keylet.Keylet{Space: keylet.SpaceCurrencyVault, Key: pool.CurrencyVault})
	if err != nil || currencyData == nil {
		return nil, 0, 0, 0, errInternal("currency vault unreadable")
	}
	currency, perr := state.ParseAccount(currencyData)
	if perr != nil {
		return nil, 0, 0, 0, errInternal(perr.Error())
	}

	lpData, err := s.store.Read(keylet.Keylet{Space: keylet.SpaceLPMint, Key: pool.LPMint})
	if err != nil || lpData == nil {
		return nil, 0, 0, 0, errInternal("lp mint unreadable")
	}
	lpMint, perr := state.ParseMint(lpData)
	if perr != nil {
		return nil, 0, 0, 0, errInternal(perr.Error())
	}

	return pool, vault.Balance, currency.Balance, lpMint.Supply, nil
}

// PoolInfo reports the pool record and its live reserves.
func (s *Service) PoolInfo(ctx context.Context, params json.RawMessage) (any, *RpcError) {
	var p poolParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, errInvalidParams("Invalid pool_info params: " + err.Error())
	}

	pool, tokenReserve, currencyReserve, lpSupply, rpcErr := s.readPool(p.TokenMint)
	if rpcErr != nil {
		return nil, rpcErr
	}

	return map[string]any{
		"token_mint":       hex.EncodeToString(pool.TokenMint[:]),
		"token_vault":      hex.EncodeToString(pool.TokenVault[:]),
		"currency_vault":   hex.EncodeToString(pool.CurrencyVault[:]),
		"lp_mint":          hex.EncodeToString(pool.LPMint[:]),
		"fee_numerator":    pool.FeeNumerator,
		"fee_denominator":  pool.FeeDenominator,
		"is_active":        pool.IsActive,
		"token_reserve":    tokenReserve,
		"currency_reserve": currencyReserve,
		"lp_supply":        lpSupply,
	}, nil
}

type poolQuoteParams struct {
	TokenMint tx.Address       `json:"token_mint"`
	AmountIn  uint64           `json:"amount_in"`
	Direction tx.SwapDirection `json:"direction"`
}

// PoolQuote prices a swap without applying it.
func (s *Service) PoolQuote(ctx context.Context, params json.RawMessage) (any, *RpcError) {
	var p poolQuoteParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, errInvalidParams("Invalid pool_quote params: " + err.Error())
	}
	if p.AmountIn == 0 {
		return nil, errInvalidParams("amount_in must be positive")
	}
	if p.Direction != tx.SwapTokenToCurrency && p.Direction != tx.SwapCurrencyToToken {
		return nil, errInvalidParams("unknown direction")
	}

	pool, tokenReserve, currencyReserve, _, rpcErr := s.readPool(p.TokenMint)
	if rpcErr != nil {
		return nil, rpcErr
	}

	inputReserve, outputReserve := tokenReserve, currencyReserve
	if p.Direction == tx.SwapCurrencyToToken {
		inputReserve, outputReserve = currencyReserve, tokenReserve
	}

	amountOut, result := tx.QuoteSwap(p.AmountIn, inputReserve, outputReserve, pool.FeeNumerator, pool.FeeDenominator)
	if !result.IsSuccess() {
		return nil, errInvalidParams(result.Message())
	}

	// Effective price and impact versus the spot price, as decimals.
	in := decimal.NewFromUint64(p.AmountIn)
	out := decimal.NewFromUint64(amountOut)
	spot := decimal.NewFromUint64(outputReserve).DivRound(decimal.NewFromUint64(inputReserve), 18)

	price := decimal.Zero
	impact := decimal.Zero
	if !out.IsZero() && !spot.IsZero() {
		price = out.DivRound(in, 18)
		impact = decimal.NewFromInt(1).Sub(price.DivRound(spot, 18)).Round(8)
	}

	return map[string]any{
		"amount_in":    p.AmountIn,
		"amount_out":   amountOut,
		"direction":    p.Direction,
		"price":        price.String(),
		"spot_price":   spot.Round(8).String(),
		"price_impact": impact.String(),
		"is_active":    pool.IsActive,
	}, nil
}

type userParams struct {
	User tx.Address `json:"user"`
}

// KycStatus reports a user's approval state.
func (s *Service) KycStatus(ctx context.Context, params json.RawMessage) (any, *RpcError) {
	var p userParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, errInvalidParams("Invalid kyc_status params: " + err.Error())
	}

	data, err := s.store.Read(keylet.Kyc(p.User.Bytes()))
	if err != nil {
		return nil, errInternal(err.Error())
	}
	if data == nil {
		return map[string]any{
			"user":     p.User.String(),
			"approved": false,
			"exists":   false,
		}, nil
	}

	record, perr := state.ParseKycRecord(data)
	if perr != nil {
		return nil, errInternal(perr.Error())
	}
	return map[string]any{
		"user":       p.User.String(),
		"exists":     true,
		"approved":   record.Status == state.KycApproved,
		"created_at": record.CreatedAt,
		"revoked_at": record.RevokedAt,
	}, nil
}

type mintParams struct {
	Mint tx.Address `json:"mint"`
}

// LimitsInfo reports a mint's configured transfer limits.
func (s *Service) LimitsInfo(ctx context.Context, params json.RawMessage) (any, *RpcError) {
	var p mintParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, errInvalidParams("Invalid limits_info params: " + err.Error())
	}

	data, err := s.store.Read(keylet.Limits(p.Mint.Bytes()))
	if err != nil {
		return nil, errInternal(err.Error())
	}
	if data == nil {
		return map[string]any{
			"mint":       p.Mint.String(),
			"configured": false,
		}, nil
	}

	limits, perr := state.ParseMintLimits(data)
	if perr != nil {
		return nil, errInternal(perr.Error())
	}
	return map[string]any{
		"mint":              p.Mint.String(),
		"configured":        true,
		"daily_limit":       limits.DailyLimit,
		"transaction_limit": limits.TransactionLimit,
		"is_active":         limits.IsActive,
		"updated_at":        limits.UpdatedAt,
	}, nil
}

type usageParams struct {
	User tx.Address `json:"user"`
	Mint tx.Address `json:"mint"`
}

// UsageInfo reports a user's day-bucketed usage counters for a mint. The
// reported daily_used reads as zero when the stored bucket belongs to a
// previous day.
func (s *Service) UsageInfo(ctx context.Context, params json.RawMessage) (any, *RpcError) {
	var p usageParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, errInvalidParams("Invalid usage_info params: " + err.Error())
	}

	data, err := s.store.Read(keylet.Usage(p.User.Bytes(), p.Mint.Bytes()))
	if err != nil {
		return nil, errInternal(err.Error())
	}
	if data == nil {
		return map[string]any{
			"user":       p.User.String(),
			"mint":       p.Mint.String(),
			"daily_used": uint64(0),
			"exists":     false,
		}, nil
	}

	usage, perr := state.ParseUserUsage(data)
	if perr != nil {
		return nil, errInternal(perr.Error())
	}

	dailyUsed := usage.DailyUsed
	currentDay := safemath.DayIndex(s.clock(), safemath.SecondsPerDay)
	if usage.LastResetDay != currentDay {
		dailyUsed = 0
	}

	return map[string]any{
		"user":             p.User.String(),
		"mint":             p.Mint.String(),
		"exists":           true,
		"daily_used":       dailyUsed,
		"last_reset_day":   usage.LastResetDay,
		"last_transaction": usage.LastTransaction,
	}, nil
}

type accountInfoParams struct {
	Account tx.Address  `json:"account"`
	Mint    *tx.Address `json:"mint,omitempty"`
}

// AccountInfo reports an account's native balance, and its holding of one
// mint when requested.
func (s *Service) AccountInfo(ctx context.Context, params json.RawMessage) (any, *RpcError) {
	var p accountInfoParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, errInvalidParams("Invalid account_info params: " + err.Error())
	}

	data, err := s.store.Read(keylet.Account(p.Account.Bytes()))
	if err != nil {
		return nil, errInternal(err.Error())
	}
	if data == nil {
		return nil, errNotFound("account not found")
	}
	account, perr := state.ParseAccount(data)
	if perr != nil {
		return nil, errInternal(perr.Error())
	}

	out := map[string]any{
		"account": p.Account.String(),
		"balance": account.Balance,
	}

	if p.Mint != nil {
		var tokenBalance uint64
		tokenData, err := s.store.Read(keylet.Token(p.Account.Bytes(), p.Mint.Bytes()))
		if err != nil {
			return nil, errInternal(err.Error())
		}
		if tokenData != nil {
			holding, perr := state.ParseTokenAccount(tokenData)
			if perr != nil {
				return nil, errInternal(perr.Error())
			}
			tokenBalance = holding.Balance
		}
		out["mint"] = p.Mint.String()
		out["token_balance"] = tokenBalance
	}

	return out, nil
}

type accountTxParams struct {
	Account tx.Address `json:"account"`
	Limit   int        `json:"limit,omitempty"`
	Marker  int64      `json:"marker,omitempty"`
}

// AccountTx pages through an account's recorded transactions, newest first.
func (s *Service) AccountTx(ctx context.Context, params json.RawMessage) (any, *RpcError) {
	if s.history == nil {
		return nil, errNotSupported("transaction history is disabled")
	}

	var p accountTxParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, errInvalidParams("Invalid account_tx params: " + err.Error())
	}

	entries, marker, err := s.history.AccountTx(ctx, p.Account.Bytes(), p.Limit, p.Marker)
	if err != nil {
		return nil, errInternal(err.Error())
	}

	txs := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		item := map[string]any{
			"hash":       hex.EncodeToString(entry.Hash[:]),
			"tx_type":    entry.TxType,
			"result":     entry.Result,
			"applied":    entry.Applied,
			"tx":         json.RawMessage(entry.RawTxn),
			"applied_at": entry.AppliedAt,
		}
		if len(entry.TxnMeta) > 0 {
			item["metadata"] = json.RawMessage(entry.TxnMeta)
		}
		txs = append(txs, item)
	}

	out := map[string]any{
		"account":      p.Account.String(),
		"transactions": txs,
	}
	if marker > 0 {
		out["marker"] = marker
	}
	return out, nil
}

// ServerInfo reports process and store statistics.
func (s *Service) ServerInfo(ctx context.Context, params json.RawMessage) (any, *RpcError) {
	info := map[string]any{
		"uptime_seconds": int64(time.Since(s.started).Seconds()),
		"cache_entries":  s.store.CacheLen(),
		"tx_types":       tx.RegisteredTypes(),
	}
	if s.history != nil {
		if count, err := s.history.Count(ctx); err == nil {
			info["history_count"] = count
		}
	}
	if s.pub != nil {
		info["ws_subscribers"] = s.pub.SubscriberCount()
	}
	return info, nil
}

// Ping answers with an empty success.
func (s *Service) Ping(ctx context.Context, params json.RawMessage) (any, *RpcError) {
	return map[string]any{}, nil
}
