package tx

import (
	"github.com/mitgajera/Token2022-Hook-AMM/internal/core/keylet"
	"github.com/mitgajera/Token2022-Hook-AMM/internal/core/safemath"
	"github.com/mitgajera/Token2022-Hook-AMM/internal/core/state"
)

// loadSettings reads the singleton settings record. Authority checks are a
// pure function of this passed-in record, never of ambient state.
func loadSettings(view LedgerView) (*state.Settings, Result) {
	data, err := view.Read(keylet.Settings())
	if err != nil {
		return nil, ResultInternal
	}
	if data == nil {
		return nil, ResultNotFound
	}
	settings, perr := state.ParseSettings(data)
	if perr != nil {
		return nil, ResultInternal
	}
	return settings, ResultSuccess
}

// requireAuthority loads settings and checks the caller against it.
func requireAuthority(view LedgerView, caller Address) (*state.Settings, Result) {
	settings, result := loadSettings(view)
	if !result.IsSuccess() {
		return nil, result
	}
	if settings.Authority != caller.Bytes() {
		return nil, ResultUnauthorized
	}
	return settings, ResultSuccess
}

// Apply creates the singleton settings record.
func (h *HookInitialize) Apply(ctx *ApplyContext) Result {
	k := keylet.Settings()
	exists, err := ctx.View.Exists(k)
	if err != nil {
		return ResultInternal
	}
	if exists {
		return ResultAlreadyExists
	}

	settings := &state.Settings{
		Authority: ctx.Caller.Bytes(),
		IsActive:  true,
		CreatedAt: ctx.Now,
		UpdatedAt: ctx.Now,
		Bump:      k.Bump,
	}
	data, serr := state.SerializeSettings(settings)
	if serr != nil {
		return ResultInternal
	}
	if err := ctx.View.Insert(k, data); err != nil {
		return ResultInternal
	}
	return ResultSuccess
}

// Apply approves a user, or re-approves one whose record was revoked.
func (k *KycCreate) Apply(ctx *ApplyContext) Result {
	if _, result := requireAuthority(ctx.View, ctx.Caller); !result.IsSuccess() {
		return result
	}

	key := keylet.Kyc(k.User.Bytes())
	data, err := ctx.View.Read(key)
	if err != nil {
		return ResultInternal
	}

	if data != nil {
		record, perr := state.ParseKycRecord(data)
		if perr != nil {
			return ResultInternal
		}
		if record.Status == state.KycApproved {
			return ResultAlreadyExists
		}
		// Re-approval after revocation: fresh approval, history reset.
		record.Status = state.KycApproved
		record.CreatedAt = ctx.Now
		record.RevokedAt = 0
		raw, serr := state.SerializeKycRecord(record)
		if serr != nil {
			return ResultInternal
		}
		if uerr := ctx.View.Update(key, raw); uerr != nil {
			return ResultInternal
		}
		return ResultSuccess
	}

	record := &state.KycRecord{
		User:      k.User.Bytes(),
		Status:    state.KycApproved,
		CreatedAt: ctx.Now,
		Bump:      key.Bump,
	}
	raw, serr := state.SerializeKycRecord(record)
	if serr != nil {
		return ResultInternal
	}
	if err := ctx.View.Insert(key, raw); err != nil {
		return ResultInternal
	}
	return ResultSuccess
}

// Apply revokes an approved user.
func (k *KycRevoke) Apply(ctx *ApplyContext) Result {
	if _, result := requireAuthority(ctx.View, ctx.Caller); !result.IsSuccess() {
		return result
	}

	key := keylet.Kyc(k.User.Bytes())
	data, err := ctx.View.Read(key)
	if err != nil {
		return ResultInternal
	}
	if data == nil {
		return ResultNotFound
	}

	record, perr := state.ParseKycRecord(data)
	if perr != nil {
		return ResultInternal
	}
	if record.Status != state.KycApproved {
		return ResultInvalidParameters
	}

	record.Status = state.KycRevoked
	record.RevokedAt = ctx.Now
	raw, serr := state.SerializeKycRecord(record)
	if serr != nil {
		return ResultInternal
	}
	if err := ctx.View.Update(key, raw); err != nil {
		return ResultInternal
	}
	return ResultSuccess
}

// Apply creates or updates the transfer limits for a mint.
func (l *LimitsSet) Apply(ctx *ApplyContext) Result {
	if _, result := requireAuthority(ctx.View, ctx.Caller); !result.IsSuccess() {
		return result
	}

	key := keylet.Limits(l.Mint.Bytes())
	limits := &state.MintLimits{
		Mint:             l.Mint.Bytes(),
		DailyLimit:       l.DailyLimit,
		TransactionLimit: l.TransactionLimit,
		IsActive:         l.Active,
		UpdatedAt:        ctx.Now,
		Bump:             key.Bump,
	}
	raw, serr := state.SerializeMintLimits(limits)
	if serr != nil {
		return ResultInternal
	}

	exists, err := ctx.View.Exists(key)
	if err != nil {
		return ResultInternal
	}
	if exists {
		if err := ctx.View.Update(key, raw); err != nil {
			return ResultInternal
		}
	} else {
		if err := ctx.View.Insert(key, raw); err != nil {
			return ResultInternal
		}
	}
	return ResultSuccess
}

// Apply transfers administrative control.
func (a *AuthorityUpdate) Apply(ctx *ApplyContext) Result {
	settings, result := requireAuthority(ctx.View, ctx.Caller)
	if !result.IsSuccess() {
		return result
	}

	settings.Authority = a.NewAuthority.Bytes()
	settings.UpdatedAt = ctx.Now
	raw, serr := state.SerializeSettings(settings)
	if serr != nil {
		return ResultInternal
	}
	if err := ctx.View.Update(keylet.Settings(), raw); err != nil {
		return ResultInternal
	}
	return ResultSuccess
}

// validateTransfer is the hook entry point, invoked synchronously inside
// every movement of a hook-gated mint. It must not mutate state on any
// failure path; the enclosing transaction's state table guarantees that, but
// the function is also written to stage its usage write last.
func validateTransfer(ctx *ApplyContext, user, mintKey [32]byte, amount uint64) Result {
	if amount == 0 {
		return ResultZeroAmount
	}

	// Step 1: the user needs an approved KYC record.
	kycData, err := ctx.View.Read(keylet.Kyc(user))
	if err != nil {
		return ResultInternal
	}
	if kycData == nil {
		return ResultKycRequired
	}
	kyc, perr := state.ParseKycRecord(kycData)
	if perr != nil {
		return ResultInternal
	}
	if kyc.Status != state.KycApproved {
		return ResultKycRequired
	}

	// Step 2: unconfigured or inactive limits mean default-allow.
	limitsData, err := ctx.View.Read(keylet.Limits(mintKey))
	if err != nil {
		return ResultInternal
	}
	var limits *state.MintLimits
	if limitsData != nil {
		limits, perr = state.ParseMintLimits(limitsData)
		if perr != nil {
			return ResultInternal
		}
		if !limits.IsActive {
			limits = nil
		}
	}

	// Step 3: per-transaction cap.
	if limits != nil && limits.TransactionLimit != 0 && amount > limits.TransactionLimit {
		return ResultTransactionLimitExceeded
	}

	// Step 4: day-bucketed daily cap. The first transfer of a new day
	// resets the counter to the transfer amount, not to zero. Usage is
	// tracked even without active limits so a later LimitsSet sees an
	// accurate trail.
	currentDay := safemath.DayIndex(ctx.Now, ctx.Config.SecondsPerDay)

	usageKey := keylet.Usage(user, mintKey)
	usageData, err := ctx.View.Read(usageKey)
	if err != nil {
		return ResultInternal
	}

	usage := &state.UserUsage{User: user, Mint: mintKey, Bump: usageKey.Bump}
	if usageData != nil {
		usage, perr = state.ParseUserUsage(usageData)
		if perr != nil {
			return ResultInternal
		}
	}

	newDailyUsed := amount
	if usageData != nil && currentDay == usage.LastResetDay {
		var ok bool
		newDailyUsed, ok = safemath.Add(usage.DailyUsed, amount)
		if !ok {
			return ResultArithmeticOverflow
		}
	}
	if limits != nil && limits.DailyLimit != 0 && newDailyUsed > limits.DailyLimit {
		return ResultDailyLimitExceeded
	}

	usage.DailyUsed = newDailyUsed
	usage.LastResetDay = currentDay
	usage.LastTransaction = ctx.Now

	raw, serr := state.SerializeUserUsage(usage)
	if serr != nil {
		return ResultInternal
	}
	if usageData == nil {
		if err := ctx.View.Insert(usageKey, raw); err != nil {
			return ResultInternal
		}
	} else {
		if err := ctx.View.Update(usageKey, raw); err != nil {
			return ResultInternal
		}
	}
	return ResultSuccess
}
