package tx

// Result represents a transaction result code. Any code other than
// ResultSuccess discards every state change of the enclosing transaction;
// atomic rollback is the only recovery mechanism in this core.
type Result int

const (
	ResultSuccess Result = 0

	// Record lifecycle failures (100-199)
	ResultAlreadyExists Result = 100
	ResultNotFound      Result = 101
	ResultUnauthorized  Result = 102

	// Pool engine failures (200-299)
	ResultPoolInactive      Result = 200
	ResultZeroAmount        Result = 201
	ResultSlippageExceeded  Result = 202
	ResultInsufficientLp    Result = 203
	ResultInsufficientFunds Result = 204

	// Hook validator failures (300-399)
	ResultKycRequired              Result = 300
	ResultTransactionLimitExceeded Result = 301
	ResultDailyLimitExceeded       Result = 302

	// Shared failures (400-499)
	ResultArithmeticOverflow Result = 400
	ResultInvalidParameters  Result = 401

	// Internal invariant violations (-1)
	ResultInternal Result = -1
)

var resultNames = map[Result]string{
	ResultSuccess:                  "success",
	ResultAlreadyExists:            "alreadyExists",
	ResultNotFound:                 "notFound",
	ResultUnauthorized:             "unauthorized",
	ResultPoolInactive:             "poolInactive",
	ResultZeroAmount:               "zeroAmount",
	ResultSlippageExceeded:         "slippageExceeded",
	ResultInsufficientLp:           "insufficientLp",
	ResultInsufficientFunds:        "insufficientFunds",
	ResultKycRequired:              "kycRequired",
	ResultTransactionLimitExceeded: "transactionLimitExceeded",
	ResultDailyLimitExceeded:       "dailyLimitExceeded",
	ResultArithmeticOverflow:       "arithmeticOverflow",
	ResultInvalidParameters:        "invalidParameters",
	ResultInternal:                 "internal",
}

var resultMessages = map[Result]string{
	ResultSuccess:                  "The transaction was applied.",
	ResultAlreadyExists:            "The derived record already exists.",
	ResultNotFound:                 "The referenced record does not exist.",
	ResultUnauthorized:             "The caller is not the configured authority.",
	ResultPoolInactive:             "The pool is not accepting operations.",
	ResultZeroAmount:               "Amounts must be greater than zero.",
	ResultSlippageExceeded:         "The computed output is below the caller's minimum.",
	ResultInsufficientLp:           "The caller holds fewer liquidity shares than requested.",
	ResultInsufficientFunds:        "The caller's balance cannot cover the transfer.",
	ResultKycRequired:              "The user has no approved KYC record.",
	ResultTransactionLimitExceeded: "The transfer exceeds the per-transaction limit.",
	ResultDailyLimitExceeded:       "The transfer exceeds the remaining daily allowance.",
	ResultArithmeticOverflow:       "Checked arithmetic overflowed.",
	ResultInvalidParameters:        "One or more parameters are invalid.",
	ResultInternal:                 "An internal invariant was violated.",
}

// String returns the canonical name of the result code.
func (r Result) String() string {
	if name, ok := resultNames[r]; ok {
		return name
	}
	return "unknown"
}

// Message returns a human-readable description of the result code.
func (r Result) Message() string {
	if msg, ok := resultMessages[r]; ok {
		return msg
	}
	return "Unknown result code."
}

// IsSuccess reports whether the transaction was applied.
func (r Result) IsSuccess() bool {
	return r == ResultSuccess
}
