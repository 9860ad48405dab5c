// Package safemath provides checked unsigned arithmetic for value-transfer
// math. Every operation reports overflow instead of wrapping; callers turn a
// failed check into an ArithmeticOverflow result and abort the transaction.
package safemath

import (
	"math/big"
	"math/bits"
)

// SecondsPerDay is the width of the usage-accounting window.
const SecondsPerDay = 86400

// Add returns a+b, reporting overflow.
func Add(a, b uint64) (uint64, bool) {
	sum, carry := bits.Add64(a, b, 0)
	return sum, carry == 0
}

// Sub returns a-b, reporting underflow.
func Sub(a, b uint64) (uint64, bool) {
	diff, borrow := bits.Sub64(a, b, 0)
	return diff, borrow == 0
}

// Mul returns a*b, reporting overflow.
func Mul(a, b uint64) (uint64, bool) {
	hi, lo := bits.Mul64(a, b)
	return lo, hi == 0
}

// MulDiv returns floor(a*b/d) with a 128-bit intermediate product.
// Reports failure when d is zero or the quotient exceeds 64 bits.
func MulDiv(a, b, d uint64) (uint64, bool) {
	if d == 0 {
		return 0, false
	}
	hi, lo := bits.Mul64(a, b)
	if hi == 0 {
		return lo / d, true
	}
	// Quotient overflows 64 bits when the high word reaches the divisor.
	if hi >= d {
		return 0, false
	}
	q, _ := bits.Div64(hi, lo, d)
	return q, true
}

// MulDivCeil returns ceil(a*b/d) with a 128-bit intermediate product.
func MulDivCeil(a, b, d uint64) (uint64, bool) {
	if d == 0 {
		return 0, false
	}
	hi, lo := bits.Mul64(a, b)
	num := new(big.Int).SetUint64(hi)
	num.Lsh(num, 64)
	num.Add(num, new(big.Int).SetUint64(lo))

	div := new(big.Int).SetUint64(d)
	q, r := new(big.Int).QuoRem(num, div, new(big.Int))
	if r.Sign() != 0 {
		q.Add(q, big.NewInt(1))
	}
	if !q.IsUint64() {
		return 0, false
	}
	return q.Uint64(), true
}

// DayIndex buckets a unix timestamp into a day number. The day boundary is
// explicit here because an off-by-one directly double-spends daily allowance.
func DayIndex(unixSeconds int64, secondsPerDay int64) uint64 {
	if secondsPerDay <= 0 || unixSeconds < 0 {
		return 0
	}
	return uint64(unixSeconds / secondsPerDay)
}
