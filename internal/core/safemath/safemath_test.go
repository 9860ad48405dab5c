package safemath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAdd(t *testing.T) {
	sum, ok := Add(1, 2)
	require.True(t, ok)
	require.Equal(t, uint64(3), sum)

	_, ok = Add(math.MaxUint64, 1)
	require.False(t, ok)
}

func TestSub(t *testing.T) {
	diff, ok := Sub(5, 3)
	require.True(t, ok)
	require.Equal(t, uint64(2), diff)

	_, ok = Sub(3, 5)
	require.False(t, ok)
}

func TestMul(t *testing.T) {
	p, ok := Mul(1<<32, 1<<31)
	require.True(t, ok)
	require.Equal(t, uint64(1)<<63, p)

	_, ok = Mul(1<<32, 1<<32)
	require.False(t, ok)
}

func TestMulDiv(t *testing.T) {
	tt := []struct {
		name    string
		a, b, d uint64
		want    uint64
		ok      bool
	}{
		{"exact", 10, 6, 3, 20, true},
		{"floors", 7, 3, 2, 10, true},
		{"zero divisor", 1, 1, 0, 0, false},
		{"wide intermediate", math.MaxUint64, 1000, 2000, math.MaxUint64 / 2, true},
		{"quotient overflow", math.MaxUint64, 2, 1, 0, false},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := MulDiv(tc.a, tc.b, tc.d)
			require.Equal(t, tc.ok, ok)
			if tc.ok {
				require.Equal(t, tc.want, got)
			}
		})
	}
}

func TestMulDivCeil(t *testing.T) {
	got, ok := MulDivCeil(7, 3, 2)
	require.True(t, ok)
	require.Equal(t, uint64(11), got)

	got, ok = MulDivCeil(10, 6, 3)
	require.True(t, ok)
	require.Equal(t, uint64(20), got, "exact quotients do not round up")

	_, ok = MulDivCeil(1, 1, 0)
	require.False(t, ok)
}

func TestDayIndexBoundary(t *testing.T) {
	// One second either side of midnight lands in different buckets.
	midnight := int64(20000) * SecondsPerDay

	require.Equal(t, uint64(19999), DayIndex(midnight-1, SecondsPerDay))
	require.Equal(t, uint64(20000), DayIndex(midnight, SecondsPerDay))
	require.Equal(t, uint64(20000), DayIndex(midnight+1, SecondsPerDay))
	require.Equal(t, uint64(20001), DayIndex(midnight+SecondsPerDay, SecondsPerDay))
}
