package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCalculateFee(t *testing.T) {
	cases := []struct {
		amount uint64
		rate   uint32
		want   uint64
	}{
		{500_000, 250, 12_500},
		{1_000_000, 250, 25_000},
		{39, 250, 0},
		{40, 250, 1},
		{1, 1000, 0},
		{10, 1000, 1},
		{123_456, 0, 0},
		{math.MaxUint64, 1000, math.MaxUint64 / 10},
		{math.MaxUint64, 250, 461_168_601_842_738_790},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, CalculateFee(tc.amount, tc.rate), "amount=%d rate=%d", tc.amount, tc.rate)
	}
}

func TestCalculateFeeNeverExceedsAmount(t *testing.T) {
	for _, amount := range []uint64{0, 1, 7, 9_999, 10_000, math.MaxUint64} {
		fee := CalculateFee(amount, MaxFeeRate)
		require.LessOrEqual(t, fee, amount)
		require.Equal(t, amount, (amount-fee)+fee)
	}
}
