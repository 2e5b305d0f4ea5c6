package service

import (
	"context"
	"fmt"
	"math/bits"

	"github.com/nurpe/gigpay/internal/model"
	"github.com/nurpe/gigpay/internal/repository"
)

const (
	DefaultFeeRate = model.DefaultFeeRate
	MaxFeeRate     = model.MaxFeeRate
	basisPoints    = 10_000
)

// CalculateFee returns floor(amount * rate / 10000) without intermediate
// overflow. rate must not exceed basisPoints.
func CalculateFee(amount uint64, rate uint32) uint64 {
	hi, lo := bits.Mul64(amount, uint64(rate))
	fee, _ := bits.Div64(hi, lo, basisPoints)
	return fee
}

// CalculatePlatformFee applies the current fee rate to amount.
func (e *Engine) CalculatePlatformFee(ctx context.Context, amount uint64) (uint64, error) {
	rate, err := e.PlatformFeeRate(ctx)
	if err != nil {
		return 0, err
	}
	return CalculateFee(amount, rate), nil
}

// PlatformFeeRate returns the current fee rate in basis points.
func (e *Engine) PlatformFeeRate(ctx context.Context) (uint32, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	settings, err := e.store.Settings.Get(ctx)
	if err != nil {
		return 0, err
	}
	return settings.FeeRate, nil
}

// SetPlatformFee replaces the fee rate. Only the platform owner may call it.
func (e *Engine) SetPlatformFee(ctx context.Context, caller model.Principal, rate uint32) error {
	return e.run(ctx, "set-platform-fee", caller, 0, func(tx *repository.Store) error {
		if !e.isOwner(caller) {
			return ErrNotOwner
		}
		if rate > MaxFeeRate {
			return fmt.Errorf("%w: %d basis points, maximum is %d", ErrFeeExceedsMaximum, rate, MaxFeeRate)
		}
		return tx.Settings.SetFeeRate(ctx, rate, e.now())
	})
}
