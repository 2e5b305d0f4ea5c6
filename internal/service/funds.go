package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/nurpe/gigpay/internal/model"
	"github.com/nurpe/gigpay/internal/repository"
)

// ExternalSource names the counterparty of top-ups in the ledger.
const ExternalSource = "external"

// DepositFunds credits an account with funds arriving from outside the
// ledger. Only the platform owner may mint balances.
func (e *Engine) DepositFunds(ctx context.Context, caller model.Principal, account string, amount uint64) error {
	return e.run(ctx, "deposit-funds", caller, 0, func(tx *repository.Store) error {
		if !e.isOwner(caller) {
			return ErrNotOwner
		}
		if err := validIdentity("account", account); err != nil {
			return err
		}
		if account == e.vault || account == ExternalSource {
			return fmt.Errorf("%w: %s cannot receive deposits", ErrInvalidInput, account)
		}
		if err := validAmount(amount); err != nil {
			return err
		}
		err := tx.Accounts.Credit(ctx, model.LedgerEntry{
			Kind:      model.LedgerEntryTopUp,
			From:      ExternalSource,
			To:        account,
			Amount:    amount,
			CreatedAt: e.now(),
		})
		if errors.Is(err, repository.ErrBalanceOverflow) {
			return fmt.Errorf("%w: %w", ErrAmountTooLarge, err)
		}
		return err
	})
}

// Balance returns the funds held by an identity.
func (e *Engine) Balance(ctx context.Context, account string) (uint64, error) {
	if err := validIdentity("account", account); err != nil {
		return 0, err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.Accounts.Balance(ctx, account)
}

// AccountBalance is Balance for an authenticated caller: only the account
// holder and the platform owner may read it.
func (e *Engine) AccountBalance(ctx context.Context, caller model.Principal, account string) (uint64, error) {
	if caller.IsZero() {
		return 0, ErrMissingCaller
	}
	if caller.ID != account && !e.isOwner(caller) {
		return 0, ErrNotHolder
	}
	return e.Balance(ctx, account)
}
