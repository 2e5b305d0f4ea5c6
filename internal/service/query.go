package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/nurpe/gigpay/internal/model"
)

// GetContract returns a snapshot of the contract or ErrContractNotFound.
func (e *Engine) GetContract(ctx context.Context, contractID uint64) (*model.Contract, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.getContract(ctx, contractID)
}

func (e *Engine) getContract(ctx context.Context, contractID uint64) (*model.Contract, error) {
	contract, err := e.store.Contracts.Get(ctx, contractID)
	if err != nil {
		return nil, notFound(err, ErrContractNotFound, contractID)
	}
	return contract, nil
}

// GetContractFunds returns the amount still held in escrow for a contract.
func (e *Engine) GetContractFunds(ctx context.Context, contractID uint64) (*model.ContractFunds, error) {
	contract, err := e.GetContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	return &model.ContractFunds{ContractID: contract.ID, EscrowedAmount: contract.EscrowedAmount}, nil
}

// ListContracts returns the contracts where identity is client or freelancer.
func (e *Engine) ListContracts(ctx context.Context, identity string) ([]model.Contract, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.Contracts.ListForParty(ctx, identity)
}

func (e *Engine) GetMilestone(ctx context.Context, contractID, milestoneID uint64) (*model.Milestone, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	milestone, err := e.store.Milestones.Get(ctx, contractID, milestoneID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %d on contract %d", ErrMilestoneNotFound, milestoneID, contractID)
		}
		return nil, err
	}
	return milestone, nil
}

// ListMilestones returns a contract's milestones ordered by milestone id.
func (e *Engine) ListMilestones(ctx context.Context, contractID uint64) ([]model.Milestone, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if _, err := e.getContract(ctx, contractID); err != nil {
		return nil, err
	}
	return e.store.Milestones.List(ctx, contractID)
}

func (e *Engine) GetDispute(ctx context.Context, contractID uint64) (*model.Dispute, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	dispute, err := e.store.Disputes.GetByContract(ctx, contractID)
	if err != nil {
		return nil, notFound(err, ErrDisputeNotFound, contractID)
	}
	return dispute, nil
}

func (e *Engine) GetRating(ctx context.Context, contractID uint64) (*model.Rating, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	rating, err := e.store.Ratings.Get(ctx, contractID)
	if err != nil {
		return nil, notFound(err, ErrRatingNotFound, contractID)
	}
	return rating, nil
}

// ListLedger returns every funds movement of a contract in commit order.
func (e *Engine) ListLedger(ctx context.Context, contractID uint64) ([]model.LedgerEntry, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if _, err := e.getContract(ctx, contractID); err != nil {
		return nil, err
	}
	return e.store.Accounts.Ledger(ctx, contractID)
}

// Statement gathers a consistent view of a contract for exports. Only the
// parties and the owner may read it.
func (e *Engine) Statement(ctx context.Context, caller model.Principal, contractID uint64) (*model.ContractStatement, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	contract, err := e.getContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if !isParty(caller, contract) && !e.isOwner(caller) {
		return nil, ErrNotParty
	}

	milestones, err := e.store.Milestones.List(ctx, contractID)
	if err != nil {
		return nil, err
	}
	ledger, err := e.store.Accounts.Ledger(ctx, contractID)
	if err != nil {
		return nil, err
	}
	settings, err := e.store.Settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	statement := &model.ContractStatement{
		Contract:    *contract,
		Milestones:  milestones,
		Ledger:      ledger,
		FeeRate:     settings.FeeRate,
		GeneratedAt: e.now(),
	}
	if dispute, err := e.store.Disputes.GetByContract(ctx, contractID); err == nil {
		statement.Dispute = dispute
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if rating, err := e.store.Ratings.Get(ctx, contractID); err == nil {
		statement.Rating = rating
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return statement, nil
}

func notFound(err, kind error, id uint64) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %d", kind, id)
	}
	return err
}
