package service

import (
	"context"
	"fmt"

	"github.com/nurpe/gigpay/internal/model"
	"github.com/nurpe/gigpay/internal/repository"
)

type CreateContractInput struct {
	Freelancer  string
	Title       string
	Description string
	TotalAmount uint64
	Deadline    uint64
}

// CreateContract opens a contract with the caller as client and moves the
// full amount from the caller into escrow.
func (e *Engine) CreateContract(ctx context.Context, caller model.Principal, input CreateContractInput) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var id uint64
	err := e.createContract(ctx, caller, input, &id)
	e.observe("create-contract", caller, id, nil, err)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (e *Engine) createContract(ctx context.Context, caller model.Principal, input CreateContractInput, id *uint64) error {
	if caller.IsZero() {
		return ErrMissingCaller
	}
	if err := validAmount(input.TotalAmount); err != nil {
		return err
	}
	if err := validIdentity("freelancer", input.Freelancer); err != nil {
		return err
	}
	if input.Freelancer == caller.ID {
		return ErrSelfContract
	}
	if caller.ID == e.vault || input.Freelancer == e.vault {
		return fmt.Errorf("%w: escrow vault cannot be a contract party", ErrInvalidInput)
	}
	if err := validText("title", input.Title, maxTitleLen, true); err != nil {
		return err
	}
	if err := validText("description", input.Description, maxDescriptionLen, false); err != nil {
		return err
	}

	// The sequence commits on its own: a failure below burns the id.
	next, err := e.store.Settings.NextContractID(ctx)
	if err != nil {
		return err
	}
	*id = next

	return e.store.Transaction(ctx, func(tx *repository.Store) error {
		now := e.now()
		contract := &model.Contract{
			ID:             next,
			Client:         caller.ID,
			Freelancer:     input.Freelancer,
			Title:          input.Title,
			Description:    input.Description,
			TotalAmount:    input.TotalAmount,
			EscrowedAmount: input.TotalAmount,
			Status:         model.ContractStatusActive,
			Deadline:       input.Deadline,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := tx.Contracts.Create(ctx, contract); err != nil {
			return err
		}
		return e.transfer(ctx, tx, model.LedgerEntry{
			ContractID: next,
			Kind:       model.LedgerEntryDeposit,
			From:       caller.ID,
			To:         e.vault,
			Amount:     input.TotalAmount,
		})
	})
}

// CompleteContract closes an active contract. Escrow still held at that point
// belongs to no approved milestone and is refunded to the client.
func (e *Engine) CompleteContract(ctx context.Context, caller model.Principal, contractID uint64) error {
	var refunded uint64
	err := e.run(ctx, "complete-contract", caller, contractID, func(tx *repository.Store) error {
		var err error
		refunded, err = e.closeContract(ctx, tx, caller, contractID, model.ContractStatusCompleted)
		return err
	})
	if err == nil {
		e.metrics.ObserveRelease(string(model.LedgerEntryRefund), refunded)
	}
	return err
}

// CancelContract closes an active contract and refunds the full remaining
// escrow to the client.
func (e *Engine) CancelContract(ctx context.Context, caller model.Principal, contractID uint64) error {
	var refunded uint64
	err := e.run(ctx, "cancel-contract", caller, contractID, func(tx *repository.Store) error {
		var err error
		refunded, err = e.closeContract(ctx, tx, caller, contractID, model.ContractStatusCancelled)
		return err
	})
	if err == nil {
		e.metrics.ObserveRelease(string(model.LedgerEntryRefund), refunded)
	}
	return err
}

func (e *Engine) closeContract(ctx context.Context, tx *repository.Store, caller model.Principal, contractID uint64, status model.ContractStatus) (uint64, error) {
	contract, err := loadContract(ctx, tx, contractID)
	if err != nil {
		return 0, err
	}
	if !isClient(caller, contract) {
		return 0, ErrNotClient
	}
	if err := requireActive(contract); err != nil {
		return 0, err
	}

	refund := contract.EscrowedAmount
	if err := e.transfer(ctx, tx, model.LedgerEntry{
		ContractID: contract.ID,
		Kind:       model.LedgerEntryRefund,
		From:       e.vault,
		To:         contract.Client,
		Amount:     refund,
	}); err != nil {
		return 0, err
	}

	contract.EscrowedAmount = 0
	contract.Status = status
	contract.UpdatedAt = e.now()
	if err := tx.Contracts.UpdateState(ctx, contract); err != nil {
		return 0, err
	}
	return refund, nil
}
