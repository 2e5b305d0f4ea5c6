package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/gigpay/internal/model"
	"github.com/nurpe/gigpay/internal/repository"
)

// ParseResolution accepts "client" or "freelancer", case-insensitively.
func ParseResolution(raw string) (model.Resolution, error) {
	switch model.Resolution(strings.ToLower(strings.TrimSpace(raw))) {
	case model.ResolutionClient:
		return model.ResolutionClient, nil
	case model.ResolutionFreelancer:
		return model.ResolutionFreelancer, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidResolution, raw)
	}
}

// RaiseDispute freezes an active contract until the owner resolves it. Either
// party may raise it.
func (e *Engine) RaiseDispute(ctx context.Context, caller model.Principal, contractID uint64, reason string) error {
	return e.run(ctx, "raise-dispute", caller, contractID, func(tx *repository.Store) error {
		contract, err := loadContract(ctx, tx, contractID)
		if err != nil {
			return err
		}
		if !isParty(caller, contract) {
			return ErrNotParty
		}
		if err := requireActive(contract); err != nil {
			return err
		}
		if err := validText("reason", reason, maxReasonLen, false); err != nil {
			return err
		}

		now := e.now()
		if err := tx.Disputes.Save(ctx, &model.Dispute{
			ID:         uuid.New(),
			ContractID: contractID,
			RaisedBy:   caller.ID,
			Reason:     reason,
			Status:     model.DisputeStatusOpen,
			CreatedAt:  now,
		}); err != nil {
			return err
		}
		contract.Status = model.ContractStatusDisputed
		contract.UpdatedAt = now
		return tx.Contracts.UpdateState(ctx, contract)
	})
}

// ResolveDispute lets the owner direct the remaining escrow to one party.
// Resolving for the client cancels the contract; resolving for the
// freelancer completes it. A contract that was never flagged can be resolved
// directly from active.
func (e *Engine) ResolveDispute(ctx context.Context, caller model.Principal, contractID uint64, resolution string) error {
	var settled uint64
	err := e.run(ctx, "resolve-dispute", caller, contractID, func(tx *repository.Store) error {
		if !e.isOwner(caller) {
			return ErrNotOwner
		}
		outcome, err := ParseResolution(resolution)
		if err != nil {
			return err
		}
		contract, err := loadContract(ctx, tx, contractID)
		if err != nil {
			return err
		}
		if contract.Status != model.ContractStatusActive && contract.Status != model.ContractStatusDisputed {
			return fmt.Errorf("%w: contract %d is %s", ErrInvalidStatus, contractID, contract.Status)
		}

		now := e.now()
		dispute, err := tx.Disputes.GetByContract(ctx, contractID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			dispute = &model.Dispute{
				ID:         uuid.New(),
				ContractID: contractID,
				RaisedBy:   caller.ID,
				CreatedAt:  now,
			}
		} else if err != nil {
			return err
		}

		recipient := contract.Client
		status := model.ContractStatusCancelled
		if outcome == model.ResolutionFreelancer {
			recipient = contract.Freelancer
			status = model.ContractStatusCompleted
		}

		settled = contract.EscrowedAmount
		if err := e.transfer(ctx, tx, model.LedgerEntry{
			ContractID: contractID,
			Kind:       model.LedgerEntrySettlement,
			From:       e.vault,
			To:         recipient,
			Amount:     settled,
		}); err != nil {
			return err
		}

		contract.EscrowedAmount = 0
		contract.Status = status
		contract.UpdatedAt = now
		if err := tx.Contracts.UpdateState(ctx, contract); err != nil {
			return err
		}

		dispute.Status = model.DisputeStatusResolved
		dispute.Resolution = &outcome
		dispute.ResolvedBy = &caller.ID
		dispute.ResolvedAt = &now
		return tx.Disputes.Save(ctx, dispute)
	})
	if err == nil {
		e.metrics.ObserveRelease(string(model.LedgerEntrySettlement), settled)
	}
	return err
}
