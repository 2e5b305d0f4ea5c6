package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/nurpe/gigpay/internal/model"
	"github.com/nurpe/gigpay/internal/repository"
)

type AddMilestoneInput struct {
	MilestoneID uint64
	Description string
	Amount      uint64
	DueDate     uint64
}

// AddMilestone attaches a pending milestone to an active contract. The sum of
// all milestone amounts never exceeds the contract total.
func (e *Engine) AddMilestone(ctx context.Context, caller model.Principal, contractID uint64, input AddMilestoneInput) error {
	return e.runMilestone(ctx, "add-milestone", caller, contractID, input.MilestoneID, func(tx *repository.Store) error {
		contract, err := loadContract(ctx, tx, contractID)
		if err != nil {
			return err
		}
		if !isClient(caller, contract) {
			return ErrNotClient
		}
		if err := requireActive(contract); err != nil {
			return err
		}
		if err := validAmount(input.Amount); err != nil {
			return err
		}
		if err := validText("description", input.Description, maxMilestoneDescriptionLen, false); err != nil {
			return err
		}

		exists, err := tx.Milestones.Exists(ctx, contractID, input.MilestoneID)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: %d on contract %d", ErrDuplicateMilestone, input.MilestoneID, contractID)
		}

		allocated, err := tx.Milestones.SumAmounts(ctx, contractID)
		if err != nil {
			return err
		}
		if input.Amount > contract.TotalAmount || allocated > contract.TotalAmount-input.Amount {
			return fmt.Errorf("%w: %d allocated, %d requested, total %d",
				ErrExceedsContractAmount, allocated, input.Amount, contract.TotalAmount)
		}

		now := e.now()
		return tx.Milestones.Create(ctx, &model.Milestone{
			ContractID:  contractID,
			MilestoneID: input.MilestoneID,
			Description: input.Description,
			Amount:      input.Amount,
			Status:      model.MilestoneStatusPending,
			DueDate:     input.DueDate,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	})
}

// SubmitMilestone marks a pending milestone as delivered by the freelancer.
func (e *Engine) SubmitMilestone(ctx context.Context, caller model.Principal, contractID, milestoneID uint64) error {
	return e.runMilestone(ctx, "submit-milestone", caller, contractID, milestoneID, func(tx *repository.Store) error {
		contract, err := loadContract(ctx, tx, contractID)
		if err != nil {
			return err
		}
		if !isFreelancer(caller, contract) {
			return ErrNotFreelancer
		}
		if err := requireActive(contract); err != nil {
			return err
		}
		milestone, err := loadMilestone(ctx, tx, contractID, milestoneID)
		if err != nil {
			return err
		}
		if milestone.Status != model.MilestoneStatusPending {
			return fmt.Errorf("%w: milestone %d is %s", ErrInvalidStatus, milestoneID, milestone.Status)
		}

		now := e.now()
		milestone.Status = model.MilestoneStatusSubmitted
		milestone.SubmittedAt = &now
		milestone.UpdatedAt = now
		return tx.Milestones.UpdateStatus(ctx, milestone)
	})
}

// ApproveMilestone accepts a submitted milestone and releases its amount from
// escrow: the platform fee goes to the owner and the rest to the freelancer.
func (e *Engine) ApproveMilestone(ctx context.Context, caller model.Principal, contractID, milestoneID uint64) error {
	var payout, fee uint64
	err := e.runMilestone(ctx, "approve-milestone", caller, contractID, milestoneID, func(tx *repository.Store) error {
		contract, err := loadContract(ctx, tx, contractID)
		if err != nil {
			return err
		}
		if !isClient(caller, contract) {
			return ErrNotClient
		}
		if err := requireActive(contract); err != nil {
			return err
		}
		milestone, err := loadMilestone(ctx, tx, contractID, milestoneID)
		if err != nil {
			return err
		}
		if milestone.Status != model.MilestoneStatusSubmitted {
			return fmt.Errorf("%w: milestone %d is %s", ErrInvalidStatus, milestoneID, milestone.Status)
		}
		if contract.EscrowedAmount < milestone.Amount {
			return fmt.Errorf("%w: escrow %d, milestone %d", ErrInsufficientEscrow, contract.EscrowedAmount, milestone.Amount)
		}

		settings, err := tx.Settings.Get(ctx)
		if err != nil {
			return err
		}
		fee = CalculateFee(milestone.Amount, settings.FeeRate)
		payout = milestone.Amount - fee

		if err := e.transfer(ctx, tx, model.LedgerEntry{
			ContractID:  contractID,
			MilestoneID: uint64Ptr(milestoneID),
			Kind:        model.LedgerEntryPayout,
			From:        e.vault,
			To:          contract.Freelancer,
			Amount:      payout,
		}); err != nil {
			return err
		}
		if err := e.transfer(ctx, tx, model.LedgerEntry{
			ContractID:  contractID,
			MilestoneID: uint64Ptr(milestoneID),
			Kind:        model.LedgerEntryFee,
			From:        e.vault,
			To:          e.owner,
			Amount:      fee,
		}); err != nil {
			return err
		}

		now := e.now()
		contract.EscrowedAmount -= milestone.Amount
		contract.UpdatedAt = now
		if err := tx.Contracts.UpdateState(ctx, contract); err != nil {
			return err
		}
		milestone.Status = model.MilestoneStatusApproved
		milestone.ApprovedAt = &now
		milestone.UpdatedAt = now
		return tx.Milestones.UpdateStatus(ctx, milestone)
	})
	if err == nil {
		e.metrics.ObserveRelease(string(model.LedgerEntryPayout), payout)
		e.metrics.ObserveRelease(string(model.LedgerEntryFee), fee)
		e.metrics.ObserveFee(fee)
	}
	return err
}

func loadMilestone(ctx context.Context, tx *repository.Store, contractID, milestoneID uint64) (*model.Milestone, error) {
	milestone, err := tx.Milestones.Get(ctx, contractID, milestoneID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %d on contract %d", ErrMilestoneNotFound, milestoneID, contractID)
		}
		return nil, err
	}
	return milestone, nil
}
