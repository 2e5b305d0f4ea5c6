package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/nurpe/gigpay/internal/model"
)

type MilestoneRepository struct {
	db *gorm.DB
}

func NewMilestoneRepository(db *gorm.DB) *MilestoneRepository {
	return &MilestoneRepository{db: db}
}

func (r *MilestoneRepository) Create(ctx context.Context, milestone *model.Milestone) error {
	return r.db.WithContext(ctx).Create(milestone).Error
}

// Get returns the milestone or gorm.ErrRecordNotFound.
func (r *MilestoneRepository) Get(ctx context.Context, contractID, milestoneID uint64) (*model.Milestone, error) {
	var milestone model.Milestone
	err := r.db.WithContext(ctx).
		Where("contract_id = ? AND milestone_id = ?", contractID, milestoneID).
		First(&milestone).Error
	if err != nil {
		return nil, err
	}
	return &milestone, nil
}

func (r *MilestoneRepository) Exists(ctx context.Context, contractID, milestoneID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Milestone{}).
		Where("contract_id = ? AND milestone_id = ?", contractID, milestoneID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// SumAmounts totals the amounts of every milestone of a contract.
func (r *MilestoneRepository) SumAmounts(ctx context.Context, contractID uint64) (uint64, error) {
	var milestones []model.Milestone
	err := r.db.WithContext(ctx).
		Select("amount").
		Where("contract_id = ?", contractID).
		Find(&milestones).Error
	if err != nil {
		return 0, err
	}
	var total uint64
	for _, m := range milestones {
		total += m.Amount
	}
	return total, nil
}

func (r *MilestoneRepository) List(ctx context.Context, contractID uint64) ([]model.Milestone, error) {
	var milestones []model.Milestone
	err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("milestone_id ASC").
		Find(&milestones).Error
	if err != nil {
		return nil, err
	}
	return milestones, nil
}

func (r *MilestoneRepository) UpdateStatus(ctx context.Context, milestone *model.Milestone) error {
	return r.db.WithContext(ctx).
		Model(&model.Milestone{}).
		Where("contract_id = ? AND milestone_id = ?", milestone.ContractID, milestone.MilestoneID).
		Updates(map[string]interface{}{
			"status":       milestone.Status,
			"submitted_at": milestone.SubmittedAt,
			"approved_at":  milestone.ApprovedAt,
			"updated_at":   milestone.UpdatedAt,
		}).Error
}
