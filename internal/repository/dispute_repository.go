package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/nurpe/gigpay/internal/model"
)

type DisputeRepository struct {
	db *gorm.DB
}

func NewDisputeRepository(db *gorm.DB) *DisputeRepository {
	return &DisputeRepository{db: db}
}

// Save inserts or updates the dispute record of a contract.
func (r *DisputeRepository) Save(ctx context.Context, dispute *model.Dispute) error {
	return r.db.WithContext(ctx).Save(dispute).Error
}

// GetByContract returns the contract's dispute or gorm.ErrRecordNotFound.
func (r *DisputeRepository) GetByContract(ctx context.Context, contractID uint64) (*model.Dispute, error) {
	var dispute model.Dispute
	if err := r.db.WithContext(ctx).First(&dispute, "contract_id = ?", contractID).Error; err != nil {
		return nil, err
	}
	return &dispute, nil
}
