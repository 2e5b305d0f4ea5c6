package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nurpe/gigpay/internal/model"
)

type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

func (r *ContractRepository) Create(ctx context.Context, contract *model.Contract) error {
	return r.db.WithContext(ctx).Create(contract).Error
}

// Get returns the contract or gorm.ErrRecordNotFound.
func (r *ContractRepository) Get(ctx context.Context, id uint64) (*model.Contract, error) {
	var contract model.Contract
	if err := r.db.WithContext(ctx).First(&contract, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &contract, nil
}

// GetForUpdate locks the contract row where the dialect supports it.
func (r *ContractRepository) GetForUpdate(ctx context.Context, id uint64) (*model.Contract, error) {
	var contract model.Contract
	query := r.db.WithContext(ctx)
	if query.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := query.First(&contract, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &contract, nil
}

// UpdateState writes the mutable columns of a contract: status and escrow.
func (r *ContractRepository) UpdateState(ctx context.Context, contract *model.Contract) error {
	return r.db.WithContext(ctx).
		Model(&model.Contract{}).
		Where("id = ?", contract.ID).
		Updates(map[string]interface{}{
			"status":          contract.Status,
			"escrowed_amount": contract.EscrowedAmount,
			"updated_at":      contract.UpdatedAt,
		}).Error
}

// ListForParty returns the contracts where the identity is client or
// freelancer, newest first.
func (r *ContractRepository) ListForParty(ctx context.Context, identity string) ([]model.Contract, error) {
	var contracts []model.Contract
	err := r.db.WithContext(ctx).
		Where("client = ? OR freelancer = ?", identity, identity).
		Order("id DESC").
		Find(&contracts).Error
	if err != nil {
		return nil, err
	}
	return contracts, nil
}
