package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories that share one connection or transaction.
type Store struct {
	db         *gorm.DB
	Contracts  *ContractRepository
	Milestones *MilestoneRepository
	Disputes   *DisputeRepository
	Ratings    *RatingRepository
	Settings   *SettingsRepository
	Accounts   *AccountRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:         db,
		Contracts:  NewContractRepository(db),
		Milestones: NewMilestoneRepository(db),
		Disputes:   NewDisputeRepository(db),
		Ratings:    NewRatingRepository(db),
		Settings:   NewSettingsRepository(db),
		Accounts:   NewAccountRepository(db),
	}
}

// Transaction runs fn against a store bound to a single database
// transaction. Any error returned by fn rolls the whole transaction back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
