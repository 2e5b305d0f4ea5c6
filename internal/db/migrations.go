package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/nurpe/gigpay/internal/model"
)

var migrationModels = []interface{}{
	&model.PlatformSettings{},
	&model.Account{},
	&model.Contract{},
	&model.Milestone{},
	&model.Dispute{},
	&model.Rating{},
	&model.LedgerEntry{},
}

var migrationStatements = []string{
	`CREATE INDEX IF NOT EXISTS idx_ledger_entries_contract_seq ON ledger_entries (contract_id, seq);`,
	`CREATE INDEX IF NOT EXISTS idx_milestones_contract_status ON milestones (contract_id, status);`,
}

// Migrate brings the schema up to date. It is safe to run on every start.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(migrationModels...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
