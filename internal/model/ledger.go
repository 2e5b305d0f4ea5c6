package model

import (
	"time"

	"github.com/google/uuid"
)

type LedgerEntryKind string

const (
	LedgerEntryDeposit    LedgerEntryKind = "deposit"
	LedgerEntryPayout     LedgerEntryKind = "payout"
	LedgerEntryFee        LedgerEntryKind = "fee"
	LedgerEntryRefund     LedgerEntryKind = "refund"
	LedgerEntrySettlement LedgerEntryKind = "settlement"
	LedgerEntryTopUp      LedgerEntryKind = "top_up"
)

// Outflow reports whether the entry moved funds out of a contract's escrow.
func (k LedgerEntryKind) Outflow() bool {
	switch k {
	case LedgerEntryPayout, LedgerEntryFee, LedgerEntryRefund, LedgerEntrySettlement:
		return true
	default:
		return false
	}
}

// LedgerEntry records one funds movement. Top-ups carry contract id 0.
type LedgerEntry struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Seq         uint64          `gorm:"not null;index" json:"seq"`
	ContractID  uint64          `gorm:"index" json:"contract_id"`
	MilestoneID *uint64         `json:"milestone_id,omitempty"`
	Kind        LedgerEntryKind `gorm:"size:16;not null" json:"kind"`
	From        string          `gorm:"size:128;not null" json:"from"`
	To          string          `gorm:"size:128;not null" json:"to"`
	Amount      uint64          `gorm:"not null" json:"amount"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ContractStatement bundles everything rendered into contract exports.
type ContractStatement struct {
	Contract    Contract
	Milestones  []Milestone
	Ledger      []LedgerEntry
	Dispute     *Dispute
	Rating      *Rating
	FeeRate     uint32
	GeneratedAt time.Time
}
