package model

import "time"

type MilestoneStatus string

const (
	MilestoneStatusPending   MilestoneStatus = "pending"
	MilestoneStatusSubmitted MilestoneStatus = "submitted"
	MilestoneStatusApproved  MilestoneStatus = "approved"
)

// Milestone is a client-defined slice of a contract's total amount. The
// milestone id is chosen by the client and is unique within its contract.
type Milestone struct {
	ContractID  uint64          `gorm:"primaryKey;autoIncrement:false" json:"contract_id"`
	MilestoneID uint64          `gorm:"primaryKey;autoIncrement:false" json:"milestone_id"`
	Description string          `gorm:"size:200" json:"description"`
	Amount      uint64          `gorm:"not null" json:"amount"`
	Status      MilestoneStatus `gorm:"size:16;not null" json:"status"`
	DueDate     uint64          `json:"due_date"`
	SubmittedAt *time.Time      `json:"submitted_at,omitempty"`
	ApprovedAt  *time.Time      `json:"approved_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
