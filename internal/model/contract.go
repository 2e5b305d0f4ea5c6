package model

import "time"

type ContractStatus string

const (
	ContractStatusActive    ContractStatus = "active"
	ContractStatusCompleted ContractStatus = "completed"
	ContractStatusCancelled ContractStatus = "cancelled"
	ContractStatusDisputed  ContractStatus = "disputed"
)

// Terminal reports whether no further status transition is permitted.
func (s ContractStatus) Terminal() bool {
	return s == ContractStatusCompleted || s == ContractStatusCancelled
}

// Contract is a unit of freelance work funded up front by the client. Its
// escrowed amount only ever decreases.
type Contract struct {
	ID             uint64         `gorm:"primaryKey;autoIncrement:false" json:"contract_id"`
	Client         string         `gorm:"size:128;not null;index" json:"client"`
	Freelancer     string         `gorm:"size:128;not null;index" json:"freelancer"`
	Title          string         `gorm:"size:100;not null" json:"title"`
	Description    string         `gorm:"size:500" json:"description"`
	TotalAmount    uint64         `gorm:"not null" json:"total_amount"`
	EscrowedAmount uint64         `gorm:"not null" json:"escrowed_amount"`
	Status         ContractStatus `gorm:"size:16;not null;index" json:"status"`
	Deadline       uint64         `json:"deadline"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

type ContractFunds struct {
	ContractID     uint64 `json:"contract_id"`
	EscrowedAmount uint64 `json:"escrowed_amount"`
}
