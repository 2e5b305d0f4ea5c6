package model

import (
	"time"

	"github.com/google/uuid"
)

type DisputeStatus string

const (
	DisputeStatusOpen     DisputeStatus = "open"
	DisputeStatusResolved DisputeStatus = "resolved"
)

// Resolution names the party that receives the remaining escrow.
type Resolution string

const (
	ResolutionClient     Resolution = "client"
	ResolutionFreelancer Resolution = "freelancer"
)

type Dispute struct {
	ID         uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	ContractID uint64        `gorm:"uniqueIndex;not null" json:"contract_id"`
	RaisedBy   string        `gorm:"size:128" json:"raised_by"`
	Reason     string        `gorm:"size:500" json:"reason"`
	Status     DisputeStatus `gorm:"size:16;not null" json:"status"`
	Resolution *Resolution   `gorm:"size:16" json:"resolution,omitempty"`
	ResolvedBy *string       `gorm:"size:128" json:"resolved_by,omitempty"`
	ResolvedAt *time.Time    `json:"resolved_at,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}
