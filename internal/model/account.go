package model

import "time"

// Principal is the authenticated caller. The identity is resolved by the
// token parser; the engine only compares identities.
type Principal struct {
	ID string
}

func (p Principal) IsZero() bool {
	return p.ID == ""
}

type Account struct {
	ID        string    `gorm:"primaryKey;size:128" json:"account"`
	Balance   uint64    `gorm:"not null" json:"balance"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Fee rates are in basis points: 250 is 2.5%, the ceiling is 10%.
const (
	DefaultFeeRate uint32 = 250
	MaxFeeRate     uint32 = 1000
)

// PlatformSettings is the single process-wide settings row: the fee rate in
// basis points and the last allocated contract id.
type PlatformSettings struct {
	ID             uint      `gorm:"primaryKey"`
	FeeRate        uint32    `gorm:"not null"`
	LastContractID uint64    `gorm:"not null"`
	UpdatedAt      time.Time `json:"updated_at"`
}
