package model

import "time"

type Rating struct {
	ContractID uint64    `gorm:"primaryKey;autoIncrement:false" json:"contract_id"`
	Rater      string    `gorm:"size:128;not null" json:"rater"`
	Score      uint8     `gorm:"not null" json:"score"`
	Comment    string    `gorm:"size:200" json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}
