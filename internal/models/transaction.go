package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents a single income or expense record.
// Amount is stored as decimal(14,2) to avoid float drift.
type Transaction struct {
	ID              uint            `gorm:"primaryKey"`
	UserID          uint            `gorm:"index;not null"`
	CategoryID      uint            `gorm:"index;not null"`
	Type            string          `gorm:"size:16;index;not null"` // income / expense
	Amount          decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Note            string          `gorm:"size:255"`
	TransactionDate time.Time       `gorm:"index;not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
