package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecurringTransaction is a template that periodically spawns Transaction rows.
// NextRunDate is advanced by whole months as transactions are materialized and
// never moves backwards.
type RecurringTransaction struct {
	ID          uint            `gorm:"primaryKey"`
	UserID      uint            `gorm:"index;not null"`
	CategoryID  uint            `gorm:"index;not null"`
	Type        string          `gorm:"size:16;not null"` // income / expense
	Amount      decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Note        string          `gorm:"size:255"`
	Frequency   string          `gorm:"size:16;not null;default:monthly"`
	StartDate   time.Time       `gorm:"not null"`
	NextRunDate time.Time       `gorm:"index;not null"`
	IsActive    bool            `gorm:"index;not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
