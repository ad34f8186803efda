package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SavingsGoal tracks money saved toward a target.
// CurrentAmount only grows via explicit deposits and may exceed TargetAmount.
type SavingsGoal struct {
	ID            uint            `gorm:"primaryKey"`
	UserID        uint            `gorm:"index;not null"`
	Name          string          `gorm:"size:64;not null"`
	TargetAmount  decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	CurrentAmount decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Deadline      *time.Time
	Color         string `gorm:"size:16"`
	Icon          string `gorm:"size:64"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
