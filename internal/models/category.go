package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category represents income/expense category.
// BudgetLimit is a monthly cap for expense categories; zero means no limit.
type Category struct {
	ID          uint            `gorm:"primaryKey"`
	UserID      uint            `gorm:"index;not null"`
	Name        string          `gorm:"size:64;not null"`
	Type        string          `gorm:"size:16;index;not null"` // income / expense
	Icon        string          `gorm:"size:64"`
	BudgetLimit decimal.Decimal `gorm:"type:decimal(14,2);default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
