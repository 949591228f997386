package domain

import (
	"time" // Timestamps

	"github.com/shopspring/decimal" // Exact money arithmetic
)

// Budget Model, a planned expense with a due date
type Budget struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	ProfileID string          `gorm:"size:36;index;not null" json:"profile_id"`
	Name      string          `gorm:"size:100;not null" json:"name"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"` // Target amount
	EndDate   time.Time       `gorm:"type:date;not null" json:"end_date"`        // Due date
	Read      bool            `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time       `json:"created_at"`
}
