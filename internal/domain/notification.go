package domain

import (
	"time" // Timestamps

	"github.com/shopspring/decimal" // Exact money arithmetic
)

// Notification Model, the recipient-side counterpart of a Send Money transaction
type Notification struct {
	ID        uint            `gorm:"primaryKey" json:"notification_id"`
	WalletID  string          `gorm:"size:36;index;not null" json:"wallet_id"` // Recipient wallet
	SenderID  *string         `gorm:"size:36" json:"sender_id,omitempty"`      // Sending wallet, if known
	Amount    decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`
	Message   string          `gorm:"size:255;not null" json:"message"`
	Read      bool            `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time       `gorm:"index" json:"created_at"`
}
